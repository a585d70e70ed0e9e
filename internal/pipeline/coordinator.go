// Package pipeline sequences the triage stages into one synchronous,
// request-scoped run: intake, optional imaging, therapy, escalation,
// pharmacy matching, and order preview.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/triage-ai-platform/internal/compliance"
	"github.com/wolfman30/triage-ai-platform/internal/escalation"
	"github.com/wolfman30/triage-ai-platform/internal/imaging"
	"github.com/wolfman30/triage-ai-platform/internal/intake"
	"github.com/wolfman30/triage-ai-platform/internal/observability/metrics"
	"github.com/wolfman30/triage-ai-platform/internal/orders"
	"github.com/wolfman30/triage-ai-platform/internal/pharmacy"
	"github.com/wolfman30/triage-ai-platform/internal/refdata"
	"github.com/wolfman30/triage-ai-platform/internal/therapy"
	"github.com/wolfman30/triage-ai-platform/pkg/logging"
)

var tracer = otel.Tracer("triage/pipeline")

// ErrUnknownPostalCode is returned when a postal code cannot be resolved to
// coordinates.
var ErrUnknownPostalCode = errors.New("postal code not recognized")

// Timeline stage names.
const (
	StageIngestionCompleted     = "ingestion_completed"
	StageImagingCompleted       = "imaging_completed"
	StageImagingSkipped         = "imaging_skipped"
	StageTherapyCompleted       = "therapy_completed"
	StageEscalationCompleted    = "escalation_completed"
	StagePharmacyMatchCompleted = "pharmacy_match_completed"
	StagePreviewBuilt           = "preview_built"
)

// Confidence sources for the diagnosis block.
const (
	sourceXray     = "xray"
	sourceSymptoms = "symptoms"
)

// ConditionSymptomBased labels the no-image diagnosis.
const ConditionSymptomBased = "symptom_based"

// Request is one triage pipeline invocation.
type Request struct {
	Name      string
	Phone     string
	Age       int
	Notes     string
	Allergies string
	Image     *intake.Upload
	Report    *intake.Upload

	// Location: explicit coordinates win over a postal code; with neither,
	// the configured defaults apply.
	Lat        *float64
	Lon        *float64
	PostalCode string
}

// Diagnosis summarizes the condition estimate for the response.
type Diagnosis struct {
	Condition        string `json:"condition"`
	Severity         string `json:"severity"`
	ConfidenceSource string `json:"confidence_source"`
}

// TimelineEntry records when a pipeline stage finished.
type TimelineEntry struct {
	Stage string    `json:"stage"`
	At    time.Time `json:"at"`
}

// Response is the consolidated triage result.
type Response struct {
	Patient      *intake.Record      `json:"patient"`
	Diagnosis    Diagnosis           `json:"diagnosis"`
	TherapyPlan  therapy.Plan        `json:"therapy_plan"`
	Escalation   escalation.Decision `json:"escalation"`
	Pharmacy     pharmacy.Result     `json:"pharmacy_match"`
	OrderPreview *orders.Preview     `json:"order_preview,omitempty"`
	Timeline     []TimelineEntry     `json:"timeline"`
	Disclaimer   string              `json:"disclaimer"`
}

// Config wires the coordinator's collaborators.
type Config struct {
	Store      *refdata.Store
	Normalizer *intake.Normalizer
	Estimator  imaging.Estimator
	Therapy    *therapy.Engine
	Escalation *escalation.Evaluator
	Pharmacy   *pharmacy.Matcher
	Disclaimer *compliance.DisclaimerService
	Metrics    *metrics.PipelineMetrics
	Logger     *logging.Logger

	DefaultLat float64
	DefaultLon float64
}

// Coordinator runs the pipeline. Stateless across invocations; all
// per-request values are constructed fresh and discarded with the response.
type Coordinator struct {
	cfg    Config
	logger *logging.Logger
}

// NewCoordinator creates a pipeline coordinator.
func NewCoordinator(cfg Config) *Coordinator {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Coordinator{cfg: cfg, logger: logger.Component("pipeline")}
}

// IsValidationError reports whether err is an input-validation failure that
// should surface verbatim to the caller.
func IsValidationError(err error) bool {
	return errors.Is(err, intake.ErrNoClinicalInput) ||
		errors.Is(err, intake.ErrMissingName) ||
		errors.Is(err, intake.ErrMissingPhone) ||
		errors.Is(err, intake.ErrInvalidPhone) ||
		errors.Is(err, intake.ErrInvalidAge) ||
		errors.Is(err, intake.ErrInvalidImageType) ||
		errors.Is(err, intake.ErrInvalidReportType) ||
		errors.Is(err, ErrUnknownPostalCode)
}

// Run executes the full pipeline. A stage failure aborts the run; no partial
// results are returned.
func (c *Coordinator) Run(ctx context.Context, req Request) (*Response, error) {
	ctx, span := tracer.Start(ctx, "pipeline.run")
	defer span.End()

	var timeline []TimelineEntry
	mark := func(stage string) {
		timeline = append(timeline, TimelineEntry{Stage: stage, At: time.Now().UTC()})
	}

	lat, lon, err := c.resolveLocation(req)
	if err != nil {
		c.cfg.Metrics.ObserveRun("validation_error")
		return nil, err
	}

	record, err := c.runIntake(ctx, req)
	if err != nil {
		if IsValidationError(err) {
			c.cfg.Metrics.ObserveRun("validation_error")
		} else {
			c.cfg.Metrics.ObserveRun("error")
		}
		return nil, err
	}
	mark(StageIngestionCompleted)

	estimate, diagnosis, err := c.runImaging(ctx, record)
	if err != nil {
		c.cfg.Metrics.ObserveRun("error")
		return nil, err
	}
	if record.ImageRef != "" {
		mark(StageImagingCompleted)
	} else {
		mark(StageImagingSkipped)
	}

	plan := c.runTherapy(ctx, record, diagnosis.Severity, estimate)
	mark(StageTherapyCompleted)

	decision := c.runEscalation(ctx, plan.RedFlags, diagnosis.Severity, estimate)
	mark(StageEscalationCompleted)

	result := c.runPharmacy(ctx, plan.SKUs(), lat, lon)
	mark(StagePharmacyMatchCompleted)

	var preview *orders.Preview
	if result.Match != nil {
		p := orders.BuildPreview(result.Match, c.cfg.Store)
		preview = &p
		mark(StagePreviewBuilt)
	}

	c.cfg.Metrics.ObserveRun("ok")
	c.logger.Info("pipeline completed",
		"otc_count", len(plan.OTCOptions),
		"escalation_needed", decision.Needed,
		"pharmacy_matched", result.Match != nil,
	)

	return &Response{
		Patient:      record,
		Diagnosis:    diagnosis,
		TherapyPlan:  plan,
		Escalation:   decision,
		Pharmacy:     result,
		OrderPreview: preview,
		Timeline:     timeline,
		Disclaimer:   c.cfg.Disclaimer.Text(),
	}, nil
}

func (c *Coordinator) resolveLocation(req Request) (float64, float64, error) {
	if req.Lat != nil && req.Lon != nil {
		return *req.Lat, *req.Lon, nil
	}
	if req.PostalCode != "" {
		lat, lon, ok := c.cfg.Store.ResolvePostal(req.PostalCode)
		if !ok {
			return 0, 0, fmt.Errorf("%w: %s", ErrUnknownPostalCode, req.PostalCode)
		}
		return lat, lon, nil
	}
	return c.cfg.DefaultLat, c.cfg.DefaultLon, nil
}

func (c *Coordinator) runIntake(ctx context.Context, req Request) (*intake.Record, error) {
	ctx, span := tracer.Start(ctx, "pipeline.intake")
	defer span.End()
	start := time.Now()

	record, err := c.cfg.Normalizer.Process(ctx, intake.Submission{
		Name:      req.Name,
		Phone:     req.Phone,
		Age:       req.Age,
		Notes:     req.Notes,
		Allergies: req.Allergies,
		Image:     req.Image,
		Report:    req.Report,
	})
	c.cfg.Metrics.ObserveStageLatency("intake", time.Since(start).Seconds())
	return record, err
}

func (c *Coordinator) runImaging(ctx context.Context, record *intake.Record) (imaging.Estimate, Diagnosis, error) {
	ctx, span := tracer.Start(ctx, "pipeline.imaging")
	defer span.End()
	start := time.Now()
	defer func() {
		c.cfg.Metrics.ObserveStageLatency("imaging", time.Since(start).Seconds())
	}()

	if record.ImageRef == "" {
		span.SetAttributes(attribute.Bool("imaging.skipped", true))
		return imaging.Estimate{Severity: imaging.SeverityNotAssessed}, Diagnosis{
			Condition:        ConditionSymptomBased,
			Severity:         imaging.SeverityMild,
			ConfidenceSource: sourceSymptoms,
		}, nil
	}

	estimate, err := c.cfg.Estimator.Estimate(ctx, record.ImageRef)
	if err != nil {
		return imaging.Estimate{}, Diagnosis{}, fmt.Errorf("pipeline: estimate condition: %w", err)
	}

	condition := "unknown"
	if top, _ := estimate.Top(); top != "" {
		condition = top
	}
	span.SetAttributes(
		attribute.String("imaging.condition", condition),
		attribute.String("imaging.severity", estimate.Severity),
	)

	return estimate, Diagnosis{
		Condition:        condition,
		Severity:         estimate.Severity,
		ConfidenceSource: sourceXray,
	}, nil
}

func (c *Coordinator) runTherapy(ctx context.Context, record *intake.Record, severity string, estimate imaging.Estimate) therapy.Plan {
	ctx, span := tracer.Start(ctx, "pipeline.therapy")
	defer span.End()
	start := time.Now()

	plan := c.cfg.Therapy.Recommend(ctx, therapy.Input{
		Notes:        record.Notes,
		Age:          record.Age,
		Allergies:    record.Allergies,
		SeverityHint: severity,
		Estimate:     estimate,
	})

	c.cfg.Metrics.ObserveStageLatency("therapy", time.Since(start).Seconds())
	span.SetAttributes(attribute.Int("therapy.otc_count", len(plan.OTCOptions)))
	return plan
}

func (c *Coordinator) runEscalation(ctx context.Context, redFlags []string, severity string, estimate imaging.Estimate) escalation.Decision {
	ctx, span := tracer.Start(ctx, "pipeline.escalation")
	defer span.End()
	start := time.Now()

	decision := c.cfg.Escalation.Assess(ctx, redFlags, severity, estimate)

	c.cfg.Metrics.ObserveStageLatency("escalation", time.Since(start).Seconds())
	c.cfg.Metrics.ObserveEscalation(decision.Needed)
	span.SetAttributes(attribute.Bool("escalation.needed", decision.Needed))
	return decision
}

func (c *Coordinator) runPharmacy(ctx context.Context, skus []string, lat, lon float64) pharmacy.Result {
	ctx, span := tracer.Start(ctx, "pipeline.pharmacy")
	defer span.End()
	start := time.Now()

	result := c.cfg.Pharmacy.FindBest(ctx, skus, lat, lon)

	c.cfg.Metrics.ObserveStageLatency("pharmacy", time.Since(start).Seconds())
	span.SetAttributes(attribute.Bool("pharmacy.matched", result.Match != nil))
	return result
}
