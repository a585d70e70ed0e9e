// Package intake validates and normalizes raw patient submissions into the
// record the rest of the pipeline consumes.
package intake

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/wolfman30/triage-ai-platform/pkg/logging"
)

// knownAllergens is the mock allergy-detection vocabulary scanned against
// free-text symptoms when no explicit allergy list is given.
var knownAllergens = []string{"ibuprofen", "penicillin", "aspirin", "paracetamol"}

var nonDigits = regexp.MustCompile(`\D`)

// Upload is a raw uploaded file.
type Upload struct {
	Filename string
	Content  []byte
}

// Submission is the raw patient intake payload.
type Submission struct {
	Name      string
	Phone     string
	Age       int
	Notes     string
	Allergies string // optional comma-separated list; wins over detection
	Image     *Upload
	Report    *Upload
}

// Record is the normalized patient record. It carries no direct PII; masked
// name and phone go to the logs only.
type Record struct {
	Age       int      `json:"age"`
	Allergies []string `json:"allergies"`
	Notes     string   `json:"notes"`
	ImageRef  string   `json:"image_ref,omitempty"`
	ReportRef string   `json:"report_ref,omitempty"`
}

// Normalizer validates submissions, stores uploads, and produces patient
// records.
type Normalizer struct {
	uploads   UploadStore
	extractor ReportExtractor
	logger    *logging.Logger
}

// NewNormalizer creates an intake normalizer.
func NewNormalizer(uploads UploadStore, extractor ReportExtractor, logger *logging.Logger) *Normalizer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Normalizer{uploads: uploads, extractor: extractor, logger: logger.Component("intake")}
}

// Process validates the submission and produces a Record. Validation
// failures abort the whole pipeline before any stage runs.
func (n *Normalizer) Process(ctx context.Context, sub Submission) (*Record, error) {
	if sub.Image == nil && sub.Report == nil && strings.TrimSpace(sub.Notes) == "" {
		return nil, ErrNoClinicalInput
	}
	if strings.TrimSpace(sub.Name) == "" {
		return nil, ErrMissingName
	}
	if strings.TrimSpace(sub.Phone) == "" {
		return nil, ErrMissingPhone
	}
	if sub.Age < 0 {
		return nil, ErrInvalidAge
	}

	digits := nonDigits.ReplaceAllString(sub.Phone, "")
	if len(digits) != 10 {
		return nil, ErrInvalidPhone
	}

	var imageRef string
	if sub.Image != nil {
		if !hasExtension(sub.Image.Filename, ".png", ".jpg", ".jpeg") {
			return nil, ErrInvalidImageType
		}
		ref, err := n.uploads.Save(ctx, CategoryImage, sub.Image.Filename, sub.Image.Content)
		if err != nil {
			return nil, fmt.Errorf("intake: save image: %w", err)
		}
		imageRef = ref
		n.logger.Info("stored scan image", "ref", imageRef)
	}

	notes := sub.Notes
	var reportRef string
	if sub.Report != nil {
		if !hasExtension(sub.Report.Filename, ".pdf") {
			return nil, ErrInvalidReportType
		}
		ref, err := n.uploads.Save(ctx, CategoryReport, sub.Report.Filename, sub.Report.Content)
		if err != nil {
			return nil, fmt.Errorf("intake: save report: %w", err)
		}
		reportRef = ref

		text, err := n.extractor.Extract(ctx, reportRef)
		if err != nil {
			return nil, fmt.Errorf("intake: extract report text: %w", err)
		}
		if text != "" {
			notes = strings.TrimSpace(notes + "\n" + text)
		}
		n.logger.Info("stored report", "ref", reportRef, "extracted_chars", len(text))
	}

	allergies := parseAllergies(sub.Allergies)
	if len(allergies) == 0 {
		allergies = detectAllergies(sub.Notes)
	}

	n.logger.Info("intake normalized",
		"name", MaskName(sub.Name),
		"phone", MaskPhone(digits),
		"age", sub.Age,
		"allergies", allergies,
	)

	return &Record{
		Age:       sub.Age,
		Allergies: allergies,
		Notes:     notes,
		ImageRef:  imageRef,
		ReportRef: reportRef,
	}, nil
}

func hasExtension(filename string, allowed ...string) bool {
	lower := strings.ToLower(filename)
	for _, ext := range allowed {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// parseAllergies normalizes a comma-separated allergy string into a
// lower-cased, deduplicated set.
func parseAllergies(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, part := range strings.Split(raw, ",") {
		a := strings.ToLower(strings.TrimSpace(part))
		if a == "" {
			continue
		}
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}

// detectAllergies scans symptom text for known allergen mentions.
func detectAllergies(notes string) []string {
	if notes == "" {
		return nil
	}
	lower := strings.ToLower(notes)
	var out []string
	for _, allergen := range knownAllergens {
		if strings.Contains(lower, allergen) {
			out = append(out, allergen)
		}
	}
	return out
}
