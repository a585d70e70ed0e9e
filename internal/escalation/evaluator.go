// Package escalation decides whether a triage case must be routed to a human
// doctor for a tele-consult instead of resolving with self-care guidance.
package escalation

import (
	"context"
	"strings"

	"github.com/wolfman30/triage-ai-platform/internal/imaging"
	"github.com/wolfman30/triage-ai-platform/internal/refdata"
	"github.com/wolfman30/triage-ai-platform/internal/therapy"
	"github.com/wolfman30/triage-ai-platform/pkg/logging"
)

// DefaultConfidenceThreshold is the minimum top-condition confidence below
// which a case always escalates.
const DefaultConfidenceThreshold = 0.5

const suggestionReason = "Severe findings or red flags detected"

// Suggestion is one tele-consult option offered to an escalated patient.
type Suggestion struct {
	Doctor    string   `json:"doctor"`
	Specialty string   `json:"specialty"`
	TeleSlots []string `json:"tele_slots"`
	Reason    string   `json:"reason"`
}

// Decision is the escalation outcome. When escalation is needed the
// suggestion list is the entire roster; there is no specialty matching or
// ranking, which is a deliberately coarse policy.
type Decision struct {
	Needed        bool         `json:"doctor_escalation_needed"`
	MaxConfidence float64      `json:"max_confidence"`
	Suggestions   []Suggestion `json:"escalation_suggestions"`
}

// Evaluator assesses red flags, severity, and classifier confidence.
type Evaluator struct {
	store     *refdata.Store
	threshold float64
	logger    *logging.Logger
}

// NewEvaluator creates an evaluator over the doctor roster in store. A
// threshold of zero falls back to DefaultConfidenceThreshold.
func NewEvaluator(store *refdata.Store, threshold float64, logger *logging.Logger) *Evaluator {
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Evaluator{store: store, threshold: threshold, logger: logger.Component("escalation")}
}

// Assess evaluates one case. An empty condition distribution yields max
// confidence 0.0 and therefore always escalates.
func (e *Evaluator) Assess(ctx context.Context, redFlags []string, severity string, est imaging.Estimate) Decision {
	maxConfidence := est.MaxConfidence()

	severeCase := severity == imaging.SeveritySevere
	flaggedCase := false
	for _, flag := range redFlags {
		if strings.Contains(flag, therapy.MarkerHighSeverity) || strings.Contains(flag, therapy.MarkerLowOxygen) {
			flaggedCase = true
			break
		}
	}

	needed := severeCase || flaggedCase || maxConfidence < e.threshold

	suggestions := []Suggestion{}
	if needed {
		for _, doc := range e.store.Doctors() {
			suggestions = append(suggestions, Suggestion{
				Doctor:    doc.Name,
				Specialty: doc.Specialty,
				TeleSlots: doc.TeleSlots,
				Reason:    suggestionReason,
			})
		}
	}

	e.logger.Info("escalation evaluated",
		"needed", needed,
		"max_confidence", maxConfidence,
		"severe", severeCase,
		"red_flag_trigger", flaggedCase,
	)

	return Decision{
		Needed:        needed,
		MaxConfidence: maxConfidence,
		Suggestions:   suggestions,
	}
}
