// Package therapy implements the OTC recommendation rule engine: symptom to
// medicine matching with age and allergy exclusion, plus pairwise drug
// interaction screening.
package therapy

import (
	"context"
	"fmt"
	"strings"

	"github.com/wolfman30/triage-ai-platform/internal/imaging"
	"github.com/wolfman30/triage-ai-platform/internal/refdata"
	"github.com/wolfman30/triage-ai-platform/pkg/logging"
)

// Red-flag markers the escalation evaluator keys off. Changing these strings
// changes escalation behavior.
const (
	MarkerHighSeverity = "High severity"
	MarkerLowOxygen    = "SpO2"
)

const (
	flagHighSeverity = "High severity detected - medical consultation needed"
	flagLowOxygen    = "SpO2 likely < 92% - immediate medical attention required"
	flagNoSymptoms   = "No symptoms provided"
	flagNoMatch      = "No OTC matched for symptoms"
)

// noContraKeywords is the sentinel used in the medicines table for drugs
// without contraindication keywords.
const noContraKeywords = "None"

// A top-condition probability at or above this widens symptom matching with
// that condition's keyword set.
const augmentThreshold = 0.5

// OTCOption is one recommended over-the-counter medicine.
type OTCOption struct {
	SKU       string   `json:"sku"`
	Dose      string   `json:"dose"`
	Frequency string   `json:"freq"`
	Warnings  []string `json:"warnings"`
}

// Plan is the therapy engine output: recommended OTC options plus safety red
// flags. Empty-but-flagged plans are valid states, not errors.
type Plan struct {
	OTCOptions []OTCOption `json:"otc_options"`
	RedFlags   []string    `json:"red_flags"`
}

// SKUs returns the SKUs of the recommended options in plan order.
func (p Plan) SKUs() []string {
	skus := make([]string, 0, len(p.OTCOptions))
	for _, opt := range p.OTCOptions {
		skus = append(skus, opt.SKU)
	}
	return skus
}

// Input carries everything the engine needs for one recommendation.
type Input struct {
	Notes        string
	Age          int
	Allergies    []string
	SeverityHint string
	Estimate     imaging.Estimate
}

// dosage is the static dose/frequency lookup keyed by drug name.
type dosage struct {
	dose string
	freq string
}

var dosageMap = map[string]dosage{
	"Paracetamol":                 {"500 mg", "q6h"},
	"Ibuprofen":                   {"400 mg", "q8h"},
	"Cetirizine":                  {"10 mg", "q24h"},
	"Antacid Tablets":             {"2 tablets", "q4h"},
	"Loperamide":                  {"2 mg", "q6h"},
	"Saline Nasal Spray":          {"2 sprays", "q4h"},
	"Hydrocortisone Cream":        {"apply thin layer", "q12h"},
	"Oral Rehydration Salt (ORS)": {"1 sachet", "q4h"},
}

// conditionKeywords widens symptom matching when imaging confirms a
// condition with high confidence.
var conditionKeywords = map[string][]string{
	imaging.ConditionPneumonia:    {"fever", "pain", "inflammation", "cough", "chest", "shortness"},
	imaging.ConditionCovidSuspect: {"fever", "cough", "fatigue", "breath", "loss", "taste"},
	imaging.ConditionNormal:       {},
}

// Engine recommends OTC medicines against the reference catalog.
type Engine struct {
	store  *refdata.Store
	logger *logging.Logger
}

// NewEngine creates a therapy engine over the given reference store.
func NewEngine(store *refdata.Store, logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{store: store, logger: logger.Component("therapy")}
}

// Recommend builds an OTC plan for the patient. Expected missing data (no
// notes, no symptom match) produces informational plan states rather than
// errors.
func (e *Engine) Recommend(ctx context.Context, in Input) Plan {
	var redFlags []string
	var options []OTCOption

	if in.SeverityHint == imaging.SeveritySevere {
		redFlags = append(redFlags, flagHighSeverity, flagLowOxygen)
	}

	if strings.TrimSpace(in.Notes) == "" {
		return Plan{OTCOptions: []OTCOption{}, RedFlags: []string{flagNoSymptoms}}
	}

	notesLower := strings.ToLower(in.Notes)
	if top, prob := in.Estimate.Top(); top != "" && prob >= augmentThreshold {
		if keywords := conditionKeywords[top]; len(keywords) > 0 {
			notesLower = notesLower + " " + strings.Join(keywords, " ")
		}
	}

	// Scan the catalog in table order; plan order follows match order.
	var matched []refdata.Medicine
	for _, med := range e.store.Medicines() {
		if indicationMatches(med.Indication, notesLower) {
			matched = append(matched, med)
		}
	}

	if len(matched) == 0 {
		return Plan{OTCOptions: []OTCOption{}, RedFlags: []string{flagNoMatch}}
	}

	for _, med := range matched {
		if in.Age < med.MinAge {
			redFlags = append(redFlags, fmt.Sprintf("%s not suitable for age < %d", med.DrugName, med.MinAge))
			e.logger.Info("rejected medicine", "drug", med.DrugName, "sku", med.SKU, "reason", "age_restriction")
			continue
		}

		if allergic(in.Allergies, med.ContraKeywords) {
			redFlags = append(redFlags, fmt.Sprintf("Avoid %s - patient allergic", med.DrugName))
			e.logger.Info("rejected medicine", "drug", med.DrugName, "sku", med.SKU, "reason", "allergy_contraindication")
			continue
		}

		var warnings []string
		if med.ContraKeywords != noContraKeywords {
			warnings = append(warnings, "contains "+med.ContraKeywords)
		}

		d, ok := dosageMap[med.DrugName]
		if !ok {
			d = dosage{dose: "as directed", freq: "as needed"}
		}

		e.logger.Info("recommending medicine", "drug", med.DrugName, "sku", med.SKU, "dose", d.dose, "freq", d.freq)

		options = append(options, OTCOption{
			SKU:       med.SKU,
			Dose:      d.dose,
			Frequency: d.freq,
			Warnings:  warnings,
		})
	}

	if len(options) > 1 {
		redFlags = append(redFlags, e.interactionFlags(options)...)
	}

	if options == nil {
		options = []OTCOption{}
	}

	e.logger.Info("therapy plan built", "otc_count", len(options), "red_flag_count", len(redFlags))
	return Plan{OTCOptions: options, RedFlags: redFlags}
}

// interactionFlags screens every unordered pair of recommended drugs against
// the interaction table. Only High and Moderate interactions surface to the
// patient; Low stays in the logs.
func (e *Engine) interactionFlags(options []OTCOption) []string {
	var flags []string
	for i := 0; i < len(options); i++ {
		for j := i + 1; j < len(options); j++ {
			drugA := e.store.DrugName(options[i].SKU)
			drugB := e.store.DrugName(options[j].SKU)

			ix, ok := e.store.Interaction(drugA, drugB)
			if !ok {
				continue
			}

			e.logger.Info("interaction detected",
				"level", ix.Level, "drug_a", drugA, "drug_b", drugB, "note", ix.Note)

			if ix.Level == refdata.InteractionHigh || ix.Level == refdata.InteractionModerate {
				flags = append(flags, fmt.Sprintf("Drug interaction (%s): %s & %s - %s", ix.Level, drugA, drugB, ix.Note))
			}
		}
	}
	return flags
}

// indicationMatches reports whether any indication token appears in the
// symptom text. Tokens are split on whitespace and "&", and matching is
// substring containment, not whole-word. Short tokens can match inside
// unrelated words; kept for compatibility with the established rule set.
func indicationMatches(indication, notesLower string) bool {
	tokens := strings.Fields(strings.ReplaceAll(strings.ToLower(indication), "&", " "))
	for _, token := range tokens {
		if strings.Contains(notesLower, token) {
			return true
		}
	}
	return false
}

// allergic reports whether any patient allergy substring-matches the
// medicine's contraindication keywords.
func allergic(allergies []string, contraKeywords string) bool {
	if len(allergies) == 0 {
		return false
	}
	contraLower := strings.ToLower(contraKeywords)
	for _, a := range allergies {
		if a == "" {
			continue
		}
		if strings.Contains(contraLower, strings.ToLower(a)) {
			return true
		}
	}
	return false
}
