// Package compliance provides the regulatory guardrails attached to every
// triage response.
package compliance

// DisclaimerLevel represents the verbosity of the disclaimer.
type DisclaimerLevel string

const (
	// DisclaimerShort is the shortest disclaimer.
	DisclaimerShort DisclaimerLevel = "short"
	// DisclaimerMedium is a moderate disclaimer.
	DisclaimerMedium DisclaimerLevel = "medium"
	// DisclaimerFull is the most comprehensive disclaimer.
	DisclaimerFull DisclaimerLevel = "full"
)

const (
	disclaimerShortText = "Not medical advice."

	disclaimerMediumText = "This is not medical advice. Consult a doctor for diagnosis, emergencies, or worsening symptoms."

	disclaimerFullText = "This is an automated triage assistant. The information provided is general in nature and not a substitute for professional medical advice, diagnosis, or treatment. Consult a licensed healthcare provider for medical concerns, and call your local emergency services for emergencies."
)

// DisclaimerService selects the disclaimer text attached to responses.
type DisclaimerService struct {
	level      DisclaimerLevel
	customText string
}

// NewDisclaimerService creates a disclaimer service. An empty level defaults
// to medium; customText overrides the templates entirely.
func NewDisclaimerService(level DisclaimerLevel, customText string) *DisclaimerService {
	return &DisclaimerService{level: level, customText: customText}
}

// Text returns the disclaimer for the configured level.
func (s *DisclaimerService) Text() string {
	if s.customText != "" {
		return s.customText
	}
	switch s.level {
	case DisclaimerShort:
		return disclaimerShortText
	case DisclaimerFull:
		return disclaimerFullText
	default:
		return disclaimerMediumText
	}
}
