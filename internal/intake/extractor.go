package intake

import "context"

// ReportExtractor pulls text out of an uploaded report document. The real
// platform plugs OCR in here; the core only consumes the resulting string.
type ReportExtractor interface {
	Extract(ctx context.Context, reportRef string) (string, error)
}

// MockExtractor returns canned extracted text, enough to exercise the note
// concatenation path without an OCR dependency.
type MockExtractor struct{}

// NewMockExtractor returns the stub extractor.
func NewMockExtractor() *MockExtractor {
	return &MockExtractor{}
}

// Extract implements ReportExtractor.
func (m *MockExtractor) Extract(ctx context.Context, reportRef string) (string, error) {
	if reportRef == "" {
		return "", nil
	}
	return "Mock extracted text: Patient complains of persistent cough and fever for 3 days. Temperature 101F.", nil
}
