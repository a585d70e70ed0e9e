package intake

import "errors"

var (
	// ErrNoClinicalInput is returned when neither symptoms, an image, nor a
	// report was submitted.
	ErrNoClinicalInput = errors.New("at least one clinical input (image, report, or symptoms) is required")

	// ErrMissingName is returned when the patient name is absent.
	ErrMissingName = errors.New("name is required")

	// ErrMissingPhone is returned when the phone number is absent.
	ErrMissingPhone = errors.New("phone number is required")

	// ErrInvalidPhone is returned when the phone number does not normalize to 10 digits.
	ErrInvalidPhone = errors.New("phone number must be 10 digits")

	// ErrInvalidAge is returned for negative ages.
	ErrInvalidAge = errors.New("age must be non-negative")

	// ErrInvalidImageType is returned for unsupported scan image extensions.
	ErrInvalidImageType = errors.New("invalid image file type")

	// ErrInvalidReportType is returned for unsupported report extensions.
	ErrInvalidReportType = errors.New("invalid report file type")
)
