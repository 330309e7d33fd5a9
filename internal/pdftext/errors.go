package pdftext

import (
	"errors"
	"fmt"
)

// Common text extraction errors
var (
	// ErrDocumentTooLarge is returned when the PDF exceeds the configured size limit.
	ErrDocumentTooLarge = errors.New("document exceeds maximum size limit")

	// ErrInvalidPDF is returned when the provided data is not a valid PDF document.
	ErrInvalidPDF = errors.New("invalid or corrupted PDF document")

	// ErrEncrypted is returned when the PDF is password protected and its text
	// cannot be read.
	ErrEncrypted = errors.New("PDF is encrypted")

	// ErrEmptyDocument is returned when the PDF contains no readable text.
	// Scanned invoices usually need the vision source.
	ErrEmptyDocument = errors.New("document contains no readable text")

	// ErrTooManyPages is returned when a synchronous OCR call would exceed its page limit.
	ErrTooManyPages = errors.New("PDF has too many pages for synchronous OCR")

	// ErrOCRFailed is returned when a Google OCR call fails.
	ErrOCRFailed = errors.New("OCR processing failed")

	// ErrMissingCredentials is returned when no Google Cloud credentials are configured.
	ErrMissingCredentials = errors.New("missing Google Cloud credentials: set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS environment variable")

	// ErrInvalidConfiguration is returned when extractor options are incomplete.
	ErrInvalidConfiguration = errors.New("invalid text extraction configuration")

	// ErrUnknownSource is returned by New for an unsupported source name.
	ErrUnknownSource = errors.New("unknown text source")

	// ErrContextCanceled is returned when the context is canceled during processing.
	ErrContextCanceled = errors.New("text extraction was canceled")
)

// ExtractionError wraps errors with the operation and source that failed.
type ExtractionError struct {
	// Op is the operation that failed (e.g., "ExtractTextWithMetadata").
	Op string

	// Source is the extractor name (pdf, vision, documentai).
	Source string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *ExtractionError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("pdftext[%s]: %s failed: %s: %v", e.Source, e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("pdftext[%s]: %s failed: %v", e.Source, e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *ExtractionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// WrapError wraps an error as an ExtractionError if it isn't already one.
func WrapError(op, source string, err error, details string) error {
	if err == nil {
		return nil
	}

	var extErr *ExtractionError
	if errors.As(err, &extErr) {
		return err // Already wrapped
	}

	return &ExtractionError{
		Op:      op,
		Source:  source,
		Err:     err,
		Details: details,
	}
}
