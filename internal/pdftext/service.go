// Package pdftext turns uploaded PDF invoices into plain text.
//
// Three sources are available and share the TextExtractor interface:
//
//   - LocalExtractor reads the embedded text layer with github.com/ledongthuc/pdf.
//     It is the default and needs no credentials. Coretax invoices are born
//     digital, so this is what almost every deployment uses.
//   - VisionExtractor runs Google Cloud Vision document text detection for
//     scanned invoices (synchronous, at most 5 pages).
//   - DocumentAIExtractor sends the document to a Document AI OCR processor.
//
// Every source checks the size limit and the %PDF header before doing any
// work. Page texts are concatenated without a separator.
//
// Google sources read credentials the same way:
//   - GOOGLE_CREDENTIALS: inline service account JSON, OR
//   - GOOGLE_APPLICATION_CREDENTIALS: path to a service account JSON file
//   - otherwise Application Default Credentials
package pdftext

import (
	"context"
	"io"
	"time"
)

// Source names, as accepted in TEXT_SOURCE.
const (
	SourcePDF        = "pdf"
	SourceVision     = "vision"
	SourceDocumentAI = "documentai"
)

// DefaultMaxSizeBytes is used when Options.MaxSizeBytes is zero.
const DefaultMaxSizeBytes = 20 * 1024 * 1024

// TextExtractor extracts the plain text of a PDF document.
type TextExtractor interface {
	// ExtractText returns the concatenated text of all pages.
	ExtractText(ctx context.Context, pdfData io.Reader) (string, error)

	// ExtractTextWithMetadata returns the text along with page count and timing.
	ExtractTextWithMetadata(ctx context.Context, pdfData io.Reader) (*Result, error)

	// Close releases any client held by the extractor.
	Close() error
}

// Result contains extracted text with metadata.
type Result struct {
	// Text is the content of all pages in reading order.
	Text string `json:"text"`

	// PageCount is the number of pages in the document.
	PageCount int `json:"page_count"`

	// Source names the extractor that produced Text.
	Source string `json:"source"`

	// Encrypted reports an encryption dictionary in the document. Text could
	// still be read, otherwise ErrEncrypted is returned instead.
	Encrypted bool `json:"encrypted,omitempty"`

	ProcessedAt        time.Time     `json:"processed_at"`
	ProcessingDuration time.Duration `json:"processing_duration"`
}

// extractText is the shared ExtractText implementation.
func extractText(ctx context.Context, e TextExtractor, pdfData io.Reader) (string, error) {
	result, err := e.ExtractTextWithMetadata(ctx, pdfData)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}
