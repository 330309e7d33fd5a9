package pdftext

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"faktur/internal/logger"
)

// DocumentAIConfig holds configuration for Google Document AI processing.
type DocumentAIConfig struct {
	// ProjectID is the Google Cloud project ID where Document AI is enabled.
	ProjectID string

	// Location is the processing location (e.g., "us", "eu").
	Location string

	// ProcessorID is the ID of an OCR (Document OCR) processor.
	ProcessorID string

	// ProcessorVersion optionally pins a processor version.
	ProcessorVersion string

	// Timeout is the maximum time to wait for one document.
	Timeout time.Duration

	// MaxSizeBytes limits the uploaded document size.
	MaxSizeBytes int64
}

// ProcessorName returns the full resource name of the processor.
func (c DocumentAIConfig) ProcessorName() string {
	name := fmt.Sprintf("projects/%s/locations/%s/processors/%s", c.ProjectID, c.Location, c.ProcessorID)
	if c.ProcessorVersion != "" {
		name += "/processorVersions/" + c.ProcessorVersion
	}
	return name
}

func (c DocumentAIConfig) validate() error {
	if c.ProjectID == "" {
		return fmt.Errorf("%w: project ID is required", ErrInvalidConfiguration)
	}
	if c.ProcessorID == "" {
		return fmt.Errorf("%w: processor ID is required", ErrInvalidConfiguration)
	}
	return nil
}

// DocumentAIExtractor implements TextExtractor with a Document AI OCR processor.
type DocumentAIExtractor struct {
	client *documentai.DocumentProcessorClient
	config DocumentAIConfig
	log    zerolog.Logger
}

// NewDocumentAIExtractor creates a Document AI client for the configured
// location with credentials from environment.
func NewDocumentAIExtractor(ctx context.Context, config DocumentAIConfig) (*DocumentAIExtractor, error) {
	const op = "NewDocumentAIExtractor"

	if config.Location == "" {
		config.Location = "us"
	}
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}
	if err := config.validate(); err != nil {
		return nil, WrapError(op, SourceDocumentAI, err, "")
	}

	var clientOptions []option.ClientOption
	if config.Location != "us" {
		endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", config.Location)
		clientOptions = append(clientOptions, option.WithEndpoint(endpoint))
	}
	creds := credentialOptions()
	clientOptions = append(clientOptions, creds...)

	client, err := documentai.NewDocumentProcessorClient(ctx, clientOptions...)
	if err != nil {
		if len(creds) == 0 {
			return nil, WrapError(op, SourceDocumentAI, ErrMissingCredentials, "no credentials found in environment")
		}
		return nil, WrapError(op, SourceDocumentAI, err, fmt.Sprintf("failed to create Document AI client for location: %s", config.Location))
	}

	return &DocumentAIExtractor{
		client: client,
		config: config,
		log:    logger.WithComponent("pdftext-documentai"),
	}, nil
}

// ExtractText extracts the concatenated text of all pages.
func (d *DocumentAIExtractor) ExtractText(ctx context.Context, pdfData io.Reader) (string, error) {
	return extractText(ctx, d, pdfData)
}

// ExtractTextWithMetadata sends the document to the OCR processor.
func (d *DocumentAIExtractor) ExtractTextWithMetadata(ctx context.Context, pdfData io.Reader) (*Result, error) {
	const op = "ExtractTextWithMetadata"
	startTime := time.Now()

	data, err := readPDF(pdfData, d.config.MaxSizeBytes)
	if err != nil {
		return nil, WrapError(op, SourceDocumentAI, err, "")
	}

	processCtx, cancel := context.WithTimeout(ctx, d.config.Timeout)
	defer cancel()

	req := &documentaipb.ProcessRequest{
		Name: d.config.ProcessorName(),
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  data,
				MimeType: "application/pdf",
			},
		},
	}

	resp, err := d.client.ProcessDocument(processCtx, req)
	if err != nil {
		return nil, d.handleProcessingError(op, err)
	}
	text, pages, err := documentText(resp)
	if err != nil {
		return nil, WrapError(op, SourceDocumentAI, err, "")
	}

	result := &Result{
		Text:        text,
		PageCount:   pages,
		Source:      SourceDocumentAI,
		ProcessedAt: time.Now(),
	}
	result.ProcessingDuration = result.ProcessedAt.Sub(startTime)

	d.log.Debug().
		Str("processor", d.config.ProcessorID).
		Int("pages", result.PageCount).
		Dur("duration", result.ProcessingDuration).
		Msg("Document AI OCR completed")

	return result, nil
}

// documentText returns the OCR text and page count of a processed document.
func documentText(resp *documentaipb.ProcessResponse) (string, int, error) {
	doc := resp.GetDocument()
	if doc == nil {
		return "", 0, fmt.Errorf("%w: no document in response", ErrOCRFailed)
	}
	if strings.TrimSpace(doc.Text) == "" {
		return "", 0, ErrEmptyDocument
	}
	return doc.Text, len(doc.Pages), nil
}

// handleProcessingError converts Document AI errors to extraction errors.
func (d *DocumentAIExtractor) handleProcessingError(op string, err error) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "PERMISSION_DENIED"):
		return WrapError(op, SourceDocumentAI, ErrMissingCredentials, "insufficient permissions for Document AI")
	case strings.Contains(errStr, "NOT_FOUND"):
		return WrapError(op, SourceDocumentAI, ErrInvalidConfiguration, fmt.Sprintf("processor not found: %s", d.config.ProcessorID))
	case strings.Contains(errStr, "INVALID_ARGUMENT"):
		return WrapError(op, SourceDocumentAI, ErrInvalidPDF, "document format not supported or corrupted")
	case strings.Contains(errStr, "DeadlineExceeded") || strings.Contains(errStr, "context deadline exceeded"):
		return WrapError(op, SourceDocumentAI, context.DeadlineExceeded, "processing timeout")
	case strings.Contains(errStr, "Canceled") || strings.Contains(errStr, "context canceled"):
		return WrapError(op, SourceDocumentAI, ErrContextCanceled, "processing was canceled")
	default:
		return WrapError(op, SourceDocumentAI, ErrOCRFailed, fmt.Sprintf("Document AI error: %v", err))
	}
}

// Close closes the underlying Document AI client.
func (d *DocumentAIExtractor) Close() error {
	if d.client != nil {
		return d.client.Close()
	}
	return nil
}
