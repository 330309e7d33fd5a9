package pdftext

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/rs/zerolog"

	"faktur/internal/logger"
)

// MaxVisionPages is the page limit of synchronous document text detection.
const MaxVisionPages = 5

// VisionExtractor implements TextExtractor using Google Cloud Vision API.
type VisionExtractor struct {
	client  *vision.ImageAnnotatorClient
	maxSize int64
	log     zerolog.Logger
}

// NewVisionExtractor creates a Vision client with credentials from environment.
func NewVisionExtractor(ctx context.Context, maxSize int64) (*VisionExtractor, error) {
	const op = "NewVisionExtractor"

	opts := credentialOptions()
	client, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		if len(opts) == 0 {
			return nil, WrapError(op, SourceVision, ErrMissingCredentials, "no credentials found in environment")
		}
		return nil, WrapError(op, SourceVision, err, "failed to create Vision client")
	}

	return NewVisionExtractorWithClient(client, maxSize), nil
}

// NewVisionExtractorWithClient creates an extractor with an explicit client (for testing).
func NewVisionExtractorWithClient(client *vision.ImageAnnotatorClient, maxSize int64) *VisionExtractor {
	return &VisionExtractor{
		client:  client,
		maxSize: maxSize,
		log:     logger.WithComponent("pdftext-vision"),
	}
}

// ExtractText extracts the concatenated text of all pages.
func (v *VisionExtractor) ExtractText(ctx context.Context, pdfData io.Reader) (string, error) {
	return extractText(ctx, v, pdfData)
}

// ExtractTextWithMetadata runs document text detection over all pages.
func (v *VisionExtractor) ExtractTextWithMetadata(ctx context.Context, pdfData io.Reader) (*Result, error) {
	const op = "ExtractTextWithMetadata"
	startTime := time.Now()

	data, err := readPDF(pdfData, v.maxSize)
	if err != nil {
		return nil, WrapError(op, SourceVision, err, "")
	}

	// Reject before paying for the API call.
	info, err := Inspect(data)
	if err != nil {
		return nil, WrapError(op, SourceVision, err, "preflight failed")
	}
	if info.PageCount > MaxVisionPages {
		return nil, WrapError(op, SourceVision, ErrTooManyPages, fmt.Sprintf("document has %d pages", info.PageCount))
	}

	req := &visionpb.BatchAnnotateFilesRequest{
		Requests: []*visionpb.AnnotateFileRequest{
			{
				InputConfig: &visionpb.InputConfig{
					Content:  data,
					MimeType: "application/pdf",
				},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
			},
		},
	}

	resp, err := v.client.BatchAnnotateFiles(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, WrapError(op, SourceVision, ErrContextCanceled, err.Error())
		}
		return nil, WrapError(op, SourceVision, ErrOCRFailed, fmt.Sprintf("Vision API call failed: %v", err))
	}
	if len(resp.Responses) == 0 {
		return nil, WrapError(op, SourceVision, ErrOCRFailed, "no response from Vision API")
	}

	fileResp := resp.Responses[0]
	if fileResp.Error != nil {
		return nil, WrapError(op, SourceVision, ErrOCRFailed, fmt.Sprintf("Vision API error: %s", fileResp.Error.Message))
	}

	text, err := visionText(fileResp)
	if err != nil {
		return nil, WrapError(op, SourceVision, err, "failed to process Vision API response")
	}

	result := &Result{
		Text:        text,
		PageCount:   len(fileResp.Responses),
		Source:      SourceVision,
		Encrypted:   info.Encrypted,
		ProcessedAt: time.Now(),
	}
	result.ProcessingDuration = result.ProcessedAt.Sub(startTime)

	v.log.Debug().
		Int("pages", result.PageCount).
		Dur("duration", result.ProcessingDuration).
		Msg("Vision text detection completed")

	return result, nil
}

// visionText joins the full text annotation of every page.
func visionText(fileResp *visionpb.AnnotateFileResponse) (string, error) {
	var sb strings.Builder
	for pageIdx, page := range fileResp.Responses {
		if page.Error != nil {
			return "", fmt.Errorf("%w: page %d: %s", ErrOCRFailed, pageIdx+1, page.Error.Message)
		}
		if page.FullTextAnnotation != nil {
			sb.WriteString(page.FullTextAnnotation.Text)
		}
	}

	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyDocument
	}
	return text, nil
}

// Close closes the underlying Vision client.
func (v *VisionExtractor) Close() error {
	if v.client != nil {
		return v.client.Close()
	}
	return nil
}
