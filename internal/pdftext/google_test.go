package pdftext

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	statuspb "google.golang.org/genproto/googleapis/rpc/status"
)

func visionPage(text string) *visionpb.AnnotateImageResponse {
	return &visionpb.AnnotateImageResponse{
		FullTextAnnotation: &visionpb.TextAnnotation{Text: text},
	}
}

func TestVisionText(t *testing.T) {
	tests := []struct {
		name    string
		pages   []*visionpb.AnnotateImageResponse
		want    string
		wantErr error
	}{
		{
			name:  "single page",
			pages: []*visionpb.AnnotateImageResponse{visionPage("Faktur Pajak\n")},
			want:  "Faktur Pajak\n",
		},
		{
			name:  "pages joined in order",
			pages: []*visionpb.AnnotateImageResponse{visionPage("Halaman 1\n"), visionPage("Halaman 2\n")},
			want:  "Halaman 1\nHalaman 2\n",
		},
		{
			name:  "page without annotation is skipped",
			pages: []*visionpb.AnnotateImageResponse{visionPage("Halaman 1\n"), {}, visionPage("Halaman 3\n")},
			want:  "Halaman 1\nHalaman 3\n",
		},
		{
			name: "page error",
			pages: []*visionpb.AnnotateImageResponse{
				visionPage("Halaman 1\n"),
				{Error: &statuspb.Status{Code: 3, Message: "bad image data"}},
			},
			wantErr: ErrOCRFailed,
		},
		{
			name:    "whitespace only",
			pages:   []*visionpb.AnnotateImageResponse{visionPage(" \n"), visionPage("\t")},
			wantErr: ErrEmptyDocument,
		},
		{
			name:    "no annotations",
			pages:   []*visionpb.AnnotateImageResponse{{}, {}},
			wantErr: ErrEmptyDocument,
		},
		{
			name:    "no pages",
			wantErr: ErrEmptyDocument,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := visionText(&visionpb.AnnotateFileResponse{Responses: tt.pages})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVisionText_PageErrorNamesPage(t *testing.T) {
	_, err := visionText(&visionpb.AnnotateFileResponse{Responses: []*visionpb.AnnotateImageResponse{
		visionPage("Halaman 1\n"),
		{Error: &statuspb.Status{Message: "bad image data"}},
	}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page 2")
	assert.Contains(t, err.Error(), "bad image data")
}

func TestDocumentText(t *testing.T) {
	tests := []struct {
		name      string
		resp      *documentaipb.ProcessResponse
		want      string
		wantPages int
		wantErr   error
	}{
		{
			name: "text and pages",
			resp: &documentaipb.ProcessResponse{Document: &documentaipb.Document{
				Text:  "Halaman 1\nHalaman 2\n",
				Pages: []*documentaipb.Document_Page{{PageNumber: 1}, {PageNumber: 2}},
			}},
			want:      "Halaman 1\nHalaman 2\n",
			wantPages: 2,
		},
		{
			name:    "no document",
			resp:    &documentaipb.ProcessResponse{},
			wantErr: ErrOCRFailed,
		},
		{
			name:    "nil response",
			wantErr: ErrOCRFailed,
		},
		{
			name:    "blank text",
			resp:    &documentaipb.ProcessResponse{Document: &documentaipb.Document{Text: "  \n"}},
			wantErr: ErrEmptyDocument,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, pages, err := documentText(tt.resp)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, text)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, text)
			assert.Equal(t, tt.wantPages, pages)
		})
	}
}

func TestHandleProcessingError(t *testing.T) {
	d := &DocumentAIExtractor{config: DocumentAIConfig{ProcessorID: "ocr-1"}}

	tests := []struct {
		msg  string
		want error
	}{
		{"rpc error: code = PermissionDenied desc = PERMISSION_DENIED", ErrMissingCredentials},
		{"rpc error: code = NotFound desc = NOT_FOUND", ErrInvalidConfiguration},
		{"rpc error: code = InvalidArgument desc = INVALID_ARGUMENT", ErrInvalidPDF},
		{"rpc error: code = DeadlineExceeded desc = context deadline exceeded", context.DeadlineExceeded},
		{"rpc error: code = Canceled desc = context canceled", ErrContextCanceled},
		{"rpc error: code = Internal desc = boom", ErrOCRFailed},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			err := d.handleProcessingError("ExtractTextWithMetadata", errors.New(tt.msg))
			assert.ErrorIs(t, err, tt.want)

			var extErr *ExtractionError
			require.ErrorAs(t, err, &extErr)
			assert.Equal(t, SourceDocumentAI, extErr.Source)
		})
	}
}
