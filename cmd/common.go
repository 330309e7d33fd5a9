package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"faktur/internal/config"
	"faktur/internal/pdftext"
)

// createContextWithTimeout creates a context with timeout and signal handling
func createContextWithTimeout(timeoutSecs int, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// newExtractor creates the text source named by TEXT_SOURCE.
func newExtractor(ctx context.Context, cfg *config.Config, log zerolog.Logger) (pdftext.TextExtractor, error) {
	extractor, err := pdftext.New(ctx, pdftext.Options{
		Source:       cfg.TextSource,
		MaxSizeBytes: cfg.MaxDocumentSizeBytes(),
		DocumentAI: pdftext.DocumentAIConfig{
			ProjectID:        cfg.GoogleCloudProject,
			Location:         cfg.GoogleCloudLocation,
			ProcessorID:      cfg.DocumentAIProcessorID,
			ProcessorVersion: cfg.DocumentAIProcessorVersion,
		},
	})
	if err != nil {
		if errors.Is(err, pdftext.ErrMissingCredentials) {
			log.Error().Err(err).Str("source", cfg.TextSource).Msg("Google Cloud credentials not configured")
			return nil, fmt.Errorf("TEXT_SOURCE=%s needs Google Cloud credentials. Set one of:\n\n"+
				"1. GOOGLE_APPLICATION_CREDENTIALS with the path to a service account JSON file\n"+
				"2. GOOGLE_CREDENTIALS with the inline JSON\n"+
				"3. Application Default Credentials (gcloud auth application-default login)\n\n"+
				"Or use TEXT_SOURCE=pdf to read the text layer locally", cfg.TextSource)
		}
		log.Error().Err(err).Str("source", cfg.TextSource).Msg("Failed to create text extractor")
		return nil, fmt.Errorf("failed to create text extractor: %w", err)
	}

	log.Debug().Str("source", cfg.TextSource).Msg("Text extractor created")
	return extractor, nil
}

// handleExtractionError provides user-friendly messages for text extraction failures
func handleExtractionError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("Text extraction failed")

	errStr := err.Error()

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("text extraction timed out. Try increasing --timeout")
	case errors.Is(err, context.Canceled), errors.Is(err, pdftext.ErrContextCanceled):
		return fmt.Errorf("text extraction was canceled")
	case errors.Is(err, pdftext.ErrDocumentTooLarge):
		return fmt.Errorf("PDF file is too large. Raise MAX_DOCUMENT_SIZE_MB or split the file")
	case errors.Is(err, pdftext.ErrTooManyPages):
		return fmt.Errorf("PDF has too many pages for Vision OCR (maximum %d). Use TEXT_SOURCE=documentai", pdftext.MaxVisionPages)
	case errors.Is(err, pdftext.ErrEncrypted):
		return fmt.Errorf("PDF is password protected. Remove the password and try again")
	case errors.Is(err, pdftext.ErrInvalidPDF):
		return fmt.Errorf("invalid or corrupted PDF file. Please check the file integrity")
	case errors.Is(err, pdftext.ErrEmptyDocument):
		return fmt.Errorf("no readable text found in the document. If it is a scan, use TEXT_SOURCE=vision")
	case strings.Contains(errStr, "Unauthenticated") ||
		strings.Contains(errStr, "invalid_grant") ||
		strings.Contains(errStr, "transport: per-RPC creds failed"):
		return fmt.Errorf("Google Cloud authentication failed. Please check your credentials: %v", err)
	case strings.Contains(errStr, "PERMISSION_DENIED"):
		return fmt.Errorf("permission denied. Check the roles of the Google Cloud service account")
	case errors.Is(err, pdftext.ErrOCRFailed):
		return fmt.Errorf("OCR processing failed. This may be due to network issues, API quota limits, or service unavailability: %w", err)
	default:
		return fmt.Errorf("text extraction failed: %w", err)
	}
}

// collectPDFs expands the arguments into PDF paths. Directories are walked;
// files are taken as given, in argument order.
func collectPDFs(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("not found: %s", arg)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		found, err := findPDFFiles(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to scan folder %s: %w", arg, err)
		}
		files = append(files, found...)
	}
	return files, nil
}

// findPDFFiles finds all PDF files in the specified folder in lexical order
func findPDFFiles(folderPath string) ([]string, error) {
	var pdfFiles []string

	err := filepath.Walk(folderPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(strings.ToLower(info.Name()), ".pdf") {
			pdfFiles = append(pdfFiles, path)
		}
		return nil
	})

	return pdfFiles, err
}
