package pdftext

import (
	"context"
	"fmt"
	"strings"
)

// Options selects and configures a text source.
type Options struct {
	Source       string // pdf, vision or documentai
	MaxSizeBytes int64
	DocumentAI   DocumentAIConfig
}

// New returns the extractor named by opts.Source. An empty source selects
// the local text layer reader.
func New(ctx context.Context, opts Options) (TextExtractor, error) {
	switch strings.ToLower(opts.Source) {
	case "", SourcePDF:
		return NewLocalExtractor(opts.MaxSizeBytes), nil
	case SourceVision:
		v, err := NewVisionExtractor(ctx, opts.MaxSizeBytes)
		if err != nil {
			return nil, err
		}
		return v, nil
	case SourceDocumentAI:
		cfg := opts.DocumentAI
		if cfg.MaxSizeBytes == 0 {
			cfg.MaxSizeBytes = opts.MaxSizeBytes
		}
		d, err := NewDocumentAIExtractor(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return d, nil
	default:
		return nil, WrapError("New", opts.Source, fmt.Errorf("%w: %q", ErrUnknownSource, opts.Source), "")
	}
}
