package pdftext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog"

	"faktur/internal/logger"
)

// LocalExtractor reads the text layer of a PDF without any remote call.
type LocalExtractor struct {
	maxSize int64
	log     zerolog.Logger
}

// NewLocalExtractor returns a LocalExtractor. maxSize <= 0 selects
// DefaultMaxSizeBytes.
func NewLocalExtractor(maxSize int64) *LocalExtractor {
	return &LocalExtractor{
		maxSize: maxSize,
		log:     logger.WithComponent("pdftext-local"),
	}
}

// ExtractText extracts the concatenated text of all pages.
func (e *LocalExtractor) ExtractText(ctx context.Context, pdfData io.Reader) (string, error) {
	return extractText(ctx, e, pdfData)
}

// ExtractTextWithMetadata extracts the text of all pages with metadata.
func (e *LocalExtractor) ExtractTextWithMetadata(ctx context.Context, pdfData io.Reader) (*Result, error) {
	const op = "ExtractTextWithMetadata"
	startTime := time.Now()

	data, err := readPDF(pdfData, e.maxSize)
	if err != nil {
		return nil, WrapError(op, SourcePDF, err, "")
	}

	info, err := Inspect(data)
	if err != nil {
		return nil, WrapError(op, SourcePDF, err, "preflight failed")
	}

	text, err := readTextLayer(ctx, data)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, WrapError(op, SourcePDF, ErrContextCanceled, err.Error())
		}
		if info.Encrypted {
			return nil, WrapError(op, SourcePDF, ErrEncrypted, err.Error())
		}
		return nil, WrapError(op, SourcePDF, fmt.Errorf("%w: %v", ErrInvalidPDF, err), "failed to read text layer")
	}

	if strings.TrimSpace(text) == "" {
		return nil, WrapError(op, SourcePDF, ErrEmptyDocument, fmt.Sprintf("%d pages without a text layer", info.PageCount))
	}

	result := &Result{
		Text:        text,
		PageCount:   info.PageCount,
		Source:      SourcePDF,
		Encrypted:   info.Encrypted,
		ProcessedAt: time.Now(),
	}
	result.ProcessingDuration = result.ProcessedAt.Sub(startTime)

	e.log.Debug().
		Int("pages", result.PageCount).
		Int("chars", len(text)).
		Dur("duration", result.ProcessingDuration).
		Msg("Text layer extracted")

	return result, nil
}

// Close is a no-op.
func (e *LocalExtractor) Close() error {
	return nil
}

// readTextLayer returns the text of every page, pages joined without a
// separator.
func readTextLayer(ctx context.Context, data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while parsing PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		sb.WriteString(pageRows(page))
	}
	return sb.String(), nil
}

// Glyphs whose baselines differ by at most yTolerance share a row. Within a
// row, a gap wider than xTolerance is a word space and a gap wider than
// columnGap separates table cells, which end up on lines of their own.
const (
	xTolerance = 3.0
	yTolerance = 3.0
	columnGap  = 10.0
)

// pageRows rebuilds the lines of a page from positioned glyphs. Rows run top
// to bottom, cells left to right, and every line ends with a newline.
func pageRows(page pdf.Page) string {
	glyphs := page.Content().Text
	if len(glyphs) == 0 {
		return ""
	}

	sort.SliceStable(glyphs, func(i, j int) bool {
		return glyphs[i].Y > glyphs[j].Y
	})

	var sb strings.Builder
	for start := 0; start < len(glyphs); {
		end := start + 1
		for end < len(glyphs) && glyphs[start].Y-glyphs[end].Y <= yTolerance {
			end++
		}
		writeRow(&sb, glyphs[start:end])
		start = end
	}
	return sb.String()
}

// writeRow writes one visual row, one line per cell.
func writeRow(sb *strings.Builder, row []pdf.Text) {
	sort.SliceStable(row, func(i, j int) bool {
		return row[i].X < row[j].X
	})

	var line strings.Builder
	for i, g := range row {
		if i > 0 {
			prev := row[i-1]
			gap := g.X - (prev.X + prev.W)
			switch {
			case gap > columnGap:
				writeLine(sb, line.String())
				line.Reset()
			case gap > xTolerance && !strings.HasSuffix(line.String(), " "):
				line.WriteByte(' ')
			}
		}
		line.WriteString(g.S)
	}
	writeLine(sb, line.String())
}

func writeLine(sb *strings.Builder, s string) {
	if s = strings.TrimSpace(s); s != "" {
		sb.WriteString(s)
		sb.WriteByte('\n')
	}
}
