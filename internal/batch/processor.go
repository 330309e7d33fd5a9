// Package batch turns a set of uploaded invoices into spreadsheet rows.
//
// Documents are read by a bounded worker pool, since text extraction may call
// a remote OCR service. Rows are always assembled in upload order, then item
// order, whatever order the workers finish in.
package batch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"faktur/internal/faktur"
	"faktur/internal/logger"
	"faktur/internal/pdftext"
	"faktur/pkg/models"
)

// DefaultWorkers is used when a Processor is created with workers <= 0.
const DefaultWorkers = 4

// Input is one uploaded document.
type Input struct {
	Filename string
	Open     func() (io.ReadCloser, error)
}

// FileInput reads the document at path. Filename is the base name.
func FileInput(path string) Input {
	return Input{
		Filename: filepath.Base(path),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}

// BytesInput wraps an in-memory upload.
func BytesInput(filename string, data []byte) Input {
	return Input{
		Filename: filename,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// DocumentResult reports how one document was read.
type DocumentResult struct {
	Filename  string
	Index     int
	Layout    faktur.TableLayout
	PageCount int
	ItemCount int
	RowCount  int
	Warnings  []string
	Err       error // text could not be read; the document has one placeholder row
	Duration  time.Duration
}

// Failed reports whether the document text could not be read.
func (d DocumentResult) Failed() bool {
	return d.Err != nil
}

// Result is the outcome of one run.
type Result struct {
	RunID     string
	Rows      []models.Row
	Documents []DocumentResult
}

// Failed counts the documents whose text could not be read.
func (r *Result) Failed() int {
	n := 0
	for _, d := range r.Documents {
		if d.Failed() {
			n++
		}
	}
	return n
}

// ProgressFunc is called once per finished document. Calls are serialised.
type ProgressFunc func(done, total int, doc DocumentResult)

// Processor reads documents with a TextExtractor and extracts their rows.
type Processor struct {
	extractor pdftext.TextExtractor
	workers   int
	progress  ProgressFunc
	log       zerolog.Logger
}

// NewProcessor creates a processor with the given worker count.
func NewProcessor(extractor pdftext.TextExtractor, workers int) *Processor {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Processor{
		extractor: extractor,
		workers:   workers,
		log:       logger.WithComponent("batch"),
	}
}

// OnProgress registers fn to be told about each finished document.
func (p *Processor) OnProgress(fn ProgressFunc) *Processor {
	p.progress = fn
	return p
}

type job struct {
	input Input
	index int
}

type extracted struct {
	doc  DocumentResult
	rows []models.Row
}

// Process reads every input and returns the rows in upload order. It never
// fails as a whole: a document that cannot be read is reported in its
// DocumentResult and contributes a single placeholder row. A cancelled ctx
// marks the remaining documents as failed.
func (p *Processor) Process(ctx context.Context, inputs []Input) *Result {
	runID := uuid.New().String()
	log := p.log.With().Str("run_id", runID).Logger()
	start := time.Now()

	log.Info().
		Int("documents", len(inputs)).
		Int("workers", p.workers).
		Msg("Starting batch")

	jobs := make(chan job, len(inputs))
	results := make([]extracted, len(inputs))

	var processed int
	var mu sync.Mutex

	workers := p.workers
	if workers > len(inputs) {
		workers = len(inputs)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			for j := range jobs {
				log.Debug().
					Int("worker", workerID).
					Str("file", j.input.Filename).
					Int("index", j.index+1).
					Msg("Worker processing document")

				res := p.processOne(ctx, j.input, log)
				res.doc.Index = j.index
				results[j.index] = res

				mu.Lock()
				processed++
				if p.progress != nil {
					p.progress(processed, len(inputs), res.doc)
				}
				mu.Unlock()
			}
		}(w)
	}

	for i, in := range inputs {
		jobs <- job{input: in, index: i}
	}
	close(jobs)
	wg.Wait()

	out := &Result{
		RunID:     runID,
		Documents: make([]DocumentResult, len(results)),
	}
	for i, r := range results {
		out.Documents[i] = r.doc
		out.Rows = append(out.Rows, r.rows...)
	}

	log.Info().
		Int("documents", len(inputs)).
		Int("rows", len(out.Rows)).
		Int("failed", out.Failed()).
		Dur("duration", time.Since(start)).
		Msg("Batch finished")

	return out
}

func (p *Processor) processOne(ctx context.Context, in Input, log zerolog.Logger) extracted {
	start := time.Now()
	doc := DocumentResult{Filename: in.Filename}

	text, pages, err := p.readText(ctx, in)
	if err != nil {
		doc.Err = err
		log.Warn().
			Err(err).
			Str("file", in.Filename).
			Msg("Could not read document text, emitting placeholder row")
	}
	doc.PageCount = pages

	ex := faktur.Extract(models.Document{Filename: in.Filename, Text: text})
	rows := ex.Rows()

	doc.Layout = ex.Layout
	doc.ItemCount = len(ex.Items)
	doc.RowCount = len(rows)
	if err == nil {
		doc.Warnings = faktur.CheckTotals(ex.Totals, ex.Items).Warnings
	}
	doc.Duration = time.Since(start)

	log.Info().
		Str("file", in.Filename).
		Str("layout", ex.Layout.String()).
		Int("items", doc.ItemCount).
		Int("warnings", len(doc.Warnings)).
		Dur("duration", doc.Duration).
		Msg("Document extracted")

	for _, w := range doc.Warnings {
		log.Warn().Str("file", in.Filename).Msg(w)
	}

	return extracted{doc: doc, rows: rows}
}

func (p *Processor) readText(ctx context.Context, in Input) (string, int, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, fmt.Errorf("%w: %v", pdftext.ErrContextCanceled, err)
	}
	if in.Open == nil {
		return "", 0, errors.New("no document content")
	}

	rc, err := in.Open()
	if err != nil {
		return "", 0, fmt.Errorf("open %s: %w", in.Filename, err)
	}
	defer rc.Close()

	res, err := p.extractor.ExtractTextWithMetadata(ctx, rc)
	if err != nil {
		return "", 0, err
	}
	return res.Text, res.PageCount, nil
}
