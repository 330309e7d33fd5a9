// Package server exposes the rekap workflow over HTTP.
package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"faktur/internal/batch"
	"faktur/internal/export"
	"faktur/internal/logger"
	"faktur/internal/pdftext"
	"faktur/pkg/models"
)

const (
	MaxUploadSize = 100 * 1024 * 1024 // whole request, all files
	Version       = "1.0.0"

	maxMemory = 32 << 20
)

// Handler handles HTTP requests for the rekap workflow.
type Handler struct {
	extractor pdftext.TextExtractor
	workers   int
	log       zerolog.Logger
}

// NewHandler creates a handler that reads uploads with extractor.
func NewHandler(extractor pdftext.TextExtractor, workers int) *Handler {
	return &Handler{
		extractor: extractor,
		workers:   workers,
		log:       logger.WithComponent("server"),
	}
}

// SetupRoutes configures the HTTP routes
func (h *Handler) SetupRoutes() *mux.Router {
	router := mux.NewRouter()
	router.Use(h.requestLogger)

	router.HandleFunc("/api/extract", h.Extract).Methods("POST")
	router.HandleFunc("/api/export", h.Export).Methods("POST")
	router.HandleFunc("/api/columns", h.Columns).Methods("GET")

	router.HandleFunc("/health", h.Health).Methods("GET")

	return router
}

// HealthResponse represents the health check response structure
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
	Uptime    string `json:"uptime"`
}

var startTime = time.Now()

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Version:   Version,
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime:    time.Since(startTime).String(),
	})
}

// Columns lists every column in the default order.
func (h *Handler) Columns(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, http.StatusOK, map[string]interface{}{
		"columns": export.DefaultColumns(),
	})
}

// DocumentReport describes how one uploaded file was read.
type DocumentReport struct {
	Filename string   `json:"filename"`
	Layout   string   `json:"layout"`
	Pages    int      `json:"pages"`
	Items    int      `json:"items"`
	Rows     int      `json:"rows"`
	Warnings []string `json:"warnings,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// ExtractResponse is returned by POST /api/extract.
type ExtractResponse struct {
	RunID     string                   `json:"run_id"`
	Message   string                   `json:"message"`
	Columns   []string                 `json:"columns"`
	Rows      []map[string]interface{} `json:"rows"`
	Documents []DocumentReport         `json:"documents"`
}

// Extract reads the uploaded files and returns the rows as JSON. The rows are
// in upload order; the optional "columns" field restricts the column list.
func (h *Handler) Extract(w http.ResponseWriter, r *http.Request) {
	inputs, cols, ok := h.parseUpload(w, r)
	if !ok {
		return
	}

	res := batch.NewProcessor(h.extractor, h.workers).Process(r.Context(), inputs)

	resp := ExtractResponse{
		RunID:     res.RunID,
		Message:   fmt.Sprintf("%d baris berhasil dibaca", len(res.Rows)),
		Columns:   cols,
		Rows:      make([]map[string]interface{}, 0, len(res.Rows)),
		Documents: make([]DocumentReport, 0, len(res.Documents)),
	}
	for _, row := range res.Rows {
		resp.Rows = append(resp.Rows, rowMap(row, cols))
	}
	for _, d := range res.Documents {
		resp.Documents = append(resp.Documents, report(d))
	}

	h.sendJSON(w, http.StatusOK, resp)
}

// Export reads the uploaded files and returns the xlsx workbook.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	inputs, cols, ok := h.parseUpload(w, r)
	if !ok {
		return
	}

	res := batch.NewProcessor(h.extractor, h.workers).Process(r.Context(), inputs)

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, res.Rows, cols); err != nil {
		h.log.Error().Err(err).Str("run_id", res.RunID).Msg("Failed to write workbook")
		h.sendError(w, http.StatusInternalServerError, "failed to write workbook")
		return
	}

	w.Header().Set("Content-Type", export.ContentTypeXLSX)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.DefaultFilename))
	w.Header().Set("X-Rekap-Rows", fmt.Sprint(len(res.Rows)))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// parseUpload reads the "files" parts and the optional "columns" field. On
// failure it has already written the error response.
func (h *Handler) parseUpload(w http.ResponseWriter, r *http.Request) ([]batch.Input, []string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		h.sendError(w, http.StatusBadRequest, "Files too large or invalid form data")
		return nil, nil, false
	}

	cols, err := export.ParseColumns(r.FormValue("columns"))
	if err != nil {
		h.sendError(w, http.StatusBadRequest, err.Error())
		return nil, nil, false
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		h.sendError(w, http.StatusBadRequest, "No files provided (use 'files' field)")
		return nil, nil, false
	}

	inputs := make([]batch.Input, 0, len(files))
	for _, fh := range files {
		inputs = append(inputs, uploadInput(fh))
	}
	return inputs, cols, true
}

func uploadInput(fh *multipart.FileHeader) batch.Input {
	return batch.Input{
		Filename: filepath.Base(fh.Filename),
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

func rowMap(row models.Row, cols []string) map[string]interface{} {
	out := make(map[string]interface{}, len(cols))
	for _, c := range cols {
		out[c], _ = row.Value(c)
	}
	return out
}

func report(d batch.DocumentResult) DocumentReport {
	rep := DocumentReport{
		Filename: d.Filename,
		Layout:   d.Layout.String(),
		Pages:    d.PageCount,
		Items:    d.ItemCount,
		Rows:     d.RowCount,
		Warnings: d.Warnings,
	}
	if d.Err != nil {
		rep.Error = d.Err.Error()
	}
	return rep
}

func (h *Handler) sendJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Warn().Err(err).Msg("Failed to encode response")
	}
}

// sendError sends an error response
func (h *Handler) sendError(w http.ResponseWriter, statusCode int, message string) {
	h.sendJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
