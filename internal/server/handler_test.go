package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"faktur/internal/export"
	"faktur/internal/pdftext"
	"faktur/pkg/models"
)

const invoiceText = "Kode dan Nomor Seri Faktur Pajak: 04002500000000001\n" +
	"1 010000 Jasa Konsultasi\n" +
	"1.000.000,00\n" +
	"2 020000 Sewa Peralatan\n" +
	"500.000,00\n" +
	"Harga Jual / Penggantian / Uang Muka / Termin 1.500.000,00\n" +
	"JAKARTA, 5 Januari 2024\n"

// echoExtractor returns the uploaded bytes as the document text.
type echoExtractor struct{}

func (echoExtractor) ExtractText(ctx context.Context, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	return string(b), err
}

func (e echoExtractor) ExtractTextWithMetadata(ctx context.Context, r io.Reader) (*pdftext.Result, error) {
	text, err := e.ExtractText(ctx, r)
	if err != nil {
		return nil, err
	}
	if text == "corrupt" {
		return nil, pdftext.ErrInvalidPDF
	}
	return &pdftext.Result{Text: text, PageCount: 1, Source: "echo"}, nil
}

func (echoExtractor) Close() error { return nil }

type upload struct {
	name    string
	content string
}

func multipartRequest(t *testing.T, path string, files []upload, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := mw.CreateFormFile("files", f.name)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.content))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	NewHandler(echoExtractor{}, 2).SetupRoutes().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := serve(httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, Version, resp.Version)
}

func TestRequestIDIsEchoed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := serve(req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestColumns(t *testing.T) {
	rec := serve(httptest.NewRequest(http.MethodGet, "/api/columns", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Columns []string `json:"columns"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, models.AllColumns, resp.Columns)
}

func TestExtract(t *testing.T) {
	req := multipartRequest(t, "/api/extract", []upload{
		{"a.pdf", invoiceText},
		{"b.pdf", "corrupt"},
	}, map[string]string{"columns": "Nama Asli File,No,Masa"})

	rec := serve(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp ExtractResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, "3 baris berhasil dibaca", resp.Message)
	assert.Equal(t, []string{models.ColNamaFile, models.ColNo, models.ColMasa}, resp.Columns)

	require.Len(t, resp.Rows, 3)
	assert.Equal(t, map[string]interface{}{"Nama Asli File": "a.pdf", "No": "1", "Masa": "01"}, resp.Rows[0])
	assert.Equal(t, "2", resp.Rows[1]["No"])
	assert.Equal(t, map[string]interface{}{"Nama Asli File": "b.pdf", "No": "-", "Masa": "-"}, resp.Rows[2])

	require.Len(t, resp.Documents, 2)
	assert.Equal(t, "coded", resp.Documents[0].Layout)
	assert.Equal(t, 2, resp.Documents[0].Items)
	assert.Empty(t, resp.Documents[0].Error)
	assert.NotEmpty(t, resp.Documents[1].Error)
	assert.Equal(t, 1, resp.Documents[1].Rows)
}

func TestExtractRejectsBadRequests(t *testing.T) {
	tests := []struct {
		name   string
		files  []upload
		fields map[string]string
		want   string
	}{
		{"no files", nil, nil, "No files provided"},
		{"unknown column", []upload{{"a.pdf", invoiceText}}, map[string]string{"columns": "No,Alamat"}, "unknown column"},
		{"duplicate column", []upload{{"a.pdf", invoiceText}}, map[string]string{"columns": "No,NO"}, "duplicate column"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(multipartRequest(t, "/api/extract", tt.files, tt.fields))
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp map[string]string
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Contains(t, resp["error"], tt.want)
		})
	}
}

func TestExtractNotMultipart(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/extract", bytes.NewBufferString("{}"))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExport(t *testing.T) {
	req := multipartRequest(t, "/api/export", []upload{{"a.pdf", invoiceText}},
		map[string]string{"columns": "No,Harga Jual / Penggantian / Uang Muka / Termin (Rp)"})

	rec := serve(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, export.ContentTypeXLSX, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), export.DefaultFilename)
	assert.Equal(t, "2", rec.Header().Get("X-Rekap-Rows"))

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(export.SheetName)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{models.ColNo, models.ColHargaJualRp},
		{"1", "1000000"},
		{"2", "500000"},
	}, rows)
}

func TestMethodNotAllowed(t *testing.T) {
	rec := serve(httptest.NewRequest(http.MethodGet, "/api/extract", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
