package export

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"faktur/pkg/models"
)

func sampleRows() []models.Row {
	meta := models.NewMetadata()
	meta.KodeSeri = "04002500123456789"
	meta.NPWPPKP = "0123456789012000"
	meta.Tanggal = "05/01/2024"
	meta.Masa = "01"
	meta.Tahun = "2024"
	totals := models.Totals{HargaJual: 1500000, DPP: 1375000, PPN: 165000}

	return []models.Row{
		{Item: models.LineItem{No: "1", Description: "010000 - Jasa Konsultasi", Price: 1000000}, Meta: meta, Totals: totals, Filename: "a.pdf"},
		{Item: models.LineItem{No: "2", Description: "020000 - Sewa Peralatan", Price: 500000}, Meta: meta, Totals: totals, Filename: "a.pdf"},
		{Item: models.PlaceholderItem(), Meta: models.NewMetadata(), Filename: "b.pdf"},
	}
}

func TestParseColumns(t *testing.T) {
	cols, err := ParseColumns("")
	require.NoError(t, err)
	assert.Equal(t, models.AllColumns, cols)
	assert.Len(t, cols, 23)

	cols, err = ParseColumns(" nama asli file , No,Harga Jual / Penggantian / Uang Muka / Termin (Rp) ,")
	require.NoError(t, err)
	assert.Equal(t, []string{models.ColNamaFile, models.ColNo, models.ColHargaJualRp}, cols)

	_, err = ParseColumns("No,Alamat")
	assert.ErrorIs(t, err, ErrUnknownColumn)

	_, err = ParseColumns("No,no")
	assert.ErrorIs(t, err, ErrDuplicateColumn)

	_, err = ParseColumns(" , ")
	assert.ErrorIs(t, err, ErrNoColumns)
}

func TestDefaultColumnsIsACopy(t *testing.T) {
	cols := DefaultColumns()
	cols[0] = "changed"
	assert.Equal(t, models.ColNo, models.AllColumns[0])
}

func TestValuesAndFormatCell(t *testing.T) {
	row := sampleRows()[0]
	values := Values(row, []string{models.ColNo, models.ColHargaJualRp, models.ColNamaFile})
	assert.Equal(t, []any{"1", 1000000.0, "a.pdf"}, values)

	assert.Equal(t, "1000000", FormatCell(1000000.0))
	assert.Equal(t, "1234568", FormatCell(1234567.89))
	assert.Equal(t, "-", FormatCell("-"))
	assert.Equal(t, "", FormatCell(nil))
}

func TestWriteXLSX(t *testing.T) {
	cols := []string{models.ColNo, models.ColBarangJasa, models.ColHargaJualRp, models.ColNPWPPKP, models.ColMasa, models.ColNamaFile}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleRows(), cols))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, cols, rows[0])
	assert.Equal(t, []string{"1", "010000 - Jasa Konsultasi", "1000000", "0123456789012000", "01", "a.pdf"}, rows[1])
	assert.Equal(t, []string{"-", "Tidak terbaca", "0", "-", "-", "b.pdf"}, rows[3])

	raw, err := f.GetCellValue(SheetName, "C3", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "500000", raw)

	priceStyle, err := f.GetCellStyle(SheetName, "C2")
	require.NoError(t, err)
	assert.NotZero(t, priceStyle)

	headerStyle, err := f.GetCellStyle(SheetName, "A1")
	require.NoError(t, err)
	assert.NotZero(t, headerStyle)
}

func TestWriteXLSX_Layout(t *testing.T) {
	cols := []string{models.ColNo, models.ColBarangJasa, models.ColHargaJualRp, models.ColNamaFile}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleRows(), cols))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	for col, want := range map[string]float64{"A": 8, "B": 48, "C": 18, "D": 24} {
		width, err := f.GetColWidth(SheetName, col)
		require.NoError(t, err)
		assert.Equal(t, want, width, col)
	}

	panes, err := f.GetPanes(SheetName)
	require.NoError(t, err)
	assert.True(t, panes.Freeze)
	assert.Equal(t, 1, panes.YSplit)
	assert.Equal(t, "A2", panes.TopLeftCell)
}

func TestStyleSheet_MissingSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	err := styleSheet(f, 0, []string{models.ColNo})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xlsx")
}

func TestWriteXLSX_NoRows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, nil, DefaultColumns()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Len(t, rows[0], 23)
}

func TestWriteXLSX_RejectsBadColumns(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, WriteXLSX(&buf, sampleRows(), nil), ErrNoColumns)
	assert.ErrorIs(t, WriteXLSX(&buf, sampleRows(), []string{"Alamat"}), ErrUnknownColumn)
	assert.Zero(t, buf.Len())
}

func TestRenderPreview(t *testing.T) {
	var buf bytes.Buffer
	RenderPreview(&buf, sampleRows(), []string{models.ColNo, models.ColBarangJasa, models.ColHargaJualRp}, 2)

	out := buf.String()
	assert.Contains(t, out, "Barang / Jasa Kena Pajak")
	assert.Contains(t, out, "010000 - Jasa Konsultasi")
	assert.Contains(t, out, "1000000")
	assert.NotContains(t, out, "Tidak terbaca")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}

func TestExtractSpreadsheetID(t *testing.T) {
	id, err := ExtractSpreadsheetID("https://docs.google.com/spreadsheets/d/1AbC-_xyz/edit#gid=0")
	require.NoError(t, err)
	assert.Equal(t, "1AbC-_xyz", id)

	_, err = ExtractSpreadsheetID("https://example.com/sheet")
	assert.Error(t, err)
}

func TestSheetRange(t *testing.T) {
	assert.Equal(t, "'Rekap Faktur'!A:W", sheetRange(SheetName, 23, 0))
	assert.Equal(t, "'Rekap Faktur'!A1:C1", sheetRange(SheetName, 3, 1))
}

// fakeSheets serves the subset of the Sheets v4 API used by SheetsWriter.
type fakeSheets struct {
	mu       sync.Mutex
	header   [][]interface{}
	appended [][]interface{}
	batches  int
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":batchUpdate"):
		f.batches++
		_, _ = w.Write([]byte(`{"replies":[{"addSheet":{"properties":{"sheetId":7,"title":"Rekap Faktur"}}}]}`))
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":append"):
		var vr sheets.ValueRange
		_ = json.NewDecoder(r.Body).Decode(&vr)
		f.appended = append(f.appended, vr.Values...)
		_, _ = w.Write([]byte(`{}`))
	case r.Method == http.MethodPut && strings.Contains(path, "/values/"):
		var vr sheets.ValueRange
		_ = json.NewDecoder(r.Body).Decode(&vr)
		f.header = vr.Values
		_, _ = w.Write([]byte(`{}`))
	case r.Method == http.MethodGet && strings.Contains(path, "/values/"):
		_ = json.NewEncoder(w).Encode(sheets.ValueRange{Values: f.header})
	case r.Method == http.MethodGet:
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet123","sheets":[{"properties":{"sheetId":0,"title":"Sheet1"}}]}`))
	default:
		http.Error(w, "unexpected request", http.StatusNotFound)
	}
}

func TestSheetsWriter(t *testing.T) {
	fake := &fakeSheets{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	ctx := context.Background()
	svc, err := sheets.NewService(ctx, option.WithEndpoint(srv.URL+"/"), option.WithoutAuthentication())
	require.NoError(t, err)

	w := NewSheetsWriterWithService(svc, "sheet123")
	cols := []string{models.ColNo, models.ColNPWPPKP, models.ColHargaJualRp}

	require.NoError(t, w.WriteRows(ctx, SheetName, sampleRows(), cols))

	fake.mu.Lock()
	defer fake.mu.Unlock()

	// One call creates the sheet, one formats the header.
	assert.Equal(t, 2, fake.batches)
	require.Len(t, fake.header, 1)
	assert.Equal(t, []interface{}{models.ColNo, models.ColNPWPPKP, models.ColHargaJualRp}, fake.header[0])

	require.Len(t, fake.appended, 3)
	assert.Equal(t, []interface{}{"1", "0123456789012000", 1000000.0}, fake.appended[0])
	assert.Equal(t, []interface{}{"-", "-", 0.0}, fake.appended[2])
}

func TestSheetsWriter_RejectsBadColumns(t *testing.T) {
	w := NewSheetsWriterWithService(nil, "sheet123")
	err := w.WriteRows(context.Background(), SheetName, sampleRows(), []string{"No", "No"})
	assert.ErrorIs(t, err, ErrDuplicateColumn)
}
