package faktur

import (
	"strings"

	"faktur/pkg/models"
)

// Extraction is everything read from one document.
type Extraction struct {
	Filename string
	Meta     models.Metadata
	Totals   models.Totals
	Items    []models.LineItem
	Layout   TableLayout
}

// ExtractDocument runs every rule against text. Masa and Tahun are derived
// from the date. It never fails; unreadable input yields all-sentinel
// metadata, zero totals and no items.
func ExtractDocument(text, filename string) (models.Metadata, models.Totals, []models.LineItem) {
	ex := Extract(models.Document{Filename: filename, Text: text})
	return ex.Meta, ex.Totals, ex.Items
}

// Extract is ExtractDocument plus the layout that was chosen for the table.
func Extract(doc models.Document) Extraction {
	text := normalizeSpaces(doc.Text)

	meta := ExtractMetadata(text)
	meta.Masa, meta.Tahun = periodOf(meta.Tanggal)

	items, layout := extractTable(text)
	return Extraction{
		Filename: doc.Filename,
		Meta:     meta,
		Totals:   ExtractTotals(text),
		Items:    items,
		Layout:   layout,
	}
}

// Rows assembles the output rows of the extraction.
func (e Extraction) Rows() []models.Row {
	return AssembleRows(e.Meta, e.Totals, e.Items, e.Filename)
}

// AssembleRows flattens one document into rows, one per line item. Masa and
// Tahun are derived from the normalised date. A document with no items still
// yields a single placeholder row.
func AssembleRows(meta models.Metadata, totals models.Totals, items []models.LineItem, filename string) []models.Row {
	meta.Masa, meta.Tahun = periodOf(meta.Tanggal)

	if len(items) == 0 {
		items = []models.LineItem{models.PlaceholderItem()}
	}

	rows := make([]models.Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, models.Row{
			Item:     it,
			Meta:     meta,
			Totals:   totals,
			Filename: filename,
		})
	}
	return rows
}

// periodOf splits "DD/MM/YYYY" into month and year. Missing parts are "-".
func periodOf(date string) (masa, tahun string) {
	parts := strings.Split(date, "/")
	masa, tahun = models.Missing, models.Missing
	if len(parts) > 1 {
		masa = parts[1]
	}
	if len(parts) > 2 {
		tahun = parts[2]
	}
	return masa, tahun
}
