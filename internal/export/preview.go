package export

import (
	"io"

	"github.com/olekukonko/tablewriter"

	"faktur/pkg/models"
)

// PreviewRows is the number of rows shown before writing.
const PreviewRows = 5

// maxPreviewWidth truncates long cells such as Keterangan.
const maxPreviewWidth = 40

// RenderPreview prints the first n rows as a console table.
func RenderPreview(w io.Writer, rows []models.Row, cols []string, n int) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(cols)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)

	if n > len(rows) {
		n = len(rows)
	}
	for _, row := range rows[:n] {
		values := Values(row, cols)
		cells := make([]string, len(values))
		for i, v := range values {
			cells[i] = truncate(FormatCell(v), maxPreviewWidth)
		}
		table.Append(cells)
	}
	table.Render()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
