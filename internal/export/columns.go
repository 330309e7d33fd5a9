// Package export writes assembled rows to spreadsheets: an XLSX workbook, a
// Google Sheet, or a console preview. All writers take the column subset and
// order chosen by the user.
package export

import (
	"errors"
	"fmt"
	"strings"

	"faktur/pkg/models"
)

var (
	// ErrUnknownColumn is returned for a column name that no row carries.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrDuplicateColumn is returned when a column is selected twice.
	ErrDuplicateColumn = errors.New("duplicate column")

	// ErrNoColumns is returned when the selection is empty.
	ErrNoColumns = errors.New("no columns selected")
)

// DefaultColumns returns every column in the default order.
func DefaultColumns() []string {
	return append([]string(nil), models.AllColumns...)
}

// ParseColumns splits a comma separated column list and resolves each entry
// case-insensitively to its canonical name. An empty list selects
// DefaultColumns.
func ParseColumns(list string) ([]string, error) {
	if strings.TrimSpace(list) == "" {
		return DefaultColumns(), nil
	}

	var cols []string
	for _, part := range strings.Split(list, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		canonical, ok := lookupColumn(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
		}
		cols = append(cols, canonical)
	}

	if err := ValidateColumns(cols); err != nil {
		return nil, err
	}
	return cols, nil
}

// ValidateColumns checks that cols is a non-empty selection of known,
// distinct column names. Any order is accepted.
func ValidateColumns(cols []string) error {
	if len(cols) == 0 {
		return ErrNoColumns
	}
	seen := make(map[string]bool, len(cols))
	for _, c := range cols {
		if _, ok := (models.Row{}).Value(c); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownColumn, c)
		}
		if seen[c] {
			return fmt.Errorf("%w: %q", ErrDuplicateColumn, c)
		}
		seen[c] = true
	}
	return nil
}

func lookupColumn(name string) (string, bool) {
	for _, c := range models.AllColumns {
		if strings.EqualFold(c, name) {
			return c, true
		}
	}
	return "", false
}

// Values returns the cells of row in column order.
func Values(row models.Row, cols []string) []any {
	out := make([]any, len(cols))
	for i, c := range cols {
		out[i], _ = row.Value(c)
	}
	return out
}

// FormatCell renders a cell as text. Amounts have no decimals.
func FormatCell(v any) string {
	switch x := v.(type) {
	case float64:
		return fmt.Sprintf("%.0f", x)
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}
