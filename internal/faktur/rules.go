// Package faktur extracts structured data from the plain text of Indonesian
// Coretax tax invoices (Faktur Pajak).
//
// Extraction is rule driven. Every scalar field and every total is described
// by a named rule (pattern, post-processor, default) and resolved
// independently against the full document text. A rule that does not match
// yields its default; nothing in this package returns an error or panics on
// unexpected input, so one unreadable invoice never fails a batch.
//
// The line-item table comes in two layouts (with and without a 6-digit item
// code). The layout is chosen once per document, see DetectLayout.
package faktur

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// normalizeSpaces turns Unicode space separators such as U+00A0 into ASCII
// spaces. RE2's \s, \w and \b are ASCII only, so every rule runs on
// normalised text.
func normalizeSpaces(text string) string {
	return strings.Map(func(r rune) rune {
		if r != ' ' && unicode.Is(unicode.Zs, r) {
			return ' '
		}
		return r
	}, text)
}

// Rule resolves one text field. Either Pattern or Scan must be set; Scan
// takes precedence. When Post is nil the first capture group is trimmed and
// returned.
type Rule struct {
	Field   string
	Pattern *regexp.Regexp
	Post    func(groups []string) string
	Scan    func(text string) (string, bool)
	Default string
}

// Apply runs the rule against text.
func (r Rule) Apply(text string) string {
	text = normalizeSpaces(text)
	if r.Scan != nil {
		if v, ok := r.Scan(text); ok {
			return v
		}
		return r.Default
	}
	m := r.Pattern.FindStringSubmatch(text)
	if m == nil {
		return r.Default
	}
	if r.Post != nil {
		return r.Post(m)
	}
	return strings.TrimSpace(m[1])
}

// AmountRule resolves one monetary total. The first capture group is parsed
// with ParseAmount; a miss yields 0.
type AmountRule struct {
	Field   string
	Pattern *regexp.Regexp
}

// Apply runs the rule against text.
func (r AmountRule) Apply(text string) float64 {
	text = normalizeSpaces(text)
	m := r.Pattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	return ParseAmount(m[1])
}

// ParseAmount converts an Indonesian formatted number ("1.234.567,89") to a
// float. Dots are thousands separators and the comma is the decimal mark.
// Anything that does not parse, including the empty string, is 0.
func ParseAmount(s string) float64 {
	cleaned := strings.ReplaceAll(s, ".", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v
}
