package faktur

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"faktur/pkg/models"
)

// TableLayout identifies which of the two Coretax item-table variants a
// document uses.
type TableLayout int

const (
	// LayoutCoded rows start with "<no> <6-digit code>".
	LayoutCoded TableLayout = iota
	// LayoutUncoded rows start with a bare "<no>" line and carry no code.
	LayoutUncoded
)

func (l TableLayout) String() string {
	switch l {
	case LayoutCoded:
		return "coded"
	case LayoutUncoded:
		return "uncoded"
	default:
		return "unknown"
	}
}

// minDescriptionLen filters header and footer lines that happen to start
// with digits in the uncoded layout.
const minDescriptionLen = 5

var (
	codedMarker = regexp.MustCompile(`(?m)^\s*\d+\s+\d{6}\s`)

	// The price sits alone on a line. Ending at end-of-line also covers the
	// next "<no> <code>" marker and the "Harga Jual" footer, which both
	// start on a new line.
	codedItem = regexp.MustCompile(`(?m)(\d+)\s+(\d{6})\s+([\s\S]*?)\n\s*([\d.,]+)\s*$`)

	uncodedBlockStart = regexp.MustCompile(`\A\d+\s*\n`)
	uncodedBlock      = regexp.MustCompile(`(?s)\A(\d+)\s+(.*)`)
	trailingNumber    = regexp.MustCompile(`\b([\d.,]+)\b\s*$`)
)

// DetectLayout picks the table layout for text. A single "<no> <6-digit
// code>" line anywhere selects LayoutCoded.
func DetectLayout(text string) TableLayout {
	text = normalizeSpaces(text)
	if codedMarker.MatchString(text) {
		return LayoutCoded
	}
	return LayoutUncoded
}

// ExtractLineItems detects the layout and returns the items of the table in
// document order. The result is empty when nothing was recognised; callers
// substitute models.PlaceholderItem.
func ExtractLineItems(text string) []models.LineItem {
	items, _ := extractTable(text)
	return items
}

func extractTable(text string) ([]models.LineItem, TableLayout) {
	text = normalizeSpaces(text)
	layout := DetectLayout(text)
	switch layout {
	case LayoutCoded:
		return extractCoded(text), layout
	default:
		return extractUncoded(text), layout
	}
}

func extractCoded(text string) []models.LineItem {
	var items []models.LineItem
	for _, m := range codedItem.FindAllStringSubmatch(text, -1) {
		items = append(items, models.LineItem{
			No:          m[1],
			Description: m[2] + " - " + strings.Join(strings.Fields(m[3]), " "),
			Price:       ParseAmount(m[4]),
		})
	}
	return items
}

func extractUncoded(text string) []models.LineItem {
	var items []models.LineItem
	for _, blk := range splitUncodedBlocks(text) {
		m := uncodedBlock.FindStringSubmatch(strings.TrimSpace(blk))
		if m == nil {
			continue
		}
		no, content := m[1], strings.TrimSpace(m[2])

		prices := trailingNumber.FindAllStringSubmatch(content, -1)
		if len(prices) == 0 {
			continue
		}
		price := ParseAmount(prices[len(prices)-1][1])
		desc := strings.TrimSpace(trailingNumber.ReplaceAllString(content, ""))

		if utf8.RuneCountInString(desc) > minDescriptionLen && price > 0 {
			items = append(items, models.LineItem{
				No:          no,
				Description: "- - " + desc,
				Price:       price,
			})
		}
	}
	return items
}

// splitUncodedBlocks cuts text at every newline that is followed by a line
// holding only a sequence number. The newline itself is dropped.
func splitUncodedBlocks(text string) []string {
	var blocks []string
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] != '\n' {
			continue
		}
		if uncodedBlockStart.MatchString(text[i+1:]) {
			blocks = append(blocks, text[start:i])
			start = i + 1
		}
	}
	return append(blocks, text[start:])
}
