package faktur

import (
	"fmt"
	"regexp"
	"strings"

	"faktur/pkg/models"
)

// monthNumbers maps Indonesian month names to their two-digit number.
var monthNumbers = map[string]string{
	"Januari":   "01",
	"Februari":  "02",
	"Maret":     "03",
	"April":     "04",
	"Mei":       "05",
	"Juni":      "06",
	"Juli":      "07",
	"Agustus":   "08",
	"September": "09",
	"Oktober":   "10",
	"November":  "11",
	"Desember":  "12",
}

var (
	// "JAKARTA SELATAN, 5 Januari 2024"
	datePattern = regexp.MustCompile(`\b([A-Z .,]+),\s*(\d{1,2})\s+([A-Za-z]+)\s+(\d{4})`)
	cityPattern = regexp.MustCompile(`(?m)^([A-Z .,]+),\s*\d{1,2}\s+\w+\s+\d{4}`)

	nitkuToken = regexp.MustCompile(`#(\d{22})`)
	lineBreak  = regexp.MustCompile(`\r\n|[\n\r\v\f\x1c\x1d\x1e\x{85}\x{2028}\x{2029}]`)
)

// MetadataRules are applied in order by ExtractMetadata. Masa and Tahun are
// not listed; Extract and AssembleRows derive them from the date.
var MetadataRules = []Rule{
	{
		Field:   models.ColKodeSeri,
		Pattern: regexp.MustCompile(`(?s)Kode dan Nomor Seri Faktur Pajak:\s*(\d+)`),
		Default: models.Missing,
	},
	{
		Field:   models.ColNamaPKP,
		Pattern: regexp.MustCompile(`(?s)Pengusaha Kena Pajak:\s*Nama\s*:\s*(.*?)\s*Alamat`),
		Default: models.Missing,
	},
	{
		Field:   models.ColNPWPPKP,
		Pattern: regexp.MustCompile(`(?s)Pengusaha Kena Pajak:.*?NPWP\s*:\s*([0-9.]+)`),
		Default: models.Missing,
	},
	{
		Field:   models.ColNamaPembeli,
		Pattern: regexp.MustCompile(`(?s)Pembeli Barang Kena Pajak.*?Nama\s*:\s*(.*?)\s*Alamat`),
		Default: models.Missing,
	},
	{
		Field:   models.ColNPWPPembeli,
		Pattern: regexp.MustCompile(`(?s)NPWP\s*:\s*([0-9.]+)\s*NIK`),
		Default: models.Missing,
	},
	{
		Field:   models.ColNITKUPembeli,
		Scan:    scanNITKU,
		Default: models.Missing,
	},
	{
		Field:   models.ColKota,
		Pattern: cityPattern,
		Default: models.Missing,
	},
	{
		Field:   models.ColTanggal,
		Pattern: datePattern,
		Post:    formatDate,
		Default: models.Missing,
	},
	{
		Field:   models.ColPenandatangan,
		Pattern: regexp.MustCompile(`(?s)Ditandatangani secara elektronik\n(.*?)\n`),
		Default: models.Missing,
	},
	{
		// Runs to the end of the text.
		Field:   models.ColKeterangan,
		Pattern: regexp.MustCompile(`(?s)Keterangan\s*:\s*(.*)`),
		Default: models.Missing,
	},
	{
		Field:   models.ColNomorReferensi,
		Pattern: regexp.MustCompile(`(?s)Nomor\s*Referensi\s*[:\-]?\s*([A-Za-z0-9\-/]+)`),
		Default: models.Missing,
	},
}

// ExtractMetadata resolves every metadata rule against text. Fields that do
// not match keep models.Missing.
func ExtractMetadata(text string) models.Metadata {
	meta := models.NewMetadata()
	for _, rule := range MetadataRules {
		if f := meta.Field(rule.Field); f != nil {
			*f = rule.Apply(text)
		}
	}
	return meta
}

// ExtractDate finds "<CITY>, <day> <Bulan> <year>" and returns DD/MM/YYYY.
// An unknown month name leaves "-" in the month position.
func ExtractDate(text string) string {
	text = normalizeSpaces(text)
	m := datePattern.FindStringSubmatch(text)
	if m == nil {
		return models.Missing
	}
	return formatDate(m)
}

func formatDate(m []string) string {
	day := m[2]
	if len(day) < 2 {
		day = "0" + day
	}
	month, ok := monthNumbers[m[3]]
	if !ok {
		month = models.Missing
	}
	return fmt.Sprintf("%s/%s/%s", day, month, m[4])
}

// ExtractCity returns the uppercase run printed before the signing date. It
// searches independently of ExtractDate, so on text with several date-like
// lines the two may refer to different lines.
func ExtractCity(text string) string {
	text = normalizeSpaces(text)
	m := cityPattern.FindStringSubmatch(text)
	if m == nil {
		return models.Missing
	}
	return strings.TrimSpace(m[1])
}

// ExtractNITKU returns the 22-digit NITKU of the buyer. The token is printed
// as "#<22 digits>" on the line immediately above an NPWP line.
func ExtractNITKU(text string) string {
	text = normalizeSpaces(text)
	if v, ok := scanNITKU(text); ok {
		return v
	}
	return models.Missing
}

func scanNITKU(text string) (string, bool) {
	lines := splitLines(text)
	for i := 1; i < len(lines); i++ {
		if !strings.Contains(lines[i], "NPWP") {
			continue
		}
		if m := nitkuToken.FindStringSubmatch(lines[i-1]); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// splitLines splits on every line boundary and drops a single trailing
// empty element, so "a\nb\n" yields [a b].
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := lineBreak.Split(text, -1)
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}
