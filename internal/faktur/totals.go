package faktur

import (
	"regexp"

	"faktur/pkg/models"
)

// TotalRules resolve the six amounts printed below the item table. The two
// deduction lines accept an empty number since they are often left blank.
var TotalRules = []AmountRule{
	{
		Field:   models.ColTotalHargaJual,
		Pattern: regexp.MustCompile(`(?s)Harga\s*Jual\s*/\s*Penggantian\s*/\s*Uang\s*Muka\s*/\s*Termin\s*([\d.,]+)`),
	},
	{
		Field:   models.ColPotonganHarga,
		Pattern: regexp.MustCompile(`(?s)Dikurangi\s+Potongan\s+Harga\s*([\d.,]*)`),
	},
	{
		Field:   models.ColUangMuka,
		Pattern: regexp.MustCompile(`(?s)Dikurangi\s+Uang\s+Muka\s+yang\s+telah\s+diterima\s*([\d.,]*)`),
	},
	{
		Field:   models.ColDPP,
		Pattern: regexp.MustCompile(`(?s)Dasar\s+Pengenaan\s+Pajak\s*([\d.,]+)`),
	},
	{
		Field:   models.ColPPN,
		Pattern: regexp.MustCompile(`(?s)Jumlah\s*PPN.*?([\d.,]+)`),
	},
	{
		Field:   models.ColPPnBM,
		Pattern: regexp.MustCompile(`(?s)Jumlah\s*PPnBM.*?([\d.,]+)`),
	},
}

// ExtractTotals resolves every total rule against text. Missing or
// malformed amounts are 0.
func ExtractTotals(text string) models.Totals {
	var totals models.Totals
	for _, rule := range TotalRules {
		if f := totals.Field(rule.Field); f != nil {
			*f = rule.Apply(text)
		}
	}
	return totals
}
