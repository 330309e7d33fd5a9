package faktur

import (
	"fmt"

	"github.com/shopspring/decimal"

	"faktur/pkg/models"
)

// DefaultTolerance is the largest difference, in rupiah, between the summed
// line prices and the printed total that is not reported.
var DefaultTolerance = decimal.NewFromInt(1)

// TotalsCheck compares the item table against the printed totals.
type TotalsCheck struct {
	ItemSum        decimal.Decimal
	HargaJual      decimal.Decimal
	Difference     decimal.Decimal
	HasDiscrepancy bool
	Warnings       []string
}

// CheckTotals sums the line prices and compares them with the printed Harga
// Jual total. It also checks that the DPP does not exceed the sale price net
// of deductions. The result is informational only.
func CheckTotals(totals models.Totals, items []models.LineItem) TotalsCheck {
	check := TotalsCheck{Warnings: []string{}}

	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(decimal.NewFromFloat(it.Price))
	}
	check.ItemSum = sum
	check.HargaJual = decimal.NewFromFloat(totals.HargaJual)

	if len(items) == 0 {
		check.Warnings = append(check.Warnings, "no line items detected")
		return check
	}
	if totals.HargaJual == 0 {
		check.Warnings = append(check.Warnings, "total harga jual not found")
		return check
	}

	check.Difference = sum.Sub(check.HargaJual).Abs()
	if check.Difference.GreaterThan(DefaultTolerance) {
		check.HasDiscrepancy = true
		check.Warnings = append(check.Warnings, fmt.Sprintf(
			"line items sum to %s but total harga jual is %s (difference %s)",
			sum.StringFixed(0), check.HargaJual.StringFixed(0), check.Difference.StringFixed(0)))
	}

	net := check.HargaJual.
		Sub(decimal.NewFromFloat(totals.PotonganHarga)).
		Sub(decimal.NewFromFloat(totals.UangMuka))
	dpp := decimal.NewFromFloat(totals.DPP)
	if dpp.Sub(net).GreaterThan(DefaultTolerance) {
		check.HasDiscrepancy = true
		check.Warnings = append(check.Warnings, fmt.Sprintf(
			"DPP %s exceeds harga jual after deductions %s",
			dpp.StringFixed(0), net.StringFixed(0)))
	}

	return check
}
