package faktur_test

import (
	"fmt"

	"faktur/internal/faktur"
)

// Example extracts one coded invoice and flattens it into rows.
func Example() {
	text := "Kode dan Nomor Seri Faktur Pajak: 04002500123456789\n" +
		"1 010000 Jasa Konsultasi\n" +
		"1.000.000,00\n" +
		"Harga Jual / Penggantian / Uang Muka / Termin 1.000.000,00\n" +
		"JAKARTA SELATAN, 5 Januari 2024\n"

	meta, totals, items := faktur.ExtractDocument(text, "faktur.pdf")
	rows := faktur.AssembleRows(meta, totals, items, "faktur.pdf")

	for _, r := range rows {
		fmt.Printf("%s | %s | %.0f | %s/%s\n",
			r.Meta.KodeSeri, r.Item.Description, r.Item.Price, r.Meta.Masa, r.Meta.Tahun)
	}
	// Output:
	// 04002500123456789 | 010000 - Jasa Konsultasi | 1000000 | 01/2024
}

// ExampleParseAmount shows the Indonesian number convention.
func ExampleParseAmount() {
	fmt.Printf("%.2f\n", faktur.ParseAmount("1.234.567,89"))
	fmt.Printf("%.2f\n", faktur.ParseAmount("bukan angka"))
	// Output:
	// 1234567.89
	// 0.00
}

// ExampleAssembleRows shows the placeholder row for an unreadable table.
func ExampleAssembleRows() {
	meta, totals, items := faktur.ExtractDocument("halaman kosong", "scan.pdf")
	rows := faktur.AssembleRows(meta, totals, items, "scan.pdf")

	fmt.Println(len(rows), rows[0].Item.No, rows[0].Item.Description, rows[0].Meta.Tanggal)
	// Output:
	// 1 - Tidak terbaca -
}
