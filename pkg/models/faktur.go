package models

// Missing is the sentinel written into any text field a rule could not resolve.
const Missing = "-"

// Column names as they appear in the exported spreadsheet.
const (
	ColNo          = "No"
	ColBarangJasa  = "Barang / Jasa Kena Pajak"
	ColHargaJualRp = "Harga Jual / Penggantian / Uang Muka / Termin (Rp)"

	ColKodeSeri       = "Kode dan Nomor Seri Faktur Pajak"
	ColNamaPKP        = "Nama PKP"
	ColNPWPPKP        = "NPWP PKP"
	ColNamaPembeli    = "Nama Pembeli"
	ColNPWPPembeli    = "NPWP Pembeli"
	ColNITKUPembeli   = "NITKU Pembeli"
	ColKota           = "Kota"
	ColTanggal        = "Tanggal Faktur Pajak"
	ColPenandatangan  = "Penandatangan"
	ColKeterangan     = "Keterangan Tambahan"
	ColNomorReferensi = "Nomor Referensi"
	ColMasa           = "Masa"
	ColTahun          = "Tahun"

	ColTotalHargaJual = "Total Harga Jual / Penggantian / Uang Muka / Termin"
	ColPotonganHarga  = "Dikurangi Potongan Harga (Total)"
	ColUangMuka       = "Dikurangi Uang Muka yang telah diterima (Total)"
	ColDPP            = "Dasar Pengenaan Pajak (Total)"
	ColPPN            = "PPN (Total)"
	ColPPnBM          = "Jumlah PPnBM (Total)"

	ColNamaFile = "Nama Asli File"
)

// PlaceholderDescription marks the single row emitted for a document whose
// line-item table could not be read.
const PlaceholderDescription = "Tidak terbaca"

// Document is one uploaded invoice after text extraction.
type Document struct {
	Filename string // Original file name as uploaded
	Text     string // Concatenated text of all pages
}

// Metadata holds the scalar fields of one Faktur Pajak. Every field is a
// string and defaults to Missing.
type Metadata struct {
	KodeSeri       string // Kode dan Nomor Seri Faktur Pajak
	NamaPKP        string // Seller (Pengusaha Kena Pajak) name
	NPWPPKP        string // Seller NPWP
	NamaPembeli    string // Buyer name
	NPWPPembeli    string // Buyer NPWP
	NITKUPembeli   string // Buyer sub-unit ID (22 digits)
	Kota           string // City printed before the signing date
	Tanggal        string // DD/MM/YYYY
	Penandatangan  string // Electronic signer
	Keterangan     string // Keterangan tambahan
	NomorReferensi string // Nomor referensi
	Masa           string // Derived period month
	Tahun          string // Derived period year
}

// NewMetadata returns Metadata with every field set to Missing.
func NewMetadata() Metadata {
	return Metadata{
		KodeSeri:       Missing,
		NamaPKP:        Missing,
		NPWPPKP:        Missing,
		NamaPembeli:    Missing,
		NPWPPembeli:    Missing,
		NITKUPembeli:   Missing,
		Kota:           Missing,
		Tanggal:        Missing,
		Penandatangan:  Missing,
		Keterangan:     Missing,
		NomorReferensi: Missing,
		Masa:           Missing,
		Tahun:          Missing,
	}
}

// Field returns a pointer to the field named by column, or nil when the
// column is not a metadata column.
func (m *Metadata) Field(column string) *string {
	switch column {
	case ColKodeSeri:
		return &m.KodeSeri
	case ColNamaPKP:
		return &m.NamaPKP
	case ColNPWPPKP:
		return &m.NPWPPKP
	case ColNamaPembeli:
		return &m.NamaPembeli
	case ColNPWPPembeli:
		return &m.NPWPPembeli
	case ColNITKUPembeli:
		return &m.NITKUPembeli
	case ColKota:
		return &m.Kota
	case ColTanggal:
		return &m.Tanggal
	case ColPenandatangan:
		return &m.Penandatangan
	case ColKeterangan:
		return &m.Keterangan
	case ColNomorReferensi:
		return &m.NomorReferensi
	case ColMasa:
		return &m.Masa
	case ColTahun:
		return &m.Tahun
	}
	return nil
}

// Totals holds the six aggregate amounts printed under the item table.
// Unmatched amounts stay 0.
type Totals struct {
	HargaJual     float64 // Harga Jual / Penggantian / Uang Muka / Termin
	PotonganHarga float64 // Dikurangi Potongan Harga
	UangMuka      float64 // Dikurangi Uang Muka yang telah diterima
	DPP           float64 // Dasar Pengenaan Pajak
	PPN           float64 // Jumlah PPN
	PPnBM         float64 // Jumlah PPnBM
}

// Field returns a pointer to the amount named by column, or nil when the
// column is not a totals column.
func (t *Totals) Field(column string) *float64 {
	switch column {
	case ColTotalHargaJual:
		return &t.HargaJual
	case ColPotonganHarga:
		return &t.PotonganHarga
	case ColUangMuka:
		return &t.UangMuka
	case ColDPP:
		return &t.DPP
	case ColPPN:
		return &t.PPN
	case ColPPnBM:
		return &t.PPnBM
	}
	return nil
}

// LineItem is one row of the goods/services table.
type LineItem struct {
	No          string  `json:"no"`          // Sequence number as printed
	Description string  `json:"description"` // "<code> - <text>" or "- - <text>"
	Price       float64 `json:"price"`       // Harga jual in rupiah
}

// PlaceholderItem is substituted when no line item could be detected.
func PlaceholderItem() LineItem {
	return LineItem{No: Missing, Description: PlaceholderDescription, Price: 0}
}

// Row is one exported spreadsheet row: a line item flattened with its
// document's metadata and totals.
type Row struct {
	Item     LineItem
	Meta     Metadata
	Totals   Totals
	Filename string
}

// Value returns the cell value for column. ok is false for unknown columns.
func (r Row) Value(column string) (v any, ok bool) {
	switch column {
	case ColNo:
		return r.Item.No, true
	case ColBarangJasa:
		return r.Item.Description, true
	case ColHargaJualRp:
		return r.Item.Price, true
	case ColNamaFile:
		return r.Filename, true
	}
	if f := r.Meta.Field(column); f != nil {
		return *f, true
	}
	if f := r.Totals.Field(column); f != nil {
		return *f, true
	}
	return nil, false
}

// Map flattens the row into column name → value.
func (r Row) Map() map[string]any {
	out := make(map[string]any, len(AllColumns))
	for _, c := range AllColumns {
		out[c], _ = r.Value(c)
	}
	return out
}

// AllColumns lists every column in the default export order.
var AllColumns = []string{
	ColNo,
	ColBarangJasa,
	ColHargaJualRp,
	ColKodeSeri,
	ColNamaPKP,
	ColNPWPPKP,
	ColNamaPembeli,
	ColNPWPPembeli,
	ColNITKUPembeli,
	ColKota,
	ColTanggal,
	ColPenandatangan,
	ColKeterangan,
	ColNomorReferensi,
	ColTotalHargaJual,
	ColPotonganHarga,
	ColUangMuka,
	ColDPP,
	ColPPN,
	ColPPnBM,
	ColNamaFile,
	ColMasa,
	ColTahun,
}

// NumericColumns are rendered with a zero-decimal number format.
var NumericColumns = map[string]bool{
	ColHargaJualRp:    true,
	ColTotalHargaJual: true,
	ColPotonganHarga:  true,
	ColUangMuka:       true,
	ColDPP:            true,
	ColPPN:            true,
	ColPPnBM:          true,
}
