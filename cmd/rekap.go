package cmd

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"faktur/internal/batch"
	"faktur/internal/config"
	"faktur/internal/export"
	"faktur/internal/logger"
)

var rekapCmd = &cobra.Command{
	Use:   "rekap [pdf-or-folder...]",
	Short: "Compile Faktur Pajak PDFs into one spreadsheet",
	Long: `Read every Faktur Pajak PDF given (folders are searched recursively),
extract one row per line item and write them to an xlsx workbook.

The workflow has four steps:
  1. Read the documents and report how many rows were found
  2. Confirm before continuing (skip with --yes)
  3. Choose the columns and their order (--columns, comma separated)
  4. Preview the first rows and write the workbook

A document whose text cannot be read still gets one row with "Tidak terbaca"
so nothing is silently dropped.

Environment variables:
  TEXT_SOURCE     - pdf (default), vision or documentai
  REKAP_OUTPUT    - default output path
  REKAP_COLUMNS   - default column list
  BATCH_WORKERS   - parallel documents (default: 4)
  GOOGLE_SHEET_URL, GOOGLE_SHEET_WORKSHEET - target for --sheet`,
	Example: `  # Compile every PDF in a folder
  faktur rekap ./faktur-januari

  # Only some columns, in this order, without prompting
  faktur rekap ./faktur --yes --columns "Nama Asli File,No,Barang / Jasa Kena Pajak,Harga Jual / Penggantian / Uang Muka / Termin (Rp)"

  # Also append the rows to the Google Sheet in GOOGLE_SHEET_URL
  faktur rekap a.pdf b.pdf --sheet -o rekap.xlsx

  # Read and preview only
  faktur rekap ./faktur --dry-run`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRekap,
}

func init() {
	rootCmd.AddCommand(rekapCmd)

	rekapCmd.Flags().StringP("output", "o", "", "Output xlsx path (default: REKAP_OUTPUT or rekap_faktur_coretax.xlsx)")
	rekapCmd.Flags().StringP("columns", "c", "", "Comma separated columns in output order (default: all)")
	rekapCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	rekapCmd.Flags().Bool("sheet", false, "Also append the rows to GOOGLE_SHEET_URL")
	rekapCmd.Flags().Bool("dry-run", false, "Read and preview without writing anything")
	rekapCmd.Flags().Int("workers", 0, "Documents read in parallel (default: BATCH_WORKERS)")
	rekapCmd.Flags().Int("timeout", 600, "Processing timeout in seconds")
}

func runRekap(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("rekap")
	out := cmd.OutOrStdout()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	outputPath, _ := cmd.Flags().GetString("output")
	columnList, _ := cmd.Flags().GetString("columns")
	yes, _ := cmd.Flags().GetBool("yes")
	toSheet, _ := cmd.Flags().GetBool("sheet")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	workers, _ := cmd.Flags().GetInt("workers")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	if outputPath == "" {
		outputPath = cfg.RekapOutput
	}
	if columnList == "" {
		columnList = cfg.RekapColumns
	}
	if workers <= 0 {
		workers = cfg.BatchWorkers
	}
	if toSheet && cfg.GoogleSheetURL == "" {
		return fmt.Errorf("--sheet needs GOOGLE_SHEET_URL to be set")
	}

	cols, err := export.ParseColumns(columnList)
	if err != nil {
		return fmt.Errorf("invalid --columns: %w", err)
	}

	files, err := collectPDFs(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no PDF files found")
	}

	log.Info().
		Int("files", len(files)).
		Str("source", cfg.TextSource).
		Int("workers", workers).
		Str("output", outputPath).
		Bool("dry_run", dryRun).
		Msg("Starting rekap")

	ctx, cancel := createContextWithTimeout(timeoutSecs, log)
	defer cancel()

	extractor, err := newExtractor(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := extractor.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close text extractor")
		}
	}()

	// Step 1: read
	fmt.Fprintf(out, "Membaca %d file PDF...\n\n", len(files))

	inputs := make([]batch.Input, len(files))
	for i, f := range files {
		inputs[i] = batch.FileInput(f)
	}

	res := batch.NewProcessor(extractor, workers).
		OnProgress(func(done, total int, doc batch.DocumentResult) {
			printProgress(out, done, total, doc)
		}).
		Process(ctx, inputs)

	fmt.Fprintf(out, "\n%d baris berhasil dibaca", len(res.Rows))
	if failed := res.Failed(); failed > 0 {
		fmt.Fprintf(out, " (%d file tidak terbaca)", failed)
	}
	fmt.Fprintln(out)

	if err := ctx.Err(); err != nil {
		return handleExtractionError(err, log)
	}

	// Step 2: confirm
	if !yes && !dryRun {
		ok, err := confirm(cmd.InOrStdin(), out, "Lanjutkan ke pemilihan kolom dan ekspor?")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Dibatalkan.")
			return nil
		}
	}

	// Steps 3 and 4: preview and write
	fmt.Fprintf(out, "\nPratinjau (%d kolom):\n", len(cols))
	export.RenderPreview(out, res.Rows, cols, export.PreviewRows)

	if dryRun {
		fmt.Fprintln(out, "\nDry run: tidak ada file yang ditulis.")
		return nil
	}

	if err := writeWorkbook(outputPath, res, cols); err != nil {
		log.Error().Err(err).Str("output", outputPath).Msg("Failed to write workbook")
		return err
	}
	fmt.Fprintf(out, "\nRekap disimpan ke %s\n", outputPath)

	if toSheet {
		sheetsWriter, err := export.NewSheetsWriter(ctx, cfg.GoogleSheetURL)
		if err != nil {
			return fmt.Errorf("failed to create Google Sheets client: %w", err)
		}
		if err := sheetsWriter.WriteRows(ctx, cfg.GoogleSheetWorksheet, res.Rows, cols); err != nil {
			return fmt.Errorf("failed to write to Google Sheet: %w", err)
		}
		fmt.Fprintf(out, "%d baris ditambahkan ke Google Sheet (%s)\n", len(res.Rows), cfg.GoogleSheetWorksheet)
	}

	log.Info().
		Str("run_id", res.RunID).
		Int("rows", len(res.Rows)).
		Int("failed", res.Failed()).
		Msg("Rekap completed")

	return nil
}

// writeWorkbook builds the workbook in memory before creating path.
func writeWorkbook(path string, res *batch.Result, cols []string) error {
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, res.Rows, cols); err != nil {
		return fmt.Errorf("failed to build workbook: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

func printProgress(w io.Writer, done, total int, doc batch.DocumentResult) {
	fmt.Fprintf(w, "[%d/%d] %s - %s", done, total, doc.Filename, getStatusEmoji(documentStatus(doc)))
	switch {
	case doc.Err != nil:
		fmt.Fprintf(w, " (%v)", doc.Err)
	default:
		fmt.Fprintf(w, " (%d baris, tabel %s)", doc.RowCount, doc.Layout)
	}
	fmt.Fprintln(w)
	for _, warning := range doc.Warnings {
		fmt.Fprintf(w, "        ⚠ %s\n", warning)
	}
}

func documentStatus(doc batch.DocumentResult) string {
	switch {
	case doc.Err != nil:
		return "error"
	case len(doc.Warnings) > 0:
		return "warning"
	default:
		return "success"
	}
}

// getStatusEmoji returns an emoji for the processing status
func getStatusEmoji(status string) string {
	switch status {
	case "success":
		return "✅"
	case "warning":
		return "⚠️"
	case "error":
		return "❌"
	default:
		return "❓"
	}
}

// confirm asks a y/N question. Anything but y or ya is a no.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N]: ", question)

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "ya":
		return true, nil
	default:
		return false, nil
	}
}
