package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"faktur/internal/config"
	"faktur/internal/faktur"
	"faktur/internal/logger"
	"faktur/pkg/models"
)

var extractCmd = &cobra.Command{
	Use:   "extract [pdf-file]",
	Short: "Extract one Faktur Pajak as JSON",
	Long: `Read a single Faktur Pajak PDF and print everything the rules found:
metadata, the six totals, the line items, the detected table layout and any
totals mismatch.

Fields that could not be found are "-"; amounts that could not be found are 0.`,
	Example: `  # Print the extraction of one invoice
  faktur extract faktur.pdf

  # Save it
  faktur extract faktur.pdf -o faktur.json`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

// ExtractOutput represents the JSON output of the extract command
type ExtractOutput struct {
	FileName           string             `json:"file_name"`
	Source             string             `json:"source"`
	PageCount          int                `json:"page_count"`
	Layout             string             `json:"layout"`
	Metadata           map[string]string  `json:"metadata"`
	Totals             map[string]float64 `json:"totals"`
	Items              []models.LineItem  `json:"items"`
	RowCount           int                `json:"row_count"`
	Warnings           []string           `json:"warnings,omitempty"`
	ProcessingDuration string             `json:"processing_duration"`
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	extractCmd.Flags().Int("timeout", 300, "Processing timeout in seconds")
}

func runExtract(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("extract")

	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")
	pdfPath := args[0]

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := createContextWithTimeout(timeoutSecs, log)
	defer cancel()

	extractor, err := newExtractor(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer extractor.Close()

	pdfFile, err := os.Open(pdfPath)
	if err != nil {
		return fmt.Errorf("failed to open PDF file: %w", err)
	}
	defer pdfFile.Close()

	start := time.Now()
	result, err := extractor.ExtractTextWithMetadata(ctx, pdfFile)
	if err != nil {
		return handleExtractionError(err, log)
	}

	filename := filepath.Base(pdfPath)
	ex := faktur.Extract(models.Document{Filename: filename, Text: result.Text})
	rows := ex.Rows()

	output := ExtractOutput{
		FileName:           filename,
		Source:             result.Source,
		PageCount:          result.PageCount,
		Layout:             ex.Layout.String(),
		Metadata:           make(map[string]string),
		Totals:             make(map[string]float64),
		Items:              ex.Items,
		RowCount:           len(rows),
		Warnings:           faktur.CheckTotals(ex.Totals, ex.Items).Warnings,
		ProcessingDuration: time.Since(start).String(),
	}
	if output.Items == nil {
		output.Items = []models.LineItem{}
	}

	meta, totals := ex.Meta, ex.Totals
	for _, col := range models.AllColumns {
		if f := meta.Field(col); f != nil {
			output.Metadata[col] = *f
		}
		if f := totals.Field(col); f != nil {
			output.Totals[col] = *f
		}
	}

	log.Info().
		Str("file", filename).
		Str("layout", output.Layout).
		Int("items", len(ex.Items)).
		Msg("Extraction completed")

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to create JSON output: %w", err)
	}
	return writeOutput(cmd, outputPath, data)
}

// writeOutput writes data to path, or to stdout when path is empty.
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
