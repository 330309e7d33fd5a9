package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"faktur/internal/config"
	"faktur/internal/logger"
)

var textCmd = &cobra.Command{
	Use:   "text [pdf-file]",
	Short: "Print the raw text of a PDF as the extraction rules see it",
	Long: `Print the text that the selected TEXT_SOURCE returns for a PDF. The
extraction rules run against exactly this text, so this is the first thing
to look at when a field comes out as "-".`,
	Example: `  # Text layer of an invoice
  faktur text faktur.pdf

  # With Vision OCR, as JSON
  TEXT_SOURCE=vision faktur text scan.pdf --json`,
	Args: cobra.ExactArgs(1),
	RunE: runText,
}

func init() {
	rootCmd.AddCommand(textCmd)

	textCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	textCmd.Flags().Bool("json", false, "Output as JSON with page count and timing")
	textCmd.Flags().Int("timeout", 300, "Processing timeout in seconds")
}

func runText(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("text")

	outputPath, _ := cmd.Flags().GetString("output")
	jsonOutput, _ := cmd.Flags().GetBool("json")
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

	result, err := extractor.ExtractTextWithMetadata(ctx, pdfFile)
	if err != nil {
		return handleExtractionError(err, log)
	}

	log.Info().
		Str("file", filepath.Base(pdfPath)).
		Str("source", result.Source).
		Int("page_count", result.PageCount).
		Int("text_length", len(result.Text)).
		Dur("duration", result.ProcessingDuration).
		Msg("Text extracted")

	if !jsonOutput {
		return writeOutput(cmd, outputPath, []byte(result.Text))
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to create JSON output: %w", err)
	}
	return writeOutput(cmd, outputPath, data)
}
