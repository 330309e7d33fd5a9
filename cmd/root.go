package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"faktur/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "faktur",
	Short: "Rekap Faktur Pajak Coretax ke spreadsheet",
	Long: `faktur reads Indonesian Coretax "Faktur Pajak" PDF invoices and compiles
them into one spreadsheet, one row per line item.

Text is read from the PDF text layer by default. Scanned invoices can be
read with Google Cloud Vision or Document AI instead (TEXT_SOURCE).`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Debug().
			Str("version", version).
			Msg("faktur executed without subcommand")

		fmt.Println("Rekap Faktur Pajak Coretax")
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
