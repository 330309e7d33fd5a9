package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"faktur/internal/export"
	"faktur/pkg/models"
)

var columnsCmd = &cobra.Command{
	Use:   "columns",
	Short: "List the spreadsheet columns in default order",
	Long: `List every column a rekap can contain. Pass any subset, in any order,
to "rekap --columns" or set it in REKAP_COLUMNS. Names are matched
case-insensitively.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for i, col := range export.DefaultColumns() {
			kind := "teks"
			if models.NumericColumns[col] {
				kind = "angka"
			}
			fmt.Fprintf(out, "%2d. %s (%s)\n", i+1, col, kind)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(columnsCmd)
}
