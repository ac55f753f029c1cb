// =============================================================================
// Liquidacion XLSX - Convert Command
// =============================================================================
//
// COMMAND USAGE:
//   liquidacion convert --file enero.pdf [--out reporte.xlsx] [--csv]
//
// Converts a single document. The workbook goes to --out, or to output_dir
// with the configured output name. The input is never archived.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/planilla-condensada/liquidacion-xlsx/internal/converter"
)

var (
	convertFile string
	convertOut  string
	convertCSV  bool
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert one payroll PDF into an XLSX report",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert(cmd.Flags().Changed("csv"))
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVarP(&convertFile, "file", "f", "", "Path to the PDF to convert")
	convertCmd.Flags().StringVarP(&convertOut, "out", "o", "", "Output workbook path (default: output_dir/output_name_format)")
	convertCmd.Flags().BoolVar(&convertCSV, "csv", false, "Also write the detail list as CSV next to the workbook")
	convertCmd.MarkFlagRequired("file")
}

func runConvert(csvFlagSet bool) error {
	cfg := *appConfig
	cfg.ArchiveInputs = false

	conv := converter.New(convertFile, &cfg, logger.With("file", convertFile))
	if convertOut != "" {
		conv.SetOutputPath(convertOut)
	}
	if csvFlagSet {
		conv.SetExportCSV(convertCSV)
	}

	result := conv.Run()
	if !result.Success {
		return result.Error
	}

	fmt.Printf("  ✓ %s -> %s\n", convertFile, result.OutputFile)
	if result.CSVFile != "" {
		fmt.Printf("  ✓ CSV detail -> %s\n", result.CSVFile)
	}
	fmt.Printf("Legajos: %d  Line items: %d  Contributions: %d\n",
		result.Stats.Records, result.Stats.LineItems, result.Stats.Contributions)
	return nil
}
