// =============================================================================
// Liquidacion XLSX - Main Entry Point
// =============================================================================
//
// USAGE:
//   liquidacion convert --file X.pdf  - Convert one payroll PDF
//   liquidacion process               - Convert every PDF in the input directory
//   liquidacion version               - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Extraction, aggregation and rendering
//   - pkg/       : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/planilla-condensada/liquidacion-xlsx/cmd"
)

func main() {
	cmd.Execute()
}
