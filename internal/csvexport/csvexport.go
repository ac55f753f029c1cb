// Package csvexport writes the long-form line item list as CSV, for tools
// that do not read spreadsheets. It uses gocsv struct tags for the header.
package csvexport

import (
	"fmt"
	"io"
	"strconv"

	"github.com/gocarina/gocsv"

	"github.com/planilla-condensada/liquidacion-xlsx/internal/types"
)

// DetailRow is one CSV line of the detail export.
type DetailRow struct {
	Legajo      string `csv:"legajo"`
	Codigo      string `csv:"codigo"`
	Concepto    string `csv:"concepto"`
	Importe     string `csv:"importe"`
	Tipo        string `csv:"tipo"`
	ImpactoNeto string `csv:"impacto_neto"`
}

// Rows converts line items to CSV rows, keeping their order.
func Rows(items []types.LineItem) []*DetailRow {
	rows := make([]*DetailRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, &DetailRow{
			Legajo:      item.RecordID.String(),
			Codigo:      item.Code,
			Concepto:    item.Description,
			Importe:     formatAmount(item.Amount),
			Tipo:        item.Bucket.String(),
			ImpactoNeto: formatAmount(item.SignedAmount()),
		})
	}
	return rows
}

// WriteDetail writes the header and one line per item. An empty item list
// still produces the header line.
func WriteDetail(w io.Writer, items []types.LineItem) error {
	rows := Rows(items)
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

// formatAmount keeps two decimals with a dot, the CSV interchange format.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
