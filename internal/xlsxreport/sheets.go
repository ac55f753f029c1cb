package xlsxreport

import (
	"github.com/planilla-condensada/liquidacion-xlsx/internal/aggregate"
	"github.com/planilla-condensada/liquidacion-xlsx/internal/types"
)

// Column headers, in the language of the source documents.
const (
	headerRecord          = "Legajo"
	headerBucket          = "Tipo"
	headerCode            = "Código"
	headerConcept         = "Concepto"
	headerAmount          = "Importe"
	headerNetImpact       = "Impacto Neto"
	headerTotalRem        = "Total Remunerativo"
	headerTotalNonRem     = "Total No Remunerativo"
	headerTotalDeductions = "Total Retenciones"
	headerNet             = "Sueldo Neto"
	headerContribution    = "Concepto Patronal"
	headerTotalAmount     = "Total Importe"
)

// writePivot writes the legajo x concept matrix. The first three rows carry
// bucket, code and description of each column.
func (w *writer) writePivot(p *aggregate.PivotTable) error {
	width := len(p.Columns) + 1
	buckets := make([]interface{}, 0, width)
	codes := make([]interface{}, 0, width)
	descriptions := make([]interface{}, 0, width)

	buckets = append(buckets, headerBucket)
	codes = append(codes, headerCode)
	descriptions = append(descriptions, headerRecord)
	for _, c := range p.Columns {
		buckets = append(buckets, c.Bucket.String())
		codes = append(codes, c.Code)
		descriptions = append(descriptions, c.Description)
	}

	rows := [][]interface{}{buckets, codes, descriptions}
	for _, r := range p.Rows {
		row := make([]interface{}, 0, width)
		row = append(row, r.RecordID.Value())
		for _, v := range r.Values {
			row = append(row, v)
		}
		rows = append(rows, row)
	}

	amountCols := make(map[int]bool)
	for col := 2; col <= width; col++ {
		amountCols[col] = true
	}

	return w.writeSheet(sheet{
		name:       w.opts.Sheets.Pivot,
		headerRows: 3,
		rows:       rows,
		amountCols: amountCols,
		freeze:     true,
	})
}

// writeTotals writes one row of bucket sums per legajo.
func (w *writer) writeTotals(totals []aggregate.RecordTotals) error {
	rows := [][]interface{}{{
		headerRecord, headerTotalRem, headerTotalNonRem, headerTotalDeductions, headerNet,
	}}
	for _, t := range totals {
		rows = append(rows, []interface{}{
			t.RecordID.Value(), t.Remunerative, t.NonRemunerative, t.Deduction, t.Net,
		})
	}

	return w.writeSheet(sheet{
		name:       w.opts.Sheets.Totals,
		headerRows: 1,
		rows:       rows,
		amountCols: map[int]bool{2: true, 3: true, 4: true, 5: true},
	})
}

// writeDetail writes the long-form list of line items.
func (w *writer) writeDetail(report *aggregate.Report) error {
	rows := [][]interface{}{{
		headerRecord, headerCode, headerConcept, headerAmount, headerBucket, headerNetImpact,
	}}
	for _, item := range report.Items {
		rows = append(rows, detailRow(item))
	}

	return w.writeSheet(sheet{
		name:       w.opts.Sheets.Detail,
		headerRows: 1,
		rows:       rows,
		amountCols: map[int]bool{4: true, 6: true},
	})
}

func detailRow(item types.LineItem) []interface{} {
	return []interface{}{
		item.RecordID.Value(),
		item.Code,
		item.Description,
		item.Amount,
		item.Bucket.String(),
		item.SignedAmount(),
	}
}

// writeContributions writes the employer lines, already sorted and closed
// by the TOT row.
func (w *writer) writeContributions(items []types.ContributionItem) error {
	rows := [][]interface{}{{headerCode, headerContribution, headerTotalAmount}}
	for _, c := range items {
		rows = append(rows, []interface{}{c.Code, c.Description, c.Amount})
	}

	return w.writeSheet(sheet{
		name:       w.opts.Sheets.Contributions,
		headerRows: 1,
		rows:       rows,
		amountCols: map[int]bool{3: true},
	})
}
