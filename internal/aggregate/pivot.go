package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/planilla-condensada/liquidacion-xlsx/internal/types"
)

// Concept is one pivot column: a distinct (bucket, code, description).
type Concept struct {
	Bucket      types.Bucket
	Code        string
	Description string
}

// PivotRow is one legajo of the pivot. Values are aligned with Columns.
type PivotRow struct {
	RecordID types.RecordID
	Values   []float64
}

// PivotTable is the legajo x concept matrix.
type PivotTable struct {
	Columns []Concept
	Rows    []PivotRow

	columnIndex map[Concept]int
	rowIndex    map[types.RecordID]int
}

// Pivot builds the matrix from the line items. Columns are exactly the
// distinct concepts seen, ordered by bucket, then numeric code, then
// description. Cells with no item are 0.
func Pivot(items []types.LineItem) *PivotTable {
	p := &PivotTable{
		columnIndex: make(map[Concept]int),
		rowIndex:    make(map[types.RecordID]int),
	}

	seen := make(map[Concept]bool)
	var records []types.RecordID
	for _, item := range items {
		c := conceptOf(item)
		if !seen[c] {
			seen[c] = true
			p.Columns = append(p.Columns, c)
		}
		if _, ok := p.rowIndex[item.RecordID]; !ok {
			p.rowIndex[item.RecordID] = len(records)
			records = append(records, item.RecordID)
		}
	}

	sort.SliceStable(p.Columns, func(i, j int) bool {
		a, b := p.Columns[i], p.Columns[j]
		if a.Bucket != b.Bucket {
			return a.Bucket < b.Bucket
		}
		if a.Code != b.Code {
			return codeLess(a.Code, b.Code)
		}
		return a.Description < b.Description
	})
	for i, c := range p.Columns {
		p.columnIndex[c] = i
	}

	SortRecords(records)
	for i, id := range records {
		p.rowIndex[id] = i
	}

	cells := make([][]decimal.Decimal, len(records))
	for i := range cells {
		cells[i] = make([]decimal.Decimal, len(p.Columns))
	}
	for _, item := range items {
		r := p.rowIndex[item.RecordID]
		c := p.columnIndex[conceptOf(item)]
		cells[r][c] = cells[r][c].Add(decimal.NewFromFloat(item.Amount))
	}

	p.Rows = make([]PivotRow, len(records))
	for i, id := range records {
		values := make([]float64, len(p.Columns))
		for j, d := range cells[i] {
			values[j] = d.InexactFloat64()
		}
		p.Rows[i] = PivotRow{RecordID: id, Values: values}
	}
	return p
}

// Cell returns the summed amount of a legajo and concept, or 0 when the
// pair never occurred.
func (p *PivotTable) Cell(id types.RecordID, c Concept) float64 {
	r, ok := p.rowIndex[id]
	if !ok {
		return 0
	}
	col, ok := p.columnIndex[c]
	if !ok {
		return 0
	}
	return p.Rows[r].Values[col]
}

func conceptOf(item types.LineItem) Concept {
	return Concept{Bucket: item.Bucket, Code: item.Code, Description: item.Description}
}
