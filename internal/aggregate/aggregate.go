// =============================================================================
// Liquidacion XLSX - Aggregator
// =============================================================================
//
// This package turns the extracted line items and contributions into the
// tables of the report:
//   - RecordTotals   : one row per legajo with bucket sums and net
//   - PivotTable     : legajo x concept matrix
//   - Contributions  : employer lines sorted by code plus a "TOT" row
//
// Sums are accumulated with shopspring/decimal so that adding many amounts
// read from text does not drift.
//
// RECORD ORDERING:
//   Numeric legajos sort ascending by value. Non-numeric ones (the "S/L"
//   sentinel) go after them, in order of first appearance.
//
// =============================================================================

package aggregate

import (
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/planilla-condensada/liquidacion-xlsx/internal/types"
)

// =============================================================================
// REPORT
// =============================================================================

// Report holds every table rendered for one document.
type Report struct {
	// Items is the long-form list of line items, in extraction order.
	Items []types.LineItem

	// Totals has one entry per legajo, in record order.
	Totals []RecordTotals

	// Pivot is the legajo x concept matrix. Nil when there are no items.
	Pivot *PivotTable

	// Contributions are sorted by code and end with the "TOT" row. Nil when
	// the document had no contribution lines.
	Contributions []types.ContributionItem
}

// Build computes every table of the report.
func Build(items []types.LineItem, contributions []types.ContributionItem) *Report {
	r := &Report{
		Items:         items,
		Contributions: Contributions(contributions),
	}
	if len(items) > 0 {
		r.Totals = Totals(items)
		r.Pivot = Pivot(items)
	}
	return r
}

// HasItems reports whether the employee tables have any data.
func (r *Report) HasItems() bool { return len(r.Items) > 0 }

// HasContributions reports whether the contributions table has any data.
func (r *Report) HasContributions() bool { return len(r.Contributions) > 0 }

// =============================================================================
// RECORD TOTALS
// =============================================================================

// RecordTotals are the bucket sums of one legajo.
type RecordTotals struct {
	RecordID        types.RecordID
	Remunerative    float64
	NonRemunerative float64
	Deduction       float64

	// Net is Remunerative + NonRemunerative - Deduction.
	Net float64
}

type bucketSums [3]decimal.Decimal

// Totals groups the items by legajo and sums each bucket.
func Totals(items []types.LineItem) []RecordTotals {
	sums := make(map[types.RecordID]*bucketSums)
	var order []types.RecordID

	for _, item := range items {
		s, ok := sums[item.RecordID]
		if !ok {
			s = &bucketSums{}
			sums[item.RecordID] = s
			order = append(order, item.RecordID)
		}
		s[item.Bucket] = s[item.Bucket].Add(decimal.NewFromFloat(item.Amount))
	}

	SortRecords(order)

	totals := make([]RecordTotals, 0, len(order))
	for _, id := range order {
		s := sums[id]
		net := s[types.Remunerative].Add(s[types.NonRemunerative]).Sub(s[types.Deduction])
		totals = append(totals, RecordTotals{
			RecordID:        id,
			Remunerative:    s[types.Remunerative].InexactFloat64(),
			NonRemunerative: s[types.NonRemunerative].InexactFloat64(),
			Deduction:       s[types.Deduction].InexactFloat64(),
			Net:             net.InexactFloat64(),
		})
	}
	return totals
}

// SortRecords orders legajos in place: numeric ones ascending, then the
// non-numeric ones keeping their relative order.
func SortRecords(ids []types.RecordID) {
	sort.SliceStable(ids, func(i, j int) bool {
		a, b := ids[i], ids[j]
		switch {
		case a.IsNumeric() && b.IsNumeric():
			return a.Number() < b.Number()
		case a.IsNumeric():
			return true
		default:
			return false
		}
	})
}

// =============================================================================
// CONTRIBUTIONS
// =============================================================================

const (
	// TotalCode is the code of the synthetic grand-total row.
	TotalCode = "TOT"

	// TotalDescription is the label of the grand-total row.
	TotalDescription = "TOTAL GENERAL"
)

// Contributions sorts the employer lines by numeric code and appends the
// grand-total row. It returns nil for an empty input.
func Contributions(items []types.ContributionItem) []types.ContributionItem {
	if len(items) == 0 {
		return nil
	}

	rows := make([]types.ContributionItem, len(items), len(items)+1)
	copy(rows, items)
	sort.SliceStable(rows, func(i, j int) bool {
		return codeLess(rows[i].Code, rows[j].Code)
	})

	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(decimal.NewFromFloat(row.Amount))
	}

	return append(rows, types.ContributionItem{
		Code:        TotalCode,
		Description: TotalDescription,
		Amount:      total.InexactFloat64(),
	})
}

// codeLess compares concept codes numerically. Codes that are not numbers
// sort after numeric ones.
func codeLess(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		return na < nb
	case errA == nil:
		return true
	default:
		return false
	}
}
