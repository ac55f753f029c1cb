// =============================================================================
// Liquidacion XLSX - Shared Types
// =============================================================================
//
// This package contains the payroll types shared by every stage of the
// pipeline, kept apart to avoid import cycles. Types defined here are used by:
//   - payroll     (extraction)
//   - aggregate   (totals and pivot)
//   - xlsxreport  (workbook rendering)
//   - csvexport   (detail export)
//
// =============================================================================

package types

import (
	"strconv"
)

// =============================================================================
// BUCKETS
// =============================================================================

// Bucket is the financial classification of a concept amount.
// The declaration order is the report precedence:
// Remunerative < NonRemunerative < Deduction.
type Bucket int

const (
	// Remunerative amounts are part of the taxable salary.
	Remunerative Bucket = iota

	// NonRemunerative amounts are paid to the employee but not taxable.
	NonRemunerative

	// Deduction amounts are withheld from the employee.
	Deduction
)

// Buckets lists every bucket in precedence order.
var Buckets = []Bucket{Remunerative, NonRemunerative, Deduction}

// String returns the label used in report headers.
func (b Bucket) String() string {
	switch b {
	case Remunerative:
		return "Remunerativo"
	case NonRemunerative:
		return "No Remunerativo"
	case Deduction:
		return "Retenciones"
	default:
		return "Bucket(" + strconv.Itoa(int(b)) + ")"
	}
}

// =============================================================================
// RECORD IDENTIFIER
// =============================================================================

// NoRecordText is the sentinel used before any legajo has been found.
const NoRecordText = "S/L"

// RecordID identifies a payroll subject (legajo). It is comparable and can be
// used as a map key. Digit runs that fit in an int64 are stored numerically,
// so "0102" and "102" name the same record.
type RecordID struct {
	text    string
	num     int64
	numeric bool
}

// NoRecord is the identifier attached to items found before any legajo.
var NoRecord = NewRecordID(NoRecordText)

// NewRecordID builds an identifier from the text found in the document.
func NewRecordID(text string) RecordID {
	if isDigits(text) {
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			return RecordID{text: strconv.FormatInt(n, 10), num: n, numeric: true}
		}
	}
	return RecordID{text: text}
}

// IsNumeric reports whether the identifier was stored as a number.
func (r RecordID) IsNumeric() bool { return r.numeric }

// Number returns the numeric value. It is 0 for non-numeric identifiers.
func (r RecordID) Number() int64 { return r.num }

// String returns the canonical text of the identifier.
func (r RecordID) String() string { return r.text }

// Value returns the identifier as an int64 when numeric, or as its text.
// Spreadsheet writers use it so numeric legajos land as number cells.
func (r RecordID) Value() interface{} {
	if r.numeric {
		return r.num
	}
	return r.text
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// =============================================================================
// LINE ITEMS
// =============================================================================

// LineItem is one employee concept extracted from the document.
type LineItem struct {
	// RecordID is the legajo active when the concept was read.
	RecordID RecordID

	// Code is the 3-digit concept code, kept as text to preserve leading zeros.
	Code string

	// Description is the trimmed concept label.
	Description string

	// Amount is the parsed monetary value. Never 0 for a built item.
	Amount float64

	// Bucket is assigned once from Code and Description.
	Bucket Bucket
}

// SignedAmount returns the net impact of the item: deductions are negated,
// every other bucket keeps its sign.
func (li LineItem) SignedAmount() float64 {
	if li.Bucket == Deduction {
		return -li.Amount
	}
	return li.Amount
}

// ContributionItem is an employer-side (patronal) cost line. It is a
// document-level total and does not belong to any record.
type ContributionItem struct {
	Code        string
	Description string
	Amount      float64
}
