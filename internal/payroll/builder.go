package payroll

import (
	"strconv"
	"strings"

	"github.com/planilla-condensada/liquidacion-xlsx/internal/types"
)

// Employee code bands. Anything outside them falls back to Deduction.
const (
	maxRemunerativeCode    = 65
	maxNonRemunerativeCode = 110
	maxDeductionCode       = 135
)

// nonRemunerativeMarkers force NonRemunerative whatever the code says.
var nonRemunerativeMarkers = []string{"ANR", "NO REM"}

// BucketFor assigns a concept to its bucket. The description markers take
// precedence over the code bands.
func BucketFor(code int, description string) types.Bucket {
	upper := strings.ToUpper(description)
	for _, marker := range nonRemunerativeMarkers {
		if strings.Contains(upper, marker) {
			return types.NonRemunerative
		}
	}

	switch {
	case code >= 1 && code <= maxRemunerativeCode:
		return types.Remunerative
	case code > maxRemunerativeCode && code <= maxNonRemunerativeCode:
		return types.NonRemunerative
	case code > maxNonRemunerativeCode && code <= maxDeductionCode:
		return types.Deduction
	default:
		return types.Deduction
	}
}

// BuildLineItem turns a surviving concept match into a typed line item for
// the given record.
func BuildLineItem(id types.RecordID, m ConceptMatch) types.LineItem {
	code, _ := strconv.Atoi(m.Code)
	return types.LineItem{
		RecordID:    id,
		Code:        m.Code,
		Description: m.Description,
		Amount:      m.Amount,
		Bucket:      BucketFor(code, m.Description),
	}
}
