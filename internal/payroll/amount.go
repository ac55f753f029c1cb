// =============================================================================
// Liquidacion XLSX - Amount Parser
// =============================================================================
//
// Amounts in the condensed payroll summary use the Argentine convention:
// "." groups thousands and "," marks decimals ("1.234,56").
//
// =============================================================================

package payroll

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a locale-formatted amount token into a float64.
//
// PARAMETERS:
//   - token: The numeric text captured by a line pattern, e.g. "1.234,56".
//
// RETURNS:
//   - The parsed value, or 0 when the token is empty or not a number.
//     Line patterns sometimes capture noise, so a bad token means
//     "no monetary value" and never an error. A digit run too long for a
//     float64 is noise as well.
func ParseAmount(token string) float64 {
	d, ok := parseDecimal(token)
	if !ok {
		return 0
	}
	f, _ := d.Float64()
	if math.IsInf(f, 0) {
		return 0
	}
	return f
}

// parseDecimal strips grouping separators and converts the decimal comma
// before handing the text to decimal.
func parseDecimal(token string) (decimal.Decimal, bool) {
	if token == "" {
		return decimal.Zero, false
	}
	normalized := strings.ReplaceAll(token, ".", "")
	normalized = strings.ReplaceAll(normalized, ",", ".")

	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
