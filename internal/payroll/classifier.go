// =============================================================================
// Liquidacion XLSX - Line Classifier
// =============================================================================
//
// The classifier looks at one line of extracted text and decides what it is.
// Rules are evaluated in a fixed order and the first one that matches wins:
//
//   1. contribution   : employer cost line (codes 136-150)
//   2. record marker  : a line mentioning "legajo"
//   3. record value   : the legajo number printed on its own line, only while
//                       a marker without digits is pending
//   4. header         : boilerplate that must be discarded
//   5. concepts       : one or more employee concepts printed side by side
//
// A line that matches no rule is unrecognized and silently ignored.
//
// =============================================================================

package payroll

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/planilla-condensada/liquidacion-xlsx/internal/types"
)

// =============================================================================
// PATTERNS
// =============================================================================

var (
	// contributionPattern matches "<code> <qty> <description> <amount>" at the
	// start of the line, with the code restricted to 136-139, 140-149 or 150.
	contributionPattern = regexp.MustCompile(
		`^(13[6-9]|14\d|150)\s+[\d,.]+\s+([A-Za-zÁÉÍÓÚÑ0-9.\s/()+, -]{4,30})\s+([-?.\d,]+)`)

	// conceptPattern matches every "<code> <description> <amount>" group of a
	// line. The amount class admits "/" so date and fraction fragments are
	// captured whole and can be discarded.
	conceptPattern = regexp.MustCompile(
		`(\d{3})\s+([A-Za-zÁÉÍÓÚÑ0-9.\s/()+ -]{4,30})\s+([-?./\d,]+)`)

	// inlineRecordPattern captures the digits printed right after "legajo".
	inlineRecordPattern = regexp.MustCompile(`legajo\s*[:\s]*(\d+)`)

	// leadingDigitsPattern captures the digit run that opens a line.
	leadingDigitsPattern = regexp.MustCompile(`^(\d+)`)
)

// recordKeyword marks a record identifier line (case-insensitive).
const recordKeyword = "legajo"

// maxRecordValueDigits bounds the legajo accepted from a line of its own.
const maxRecordValueDigits = 5

// maxFractionTokenLength bounds amount tokens read as fractions or dates.
const maxFractionTokenLength = 10

// Contribution code band, shared by the contribution rule and the concept
// filter so the two never overlap.
const (
	minContributionCode = 136
	maxContributionCode = 150
)

// HeaderBlacklist holds the boilerplate substrings that discard a line.
// Matching is done on the lowercased line.
var HeaderBlacklist = []string{
	"cuit", "planilla", "remuneraciones", "centro de costos", "convenio",
	"fec. ing", "ingr. rel", "fec.nac", "domicilio", "nacionalidad",
	"est.civil", "categoria", "sueldo basico", "cuil", "documento", "pag.",
}

// =============================================================================
// CLASSIFICATION RESULT
// =============================================================================

// Kind tags the outcome of classifying a line.
type Kind int

const (
	KindUnrecognized Kind = iota
	KindContribution
	KindRecordMarker
	KindRecordValue
	KindHeader
	KindConcepts
)

// String returns the rule name, used in stats and logs.
func (k Kind) String() string {
	switch k {
	case KindContribution:
		return "contribution"
	case KindRecordMarker:
		return "record_marker"
	case KindRecordValue:
		return "record_value"
	case KindHeader:
		return "header"
	case KindConcepts:
		return "concepts"
	default:
		return "unrecognized"
	}
}

// ConceptMatch is one employee concept that survived the concept filters.
type ConceptMatch struct {
	Code        string
	Description string
	Amount      float64
}

// Classification is the tagged result of Classify. Only the fields that
// belong to Kind are set.
type Classification struct {
	Kind Kind

	// Contribution is set for KindContribution.
	Contribution types.ContributionItem

	// RecordText is the legajo found for KindRecordValue, or for
	// KindRecordMarker when the digits were printed inline. An empty value on
	// a KindRecordMarker means the legajo is expected on a following line.
	RecordText string

	// Concepts holds the surviving matches for KindConcepts. It may be empty
	// when every match on the line was discarded.
	Concepts []ConceptMatch

	// Discarded counts concept matches dropped by the filters.
	Discarded int
}

// =============================================================================
// RULES
// =============================================================================

// line is the per-line input shared by the rules.
type line struct {
	clean    string // trimmed text
	lower    string // lowercased clean text
	prepared string // clean text with "%" removed and "/ " collapsed
}

func newLine(text string) line {
	// \s does not match U+00A0, which some generators print between columns.
	clean := strings.TrimSpace(strings.ReplaceAll(text, "\u00a0", " "))
	prepared := strings.ReplaceAll(clean, "%", "")
	prepared = strings.ReplaceAll(prepared, "/ ", " ")
	return line{
		clean:    clean,
		lower:    strings.ToLower(clean),
		prepared: prepared,
	}
}

// rule is one entry of the ordered rule list.
type rule struct {
	kind  Kind
	match func(l line, state State) (Classification, bool)
}

// rules is the precedence contract of the classifier. Order matters.
var rules = []rule{
	{KindContribution, matchContribution},
	{KindRecordMarker, matchRecordMarker},
	{KindRecordValue, matchRecordValue},
	{KindHeader, matchHeader},
	{KindConcepts, matchConcepts},
}

// Classify runs the rule list over one line of text.
//
// PARAMETERS:
//   - text: One line of page text. It is trimmed before matching.
//   - state: The extraction state before this line. Only the record value
//     rule depends on it.
//
// RETURNS:
//   - The classification of the first matching rule, or KindUnrecognized.
//     Empty lines are always unrecognized.
func Classify(text string, state State) Classification {
	l := newLine(text)
	if l.clean == "" {
		return Classification{Kind: KindUnrecognized}
	}
	for _, r := range rules {
		if c, ok := r.match(l, state); ok {
			c.Kind = r.kind
			return c
		}
	}
	return Classification{Kind: KindUnrecognized}
}

func matchContribution(l line, _ State) (Classification, bool) {
	m := contributionPattern.FindStringSubmatch(l.prepared)
	if m == nil {
		return Classification{}, false
	}
	return Classification{
		Contribution: types.ContributionItem{
			Code:        m[1],
			Description: strings.TrimSpace(m[2]),
			Amount:      ParseAmount(m[3]),
		},
	}, true
}

func matchRecordMarker(l line, _ State) (Classification, bool) {
	if !strings.Contains(l.lower, recordKeyword) {
		return Classification{}, false
	}
	var c Classification
	if m := inlineRecordPattern.FindStringSubmatch(l.lower); m != nil {
		c.RecordText = m[1]
	}
	return c, true
}

// matchRecordValue only fires while a marker without digits is pending. A
// line that does not start with a short digit run leaves the wait open and
// falls through to the remaining rules.
func matchRecordValue(l line, state State) (Classification, bool) {
	if state.Phase != AwaitingRecordID {
		return Classification{}, false
	}
	m := leadingDigitsPattern.FindStringSubmatch(l.clean)
	if m == nil || len(m[1]) > maxRecordValueDigits {
		return Classification{}, false
	}
	return Classification{RecordText: m[1]}, true
}

func matchHeader(l line, _ State) (Classification, bool) {
	for _, word := range HeaderBlacklist {
		if strings.Contains(l.lower, word) {
			return Classification{}, true
		}
	}
	return Classification{}, false
}

func matchConcepts(l line, _ State) (Classification, bool) {
	matches := conceptPattern.FindAllStringSubmatch(l.prepared, -1)
	if len(matches) == 0 {
		return Classification{}, false
	}
	var c Classification
	for _, m := range matches {
		cm, ok := filterConcept(m[1], m[2], m[3])
		if !ok {
			c.Discarded++
			continue
		}
		c.Concepts = append(c.Concepts, cm)
	}
	return c, true
}

// filterConcept applies the discard rules to one raw concept match.
func filterConcept(code, description, amountToken string) (ConceptMatch, bool) {
	if strings.Contains(amountToken, "/") && len(amountToken) <= maxFractionTokenLength {
		return ConceptMatch{}, false
	}
	amount := ParseAmount(amountToken)
	if amount == 0 {
		return ConceptMatch{}, false
	}
	if IsContributionCode(code) {
		return ConceptMatch{}, false
	}
	return ConceptMatch{
		Code:        code,
		Description: strings.TrimSpace(description),
		Amount:      amount,
	}, true
}

// IsContributionCode reports whether a concept code belongs to the employer
// contribution band.
func IsContributionCode(code string) bool {
	n, err := strconv.Atoi(code)
	if err != nil {
		return false
	}
	return n >= minContributionCode && n <= maxContributionCode
}
