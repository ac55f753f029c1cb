// =============================================================================
// Liquidacion XLSX - Extraction Driver
// =============================================================================
//
// The driver walks the page texts of one document in order, line by line,
// and carries the active legajo across lines and pages. All state lives in
// a State value that is passed into each step and returned updated, so two
// documents can be extracted in parallel without coordination.
//
// STATE MACHINE:
//   NoActiveRecord   --marker with digits-->   ActiveRecord
//   any              --marker without digits--> AwaitingRecordID
//   AwaitingRecordID --short leading digits-->  ActiveRecord
//
// While awaiting, lines that do not resolve the legajo are classified as
// usual and the wait stays open until a value or a new marker shows up.
//
// =============================================================================

package payroll

import (
	"strings"

	"github.com/planilla-condensada/liquidacion-xlsx/internal/types"
)

// =============================================================================
// EXTRACTION STATE
// =============================================================================

// Phase is the position of the driver in the legajo state machine.
type Phase int

const (
	// NoActiveRecord is the initial phase; items get types.NoRecord.
	NoActiveRecord Phase = iota

	// ActiveRecord means a legajo has been read and applies to new items.
	ActiveRecord

	// AwaitingRecordID means a "legajo" label was read without digits. The
	// previous RecordID stays in effect until the value is found.
	AwaitingRecordID
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case ActiveRecord:
		return "active_record"
	case AwaitingRecordID:
		return "awaiting_record_id"
	default:
		return "no_active_record"
	}
}

// State is the extraction state carried from line to line.
type State struct {
	Phase    Phase
	RecordID types.RecordID
}

// InitialState returns the state used at the start of every document.
func InitialState() State {
	return State{Phase: NoActiveRecord, RecordID: types.NoRecord}
}

// =============================================================================
// SINGLE STEP
// =============================================================================

// Outcome is what one line contributed to the extraction.
type Outcome struct {
	Classification Classification

	// Items are the line items built from the line's concepts.
	Items []types.LineItem

	// Contribution is set when the line was an employer contribution.
	Contribution *types.ContributionItem
}

// Step classifies one line and applies it to the state.
//
// PARAMETERS:
//   - state: The state before the line.
//   - text: The raw line text.
//
// RETURNS:
//   - The state after the line.
//   - What the line produced.
func Step(state State, text string) (State, Outcome) {
	c := Classify(text, state)
	out := Outcome{Classification: c}

	switch c.Kind {
	case KindContribution:
		item := c.Contribution
		out.Contribution = &item

	case KindRecordMarker:
		if c.RecordText != "" {
			state = State{Phase: ActiveRecord, RecordID: types.NewRecordID(c.RecordText)}
		} else {
			state.Phase = AwaitingRecordID
		}

	case KindRecordValue:
		state = State{Phase: ActiveRecord, RecordID: types.NewRecordID(c.RecordText)}

	case KindConcepts:
		for _, m := range c.Concepts {
			out.Items = append(out.Items, BuildLineItem(state.RecordID, m))
		}
	}

	return state, out
}

// =============================================================================
// DOCUMENT DRIVER
// =============================================================================

// Stats counts what happened during one extraction.
type Stats struct {
	// Pages is the number of pages handed to the driver.
	Pages int

	// EmptyPages is the number of pages skipped for having no text.
	EmptyPages int

	// Lines is the number of non-empty lines classified.
	Lines int

	// ByKind counts classified lines per rule.
	ByKind map[Kind]int

	// DiscardedConcepts counts concept matches dropped by the filters.
	DiscardedConcepts int

	// Records is the number of distinct legajos that received items.
	Records int
}

// Extraction is the result of running the driver over a document.
type Extraction struct {
	Items         []types.LineItem
	Contributions []types.ContributionItem
	Stats         Stats
}

// Extract runs the driver over the ordered page texts of one document.
//
// PARAMETERS:
//   - pages: Page texts in document order. An empty entry is a page with no
//     extractable text and is skipped.
//
// RETURNS:
//   - The line items and contributions found. Unmatched lines are dropped
//     silently; extraction itself never fails.
func Extract(pages []string) *Extraction {
	result := &Extraction{
		Stats: Stats{Pages: len(pages), ByKind: make(map[Kind]int)},
	}
	records := make(map[types.RecordID]struct{})

	state := InitialState()
	for _, page := range pages {
		if strings.TrimSpace(page) == "" {
			result.Stats.EmptyPages++
			continue
		}

		for _, text := range strings.Split(page, "\n") {
			if strings.TrimSpace(text) == "" {
				continue
			}

			var out Outcome
			state, out = Step(state, text)

			result.Stats.Lines++
			result.Stats.ByKind[out.Classification.Kind]++
			result.Stats.DiscardedConcepts += out.Classification.Discarded

			if out.Contribution != nil {
				result.Contributions = append(result.Contributions, *out.Contribution)
			}
			for _, item := range out.Items {
				records[item.RecordID] = struct{}{}
				result.Items = append(result.Items, item)
			}
		}
	}

	result.Stats.Records = len(records)
	return result
}
