// =============================================================================
// Liquidacion XLSX - Report Renderer
// =============================================================================
//
// This module writes the aggregated report as an OOXML workbook. Sheets, in
// order, when they have data:
//
//   | Sheet          | Content                                                   |
//   |----------------|-----------------------------------------------------------|
//   | Informe        | pivot: 3 header rows (bucket, code, description) + 1 row   |
//   |                | per legajo                                                |
//   | Totales        | legajo, remunerative, non-remunerative, deductions, net   |
//   | Detalle        | one row per line item, with bucket and net impact         |
//   | Aportes        | employer contributions with the TOT row                   |
//
// The employee sheets are omitted when there are no line items, and the
// contributions sheet when there are no contributions. An OOXML workbook needs
// at least one sheet, so an empty report keeps a single placeholder sheet
// with no cells.
//
// =============================================================================

package xlsxreport

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/planilla-condensada/liquidacion-xlsx/internal/aggregate"
)

// =============================================================================
// OPTIONS
// =============================================================================

// SheetNames holds the sheet titles of the workbook.
type SheetNames struct {
	Pivot         string `yaml:"pivot"`
	Totals        string `yaml:"totals"`
	Detail        string `yaml:"detail"`
	Contributions string `yaml:"contributions"`
	Empty         string `yaml:"empty"`
}

// Options controls rendering.
type Options struct {
	Sheets SheetNames

	// ColumnMargin is added to the longest rendered value of each column.
	ColumnMargin int
}

// DefaultOptions returns the standard Spanish sheet names and a margin of 2.
func DefaultOptions() Options {
	return Options{
		Sheets: SheetNames{
			Pivot:         "Informe",
			Totals:        "Totales por Legajo",
			Detail:        "Detalle Empleados",
			Contributions: "Aportes Patronales",
			Empty:         "Sin Datos",
		},
		ColumnMargin: 2,
	}
}

// amountFormat is the number format of every amount cell.
const amountFormat = "#,##0.00"

// =============================================================================
// RENDER
// =============================================================================

// Render writes the report into workbook bytes.
//
// PARAMETERS:
//   - report: The aggregated tables.
//   - opts: Sheet names and column sizing.
//
// RETURNS:
//   - The XLSX bytes.
//   - An error if the workbook could not be built or serialized.
func Render(report *aggregate.Report, opts Options) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	w, err := newWriter(f, opts)
	if err != nil {
		return nil, err
	}

	if report.HasItems() {
		if err := w.writePivot(report.Pivot); err != nil {
			return nil, fmt.Errorf("failed to write pivot sheet: %w", err)
		}
		if err := w.writeTotals(report.Totals); err != nil {
			return nil, fmt.Errorf("failed to write totals sheet: %w", err)
		}
		if err := w.writeDetail(report); err != nil {
			return nil, fmt.Errorf("failed to write detail sheet: %w", err)
		}
	}
	if report.HasContributions() {
		if err := w.writeContributions(report.Contributions); err != nil {
			return nil, fmt.Errorf("failed to write contributions sheet: %w", err)
		}
	}

	if err := w.finish(); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// =============================================================================
// SHEET WRITER
// =============================================================================

// writer tracks the sheets created and the shared styles.
type writer struct {
	f      *excelize.File
	opts   Options
	sheets []string

	// defaultSheet is the sheet excelize creates with a new file.
	defaultSheet string

	headerStyle int
	amountStyle int
}

func newWriter(f *excelize.File, opts Options) (*writer, error) {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	numFmt := amountFormat
	amountStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return nil, fmt.Errorf("failed to create amount style: %w", err)
	}

	return &writer{
		f:            f,
		opts:         opts,
		defaultSheet: f.GetSheetName(0),
		headerStyle:  headerStyle,
		amountStyle:  amountStyle,
	}, nil
}

// sheet is the content of one sheet before it is written.
type sheet struct {
	name       string
	headerRows int
	rows       [][]interface{}

	// amountCols lists the 1-based columns holding amounts.
	amountCols map[int]bool

	// freeze keeps the header rows and first column visible.
	freeze bool
}

func (w *writer) writeSheet(s sheet) error {
	if _, err := w.f.NewSheet(s.name); err != nil {
		return err
	}
	w.sheets = append(w.sheets, s.name)

	widths := make(map[int]int)
	for r, row := range s.rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return err
		}
		values := row
		if err := w.f.SetSheetRow(s.name, cell, &values); err != nil {
			return err
		}

		for c, v := range row {
			if n := utf8.RuneCountInString(render(v)); n > widths[c+1] {
				widths[c+1] = n
			}
		}
	}

	lastRow := len(s.rows)
	if s.headerRows > 0 && len(s.rows) > 0 {
		end, err := excelize.CoordinatesToCellName(len(s.rows[0]), s.headerRows)
		if err != nil {
			return err
		}
		if err := w.f.SetCellStyle(s.name, "A1", end, w.headerStyle); err != nil {
			return err
		}
	}
	if lastRow > s.headerRows {
		for col := range s.amountCols {
			top, _ := excelize.CoordinatesToCellName(col, s.headerRows+1)
			bottom, _ := excelize.CoordinatesToCellName(col, lastRow)
			if err := w.f.SetCellStyle(s.name, top, bottom, w.amountStyle); err != nil {
				return err
			}
		}
	}

	for col, n := range widths {
		name, err := excelize.ColumnNumberToName(col)
		if err != nil {
			return err
		}
		if err := w.f.SetColWidth(s.name, name, name, float64(n+w.opts.ColumnMargin)); err != nil {
			return err
		}
	}

	if s.freeze && s.headerRows > 0 {
		topLeft, _ := excelize.CoordinatesToCellName(2, s.headerRows+1)
		if err := w.f.SetPanes(s.name, &excelize.Panes{
			Freeze:      true,
			XSplit:      1,
			YSplit:      s.headerRows,
			TopLeftCell: topLeft,
			ActivePane:  "bottomRight",
		}); err != nil {
			return err
		}
	}
	return nil
}

// finish removes the default sheet when data sheets exist, or renames it to
// the placeholder name when the report is empty.
func (w *writer) finish() error {
	if len(w.sheets) == 0 {
		if w.opts.Sheets.Empty != "" && w.opts.Sheets.Empty != w.defaultSheet {
			if err := w.f.SetSheetName(w.defaultSheet, w.opts.Sheets.Empty); err != nil {
				return fmt.Errorf("failed to rename placeholder sheet: %w", err)
			}
		}
		return nil
	}

	if !w.created(w.defaultSheet) {
		if err := w.f.DeleteSheet(w.defaultSheet); err != nil {
			return fmt.Errorf("failed to remove default sheet: %w", err)
		}
	}
	index, err := w.f.GetSheetIndex(w.sheets[0])
	if err != nil {
		return err
	}
	w.f.SetActiveSheet(index)
	return nil
}

func (w *writer) created(name string) bool {
	for _, s := range w.sheets {
		if s == name {
			return true
		}
	}
	return false
}

// render returns the text a cell value shows, used to size columns.
func render(v interface{}) string {
	switch x := v.(type) {
	case float64:
		return formatAmount(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case string:
		return x
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}

// formatAmount renders a value the way amountFormat displays it.
func formatAmount(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}
	intPart, frac := s[:len(s)-3], s[len(s)-3:]

	var grouped []byte
	for i := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped = append(grouped, ',')
		}
		grouped = append(grouped, intPart[i])
	}
	if neg {
		return "-" + string(grouped) + frac
	}
	return string(grouped) + frac
}
