// =============================================================================
// Liquidacion XLSX - PDF Text Reader
// =============================================================================
//
// This module reads the text layer of a PDF and returns it page by page, in
// document order. It is the only place that knows about the PDF container;
// the extraction pipeline only sees "ordered sequence of page texts".
//
// LINE RECONSTRUCTION:
//   The PDF library reports every glyph with its position, after applying the
//   text positioning operators (Td, TD, T*, Tm) and TJ kerning. Glyphs whose
//   baselines lie within rowTolerance of each other form one row; rows are
//   emitted top to bottom, glyphs left to right. A space is inserted between
//   two glyphs when there is a horizontal gap between them, so columns printed
//   side by side stay separated.
//
// ERRORS:
//   Any failure to open or walk the document is reported as
//   ErrUnreadableDocument, with the library error wrapped as the cause.
//   A page without text is not an error; its Text is empty.
//
// =============================================================================

package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// ErrUnreadableDocument is returned when the input cannot be read as a PDF.
var ErrUnreadableDocument = errors.New("unreadable document")

// Page is the text of one PDF page.
type Page struct {
	// Number is the 1-based page number.
	Number int

	// Text holds the page lines separated by "\n". Empty when the page has
	// no text layer.
	Text string
}

// gapFactor is the fraction of the font size that counts as a word gap.
const gapFactor = 0.15

// rowTolerance is the largest baseline difference, in points, between glyphs
// of the same row.
const rowTolerance = 2.0

// ReadAll reads a whole PDF from r.
//
// PARAMETERS:
//   - r: A reader positioned at the start of the document.
//
// RETURNS:
//   - The pages in document order.
//   - An error wrapping ErrUnreadableDocument if the input is not a PDF.
func ReadAll(r io.Reader) ([]Page, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read input: %v", ErrUnreadableDocument, err)
	}
	return ReadPages(bytes.NewReader(data), int64(len(data)))
}

// ReadPages reads a PDF of the given size from a seekable source.
func ReadPages(r io.ReaderAt, size int64) (pages []Page, err error) {
	// The PDF library panics on some malformed inputs.
	defer func() {
		if rec := recover(); rec != nil {
			pages = nil
			err = fmt.Errorf("%w: %v", ErrUnreadableDocument, rec)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}

	numPages := reader.NumPage()
	pages = make([]Page, 0, numPages)
	for i := 1; i <= numPages; i++ {
		p := reader.Page(i)
		if p.V.IsNull() || p.V.Key("Contents").IsNull() {
			pages = append(pages, Page{Number: i})
			continue
		}

		pages = append(pages, Page{Number: i, Text: glyphsToText(p.Content().Text)})
	}
	return pages, nil
}

// Texts returns the page texts in order, the input of the extraction driver.
func Texts(pages []Page) []string {
	texts := make([]string, len(pages))
	for i, p := range pages {
		texts[i] = p.Text
	}
	return texts
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// glyphsToText groups glyphs into rows by baseline and joins each row.
func glyphsToText(glyphs []pdf.Text) string {
	type row struct {
		y      float64
		glyphs []pdf.Text
	}

	var rows []*row
	for _, g := range glyphs {
		if isControl(g.S) {
			continue
		}
		var target *row
		for _, r := range rows {
			if math.Abs(r.y-g.Y) < rowTolerance {
				target = r
				break
			}
		}
		if target == nil {
			target = &row{y: g.Y}
			rows = append(rows, target)
		}
		target.glyphs = append(target.glyphs, g)
	}

	// PDF y grows upwards.
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].y > rows[j].y })

	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		if line := strings.TrimSpace(joinRow(r.glyphs)); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// isControl reports glyphs that carry no text, such as the line break the
// library emits after every TJ array.
func isControl(s string) bool {
	for _, r := range s {
		if !unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// joinRow concatenates the text runs of one row, left to right, inserting a
// single space where the runs do not touch.
func joinRow(runs []pdf.Text) string {
	ordered := make([]pdf.Text, len(runs))
	copy(ordered, runs)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].X < ordered[j].X })

	var b strings.Builder
	var prev *pdf.Text
	for i := range ordered {
		cur := &ordered[i]
		if cur.S == "" {
			continue
		}
		if prev != nil && needsSpace(*prev, *cur, b.String()) {
			b.WriteByte(' ')
		}
		b.WriteString(cur.S)
		prev = cur
	}
	return b.String()
}

func needsSpace(prev, cur pdf.Text, written string) bool {
	if strings.HasSuffix(written, " ") || strings.HasPrefix(cur.S, " ") {
		return false
	}

	end := prev.X + prev.W
	if prev.W == 0 {
		// No advance width: estimate half an em per glyph.
		end = prev.X + prev.FontSize*0.5*float64(utf8.RuneCountInString(prev.S))
	}

	size := prev.FontSize
	if size <= 0 {
		size = 1
	}
	return cur.X-end > size*gapFactor
}
