package pdftext

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planilla-condensada/liquidacion-xlsx/internal/pdftext/pdftest"
)

func TestReadAll_NotAPDF(t *testing.T) {
	_, err := ReadAll(strings.NewReader("this is not a pdf"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnreadableDocument)
}

func TestReadAll_Empty(t *testing.T) {
	_, err := ReadAll(bytes.NewReader(nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnreadableDocument)
}

func TestJoinRow_GlyphRunsAndGaps(t *testing.T) {
	// "010" and "HORAS" touch glyph by glyph; a wide gap separates columns.
	runs := []pdf.Text{
		{S: "H", X: 30, W: 6, FontSize: 10},
		{S: "0", X: 10, W: 5, FontSize: 10},
		{S: "1", X: 15, W: 5, FontSize: 10},
		{S: "0", X: 20, W: 5, FontSize: 10},
		{S: "O", X: 36, W: 6, FontSize: 10},
		{S: "RAS", X: 42, W: 18, FontSize: 10},
		{S: "12.500,00", X: 120, W: 45, FontSize: 10},
	}

	assert.Equal(t, "010 HORAS 12.500,00", joinRow(runs))
}

func TestJoinRow_ExistingSpacesNotDoubled(t *testing.T) {
	runs := []pdf.Text{
		{S: "Legajo: ", X: 0, W: 40, FontSize: 10},
		{S: "102", X: 60, W: 15, FontSize: 10},
	}
	assert.Equal(t, "Legajo: 102", joinRow(runs))
}

func TestJoinRow_NoWidthEstimate(t *testing.T) {
	runs := []pdf.Text{
		{S: "AB", X: 0, FontSize: 10},
		{S: "C", X: 10, FontSize: 10},
		{S: "D", X: 40, FontSize: 10},
	}
	assert.Equal(t, "ABC D", joinRow(runs))
}

func TestGlyphsToText(t *testing.T) {
	// Content order is not reading order: the lower line is drawn first and
	// the amount column sits half a point off its row baseline.
	glyphs := []pdf.Text{
		{S: "010 HORAS", X: 0, Y: 660, W: 45, FontSize: 10},
		{S: "Legajo: 7", X: 0, Y: 700, W: 45, FontSize: 10},
		{S: "\n", X: 45, Y: 700, FontSize: 10},
		{S: "1,00", X: 200, Y: 660.5, W: 20, FontSize: 10},
		{S: " ", X: 0, Y: 680, W: 3, FontSize: 10},
	}
	assert.Equal(t, "Legajo: 7\n010 HORAS 1,00", glyphsToText(glyphs))
}

func TestGlyphsToText_Empty(t *testing.T) {
	assert.Equal(t, "", glyphsToText(nil))
}

func TestReadAll_TextPositioning(t *testing.T) {
	doc := pdftest.Document(
		// Td moves to the next line.
		"BT /F1 10 Tf 50 700 Td (Legajo: 102) Tj 0 -14 Td (010 HORAS EXTRAS 12.500,00) Tj ET",
		// Tm places each line; TJ kerning opens the column gaps.
		"BT /F1 10 Tf 1 0 0 1 50 650 Tm [(010)-2000(HORAS EXTRAS)-8000(12.500,00)] TJ "+
			"1 0 0 1 50 636 Tm (020 PRESENTISMO 1.000,00) Tj ET",
		// TD sets the leading used by T*.
		"BT /F1 10 Tf 50 700 TD (Legajo: 7) Tj 0 -14 TD (030 ANTIGUEDAD 500,00) Tj T* (040 PREMIO 250,00) Tj ET",
		"",
	)

	pages, err := ReadAll(bytes.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, pages, 4)

	assert.Equal(t, Page{Number: 1, Text: "Legajo: 102\n010 HORAS EXTRAS 12.500,00"}, pages[0])
	assert.Equal(t, Page{Number: 2, Text: "010 HORAS EXTRAS 12.500,00\n020 PRESENTISMO 1.000,00"}, pages[1])
	assert.Equal(t, Page{Number: 3, Text: "Legajo: 7\n030 ANTIGUEDAD 500,00\n040 PREMIO 250,00"}, pages[2])
	assert.Equal(t, Page{Number: 4}, pages[3])
}

func TestReadPages_ColumnsDrawnSeparately(t *testing.T) {
	doc := pdftest.Document(
		"BT /F1 10 Tf 1 0 0 1 300 600.5 Tm (1.000,00) Tj 1 0 0 1 50 600 Tm (010 HORAS) Tj ET",
	)

	pages, err := ReadPages(bytes.NewReader(doc), int64(len(doc)))
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "010 HORAS 1.000,00", pages[0].Text)
}

func TestTexts(t *testing.T) {
	pages := []Page{{Number: 1, Text: "a"}, {Number: 2}, {Number: 3, Text: "c"}}
	assert.Equal(t, []string{"a", "", "c"}, Texts(pages))
}
