package converter

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/planilla-condensada/liquidacion-xlsx/internal/config"
	"github.com/planilla-condensada/liquidacion-xlsx/internal/pdftext"
	"github.com/planilla-condensada/liquidacion-xlsx/internal/pdftext/pdftest"
)

func samplePages() []string {
	return []string{
		strings.Join([]string{
			"Legajo: 102",
			"010 HORAS EXTRAS 12.500,00",
			"120 JUBILACION 2.750,00",
		}, "\n"),
		"",
		"140 17,00% CONTRIB. SEG. SOCIAL 85.000,00",
	}
}

func sheetList(t *testing.T, workbook []byte) []string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(workbook))
	require.NoError(t, err)
	defer f.Close()
	return f.GetSheetList()
}

func testConfig(t *testing.T) *config.MainConfig {
	t.Helper()
	root := t.TempDir()
	c := config.Default()
	c.InputDir = filepath.Join(root, "input")
	c.OutputDir = filepath.Join(root, "output")
	c.InputArchiveDir = filepath.Join(root, "archive")
	require.NoError(t, c.EnsureDirectories())
	return c
}

func stubPages(pages []string, err error) func(string) ([]string, error) {
	return func(string) ([]string, error) { return pages, err }
}

func TestConvertPages(t *testing.T) {
	out, err := ConvertPages(samplePages(), DefaultOptions())
	require.NoError(t, err)

	require.Len(t, out.Report.Items, 2)
	require.Len(t, out.Report.Totals, 1)
	assert.InDelta(t, 9750.0, out.Report.Totals[0].Net, 1e-9)

	// Contribution plus the TOT row.
	require.Len(t, out.Report.Contributions, 2)
	assert.Equal(t, "TOT", out.Report.Contributions[1].Code)

	assert.Equal(t, 3, out.Stats.Pages)
	assert.Equal(t, 1, out.Stats.EmptyPages)
	assert.Equal(t, []string{
		"Informe", "Totales por Legajo", "Detalle Empleados", "Aportes Patronales",
	}, sheetList(t, out.Workbook))
}

func TestConvertPages_NothingRecognized(t *testing.T) {
	out, err := ConvertPages([]string{"Firma del empleador"}, DefaultOptions())
	require.NoError(t, err)

	assert.False(t, out.Report.HasItems())
	assert.False(t, out.Report.HasContributions())
	assert.Equal(t, []string{"Sin Datos"}, sheetList(t, out.Workbook))
}

func TestConvertPages_AmountBeyondFloatRange(t *testing.T) {
	huge := strings.Repeat("9", 400) + ",00"
	pages := []string{strings.Join([]string{
		"Legajo: 102",
		"010 HORAS EXTRAS " + huge,
		"020 PRESENTISMO 1.000,00",
		"140 1,00 APORTE OBRA SOCIAL " + huge,
	}, "\n")}

	var out *Output
	require.NotPanics(t, func() {
		var err error
		out, err = ConvertPages(pages, DefaultOptions())
		require.NoError(t, err)
	})

	require.Len(t, out.Report.Items, 1)
	assert.Equal(t, "020", out.Report.Items[0].Code)
	assert.Equal(t, 1, out.Stats.DiscardedConcepts)

	require.Len(t, out.Report.Contributions, 2)
	assert.Equal(t, "140", out.Report.Contributions[0].Code)
	assert.Zero(t, out.Report.Contributions[0].Amount)
}

// payrollPDF positions its lines with Td on the first page and with Tm and
// TJ kerning on the second.
func payrollPDF() []byte {
	return pdftest.Document(
		"BT /F1 10 Tf 50 700 Td (Legajo: 102) Tj "+
			"0 -14 Td (010 HORAS EXTRAS 12.500,00) Tj "+
			"0 -14 Td (120 JUBILACION 2.750,00) Tj ET",
		"BT /F1 10 Tf 1 0 0 1 50 700 Tm (Legajo: 205) Tj "+
			"1 0 0 1 50 686 Tm [(010)-2000(HORAS EXTRAS)-8000(3.000,00)] TJ "+
			"1 0 0 1 50 672 Tm [(140 17,00)-1500(CONTRIB. SEG. SOCIAL)-6000(85.000,00)] TJ ET",
	)
}

func TestConvert_GeneratedPDF(t *testing.T) {
	out, err := Convert(bytes.NewReader(payrollPDF()), DefaultOptions())
	require.NoError(t, err)

	type item struct {
		Record string
		Code   string
		Amount float64
	}
	var items []item
	for _, it := range out.Report.Items {
		items = append(items, item{it.RecordID.String(), it.Code, it.Amount})
	}
	assert.Equal(t, []item{
		{"102", "010", 12500},
		{"102", "120", 2750},
		{"205", "010", 3000},
	}, items)

	assert.Equal(t, 2, out.Stats.Pages)
	assert.Equal(t, 2, out.Stats.Records)
	require.Len(t, out.Report.Contributions, 2)
	assert.Equal(t, "140", out.Report.Contributions[0].Code)
	assert.Equal(t, "CONTRIB. SEG. SOCIAL", out.Report.Contributions[0].Description)
	assert.InDelta(t, 85000.0, out.Report.Contributions[0].Amount, 1e-9)
	assert.Len(t, sheetList(t, out.Workbook), 4)
}

func TestRun_ReadsPDFFromDisk(t *testing.T) {
	cfg := testConfig(t)
	input := filepath.Join(cfg.InputDir, "febrero.pdf")
	require.NoError(t, os.WriteFile(input, payrollPDF(), 0644))

	result := New(input, cfg, nil).Run()
	require.NoError(t, result.Error)
	assert.True(t, result.Success)
	assert.Equal(t, 3, result.Stats.LineItems)
	assert.Equal(t, 2, result.Stats.Records)
	assert.Equal(t, 1, result.Stats.Contributions)
	assert.FileExists(t, result.OutputFile)
}

func TestConvert_UnreadableDocument(t *testing.T) {
	_, err := Convert(strings.NewReader("this is not a pdf"), DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDocument))
	assert.True(t, errors.Is(err, pdftext.ErrUnreadableDocument))
	assert.Equal(t, ErrorTypeDocument, ErrorType(err))
}

func TestRun_WritesWorkbookAndCSV(t *testing.T) {
	cfg := testConfig(t)
	cfg.ExportCSV = true

	input := filepath.Join(cfg.InputDir, "enero.pdf")
	c := New(input, cfg, nil)
	c.readPages = stubPages(samplePages(), nil)

	result := c.Run()
	require.NoError(t, result.Error)
	assert.True(t, result.Success)

	assert.Equal(t, filepath.Join(cfg.OutputDir, "Liquidacion_enero.xlsx"), result.OutputFile)
	data, err := os.ReadFile(result.OutputFile)
	require.NoError(t, err)
	assert.Len(t, sheetList(t, data), 4)

	assert.Equal(t, filepath.Join(cfg.OutputDir, "Liquidacion_enero.csv"), result.CSVFile)
	csvData, err := os.ReadFile(result.CSVFile)
	require.NoError(t, err)
	assert.Contains(t, string(csvData), "102,010,HORAS EXTRAS,12500.00,Remunerativo,12500.00")

	assert.Equal(t, 2, result.Stats.LineItems)
	assert.Equal(t, 1, result.Stats.Contributions)
	assert.Equal(t, 1, result.Stats.Records)
	assert.Empty(t, result.ArchivePath)
}

func TestRun_OutputOverrideAndArchive(t *testing.T) {
	cfg := testConfig(t)
	cfg.ArchiveInputs = true

	input := filepath.Join(cfg.InputDir, "enero.pdf")
	require.NoError(t, os.WriteFile(input, []byte("%PDF"), 0644))
	target := filepath.Join(t.TempDir(), "nested", "reporte.xlsx")

	c := New(input, cfg, nil)
	c.readPages = stubPages(samplePages(), nil)
	c.SetOutputPath(target)

	result := c.Run()
	require.NoError(t, result.Error)
	assert.Equal(t, target, result.OutputFile)
	assert.FileExists(t, target)
	assert.Equal(t, filepath.Join(cfg.InputArchiveDir, "enero.pdf"), result.ArchivePath)
	assert.NoFileExists(t, input)
}

func TestRun_ArchiveIntoDateSubdirs(t *testing.T) {
	cfg := testConfig(t)
	cfg.ArchiveInputs = true
	cfg.ArchiveTimestampSubdirs = true

	input := filepath.Join(cfg.InputDir, "marzo.pdf")
	require.NoError(t, os.WriteFile(input, []byte("%PDF"), 0644))

	c := New(input, cfg, nil)
	c.readPages = stubPages(samplePages(), nil)

	result := c.Run()
	require.NoError(t, result.Error)

	rel, err := filepath.Rel(cfg.InputArchiveDir, result.ArchivePath)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^\d{4}/\d{2}/\d{2}/marzo\.pdf$`), filepath.ToSlash(rel))
	assert.FileExists(t, result.ArchivePath)
	assert.NoFileExists(t, input)
}

func TestRun_DocumentErrorWritesNothing(t *testing.T) {
	cfg := testConfig(t)

	c := New(filepath.Join(cfg.InputDir, "roto.pdf"), cfg, nil)
	c.readPages = stubPages(nil, pdftext.ErrUnreadableDocument)

	result := c.Run()
	assert.False(t, result.Success)
	assert.True(t, errors.Is(result.Error, ErrDocument))
	assert.Empty(t, result.OutputFile)

	entries, err := os.ReadDir(cfg.OutputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRun_MissingFile(t *testing.T) {
	cfg := testConfig(t)

	result := New(filepath.Join(cfg.InputDir, "absent.pdf"), cfg, nil).Run()
	assert.False(t, result.Success)
	assert.Equal(t, ErrorTypeDocument, ErrorType(result.Error))
}

func TestRun_NotAPDFOnDisk(t *testing.T) {
	cfg := testConfig(t)
	input := filepath.Join(cfg.InputDir, "texto.pdf")
	require.NoError(t, os.WriteFile(input, []byte("plain text"), 0644))

	result := New(input, cfg, nil).Run()
	assert.False(t, result.Success)
	assert.True(t, errors.Is(result.Error, pdftext.ErrUnreadableDocument))
	assert.FileExists(t, input)
}
