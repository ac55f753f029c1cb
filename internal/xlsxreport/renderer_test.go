package xlsxreport

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/planilla-condensada/liquidacion-xlsx/internal/aggregate"
	"github.com/planilla-condensada/liquidacion-xlsx/internal/types"
)

func li(record, code, description string, amount float64, bucket types.Bucket) types.LineItem {
	return types.LineItem{
		RecordID:    types.NewRecordID(record),
		Code:        code,
		Description: description,
		Amount:      amount,
		Bucket:      bucket,
	}
}

func sampleReport() *aggregate.Report {
	return aggregate.Build(
		[]types.LineItem{
			li("20", "010", "HORAS EXTRAS", 1000, types.Remunerative),
			li("20", "120", "JUBILACION", 110, types.Deduction),
			li("3", "070", "VIATICOS", 300.5, types.NonRemunerative),
			li("S/L", "010", "HORAS EXTRAS", 5, types.Remunerative),
		},
		[]types.ContributionItem{
			{Code: "150", Description: "SEGURO DE VIDA", Amount: 100},
			{Code: "140", Description: "OBRA SOCIAL", Amount: 50.25},
		},
	)
}

func open(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func raw(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return v
}

func rawFloat(t *testing.T, f *excelize.File, sheet, cell string) float64 {
	t.Helper()
	v, err := strconv.ParseFloat(raw(t, f, sheet, cell), 64)
	require.NoError(t, err, "cell %s!%s", sheet, cell)
	return v
}

func TestRender_SheetOrder(t *testing.T) {
	data, err := Render(sampleReport(), DefaultOptions())
	require.NoError(t, err)

	f := open(t, data)
	assert.Equal(t, []string{
		"Informe", "Totales por Legajo", "Detalle Empleados", "Aportes Patronales",
	}, f.GetSheetList())
}

func TestRender_Pivot(t *testing.T) {
	data, err := Render(sampleReport(), DefaultOptions())
	require.NoError(t, err)
	f := open(t, data)

	const s = "Informe"
	// Columns: 010 (Rem), 070 (No Rem), 120 (Ret).
	assert.Equal(t, "Remunerativo", raw(t, f, s, "B1"))
	assert.Equal(t, "No Remunerativo", raw(t, f, s, "C1"))
	assert.Equal(t, "Retenciones", raw(t, f, s, "D1"))
	assert.Equal(t, "010", raw(t, f, s, "B2"))
	assert.Equal(t, "VIATICOS", raw(t, f, s, "C3"))
	assert.Equal(t, "Legajo", raw(t, f, s, "A3"))

	// Rows: 3, 20, S/L.
	assert.Equal(t, "3", raw(t, f, s, "A4"))
	assert.Equal(t, "20", raw(t, f, s, "A5"))
	assert.Equal(t, "S/L", raw(t, f, s, "A6"))

	assert.Equal(t, 0.0, rawFloat(t, f, s, "B4"))
	assert.InDelta(t, 300.5, rawFloat(t, f, s, "C4"), 1e-9)
	assert.InDelta(t, 1000.0, rawFloat(t, f, s, "B5"), 1e-9)
	assert.InDelta(t, 110.0, rawFloat(t, f, s, "D5"), 1e-9)
	assert.Equal(t, 0.0, rawFloat(t, f, s, "D6"))
}

func TestRender_Totals(t *testing.T) {
	data, err := Render(sampleReport(), DefaultOptions())
	require.NoError(t, err)
	f := open(t, data)

	rows, err := f.GetRows("Totales por Legajo")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{
		"Legajo", "Total Remunerativo", "Total No Remunerativo", "Total Retenciones", "Sueldo Neto",
	}, rows[0])

	assert.Equal(t, "20", raw(t, f, "Totales por Legajo", "A3"))
	assert.InDelta(t, 890.0, rawFloat(t, f, "Totales por Legajo", "E3"), 1e-9)
}

func TestRender_Detail(t *testing.T) {
	data, err := Render(sampleReport(), DefaultOptions())
	require.NoError(t, err)
	f := open(t, data)

	const s = "Detalle Empleados"
	rows, err := f.GetRows(s)
	require.NoError(t, err)
	require.Len(t, rows, 5)

	assert.Equal(t, "JUBILACION", raw(t, f, s, "C3"))
	assert.Equal(t, "Retenciones", raw(t, f, s, "E3"))
	assert.InDelta(t, 110.0, rawFloat(t, f, s, "D3"), 1e-9)
	assert.InDelta(t, -110.0, rawFloat(t, f, s, "F3"), 1e-9)

	width, err := f.GetColWidth(s, "C")
	require.NoError(t, err)
	assert.Equal(t, float64(len("HORAS EXTRAS")+2), width)
}

func TestRender_Contributions(t *testing.T) {
	data, err := Render(sampleReport(), DefaultOptions())
	require.NoError(t, err)
	f := open(t, data)

	const s = "Aportes Patronales"
	assert.Equal(t, "140", raw(t, f, s, "A2"))
	assert.Equal(t, "150", raw(t, f, s, "A3"))
	assert.Equal(t, "TOT", raw(t, f, s, "A4"))
	assert.Equal(t, "TOTAL GENERAL", raw(t, f, s, "B4"))
	assert.InDelta(t, 150.25, rawFloat(t, f, s, "C4"), 1e-9)
}

func TestRender_OnlyContributions(t *testing.T) {
	report := aggregate.Build(nil, []types.ContributionItem{{Code: "140", Description: "OBRA SOCIAL", Amount: 1}})
	data, err := Render(report, DefaultOptions())
	require.NoError(t, err)

	f := open(t, data)
	assert.Equal(t, []string{"Aportes Patronales"}, f.GetSheetList())
}

func TestRender_EmptyReport(t *testing.T) {
	data, err := Render(aggregate.Build(nil, nil), DefaultOptions())
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f := open(t, data)
	assert.Equal(t, []string{"Sin Datos"}, f.GetSheetList())
	rows, err := f.GetRows("Sin Datos")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRender_CustomSheetNames(t *testing.T) {
	opts := DefaultOptions()
	opts.Sheets.Pivot = "Sheet1"
	opts.Sheets.Totals = "Totales"

	data, err := Render(sampleReport(), opts)
	require.NoError(t, err)

	f := open(t, data)
	assert.Equal(t, []string{"Sheet1", "Totales", "Detalle Empleados", "Aportes Patronales"}, f.GetSheetList())
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1,234,567.89", formatAmount(1234567.891))
	assert.Equal(t, "-45.00", formatAmount(-45))
	assert.Equal(t, "0.00", formatAmount(0))
	assert.Equal(t, "999.50", formatAmount(999.5))
}
