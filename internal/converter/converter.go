// =============================================================================
// Liquidacion XLSX - Converter Module
// =============================================================================
//
// This module orchestrates the conversion of one payroll PDF into the XLSX
// report.
//
// CONVERSION PIPELINE:
//   1. Read the PDF text layer, page by page
//   2. Run the extraction driver over the page texts
//   3. Aggregate totals, pivot and contributions
//   4. Render the workbook
//   5. Write the output file (and the optional CSV detail)
//   6. Archive the processed input, when enabled
//
// Steps 2 to 4 are pure and available on their own through Convert and
// ConvertPages. Run adds the file system around them.
//
// CONCURRENCY:
//   A Converter handles one file and shares no state with other converters,
//   so the process command runs one per goroutine.
//
// =============================================================================

package converter

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/planilla-condensada/liquidacion-xlsx/internal/aggregate"
	"github.com/planilla-condensada/liquidacion-xlsx/internal/config"
	"github.com/planilla-condensada/liquidacion-xlsx/internal/csvexport"
	"github.com/planilla-condensada/liquidacion-xlsx/internal/logging"
	"github.com/planilla-condensada/liquidacion-xlsx/internal/payroll"
	"github.com/planilla-condensada/liquidacion-xlsx/internal/pdftext"
	"github.com/planilla-condensada/liquidacion-xlsx/internal/xlsxreport"
	"github.com/planilla-condensada/liquidacion-xlsx/pkg/utils"
)

// ErrDocument marks a document that could not be read at all. Nothing is
// written for it.
var ErrDocument = errors.New("document could not be read")

// UserMessage is shown instead of the error details of a failed document.
const UserMessage = "Hubo un error al leer el archivo."

// Error types reported in the batch logs.
const (
	ErrorTypeDocument = "document"
	ErrorTypeOutput   = "output"
)

// ErrorType classifies a Run error for the batch logs.
func ErrorType(err error) string {
	if errors.Is(err, ErrDocument) {
		return ErrorTypeDocument
	}
	return ErrorTypeOutput
}

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the path to the input PDF.
	FilePath string

	// OutputFile is the path to the generated workbook.
	// This is empty if processing failed.
	OutputFile string

	// CSVFile is the path to the detail CSV, when exported.
	CSVFile string

	// ArchivePath is where the input was moved, when archiving is enabled.
	ArchivePath string

	// Success indicates whether the processing was successful.
	Success bool

	// Error contains the error if processing failed.
	Error error

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// Pages is the number of pages in the document.
	Pages int

	// EmptyPages is the number of pages without a text layer.
	EmptyPages int

	// Lines is the number of text lines classified.
	Lines int

	// LineItems is the number of employee line items extracted.
	LineItems int

	// Contributions is the number of employer contribution lines.
	Contributions int

	// Records is the number of distinct legajos.
	Records int

	// DiscardedConcepts is the number of concept matches dropped by filters.
	DiscardedConcepts int

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

func statsFrom(out *Output) ProcessingStats {
	s := out.Stats
	return ProcessingStats{
		Pages:             s.Pages,
		EmptyPages:        s.EmptyPages,
		Lines:             s.Lines,
		LineItems:         len(out.Report.Items),
		Contributions:     s.ByKind[payroll.KindContribution],
		Records:           s.Records,
		DiscardedConcepts: s.DiscardedConcepts,
	}
}

// =============================================================================
// PURE PIPELINE
// =============================================================================

// Options controls the pure pipeline.
type Options struct {
	Report xlsxreport.Options
}

// DefaultOptions returns the default report layout.
func DefaultOptions() Options {
	return Options{Report: xlsxreport.DefaultOptions()}
}

// Output is the result of converting one document in memory.
type Output struct {
	// Workbook holds the XLSX bytes.
	Workbook []byte

	// Report holds the aggregated tables behind the workbook.
	Report *aggregate.Report

	// Stats describes the extraction.
	Stats payroll.Stats
}

// Convert reads a PDF from r and returns the rendered workbook.
//
// RETURNS:
//   - The workbook, report and extraction statistics.
//   - An error wrapping ErrDocument if the PDF cannot be read.
func Convert(r io.Reader, opts Options) (*Output, error) {
	pages, err := pdftext.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDocument, err)
	}
	return ConvertPages(pdftext.Texts(pages), opts)
}

// ConvertPages runs extraction, aggregation and rendering over page texts.
// A document with no recognizable lines still yields a valid workbook.
func ConvertPages(pages []string, opts Options) (*Output, error) {
	extraction := payroll.Extract(pages)
	report := aggregate.Build(extraction.Items, extraction.Contributions)

	workbook, err := xlsxreport.Render(report, opts.Report)
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}

	return &Output{
		Workbook: workbook,
		Report:   report,
		Stats:    extraction.Stats,
	}, nil
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter handles the conversion of a single PDF file.
type Converter struct {
	// pdfPath is the path to the input PDF.
	pdfPath string

	// mainConfig is the main application configuration.
	mainConfig *config.MainConfig

	// outputPath overrides the generated output name when set.
	outputPath string

	// exportCSV also writes the detail CSV.
	exportCSV bool

	// readPages returns the page texts of a document.
	readPages func(path string) ([]string, error)

	logger Logger
}

// Logger is the logging interface used by the converter.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// =============================================================================
// CONSTRUCTOR
// =============================================================================

// New creates a new Converter instance.
//
// PARAMETERS:
//   - pdfPath: The path to the input PDF.
//   - mainConfig: The main application configuration.
//   - logger: Where progress is logged. Nil discards logs.
//
// RETURNS:
//   - A new Converter instance.
func New(pdfPath string, mainConfig *config.MainConfig, logger Logger) *Converter {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Converter{
		pdfPath:    pdfPath,
		mainConfig: mainConfig,
		exportCSV:  mainConfig.ExportCSV,
		readPages:  readPDF,
		logger:     logger,
	}
}

// SetOutputPath writes the workbook to path instead of a generated name.
func (c *Converter) SetOutputPath(path string) {
	c.outputPath = path
}

// SetExportCSV overrides the export_csv setting.
func (c *Converter) SetExportCSV(enabled bool) {
	c.exportCSV = enabled
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the conversion pipeline for the file.
//
// RETURNS:
//   - A Result struct containing the outcome of the processing.
func (c *Converter) Run() (result Result) {
	startTime := time.Now()
	result = Result{FilePath: c.pdfPath}
	defer func() { result.Stats.ProcessingTime = time.Since(startTime) }()

	c.logger.Info("Processing file: %s", c.pdfPath)

	// =========================================================================
	// STEP 1: READ PDF
	// =========================================================================

	pages, err := c.readPages(c.pdfPath)
	if err != nil {
		result.Error = fmt.Errorf("%w: %w", ErrDocument, err)
		c.logger.Error("Failed to read %s: %v", c.pdfPath, err)
		return result
	}

	c.logger.Debug("Read %d pages", len(pages))

	// =========================================================================
	// STEP 2-4: EXTRACT, AGGREGATE, RENDER
	// =========================================================================

	out, err := ConvertPages(pages, Options{Report: c.mainConfig.ReportOptions()})
	if err != nil {
		result.Error = err
		return result
	}

	result.Stats = statsFrom(out)
	c.logger.Debug("Extracted %d line items for %d legajos, %d contributions, %d discarded concepts",
		result.Stats.LineItems, result.Stats.Records, result.Stats.Contributions, result.Stats.DiscardedConcepts)
	if result.Stats.LineItems == 0 && result.Stats.Contributions == 0 {
		c.logger.Warn("No payroll lines recognized in %s", c.pdfPath)
	}

	// =========================================================================
	// STEP 5: WRITE OUTPUT FILES
	// =========================================================================

	outputPath, err := c.writeOutput(out.Workbook)
	if err != nil {
		result.Error = fmt.Errorf("failed to write output: %w", err)
		return result
	}

	result.OutputFile = outputPath
	c.logger.Info("Wrote output to: %s", outputPath)

	if c.exportCSV {
		csvPath, err := c.writeCSV(outputPath, out.Report)
		if err != nil {
			result.Error = fmt.Errorf("failed to write CSV: %w", err)
			return result
		}
		result.CSVFile = csvPath
		c.logger.Info("Wrote CSV detail to: %s", csvPath)
	}

	// =========================================================================
	// STEP 6: ARCHIVE INPUT
	// =========================================================================

	if c.mainConfig.ArchiveInputs {
		fm := utils.NewFileManager(c.mainConfig.InputDir, c.mainConfig.OutputDir, c.mainConfig.InputArchiveDir)
		fm.UseTimestampSubdirs = c.mainConfig.ArchiveTimestampSubdirs
		archivePath, err := fm.ArchiveInputFile(c.pdfPath)
		if err != nil {
			// The workbook is already written; archival is best effort.
			c.logger.Warn("Failed to archive input: %v", err)
		} else {
			result.ArchivePath = archivePath
		}
	}

	result.Success = true
	return result
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// readPDF opens a PDF file and returns its page texts.
func readPDF(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pages, err := pdftext.ReadPages(f, info.Size())
	if err != nil {
		return nil, err
	}
	return pdftext.Texts(pages), nil
}

// writeOutput writes the workbook to the configured or generated path.
func (c *Converter) writeOutput(workbook []byte) (string, error) {
	outputPath := c.outputPath
	if outputPath == "" {
		fileName := utils.GenerateOutputFileName(c.mainConfig.OutputNameFormat, c.pdfPath)
		outputPath = filepath.Join(c.mainConfig.OutputDir, fileName)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(outputPath, workbook, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return outputPath, nil
}

// writeCSV writes the detail list next to the workbook.
func (c *Converter) writeCSV(outputPath string, report *aggregate.Report) (string, error) {
	csvPath := utils.WithExtension(outputPath, ".csv")

	f, err := os.Create(csvPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if err := csvexport.WriteDetail(f, report.Items); err != nil {
		return "", err
	}
	return csvPath, nil
}
