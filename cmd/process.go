// =============================================================================
// Liquidacion XLSX - Process Command
// =============================================================================
//
// This file defines the 'process' command, which converts every PDF of the
// input directory.
//
// COMMAND USAGE:
//   liquidacion process [flags]
//
// FLAGS:
//   --dry-run : List the files that would be processed without converting
//   --file    : Process only this file instead of scanning input_dir
//
// PROCESSING PIPELINE:
//   1. Create the working directories
//   2. Discover *.pdf files in the input directory
//   3. Convert each file, at most max_concurrency at a time
//   4. Write the summary log (and the error log when something failed)
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/planilla-condensada/liquidacion-xlsx/internal/config"
	"github.com/planilla-condensada/liquidacion-xlsx/internal/converter"
	"github.com/planilla-condensada/liquidacion-xlsx/internal/logging"
	"github.com/planilla-condensada/liquidacion-xlsx/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun lists the files without converting them.
var dryRun bool

// processFile restricts the run to one file.
var processFile string

// errSkipped marks files not converted after an earlier failure with
// continue_on_error disabled.
var errSkipped = errors.New("skipped after an earlier failure")

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Convert every payroll PDF of the input directory",
	Long: `The process command scans the input directory for PDF files and converts
each one into an XLSX report in the output directory.

Files are converted concurrently, bounded by max_concurrency. A document that
cannot be read does not stop the others unless continue_on_error is false.

On successful processing:
  - The workbook is placed in the output directory
  - The PDF is moved to the input archive when archive_inputs is set
  - A summary report is generated

On error:
  - An error log is created in the output directory
  - The PDF remains in the input directory`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(appConfig, logger)
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"List the files that would be processed without converting them",
	)

	processCmd.Flags().StringVar(
		&processFile,
		"file",
		"",
		"Path to a specific file to process instead of scanning input_dir",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runProcess converts the discovered files and writes the run logs.
func runProcess(cfg *config.MainConfig, log *logging.Logger) error {
	startTime := time.Now()

	fmt.Println("=== Liquidacion XLSX ===")

	// =========================================================================
	// STEP 1: PREPARE DIRECTORIES
	// =========================================================================

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	// =========================================================================
	// STEP 2: DISCOVER INPUT FILES
	// =========================================================================

	inputFiles := []string{processFile}
	if processFile == "" {
		fm := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir)
		files, err := fm.DiscoverInputFiles()
		if err != nil {
			return fmt.Errorf("failed to discover input files: %w", err)
		}
		inputFiles = files
	}

	if len(inputFiles) == 0 {
		fmt.Println("No PDF files found in the input directory.")
		return nil
	}

	fmt.Printf("Found %d file(s) to process\n", len(inputFiles))

	if dryRun {
		for _, file := range inputFiles {
			fmt.Printf("  - %s -> %s\n", file, utils.GenerateOutputFileName(cfg.OutputNameFormat, file))
		}
		return nil
	}

	// =========================================================================
	// STEP 3: PROCESS FILES CONCURRENTLY
	// =========================================================================

	results := convertAll(inputFiles, cfg, log)

	// =========================================================================
	// STEP 4: COLLECT RESULTS AND WRITE LOGS
	// =========================================================================

	summary := utils.ProcessingSummary{StartTime: startTime, TotalFiles: len(inputFiles)}
	var errorEntries []utils.ErrorLogEntry

	for _, result := range results {
		name := filepath.Base(result.FilePath)
		if result.Success {
			summary.SuccessfulFiles++
			summary.TotalPages += result.Stats.Pages
			summary.TotalLineItems += result.Stats.LineItems
			summary.TotalContributions += result.Stats.Contributions
			summary.TotalRecords += result.Stats.Records
			summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
				InputFile:     result.FilePath,
				OutputFile:    result.OutputFile,
				ArchivePath:   result.ArchivePath,
				Pages:         result.Stats.Pages,
				LineItems:     result.Stats.LineItems,
				Contributions: result.Stats.Contributions,
				Records:       result.Stats.Records,
				ProcessTime:   result.Stats.ProcessingTime,
			})
			fmt.Printf("  ✓ %s -> %s\n", name, result.OutputFile)
			continue
		}

		summary.FailedFiles++
		errorType := converter.ErrorType(result.Error)
		summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
			InputFile:    result.FilePath,
			ErrorMessage: result.Error.Error(),
			ErrorType:    errorType,
		})
		errorEntries = append(errorEntries, utils.ErrorLogEntry{
			Timestamp:    time.Now(),
			FileName:     result.FilePath,
			ErrorType:    errorType,
			ErrorMessage: result.Error.Error(),
		})
		fmt.Printf("  ✗ %s: %s\n", name, errorMessage(result.Error, verbose))
	}

	summary.EndTime = time.Now()

	summaryPath, err := utils.WriteSummaryLog(summary, cfg.OutputDir)
	if err != nil {
		log.Warn("Failed to write summary log: %v", err)
	}
	errorLogPath, err := utils.WriteErrorLog(errorEntries, cfg.OutputDir)
	if err != nil {
		log.Warn("Failed to write error log: %v", err)
	}

	// =========================================================================
	// STEP 5: PRINT SUMMARY
	// =========================================================================

	fmt.Println("\n=== Processing Complete ===")
	fmt.Printf("Total files:     %d\n", summary.TotalFiles)
	fmt.Printf("Successful:      %d\n", summary.SuccessfulFiles)
	fmt.Printf("Errors:          %d\n", summary.FailedFiles)
	fmt.Printf("Time elapsed:    %s\n", summary.EndTime.Sub(startTime))
	if summaryPath != "" {
		fmt.Printf("Summary:         %s\n", summaryPath)
	}
	if errorLogPath != "" {
		fmt.Printf("Error log:       %s\n", errorLogPath)
	}

	if summary.FailedFiles > 0 && !cfg.ShouldContinueOnError() {
		return fmt.Errorf("%d file(s) failed", summary.FailedFiles)
	}
	return nil
}

// convertAll runs one converter per file, at most cfg.MaxConcurrency at a
// time. Results keep the order of files.
func convertAll(files []string, cfg *config.MainConfig, log *logging.Logger) []converter.Result {
	var wg sync.WaitGroup
	var failed atomic.Bool

	results := make([]converter.Result, len(files))
	sem := make(chan struct{}, cfg.MaxConcurrency)

	for i, file := range files {
		wg.Add(1)

		go func(i int, path string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			if failed.Load() && !cfg.ShouldContinueOnError() {
				results[i] = converter.Result{FilePath: path, Error: errSkipped}
				return
			}

			result := converter.New(path, cfg, log.With("file", filepath.Base(path))).Run()
			if !result.Success {
				failed.Store(true)
			}
			results[i] = result
		}(i, file)
	}

	wg.Wait()
	return results
}
