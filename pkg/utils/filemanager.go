// =============================================================================
// Liquidacion XLSX - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for batch processing:
//   - PDF discovery in the input directory
//   - Archival of converted inputs
//   - Output file naming
//   - Error and summary logs
//
// ARCHIVAL STRATEGY:
//   - Input files are moved to input_archive after successful conversion,
//     only when archiving is enabled
//   - Failed files remain in their original location
//   - Error and summary logs are created in the output directory
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// InputExtension is the extension of the documents picked up by discovery.
const InputExtension = ".pdf"

// OutputExtension is forced on every generated workbook name.
const OutputExtension = ".xlsx"

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for batch processing.
type FileManager struct {
	// InputDir is scanned for PDF documents.
	InputDir string

	// OutputDir receives workbooks and logs.
	OutputDir string

	// InputArchiveDir receives converted PDFs.
	InputArchiveDir string

	// UseTimestampSubdirs creates date-based subdirectories in the archive.
	// Example: input_archive/2024/01/15/file.pdf
	UseTimestampSubdirs bool
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(inputDir, outputDir, inputArchiveDir string) *FileManager {
	return &FileManager{
		InputDir:        inputDir,
		OutputDir:       outputDir,
		InputArchiveDir: inputArchiveDir,
	}
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles lists the PDF documents of the input directory.
//
// RETURNS:
//   - The file paths, sorted by name. The extension match ignores case.
//   - An error if the directory cannot be read.
func (fm *FileManager) DiscoverInputFiles() ([]string, error) {
	entries, err := os.ReadDir(fm.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	var result []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), InputExtension) {
			result = append(result, filepath.Join(fm.InputDir, entry.Name()))
		}
	}

	return result, nil
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveInputFile moves an input file to the archive directory.
//
// PARAMETERS:
//   - filePath: The path to the file to archive.
//
// RETURNS:
//   - The path to the archived file.
//   - An error if archival fails.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	archivePath := fm.getArchivePath(filePath)

	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	if err := os.Rename(filePath, archivePath); err != nil {
		// Rename fails across devices; fall back to copy and delete.
		if err := copyFile(filePath, archivePath); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}

	return archivePath, nil
}

func (fm *FileManager) getArchivePath(filePath string) string {
	fileName := filepath.Base(filePath)

	if fm.UseTimestampSubdirs {
		now := time.Now()
		return filepath.Join(
			fm.InputArchiveDir,
			fmt.Sprintf("%d", now.Year()),
			fmt.Sprintf("%02d", now.Month()),
			fmt.Sprintf("%02d", now.Day()),
			fileName,
		)
	}

	return filepath.Join(fm.InputArchiveDir, fileName)
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// BaseName returns the file name of path without directory and extension.
func BaseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// GenerateOutputFileName builds a workbook file name.
//
// PARAMETERS:
//   - format: The format string for the file name.
//     Placeholders:
//     {name}      - Input file name without extension
//     {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//     {uuid}      - A random UUID
//   - inputPath: The converted document.
//
// RETURNS:
//   - The generated file name, always ending in .xlsx.
//
// EXAMPLE:
//
//	format: "Liquidacion_{name}.xlsx"
//	inputPath: "input/enero.pdf"
//	output: "Liquidacion_enero.xlsx"
func GenerateOutputFileName(format, inputPath string) string {
	replacer := strings.NewReplacer(
		"{name}", BaseName(inputPath),
		"{timestamp}", time.Now().Format("20060102_150405"),
		"{uuid}", uuid.New().String(),
	)
	result := replacer.Replace(format)

	if !strings.EqualFold(filepath.Ext(result), OutputExtension) {
		result += OutputExtension
	}

	return result
}

// WithExtension swaps the extension of path.
func WithExtension(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// =============================================================================
// ERROR LOG GENERATION
// =============================================================================

// ErrorLogEntry represents a single failed document.
type ErrorLogEntry struct {
	Timestamp    time.Time
	FileName     string
	ErrorType    string
	ErrorMessage string
}

// WriteErrorLog writes error entries to a log file.
//
// PARAMETERS:
//   - entries: The error entries to write.
//   - outputDir: The directory to write the log file.
//
// RETURNS:
//   - The path to the error log file, empty when there are no entries.
//   - An error if writing fails.
func WriteErrorLog(entries []ErrorLogEntry, outputDir string) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	logPath := filepath.Join(outputDir, fmt.Sprintf("error_log_%s.txt", time.Now().Format("20060102_150405")))

	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "Liquidacion XLSX - Error Log\n"+
		"Generated: %s\n"+
		"Total Errors: %d\n"+
		"================================================================================\n\n",
		time.Now().Format("2006-01-02 15:04:05"),
		len(entries))

	for i, entry := range entries {
		fmt.Fprintf(writer, "Error #%d\n"+
			"  Timestamp:      %s\n"+
			"  File:           %s\n"+
			"  Error Type:     %s\n"+
			"  Message:        %s\n\n",
			i+1,
			entry.Timestamp.Format("2006-01-02 15:04:05"),
			entry.FileName,
			entry.ErrorType,
			entry.ErrorMessage)
	}

	writer.WriteString("================================================================================\n" +
		"End of Error Log\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush error log: %w", err)
	}

	return logPath, nil
}

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// ProcessingSummary contains summary information about a processing run.
type ProcessingSummary struct {
	StartTime          time.Time
	EndTime            time.Time
	TotalFiles         int
	SuccessfulFiles    int
	FailedFiles        int
	TotalPages         int
	TotalLineItems     int
	TotalContributions int
	TotalRecords       int
	ProcessedFiles     []ProcessedFileInfo
	FailedFilesList    []FailedFileInfo
}

// ProcessedFileInfo contains information about a converted document.
type ProcessedFileInfo struct {
	InputFile     string
	OutputFile    string
	ArchivePath   string
	Pages         int
	LineItems     int
	Contributions int
	Records       int
	ProcessTime   time.Duration
}

// FailedFileInfo contains information about a failed document.
type FailedFileInfo struct {
	InputFile    string
	ErrorMessage string
	ErrorType    string
}

// WriteSummaryLog writes a processing summary to a log file.
//
// PARAMETERS:
//   - summary: The processing summary.
//   - outputDir: The directory to write the summary file.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func WriteSummaryLog(summary ProcessingSummary, outputDir string) (string, error) {
	summaryPath := filepath.Join(outputDir, fmt.Sprintf("processing_summary_%s.txt", time.Now().Format("20060102_150405")))

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	writeSummary(writer, summary)

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}

	return summaryPath, nil
}

func writeSummary(w io.Writer, summary ProcessingSummary) {
	fmt.Fprintf(w, "Liquidacion XLSX - Processing Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n\n"+
		"Statistics:\n"+
		"  Total Files:         %d\n"+
		"  Successful:          %d\n"+
		"  Failed:              %d\n"+
		"  Total Pages:         %d\n"+
		"  Total Line Items:    %d\n"+
		"  Total Contributions: %d\n"+
		"  Total Legajos:       %d\n\n",
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Sub(summary.StartTime).String(),
		summary.TotalFiles,
		summary.SuccessfulFiles,
		summary.FailedFiles,
		summary.TotalPages,
		summary.TotalLineItems,
		summary.TotalContributions,
		summary.TotalRecords)

	if len(summary.ProcessedFiles) > 0 {
		fmt.Fprint(w, "Successful Files:\n")
		fmt.Fprint(w, "--------------------------------------------------------------------------------\n")
		for _, pf := range summary.ProcessedFiles {
			fmt.Fprintf(w, "  Input:         %s\n", pf.InputFile)
			fmt.Fprintf(w, "  Output:        %s\n", pf.OutputFile)
			if pf.ArchivePath != "" {
				fmt.Fprintf(w, "  Archived:      %s\n", pf.ArchivePath)
			}
			fmt.Fprintf(w, "  Pages:         %d\n", pf.Pages)
			fmt.Fprintf(w, "  Line Items:    %d\n", pf.LineItems)
			fmt.Fprintf(w, "  Contributions: %d\n", pf.Contributions)
			fmt.Fprintf(w, "  Legajos:       %d\n", pf.Records)
			fmt.Fprintf(w, "  Process Time:  %s\n\n", pf.ProcessTime.String())
		}
	}

	if len(summary.FailedFilesList) > 0 {
		fmt.Fprint(w, "Failed Files:\n")
		fmt.Fprint(w, "--------------------------------------------------------------------------------\n")
		for _, ff := range summary.FailedFilesList {
			fmt.Fprintf(w, "  File:  %s\n", ff.InputFile)
			fmt.Fprintf(w, "  Type:  %s\n", ff.ErrorType)
			fmt.Fprintf(w, "  Error: %s\n\n", ff.ErrorMessage)
		}
	}

	fmt.Fprint(w, "================================================================================\n"+
		"End of Summary\n")
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}

	return destFile.Sync()
}
