// =============================================================================
// Liquidacion XLSX - Configuration Module
// =============================================================================
//
// This module loads the main application configuration (config.yaml). Every
// setting has a default, so the tool also runs without a configuration file.
//
// EXAMPLE:
//
//	input_dir: ./input
//	output_dir: ./output
//	output_name_format: "Liquidacion_{name}.xlsx"
//	max_concurrency: 4
//	report:
//	  sheet_names:
//	    pivot: Informe
//	  column_margin: 2
//	archive_inputs: true
//	archive_timestamp_subdirs: true
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/planilla-condensada/liquidacion-xlsx/internal/logging"
	"github.com/planilla-condensada/liquidacion-xlsx/internal/xlsxreport"
)

// EnvConfigPath names the environment variable holding the config file path.
const EnvConfigPath = "LIQUIDACION_CONFIG"

// DefaultConfigPath is used when neither the flag nor the environment sets one.
const DefaultConfigPath = "config.yaml"

// maxSheetNameLength is the longest sheet title a workbook accepts.
const maxSheetNameLength = 31

// invalidSheetChars cannot appear in a sheet title.
const invalidSheetChars = `:\/?*[]`

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned for *.pdf files by the process command.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir receives the generated workbooks and the run logs.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir receives processed PDFs when ArchiveInputs is set.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogFile, when set, receives JSON log lines.
	LogFile string `yaml:"log_file"`

	// LogLevel is one of "debug", "info", "warn", "error".
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputNameFormat defines the output file name.
	// Placeholders:
	//   {name}      - Input file name without extension
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {uuid}      - A random UUID
	//
	// Default: "Liquidacion_{name}.xlsx"
	OutputNameFormat string `yaml:"output_name_format"`

	// ExportCSV also writes the detail list as CSV next to the workbook.
	ExportCSV bool `yaml:"export_csv"`

	// Report controls the workbook layout.
	Report ReportConfig `yaml:"report"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the maximum number of documents converted at once.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	// ContinueOnError keeps processing the batch after a failed document.
	// Default: true
	ContinueOnError *bool `yaml:"continue_on_error"`

	// ArchiveInputs moves each successfully converted PDF to InputArchiveDir.
	ArchiveInputs bool `yaml:"archive_inputs"`

	// ArchiveTimestampSubdirs files archived PDFs under YYYY/MM/DD
	// subdirectories of InputArchiveDir.
	ArchiveTimestampSubdirs bool `yaml:"archive_timestamp_subdirs"`
}

// ReportConfig holds the workbook layout settings.
type ReportConfig struct {
	SheetNames xlsxreport.SheetNames `yaml:"sheet_names"`

	// ColumnMargin is added to the widest cell of each column. 0 is a valid
	// setting, so an absent key is nil.
	// Default: 2
	ColumnMargin *int `yaml:"column_margin"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns the configuration used when no file is present.
func Default() *MainConfig {
	config := &MainConfig{}
	applyMainConfigDefaults(config)
	return config
}

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file.
//
// RETURNS:
//   - A pointer to the MainConfig struct, with defaults applied.
//   - An error if the file cannot be read, parsed or validated. A missing
//     file yields an error matching fs.ErrNotExist.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config MainConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyMainConfigDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// LoadOrDefault behaves like LoadMainConfig but falls back to Default when
// the file does not exist. The boolean reports whether a file was read.
func LoadOrDefault(configPath string) (*MainConfig, bool, error) {
	config, err := LoadMainConfig(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return config, true, nil
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.OutputNameFormat == "" {
		config.OutputNameFormat = "Liquidacion_{name}.xlsx"
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 4
	}
	if config.ContinueOnError == nil {
		continueOnError := true
		config.ContinueOnError = &continueOnError
	}

	defaults := xlsxreport.DefaultOptions()
	names := &config.Report.SheetNames
	if names.Pivot == "" {
		names.Pivot = defaults.Sheets.Pivot
	}
	if names.Totals == "" {
		names.Totals = defaults.Sheets.Totals
	}
	if names.Detail == "" {
		names.Detail = defaults.Sheets.Detail
	}
	if names.Contributions == "" {
		names.Contributions = defaults.Sheets.Contributions
	}
	if names.Empty == "" {
		names.Empty = defaults.Sheets.Empty
	}
	if config.Report.ColumnMargin == nil {
		columnMargin := defaults.ColumnMargin
		config.Report.ColumnMargin = &columnMargin
	}
}

// Validate checks values that defaults cannot fix.
func (c *MainConfig) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be at least 1, got %d", c.MaxConcurrency)
	}
	if m := c.Report.ColumnMargin; m != nil && *m < 0 {
		return fmt.Errorf("report.column_margin must not be negative, got %d", *m)
	}

	names := c.Report.SheetNames
	seen := make(map[string]string)
	for _, entry := range []struct{ key, name string }{
		{"pivot", names.Pivot},
		{"totals", names.Totals},
		{"detail", names.Detail},
		{"contributions", names.Contributions},
		{"empty", names.Empty},
	} {
		if err := validateSheetName(entry.name); err != nil {
			return fmt.Errorf("report.sheet_names.%s: %w", entry.key, err)
		}
		folded := strings.ToLower(entry.name)
		if other, ok := seen[folded]; ok {
			return fmt.Errorf("report.sheet_names.%s duplicates %s (%q)", entry.key, other, entry.name)
		}
		seen[folded] = entry.key
	}
	return nil
}

func validateSheetName(name string) error {
	if name == "" {
		return errors.New("sheet name is empty")
	}
	if utf8.RuneCountInString(name) > maxSheetNameLength {
		return fmt.Errorf("sheet name %q is longer than %d characters", name, maxSheetNameLength)
	}
	if strings.ContainsAny(name, invalidSheetChars) {
		return fmt.Errorf("sheet name %q contains one of %s", name, invalidSheetChars)
	}
	return nil
}

// =============================================================================
// DERIVED SETTINGS
// =============================================================================

// ShouldContinueOnError reports the effective continue_on_error value.
func (c *MainConfig) ShouldContinueOnError() bool {
	return c.ContinueOnError == nil || *c.ContinueOnError
}

// ReportOptions converts the report section into renderer options.
func (c *MainConfig) ReportOptions() xlsxreport.Options {
	opts := xlsxreport.Options{
		Sheets:       c.Report.SheetNames,
		ColumnMargin: xlsxreport.DefaultOptions().ColumnMargin,
	}
	if c.Report.ColumnMargin != nil {
		opts.ColumnMargin = *c.Report.ColumnMargin
	}
	return opts
}

// EnsureDirectories creates the directories used by batch processing.
func (c *MainConfig) EnsureDirectories() error {
	dirs := []string{c.InputDir, c.OutputDir}
	if c.ArchiveInputs {
		dirs = append(dirs, c.InputArchiveDir)
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
