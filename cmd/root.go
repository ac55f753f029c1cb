// =============================================================================
// Liquidacion XLSX - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every subcommand is
// attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (liquidacion)
//   ├── convertCmd (liquidacion convert)
//   ├── processCmd (liquidacion process)
//   └── versionCmd (liquidacion version)
//
// CONFIGURATION:
//   Before any subcommand runs, the root command:
//   1. Loads a .env file from the working directory, if present
//   2. Resolves the config path (--config, then LIQUIDACION_CONFIG, then
//      config.yaml) and loads it; a missing file means built-in defaults
//   3. Sets up logging from log_level, log_file and --verbose
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/planilla-condensada/liquidacion-xlsx/internal/config"
	"github.com/planilla-condensada/liquidacion-xlsx/internal/converter"
	"github.com/planilla-condensada/liquidacion-xlsx/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose enables debug logging and full error details.
var verbose bool

// appConfig and logger are set up by the root PersistentPreRunE.
var (
	appConfig *config.MainConfig
	logger    *logging.Logger
	logCloser io.Closer
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "liquidacion",
	Short: "Liquidacion XLSX - Convert condensed payroll PDFs into XLSX reports",
	Long: `Liquidacion XLSX reads the text layer of a condensed payroll summary PDF,
extracts every employee concept line and employer contribution, and writes a
workbook with:

  - Informe: legajo x concept matrix
  - Totales por Legajo: remunerative, non-remunerative, deductions and net pay
  - Detalle Empleados: one row per extracted line item
  - Aportes Patronales: employer contributions with a grand total

Example Usage:
  liquidacion convert --file enero.pdf          # Convert one document
  liquidacion process                           # Convert every PDF in input_dir
  liquidacion process --config ./my.yaml        # Use a custom configuration file`,

	SilenceErrors: true,
	SilenceUsage:  true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == versionCmd.Name() {
			return nil
		}
		return initApp(cmd)
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the CLI. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", errorMessage(err, verbose))
		os.Exit(1)
	}
}

// errorMessage hides the cause of document errors unless details are asked for.
func errorMessage(err error, details bool) string {
	if errors.Is(err, converter.ErrDocument) && !details {
		return converter.UserMessage + " (use --verbose for details)"
	}
	return err.Error()
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		config.DefaultConfigPath,
		"Path to the main configuration file (env "+config.EnvConfigPath+")",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging and show error details",
	)
}

// initApp loads the environment, the configuration and the logger.
func initApp(cmd *cobra.Command) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	path := resolveConfigPath(cmd.Flags().Changed("config"), cfgFile, os.Getenv(config.EnvConfigPath))
	cfg, found, err := config.LoadOrDefault(path)
	if err != nil {
		return fmt.Errorf("failed to load main config: %w", err)
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	log, closer, err := logging.New(logging.Options{Level: level, File: cfg.LogFile})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	if found {
		log.Debug("Loaded configuration from %s", path)
	} else {
		log.Debug("No configuration at %s, using defaults", path)
	}

	appConfig, logger, logCloser = cfg, log, closer
	return nil
}

// resolveConfigPath applies the precedence flag > environment > default.
func resolveConfigPath(flagSet bool, flagValue, envValue string) string {
	if flagSet || envValue == "" {
		return flagValue
	}
	return envValue
}
