// Package root contains the root command for the application
package root

import (
	"fmt"
	"io"

	"fjacquet/spendcat/internal/config"
	"fjacquet/spendcat/internal/container"
	"fjacquet/spendcat/internal/fileutils"
	"fjacquet/spendcat/internal/logging"

	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Input  string
	Output string
	Format string
}

// ConfigFlags override values loaded from config files and the environment.
type ConfigFlags struct {
	LogLevel       string
	LogFormat      string
	CategoriesFile string
	ModelPath      string
	CSVDelimiter   string
}

var (
	// Log is the shared logger instance for commands
	Log = logging.Default()

	// AppContainer holds the wired application for the running command.
	AppContainer *container.Container

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "spendcat",
		Short: "A CLI tool to categorize spending transactions.",
		Long: `spendcat assigns spending categories to financial transactions.
It trains a text classifier on labeled examples, falls back to a keyword table
when no model is available, and summarizes spending per category.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to spendcat!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRunE: initialize,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if AppContainer == nil {
				return
			}
			if err := AppContainer.Close(); err != nil {
				Log.WithError(err).Warn("Failed to close application")
			}
			AppContainer = nil
		},
	}

	// SharedFlags are accessible to all commands
	SharedFlags = CommonFlags{}

	// Overrides are the configuration flags of the root command
	Overrides = ConfigFlags{}
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Input, "input", "i", "", "Input file (CSV or JSON)")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output file (default: stdout)")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Format, "format", "f", "text", "Output format: text, json or csv")

	Cmd.PersistentFlags().StringVar(&Overrides.LogLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	Cmd.PersistentFlags().StringVar(&Overrides.LogFormat, "log-format", "", "Log format (text, json)")
	Cmd.PersistentFlags().StringVar(&Overrides.CategoriesFile, "categories", "", "Categories YAML file")
	Cmd.PersistentFlags().StringVar(&Overrides.ModelPath, "model-path", "", "Model database file")
	Cmd.PersistentFlags().StringVar(&Overrides.CSVDelimiter, "csv-delimiter", "", "CSV delimiter character")
}

func initialize(cmd *cobra.Command, args []string) error {
	if _, err := config.LoadEnv(); err != nil {
		return fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg, err := config.InitializeConfig()
	if err != nil {
		return err
	}
	if err := ApplyOverrides(cfg, Overrides); err != nil {
		return err
	}

	c, err := container.NewContainer(cfg)
	if err != nil {
		return err
	}
	AppContainer = c
	Log = c.GetLogger()
	logging.SetDefault(Log)
	return nil
}

// ApplyOverrides copies non-empty flag values onto cfg.
func ApplyOverrides(cfg *config.Config, flags ConfigFlags) error {
	if flags.LogLevel != "" {
		cfg.Log.Level = flags.LogLevel
	}
	if flags.LogFormat != "" {
		cfg.Log.Format = flags.LogFormat
	}
	if flags.CategoriesFile != "" {
		cfg.Categories.File = flags.CategoriesFile
	}
	if flags.ModelPath != "" {
		cfg.Model.Path = flags.ModelPath
	}
	if flags.CSVDelimiter != "" {
		if err := config.ValidateDelimiter(flags.CSVDelimiter); err != nil {
			return err
		}
		cfg.CSV.Delimiter = flags.CSVDelimiter
	}
	return nil
}

// GetContainer returns the application container, failing when the root
// command has not initialized it.
func GetContainer() (*container.Container, error) {
	if AppContainer == nil {
		return nil, fmt.Errorf("application not initialized")
	}
	return AppContainer, nil
}

// OpenOutput returns the writer for path, creating parent directories, or
// fallback when path is empty.
// The returned close function must always be called.
func OpenOutput(path string, fallback io.Writer) (io.Writer, func() error, error) {
	if path == "" {
		return fallback, func() error { return nil }, nil
	}
	f, err := fileutils.CreateFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating output file: %w", err)
	}
	return f, f.Close, nil
}
