// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// LogConfig selects log verbosity and output format.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// CategoriesConfig locates the category/keyword/alias file.
type CategoriesConfig struct {
	File  string `mapstructure:"file" yaml:"file"`
	Other string `mapstructure:"other" yaml:"other"`
}

// ModelConfig holds the artifact location and training hyper-parameters.
type ModelConfig struct {
	// Path is the bolt database holding the active model. Empty keeps models in memory.
	Path         string  `mapstructure:"path" yaml:"path"`
	MaxFeatures  int     `mapstructure:"max_features" yaml:"max_features"`
	NgramMax     int     `mapstructure:"ngram_max" yaml:"ngram_max"`
	NEstimators  int     `mapstructure:"n_estimators" yaml:"n_estimators"`
	TestFraction float64 `mapstructure:"test_fraction" yaml:"test_fraction"`
	Seed         int64   `mapstructure:"seed" yaml:"seed"`
}

// TrainingConfig bounds training runs.
type TrainingConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// BatchConfig sizes the batch prediction worker pool.
type BatchConfig struct {
	Workers             int `mapstructure:"workers" yaml:"workers"`
	SequentialThreshold int `mapstructure:"sequential_threshold" yaml:"sequential_threshold"`
}

// CSVConfig controls CSV input parsing.
type CSVConfig struct {
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
}

// Config represents the complete application configuration
type Config struct {
	Log        LogConfig        `mapstructure:"log" yaml:"log"`
	Categories CategoriesConfig `mapstructure:"categories" yaml:"categories"`
	Model      ModelConfig      `mapstructure:"model" yaml:"model"`
	Training   TrainingConfig   `mapstructure:"training" yaml:"training"`
	Batch      BatchConfig      `mapstructure:"batch" yaml:"batch"`
	CSV        CSVConfig        `mapstructure:"csv" yaml:"csv"`
}

// TrainTimeout returns the training deadline, zero meaning none.
func (c *Config) TrainTimeout() time.Duration {
	return time.Duration(c.Training.TimeoutSeconds) * time.Second
}

// InitializeConfig initializes Viper configuration with hierarchical loading
func InitializeConfig() (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.spendcat")
	v.AddConfigPath(".spendcat")
	v.AddConfigPath(".")

	// 3. Environment variables
	v.SetEnvPrefix("SPENDCAT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 5. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("categories.file", "categories.yaml")
	v.SetDefault("categories.other", "Other")

	v.SetDefault("model.path", "spendcat.db")
	v.SetDefault("model.max_features", 5000)
	v.SetDefault("model.ngram_max", 2)
	v.SetDefault("model.n_estimators", 25)
	v.SetDefault("model.test_fraction", 0.2)
	v.SetDefault("model.seed", 42)

	v.SetDefault("training.timeout_seconds", 0)

	v.SetDefault("batch.workers", 0)
	v.SetDefault("batch.sequential_threshold", 100)

	v.SetDefault("csv.delimiter", ",")
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() *Config {
	v := viper.New()
	setDefaults(v)
	var config Config
	// Defaults always decode.
	_ = v.Unmarshal(&config)
	return &config
}

// ValidateDelimiter checks that d is exactly one character (rune).
func ValidateDelimiter(d string) error {
	if utf8.RuneCountInString(d) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %s", d)
	}
	return nil
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if err := ValidateDelimiter(config.CSV.Delimiter); err != nil {
		return err
	}

	if strings.TrimSpace(config.Categories.Other) == "" {
		return fmt.Errorf("categories.other must not be empty")
	}

	if config.Model.MaxFeatures < 1 {
		return fmt.Errorf("model.max_features must be positive, got: %d", config.Model.MaxFeatures)
	}

	if config.Model.NgramMax < 1 || config.Model.NgramMax > 3 {
		return fmt.Errorf("model.ngram_max must be between 1 and 3, got: %d", config.Model.NgramMax)
	}

	if config.Model.NEstimators < 1 || config.Model.NEstimators > 500 {
		return fmt.Errorf("model.n_estimators must be between 1 and 500, got: %d", config.Model.NEstimators)
	}

	if config.Model.TestFraction <= 0.0 || config.Model.TestFraction >= 1.0 {
		return fmt.Errorf("model.test_fraction must be between 0.0 and 1.0 (exclusive), got: %f", config.Model.TestFraction)
	}

	if config.Training.TimeoutSeconds < 0 {
		return fmt.Errorf("training.timeout_seconds must not be negative, got: %d", config.Training.TimeoutSeconds)
	}

	if config.Batch.Workers < 0 {
		return fmt.Errorf("batch.workers must not be negative, got: %d", config.Batch.Workers)
	}

	if config.Batch.SequentialThreshold < 1 {
		return fmt.Errorf("batch.sequential_threshold must be positive, got: %d", config.Batch.SequentialThreshold)
	}

	return nil
}

// ConfigureLoggingFromConfig configures logging based on the Config struct
func ConfigureLoggingFromConfig(config *Config) *logrus.Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(strings.ToLower(config.Log.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", config.Log.Level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if strings.ToLower(config.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
