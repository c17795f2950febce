// Package container provides dependency injection for the spendcat application.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"fmt"

	"fjacquet/spendcat/internal/categorizer"
	"fjacquet/spendcat/internal/common"
	"fjacquet/spendcat/internal/config"
	"fjacquet/spendcat/internal/logging"
	"fjacquet/spendcat/internal/models"
	"fjacquet/spendcat/internal/modelstore"
	"fjacquet/spendcat/internal/report"
	"fjacquet/spendcat/internal/store"
	"fjacquet/spendcat/internal/trainer"
)

// ArtifactStore is a closable model artifact store.
type ArtifactStore interface {
	trainer.ArtifactStore
	Close() error
}

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation - all fields are private and can only
// be accessed through getter methods.
type Container struct {
	logger      logging.Logger
	config      *config.Config
	store       *store.CategoryStore
	taxonomy    *models.Taxonomy
	artifacts   ArtifactStore
	classifier  *trainer.Classifier
	categorizer *categorizer.Categorizer
	reader      *common.Reader
	reports     *report.Generator
}

// NewContainer creates and wires all application dependencies, logging
// through a logrus adapter configured from cfg.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	logger := logging.NewLogrusAdapterFromLogger(config.ConfigureLoggingFromConfig(cfg))
	return NewContainerWithLogger(cfg, logger)
}

// NewContainerWithLogger is NewContainer with an explicit logger.
func NewContainerWithLogger(cfg *config.Config, logger logging.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	logger = logging.OrDefault(logger)

	categoryStore := store.NewCategoryStore(cfg.Categories.File, logger)
	categoriesCfg, err := categoryStore.LoadCategoriesConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	if categoriesCfg.Other == "" {
		categoriesCfg.Other = cfg.Categories.Other
	}
	taxonomy, err := store.BuildTaxonomy(categoriesCfg)
	if err != nil {
		return nil, fmt.Errorf("invalid category configuration: %w", err)
	}

	var artifacts ArtifactStore
	if cfg.Model.Path == "" {
		artifacts = modelstore.NewMemoryStore()
		logger.Info("No model path configured, trained models are kept in memory only")
	} else {
		boltStore, err := modelstore.Open(cfg.Model.Path, logger)
		if err != nil {
			return nil, err
		}
		artifacts = boltStore
	}

	classifier := trainer.New(taxonomy, artifacts, logger, trainer.Options{
		MaxFeatures:  cfg.Model.MaxFeatures,
		NgramMax:     cfg.Model.NgramMax,
		NEstimators:  cfg.Model.NEstimators,
		TestFraction: cfg.Model.TestFraction,
		Seed:         cfg.Model.Seed,
	})

	keyword := categorizer.NewKeywordStrategy(categoryStore, taxonomy.Other(), logger)
	cat := categorizer.NewCategorizer(classifier, keyword, taxonomy, logger, categorizer.Options{
		TrainTimeout:        cfg.TrainTimeout(),
		Workers:             cfg.Batch.Workers,
		SequentialThreshold: cfg.Batch.SequentialThreshold,
	})

	logger.Debug("Container initialized successfully",
		logging.Field{Key: "categories", Value: len(taxonomy.Categories())},
		logging.Field{Key: logging.FieldModelPath, Value: cfg.Model.Path})

	return &Container{
		logger:      logger,
		config:      cfg,
		store:       categoryStore,
		taxonomy:    taxonomy,
		artifacts:   artifacts,
		classifier:  classifier,
		categorizer: cat,
		reader:      common.NewReader([]rune(cfg.CSV.Delimiter)[0], logger),
		reports:     report.NewGenerator(logger),
	}, nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetCategorizer returns the categorization service.
func (c *Container) GetCategorizer() *categorizer.Categorizer {
	return c.categorizer
}

// GetStore returns the container's category store instance.
func (c *Container) GetStore() *store.CategoryStore {
	return c.store
}

// GetTaxonomy returns the configured category set.
func (c *Container) GetTaxonomy() *models.Taxonomy {
	return c.taxonomy
}

// GetReader returns the input file reader.
func (c *Container) GetReader() *common.Reader {
	return c.reader
}

// GetReportGenerator returns the output renderer.
func (c *Container) GetReportGenerator() *report.Generator {
	return c.reports
}

// Close releases the model store.
func (c *Container) Close() error {
	if err := c.artifacts.Close(); err != nil {
		return fmt.Errorf("failed to close model store: %w", err)
	}
	c.logger.Debug("Container closed")
	return nil
}
