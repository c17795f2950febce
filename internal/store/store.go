// Package store loads and saves the category configuration: the category set,
// the ordered keyword table and the label aliases.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/spendcat/internal/fileutils"
	"fjacquet/spendcat/internal/logging"
	"fjacquet/spendcat/internal/models"

	"gopkg.in/yaml.v3"
)

// DefaultCategoriesFile is used when no file name is configured.
const DefaultCategoriesFile = "categories.yaml"

// CategoryStore manages loading and saving of the categories YAML file.
type CategoryStore struct {
	CategoriesFile string
	logger         logging.Logger
}

// NewCategoryStore creates a store for the given categories file.
func NewCategoryStore(categoriesFile string, logger logging.Logger) *CategoryStore {
	return &CategoryStore{
		CategoriesFile: categoriesFile,
		logger:         logging.OrDefault(logger),
	}
}

// FindConfigFile looks for a configuration file in standard locations
func (s *CategoryStore) FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
		filepath.Join("database", filename),
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		configPath := filepath.Join(homeDir, ".config", "spendcat", filename)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}
	}

	return "", os.ErrNotExist
}

func (s *CategoryStore) fileName() string {
	if s.CategoriesFile == "" {
		return DefaultCategoriesFile
	}
	return s.CategoriesFile
}

// LoadCategoriesConfig loads the categories file. A missing file is not an
// error: the built-in keyword table and aliases are returned instead.
func (s *CategoryStore) LoadCategoriesConfig() (models.CategoriesConfig, error) {
	filename := s.fileName()

	filePath, err := s.FindConfigFile(filename)
	if err != nil {
		s.logger.Debug("Categories file not found, using built-in table",
			logging.Field{Key: "file", Value: filename})
		return DefaultCategoriesConfig(), nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return models.CategoriesConfig{}, fmt.Errorf("error reading categories file: %w", err)
	}

	cfg, err := parseCategories(data)
	if err != nil {
		return models.CategoriesConfig{}, fmt.Errorf("error parsing categories file %s: %w", filePath, err)
	}

	s.logger.Debug("Loaded categories",
		logging.Field{Key: "file", Value: filePath},
		logging.Field{Key: logging.FieldCount, Value: len(cfg.Categories)})
	return cfg, nil
}

// LoadCategories returns only the ordered keyword table.
func (s *CategoryStore) LoadCategories() ([]models.CategoryConfig, error) {
	cfg, err := s.LoadCategoriesConfig()
	if err != nil {
		return nil, err
	}
	return cfg.Categories, nil
}

// parseCategories accepts the "categories:" document or, for hand-written
// files, a bare list of {name, keywords}.
func parseCategories(data []byte) (models.CategoriesConfig, error) {
	var cfg models.CategoriesConfig
	if err := yaml.Unmarshal(data, &cfg); err == nil && len(cfg.Categories) > 0 {
		normalizeKeywords(cfg.Categories)
		return cfg, nil
	}

	var list []models.CategoryConfig
	if err := yaml.Unmarshal(data, &list); err != nil {
		return models.CategoriesConfig{}, err
	}
	if len(list) == 0 {
		return models.CategoriesConfig{}, fmt.Errorf("no categories defined")
	}
	normalizeKeywords(list)
	return models.CategoriesConfig{Categories: list}, nil
}

func normalizeKeywords(rows []models.CategoryConfig) {
	for i := range rows {
		rows[i].Name = strings.TrimSpace(rows[i].Name)
		kept := rows[i].Keywords[:0]
		for _, k := range rows[i].Keywords {
			if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
				kept = append(kept, k)
			}
		}
		rows[i].Keywords = kept
	}
}

// SaveCategoriesConfig writes cfg to the categories file, creating parent
// directories as needed.
func (s *CategoryStore) SaveCategoriesConfig(cfg models.CategoriesConfig) error {
	filePath := s.fileName()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling categories: %w", err)
	}
	if err := fileutils.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("error writing categories: %w", err)
	}

	s.logger.Debug("Saved categories",
		logging.Field{Key: "file", Value: filePath},
		logging.Field{Key: logging.FieldCount, Value: len(cfg.Categories)})
	return nil
}

// DefaultCategoriesConfig is the built-in configuration.
func DefaultCategoriesConfig() models.CategoriesConfig {
	return models.CategoriesConfig{
		Categories: models.DefaultKeywordTable(),
		Aliases:    models.DefaultAliases(),
		Other:      string(models.CategoryOther),
	}
}

// BuildTaxonomy derives the category set from a configuration: table order,
// then the catch-all. Built-in aliases whose target exists are kept unless
// overridden by the file.
func BuildTaxonomy(cfg models.CategoriesConfig) (*models.Taxonomy, error) {
	names := make([]string, 0, len(cfg.Categories)+1)
	seen := make(map[string]bool)
	for _, c := range cfg.Categories {
		key := strings.ToLower(c.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, c.Name)
	}

	other := cfg.Other
	if other == "" {
		other = string(models.CategoryOther)
	}
	seen[strings.ToLower(other)] = true

	aliases := make(map[string]string)
	for from, to := range models.DefaultAliases() {
		if seen[strings.ToLower(to)] {
			aliases[from] = to
		}
	}
	for from, to := range cfg.Aliases {
		aliases[from] = to
	}

	return models.NewTaxonomy(names, other, aliases)
}
