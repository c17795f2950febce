package store

import (
	"fjacquet/spendcat/internal/models"
)

// MockCategoryStore is an in-memory category store for tests.
type MockCategoryStore struct {
	Config models.CategoriesConfig

	LoadError error
	SaveError error
	Saved     []models.CategoriesConfig
}

// LoadCategoriesConfig returns the mock configuration.
func (m *MockCategoryStore) LoadCategoriesConfig() (models.CategoriesConfig, error) {
	if m.LoadError != nil {
		return models.CategoriesConfig{}, m.LoadError
	}
	return m.Config, nil
}

// LoadCategories returns the mock keyword table.
func (m *MockCategoryStore) LoadCategories() ([]models.CategoryConfig, error) {
	if m.LoadError != nil {
		return nil, m.LoadError
	}
	return m.Config.Categories, nil
}

// SaveCategoriesConfig records cfg.
func (m *MockCategoryStore) SaveCategoriesConfig(cfg models.CategoriesConfig) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	m.Saved = append(m.Saved, cfg)
	m.Config = cfg
	return nil
}
