package categorizer

import "fjacquet/spendcat/internal/models"

// CategoryStoreInterface defines the interface for category data storage.
// This allows for dependency injection and easier testing.
type CategoryStoreInterface interface {
	LoadCategories() ([]models.CategoryConfig, error)
	LoadCategoriesConfig() (models.CategoriesConfig, error)
	SaveCategoriesConfig(cfg models.CategoriesConfig) error
}
