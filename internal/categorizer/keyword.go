package categorizer

import (
	"context"
	"strings"
	"sync"

	"fjacquet/spendcat/internal/logging"
	"fjacquet/spendcat/internal/models"
	"fjacquet/spendcat/internal/textutils"
)

type keywordRule struct {
	category models.CategoryLabel
	keywords []string
}

// KeywordStrategy implements categorization using keyword pattern matching
// from the ordered category table loaded from YAML. It needs no training and
// is deterministic.
type KeywordStrategy struct {
	mu     sync.RWMutex
	rules  []keywordRule
	other  models.CategoryLabel
	store  CategoryStoreInterface
	logger logging.Logger
}

// NewKeywordStrategy creates a new KeywordStrategy instance. When store is nil
// or fails to load, the built-in table is used.
func NewKeywordStrategy(store CategoryStoreInterface, other models.CategoryLabel, logger logging.Logger) *KeywordStrategy {
	if other == "" {
		other = models.CategoryOther
	}
	strategy := &KeywordStrategy{
		other:  other,
		store:  store,
		logger: logging.OrDefault(logger),
	}
	strategy.loadCategories()
	return strategy
}

// Name returns the name of this strategy for logging and debugging.
func (s *KeywordStrategy) Name() string {
	return "Keyword"
}

// Predict returns the first table category with a keyword contained in text.
// No match yields the catch-all category at a lower confidence, and empty
// text the catch-all at zero confidence.
func (s *KeywordStrategy) Predict(_ context.Context, text string) (models.PredictionResult, error) {
	if text == "" {
		return models.EmptyPrediction(s.other), nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rule := range s.rules {
		for _, keyword := range rule.keywords {
			if !strings.Contains(text, keyword) {
				continue
			}
			s.logger.WithFields(
				logging.Field{Key: logging.FieldStrategy, Value: s.Name()},
				logging.Field{Key: logging.FieldKeyword, Value: keyword},
				logging.Field{Key: logging.FieldCategory, Value: rule.category},
			).Debug("Transaction categorized using keyword matching")

			alternatives := []models.CategoryLabel{s.other}
			if rule.category == s.other {
				alternatives = []models.CategoryLabel{}
			}
			return models.PredictionResult{
				Category:              rule.category,
				Confidence:            models.KeywordMatchConfidence,
				AlternativeCategories: alternatives,
				Source:                models.SourceKeyword,
			}, nil
		}
	}

	return models.PredictionResult{
		Category:              s.other,
		Confidence:            models.KeywordNoMatchConfidence,
		AlternativeCategories: []models.CategoryLabel{},
		Source:                models.SourceKeyword,
	}, nil
}

// loadCategories loads category configurations from the store.
func (s *KeywordStrategy) loadCategories() {
	categories := models.DefaultKeywordTable()
	if s.store != nil {
		loaded, err := s.store.LoadCategories()
		if err != nil {
			s.logger.WithError(err).Warn("Failed to load categories for KeywordStrategy, using built-in table")
		} else {
			categories = loaded
		}
	}

	rules := compileRules(categories)

	s.mu.Lock()
	s.rules = rules
	s.mu.Unlock()

	s.logger.WithField(logging.FieldCount, len(rules)).Debug("Loaded categories for KeywordStrategy")
}

// compileRules normalizes keywords into the feature-text space so table and
// input compare the same way.
func compileRules(categories []models.CategoryConfig) []keywordRule {
	rules := make([]keywordRule, 0, len(categories))
	for _, c := range categories {
		rule := keywordRule{category: models.CategoryLabel(c.Name)}
		for _, k := range c.Keywords {
			if k = textutils.Normalize(k); k != "" {
				rule.keywords = append(rule.keywords, k)
			}
		}
		if len(rule.keywords) > 0 {
			rules = append(rules, rule)
		}
	}
	return rules
}
