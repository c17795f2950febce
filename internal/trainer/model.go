package trainer

import (
	"time"

	"fjacquet/spendcat/internal/models"
)

// ModelInfo describes a fitted model.
type ModelInfo struct {
	ID             string                 `json:"id"`
	TrainedAt      time.Time              `json:"trained_at"`
	Classes        []models.CategoryLabel `json:"classes"`
	Examples       int                    `json:"examples"`
	HeldOut        int                    `json:"held_out"`
	Accuracy       float64                `json:"accuracy"`
	VocabularySize int                    `json:"vocabulary_size"`
	Estimators     int                    `json:"estimators"`
	NgramMax       int                    `json:"ngram_max"`
	// TopTerms are derived from the vocabulary's document frequencies.
	TopTerms []TermStat `json:"top_terms,omitempty"`
}

// infoTopTerms is how many terms Info reports.
const infoTopTerms = 10

// Model is an immutable fitted model. It is replaced wholesale on retrain.
type Model struct {
	info       ModelInfo
	vectorizer *Vectorizer
	ensemble   *ensemble
	exact      map[string]models.CategoryLabel
}

// Info returns the model metadata.
func (m *Model) Info() ModelInfo {
	info := m.info
	info.Classes = append([]models.CategoryLabel(nil), m.info.Classes...)
	info.TopTerms = m.vectorizer.TopTerms(infoTopTerms)
	return info
}

// Predict classifies normalized feature text. Text seen verbatim during
// training returns its training label with full confidence.
func (m *Model) Predict(text string) models.PredictionResult {
	if label, ok := m.exact[text]; ok {
		return models.PredictionResult{
			Category:              label,
			Confidence:            1.0,
			AlternativeCategories: []models.CategoryLabel{},
			Source:                models.SourceModel,
		}
	}

	votes := m.ensemble.predict(m.vectorizer.Transform(text))
	result := models.PredictionResult{
		Category:              votes[0].label,
		Confidence:            models.ClampConfidence(votes[0].share),
		AlternativeCategories: make([]models.CategoryLabel, 0, len(votes)-1),
		Source:                models.SourceModel,
	}
	for _, v := range votes[1:] {
		result.AlternativeCategories = append(result.AlternativeCategories, v.label)
	}
	return result
}
