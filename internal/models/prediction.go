package models

// PredictionResult is the outcome of categorizing one record.
type PredictionResult struct {
	Category              CategoryLabel   `json:"category"`
	Confidence            float64         `json:"confidence"`
	AlternativeCategories []CategoryLabel `json:"alternative_categories"`
	// Source names the backend that produced the result.
	Source string `json:"source,omitempty"`
}

// EmptyPrediction is the result for records with no usable text.
func EmptyPrediction(other CategoryLabel) PredictionResult {
	return PredictionResult{
		Category:              other,
		Confidence:            0,
		AlternativeCategories: []CategoryLabel{},
		Source:                SourceEmpty,
	}
}

// ClampConfidence bounds c to [0,1].
func ClampConfidence(c float64) float64 {
	switch {
	case c != c: // NaN
		return 0
	case c < 0:
		return 0
	case c > 1:
		return 1
	}
	return c
}
