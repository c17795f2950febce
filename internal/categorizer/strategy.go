package categorizer

import (
	"context"

	"fjacquet/spendcat/internal/models"
	"fjacquet/spendcat/internal/trainer"
)

// PredictionStrategy labels normalized feature text (see textutils.ExtractFeatures).
type PredictionStrategy interface {
	// Predict returns a result for text. Strategies backed by a trained model
	// return a ModelNotTrainedError when no model is available.
	Predict(ctx context.Context, text string) (models.PredictionResult, error)

	// Name returns the name of this strategy for logging and debugging purposes.
	Name() string
}

// TrainableClassifier is the model backend the Categorizer trains and queries.
type TrainableClassifier interface {
	Train(ctx context.Context, examples []models.TrainingExample, opts ...trainer.TrainOption) (trainer.TrainResult, error)
	Predict(text string) (models.PredictionResult, error)
	Info() (trainer.ModelInfo, error)
}

// ModelStrategy adapts a TrainableClassifier to PredictionStrategy.
type ModelStrategy struct {
	classifier TrainableClassifier
}

// NewModelStrategy wraps classifier.
func NewModelStrategy(classifier TrainableClassifier) *ModelStrategy {
	return &ModelStrategy{classifier: classifier}
}

// Name returns the name of this strategy for logging and debugging.
func (s *ModelStrategy) Name() string {
	return "Model"
}

// Predict delegates to the classifier.
func (s *ModelStrategy) Predict(ctx context.Context, text string) (models.PredictionResult, error) {
	if err := ctx.Err(); err != nil {
		return models.PredictionResult{}, err
	}
	return s.classifier.Predict(text)
}
