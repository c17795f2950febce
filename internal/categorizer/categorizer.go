// Package categorizer is the single entry point for labeling transactions.
// It extracts features, asks the trained model first and falls back to the
// keyword table when no model is available, then aggregates spending insights.
package categorizer

import (
	"context"
	"errors"
	"time"

	"fjacquet/spendcat/internal/batch"
	"fjacquet/spendcat/internal/caterror"
	"fjacquet/spendcat/internal/insights"
	"fjacquet/spendcat/internal/logging"
	"fjacquet/spendcat/internal/models"
	"fjacquet/spendcat/internal/textutils"
	"fjacquet/spendcat/internal/trainer"
)

// Options tune the Categorizer.
type Options struct {
	// TrainTimeout bounds a Train call; zero means no limit.
	TrainTimeout time.Duration
	// Workers and SequentialThreshold size the batch worker pool.
	Workers             int
	SequentialThreshold int
}

// Categorizer orchestrates the trained model and the keyword fallback.
// It is safe for concurrent use.
type Categorizer struct {
	model     TrainableClassifier
	primary   PredictionStrategy
	fallback  PredictionStrategy
	taxonomy  *models.Taxonomy
	processor *batch.Processor
	opts      Options
	logger    logging.Logger
}

// NewCategorizer wires a trainable classifier and a fallback strategy.
func NewCategorizer(model TrainableClassifier, fallback PredictionStrategy, taxonomy *models.Taxonomy, logger logging.Logger, opts Options) *Categorizer {
	logger = logging.OrDefault(logger)
	if taxonomy == nil {
		taxonomy = models.DefaultTaxonomy()
	}
	return &Categorizer{
		model:     model,
		primary:   NewModelStrategy(model),
		fallback:  fallback,
		taxonomy:  taxonomy,
		processor: batch.NewProcessor(logger, opts.Workers, opts.SequentialThreshold),
		opts:      opts,
		logger:    logger,
	}
}

// Taxonomy returns the configured category set.
func (c *Categorizer) Taxonomy() *models.Taxonomy {
	return c.taxonomy
}

// Predict categorizes one record. It never fails: records without usable
// text get the catch-all category at zero confidence, and any model error
// falls back to the keyword table.
func (c *Categorizer) Predict(ctx context.Context, rec models.TransactionRecord) models.PredictionResult {
	text := textutils.ExtractFeatures(rec)
	if text == "" {
		c.logger.Debug("Record has no usable text",
			logging.Field{Key: logging.FieldReason, Value: (&caterror.InvalidInputError{
				Field: "description", Reason: "empty after normalization",
			}).Error()})
		return models.EmptyPrediction(c.taxonomy.Other())
	}

	var attempts StrategyResults
	result, err := c.primary.Predict(ctx, text)
	attempts.Add(c.primary.Name(), result, err)
	if err != nil {
		if !caterror.IsModelNotTrained(err) {
			c.logger.WithError(err).Warn("Model prediction failed, using keyword fallback")
		}
		result, err = c.fallback.Predict(ctx, text)
		attempts.Add(c.fallback.Name(), result, err)
	}

	final, ok := attempts.Final()
	if !ok {
		c.logger.WithError(errors.Join(attempts.GetErrors()...)).Warn("All strategies failed",
			logging.Field{Key: "attempts", Value: attempts.Summary()})
		return models.EmptyPrediction(c.taxonomy.Other())
	}

	c.logger.Debug("Record categorized",
		logging.Field{Key: logging.FieldCategory, Value: final.Category},
		logging.Field{Key: logging.FieldConfidence, Value: final.Confidence},
		logging.Field{Key: logging.FieldSource, Value: final.Source},
		logging.Field{Key: "attempts", Value: attempts.Summary()})
	return final
}

// PredictBatch categorizes records over the worker pool. Results are in input
// order. Records not reached before ctx is cancelled get an empty prediction.
func (c *Categorizer) PredictBatch(ctx context.Context, records []models.TransactionRecord) []models.PredictionResult {
	results, err := batch.Process(ctx, c.processor, records, c.Predict)

	var stats models.CategorizationStats
	for i := range results {
		if results[i].Category == "" {
			results[i] = models.EmptyPrediction(c.taxonomy.Other())
		}
		stats.Record(results[i].Source)
	}
	if err != nil {
		c.logger.WithError(err).Warn("Batch prediction interrupted",
			logging.Field{Key: logging.FieldCount, Value: len(records)})
	}
	stats.LogSummary(c.logger, "predict_batch")
	return results
}

// Train fits a new model. Errors from the classifier are returned unchanged.
func (c *Categorizer) Train(ctx context.Context, examples []models.TrainingExample, opts ...trainer.TrainOption) (trainer.TrainResult, error) {
	if c.opts.TrainTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.TrainTimeout)
		defer cancel()
	}
	return c.model.Train(ctx, examples, opts...)
}

// Insights summarizes spending. Records carrying a category that belongs to
// the configured set keep it; the rest are predicted.
func (c *Categorizer) Insights(ctx context.Context, records []models.TransactionRecord) models.InsightsSummary {
	items := make([]insights.Item, len(records))
	var pending []int
	var stats models.CategorizationStats

	for i, rec := range records {
		items[i].Amount = rec.Amount
		if label, ok := c.taxonomy.Canonical(rec.Category); ok {
			items[i].Category = label
			stats.Record(models.SourceLabeled)
			continue
		}
		pending = append(pending, i)
	}

	if len(pending) > 0 {
		toPredict := make([]models.TransactionRecord, len(pending))
		for j, i := range pending {
			toPredict[j] = records[i]
		}
		predictions, err := batch.Process(ctx, c.processor, toPredict, c.Predict)
		if err != nil {
			c.logger.WithError(err).Warn("Insights prediction interrupted")
		}
		for j, i := range pending {
			p := predictions[j]
			if p.Category == "" {
				p = models.EmptyPrediction(c.taxonomy.Other())
			}
			items[i].Category = p.Category
			stats.Record(p.Source)
		}
	}

	stats.LogSummary(c.logger, "insights")
	return insights.Aggregate(items)
}

// ModelInfo describes the active model, or returns a ModelNotTrainedError.
func (c *Categorizer) ModelInfo() (trainer.ModelInfo, error) {
	return c.model.Info()
}
