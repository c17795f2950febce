package models

import (
	"fjacquet/spendcat/internal/logging"
)

// CategorizationStats tracks how a batch of records was categorized.
type CategorizationStats struct {
	Total    int
	ByModel  int
	ByRules  int
	Labeled  int
	NoSignal int
}

// Record counts one prediction by its source.
func (cs *CategorizationStats) Record(source string) {
	cs.Total++
	switch source {
	case SourceModel:
		cs.ByModel++
	case SourceKeyword:
		cs.ByRules++
	case SourceLabeled:
		cs.Labeled++
	case SourceEmpty:
		cs.NoSignal++
	}
}

// ModelRate is the percentage of records categorized by the trained model.
func (cs CategorizationStats) ModelRate() float64 {
	if cs.Total == 0 {
		return 0.0
	}
	return float64(cs.ByModel) / float64(cs.Total) * 100.0
}

// LogSummary logs a summary of categorization statistics
func (cs CategorizationStats) LogSummary(logger logging.Logger, operation string) {
	if logger == nil {
		return
	}

	logger.Info("Categorization summary",
		logging.Field{Key: logging.FieldOperation, Value: operation},
		logging.Field{Key: "total_transactions", Value: cs.Total},
		logging.Field{Key: "by_model", Value: cs.ByModel},
		logging.Field{Key: "by_rules", Value: cs.ByRules},
		logging.Field{Key: "labeled", Value: cs.Labeled},
		logging.Field{Key: "no_signal", Value: cs.NoSignal},
		logging.Field{Key: "model_rate", Value: cs.ModelRate()},
	)
}
