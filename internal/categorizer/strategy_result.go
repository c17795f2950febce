package categorizer

import (
	"fmt"
	"strings"

	"fjacquet/spendcat/internal/caterror"
	"fjacquet/spendcat/internal/models"
)

// StrategyResult records one strategy attempt for a record.
type StrategyResult struct {
	Strategy string
	Result   models.PredictionResult
	Error    error
}

// StrategyResults is the ordered list of attempts made for one record.
type StrategyResults struct {
	Results []StrategyResult
}

// Add appends an attempt.
func (sr *StrategyResults) Add(strategy string, result models.PredictionResult, err error) {
	sr.Results = append(sr.Results, StrategyResult{Strategy: strategy, Result: result, Error: err})
}

// Final returns the last successful attempt.
func (sr StrategyResults) Final() (models.PredictionResult, bool) {
	for i := len(sr.Results) - 1; i >= 0; i-- {
		if sr.Results[i].Error == nil {
			return sr.Results[i].Result, true
		}
	}
	return models.PredictionResult{}, false
}

// GetErrors returns all errors encountered during strategy execution
func (sr StrategyResults) GetErrors() []error {
	var errors []error
	for _, result := range sr.Results {
		if result.Error != nil {
			errors = append(errors, fmt.Errorf("%s strategy: %w", result.Strategy, result.Error))
		}
	}
	return errors
}

// Summary returns a human-readable summary of all strategy attempts
func (sr StrategyResults) Summary() string {
	var parts []string
	for _, result := range sr.Results {
		status := "success"
		switch {
		case caterror.IsModelNotTrained(result.Error):
			status = "untrained"
		case result.Error != nil:
			status = "failed"
		}
		parts = append(parts, fmt.Sprintf("%s:%s", result.Strategy, status))
	}
	return strings.Join(parts, ", ")
}
