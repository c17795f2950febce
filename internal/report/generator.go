// Package report renders predictions, insights and model metadata.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"fjacquet/spendcat/internal/logging"
	"fjacquet/spendcat/internal/models"
	"fjacquet/spendcat/internal/trainer"

	"github.com/gocarina/gocsv"
)

// Supported output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// InsightsRow is one category line of an insights report.
type InsightsRow struct {
	Category string `csv:"category" json:"category"`
	Count    int    `csv:"count" json:"count"`
	Total    string `csv:"total" json:"total"`
	Average  string `csv:"average" json:"average"`
	Share    string `csv:"share" json:"share"`
}

// PredictionRow is one categorized record.
type PredictionRow struct {
	Description  string  `csv:"description" json:"description"`
	Merchant     string  `csv:"merchant" json:"merchant,omitempty"`
	Amount       string  `csv:"amount" json:"amount,omitempty"`
	Category     string  `csv:"category" json:"category"`
	Confidence   float64 `csv:"confidence" json:"confidence"`
	Alternatives string  `csv:"alternative_categories" json:"alternative_categories"`
	Source       string  `csv:"source" json:"source"`
}

// Generator writes reports in text, JSON or CSV.
type Generator struct {
	logger logging.Logger
}

// NewGenerator creates a Generator.
func NewGenerator(logger logging.Logger) *Generator {
	return &Generator{logger: logging.OrDefault(logger).WithField(logging.FieldComponent, "ReportGenerator")}
}

// InsightsRows flattens a summary in report order.
func InsightsRows(s models.InsightsSummary) []InsightsRow {
	cats := s.SortedCategories()
	rows := make([]InsightsRow, 0, len(cats))
	for _, c := range cats {
		rows = append(rows, InsightsRow{
			Category: string(c),
			Count:    s.CategoryCounts[c],
			Total:    s.CategoryTotals[c].StringFixed(2),
			Average:  s.CategoryAverages[c].StringFixed(2),
			Share:    s.Share(c).Mul(hundred).StringFixed(1) + "%",
		})
	}
	return rows
}

// WriteInsights renders an insights summary.
func (g *Generator) WriteInsights(w io.Writer, s models.InsightsSummary, format string) error {
	switch format {
	case FormatJSON:
		return g.writeJSON(w, s)
	case FormatCSV:
		return g.writeCSV(w, InsightsRows(s))
	case FormatText, "":
		return writeInsightsText(w, s)
	default:
		return fmt.Errorf("unsupported report format: %s", format)
	}
}

// PredictionRows pairs records with their predictions.
func PredictionRows(records []models.TransactionRecord, preds []models.PredictionResult) ([]PredictionRow, error) {
	if len(records) != len(preds) {
		return nil, fmt.Errorf("got %d predictions for %d records", len(preds), len(records))
	}
	rows := make([]PredictionRow, len(records))
	for i, rec := range records {
		alts := make([]string, len(preds[i].AlternativeCategories))
		for j, a := range preds[i].AlternativeCategories {
			alts[j] = string(a)
		}
		amount := ""
		if rec.Amount.Valid {
			amount = rec.Amount.Decimal.String()
		}
		rows[i] = PredictionRow{
			Description:  rec.Description,
			Merchant:     rec.Merchant,
			Amount:       amount,
			Category:     string(preds[i].Category),
			Confidence:   preds[i].Confidence,
			Alternatives: strings.Join(alts, "|"),
			Source:       preds[i].Source,
		}
	}
	return rows, nil
}

// WritePredictions renders one line per record.
func (g *Generator) WritePredictions(w io.Writer, records []models.TransactionRecord, preds []models.PredictionResult, format string) error {
	switch format {
	case FormatJSON:
		return g.writeJSON(w, preds)
	case FormatCSV:
		rows, err := PredictionRows(records, preds)
		if err != nil {
			return err
		}
		return g.writeCSV(w, rows)
	case FormatText, "":
		rows, err := PredictionRows(records, preds)
		if err != nil {
			return err
		}
		for _, row := range rows {
			if err := writePredictionText(w, row); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported report format: %s", format)
	}
}

// WriteModelInfo renders model metadata.
func (g *Generator) WriteModelInfo(w io.Writer, info trainer.ModelInfo, format string) error {
	switch format {
	case FormatJSON:
		return g.writeJSON(w, info)
	case FormatText, "":
		return writeModelInfoText(w, info)
	default:
		return fmt.Errorf("unsupported report format: %s", format)
	}
}

func (g *Generator) writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		g.logger.WithError(err).Error("Failed to marshal JSON report")
		return fmt.Errorf("failed to marshal JSON report: %w", err)
	}
	return nil
}

func (g *Generator) writeCSV(w io.Writer, rows interface{}) error {
	if err := gocsv.Marshal(rows, w); err != nil {
		g.logger.WithError(err).Error("Failed to marshal CSV report")
		return fmt.Errorf("failed to marshal CSV report: %w", err)
	}
	return nil
}
