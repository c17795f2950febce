package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"fjacquet/spendcat/internal/models"
	"fjacquet/spendcat/internal/trainer"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)

	headerColor   = color.New(color.Bold, color.FgCyan)
	categoryColor = color.New(color.FgGreen)
	amountColor   = color.New(color.FgYellow)
	faintColor    = color.New(color.Faint)
)

// confidenceColor shades a confidence value: high green, medium yellow, low red.
func confidenceColor(c float64) *color.Color {
	switch {
	case c >= 0.8:
		return color.New(color.FgGreen)
	case c >= 0.5:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}

func writeInsightsText(w io.Writer, s models.InsightsSummary) error {
	if _, err := headerColor.Fprintf(w, "%-20s %6s %12s %10s %7s\n", "CATEGORY", "COUNT", "TOTAL", "AVERAGE", "SHARE"); err != nil {
		return err
	}
	for _, row := range InsightsRows(s) {
		if _, err := fmt.Fprintf(w, "%s %6d %s %10s %7s\n",
			categoryColor.Sprintf("%-20s", row.Category),
			row.Count,
			amountColor.Sprintf("%12s", row.Total),
			row.Average,
			row.Share,
		); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%s %6d %s\n",
		headerColor.Sprintf("%-20s", "TOTAL"),
		s.TransactionCount,
		amountColor.Sprintf("%12s", s.TotalSpending.StringFixed(2)),
	)
	return err
}

func writePredictionText(w io.Writer, row PredictionRow) error {
	label := row.Description
	if row.Merchant != "" {
		label = row.Merchant + " - " + label
	}
	line := fmt.Sprintf("%s -> %s %s",
		label,
		categoryColor.Sprint(row.Category),
		confidenceColor(row.Confidence).Sprintf("(%.2f)", row.Confidence),
	)
	if row.Alternatives != "" {
		line += faintColor.Sprintf(" alternatives: %s", strings.ReplaceAll(row.Alternatives, "|", ", "))
	}
	line += faintColor.Sprintf(" [%s]", row.Source)
	_, err := fmt.Fprintln(w, line)
	return err
}

func writeModelInfoText(w io.Writer, info trainer.ModelInfo) error {
	classes := make([]string, len(info.Classes))
	for i, c := range info.Classes {
		classes[i] = string(c)
	}
	lines := [][2]string{
		{"Model", info.ID},
		{"Trained at", info.TrainedAt.Local().Format(time.RFC3339)},
		{"Examples", fmt.Sprintf("%d (%d held out)", info.Examples, info.HeldOut)},
		{"Accuracy", fmt.Sprintf("%.1f%%", info.Accuracy*100)},
		{"Vocabulary", fmt.Sprintf("%d terms, n-grams up to %d", info.VocabularySize, info.NgramMax)},
		{"Estimators", fmt.Sprintf("%d", info.Estimators)},
		{"Categories", strings.Join(classes, ", ")},
	}
	if len(info.TopTerms) > 0 {
		terms := make([]string, len(info.TopTerms))
		for i, t := range info.TopTerms {
			terms[i] = fmt.Sprintf("%s (%d)", t.Term, t.Documents)
		}
		lines = append(lines, [2]string{"Top terms", strings.Join(terms, ", ")})
	}
	for _, l := range lines {
		if _, err := fmt.Fprintf(w, "%s %s\n", headerColor.Sprintf("%-12s", l[0]+":"), l[1]); err != nil {
			return err
		}
	}
	return nil
}
