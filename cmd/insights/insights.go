// Package insights handles spending summary commands
package insights

import (
	"context"
	"io"

	"fjacquet/spendcat/cmd/root"
	"fjacquet/spendcat/internal/container"
	"fjacquet/spendcat/internal/report"
	"fjacquet/spendcat/internal/validation"

	"github.com/spf13/cobra"
)

var asJSON bool

// Cmd represents the insights command
var Cmd = &cobra.Command{
	Use:   "insights",
	Short: "Summarize spending per category",
	Long: `Summarize spending per category for the transactions in --input.
Transactions that already carry a known category keep it; the others are predicted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		out, closeOut, err := root.OpenOutput(root.SharedFlags.Output, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer closeOut()

		format := root.SharedFlags.Format
		if asJSON {
			format = report.FormatJSON
		}
		return Run(cmd.Context(), c, out, root.SharedFlags.Input, format)
	},
}

func init() {
	Cmd.Flags().BoolVar(&asJSON, "json", false, "Shorthand for --format json")
}

// Run aggregates the records of inputFile and writes the summary to out.
func Run(ctx context.Context, c *container.Container, out io.Writer, inputFile, format string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := validation.IsValidOutputFormat(format, report.FormatText, report.FormatJSON, report.FormatCSV); err != nil {
		return err
	}
	if err := validation.IsValidInputFile(inputFile); err != nil {
		return err
	}

	records, err := c.GetReader().ReadRecords(inputFile)
	if err != nil {
		return err
	}
	summary := c.GetCategorizer().Insights(ctx, records)
	return c.GetReportGenerator().WriteInsights(out, summary, format)
}
