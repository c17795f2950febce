// Package predict handles transaction categorization commands
package predict

import (
	"context"
	"fmt"
	"io"

	"fjacquet/spendcat/cmd/root"
	"fjacquet/spendcat/internal/container"
	"fjacquet/spendcat/internal/models"
	"fjacquet/spendcat/internal/report"
	"fjacquet/spendcat/internal/validation"

	"github.com/spf13/cobra"
)

// Flags of the predict command.
type Flags struct {
	Description string
	Merchant    string
	Amount      string
}

var flags Flags

// Cmd represents the predict command
var Cmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict the spending category of transactions",
	Long: `Predict the spending category of a single transaction given on the command line,
or of every transaction in an input file (--input).`,
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
		return Run(cmd.Context(), c, out, root.SharedFlags.Input, root.SharedFlags.Format, flags)
	},
}

func init() {
	Cmd.Flags().StringVarP(&flags.Description, "description", "d", "", "Transaction description")
	Cmd.Flags().StringVarP(&flags.Merchant, "merchant", "m", "", "Merchant name (optional)")
	Cmd.Flags().StringVarP(&flags.Amount, "amount", "a", "", "Transaction amount (optional)")
}

// Run predicts the records of inputFile, or the single record described by
// f when inputFile is empty, and writes them to out.
func Run(ctx context.Context, c *container.Container, out io.Writer, inputFile, format string, f Flags) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := validation.IsValidOutputFormat(format, report.FormatText, report.FormatJSON, report.FormatCSV); err != nil {
		return err
	}

	var records []models.TransactionRecord
	if inputFile != "" {
		if err := validation.IsValidInputFile(inputFile); err != nil {
			return err
		}
		var err error
		records, err = c.GetReader().ReadRecords(inputFile)
		if err != nil {
			return err
		}
	} else {
		if f.Description == "" && f.Merchant == "" {
			return fmt.Errorf("either --description/--merchant or --input is required")
		}
		rec, err := models.NewRecord(f.Description, f.Merchant, f.Amount)
		if err != nil {
			return err
		}
		records = []models.TransactionRecord{rec}
	}

	preds := c.GetCategorizer().PredictBatch(ctx, records)
	return c.GetReportGenerator().WritePredictions(out, records, preds, format)
}
