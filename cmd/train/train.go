// Package train handles model training commands
package train

import (
	"context"
	"fmt"
	"io"
	"sync"

	"fjacquet/spendcat/cmd/root"
	"fjacquet/spendcat/internal/container"
	"fjacquet/spendcat/internal/report"
	"fjacquet/spendcat/internal/trainer"
	"fjacquet/spendcat/internal/validation"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// Cmd represents the train command
var Cmd = &cobra.Command{
	Use:   "train",
	Short: "Train the transaction classifier",
	Long: `Train the transaction classifier on labeled examples read from --input.
Each example needs a description or merchant and a category. The trained model
replaces the stored one only when training succeeds.`,
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
		return Run(cmd.Context(), c, out, cmd.ErrOrStderr(), root.SharedFlags.Input, root.SharedFlags.Format)
	},
}

// Run trains on inputFile, drawing progress on progress when non-nil, and
// writes the resulting model metadata to out.
func Run(ctx context.Context, c *container.Container, out, progress io.Writer, inputFile, format string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := validation.IsValidOutputFormat(format, report.FormatText, report.FormatJSON); err != nil {
		return err
	}
	if err := validation.IsValidInputFile(inputFile); err != nil {
		return err
	}

	examples, err := c.GetReader().ReadTrainingExamples(inputFile)
	if err != nil {
		return err
	}

	var opts []trainer.TrainOption
	if progress != nil {
		opts = append(opts, trainer.WithProgress(newProgress(progress)))
	}

	result, err := c.GetCategorizer().Train(ctx, examples, opts...)
	if err != nil {
		return err
	}
	return c.GetReportGenerator().WriteModelInfo(out, result.Info, format)
}

// newProgress draws a bar sized on the first callback. Callbacks arrive from
// several goroutines, each one counting a single fitted member.
func newProgress(w io.Writer) trainer.ProgressFunc {
	var (
		once sync.Once
		bar  *progressbar.ProgressBar
	)
	return func(done, total int) {
		once.Do(func() {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(w),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowCount(),
				progressbar.OptionShowElapsedTimeOnFinish(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription("[cyan][bold]Fitting models...[reset]"),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprintln(w)
				}),
			)
		})
		_ = bar.Add(1)
	}
}
