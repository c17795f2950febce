// Package model handles commands that inspect the trained model
package model

import (
	"io"

	"fjacquet/spendcat/cmd/root"
	"fjacquet/spendcat/internal/container"
	"fjacquet/spendcat/internal/report"
	"fjacquet/spendcat/internal/validation"

	"github.com/spf13/cobra"
)

// Cmd groups the model subcommands
var Cmd = &cobra.Command{
	Use:   "model",
	Short: "Inspect the trained model",
}

// InfoCmd reports the active model
var InfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show metadata of the active model",
	Long:  `Show the identifier, training time, classes and held-out accuracy of the active model.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return RunInfo(c, cmd.OutOrStdout(), root.SharedFlags.Format)
	},
}

func init() {
	Cmd.AddCommand(InfoCmd)
}

// RunInfo writes the active model's metadata to out.
func RunInfo(c *container.Container, out io.Writer, format string) error {
	if err := validation.IsValidOutputFormat(format, report.FormatText, report.FormatJSON); err != nil {
		return err
	}
	info, err := c.GetCategorizer().ModelInfo()
	if err != nil {
		return err
	}
	return c.GetReportGenerator().WriteModelInfo(out, info, format)
}
