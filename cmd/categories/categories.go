// Package categories handles commands that manage the category table
package categories

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"fjacquet/spendcat/cmd/root"
	"fjacquet/spendcat/internal/container"
	"fjacquet/spendcat/internal/fileutils"
	"fjacquet/spendcat/internal/store"

	"github.com/spf13/cobra"
)

var force bool

// Cmd groups the categories subcommands
var Cmd = &cobra.Command{
	Use:   "categories",
	Short: "Manage the category table",
}

// InitCmd writes the built-in table to the categories file
var InitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the built-in categories file",
	Long: `Write the built-in keyword table and aliases to the configured categories file,
so they can be edited. An existing file is kept unless --force is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return RunInit(c, cmd.OutOrStdout(), force)
	},
}

// ListCmd prints the configured categories
var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured categories, keywords and aliases",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return RunList(c, cmd.OutOrStdout())
	},
}

func init() {
	InitCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing categories file")
	Cmd.AddCommand(InitCmd)
	Cmd.AddCommand(ListCmd)
}

// RunInit saves the default categories configuration.
func RunInit(c *container.Container, out io.Writer, overwrite bool) error {
	categoryStore := c.GetStore()
	path := categoryStore.CategoriesFile
	if path == "" {
		path = store.DefaultCategoriesFile
	}
	if fileutils.FileExists(path) && !overwrite {
		return fmt.Errorf("categories file %s already exists (use --force to overwrite)", path)
	}
	if err := categoryStore.SaveCategoriesConfig(store.DefaultCategoriesConfig()); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "Wrote %s\n", path)
	return err
}

// RunList prints the keyword table in match order, then the aliases.
func RunList(c *container.Container, out io.Writer) error {
	cfg, err := c.GetStore().LoadCategoriesConfig()
	if err != nil {
		return err
	}
	for _, cat := range cfg.Categories {
		if _, err := fmt.Fprintf(out, "%-16s %s\n", cat.Name, strings.Join(cat.Keywords, ", ")); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(out, "%-16s (catch-all)\n", c.GetTaxonomy().Other()); err != nil {
		return err
	}

	if len(cfg.Aliases) == 0 {
		return nil
	}
	from := make([]string, 0, len(cfg.Aliases))
	for k := range cfg.Aliases {
		from = append(from, k)
	}
	sort.Strings(from)
	fmt.Fprintln(out, "\nAliases:")
	for _, k := range from {
		if _, err := fmt.Fprintf(out, "  %s -> %s\n", k, cfg.Aliases[k]); err != nil {
			return err
		}
	}
	return nil
}
