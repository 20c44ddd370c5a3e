package cmd

import (
	"github.com/spf13/cobra"

	"github.com/xdg/labguard/internal/safepath"
	"github.com/xdg/labguard/internal/term"
)

var pathEnsure bool

var pathCmd = &cobra.Command{
	Use:   "path <category> <file>",
	Short: "Resolve a file name inside a data or output directory",
	Long: `Print the absolute path of a file inside one of the configured
directories (raw, processed, external, figures, models, reports).

The name may contain subdirectories but may not leave the category
directory: "..", absolute paths and symlinks pointing outside are rejected.
Nothing is created unless --ensure is given, which creates the category
directory itself.`,
	Example: `  labguard path raw customers.csv
  labguard path --ensure figures eda/histogram.png`,
	Args: cobra.ExactArgs(2),
	RunE: runPath,
}

func init() {
	pathCmd.Flags().BoolVar(&pathEnsure, "ensure", false, "create the category directory")
	rootCmd.AddCommand(pathCmd)
}

func runPath(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	configureLogging(cfg)

	resolver, err := safepath.New(cfg.Layout())
	if err != nil {
		return err
	}

	category, name := args[0], args[1]
	p, err := resolver.Resolve(name, category)
	if err != nil {
		return err
	}
	if pathEnsure {
		if _, err := resolver.EnsureDir(category); err != nil {
			return err
		}
	}
	term.Println(p)
	return nil
}
