package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/xdg/labguard/internal/executor"
	"github.com/xdg/labguard/internal/term"
)

var quoteCmd = &cobra.Command{
	Use:   "quote <value>...",
	Short: "Quote values for a POSIX shell",
	Long: `Print the values single-quoted so a POSIX shell reads each back as one
literal word. Embedded single quotes are escaped as '\''.`,
	Example: `  labguard quote "it's here" 'a; rm -rf /'`,
	Args:    cobra.MinimumNArgs(1),
	Run:     runQuote,
}

var validatePattern string

var validateArgCmd = &cobra.Command{
	Use:   "validate-arg <value>...",
	Short: "Check values against the argument allowlist",
	Long: `Check each value against an allowlist regular expression that must match
the whole value. The default allowlist is [A-Za-z0-9_./-]+, or
runner.allowed_pattern when configured.

Valid values are echoed; invalid ones are reported and the command exits 1.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidateArg,
}

func init() {
	validateArgCmd.Flags().StringVar(&validatePattern, "pattern", "", "allowlist regular expression")
	rootCmd.AddCommand(quoteCmd)
	rootCmd.AddCommand(validateArgCmd)
}

func runQuote(cmd *cobra.Command, args []string) {
	quoted := make([]string, len(args))
	for i, arg := range args {
		quoted[i] = executor.QuoteForShell(arg)
	}
	term.Println(strings.Join(quoted, " "))
}

func runValidateArg(cmd *cobra.Command, args []string) error {
	pattern := validatePattern
	if pattern == "" {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		pattern = cfg.Runner.AllowedPattern
	}

	re, err := executor.CompileArgumentPattern(pattern)
	if err != nil {
		return err
	}

	failed := false
	for _, arg := range args {
		v, err := executor.ValidateArgument(arg, re)
		if err != nil {
			term.Error("%v", err)
			failed = true
			continue
		}
		term.Println(v)
	}
	if failed {
		return NewExitCodeError(1)
	}
	return nil
}
