// Package cmd implements the CLI commands for labguard.
package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/xdg/labguard/internal/clog"
	"github.com/xdg/labguard/internal/term"
	"github.com/xdg/labguard/internal/version"
)

// Global flags.
var (
	flagDebug  bool
	flagSilent bool
	flagConfig string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "labguard",
	Short: "Security guards for a local data-science lab",
	Long: `labguard hardens the helper scripts of a Docker Compose Jupyter lab.

It runs external programs from argument lists without a shell, resolves file
names into fixed data and output directories without allowing traversal, and
guards dataset operations behind role-based sessions with an audit trail.`,
	Version:           version.Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupOutput,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagSilent, "silent", false, "suppress normal output")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ~/.config/labguard/config.yaml)")
	rootCmd.SetVersionTemplate("labguard {{.Version}}\n")
}

// setupOutput applies the output flags before any command runs. Logging to
// file is configured later, once the config is loaded.
func setupOutput(cmd *cobra.Command, args []string) error {
	term.SetSilent(flagSilent)
	if flagDebug {
		clog.SetLevel(clog.LevelDebug)
	}
	return nil
}

// Execute runs the root command and returns any error. Errors other than a
// propagated exit code are printed to stderr.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		var exitErr *ExitCodeError
		if !errors.As(err, &exitErr) {
			term.Error("%v", friendlyError(err))
		}
	}
	_ = clog.Close()
	return err
}
