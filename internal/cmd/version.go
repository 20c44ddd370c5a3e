package cmd

import (
	"github.com/spf13/cobra"

	"github.com/xdg/labguard/internal/term"
	"github.com/xdg/labguard/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		term.Println(version.String())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
