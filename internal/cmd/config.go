package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xdg/labguard/internal/config"
	"github.com/xdg/labguard/internal/executor"
	"github.com/xdg/labguard/internal/term"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Inspect and change labguard's configuration file.

The global file lives at $XDG_CONFIG_HOME/labguard/config.yaml, which is
~/.config/labguard/config.yaml when XDG_CONFIG_HOME is unset. A file given
with --config is used for loading only; init and edit always act on the
global file.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective config",
	Long: `Print the effective configuration as YAML, with defaults filled in.

If no config file exists, shows the default configuration.`,
	RunE: runConfigShow,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit config in $EDITOR",
	Long: `Open the configuration file in your editor.

The editor is taken from VISUAL or EDITOR, falling back to vi. It is started
directly, without a shell. If the configuration file doesn't exist, a
default one is created first. The file is validated after the editor exits.`,
	RunE: runConfigEdit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print config file path",
	Long:  `Print the path to the configuration file.`,
	Run:   runConfigPath,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default config file",
	Long: `Create the default configuration file if it doesn't exist.

This creates a fully-commented configuration file with all default values.
If the file already exists, this command does nothing unless --force is
given, in which case the file is replaced with the effective configuration
(comments are not preserved).`,
	RunE: runConfigInit,
}

var configInitForce bool

func init() {
	configCmd.AddCommand(configShowCmd, configEditCmd, configPathCmd, configInitCmd)
	rootCmd.AddCommand(configCmd)

	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Replace an existing file with the effective configuration")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	data, err := config.MarshalGlobalConfig(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	term.Print(string(data))
	return nil
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	if err := config.EditGlobalConfig(cmd.Context(), executor.NewRunner()); err != nil {
		return fmt.Errorf("edit config: %w", err)
	}
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) {
	term.Println(firstSet(flagConfig, config.GlobalConfigPath()))
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	write := config.WriteDefaultConfig
	if configInitForce {
		write = func() error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return config.WriteGlobalConfig(cfg)
		}
	}
	if err := write(); err != nil {
		return fmt.Errorf("init config: %w", err)
	}
	term.Printf("Config file: %s\n", config.GlobalConfigPath())
	return nil
}
