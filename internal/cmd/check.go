package cmd

import (
	"github.com/spf13/cobra"

	"github.com/xdg/labguard/internal/docker"
	"github.com/xdg/labguard/internal/labcheck"
	"github.com/xdg/labguard/internal/term"
)

var checkOpts struct {
	composeFile string
	envFile     string
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the lab's Docker environment",
	Long: `Check that the lab environment can start:

  - the docker CLI is installed
  - the Docker daemon is reachable
  - the compose file is valid
  - the .env file defines the required variables (values are never printed)
  - the compose services and their state

Every docker call runs without a shell and with a timeout. The command
exits 1 when any check fails.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVarP(&checkOpts.composeFile, "file", "f", "", "compose file (default check.compose_file)")
	checkCmd.Flags().StringVar(&checkOpts.envFile, "env-file", "", "environment file (default check.env_file)")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	a, err := newApp(currentUser())
	if err != nil {
		return err
	}
	defer a.Close()

	opts := labcheck.Options{
		ComposeFile:      firstSet(checkOpts.composeFile, a.cfg.Check.ComposeFile),
		EnvFile:          firstSet(checkOpts.envFile, a.cfg.Check.EnvFile),
		RequiredEnv:      a.cfg.Check.RequiredEnv,
		MinDockerVersion: a.cfg.Check.MinDockerVersion,
	}

	report := labcheck.New(docker.NewClient(a.runner), opts).Run(cmd.Context())
	printReport(report)

	if report.Failed() {
		return NewExitCodeError(1)
	}
	return nil
}

func printReport(r *labcheck.Report) {
	for _, res := range r.Results {
		if res.Message == "" {
			term.Printf("%s %s\n", term.Mark(string(res.Status)), res.Name)
			continue
		}
		term.Printf("%s %s: %s\n", term.Mark(string(res.Status)), res.Name, res.Message)
	}
	term.Println()
	term.Printf("%d passed, %d failed, %d skipped\n",
		r.Count(labcheck.StatusPass), r.Count(labcheck.StatusFail), r.Count(labcheck.StatusSkip))
}

func firstSet(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
