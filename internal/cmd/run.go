package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/xdg/labguard/internal/clog"
	"github.com/xdg/labguard/internal/executor"
	"github.com/xdg/labguard/internal/term"
)

// runOptions holds the flags of the run command.
type runOptions struct {
	dir       string
	timeout   time.Duration
	env       []string
	asText    bool
	checkArgs bool
}

var runOpts runOptions

var runCmd = &cobra.Command{
	Use:   "run [flags] -- <program> [args...]",
	Short: "Run a program without a shell",
	Long: `Run a program from an argument list with a timeout.

The program is started directly; no shell is involved, so quotes, pipes,
semicolons and $(...) in arguments reach the program as literal text.
The program's output is printed when it exits and its exit code becomes
labguard's exit code.

With --string the single argument is split on whitespace into the argument
list. This form is rejected when runner.strict is enabled.

With --check-args every argument after the program name must match
runner.allowed_pattern (letters, digits and _ . / - by default); the
program is not started if one does not. With --string the words after the
first are checked.`,
	Example: `  labguard run -- docker compose ps
  labguard run --timeout 5m -- python scripts/train.py --epochs 3
  labguard run --string "git status --short"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runOpts.dir, "dir", "", "working directory")
	runCmd.Flags().DurationVar(&runOpts.timeout, "timeout", 0, "time limit (default runner.default_timeout)")
	runCmd.Flags().StringArrayVar(&runOpts.env, "env", nil, "extra environment variable KEY=VALUE (repeatable)")
	runCmd.Flags().BoolVar(&runOpts.asText, "string", false, "split a single string argument on whitespace")
	runCmd.Flags().BoolVar(&runOpts.checkArgs, "check-args", false, "reject arguments outside runner.allowed_pattern")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	env, err := parseEnvPairs(runOpts.env)
	if err != nil {
		return err
	}

	a, err := newApp(currentUser())
	if err != nil {
		return err
	}
	defer a.Close()
	clog.Debug("run: strict %t, default timeout %s", a.runner.Strict(), a.runner.DefaultTimeout())

	argv := args
	if runOpts.asText {
		if len(args) != 1 {
			return fmt.Errorf("--string takes exactly one argument, got %d", len(args))
		}
		if runOpts.dir != "" || runOpts.timeout != 0 || len(env) > 0 {
			return fmt.Errorf("--dir, --timeout and --env cannot be combined with --string")
		}
		argv = strings.Fields(args[0])
	}

	if runOpts.checkArgs && len(argv) > 1 {
		re, err := executor.CompileArgumentPattern(a.cfg.Runner.AllowedPattern)
		if err != nil {
			return err
		}
		if err := executor.ValidateArguments(argv[1:], re); err != nil {
			return err
		}
	}

	var res executor.Result
	if runOpts.asText {
		res, err = a.runner.RunString(cmd.Context(), args[0])
	} else {
		res, err = a.runner.Run(cmd.Context(), executor.Command{
			Args:    args,
			Dir:     runOpts.dir,
			Env:     env,
			Timeout: runOpts.timeout,
		})
	}
	if err != nil {
		return err
	}

	_, _ = io.WriteString(term.Stdout(), res.Stdout)
	_, _ = io.WriteString(term.Stderr(), res.Stderr)
	if !res.Success() {
		return NewExitCodeError(res.ExitCode)
	}
	return nil
}

// parseEnvPairs converts KEY=VALUE flags into a map.
func parseEnvPairs(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	env := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --env %q: expected KEY=VALUE", p)
		}
		env[k] = v
	}
	return env, nil
}
