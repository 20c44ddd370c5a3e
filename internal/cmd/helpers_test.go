package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/xdg/labguard/internal/clog"
	"github.com/xdg/labguard/internal/term"
)

// cmdEnv is an isolated labguard installation for command tests.
type cmdEnv struct {
	root      string // paths.root
	state     string // XDG_STATE_HOME
	auditPath string
	stdout    *bytes.Buffer
	stderr    *bytes.Buffer
}

// setupCmdTest points every XDG directory at temp dirs, writes a config
// file whose paths.root is a temp dir followed by extraYAML, selects it
// with --config and captures terminal output.
func setupCmdTest(t *testing.T, extraYAML string) *cmdEnv {
	t.Helper()

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	state := t.TempDir()
	t.Setenv("XDG_STATE_HOME", state)

	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	data := fmt.Sprintf("paths:\n  root: %s\n%s", root, extraYAML)
	if err := os.WriteFile(cfgPath, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	env := &cmdEnv{
		root:      root,
		state:     state,
		auditPath: filepath.Join(state, "labguard", "audit.log"),
		stdout:    &bytes.Buffer{},
		stderr:    &bytes.Buffer{},
	}

	term.SetOutput(env.stdout)
	term.SetErrOutput(env.stderr)
	clog.Discard()

	oldConfig, oldDebug, oldSilent := flagConfig, flagDebug, flagSilent
	flagConfig = cfgPath
	flagDebug, flagSilent = false, false

	t.Cleanup(func() {
		flagConfig, flagDebug, flagSilent = oldConfig, oldDebug, oldSilent
		term.Reset()
		_ = clog.Close()
		clog.Reset()
	})
	return env
}

// writeFile creates path under the env root with content.
func (e *cmdEnv) writeFile(t *testing.T, rel, content string) string {
	t.Helper()
	p := filepath.Join(e.root, rel)
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

// testCommand returns a command carrying a background context, as
// ExecuteContext would provide.
func testCommand(t *testing.T) *cobra.Command {
	t.Helper()
	c := &cobra.Command{}
	c.SetContext(t.Context())
	return c
}
