package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigCmd_HasSubcommands(t *testing.T) {
	subCmds := configCmd.Commands()
	if len(subCmds) == 0 {
		t.Fatal("config command should have subcommands")
	}

	expected := map[string]bool{
		"show": false,
		"edit": false,
		"path": false,
		"init": false,
	}

	for _, cmd := range subCmds {
		if _, ok := expected[cmd.Name()]; ok {
			expected[cmd.Name()] = true
		}
	}

	for name, found := range expected {
		if !found {
			t.Errorf("missing subcommand: %s", name)
		}
	}
}

func TestConfigPath_PrintsPath(t *testing.T) {
	env := setupCmdTest(t, "")
	flagConfig = ""
	configHome := os.Getenv("XDG_CONFIG_HOME")

	runConfigPath(testCommand(t), nil)

	want := filepath.Join(configHome, "labguard", "config.yaml") + "\n"
	if got := env.stdout.String(); got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
}

func TestConfigPath_HonorsFlag(t *testing.T) {
	env := setupCmdTest(t, "")
	want := flagConfig + "\n"

	runConfigPath(testCommand(t), nil)

	if got := env.stdout.String(); got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
}

func TestConfigInit_CreatesFile(t *testing.T) {
	setupCmdTest(t, "")
	configHome := os.Getenv("XDG_CONFIG_HOME")

	if err := runConfigInit(testCommand(t), nil); err != nil {
		t.Fatalf("runConfigInit() error = %v", err)
	}

	configPath := filepath.Join(configHome, "labguard", "config.yaml")
	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("config file not created: %v", err)
	}
	if info.Size() == 0 {
		t.Error("config file should not be empty")
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config file mode = %o, want 600", perm)
	}
}

func TestConfigShow_UsesDefaults(t *testing.T) {
	env := setupCmdTest(t, "")
	flagConfig = ""

	if err := runConfigShow(testCommand(t), nil); err != nil {
		t.Fatalf("runConfigShow() error = %v", err)
	}

	out := env.stdout.String()
	for _, want := range []string{"data_scientist:", "default_timeout: 30s", "driver: file", "JUPYTER_TOKEN"} {
		if !strings.Contains(out, want) {
			t.Errorf("config show missing %q:\n%s", want, out)
		}
	}
}

func TestConfigShow_InvalidFile(t *testing.T) {
	setupCmdTest(t, "audit:\n  driver: postgres\n")

	if err := runConfigShow(testCommand(t), nil); err == nil {
		t.Error("expected error for invalid audit.driver")
	}
}

func TestConfigInit_ForceWritesEffectiveConfig(t *testing.T) {
	setupCmdTest(t, "runner:\n  default_timeout: 45s\n")
	configInitForce = true
	t.Cleanup(func() { configInitForce = false })

	if err := runConfigInit(testCommand(t), nil); err != nil {
		t.Fatalf("runConfigInit() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "labguard", "config.yaml"))
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if !strings.Contains(string(data), "default_timeout: 45s") {
		t.Errorf("written config lacks loaded value:\n%s", data)
	}
}
