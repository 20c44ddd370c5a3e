package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/xdg/labguard/internal/clog"
	"github.com/xdg/labguard/internal/executor"
)

// editorTimeout bounds an interactive editing session.
const editorTimeout = 12 * time.Hour

// EditGlobalConfig opens the configuration file in the user's editor,
// creating the default file first if needed. The editor comes from
// $VISUAL or $EDITOR, falling back to "vi", and is split on whitespace
// into an argument vector; it is never passed to a shell. After the
// editor exits the file is reloaded; validation errors are returned so the
// caller can report them, but the edited file is kept.
func EditGlobalConfig(ctx context.Context, exec executor.Executor) error {
	path := GlobalConfigPath()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := WriteDefaultConfig(); err != nil {
			return fmt.Errorf("create default config: %w", err)
		}
	}

	args := EditorCommand(path)
	res, err := exec.Run(ctx, executor.Command{Args: args, Timeout: editorTimeout, Interactive: true})
	if err != nil {
		return fmt.Errorf("editor %q failed: %w", args[0], err)
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("editor %q exited with status %d", args[0], res.ExitCode)
	}

	if _, err := LoadFrom(path); err != nil {
		clog.Warn("config has errors after edit: %v", err)
		return err
	}
	return nil
}

// EditorCommand returns the argument vector that opens path in the user's
// editor.
func EditorCommand(path string) []string {
	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	args := strings.Fields(editor)
	if len(args) == 0 {
		args = []string{"vi"}
	}
	return append(args, path)
}
