// Package term writes the CLI's user-facing output. Operational logs go
// through internal/clog and security decisions through internal/audit;
// nothing else in labguard prints directly.
//
// Normal output (Print, Printf, Println, Stdout) is dropped under --silent.
// Warn and Error always reach stderr.
package term

import (
	"fmt"
	"io"
	"os"
	"sync"

	xterm "golang.org/x/term"
)

type console struct {
	mu     sync.Mutex
	out    io.Writer
	err    io.Writer
	silent bool
	tty    *bool // nil: detect from out
}

var con = &console{out: os.Stdout, err: os.Stderr}

// stdout runs fn with the normal-output writer unless silent.
func (c *console) stdout(fn func(io.Writer)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.silent {
		fn(c.out)
	}
}

// diag writes "<prefix>: <message>\n" to stderr.
func (c *console) diag(prefix, format string, a []any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintf(c.err, "%s: %s\n", prefix, fmt.Sprintf(format, a...))
}

// SetSilent turns suppression of normal output on or off.
func SetSilent(s bool) {
	con.mu.Lock()
	defer con.mu.Unlock()
	con.silent = s
}

// IsSilent reports whether normal output is suppressed.
func IsSilent() bool {
	con.mu.Lock()
	defer con.mu.Unlock()
	return con.silent
}

// SetOutput redirects normal output; nil restores os.Stdout.
func SetOutput(w io.Writer) {
	con.mu.Lock()
	defer con.mu.Unlock()
	con.out = orDefault(w, os.Stdout)
}

// SetErrOutput redirects warnings and errors; nil restores os.Stderr.
func SetErrOutput(w io.Writer) {
	con.mu.Lock()
	defer con.mu.Unlock()
	con.err = orDefault(w, os.Stderr)
}

func orDefault(w io.Writer, def *os.File) io.Writer {
	if w == nil {
		return def
	}
	return w
}

// Print writes a like fmt.Print.
func Print(a ...any) {
	con.stdout(func(w io.Writer) { _, _ = fmt.Fprint(w, a...) })
}

// Printf writes a like fmt.Printf.
func Printf(format string, a ...any) {
	con.stdout(func(w io.Writer) { _, _ = fmt.Fprintf(w, format, a...) })
}

// Println writes a like fmt.Println.
func Println(a ...any) {
	con.stdout(func(w io.Writer) { _, _ = fmt.Fprintln(w, a...) })
}

// Warn writes "Warning: ..." to stderr.
func Warn(format string, a ...any) {
	con.diag("Warning", format, a)
}

// Error writes "Error: ..." to stderr.
func Error(format string, a ...any) {
	con.diag("Error", format, a)
}

// Stdout returns the normal-output writer, or io.Discard when silent. Used
// to stream a child process's captured output.
func Stdout() io.Writer {
	con.mu.Lock()
	defer con.mu.Unlock()
	if con.silent {
		return io.Discard
	}
	return con.out
}

// Stderr returns the diagnostics writer.
func Stderr() io.Writer {
	con.mu.Lock()
	defer con.mu.Unlock()
	return con.err
}

// Reset restores the defaults: os.Stdout, os.Stderr, not silent, TTY
// detected.
func Reset() {
	con.mu.Lock()
	defer con.mu.Unlock()
	con.out, con.err = os.Stdout, os.Stderr
	con.silent = false
	con.tty = nil
}

// Discard drops all output, warnings and errors included.
func Discard() {
	con.mu.Lock()
	defer con.mu.Unlock()
	con.out, con.err = io.Discard, io.Discard
}

// SetTTY forces terminal detection on or off. Pass nil to detect again.
func SetTTY(v *bool) {
	con.mu.Lock()
	defer con.mu.Unlock()
	con.tty = v
}

// IsTTY reports whether normal output goes to an interactive terminal.
func IsTTY() bool {
	con.mu.Lock()
	defer con.mu.Unlock()
	if con.tty != nil {
		return *con.tty
	}
	f, ok := con.out.(*os.File)
	return ok && xterm.IsTerminal(int(f.Fd())) //nolint:gosec // fd fits in int
}

var marks = map[string][2]string{
	"pass": {"✓", "[PASS]"},
	"fail": {"✗", "[FAIL]"},
	"skip": {"–", "[SKIP]"},
}

// Mark returns the report marker for a check status: a symbol on a
// terminal, a bracketed word otherwise so piped output stays greppable.
// Unknown statuses render as skip.
func Mark(status string) string {
	m, ok := marks[status]
	if !ok {
		m = marks["skip"]
	}
	if IsTTY() {
		return m[0]
	}
	return m[1]
}
