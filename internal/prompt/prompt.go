// Package prompt asks the user to confirm destructive actions. The
// Confirmer interface lets commands be tested with scripted answers.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrNotInteractive is returned when confirmation is needed but stdin is
// not a terminal.
var ErrNotInteractive = errors.New("confirmation required but stdin is not a terminal")

// Confirmer asks a yes/no question.
type Confirmer interface {
	// Confirm displays question and returns the answer. Empty input
	// selects defaultYes.
	Confirm(question string, defaultYes bool) (bool, error)
}

// Terminal confirms on an interactive terminal.
type Terminal struct {
	In  io.Reader
	Out io.Writer

	// Interactive reports whether In is a terminal. Nil means check In
	// when it is an *os.File.
	Interactive func() bool
}

// NewTerminal creates a Terminal reading from stdin and writing to w.
func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{In: os.Stdin, Out: w}
}

func (t *Terminal) interactive() bool {
	if t.Interactive != nil {
		return t.Interactive()
	}
	f, ok := t.In.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // fd fits in int
}

// Confirm prints "question [y/N] " (or "[Y/n]") and reads one line.
// Accepts y/yes and n/no in any case. Refuses with ErrNotInteractive when
// stdin is not a terminal so scripts must opt in explicitly.
func (t *Terminal) Confirm(question string, defaultYes bool) (bool, error) {
	if !t.interactive() {
		return false, ErrNotInteractive
	}

	hint := "[y/N]"
	if defaultYes {
		hint = "[Y/n]"
	}
	_, _ = fmt.Fprintf(t.Out, "%s %s ", question, hint)

	line, err := bufio.NewReader(t.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read input: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "":
		return defaultYes, nil
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	default:
		return false, fmt.Errorf("invalid input %q: expected y/n", strings.TrimSpace(line))
	}
}

// Scripted answers Confirm from a queue, for tests.
type Scripted struct {
	Answers []bool
	Err     error

	// Questions records every question asked.
	Questions []string
}

// Confirm returns the next queued answer, or defaultYes when the queue is
// empty.
func (s *Scripted) Confirm(question string, defaultYes bool) (bool, error) {
	s.Questions = append(s.Questions, question)
	if s.Err != nil {
		return false, s.Err
	}
	if len(s.Answers) == 0 {
		return defaultYes, nil
	}
	answer := s.Answers[0]
	s.Answers = s.Answers[1:]
	return answer, nil
}
