package prompt

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func interactive() bool { return true }

func TestTerminal_Confirm(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		defaultYes bool
		want       bool
		wantErr    bool
	}{
		{name: "y", input: "y\n", want: true},
		{name: "YES", input: "YES\n", want: true},
		{name: "n", input: "n\n", defaultYes: true, want: false},
		{name: "no with spaces", input: "  no \n", defaultYes: true, want: false},
		{name: "empty uses default no", input: "\n", want: false},
		{name: "empty uses default yes", input: "\n", defaultYes: true, want: true},
		{name: "EOF uses default", input: "", defaultYes: true, want: true},
		{name: "answer without newline", input: "y", want: true},
		{name: "invalid", input: "maybe\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			c := &Terminal{In: strings.NewReader(tt.input), Out: &out, Interactive: interactive}

			got, err := c.Confirm("Delete data.csv?", tt.defaultYes)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Confirm() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Confirm() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTerminal_ShowsHint(t *testing.T) {
	tests := []struct {
		defaultYes bool
		want       string
	}{
		{defaultYes: false, want: "Delete data.csv? [y/N] "},
		{defaultYes: true, want: "Delete data.csv? [Y/n] "},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		c := &Terminal{In: strings.NewReader("\n"), Out: &out, Interactive: interactive}
		if _, err := c.Confirm("Delete data.csv?", tt.defaultYes); err != nil {
			t.Fatal(err)
		}
		if out.String() != tt.want {
			t.Errorf("prompt = %q, want %q", out.String(), tt.want)
		}
	}
}

func TestTerminal_NotInteractive(t *testing.T) {
	var out bytes.Buffer
	// A strings.Reader is never a terminal.
	c := &Terminal{In: strings.NewReader("y\n"), Out: &out}

	ok, err := c.Confirm("Delete?", true)
	if !errors.Is(err, ErrNotInteractive) {
		t.Fatalf("Confirm() error = %v, want ErrNotInteractive", err)
	}
	if ok {
		t.Error("Confirm() should not approve without a terminal")
	}
	if out.Len() != 0 {
		t.Errorf("nothing should be printed, got %q", out.String())
	}
}

func TestScripted(t *testing.T) {
	s := &Scripted{Answers: []bool{false, true}}

	for i, want := range []bool{false, true, true} {
		got, err := s.Confirm("q", true)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("answer %d = %v, want %v", i, got, want)
		}
	}
	if len(s.Questions) != 3 {
		t.Errorf("recorded %d questions, want 3", len(s.Questions))
	}

	s = &Scripted{Err: errors.New("boom")}
	if _, err := s.Confirm("q", false); err == nil {
		t.Error("expected scripted error")
	}
}
