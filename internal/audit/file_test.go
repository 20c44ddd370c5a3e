package audit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseLine_RoundTrip(t *testing.T) {
	events := []Event{
		{Timestamp: testTime, Type: EventDenied, User: "bob", Role: "viewer", Session: "s-1",
			Operation: "delete_dataset", Permission: "delete", Reason: `has "quotes" and = signs`},
		{Timestamp: testTime, Type: EventCommandComplete, User: "alice", Cmd: "docker", ExitCode: 2,
			Duration: 2300 * time.Millisecond},
	}

	for _, want := range events {
		got, err := ParseLine(want.Format())
		if err != nil {
			t.Fatalf("ParseLine(%q) error = %v", want.Format(), err)
		}
		if *got != want {
			t.Errorf("ParseLine() =\n  got:  %+v\n  want: %+v", *got, want)
		}
	}
}

func TestParseLine_Malformed(t *testing.T) {
	for _, line := range []string{
		"",
		"not a timestamp ACCESS DENIED",
		"2024-01-15T14:32:05Z OTHER DENIED",
		"2024-01-15T14:32:05Z EXEC DENIED",
		`2024-01-15T14:32:05Z ACCESS DENIED user="unterminated`,
		"2024-01-15T14:32:05Z EXEC COMPLETE exit=abc",
	} {
		if _, err := ParseLine(line); err == nil {
			t.Errorf("ParseLine(%q) expected error", line)
		}
	}
}

func TestOpenFileAndReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "audit.log")

	l, f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	for _, e := range []Event{
		{Timestamp: testTime, Type: EventSessionCreate, User: "alice", Role: "admin"},
		{Timestamp: testTime, Type: EventDenied, User: "bob", Role: "viewer", Operation: "split_data"},
		{Timestamp: testTime, Type: EventDenied, User: "alice", Role: "admin", Operation: "x"},
		{Timestamp: testTime, Type: EventAuthorized, User: "alice", Role: "admin", Operation: "y"},
	} {
		if err := l.Record(&e); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}
	_ = f.Close()

	// Garbage lines are skipped.
	af, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = af.WriteString("garbage line\n")
	_ = af.Close()

	all, err := ReadFile(path, Filter{})
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 events, got %d", len(all))
	}

	denied, _ := ReadFile(path, Filter{Type: EventDenied})
	if len(denied) != 2 {
		t.Errorf("expected 2 denied events, got %d", len(denied))
	}

	aliceLast, _ := ReadFile(path, Filter{User: "alice", Limit: 1})
	if len(aliceLast) != 1 || aliceLast[0].Type != EventAuthorized {
		t.Errorf("expected most recent alice event to be AUTHORIZED, got %+v", aliceLast)
	}
}

func TestReadFile_Missing(t *testing.T) {
	events, err := ReadFile(filepath.Join(t.TempDir(), "nope.log"), Filter{})
	if err != nil || events != nil {
		t.Errorf("ReadFile(missing) = %v, %v; want nil, nil", events, err)
	}
}

func TestOpenFile_Permissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	_, f, err := OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("audit log mode = %v, want 0600", perm)
	}
	if !strings.HasSuffix(f.Name(), "audit.log") {
		t.Errorf("unexpected file name %s", f.Name())
	}
}

func TestOpenFile_TightensExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	if err := os.WriteFile(path, []byte("existing\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, f, err := OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("audit log mode = %v, want 0600", perm)
	}
}
