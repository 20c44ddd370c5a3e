package audit

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// OpenFile opens the audit log at path for appending with mode 0600,
// creating parent directories as needed. An existing log with wider
// permissions is tightened to 0600. The returned file must be closed by
// the caller.
func OpenFile(path string) (*Logger, *os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, nil, fmt.Errorf("create audit directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open audit log: %w", err)
	}
	if err := f.Chmod(0o600); err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("restrict audit log: %w", err)
	}
	return NewLogger(f), f, nil
}

// Filter selects events when reading the audit trail back.
// Zero-valued fields match everything.
type Filter struct {
	Type  EventType
	User  string
	Limit int // most recent N matches; 0 means no limit
}

// Match reports whether e satisfies the filter's Type and User.
func (f Filter) Match(e *Event) bool {
	if f.Type != "" && e.Type != f.Type {
		return false
	}
	if f.User != "" && e.User != f.User {
		return false
	}
	return true
}

// ReadFile reads events from an audit log file. Lines that do not parse are
// skipped. A missing file yields no events.
func ReadFile(path string, f Filter) ([]Event, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	defer func() { _ = file.Close() }()

	return Read(file, f)
}

// Read parses events from r, applying the filter.
func Read(r io.Reader, f Filter) ([]Event, error) {
	var events []Event
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		e, err := ParseLine(scanner.Text())
		if err != nil {
			continue
		}
		if f.Match(e) {
			events = append(events, *e)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read audit log: %w", err)
	}

	if f.Limit > 0 && len(events) > f.Limit {
		events = events[len(events)-f.Limit:]
	}
	return events, nil
}

// ParseLine parses a line produced by Event.Format.
func ParseLine(line string) (*Event, error) {
	line = strings.TrimSpace(line)

	head := strings.SplitN(line, " ", 4)
	if len(head) < 3 {
		return nil, fmt.Errorf("audit: malformed line")
	}

	ts, err := time.Parse(time.RFC3339, head[0])
	if err != nil {
		return nil, fmt.Errorf("audit: bad timestamp: %w", err)
	}
	if head[1] != "ACCESS" && head[1] != "EXEC" {
		return nil, fmt.Errorf("audit: unknown category %q", head[1])
	}

	e := &Event{Timestamp: ts, Type: EventType(head[2])}
	if e.Type.Category() != head[1] {
		return nil, fmt.Errorf("audit: event %s does not belong to %s", head[2], head[1])
	}
	if len(head) == 3 {
		return e, nil
	}

	fields, err := parseFields(head[3])
	if err != nil {
		return nil, err
	}
	for key, value := range fields {
		switch key {
		case "user":
			e.User = value
		case "role":
			e.Role = value
		case "session":
			e.Session = value
		case "op":
			e.Operation = value
		case "permission":
			e.Permission = value
		case "required_role":
			e.RequiredRole = value
		case "reason":
			e.Reason = value
		case "cmd":
			e.Cmd = value
		case "exit":
			if e.ExitCode, err = strconv.Atoi(value); err != nil {
				return nil, fmt.Errorf("audit: bad exit code %q", value)
			}
		case "duration":
			if e.Duration, err = time.ParseDuration(value); err != nil {
				return nil, fmt.Errorf("audit: bad duration %q", value)
			}
		}
	}
	return e, nil
}

// parseFields splits `key=value key="quoted value"` pairs.
func parseFields(s string) (map[string]string, error) {
	fields := make(map[string]string)
	for {
		s = strings.TrimLeft(s, " ")
		if s == "" {
			return fields, nil
		}

		eq := strings.IndexByte(s, '=')
		if eq <= 0 {
			return nil, fmt.Errorf("audit: malformed field in %q", s)
		}
		key := s[:eq]
		s = s[eq+1:]

		if strings.HasPrefix(s, `"`) {
			quoted, err := strconv.QuotedPrefix(s)
			if err != nil {
				return nil, fmt.Errorf("audit: bad quoted value for %s: %w", key, err)
			}
			value, err := strconv.Unquote(quoted)
			if err != nil {
				return nil, fmt.Errorf("audit: bad quoted value for %s: %w", key, err)
			}
			fields[key] = value
			s = s[len(quoted):]
			continue
		}

		end := strings.IndexByte(s, ' ')
		if end < 0 {
			end = len(s)
		}
		fields[key] = s[:end]
		s = s[end:]
	}
}
