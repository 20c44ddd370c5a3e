// Package audit records security-relevant decisions as an append-only trail.
// Each entry is one line in a key=value format suitable for grepping and for
// parsing back with ParseLine.
package audit

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"
)

// EventType represents the type of an audit event.
type EventType string

// Event types for session and authorization decisions.
const (
	EventSessionCreate EventType = "SESSION_CREATE"
	EventSessionRevoke EventType = "SESSION_REVOKE"
	EventAuthorized    EventType = "AUTHORIZED"
	EventDenied        EventType = "DENIED"
)

// Event types for command execution.
const (
	EventCommandComplete EventType = "COMPLETE"
	EventCommandTimeout  EventType = "TIMEOUT"
	EventCommandRejected EventType = "REJECTED"
)

// Category returns the log category for an event type: ACCESS for session
// and authorization events, EXEC for command execution events.
func (t EventType) Category() string {
	switch t {
	case EventCommandComplete, EventCommandTimeout, EventCommandRejected:
		return "EXEC"
	default:
		return "ACCESS"
	}
}

// Outcome returns "authorized" or "denied" for decision events and the
// empty string for everything else.
func (t EventType) Outcome() string {
	switch t {
	case EventAuthorized:
		return "authorized"
	case EventDenied:
		return "denied"
	default:
		return ""
	}
}

// Event represents a single audit log entry.
type Event struct {
	// Timestamp is when the event occurred.
	Timestamp time.Time

	// Type is the event type (SESSION_CREATE, DENIED, etc.)
	Type EventType

	// User is the actor's user identifier.
	User string

	// Role is the actor's role.
	Role string

	// Session is the session ID. Never the session token.
	Session string

	// Operation is the guarded operation name.
	Operation string

	// Permission is the permission checked (AUTHORIZED/DENIED).
	Permission string

	// RequiredRole is the role checked for role-guarded operations.
	RequiredRole string

	// Reason explains a denial or rejection.
	Reason string

	// Cmd is the executable for EXEC events.
	Cmd string

	// ExitCode is the command exit code (COMPLETE events).
	ExitCode int

	// Duration is the execution time (COMPLETE events).
	Duration time.Duration
}

// Format returns the log entry as a single line without trailing newline.
//
//	2024-01-15T14:32:05Z ACCESS DENIED user="alice" role="viewer" op="delete_dataset" permission="delete" reason="missing permission"
//	2024-01-15T14:32:05Z EXEC COMPLETE user="alice" cmd="echo" exit=0 duration=1.2ms
func (e *Event) Format() string {
	var b strings.Builder

	b.WriteString(e.Timestamp.UTC().Format(time.RFC3339))
	b.WriteString(" ")
	b.WriteString(e.Type.Category())
	b.WriteString(" ")
	b.WriteString(string(e.Type))

	writeField(&b, "user", e.User)

	if e.Type.Category() == "EXEC" {
		writeField(&b, "cmd", e.Cmd)
		switch e.Type {
		case EventCommandComplete:
			b.WriteString(" exit=")
			b.WriteString(strconv.Itoa(e.ExitCode))
			b.WriteString(" duration=")
			b.WriteString(formatDuration(e.Duration))
		case EventCommandTimeout:
			b.WriteString(" duration=")
			b.WriteString(formatDuration(e.Duration))
		}
		writeOptionalField(&b, "reason", e.Reason)
		return b.String()
	}

	writeField(&b, "role", e.Role)
	writeOptionalField(&b, "session", e.Session)
	writeOptionalField(&b, "op", e.Operation)
	if outcome := e.Type.Outcome(); outcome != "" {
		b.WriteString(" outcome=")
		b.WriteString(outcome)
	}
	writeOptionalField(&b, "permission", e.Permission)
	writeOptionalField(&b, "required_role", e.RequiredRole)
	writeOptionalField(&b, "reason", e.Reason)

	return b.String()
}

// writeField appends " key=quoted_value" to the builder.
func writeField(b *strings.Builder, key, value string) {
	b.WriteString(" ")
	b.WriteString(key)
	b.WriteString("=")
	b.WriteString(strconv.Quote(value))
}

// writeOptionalField is writeField for values that are omitted when empty.
func writeOptionalField(b *strings.Builder, key, value string) {
	if value == "" {
		return
	}
	writeField(b, key, value)
}

// formatDuration formats a duration as a short human-readable string (e.g., "2.3s", "1m30s").
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.1fms", float64(d)/float64(time.Millisecond))
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return d.Round(time.Second).String()
}

// Recorder persists audit events.
type Recorder interface {
	Record(e *Event) error
}

// Logger writes audit events to an io.Writer, one line per event.
type Logger struct {
	mu sync.Mutex
	w  io.Writer
}

// NewLogger creates a new audit logger that writes to the given writer.
func NewLogger(w io.Writer) *Logger {
	return &Logger{w: w}
}

// Record writes an event to the audit log. A nil Logger discards events.
func (l *Logger) Record(e *Event) error {
	if l == nil || l.w == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := io.WriteString(l.w, e.Format()+"\n"); err != nil {
		return fmt.Errorf("write audit event: %w", err)
	}
	return nil
}

// multi fans events out to several recorders.
type multi []Recorder

// Multi returns a Recorder that records to every non-nil recorder in order.
// All recorders are attempted; the first error is returned.
func Multi(recorders ...Recorder) Recorder {
	var m multi
	for _, r := range recorders {
		if r != nil {
			m = append(m, r)
		}
	}
	return m
}

func (m multi) Record(e *Event) error {
	var firstErr error
	for _, r := range m {
		if err := r.Record(e); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
