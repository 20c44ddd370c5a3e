// Package access implements role-based access control for in-process
// operations. A Guard issues opaque session tokens bound to a user and a
// role, checks operations against a static role→permission table, and
// records every decision to an audit trail.
package access

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xdg/labguard/internal/audit"
	"github.com/xdg/labguard/internal/clog"
	"github.com/xdg/labguard/internal/token"
)

// Session is the state behind a token. The token itself is not stored in
// the struct so a Session can be logged or returned safely.
type Session struct {
	ID        string
	User      string
	Role      string
	CreatedAt time.Time
	Revoked   bool
}

// Guard holds the role table, the live sessions and the audit sink.
type Guard struct {
	roles    map[string]map[string]struct{}
	table    Roles
	sessions *token.Registry[Session]
	recorder audit.Recorder
	maxAge   time.Duration
	now      func() time.Time
}

// Option configures a Guard.
type Option func(*Guard)

// WithMaxAge expires sessions older than d. Zero disables expiry.
func WithMaxAge(d time.Duration) Option {
	return func(g *Guard) {
		g.maxAge = d
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(g *Guard) {
		g.now = now
	}
}

// New creates a Guard for the given role table. A nil recorder disables
// auditing.
func New(roles Roles, recorder audit.Recorder, opts ...Option) (*Guard, error) {
	if err := roles.Validate(); err != nil {
		return nil, fmt.Errorf("access: %w", err)
	}

	g := &Guard{
		roles:    make(map[string]map[string]struct{}, len(roles)),
		table:    make(Roles, len(roles)),
		sessions: token.NewRegistry[Session](),
		recorder: recorder,
		now:      time.Now,
	}
	for role, perms := range roles {
		set := make(map[string]struct{}, len(perms))
		for _, p := range perms {
			set[p] = struct{}{}
		}
		g.roles[role] = set
		g.table[role] = slices.Clone(perms)
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Roles returns the sorted role names known to the guard.
func (g *Guard) Roles() []string {
	return g.table.Names()
}

// Permissions returns the permissions granted by role, sorted, or nil for
// unknown roles.
func (g *Guard) Permissions(role string) []string {
	perms, ok := g.table[role]
	if !ok {
		return nil
	}
	out := slices.Clone(perms)
	slices.Sort(out)
	return slices.Compact(out)
}

// HasPermission reports whether role grants perm.
func (g *Guard) HasPermission(role, perm string) bool {
	_, ok := g.roles[role][perm]
	return ok
}

// CreateSession starts a session for user with role and returns its token.
// The token is the only credential; keep it out of logs.
func (g *Guard) CreateSession(user, role string) (string, error) {
	if _, ok := g.roles[role]; !ok {
		return "", fmt.Errorf("%w: %q (known roles: %s)", ErrUnknownRole, role, strings.Join(g.Roles(), ", "))
	}

	tok := token.New()
	s := Session{
		ID:        uuid.NewString(),
		User:      user,
		Role:      role,
		CreatedAt: g.now(),
	}
	g.sessions.Register(tok, s)

	clog.Debug("session %s created for user %s (role %s)", s.ID, user, role)
	g.record(&audit.Event{
		Type:    audit.EventSessionCreate,
		User:    user,
		Role:    role,
		Session: s.ID,
	})
	return tok, nil
}

// GetSession returns the active session for tok. Unknown, revoked and
// expired tokens all report false.
func (g *Guard) GetSession(tok string) (Session, bool) {
	s, ok := g.sessions.Lookup(tok)
	if !ok || s.Revoked || g.expired(s) {
		return Session{}, false
	}
	return s, true
}

// RevokeSession invalidates tok. It reports whether a live session was
// revoked; revoking twice, or revoking an unknown token, returns false.
func (g *Guard) RevokeSession(tok string) bool {
	var revoked Session
	changed := g.sessions.Update(tok, func(s Session) (Session, bool) {
		if s.Revoked {
			return s, false
		}
		s.Revoked = true
		revoked = s
		return s, true
	})
	if !changed {
		return false
	}

	clog.Debug("session %s revoked", revoked.ID)
	g.record(&audit.Event{
		Type:    audit.EventSessionRevoke,
		User:    revoked.User,
		Role:    revoked.Role,
		Session: revoked.ID,
	})
	return true
}

// Authorize checks that tok identifies an active session satisfying req for
// operation. Every call produces exactly one AUTHORIZED or DENIED audit
// event, written before Authorize returns.
func (g *Guard) Authorize(tok, operation string, req Requirement) (Session, error) {
	event := &audit.Event{
		Operation:    operation,
		Permission:   req.permission,
		RequiredRole: req.role,
	}

	s, ok := g.GetSession(tok)
	if !ok {
		event.Type = audit.EventDenied
		event.Reason = "no active session"
		g.record(event)
		clog.Warn("denied %s: no active session", operation)
		return Session{}, ErrAuthentication
	}

	event.User = s.User
	event.Role = s.Role
	event.Session = s.ID

	var allowed bool
	if req.IsRole() {
		allowed = s.Role == req.role
	} else {
		allowed = g.HasPermission(s.Role, req.permission)
	}

	if !allowed {
		event.Type = audit.EventDenied
		if req.IsRole() {
			event.Reason = "missing role"
		} else {
			event.Reason = "missing permission"
		}
		g.record(event)
		clog.Warn("denied %s for user %s: %s %s", operation, s.User, event.Reason, req)
		return Session{}, &AuthorizationError{
			Operation:    operation,
			User:         s.User,
			Role:         s.Role,
			Permission:   req.permission,
			RequiredRole: req.role,
		}
	}

	event.Type = audit.EventAuthorized
	g.record(event)
	clog.Debug("authorized %s for user %s (%s)", operation, s.User, req)
	return s, nil
}

// ActiveSessions returns the number of sessions that are neither revoked
// nor expired.
func (g *Guard) ActiveSessions() int {
	n := 0
	for _, s := range g.sessions.Values() {
		if !s.Revoked && !g.expired(s) {
			n++
		}
	}
	return n
}

func (g *Guard) expired(s Session) bool {
	return g.maxAge > 0 && g.now().Sub(s.CreatedAt) > g.maxAge
}

// record stamps and writes an audit event. Audit write failures are logged
// and do not change the decision.
func (g *Guard) record(e *audit.Event) {
	if g.recorder == nil {
		return
	}
	e.Timestamp = g.now()
	if err := g.recorder.Record(e); err != nil {
		clog.Error("audit write failed: %v", err)
	}
}
