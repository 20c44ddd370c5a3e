package access

// Func is an operation guarded by a session token.
type Func[In, Out any] func(tok string, in In) (Out, error)

// RequirePermission wraps fn so that it runs only when tok's role grants
// perm. The audit trail names the operation op.
func RequirePermission[In, Out any](g *Guard, perm, op string, fn func(Session, In) (Out, error)) Func[In, Out] {
	return guarded(g, Permission(perm), op, fn)
}

// RequireRole wraps fn so that it runs only when tok's session holds role.
func RequireRole[In, Out any](g *Guard, role, op string, fn func(Session, In) (Out, error)) Func[In, Out] {
	return guarded(g, Role(role), op, fn)
}

func guarded[In, Out any](g *Guard, req Requirement, op string, fn func(Session, In) (Out, error)) Func[In, Out] {
	return func(tok string, in In) (Out, error) {
		s, err := g.Authorize(tok, op, req)
		if err != nil {
			var zero Out
			return zero, err
		}
		return fn(s, in)
	}
}
