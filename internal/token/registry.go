package token

import (
	"crypto/sha256"
	"sync"
)

// Registry maps session tokens to values of type T. Entries are keyed by
// the SHA-256 digest of the token, so the map never holds a usable
// credential. Malformed tokens are rejected before any lookup.
type Registry[T any] struct {
	mu      sync.RWMutex
	entries map[[sha256.Size]byte]T
}

// NewRegistry returns an empty registry.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{entries: make(map[[sha256.Size]byte]T)}
}

func digest(tok string) [sha256.Size]byte {
	return sha256.Sum256([]byte(tok))
}

// Register stores value under tok, replacing any previous value. Tokens
// that Valid rejects are ignored and Register reports false.
func (r *Registry[T]) Register(tok string, value T) bool {
	if !Valid(tok) {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[digest(tok)] = value
	return true
}

// Lookup returns the value stored under tok.
func (r *Registry[T]) Lookup(tok string) (T, bool) {
	var zero T
	if !Valid(tok) {
		return zero, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.entries[digest(tok)]
	return v, ok
}

// Update applies fn to the value under tok while holding the write lock.
// fn returns the new value and whether it changed anything; Update reports
// false for unknown tokens or when fn made no change.
func (r *Registry[T]) Update(tok string, fn func(T) (T, bool)) bool {
	if !Valid(tok) {
		return false
	}
	key := digest(tok)
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.entries[key]
	if !ok {
		return false
	}
	v, changed := fn(v)
	if changed {
		r.entries[key] = v
	}
	return changed
}

// Values returns a snapshot of every stored value in no particular order.
func (r *Registry[T]) Values() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]T, 0, len(r.entries))
	for _, v := range r.entries {
		out = append(out, v)
	}
	return out
}
