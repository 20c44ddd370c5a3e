package token

import (
	"slices"
	"sync"
	"testing"
)

type entry struct {
	user    string
	revoked bool
}

func TestRegistry_RegisterLookup(t *testing.T) {
	r := NewRegistry[entry]()
	tok := New()

	if _, ok := r.Lookup(tok); ok {
		t.Error("unregistered token should not be found")
	}

	if !r.Register(tok, entry{user: "alice"}) {
		t.Fatal("Register() = false for an issued token")
	}
	got, ok := r.Lookup(tok)
	if !ok || got.user != "alice" {
		t.Errorf("Lookup() = %+v, %v", got, ok)
	}

	r.Register(tok, entry{user: "bob"})
	if got, _ := r.Lookup(tok); got.user != "bob" {
		t.Errorf("Register should replace, got %+v", got)
	}
	if n := len(r.Values()); n != 1 {
		t.Errorf("len(Values()) = %d, want 1", n)
	}
}

func TestRegistry_RejectsMalformed(t *testing.T) {
	r := NewRegistry[entry]()

	for _, tok := range []string{"", "tok1", "../../etc/passwd"} {
		if r.Register(tok, entry{user: "mallory"}) {
			t.Errorf("Register(%q) = true", tok)
		}
		if _, ok := r.Lookup(tok); ok {
			t.Errorf("Lookup(%q) found a value", tok)
		}
	}
	if n := len(r.Values()); n != 0 {
		t.Errorf("len(Values()) = %d, want 0", n)
	}
}

func TestRegistry_Update(t *testing.T) {
	r := NewRegistry[entry]()
	tok := New()
	r.Register(tok, entry{user: "alice"})

	revoke := func(e entry) (entry, bool) {
		if e.revoked {
			return e, false
		}
		e.revoked = true
		return e, true
	}

	if !r.Update(tok, revoke) {
		t.Error("first update should report a change")
	}
	if r.Update(tok, revoke) {
		t.Error("second update should report no change")
	}
	if r.Update(New(), revoke) {
		t.Error("update of unknown token should report false")
	}

	if got, _ := r.Lookup(tok); !got.revoked {
		t.Error("update was not stored")
	}
}

func TestRegistry_Values(t *testing.T) {
	r := NewRegistry[string]()
	r.Register(New(), "alice")
	r.Register(New(), "bob")

	vals := r.Values()
	slices.Sort(vals)
	if !slices.Equal(vals, []string{"alice", "bob"}) {
		t.Errorf("Values() = %v", vals)
	}
}

func TestRegistry_Concurrent(t *testing.T) {
	r := NewRegistry[int]()
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Go(func() {
			tok := New()
			r.Register(tok, i)
			_, _ = r.Lookup(tok)
			r.Update(tok, func(v int) (int, bool) { return v + 1, true })
		})
	}
	wg.Wait()
	if n := len(r.Values()); n != 50 {
		t.Errorf("len(Values()) = %d, want 50", n)
	}
}
