// Package token issues the opaque session credentials handed out by the
// access guard and maps them to session state.
package token //nolint:revive // intentional: does not conflict at import path level

import (
	"crypto/rand"
	"encoding/hex"
)

// Size is the number of random bytes behind a session token (256 bits).
const Size = 32

// New returns a fresh session token: Size bytes from crypto/rand encoded as
// lowercase hex.
func New() string {
	b := make([]byte, Size)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand.Read does not fail on supported platforms.
		panic("token: crypto/rand: " + err.Error())
	}
	return hex.EncodeToString(b)
}

// Valid reports whether s has the shape of a token returned by New.
func Valid(s string) bool {
	if len(s) != 2*Size {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
