package auth

import (
	"crypto/subtle"
	"errors"
)

var (
	ErrTokenMissing = errors.New("bearer token required")
	ErrTokenInvalid = errors.New("invalid token")
)

// AuthContext describes the caller of an authenticated HTTP request.
type AuthContext struct {
	TokenID string // masked form of the presented token
}

// TokenSet is the fixed set of bearer tokens accepted by the HTTP surface.
// An empty set disables authentication.
type TokenSet struct {
	tokens [][]byte
}

// NewTokenSet builds a TokenSet, skipping empty entries.
func NewTokenSet(tokens []string) *TokenSet {
	ts := &TokenSet{}
	for _, t := range tokens {
		if t != "" {
			ts.tokens = append(ts.tokens, []byte(t))
		}
	}
	return ts
}

// Enabled reports whether any token is configured.
func (ts *TokenSet) Enabled() bool {
	return ts != nil && len(ts.tokens) > 0
}

// Validate checks a presented token in constant time per candidate.
func (ts *TokenSet) Validate(token string) error {
	if token == "" {
		return ErrTokenMissing
	}
	presented := []byte(token)
	match := 0
	for _, t := range ts.tokens {
		match |= subtle.ConstantTimeCompare(presented, t)
	}
	if match != 1 {
		return ErrTokenInvalid
	}
	return nil
}
