// Package auth implements the single-identity admin login: credential
// verification, session issuance and the HTTP handlers around them.
package auth

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the cost the original deployment hashed with.
const bcryptCost = 12

// Credentials holds the administrative identity. The plaintext password is
// hashed once at startup and discarded; neither it nor the hash is ever
// logged or returned.
type Credentials struct {
	email string
	hash  []byte
}

// NewCredentials builds the admin credentials. When precomputedHash is
// non-empty it is used as-is (ADMIN_PASSWORD_HASH), otherwise the plaintext
// password is hashed at cost 12.
func NewCredentials(email, password, precomputedHash string) (*Credentials, error) {
	if precomputedHash != "" {
		if _, err := bcrypt.Cost([]byte(precomputedHash)); err != nil {
			return nil, fmt.Errorf("invalid ADMIN_PASSWORD_HASH: %w", err)
		}
		return &Credentials{email: email, hash: []byte(precomputedHash)}, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing admin password: %w", err)
	}
	return &Credentials{email: email, hash: hash}, nil
}

// Email returns the configured admin email.
func (c *Credentials) Email() string {
	return c.email
}

// MatchesEmail compares in constant time.
func (c *Credentials) MatchesEmail(candidate string) bool {
	return subtle.ConstantTimeCompare([]byte(c.email), []byte(candidate)) == 1
}

// VerifyPassword checks a candidate password against the stored hash.
func (c *Credentials) VerifyPassword(candidate string) bool {
	return bcrypt.CompareHashAndPassword(c.hash, []byte(candidate)) == nil
}
