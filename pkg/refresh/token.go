// Package refresh provides ready-made credential refresh handlers for partner.Credentials:
// OAuth2 token sources, client credentials, and a token cache shared between processes
// through Redis, NATS JetStream key-value buckets, or a locked file.
package refresh

import (
	"time"

	"github.com/fivetwenty-io/partnercenter/internal/constants"
	"github.com/fivetwenty-io/partnercenter/pkg/partner"
)

// Token is a bearer token snapshot.
type Token struct {
	AccessToken string    `json:"access_token"         yaml:"access_token"`
	ExpiresAt   time.Time `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
}

// Valid reports whether the token can still be used for at least buffer. A token without
// expiry is valid as long as it is not empty.
func (t *Token) Valid(buffer time.Duration) bool {
	if t == nil || t.AccessToken == "" {
		return false
	}

	if t.ExpiresAt.IsZero() {
		return true
	}

	return time.Now().Add(buffer).Before(t.ExpiresAt)
}

// expiry returns the expiry to install on credentials.
func (t *Token) expiry() time.Time {
	if t.ExpiresAt.IsZero() {
		return partner.NoExpiry
	}

	return t.ExpiresAt
}

// ttl returns how long a store should keep the token. Zero means no limit; a negative value
// means the token is already expired.
func (t *Token) ttl() time.Duration {
	if t.ExpiresAt.IsZero() {
		return 0
	}

	return time.Until(t.ExpiresAt)
}

// snapshot captures the current token of creds.
func snapshot(creds *partner.Credentials) *Token {
	token := &Token{AccessToken: creds.Token(), ExpiresAt: creds.ExpiresAt()}
	if token.ExpiresAt.Equal(partner.NoExpiry) {
		token.ExpiresAt = time.Time{}
	}

	return token
}

// install puts token into creds.
func install(creds *partner.Credentials, token *Token) error {
	if token.AccessToken == "" {
		return constants.ErrEmptyToken
	}

	creds.Update(token.AccessToken, token.expiry())

	return nil
}
