// Package domain defines bearer credential entities.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Identity is the (user, tenant) pair a credential is bound to.
type Identity struct {
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
}

// Credential is the registry row for an issued bearer token, keyed by the
// token's unique id (jti). A credential is live when it is not revoked and
// not expired; at most one live credential exists per identity.
type Credential struct {
	JTI       uuid.UUID `json:"jti"`
	UserID    string    `json:"user_id"`
	TenantID  string    `json:"tenant_id"`
	Revoked   bool      `json:"revoked"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the credential's lifetime has passed at the given
// instant.
func (c *Credential) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// IssueOutput carries the result of issuing a credential. The signed token is
// returned exactly once; only the registry row is persisted.
type IssueOutput struct {
	SignedToken string      `json:"signed_token"`
	Credential  *Credential `json:"credential"`
}
