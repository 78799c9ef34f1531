// Package service provides token signing and parsing for bearer credentials.
package service

import (
	"time"

	"github.com/google/uuid"

	credentialDomain "github.com/allisson/gatekeeper/internal/credential/domain"
)

// ParsedToken is the trusted content of a verified token. It is only
// produced after the signature and lifetime checks succeed.
type ParsedToken struct {
	JTI       uuid.UUID
	Identity  credentialDomain.Identity
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Signer signs and verifies bearer tokens. Parse performs the stateless
// checks only; callers consult the credential registry afterwards.
type Signer interface {
	// Sign produces a signed token for the identity with the given id and
	// lifetime.
	Sign(identity credentialDomain.Identity, jti uuid.UUID, issuedAt, expiresAt time.Time) (string, error)

	// Parse verifies the signature and lifetime of a token and returns its
	// content. Returns ErrMalformedCredential, ErrInvalidSignature or
	// ErrCredentialExpired on failure.
	Parse(signedToken string) (*ParsedToken, error)
}
