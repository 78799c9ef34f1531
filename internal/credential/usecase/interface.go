// Package usecase defines business logic for the bearer credential lifecycle.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	credentialDomain "github.com/allisson/gatekeeper/internal/credential/domain"
)

// CredentialRepository defines persistence operations for the credential
// registry. Implementations must support transaction-aware operations via
// context propagation.
type CredentialRepository interface {
	// Create inserts a new registry row.
	Create(ctx context.Context, credential *credentialDomain.Credential) error

	// Get retrieves the row for a token id. Returns ErrCredentialUnknown if
	// absent.
	Get(ctx context.Context, jti uuid.UUID) (*credentialDomain.Credential, error)

	// Revoke marks a single row revoked. Returns ErrCredentialUnknown if
	// absent.
	Revoke(ctx context.Context, jti uuid.UUID) error

	// RevokeAllForUser marks every non-revoked row for an identity revoked.
	RevokeAllForUser(ctx context.Context, userID, tenantID string) error

	// RevokeAllForTenant marks every non-revoked row for a tenant revoked.
	RevokeAllForTenant(ctx context.Context, tenantID string) error

	// DeleteSweepable removes revoked or expired rows and returns how many
	// were removed.
	DeleteSweepable(ctx context.Context, now time.Time) (int64, error)

	// CountSweepable counts revoked or expired rows without removing them.
	CountSweepable(ctx context.Context, now time.Time) (int64, error)

	// DeleteByTenant removes every row for a tenant.
	DeleteByTenant(ctx context.Context, tenantID string) error
}

// Lifecycle defines business logic operations for issuing, verifying and
// retiring bearer credentials.
type Lifecycle interface {
	// Issue mints a signed token for the identity. Any previously live
	// credential for the identity is revoked in the same transaction, so at
	// most one live credential exists per identity.
	Issue(ctx context.Context, identity credentialDomain.Identity) (*credentialDomain.IssueOutput, error)

	// Verify checks a presented token and returns the identity it is bound
	// to. Stateless checks run first (signature, lifetime), then the
	// registry row is consulted; a token whose id has no row fails closed.
	Verify(ctx context.Context, signedToken string) (*credentialDomain.Identity, error)

	// Revoke marks a single credential revoked by token id.
	Revoke(ctx context.Context, jti uuid.UUID) error

	// RevokeAll revokes every outstanding credential for an identity.
	RevokeAll(ctx context.Context, userID, tenantID string) error

	// RevokeTenant revokes every outstanding credential for a tenant.
	RevokeTenant(ctx context.Context, tenantID string) error

	// Sweep removes revoked and expired registry rows. With dryRun set it
	// only reports how many rows a real sweep would remove.
	Sweep(ctx context.Context, dryRun bool) (int64, error)
}
