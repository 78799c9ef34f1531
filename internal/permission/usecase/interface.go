// Package usecase defines business logic for resolving effective permissions.
package usecase

import (
	"context"

	permissionDomain "github.com/allisson/gatekeeper/internal/permission/domain"
)

// DefaultsRepository defines persistence operations for tenant default permissions.
// Implementations must support transaction-aware operations via context propagation.
type DefaultsRepository interface {
	// Get retrieves the defaults row. Returns ErrDefaultsNotFound if absent.
	Get(ctx context.Context, tenantID string) (*permissionDomain.TenantDefaults, error)

	// Upsert inserts or replaces the defaults row for a tenant.
	Upsert(ctx context.Context, defaults *permissionDomain.TenantDefaults) error

	// DeleteByTenant removes the defaults row for a tenant.
	DeleteByTenant(ctx context.Context, tenantID string) error
}

// UserPermissionRepository defines persistence operations for per-user override records.
// Implementations must support transaction-aware operations via context propagation.
type UserPermissionRepository interface {
	// Get retrieves the record. Returns ErrUserPermissionNotFound if absent.
	Get(ctx context.Context, userID, tenantID string) (*permissionDomain.UserPermission, error)

	// Upsert inserts or replaces the record for (user, tenant).
	Upsert(ctx context.Context, record *permissionDomain.UserPermission) error

	// SetActive flips the active flag. Returns ErrUserPermissionNotFound if absent.
	SetActive(ctx context.Context, userID, tenantID string, active bool) error

	// Delete removes the record for (user, tenant).
	Delete(ctx context.Context, userID, tenantID string) error

	// ListByTenant returns records for a tenant ordered by user id.
	ListByTenant(ctx context.Context, tenantID string, offset, limit int) ([]*permissionDomain.UserPermission, error)

	// DeleteByTenant removes every record for a tenant.
	DeleteByTenant(ctx context.Context, tenantID string) error
}

// CredentialRevoker revokes outstanding bearer credentials for an identity.
// Permission changes invalidate credentials so a new scope only takes effect
// after re-issuance.
type CredentialRevoker interface {
	RevokeAll(ctx context.Context, userID, tenantID string) error
}

// Resolver defines business logic operations for permission resolution and
// administration.
type Resolver interface {
	// GetEffective computes the effective permission map for (user, tenant).
	//
	// Resolution rules:
	//   - no defaults row: defaults are all-false
	//   - no user record: the effective map equals the tenant defaults verbatim
	//   - user record with IsActive=false: all-false regardless of anything else
	//   - otherwise: tenant defaults with override keys replaced per key
	GetEffective(ctx context.Context, userID, tenantID string) (permissionDomain.Map, error)

	// IsAllowed reports whether the effective permissions allow the operation.
	// Unknown capability keys always deny.
	IsAllowed(
		ctx context.Context,
		userID, tenantID string,
		key permissionDomain.Key,
		op permissionDomain.Operation,
	) (bool, error)

	// SetDefaults replaces the tenant-level default permission map.
	SetDefaults(ctx context.Context, tenantID string, permissions permissionDomain.Map) error

	// SetUserOverrides replaces a user's override map and revokes every
	// outstanding credential for the identity.
	SetUserOverrides(ctx context.Context, userID, tenantID string, overrides permissionDomain.Map) error

	// SetUserActive toggles a user's access. Deactivation revokes the
	// identity's outstanding credentials.
	SetUserActive(ctx context.Context, userID, tenantID string, active bool) error

	// EnsureUser creates an empty active override record if none exists yet.
	// Called when a user is first observed so admin listings include them.
	EnsureUser(ctx context.Context, userID, tenantID string) error

	// RemoveUser deletes a user's record and revokes their credentials.
	RemoveUser(ctx context.Context, userID, tenantID string) error

	// ListUsers returns every user record for a tenant together with the
	// permissions each record resolves to.
	ListUsers(ctx context.Context, tenantID string, offset, limit int) ([]*permissionDomain.UserSummary, error)
}
