// Package usecase defines business logic for the tenant directory.
package usecase

import (
	"context"
	"encoding/json"

	tenantDomain "github.com/allisson/gatekeeper/internal/tenant/domain"
)

// InstallationRepository defines persistence operations for install records.
// Implementations must support transaction-aware operations via context
// propagation.
type InstallationRepository interface {
	// Get retrieves the installation stored under a canonical id. Returns
	// ErrInstallationNotFound if absent.
	Get(ctx context.Context, canonicalID string) (*tenantDomain.Installation, error)

	// Upsert inserts or replaces the installation under its canonical id.
	Upsert(ctx context.Context, installation *tenantDomain.Installation) error

	// Delete removes the installation stored under a canonical id.
	Delete(ctx context.Context, canonicalID string) error

	// List returns installations ordered by id.
	List(ctx context.Context, offset, limit int) ([]*tenantDomain.Installation, error)
}

// TenantPurger removes all rows belonging to a tenant from one table. Every
// module's repository exposes this shape so teardown can cascade through them
// in a single transaction.
type TenantPurger interface {
	DeleteByTenant(ctx context.Context, tenantID string) error
}

// SaveInstallationInput carries the fields for registering an install.
type SaveInstallationInput struct {
	WorkspaceID  string          `json:"workspace_id"`
	EnterpriseID *string         `json:"enterprise_id,omitempty"`
	BotToken     string          `json:"bot_token"`
	IsEnterprise bool            `json:"is_enterprise"`
	Payload      json.RawMessage `json:"payload,omitempty"`
}

// Directory defines business logic operations for install records and
// tenant-wide teardown.
type Directory interface {
	// Save registers or refreshes an install record under its canonical id.
	Save(ctx context.Context, input *SaveInstallationInput) (*tenantDomain.Installation, error)

	// Get retrieves an install record by canonical id.
	Get(ctx context.Context, canonicalID string) (*tenantDomain.Installation, error)

	// List returns install records ordered by id.
	List(ctx context.Context, offset, limit int) ([]*tenantDomain.Installation, error)

	// Delete removes a single install record by canonical id.
	Delete(ctx context.Context, canonicalID string) error

	// ResolveExecutionCredential finds the credential for acting in a
	// workspace. The enterprise record wins when the workspace belongs to an
	// org; the workspace record is the fallback.
	ResolveExecutionCredential(ctx context.Context, workspaceID string, enterpriseID *string) (*tenantDomain.ExecutionCredential, error)

	// Teardown removes every trace of a tenant in one transaction: install
	// records, credentials, permission records and channel blocks.
	Teardown(ctx context.Context, tenantID string) error
}
