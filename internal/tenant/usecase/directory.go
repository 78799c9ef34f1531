package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/allisson/gatekeeper/internal/database"
	apperrors "github.com/allisson/gatekeeper/internal/errors"
	tenantDomain "github.com/allisson/gatekeeper/internal/tenant/domain"
)

// TenantDirectory implements the Directory interface.
type TenantDirectory struct {
	installationRepo InstallationRepository
	purgers          []TenantPurger
	txManager        database.TxManager
	logger           *slog.Logger
}

// NewTenantDirectory creates a new TenantDirectory. The purgers are the
// per-table cleaners teardown cascades through.
func NewTenantDirectory(
	installationRepo InstallationRepository,
	purgers []TenantPurger,
	txManager database.TxManager,
	logger *slog.Logger,
) *TenantDirectory {
	return &TenantDirectory{
		installationRepo: installationRepo,
		purgers:          purgers,
		txManager:        txManager,
		logger:           logger,
	}
}

// Save registers or refreshes an install record under its canonical id.
func (d *TenantDirectory) Save(ctx context.Context, input *SaveInstallationInput) (*tenantDomain.Installation, error) {
	if input.WorkspaceID == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "workspace id is required")
	}
	if input.BotToken == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "bot token is required")
	}
	if input.IsEnterprise && input.EnterpriseID == nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "enterprise id is required for enterprise installs")
	}

	now := time.Now().UTC()
	installation := &tenantDomain.Installation{
		WorkspaceID:  input.WorkspaceID,
		EnterpriseID: input.EnterpriseID,
		BotToken:     input.BotToken,
		IsEnterprise: input.IsEnterprise,
		Payload:      input.Payload,
		InstalledAt:  now,
		UpdatedAt:    now,
	}
	installation.ID = installation.CanonicalID()

	if err := d.installationRepo.Upsert(ctx, installation); err != nil {
		return nil, apperrors.Wrap(err, "failed to save installation")
	}

	d.logger.InfoContext(ctx, "installation saved",
		"id", installation.ID,
		"workspace_id", installation.WorkspaceID,
		"is_enterprise", installation.IsEnterprise,
	)
	return installation, nil
}

// Get retrieves an install record by canonical id.
func (d *TenantDirectory) Get(ctx context.Context, canonicalID string) (*tenantDomain.Installation, error) {
	return d.installationRepo.Get(ctx, canonicalID)
}

// List returns install records ordered by id.
func (d *TenantDirectory) List(ctx context.Context, offset, limit int) ([]*tenantDomain.Installation, error) {
	installations, err := d.installationRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list installations")
	}
	return installations, nil
}

// Delete removes a single install record by canonical id.
func (d *TenantDirectory) Delete(ctx context.Context, canonicalID string) error {
	if canonicalID == "" {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "canonical id is required")
	}

	if err := d.installationRepo.Delete(ctx, canonicalID); err != nil {
		return apperrors.Wrap(err, "failed to delete installation")
	}

	d.logger.InfoContext(ctx, "installation deleted", "id", canonicalID)
	return nil
}

// ResolveExecutionCredential finds the credential for acting in a workspace.
func (d *TenantDirectory) ResolveExecutionCredential(
	ctx context.Context,
	workspaceID string,
	enterpriseID *string,
) (*tenantDomain.ExecutionCredential, error) {
	if enterpriseID != nil && *enterpriseID != "" {
		installation, err := d.installationRepo.Get(ctx, tenantDomain.EnterpriseCanonicalID(*enterpriseID))
		if err == nil {
			return &tenantDomain.ExecutionCredential{
				BotToken:    installation.BotToken,
				WorkspaceID: workspaceID,
			}, nil
		}
		if !errors.Is(err, tenantDomain.ErrInstallationNotFound) {
			return nil, apperrors.Wrap(err, "failed to resolve enterprise installation")
		}
	}

	installation, err := d.installationRepo.Get(ctx, tenantDomain.WorkspaceCanonicalID(workspaceID))
	if err != nil {
		return nil, err
	}

	return &tenantDomain.ExecutionCredential{
		BotToken:    installation.BotToken,
		WorkspaceID: workspaceID,
	}, nil
}

// Teardown removes every trace of a tenant in one transaction. Credential
// rows are deleted rather than revoked; verification fails closed on a
// missing row, so deletion retires outstanding tokens and frees storage in
// one step.
func (d *TenantDirectory) Teardown(ctx context.Context, tenantID string) error {
	if tenantID == "" {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "tenant id is required")
	}

	// The tenant id is already canonical, so it doubles as the install
	// record's storage key.
	err := d.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := d.installationRepo.Delete(ctx, tenantID); err != nil {
			return err
		}
		for _, purger := range d.purgers {
			if err := purger.DeleteByTenant(ctx, tenantID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return apperrors.Wrap(err, "failed to tear down tenant")
	}

	d.logger.InfoContext(ctx, "tenant torn down", "tenant_id", tenantID)
	return nil
}
