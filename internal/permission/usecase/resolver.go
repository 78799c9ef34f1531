package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	apperrors "github.com/allisson/gatekeeper/internal/errors"
	permissionDomain "github.com/allisson/gatekeeper/internal/permission/domain"
)

// PermissionResolver implements the Resolver interface.
type PermissionResolver struct {
	defaultsRepo DefaultsRepository
	userRepo     UserPermissionRepository
	revoker      CredentialRevoker
	logger       *slog.Logger
}

// NewPermissionResolver creates a new PermissionResolver.
func NewPermissionResolver(
	defaultsRepo DefaultsRepository,
	userRepo UserPermissionRepository,
	revoker CredentialRevoker,
	logger *slog.Logger,
) *PermissionResolver {
	return &PermissionResolver{
		defaultsRepo: defaultsRepo,
		userRepo:     userRepo,
		revoker:      revoker,
		logger:       logger,
	}
}

// GetEffective computes the effective permission map for (user, tenant).
func (r *PermissionResolver) GetEffective(ctx context.Context, userID, tenantID string) (permissionDomain.Map, error) {
	defaults, err := r.tenantDefaults(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	record, err := r.userRepo.Get(ctx, userID, tenantID)
	if err != nil {
		if errors.Is(err, permissionDomain.ErrUserPermissionNotFound) {
			// Never-seen users get the tenant defaults verbatim.
			return defaults, nil
		}
		return nil, apperrors.Wrap(err, "failed to get user permission record")
	}

	if !record.IsActive {
		return permissionDomain.EmptyMap(), nil
	}

	return permissionDomain.Merge(defaults, record.Overrides), nil
}

// IsAllowed reports whether the effective permissions allow the operation.
func (r *PermissionResolver) IsAllowed(
	ctx context.Context,
	userID, tenantID string,
	key permissionDomain.Key,
	op permissionDomain.Operation,
) (bool, error) {
	if !permissionDomain.ValidKey(key) {
		return false, nil
	}

	effective, err := r.GetEffective(ctx, userID, tenantID)
	if err != nil {
		return false, err
	}

	return effective[key].Allows(op), nil
}

// SetDefaults replaces the tenant-level default permission map.
func (r *PermissionResolver) SetDefaults(ctx context.Context, tenantID string, permissions permissionDomain.Map) error {
	if err := validateMapKeys(permissions); err != nil {
		return err
	}

	defaults := &permissionDomain.TenantDefaults{
		TenantID:    tenantID,
		Permissions: permissions.Normalized(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := r.defaultsRepo.Upsert(ctx, defaults); err != nil {
		return apperrors.Wrap(err, "failed to upsert tenant defaults")
	}

	r.logger.InfoContext(ctx, "tenant defaults updated", "tenant_id", tenantID)
	return nil
}

// SetUserOverrides replaces a user's override map and revokes their credentials.
func (r *PermissionResolver) SetUserOverrides(ctx context.Context, userID, tenantID string, overrides permissionDomain.Map) error {
	if err := validateMapKeys(overrides); err != nil {
		return err
	}

	record, err := r.userRepo.Get(ctx, userID, tenantID)
	if err != nil {
		if !errors.Is(err, permissionDomain.ErrUserPermissionNotFound) {
			return apperrors.Wrap(err, "failed to get user permission record")
		}
		record = &permissionDomain.UserPermission{
			UserID:   userID,
			TenantID: tenantID,
			IsActive: true,
		}
	}

	record.Overrides = overrides
	record.UpdatedAt = time.Now().UTC()

	if err := r.userRepo.Upsert(ctx, record); err != nil {
		return apperrors.Wrap(err, "failed to upsert user permission record")
	}

	// Outstanding credentials carry the old scope. Force re-issuance.
	if err := r.revoker.RevokeAll(ctx, userID, tenantID); err != nil {
		return apperrors.Wrap(err, "failed to revoke credentials after override change")
	}

	r.logger.InfoContext(ctx, "user overrides updated", "user_id", userID, "tenant_id", tenantID)
	return nil
}

// SetUserActive toggles a user's access.
func (r *PermissionResolver) SetUserActive(ctx context.Context, userID, tenantID string, active bool) error {
	if err := r.userRepo.SetActive(ctx, userID, tenantID, active); err != nil {
		if errors.Is(err, permissionDomain.ErrUserPermissionNotFound) && !active {
			// Deactivating an unknown user still revokes credentials so the
			// operation is a safe default for offboarding flows.
			if revokeErr := r.revoker.RevokeAll(ctx, userID, tenantID); revokeErr != nil {
				return apperrors.Wrap(revokeErr, "failed to revoke credentials on deactivation")
			}
			return err
		}
		return err
	}

	if !active {
		if err := r.revoker.RevokeAll(ctx, userID, tenantID); err != nil {
			return apperrors.Wrap(err, "failed to revoke credentials on deactivation")
		}
	}

	r.logger.InfoContext(ctx, "user active flag updated", "user_id", userID, "tenant_id", tenantID, "active", active)
	return nil
}

// EnsureUser creates an empty active override record if none exists yet.
func (r *PermissionResolver) EnsureUser(ctx context.Context, userID, tenantID string) error {
	_, err := r.userRepo.Get(ctx, userID, tenantID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, permissionDomain.ErrUserPermissionNotFound) {
		return apperrors.Wrap(err, "failed to get user permission record")
	}

	record := &permissionDomain.UserPermission{
		UserID:    userID,
		TenantID:  tenantID,
		Overrides: permissionDomain.Map{},
		IsActive:  true,
		UpdatedAt: time.Now().UTC(),
	}
	if err := r.userRepo.Upsert(ctx, record); err != nil {
		return apperrors.Wrap(err, "failed to create user permission record")
	}
	return nil
}

// RemoveUser deletes a user's record and revokes their credentials.
func (r *PermissionResolver) RemoveUser(ctx context.Context, userID, tenantID string) error {
	if err := r.userRepo.Delete(ctx, userID, tenantID); err != nil {
		return apperrors.Wrap(err, "failed to delete user permission record")
	}

	if err := r.revoker.RevokeAll(ctx, userID, tenantID); err != nil {
		return apperrors.Wrap(err, "failed to revoke credentials on removal")
	}

	r.logger.InfoContext(ctx, "user permission record removed", "user_id", userID, "tenant_id", tenantID)
	return nil
}

// ListUsers returns every user record for a tenant with resolved permissions.
func (r *PermissionResolver) ListUsers(ctx context.Context, tenantID string, offset, limit int) ([]*permissionDomain.UserSummary, error) {
	defaults, err := r.tenantDefaults(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	records, err := r.userRepo.ListByTenant(ctx, tenantID, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list user permission records")
	}

	summaries := make([]*permissionDomain.UserSummary, 0, len(records))
	for _, record := range records {
		effective := permissionDomain.EmptyMap()
		if record.IsActive {
			effective = permissionDomain.Merge(defaults, record.Overrides)
		}
		summaries = append(summaries, &permissionDomain.UserSummary{
			UserID:    record.UserID,
			IsActive:  record.IsActive,
			Overrides: record.Overrides.Normalized(),
			Effective: effective,
		})
	}

	return summaries, nil
}

func (r *PermissionResolver) tenantDefaults(ctx context.Context, tenantID string) (permissionDomain.Map, error) {
	defaults, err := r.defaultsRepo.Get(ctx, tenantID)
	if err != nil {
		if errors.Is(err, permissionDomain.ErrDefaultsNotFound) {
			return permissionDomain.EmptyMap(), nil
		}
		return nil, apperrors.Wrap(err, "failed to get tenant defaults")
	}
	return defaults.Permissions.Normalized(), nil
}

func validateMapKeys(m permissionDomain.Map) error {
	for key := range m {
		if !permissionDomain.ValidKey(key) {
			return apperrors.Wrap(permissionDomain.ErrUnknownKey, string(key))
		}
	}
	return nil
}
