package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/allisson/gatekeeper/internal/database"
	permissionDomain "github.com/allisson/gatekeeper/internal/permission/domain"

	apperrors "github.com/allisson/gatekeeper/internal/errors"
)

// MySQLDefaultsRepository implements TenantDefaults persistence for MySQL.
// Uses transaction support via database.GetTx().
type MySQLDefaultsRepository struct {
	db *sql.DB
}

// Get retrieves the defaults row for a tenant. Returns ErrDefaultsNotFound
// if the tenant has no row.
func (m *MySQLDefaultsRepository) Get(
	ctx context.Context,
	tenantID string,
) (*permissionDomain.TenantDefaults, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT tenant_id, permissions, updated_at FROM tenant_defaults WHERE tenant_id = ?`

	var defaults permissionDomain.TenantDefaults
	var rawPermissions []byte

	err := querier.QueryRowContext(ctx, query, tenantID).Scan(
		&defaults.TenantID,
		&rawPermissions,
		&defaults.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, permissionDomain.ErrDefaultsNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get tenant defaults")
	}

	if err := json.Unmarshal(rawPermissions, &defaults.Permissions); err != nil {
		return nil, apperrors.Wrap(permissionDomain.ErrCorruptRecord, err.Error())
	}

	return &defaults, nil
}

// Upsert inserts or replaces the defaults row for a tenant.
func (m *MySQLDefaultsRepository) Upsert(
	ctx context.Context,
	defaults *permissionDomain.TenantDefaults,
) error {
	querier := database.GetTx(ctx, m.db)

	rawPermissions, err := json.Marshal(defaults.Permissions)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode tenant defaults")
	}

	query := `INSERT INTO tenant_defaults (tenant_id, permissions, updated_at)
			  VALUES (?, ?, ?)
			  ON DUPLICATE KEY UPDATE
				  permissions = VALUES(permissions),
				  updated_at = VALUES(updated_at)`

	_, err = querier.ExecContext(ctx, query, defaults.TenantID, rawPermissions, defaults.UpdatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to upsert tenant defaults")
	}
	return nil
}

// DeleteByTenant removes the defaults row for a tenant. Deleting an absent
// row is not an error.
func (m *MySQLDefaultsRepository) DeleteByTenant(ctx context.Context, tenantID string) error {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM tenant_defaults WHERE tenant_id = ?`

	if _, err := querier.ExecContext(ctx, query, tenantID); err != nil {
		return apperrors.Wrap(err, "failed to delete tenant defaults")
	}
	return nil
}

// NewMySQLDefaultsRepository creates a new MySQL TenantDefaults repository.
func NewMySQLDefaultsRepository(db *sql.DB) *MySQLDefaultsRepository {
	return &MySQLDefaultsRepository{db: db}
}
