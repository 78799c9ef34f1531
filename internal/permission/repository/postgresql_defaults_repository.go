// Package repository provides persistence for tenant defaults and per-user
// permission records. Permission maps are stored as JSON columns and decoded
// into typed maps on read; rows that fail to decode surface as corrupt-record
// errors instead of raw parse failures.
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

// PostgreSQLDefaultsRepository implements TenantDefaults persistence for PostgreSQL.
// Uses transaction support via database.GetTx().
type PostgreSQLDefaultsRepository struct {
	db *sql.DB
}

// Get retrieves the defaults row for a tenant. Returns ErrDefaultsNotFound
// if the tenant has no row.
func (p *PostgreSQLDefaultsRepository) Get(
	ctx context.Context,
	tenantID string,
) (*permissionDomain.TenantDefaults, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT tenant_id, permissions, updated_at FROM tenant_defaults WHERE tenant_id = $1`

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
func (p *PostgreSQLDefaultsRepository) Upsert(
	ctx context.Context,
	defaults *permissionDomain.TenantDefaults,
) error {
	querier := database.GetTx(ctx, p.db)

	rawPermissions, err := json.Marshal(defaults.Permissions)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode tenant defaults")
	}

	query := `INSERT INTO tenant_defaults (tenant_id, permissions, updated_at)
			  VALUES ($1, $2, $3)
			  ON CONFLICT (tenant_id) DO UPDATE SET
				  permissions = EXCLUDED.permissions,
				  updated_at = EXCLUDED.updated_at`

	_, err = querier.ExecContext(ctx, query, defaults.TenantID, rawPermissions, defaults.UpdatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to upsert tenant defaults")
	}
	return nil
}

// DeleteByTenant removes the defaults row for a tenant. Deleting an absent
// row is not an error.
func (p *PostgreSQLDefaultsRepository) DeleteByTenant(ctx context.Context, tenantID string) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM tenant_defaults WHERE tenant_id = $1`

	if _, err := querier.ExecContext(ctx, query, tenantID); err != nil {
		return apperrors.Wrap(err, "failed to delete tenant defaults")
	}
	return nil
}

// NewPostgreSQLDefaultsRepository creates a new PostgreSQL TenantDefaults repository.
func NewPostgreSQLDefaultsRepository(db *sql.DB) *PostgreSQLDefaultsRepository {
	return &PostgreSQLDefaultsRepository{db: db}
}
