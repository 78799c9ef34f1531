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

// PostgreSQLUserPermissionRepository implements UserPermission persistence for PostgreSQL.
// Uses transaction support via database.GetTx().
type PostgreSQLUserPermissionRepository struct {
	db *sql.DB
}

// Get retrieves the override record for (user, tenant). Returns
// ErrUserPermissionNotFound if no record exists.
func (p *PostgreSQLUserPermissionRepository) Get(
	ctx context.Context,
	userID, tenantID string,
) (*permissionDomain.UserPermission, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT user_id, tenant_id, overrides, is_active, updated_at
			  FROM user_permissions WHERE user_id = $1 AND tenant_id = $2`

	record, err := scanUserPermission(querier.QueryRowContext(ctx, query, userID, tenantID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, permissionDomain.ErrUserPermissionNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get user permission")
	}
	return record, nil
}

// Upsert inserts or replaces the override record for (user, tenant).
func (p *PostgreSQLUserPermissionRepository) Upsert(
	ctx context.Context,
	record *permissionDomain.UserPermission,
) error {
	querier := database.GetTx(ctx, p.db)

	rawOverrides, err := json.Marshal(record.Overrides)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode user overrides")
	}

	query := `INSERT INTO user_permissions (user_id, tenant_id, overrides, is_active, updated_at)
			  VALUES ($1, $2, $3, $4, $5)
			  ON CONFLICT (user_id, tenant_id) DO UPDATE SET
				  overrides = EXCLUDED.overrides,
				  is_active = EXCLUDED.is_active,
				  updated_at = EXCLUDED.updated_at`

	_, err = querier.ExecContext(
		ctx,
		query,
		record.UserID,
		record.TenantID,
		rawOverrides,
		record.IsActive,
		record.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to upsert user permission")
	}
	return nil
}

// SetActive flips the active flag for an existing record. Returns
// ErrUserPermissionNotFound when no record exists for (user, tenant).
func (p *PostgreSQLUserPermissionRepository) SetActive(
	ctx context.Context,
	userID, tenantID string,
	active bool,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE user_permissions SET is_active = $1, updated_at = NOW()
			  WHERE user_id = $2 AND tenant_id = $3`

	result, err := querier.ExecContext(ctx, query, active, userID, tenantID)
	if err != nil {
		return apperrors.Wrap(err, "failed to set user active flag")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if rows == 0 {
		return permissionDomain.ErrUserPermissionNotFound
	}
	return nil
}

// Delete removes the override record for (user, tenant). Deleting an absent
// record is not an error.
func (p *PostgreSQLUserPermissionRepository) Delete(ctx context.Context, userID, tenantID string) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM user_permissions WHERE user_id = $1 AND tenant_id = $2`

	if _, err := querier.ExecContext(ctx, query, userID, tenantID); err != nil {
		return apperrors.Wrap(err, "failed to delete user permission")
	}
	return nil
}

// ListByTenant returns every override record for a tenant ordered by user id.
func (p *PostgreSQLUserPermissionRepository) ListByTenant(
	ctx context.Context,
	tenantID string,
	offset, limit int,
) ([]*permissionDomain.UserPermission, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT user_id, tenant_id, overrides, is_active, updated_at
			  FROM user_permissions WHERE tenant_id = $1
			  ORDER BY user_id OFFSET $2 LIMIT $3`

	rows, err := querier.QueryContext(ctx, query, tenantID, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list user permissions")
	}
	defer func() { _ = rows.Close() }()

	var records []*permissionDomain.UserPermission
	for rows.Next() {
		record, err := scanUserPermission(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan user permission")
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate user permissions")
	}
	return records, nil
}

// DeleteByTenant removes every override record for a tenant.
func (p *PostgreSQLUserPermissionRepository) DeleteByTenant(ctx context.Context, tenantID string) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM user_permissions WHERE tenant_id = $1`

	if _, err := querier.ExecContext(ctx, query, tenantID); err != nil {
		return apperrors.Wrap(err, "failed to delete tenant user permissions")
	}
	return nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUserPermission(scanner rowScanner) (*permissionDomain.UserPermission, error) {
	var record permissionDomain.UserPermission
	var rawOverrides []byte

	err := scanner.Scan(
		&record.UserID,
		&record.TenantID,
		&rawOverrides,
		&record.IsActive,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(rawOverrides, &record.Overrides); err != nil {
		return nil, apperrors.Wrap(permissionDomain.ErrCorruptRecord, err.Error())
	}
	return &record, nil
}

// NewPostgreSQLUserPermissionRepository creates a new PostgreSQL UserPermission repository.
func NewPostgreSQLUserPermissionRepository(db *sql.DB) *PostgreSQLUserPermissionRepository {
	return &PostgreSQLUserPermissionRepository{db: db}
}
