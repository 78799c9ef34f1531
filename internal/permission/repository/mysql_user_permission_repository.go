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

// MySQLUserPermissionRepository implements UserPermission persistence for MySQL.
// Uses transaction support via database.GetTx().
type MySQLUserPermissionRepository struct {
	db *sql.DB
}

// Get retrieves the override record for (user, tenant). Returns
// ErrUserPermissionNotFound if no record exists.
func (m *MySQLUserPermissionRepository) Get(
	ctx context.Context,
	userID, tenantID string,
) (*permissionDomain.UserPermission, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT user_id, tenant_id, overrides, is_active, updated_at
			  FROM user_permissions WHERE user_id = ? AND tenant_id = ?`

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
func (m *MySQLUserPermissionRepository) Upsert(
	ctx context.Context,
	record *permissionDomain.UserPermission,
) error {
	querier := database.GetTx(ctx, m.db)

	rawOverrides, err := json.Marshal(record.Overrides)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode user overrides")
	}

	query := `INSERT INTO user_permissions (user_id, tenant_id, overrides, is_active, updated_at)
			  VALUES (?, ?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE
				  overrides = VALUES(overrides),
				  is_active = VALUES(is_active),
				  updated_at = VALUES(updated_at)`

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
func (m *MySQLUserPermissionRepository) SetActive(
	ctx context.Context,
	userID, tenantID string,
	active bool,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE user_permissions SET is_active = ?, updated_at = NOW()
			  WHERE user_id = ? AND tenant_id = ?`

	result, err := querier.ExecContext(ctx, query, active, userID, tenantID)
	if err != nil {
		return apperrors.Wrap(err, "failed to set user active flag")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if rows == 0 {
		// The driver reports rows changed, not rows matched, so re-setting
		// the flag to its current value also comes back as zero. Look the
		// record up to tell a missing record apart from a no-op update.
		if _, getErr := m.Get(ctx, userID, tenantID); getErr != nil {
			return getErr
		}
	}
	return nil
}

// Delete removes the override record for (user, tenant). Deleting an absent
// record is not an error.
func (m *MySQLUserPermissionRepository) Delete(ctx context.Context, userID, tenantID string) error {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM user_permissions WHERE user_id = ? AND tenant_id = ?`

	if _, err := querier.ExecContext(ctx, query, userID, tenantID); err != nil {
		return apperrors.Wrap(err, "failed to delete user permission")
	}
	return nil
}

// ListByTenant returns every override record for a tenant ordered by user id.
func (m *MySQLUserPermissionRepository) ListByTenant(
	ctx context.Context,
	tenantID string,
	offset, limit int,
) ([]*permissionDomain.UserPermission, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT user_id, tenant_id, overrides, is_active, updated_at
			  FROM user_permissions WHERE tenant_id = ?
			  ORDER BY user_id LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, tenantID, limit, offset)
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
func (m *MySQLUserPermissionRepository) DeleteByTenant(ctx context.Context, tenantID string) error {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM user_permissions WHERE tenant_id = ?`

	if _, err := querier.ExecContext(ctx, query, tenantID); err != nil {
		return apperrors.Wrap(err, "failed to delete tenant user permissions")
	}
	return nil
}

// NewMySQLUserPermissionRepository creates a new MySQL UserPermission repository.
func NewMySQLUserPermissionRepository(db *sql.DB) *MySQLUserPermissionRepository {
	return &MySQLUserPermissionRepository{db: db}
}
