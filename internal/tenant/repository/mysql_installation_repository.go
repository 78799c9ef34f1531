package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/allisson/gatekeeper/internal/database"
	tenantDomain "github.com/allisson/gatekeeper/internal/tenant/domain"

	apperrors "github.com/allisson/gatekeeper/internal/errors"
)

// MySQLInstallationRepository implements installation persistence for MySQL.
// Uses transaction support via database.GetTx().
type MySQLInstallationRepository struct {
	db *sql.DB
}

const mysqlInstallationColumns = `id, workspace_id, enterprise_id, bot_token, is_enterprise, payload, installed_at, updated_at`

// Get retrieves the installation stored under a canonical id. Returns
// ErrInstallationNotFound if absent.
func (m *MySQLInstallationRepository) Get(ctx context.Context, canonicalID string) (*tenantDomain.Installation, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlInstallationColumns + ` FROM installations WHERE id = ?`

	var installation tenantDomain.Installation
	err := querier.QueryRowContext(ctx, query, canonicalID).Scan(
		&installation.ID,
		&installation.WorkspaceID,
		&installation.EnterpriseID,
		&installation.BotToken,
		&installation.IsEnterprise,
		&installation.Payload,
		&installation.InstalledAt,
		&installation.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, tenantDomain.ErrInstallationNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get installation")
	}

	return &installation, nil
}

// Upsert inserts or replaces the installation stored under its canonical id.
func (m *MySQLInstallationRepository) Upsert(ctx context.Context, installation *tenantDomain.Installation) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO installations (` + mysqlInstallationColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE
				  workspace_id = VALUES(workspace_id),
				  enterprise_id = VALUES(enterprise_id),
				  bot_token = VALUES(bot_token),
				  is_enterprise = VALUES(is_enterprise),
				  payload = VALUES(payload),
				  updated_at = VALUES(updated_at)`

	_, err := querier.ExecContext(
		ctx,
		query,
		installation.ID,
		installation.WorkspaceID,
		installation.EnterpriseID,
		installation.BotToken,
		installation.IsEnterprise,
		installation.Payload,
		installation.InstalledAt,
		installation.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to upsert installation")
	}
	return nil
}

// Delete removes the installation stored under a canonical id. Deleting an
// absent row is not an error.
func (m *MySQLInstallationRepository) Delete(ctx context.Context, canonicalID string) error {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM installations WHERE id = ?`

	if _, err := querier.ExecContext(ctx, query, canonicalID); err != nil {
		return apperrors.Wrap(err, "failed to delete installation")
	}
	return nil
}

// List returns installations ordered by id.
func (m *MySQLInstallationRepository) List(ctx context.Context, offset, limit int) ([]*tenantDomain.Installation, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlInstallationColumns + ` FROM installations ORDER BY id LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list installations")
	}
	defer func() { _ = rows.Close() }()

	var installations []*tenantDomain.Installation
	for rows.Next() {
		var installation tenantDomain.Installation
		if err := rows.Scan(
			&installation.ID,
			&installation.WorkspaceID,
			&installation.EnterpriseID,
			&installation.BotToken,
			&installation.IsEnterprise,
			&installation.Payload,
			&installation.InstalledAt,
			&installation.UpdatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan installation")
		}
		installations = append(installations, &installation)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate installations")
	}

	return installations, nil
}

// NewMySQLInstallationRepository creates a new MySQL installation repository.
func NewMySQLInstallationRepository(db *sql.DB) *MySQLInstallationRepository {
	return &MySQLInstallationRepository{db: db}
}
