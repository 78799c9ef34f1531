// Package repository provides persistence for tenant installations.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/allisson/gatekeeper/internal/database"
	tenantDomain "github.com/allisson/gatekeeper/internal/tenant/domain"

	apperrors "github.com/allisson/gatekeeper/internal/errors"
)

// PostgreSQLInstallationRepository implements installation persistence for
// PostgreSQL. Uses transaction support via database.GetTx().
type PostgreSQLInstallationRepository struct {
	db *sql.DB
}

const postgresInstallationColumns = `id, workspace_id, enterprise_id, bot_token, is_enterprise, payload, installed_at, updated_at`

// Get retrieves the installation stored under a canonical id. Returns
// ErrInstallationNotFound if absent.
func (p *PostgreSQLInstallationRepository) Get(ctx context.Context, canonicalID string) (*tenantDomain.Installation, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + postgresInstallationColumns + ` FROM installations WHERE id = $1`

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
func (p *PostgreSQLInstallationRepository) Upsert(ctx context.Context, installation *tenantDomain.Installation) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO installations (` + postgresInstallationColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  ON CONFLICT (id) DO UPDATE SET
				  workspace_id = EXCLUDED.workspace_id,
				  enterprise_id = EXCLUDED.enterprise_id,
				  bot_token = EXCLUDED.bot_token,
				  is_enterprise = EXCLUDED.is_enterprise,
				  payload = EXCLUDED.payload,
				  updated_at = EXCLUDED.updated_at`

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
func (p *PostgreSQLInstallationRepository) Delete(ctx context.Context, canonicalID string) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM installations WHERE id = $1`

	if _, err := querier.ExecContext(ctx, query, canonicalID); err != nil {
		return apperrors.Wrap(err, "failed to delete installation")
	}
	return nil
}

// List returns installations ordered by id.
func (p *PostgreSQLInstallationRepository) List(ctx context.Context, offset, limit int) ([]*tenantDomain.Installation, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + postgresInstallationColumns + ` FROM installations ORDER BY id OFFSET $1 LIMIT $2`

	rows, err := querier.QueryContext(ctx, query, offset, limit)
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

// NewPostgreSQLInstallationRepository creates a new PostgreSQL installation repository.
func NewPostgreSQLInstallationRepository(db *sql.DB) *PostgreSQLInstallationRepository {
	return &PostgreSQLInstallationRepository{db: db}
}
