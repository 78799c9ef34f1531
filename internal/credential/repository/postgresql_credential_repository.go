// Package repository provides persistence for the credential registry.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	credentialDomain "github.com/allisson/gatekeeper/internal/credential/domain"
	"github.com/allisson/gatekeeper/internal/database"

	apperrors "github.com/allisson/gatekeeper/internal/errors"
)

// PostgreSQLCredentialRepository implements credential registry persistence
// for PostgreSQL. Uses transaction support via database.GetTx().
type PostgreSQLCredentialRepository struct {
	db *sql.DB
}

// Create inserts a new registry row.
func (p *PostgreSQLCredentialRepository) Create(ctx context.Context, credential *credentialDomain.Credential) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO credentials (jti, user_id, tenant_id, revoked, issued_at, expires_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := querier.ExecContext(
		ctx,
		query,
		credential.JTI,
		credential.UserID,
		credential.TenantID,
		credential.Revoked,
		credential.IssuedAt,
		credential.ExpiresAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create credential")
	}
	return nil
}

// Get retrieves the registry row for a token id. Returns ErrCredentialUnknown
// if no row exists.
func (p *PostgreSQLCredentialRepository) Get(ctx context.Context, jti uuid.UUID) (*credentialDomain.Credential, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT jti, user_id, tenant_id, revoked, issued_at, expires_at
			  FROM credentials WHERE jti = $1`

	var credential credentialDomain.Credential
	err := querier.QueryRowContext(ctx, query, jti).Scan(
		&credential.JTI,
		&credential.UserID,
		&credential.TenantID,
		&credential.Revoked,
		&credential.IssuedAt,
		&credential.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, credentialDomain.ErrCredentialUnknown
		}
		return nil, apperrors.Wrap(err, "failed to get credential")
	}

	return &credential, nil
}

// Revoke marks a single registry row revoked. Returns ErrCredentialUnknown
// if no row exists.
func (p *PostgreSQLCredentialRepository) Revoke(ctx context.Context, jti uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE credentials SET revoked = TRUE WHERE jti = $1`

	result, err := querier.ExecContext(ctx, query, jti)
	if err != nil {
		return apperrors.Wrap(err, "failed to revoke credential")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return credentialDomain.ErrCredentialUnknown
	}
	return nil
}

// RevokeAllForUser marks every non-revoked row for an identity revoked.
func (p *PostgreSQLCredentialRepository) RevokeAllForUser(ctx context.Context, userID, tenantID string) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE credentials SET revoked = TRUE
			  WHERE user_id = $1 AND tenant_id = $2 AND revoked = FALSE`

	if _, err := querier.ExecContext(ctx, query, userID, tenantID); err != nil {
		return apperrors.Wrap(err, "failed to revoke credentials for user")
	}
	return nil
}

// RevokeAllForTenant marks every non-revoked row for a tenant revoked.
func (p *PostgreSQLCredentialRepository) RevokeAllForTenant(ctx context.Context, tenantID string) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE credentials SET revoked = TRUE
			  WHERE tenant_id = $1 AND revoked = FALSE`

	if _, err := querier.ExecContext(ctx, query, tenantID); err != nil {
		return apperrors.Wrap(err, "failed to revoke credentials for tenant")
	}
	return nil
}

// DeleteSweepable removes rows that are revoked or expired at the given
// instant and returns the number removed.
func (p *PostgreSQLCredentialRepository) DeleteSweepable(ctx context.Context, now time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM credentials WHERE revoked = TRUE OR expires_at <= $1`

	result, err := querier.ExecContext(ctx, query, now)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete sweepable credentials")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get rows affected")
	}
	return rowsAffected, nil
}

// CountSweepable returns the number of rows that are revoked or expired at
// the given instant without removing them.
func (p *PostgreSQLCredentialRepository) CountSweepable(ctx context.Context, now time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT COUNT(*) FROM credentials WHERE revoked = TRUE OR expires_at <= $1`

	var count int64
	if err := querier.QueryRowContext(ctx, query, now).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count sweepable credentials")
	}
	return count, nil
}

// DeleteByTenant removes every registry row for a tenant.
func (p *PostgreSQLCredentialRepository) DeleteByTenant(ctx context.Context, tenantID string) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM credentials WHERE tenant_id = $1`

	if _, err := querier.ExecContext(ctx, query, tenantID); err != nil {
		return apperrors.Wrap(err, "failed to delete credentials for tenant")
	}
	return nil
}

// NewPostgreSQLCredentialRepository creates a new PostgreSQL credential repository.
func NewPostgreSQLCredentialRepository(db *sql.DB) *PostgreSQLCredentialRepository {
	return &PostgreSQLCredentialRepository{db: db}
}
