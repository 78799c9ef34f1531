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

// MySQLCredentialRepository implements credential registry persistence for
// MySQL. Uses transaction support via database.GetTx().
type MySQLCredentialRepository struct {
	db *sql.DB
}

// Create inserts a new registry row.
func (m *MySQLCredentialRepository) Create(ctx context.Context, credential *credentialDomain.Credential) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO credentials (jti, user_id, tenant_id, revoked, issued_at, expires_at)
			  VALUES (?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		credential.JTI.String(),
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
func (m *MySQLCredentialRepository) Get(ctx context.Context, jti uuid.UUID) (*credentialDomain.Credential, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT jti, user_id, tenant_id, revoked, issued_at, expires_at
			  FROM credentials WHERE jti = ?`

	var credential credentialDomain.Credential
	var rawJTI string
	err := querier.QueryRowContext(ctx, query, jti.String()).Scan(
		&rawJTI,
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

	parsed, err := uuid.Parse(rawJTI)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to parse credential id")
	}
	credential.JTI = parsed

	return &credential, nil
}

// Revoke marks a single registry row revoked. Returns ErrCredentialUnknown
// if no row exists.
func (m *MySQLCredentialRepository) Revoke(ctx context.Context, jti uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE credentials SET revoked = TRUE WHERE jti = ?`

	result, err := querier.ExecContext(ctx, query, jti.String())
	if err != nil {
		return apperrors.Wrap(err, "failed to revoke credential")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		// The driver reports rows changed, not rows matched, so an already
		// revoked row also comes back as zero. Look the row up to tell a
		// missing credential apart from a repeated revoke.
		if _, getErr := m.Get(ctx, jti); getErr != nil {
			return getErr
		}
	}
	return nil
}

// RevokeAllForUser marks every non-revoked row for an identity revoked.
func (m *MySQLCredentialRepository) RevokeAllForUser(ctx context.Context, userID, tenantID string) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE credentials SET revoked = TRUE
			  WHERE user_id = ? AND tenant_id = ? AND revoked = FALSE`

	if _, err := querier.ExecContext(ctx, query, userID, tenantID); err != nil {
		return apperrors.Wrap(err, "failed to revoke credentials for user")
	}
	return nil
}

// RevokeAllForTenant marks every non-revoked row for a tenant revoked.
func (m *MySQLCredentialRepository) RevokeAllForTenant(ctx context.Context, tenantID string) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE credentials SET revoked = TRUE
			  WHERE tenant_id = ? AND revoked = FALSE`

	if _, err := querier.ExecContext(ctx, query, tenantID); err != nil {
		return apperrors.Wrap(err, "failed to revoke credentials for tenant")
	}
	return nil
}

// DeleteSweepable removes rows that are revoked or expired at the given
// instant and returns the number removed.
func (m *MySQLCredentialRepository) DeleteSweepable(ctx context.Context, now time.Time) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM credentials WHERE revoked = TRUE OR expires_at <= ?`

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
func (m *MySQLCredentialRepository) CountSweepable(ctx context.Context, now time.Time) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT COUNT(*) FROM credentials WHERE revoked = TRUE OR expires_at <= ?`

	var count int64
	if err := querier.QueryRowContext(ctx, query, now).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count sweepable credentials")
	}
	return count, nil
}

// DeleteByTenant removes every registry row for a tenant.
func (m *MySQLCredentialRepository) DeleteByTenant(ctx context.Context, tenantID string) error {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM credentials WHERE tenant_id = ?`

	if _, err := querier.ExecContext(ctx, query, tenantID); err != nil {
		return apperrors.Wrap(err, "failed to delete credentials for tenant")
	}
	return nil
}

// NewMySQLCredentialRepository creates a new MySQL credential repository.
func NewMySQLCredentialRepository(db *sql.DB) *MySQLCredentialRepository {
	return &MySQLCredentialRepository{db: db}
}
