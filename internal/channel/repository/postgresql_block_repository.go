// Package repository provides persistence for the channel blocklist.
package repository

import (
	"context"
	"database/sql"
	"errors"

	channelDomain "github.com/allisson/gatekeeper/internal/channel/domain"
	"github.com/allisson/gatekeeper/internal/database"

	apperrors "github.com/allisson/gatekeeper/internal/errors"
)

// PostgreSQLBlockRepository implements channel block persistence for PostgreSQL.
// Uses transaction support via database.GetTx().
type PostgreSQLBlockRepository struct {
	db *sql.DB
}

// Get retrieves the block row for a channel within a tenant. Returns
// ErrBlockNotFound if the channel is unrestricted.
func (p *PostgreSQLBlockRepository) Get(
	ctx context.Context,
	channelID, tenantID string,
) (*channelDomain.Block, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT channel_id, tenant_id, name, block_read, block_write, blocked_by, created_at, updated_at
			  FROM channel_blocklist
			  WHERE channel_id = $1 AND tenant_id = $2`

	var block channelDomain.Block
	err := querier.QueryRowContext(ctx, query, channelID, tenantID).Scan(
		&block.ChannelID,
		&block.TenantID,
		&block.Name,
		&block.BlockRead,
		&block.BlockWrite,
		&block.BlockedBy,
		&block.CreatedAt,
		&block.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, channelDomain.ErrBlockNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get channel block")
	}

	return &block, nil
}

// Upsert inserts or updates a block row. A nil Name on update keeps the name
// already stored so repeated blocks without metadata do not erase it.
func (p *PostgreSQLBlockRepository) Upsert(ctx context.Context, block *channelDomain.Block) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO channel_blocklist (channel_id, tenant_id, name, block_read, block_write, blocked_by, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  ON CONFLICT (channel_id, tenant_id) DO UPDATE SET
				  name = COALESCE(EXCLUDED.name, channel_blocklist.name),
				  block_read = EXCLUDED.block_read,
				  block_write = EXCLUDED.block_write,
				  blocked_by = EXCLUDED.blocked_by,
				  updated_at = EXCLUDED.updated_at`

	_, err := querier.ExecContext(
		ctx,
		query,
		block.ChannelID,
		block.TenantID,
		block.Name,
		block.BlockRead,
		block.BlockWrite,
		block.BlockedBy,
		block.CreatedAt,
		block.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to upsert channel block")
	}
	return nil
}

// Delete removes the block row for a channel. Deleting an absent row is not
// an error.
func (p *PostgreSQLBlockRepository) Delete(ctx context.Context, channelID, tenantID string) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM channel_blocklist WHERE channel_id = $1 AND tenant_id = $2`

	if _, err := querier.ExecContext(ctx, query, channelID, tenantID); err != nil {
		return apperrors.Wrap(err, "failed to delete channel block")
	}
	return nil
}

// ListByTenant returns block rows for a tenant ordered by channel id.
func (p *PostgreSQLBlockRepository) ListByTenant(
	ctx context.Context,
	tenantID string,
	offset, limit int,
) ([]*channelDomain.Block, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT channel_id, tenant_id, name, block_read, block_write, blocked_by, created_at, updated_at
			  FROM channel_blocklist
			  WHERE tenant_id = $1
			  ORDER BY channel_id OFFSET $2 LIMIT $3`

	rows, err := querier.QueryContext(ctx, query, tenantID, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list channel blocks")
	}
	defer func() { _ = rows.Close() }()

	var blocks []*channelDomain.Block
	for rows.Next() {
		var block channelDomain.Block
		if err := rows.Scan(
			&block.ChannelID,
			&block.TenantID,
			&block.Name,
			&block.BlockRead,
			&block.BlockWrite,
			&block.BlockedBy,
			&block.CreatedAt,
			&block.UpdatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan channel block")
		}
		blocks = append(blocks, &block)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate channel blocks")
	}

	return blocks, nil
}

// DeleteByTenant removes every block row for a tenant.
func (p *PostgreSQLBlockRepository) DeleteByTenant(ctx context.Context, tenantID string) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM channel_blocklist WHERE tenant_id = $1`

	if _, err := querier.ExecContext(ctx, query, tenantID); err != nil {
		return apperrors.Wrap(err, "failed to delete channel blocks")
	}
	return nil
}

// NewPostgreSQLBlockRepository creates a new PostgreSQL channel block repository.
func NewPostgreSQLBlockRepository(db *sql.DB) *PostgreSQLBlockRepository {
	return &PostgreSQLBlockRepository{db: db}
}
