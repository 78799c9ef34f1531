package repository

import (
	"context"
	"database/sql"
	"errors"

	channelDomain "github.com/allisson/gatekeeper/internal/channel/domain"
	"github.com/allisson/gatekeeper/internal/database"

	apperrors "github.com/allisson/gatekeeper/internal/errors"
)

// MySQLBlockRepository implements channel block persistence for MySQL.
// Uses transaction support via database.GetTx().
type MySQLBlockRepository struct {
	db *sql.DB
}

// Get retrieves the block row for a channel within a tenant. Returns
// ErrBlockNotFound if the channel is unrestricted.
func (m *MySQLBlockRepository) Get(
	ctx context.Context,
	channelID, tenantID string,
) (*channelDomain.Block, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT channel_id, tenant_id, name, block_read, block_write, blocked_by, created_at, updated_at
			  FROM channel_blocklist
			  WHERE channel_id = ? AND tenant_id = ?`

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
func (m *MySQLBlockRepository) Upsert(ctx context.Context, block *channelDomain.Block) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO channel_blocklist (channel_id, tenant_id, name, block_read, block_write, blocked_by, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE
				  name = COALESCE(VALUES(name), name),
				  block_read = VALUES(block_read),
				  block_write = VALUES(block_write),
				  blocked_by = VALUES(blocked_by),
				  updated_at = VALUES(updated_at)`

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
func (m *MySQLBlockRepository) Delete(ctx context.Context, channelID, tenantID string) error {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM channel_blocklist WHERE channel_id = ? AND tenant_id = ?`

	if _, err := querier.ExecContext(ctx, query, channelID, tenantID); err != nil {
		return apperrors.Wrap(err, "failed to delete channel block")
	}
	return nil
}

// ListByTenant returns block rows for a tenant ordered by channel id.
func (m *MySQLBlockRepository) ListByTenant(
	ctx context.Context,
	tenantID string,
	offset, limit int,
) ([]*channelDomain.Block, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT channel_id, tenant_id, name, block_read, block_write, blocked_by, created_at, updated_at
			  FROM channel_blocklist
			  WHERE tenant_id = ?
			  ORDER BY channel_id LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, tenantID, limit, offset)
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
func (m *MySQLBlockRepository) DeleteByTenant(ctx context.Context, tenantID string) error {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM channel_blocklist WHERE tenant_id = ?`

	if _, err := querier.ExecContext(ctx, query, tenantID); err != nil {
		return apperrors.Wrap(err, "failed to delete channel blocks")
	}
	return nil
}

// NewMySQLBlockRepository creates a new MySQL channel block repository.
func NewMySQLBlockRepository(db *sql.DB) *MySQLBlockRepository {
	return &MySQLBlockRepository{db: db}
}
