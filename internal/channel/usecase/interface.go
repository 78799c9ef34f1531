// Package usecase defines business logic for the channel blocklist.
package usecase

import (
	"context"

	channelDomain "github.com/allisson/gatekeeper/internal/channel/domain"
)

// BlockRepository defines persistence operations for channel block rows.
// Implementations must support transaction-aware operations via context
// propagation.
type BlockRepository interface {
	// Get retrieves the block row. Returns ErrBlockNotFound if absent.
	Get(ctx context.Context, channelID, tenantID string) (*channelDomain.Block, error)

	// Upsert inserts or updates a block row, preserving a stored name when
	// the incoming name is nil.
	Upsert(ctx context.Context, block *channelDomain.Block) error

	// Delete removes the block row for a channel.
	Delete(ctx context.Context, channelID, tenantID string) error

	// ListByTenant returns block rows for a tenant ordered by channel id.
	ListByTenant(ctx context.Context, tenantID string, offset, limit int) ([]*channelDomain.Block, error)

	// DeleteByTenant removes every block row for a tenant.
	DeleteByTenant(ctx context.Context, tenantID string) error
}

// BlockChannelInput carries the fields for blocking a channel.
type BlockChannelInput struct {
	ChannelID  string  `json:"channel_id"`
	TenantID   string  `json:"tenant_id"`
	Name       *string `json:"name,omitempty"`
	BlockRead  bool    `json:"block_read"`
	BlockWrite bool    `json:"block_write"`
	BlockedBy  string  `json:"blocked_by"`
}

// Guard defines business logic operations for channel access control.
// Channels are allowed by default; only an explicit block row restricts
// access.
type Guard interface {
	// IsAllowed reports whether the operation is permitted on the channel.
	// A channel with no block row is always allowed.
	IsAllowed(ctx context.Context, channelID, tenantID string, op channelDomain.Operation) (bool, error)

	// Block inserts or updates a restriction on a channel.
	Block(ctx context.Context, input *BlockChannelInput) error

	// Unblock removes the restriction on a channel entirely.
	Unblock(ctx context.Context, channelID, tenantID string) error

	// List returns the blocked channels for a tenant.
	List(ctx context.Context, tenantID string, offset, limit int) ([]*channelDomain.Block, error)
}
