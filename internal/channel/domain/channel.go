// Package domain defines channel blocklist entities.
package domain

import "time"

// Block is a per-tenant restriction on a single channel. A channel with no
// Block row is unrestricted.
type Block struct {
	ChannelID  string    `json:"channel_id"`
	TenantID   string    `json:"tenant_id"`
	Name       *string   `json:"name,omitempty"`
	BlockRead  bool      `json:"block_read"`
	BlockWrite bool      `json:"block_write"`
	BlockedBy  string    `json:"blocked_by"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Blocks reports whether the block restricts the given operation.
func (b *Block) Blocks(op Operation) bool {
	switch op {
	case OpRead:
		return b.BlockRead
	case OpWrite:
		return b.BlockWrite
	default:
		return true
	}
}

// Operation is a channel access mode.
type Operation string

// Channel operations.
const (
	OpRead  Operation = "read"
	OpWrite Operation = "write"
)
