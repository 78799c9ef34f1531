package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	channelDomain "github.com/allisson/gatekeeper/internal/channel/domain"
	apperrors "github.com/allisson/gatekeeper/internal/errors"
)

// ChannelGuard implements the Guard interface.
type ChannelGuard struct {
	blockRepo BlockRepository
	logger    *slog.Logger
}

// NewChannelGuard creates a new ChannelGuard.
func NewChannelGuard(blockRepo BlockRepository, logger *slog.Logger) *ChannelGuard {
	return &ChannelGuard{
		blockRepo: blockRepo,
		logger:    logger,
	}
}

// IsAllowed reports whether the operation is permitted on the channel.
func (g *ChannelGuard) IsAllowed(
	ctx context.Context,
	channelID, tenantID string,
	op channelDomain.Operation,
) (bool, error) {
	block, err := g.blockRepo.Get(ctx, channelID, tenantID)
	if err != nil {
		if errors.Is(err, channelDomain.ErrBlockNotFound) {
			return true, nil
		}
		return false, apperrors.Wrap(err, "failed to check channel block")
	}

	return !block.Blocks(op), nil
}

// Block inserts or updates a restriction on a channel.
func (g *ChannelGuard) Block(ctx context.Context, input *BlockChannelInput) error {
	if input.ChannelID == "" || input.TenantID == "" {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "channel id and tenant id are required")
	}

	// An empty name is treated as absent so the upsert keeps the stored one.
	name := input.Name
	if name != nil && *name == "" {
		name = nil
	}

	now := time.Now().UTC()
	block := &channelDomain.Block{
		ChannelID:  input.ChannelID,
		TenantID:   input.TenantID,
		Name:       name,
		BlockRead:  input.BlockRead,
		BlockWrite: input.BlockWrite,
		BlockedBy:  input.BlockedBy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := g.blockRepo.Upsert(ctx, block); err != nil {
		return apperrors.Wrap(err, "failed to block channel")
	}

	g.logger.InfoContext(ctx, "channel blocked",
		"channel_id", input.ChannelID,
		"tenant_id", input.TenantID,
		"block_read", input.BlockRead,
		"block_write", input.BlockWrite,
	)
	return nil
}

// Unblock removes the restriction on a channel entirely.
func (g *ChannelGuard) Unblock(ctx context.Context, channelID, tenantID string) error {
	if err := g.blockRepo.Delete(ctx, channelID, tenantID); err != nil {
		return apperrors.Wrap(err, "failed to unblock channel")
	}

	g.logger.InfoContext(ctx, "channel unblocked", "channel_id", channelID, "tenant_id", tenantID)
	return nil
}

// List returns the blocked channels for a tenant.
func (g *ChannelGuard) List(ctx context.Context, tenantID string, offset, limit int) ([]*channelDomain.Block, error) {
	blocks, err := g.blockRepo.ListByTenant(ctx, tenantID, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list channel blocks")
	}
	return blocks, nil
}
