package usecase

import (
	"context"
	"time"

	channelDomain "github.com/allisson/gatekeeper/internal/channel/domain"
	"github.com/allisson/gatekeeper/internal/metrics"
)

// guardWithMetrics decorates Guard with metrics instrumentation.
type guardWithMetrics struct {
	next    Guard
	metrics metrics.BusinessMetrics
}

// NewGuardWithMetrics wraps a Guard with metrics recording.
func NewGuardWithMetrics(guard Guard, m metrics.BusinessMetrics) Guard {
	return &guardWithMetrics{
		next:    guard,
		metrics: m,
	}
}

// IsAllowed records metrics for channel access checks.
func (g *guardWithMetrics) IsAllowed(
	ctx context.Context,
	channelID, tenantID string,
	op channelDomain.Operation,
) (bool, error) {
	start := time.Now()
	allowed, err := g.next.IsAllowed(ctx, channelID, tenantID, op)

	status := "success"
	if err != nil {
		status = "error"
	}

	g.metrics.RecordOperation(ctx, "channel", "is_allowed", status)
	g.metrics.RecordDuration(ctx, "channel", "is_allowed", time.Since(start), status)

	return allowed, err
}

// Block records metrics for channel block operations.
func (g *guardWithMetrics) Block(ctx context.Context, input *BlockChannelInput) error {
	start := time.Now()
	err := g.next.Block(ctx, input)

	status := "success"
	if err != nil {
		status = "error"
	}

	g.metrics.RecordOperation(ctx, "channel", "block", status)
	g.metrics.RecordDuration(ctx, "channel", "block", time.Since(start), status)

	return err
}

// Unblock records metrics for channel unblock operations.
func (g *guardWithMetrics) Unblock(ctx context.Context, channelID, tenantID string) error {
	start := time.Now()
	err := g.next.Unblock(ctx, channelID, tenantID)

	status := "success"
	if err != nil {
		status = "error"
	}

	g.metrics.RecordOperation(ctx, "channel", "unblock", status)
	g.metrics.RecordDuration(ctx, "channel", "unblock", time.Since(start), status)

	return err
}

// List records metrics for channel block list operations.
func (g *guardWithMetrics) List(ctx context.Context, tenantID string, offset, limit int) ([]*channelDomain.Block, error) {
	start := time.Now()
	blocks, err := g.next.List(ctx, tenantID, offset, limit)

	status := "success"
	if err != nil {
		status = "error"
	}

	g.metrics.RecordOperation(ctx, "channel", "list", status)
	g.metrics.RecordDuration(ctx, "channel", "list", time.Since(start), status)

	return blocks, err
}
