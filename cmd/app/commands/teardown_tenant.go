package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	tenantUseCase "github.com/allisson/gatekeeper/internal/tenant/usecase"
)

// RunTeardownTenant removes every trace of a tenant in one transaction:
// install records, permission records, channel blocks and credentials.
//
// Requirements: Database must be migrated and accessible.
func RunTeardownTenant(
	ctx context.Context,
	directory tenantUseCase.Directory,
	logger *slog.Logger,
	out io.Writer,
	tenantID string,
) error {
	if tenantID == "" {
		return fmt.Errorf("tenant-id is required")
	}

	logger.Info("tearing down tenant", slog.String("tenant_id", tenantID))

	if err := directory.Teardown(ctx, tenantID); err != nil {
		return fmt.Errorf("failed to tear down tenant: %w", err)
	}

	fmt.Fprintf(out, "Tenant %s removed\n", tenantID)

	logger.Info("teardown completed", slog.String("tenant_id", tenantID))
	return nil
}
