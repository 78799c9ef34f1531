package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	credentialUseCase "github.com/allisson/gatekeeper/internal/credential/usecase"
)

// RunRevokeCredentials revokes a single credential by token id, or every
// outstanding credential for a user when jti is omitted and user-id plus
// tenant-id are given.
//
// Requirements: Database must be migrated and accessible.
func RunRevokeCredentials(
	ctx context.Context,
	lifecycle credentialUseCase.Lifecycle,
	logger *slog.Logger,
	out io.Writer,
	jti, userID, tenantID string,
) error {
	if jti != "" {
		parsed, err := uuid.Parse(jti)
		if err != nil {
			return fmt.Errorf("invalid jti: %w", err)
		}

		logger.Info("revoking credential", slog.String("jti", jti))

		if err := lifecycle.Revoke(ctx, parsed); err != nil {
			return fmt.Errorf("failed to revoke credential: %w", err)
		}

		fmt.Fprintf(out, "Credential %s revoked\n", jti)
		return nil
	}

	if userID == "" || tenantID == "" {
		return fmt.Errorf("either jti or both user-id and tenant-id are required")
	}

	logger.Info("revoking all credentials",
		slog.String("user_id", userID),
		slog.String("tenant_id", tenantID),
	)

	if err := lifecycle.RevokeAll(ctx, userID, tenantID); err != nil {
		return fmt.Errorf("failed to revoke credentials: %w", err)
	}

	fmt.Fprintf(out, "All credentials for user %s in tenant %s revoked\n", userID, tenantID)
	return nil
}
