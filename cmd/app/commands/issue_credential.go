package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	credentialDomain "github.com/allisson/gatekeeper/internal/credential/domain"
	credentialUseCase "github.com/allisson/gatekeeper/internal/credential/usecase"
)

// RunIssueCredential mints a signed bearer credential for a user in a tenant.
// Any previously live credential for the identity is revoked in the same
// transaction. The signed token is printed exactly once and never persisted.
//
// Requirements: Database must be migrated and accessible.
func RunIssueCredential(
	ctx context.Context,
	lifecycle credentialUseCase.Lifecycle,
	logger *slog.Logger,
	out io.Writer,
	userID, tenantID, format string,
) error {
	if userID == "" || tenantID == "" {
		return fmt.Errorf("user-id and tenant-id are required")
	}

	logger.Info("issuing credential",
		slog.String("user_id", userID),
		slog.String("tenant_id", tenantID),
	)

	output, err := lifecycle.Issue(ctx, credentialDomain.Identity{
		UserID:   userID,
		TenantID: tenantID,
	})
	if err != nil {
		return fmt.Errorf("failed to issue credential: %w", err)
	}

	if format == "json" {
		outputIssueJSON(out, output)
	} else {
		outputIssueText(out, output)
	}

	logger.Info("credential issued",
		slog.String("jti", output.Credential.JTI.String()),
		slog.Time("expires_at", output.Credential.ExpiresAt),
	)

	return nil
}

// outputIssueText outputs the result in human-readable text format.
func outputIssueText(out io.Writer, output *credentialDomain.IssueOutput) {
	fmt.Fprintln(out, "Credential issued successfully")
	fmt.Fprintf(out, "JTI:        %s\n", output.Credential.JTI)
	fmt.Fprintf(out, "Expires at: %s\n", output.Credential.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Signed token (shown only once, store it securely):")
	fmt.Fprintln(out, output.SignedToken)
}

// outputIssueJSON outputs the result in JSON format for machine consumption.
func outputIssueJSON(out io.Writer, output *credentialDomain.IssueOutput) {
	result := map[string]interface{}{
		"jti":          output.Credential.JTI.String(),
		"user_id":      output.Credential.UserID,
		"tenant_id":    output.Credential.TenantID,
		"issued_at":    output.Credential.IssuedAt,
		"expires_at":   output.Credential.ExpiresAt,
		"signed_token": output.SignedToken,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(out, "failed to marshal JSON: %v\n", err)
		return
	}

	fmt.Fprintln(out, string(jsonBytes))
}
