package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	credentialUseCase "github.com/allisson/gatekeeper/internal/credential/usecase"
)

// RunSweepCredentials removes revoked and expired credential registry rows.
// Supports dry-run mode to preview the removal count and both text/JSON
// output formats.
//
// Requirements: Database must be migrated and accessible.
func RunSweepCredentials(
	ctx context.Context,
	lifecycle credentialUseCase.Lifecycle,
	logger *slog.Logger,
	out io.Writer,
	dryRun bool,
	format string,
) error {
	logger.Info("sweeping credentials",
		slog.Bool("dry_run", dryRun),
	)

	count, err := lifecycle.Sweep(ctx, dryRun)
	if err != nil {
		return fmt.Errorf("failed to sweep credentials: %w", err)
	}

	if format == "json" {
		outputSweepJSON(out, count, dryRun)
	} else {
		outputSweepText(out, count, dryRun)
	}

	logger.Info("sweep completed",
		slog.Int64("count", count),
		slog.Bool("dry_run", dryRun),
	)

	return nil
}

// outputSweepText outputs the result in human-readable text format.
func outputSweepText(out io.Writer, count int64, dryRun bool) {
	if dryRun {
		fmt.Fprintf(out, "Dry-run mode: Would remove %d credential registry row(s)\n", count)
	} else {
		fmt.Fprintf(out, "Successfully removed %d credential registry row(s)\n", count)
	}
}

// outputSweepJSON outputs the result in JSON format for machine consumption.
func outputSweepJSON(out io.Writer, count int64, dryRun bool) {
	result := map[string]interface{}{
		"count":   count,
		"dry_run": dryRun,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(out, "failed to marshal JSON: %v\n", err)
		return
	}

	fmt.Fprintln(out, string(jsonBytes))
}
