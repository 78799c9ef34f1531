package usecase

import (
	"context"
	"time"

	"github.com/allisson/gatekeeper/internal/metrics"
	tenantDomain "github.com/allisson/gatekeeper/internal/tenant/domain"
)

// directoryWithMetrics decorates Directory with metrics instrumentation.
type directoryWithMetrics struct {
	next    Directory
	metrics metrics.BusinessMetrics
}

// NewDirectoryWithMetrics wraps a Directory with metrics recording.
func NewDirectoryWithMetrics(directory Directory, m metrics.BusinessMetrics) Directory {
	return &directoryWithMetrics{
		next:    directory,
		metrics: m,
	}
}

// Save records metrics for install registration.
func (d *directoryWithMetrics) Save(ctx context.Context, input *SaveInstallationInput) (*tenantDomain.Installation, error) {
	start := time.Now()
	installation, err := d.next.Save(ctx, input)

	status := "success"
	if err != nil {
		status = "error"
	}

	d.metrics.RecordOperation(ctx, "tenant", "save", status)
	d.metrics.RecordDuration(ctx, "tenant", "save", time.Since(start), status)

	return installation, err
}

// Get records metrics for install retrieval.
func (d *directoryWithMetrics) Get(ctx context.Context, canonicalID string) (*tenantDomain.Installation, error) {
	start := time.Now()
	installation, err := d.next.Get(ctx, canonicalID)

	status := "success"
	if err != nil {
		status = "error"
	}

	d.metrics.RecordOperation(ctx, "tenant", "get", status)
	d.metrics.RecordDuration(ctx, "tenant", "get", time.Since(start), status)

	return installation, err
}

// List records metrics for install listing.
func (d *directoryWithMetrics) List(ctx context.Context, offset, limit int) ([]*tenantDomain.Installation, error) {
	start := time.Now()
	installations, err := d.next.List(ctx, offset, limit)

	status := "success"
	if err != nil {
		status = "error"
	}

	d.metrics.RecordOperation(ctx, "tenant", "list", status)
	d.metrics.RecordDuration(ctx, "tenant", "list", time.Since(start), status)

	return installations, err
}

// Delete records metrics for install removal.
func (d *directoryWithMetrics) Delete(ctx context.Context, canonicalID string) error {
	start := time.Now()
	err := d.next.Delete(ctx, canonicalID)

	status := "success"
	if err != nil {
		status = "error"
	}

	d.metrics.RecordOperation(ctx, "tenant", "delete", status)
	d.metrics.RecordDuration(ctx, "tenant", "delete", time.Since(start), status)

	return err
}

// ResolveExecutionCredential records metrics for credential resolution.
func (d *directoryWithMetrics) ResolveExecutionCredential(
	ctx context.Context,
	workspaceID string,
	enterpriseID *string,
) (*tenantDomain.ExecutionCredential, error) {
	start := time.Now()
	credential, err := d.next.ResolveExecutionCredential(ctx, workspaceID, enterpriseID)

	status := "success"
	if err != nil {
		status = "error"
	}

	d.metrics.RecordOperation(ctx, "tenant", "resolve_execution_credential", status)
	d.metrics.RecordDuration(ctx, "tenant", "resolve_execution_credential", time.Since(start), status)

	return credential, err
}

// Teardown records metrics for tenant teardown.
func (d *directoryWithMetrics) Teardown(ctx context.Context, tenantID string) error {
	start := time.Now()
	err := d.next.Teardown(ctx, tenantID)

	status := "success"
	if err != nil {
		status = "error"
	}

	d.metrics.RecordOperation(ctx, "tenant", "teardown", status)
	d.metrics.RecordDuration(ctx, "tenant", "teardown", time.Since(start), status)

	return err
}
