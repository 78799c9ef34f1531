package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	credentialDomain "github.com/allisson/gatekeeper/internal/credential/domain"
	"github.com/allisson/gatekeeper/internal/metrics"
)

// lifecycleWithMetrics decorates Lifecycle with metrics instrumentation.
type lifecycleWithMetrics struct {
	next    Lifecycle
	metrics metrics.BusinessMetrics
}

// NewLifecycleWithMetrics wraps a Lifecycle with metrics recording.
func NewLifecycleWithMetrics(lifecycle Lifecycle, m metrics.BusinessMetrics) Lifecycle {
	return &lifecycleWithMetrics{
		next:    lifecycle,
		metrics: m,
	}
}

// Issue records metrics for credential issuance.
func (l *lifecycleWithMetrics) Issue(
	ctx context.Context,
	identity credentialDomain.Identity,
) (*credentialDomain.IssueOutput, error) {
	start := time.Now()
	output, err := l.next.Issue(ctx, identity)

	status := "success"
	if err != nil {
		status = "error"
	}

	l.metrics.RecordOperation(ctx, "credential", "issue", status)
	l.metrics.RecordDuration(ctx, "credential", "issue", time.Since(start), status)

	return output, err
}

// Verify records metrics for credential verification.
func (l *lifecycleWithMetrics) Verify(ctx context.Context, signedToken string) (*credentialDomain.Identity, error) {
	start := time.Now()
	identity, err := l.next.Verify(ctx, signedToken)

	status := "success"
	if err != nil {
		status = "error"
	}

	l.metrics.RecordOperation(ctx, "credential", "verify", status)
	l.metrics.RecordDuration(ctx, "credential", "verify", time.Since(start), status)

	return identity, err
}

// Revoke records metrics for single credential revocation.
func (l *lifecycleWithMetrics) Revoke(ctx context.Context, jti uuid.UUID) error {
	start := time.Now()
	err := l.next.Revoke(ctx, jti)

	status := "success"
	if err != nil {
		status = "error"
	}

	l.metrics.RecordOperation(ctx, "credential", "revoke", status)
	l.metrics.RecordDuration(ctx, "credential", "revoke", time.Since(start), status)

	return err
}

// RevokeAll records metrics for identity-wide revocation.
func (l *lifecycleWithMetrics) RevokeAll(ctx context.Context, userID, tenantID string) error {
	start := time.Now()
	err := l.next.RevokeAll(ctx, userID, tenantID)

	status := "success"
	if err != nil {
		status = "error"
	}

	l.metrics.RecordOperation(ctx, "credential", "revoke_all", status)
	l.metrics.RecordDuration(ctx, "credential", "revoke_all", time.Since(start), status)

	return err
}

// RevokeTenant records metrics for tenant-wide revocation.
func (l *lifecycleWithMetrics) RevokeTenant(ctx context.Context, tenantID string) error {
	start := time.Now()
	err := l.next.RevokeTenant(ctx, tenantID)

	status := "success"
	if err != nil {
		status = "error"
	}

	l.metrics.RecordOperation(ctx, "credential", "revoke_tenant", status)
	l.metrics.RecordDuration(ctx, "credential", "revoke_tenant", time.Since(start), status)

	return err
}

// Sweep records metrics for registry sweeps.
func (l *lifecycleWithMetrics) Sweep(ctx context.Context, dryRun bool) (int64, error) {
	start := time.Now()
	count, err := l.next.Sweep(ctx, dryRun)

	status := "success"
	if err != nil {
		status = "error"
	}

	l.metrics.RecordOperation(ctx, "credential", "sweep", status)
	l.metrics.RecordDuration(ctx, "credential", "sweep", time.Since(start), status)

	return count, err
}
