package usecase

import (
	"context"
	"time"

	"github.com/allisson/gatekeeper/internal/metrics"
	permissionDomain "github.com/allisson/gatekeeper/internal/permission/domain"
)

// resolverWithMetrics decorates Resolver with metrics instrumentation.
type resolverWithMetrics struct {
	next    Resolver
	metrics metrics.BusinessMetrics
}

// NewResolverWithMetrics wraps a Resolver with metrics recording.
func NewResolverWithMetrics(resolver Resolver, m metrics.BusinessMetrics) Resolver {
	return &resolverWithMetrics{
		next:    resolver,
		metrics: m,
	}
}

// GetEffective records metrics for effective permission resolution.
func (r *resolverWithMetrics) GetEffective(ctx context.Context, userID, tenantID string) (permissionDomain.Map, error) {
	start := time.Now()
	effective, err := r.next.GetEffective(ctx, userID, tenantID)

	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, "permission", "get_effective", status)
	r.metrics.RecordDuration(ctx, "permission", "get_effective", time.Since(start), status)

	return effective, err
}

// IsAllowed records metrics for permission checks.
func (r *resolverWithMetrics) IsAllowed(
	ctx context.Context,
	userID, tenantID string,
	key permissionDomain.Key,
	op permissionDomain.Operation,
) (bool, error) {
	start := time.Now()
	allowed, err := r.next.IsAllowed(ctx, userID, tenantID, key, op)

	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, "permission", "is_allowed", status)
	r.metrics.RecordDuration(ctx, "permission", "is_allowed", time.Since(start), status)

	return allowed, err
}

// SetDefaults records metrics for tenant default updates.
func (r *resolverWithMetrics) SetDefaults(ctx context.Context, tenantID string, permissions permissionDomain.Map) error {
	start := time.Now()
	err := r.next.SetDefaults(ctx, tenantID, permissions)

	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, "permission", "set_defaults", status)
	r.metrics.RecordDuration(ctx, "permission", "set_defaults", time.Since(start), status)

	return err
}

// SetUserOverrides records metrics for override updates.
func (r *resolverWithMetrics) SetUserOverrides(ctx context.Context, userID, tenantID string, overrides permissionDomain.Map) error {
	start := time.Now()
	err := r.next.SetUserOverrides(ctx, userID, tenantID, overrides)

	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, "permission", "set_user_overrides", status)
	r.metrics.RecordDuration(ctx, "permission", "set_user_overrides", time.Since(start), status)

	return err
}

// SetUserActive records metrics for active flag updates.
func (r *resolverWithMetrics) SetUserActive(ctx context.Context, userID, tenantID string, active bool) error {
	start := time.Now()
	err := r.next.SetUserActive(ctx, userID, tenantID, active)

	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, "permission", "set_user_active", status)
	r.metrics.RecordDuration(ctx, "permission", "set_user_active", time.Since(start), status)

	return err
}

// EnsureUser records metrics for user record creation.
func (r *resolverWithMetrics) EnsureUser(ctx context.Context, userID, tenantID string) error {
	start := time.Now()
	err := r.next.EnsureUser(ctx, userID, tenantID)

	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, "permission", "ensure_user", status)
	r.metrics.RecordDuration(ctx, "permission", "ensure_user", time.Since(start), status)

	return err
}

// RemoveUser records metrics for user record removal.
func (r *resolverWithMetrics) RemoveUser(ctx context.Context, userID, tenantID string) error {
	start := time.Now()
	err := r.next.RemoveUser(ctx, userID, tenantID)

	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, "permission", "remove_user", status)
	r.metrics.RecordDuration(ctx, "permission", "remove_user", time.Since(start), status)

	return err
}

// ListUsers records metrics for user listing.
func (r *resolverWithMetrics) ListUsers(ctx context.Context, tenantID string, offset, limit int) ([]*permissionDomain.UserSummary, error) {
	start := time.Now()
	summaries, err := r.next.ListUsers(ctx, tenantID, offset, limit)

	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, "permission", "list_users", status)
	r.metrics.RecordDuration(ctx, "permission", "list_users", time.Since(start), status)

	return summaries, err
}
