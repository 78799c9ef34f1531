package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/gatekeeper/internal/gateway/http/dto"
	"github.com/allisson/gatekeeper/internal/httputil"
	permissionUseCase "github.com/allisson/gatekeeper/internal/permission/usecase"
	customValidation "github.com/allisson/gatekeeper/internal/validation"
)

// PermissionHandler handles HTTP requests for permission administration.
type PermissionHandler struct {
	resolver permissionUseCase.Resolver
	logger   *slog.Logger
}

// NewPermissionHandler creates a new permission handler with required dependencies.
func NewPermissionHandler(resolver permissionUseCase.Resolver, logger *slog.Logger) *PermissionHandler {
	return &PermissionHandler{
		resolver: resolver,
		logger:   logger,
	}
}

// GetEffectiveHandler computes the effective permission map for a user.
// GET /v1/tenants/:tenant_id/users/:user_id/permissions
// Returns 200 OK with the resolved map. A user with no record resolves to the
// tenant defaults; a deactivated user resolves to all-false.
func (h *PermissionHandler) GetEffectiveHandler(c *gin.Context) {
	tenantID, userID, ok := h.pathIdentity(c)
	if !ok {
		return
	}

	effective, err := h.resolver.GetEffective(c.Request.Context(), userID, tenantID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.EffectivePermissionsResponse{
		UserID:      userID,
		TenantID:    tenantID,
		Permissions: dto.MapPermissionsToResponse(effective),
	}
	c.JSON(http.StatusOK, response)
}

// SetDefaultsHandler replaces the tenant-level default permission map.
// PUT /v1/tenants/:tenant_id/permissions/defaults
// Returns 204 No Content. Unknown capability keys are rejected.
func (h *PermissionHandler) SetDefaultsHandler(c *gin.Context) {
	tenantID, ok := h.pathTenant(c)
	if !ok {
		return
	}

	var req dto.SetDefaultsRequest

	// Parse and bind JSON
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	// Validate request
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if err := h.resolver.SetDefaults(c.Request.Context(), tenantID, dto.MapPermissions(req.Permissions)); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// SetOverridesHandler replaces a user's override map.
// PUT /v1/tenants/:tenant_id/users/:user_id/overrides
// Returns 204 No Content. Outstanding credentials for the user are revoked so
// the new scope only takes effect after re-issuance.
func (h *PermissionHandler) SetOverridesHandler(c *gin.Context) {
	tenantID, userID, ok := h.pathIdentity(c)
	if !ok {
		return
	}

	var req dto.SetOverridesRequest

	// Parse and bind JSON
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	// Validate request
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if err := h.resolver.SetUserOverrides(c.Request.Context(), userID, tenantID, dto.MapPermissions(req.Overrides)); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// SetActiveHandler toggles a user's access.
// PUT /v1/tenants/:tenant_id/users/:user_id/active
// Returns 204 No Content. Deactivation revokes the user's credentials.
func (h *PermissionHandler) SetActiveHandler(c *gin.Context) {
	tenantID, userID, ok := h.pathIdentity(c)
	if !ok {
		return
	}

	var req dto.SetActiveRequest

	// Parse and bind JSON
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	// Validate request
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if err := h.resolver.SetUserActive(c.Request.Context(), userID, tenantID, *req.Active); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// EnsureUserHandler registers a user on first observation.
// PUT /v1/tenants/:tenant_id/users/:user_id
// Returns 204 No Content. Creates an empty active record when none exists;
// an existing record is left untouched, so the call is idempotent.
func (h *PermissionHandler) EnsureUserHandler(c *gin.Context) {
	tenantID, userID, ok := h.pathIdentity(c)
	if !ok {
		return
	}

	if err := h.resolver.EnsureUser(c.Request.Context(), userID, tenantID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// RemoveUserHandler deletes a user's permission record and revokes their credentials.
// DELETE /v1/tenants/:tenant_id/users/:user_id
// Returns 204 No Content.
func (h *PermissionHandler) RemoveUserHandler(c *gin.Context) {
	tenantID, userID, ok := h.pathIdentity(c)
	if !ok {
		return
	}

	if err := h.resolver.RemoveUser(c.Request.Context(), userID, tenantID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListUsersHandler returns the tenant's user records with resolved permissions.
// GET /v1/tenants/:tenant_id/users?offset=0&limit=50
// Returns 200 OK with the paginated listing.
func (h *PermissionHandler) ListUsersHandler(c *gin.Context) {
	tenantID, ok := h.pathTenant(c)
	if !ok {
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	summaries, err := h.resolver.ListUsers(c.Request.Context(), tenantID, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapUserSummariesToListResponse(summaries))
}

// pathTenant extracts and validates the tenant id path parameter.
func (h *PermissionHandler) pathTenant(c *gin.Context) (string, bool) {
	tenantID := c.Param("tenant_id")
	if tenantID == "" {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("tenant_id cannot be empty"), h.logger)
		return "", false
	}
	return tenantID, true
}

// pathIdentity extracts and validates the tenant and user id path parameters.
func (h *PermissionHandler) pathIdentity(c *gin.Context) (tenantID, userID string, ok bool) {
	tenantID, ok = h.pathTenant(c)
	if !ok {
		return "", "", false
	}
	userID = c.Param("user_id")
	if userID == "" {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("user_id cannot be empty"), h.logger)
		return "", "", false
	}
	return tenantID, userID, true
}
