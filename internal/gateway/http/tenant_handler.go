package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/gatekeeper/internal/gateway/http/dto"
	"github.com/allisson/gatekeeper/internal/httputil"
	tenantUseCase "github.com/allisson/gatekeeper/internal/tenant/usecase"
	customValidation "github.com/allisson/gatekeeper/internal/validation"
)

// TenantHandler handles HTTP requests for install records and tenant teardown.
type TenantHandler struct {
	directory tenantUseCase.Directory
	logger    *slog.Logger
}

// NewTenantHandler creates a new tenant handler with required dependencies.
func NewTenantHandler(directory tenantUseCase.Directory, logger *slog.Logger) *TenantHandler {
	return &TenantHandler{
		directory: directory,
		logger:    logger,
	}
}

// SaveHandler registers or refreshes an install record.
// PUT /v1/installations
// Returns 201 Created with the record metadata (excludes the bot token).
func (h *TenantHandler) SaveHandler(c *gin.Context) {
	var req dto.SaveInstallationRequest

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

	var payload []byte
	if req.Payload != nil {
		var err error
		payload, err = json.Marshal(req.Payload)
		if err != nil {
			httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid payload: %w", err), h.logger)
			return
		}
	}

	installation, err := h.directory.Save(c.Request.Context(), req.MapToSaveInput(payload))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapInstallationToResponse(installation))
}

// GetHandler retrieves an install record by canonical id.
// GET /v1/installations/:id
// Returns 200 OK with the record metadata (excludes the bot token).
func (h *TenantHandler) GetHandler(c *gin.Context) {
	canonicalID := c.Param("id")
	if canonicalID == "" {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("id cannot be empty"), h.logger)
		return
	}

	installation, err := h.directory.Get(c.Request.Context(), canonicalID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapInstallationToResponse(installation))
}

// ListHandler returns install records ordered by id.
// GET /v1/installations?offset=0&limit=50
// Returns 200 OK with the paginated listing.
func (h *TenantHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	installations, err := h.directory.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapInstallationsToListResponse(installations))
}

// DeleteHandler removes a single install record by canonical id.
// DELETE /v1/installations/:id
// Returns 204 No Content.
func (h *TenantHandler) DeleteHandler(c *gin.Context) {
	canonicalID := c.Param("id")
	if canonicalID == "" {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("id cannot be empty"), h.logger)
		return
	}

	if err := h.directory.Delete(c.Request.Context(), canonicalID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// TeardownHandler removes every trace of a tenant in one transaction.
// DELETE /v1/tenants/:tenant_id
// Returns 204 No Content.
func (h *TenantHandler) TeardownHandler(c *gin.Context) {
	tenantID := c.Param("tenant_id")
	if tenantID == "" {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("tenant_id cannot be empty"), h.logger)
		return
	}

	if err := h.directory.Teardown(c.Request.Context(), tenantID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}
