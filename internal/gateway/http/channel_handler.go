package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	channelUseCase "github.com/allisson/gatekeeper/internal/channel/usecase"
	"github.com/allisson/gatekeeper/internal/gateway/http/dto"
	"github.com/allisson/gatekeeper/internal/httputil"
	customValidation "github.com/allisson/gatekeeper/internal/validation"
)

// ChannelHandler handles HTTP requests for the channel blocklist.
type ChannelHandler struct {
	guard  channelUseCase.Guard
	logger *slog.Logger
}

// NewChannelHandler creates a new channel handler with required dependencies.
func NewChannelHandler(guard channelUseCase.Guard, logger *slog.Logger) *ChannelHandler {
	return &ChannelHandler{
		guard:  guard,
		logger: logger,
	}
}

// BlockHandler inserts or updates a restriction on a channel.
// POST /v1/tenants/:tenant_id/channels/block - Requires authentication.
// Returns 204 No Content. Re-blocking with a nil name keeps the stored name.
func (h *ChannelHandler) BlockHandler(c *gin.Context) {
	tenantID := c.Param("tenant_id")
	if tenantID == "" {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("tenant_id cannot be empty"), h.logger)
		return
	}

	var req dto.BlockChannelRequest

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

	// Record who placed the block
	blockedBy := "system"
	if identity, ok := GetIdentity(c.Request.Context()); ok && identity != nil {
		blockedBy = identity.UserID
	}

	if err := h.guard.Block(c.Request.Context(), req.MapToBlockInput(tenantID, blockedBy)); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// UnblockHandler removes the restriction on a channel entirely.
// DELETE /v1/tenants/:tenant_id/channels/:channel_id/block
// Returns 204 No Content, also when no block row existed.
func (h *ChannelHandler) UnblockHandler(c *gin.Context) {
	tenantID := c.Param("tenant_id")
	channelID := c.Param("channel_id")
	if tenantID == "" || channelID == "" {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("tenant_id and channel_id cannot be empty"), h.logger)
		return
	}

	if err := h.guard.Unblock(c.Request.Context(), channelID, tenantID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListHandler returns the blocked channels for a tenant.
// GET /v1/tenants/:tenant_id/channels/blocked?offset=0&limit=50
// Returns 200 OK with the paginated listing.
func (h *ChannelHandler) ListHandler(c *gin.Context) {
	tenantID := c.Param("tenant_id")
	if tenantID == "" {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("tenant_id cannot be empty"), h.logger)
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	blocks, err := h.guard.List(c.Request.Context(), tenantID, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapBlocksToListResponse(blocks))
}
