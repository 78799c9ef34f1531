package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/gatekeeper/internal/errors"
	"github.com/allisson/gatekeeper/internal/gateway"
	"github.com/allisson/gatekeeper/internal/gateway/http/dto"
	"github.com/allisson/gatekeeper/internal/httputil"
	permissionDomain "github.com/allisson/gatekeeper/internal/permission/domain"
	customValidation "github.com/allisson/gatekeeper/internal/validation"
)

// AuthorizeHandler handles HTTP requests for authorization decisions.
type AuthorizeHandler struct {
	authorizer gateway.Authorizer
	logger     *slog.Logger
}

// NewAuthorizeHandler creates a new authorize handler with required dependencies.
func NewAuthorizeHandler(authorizer gateway.Authorizer, logger *slog.Logger) *AuthorizeHandler {
	return &AuthorizeHandler{
		authorizer: authorizer,
		logger:     logger,
	}
}

// AuthorizeHandler checks a requested action against the caller's effective
// permissions and, when a channel is named, the channel blocklist.
// POST /v1/authorize - Requires authentication.
// Returns 200 OK when the action is allowed, 403 Forbidden when it is not.
func (h *AuthorizeHandler) AuthorizeHandler(c *gin.Context) {
	token, ok := GetToken(c.Request.Context())
	if !ok {
		// Should never happen - authentication middleware stores the token
		h.logger.Error("authorize handler: no token in context")
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.AuthorizeRequest

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

	input := &gateway.AuthorizeInput{
		Key:       permissionDomain.Key(req.Key),
		Operation: permissionDomain.Operation(req.Operation),
		ChannelID: req.ChannelID,
	}

	identity, err := h.authorizer.Authorize(c.Request.Context(), token, input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapIdentityToAuthorizeResponse(identity))
}

// ExecutionCredentialHandler resolves the credential for acting in a workspace.
// GET /v1/execution-credential?workspace_id=W&enterprise_id=E - Requires authentication.
// Returns 200 OK with the bot token; the enterprise record wins when both exist.
func (h *AuthorizeHandler) ExecutionCredentialHandler(c *gin.Context) {
	workspaceID := c.Query("workspace_id")
	if workspaceID == "" {
		httputil.HandleBadRequestGin(c, fmt.Errorf("workspace_id is required"), h.logger)
		return
	}

	var enterpriseID *string
	if value := c.Query("enterprise_id"); value != "" {
		enterpriseID = &value
	}

	credential, err := h.authorizer.ResolveExecutionCredential(c.Request.Context(), workspaceID, enterpriseID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapExecutionCredentialToResponse(credential))
}
