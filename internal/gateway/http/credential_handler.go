package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	credentialDomain "github.com/allisson/gatekeeper/internal/credential/domain"
	credentialUseCase "github.com/allisson/gatekeeper/internal/credential/usecase"
	"github.com/allisson/gatekeeper/internal/gateway/http/dto"
	"github.com/allisson/gatekeeper/internal/httputil"
	customValidation "github.com/allisson/gatekeeper/internal/validation"
)

// CredentialHandler handles HTTP requests for the bearer credential lifecycle.
type CredentialHandler struct {
	lifecycle credentialUseCase.Lifecycle
	logger    *slog.Logger
}

// NewCredentialHandler creates a new credential handler with required dependencies.
func NewCredentialHandler(lifecycle credentialUseCase.Lifecycle, logger *slog.Logger) *CredentialHandler {
	return &CredentialHandler{
		lifecycle: lifecycle,
		logger:    logger,
	}
}

// IssueHandler mints a signed token for an identity.
// POST /v1/credentials
// Returns 201 Created with the token. SECURITY: The token is only returned
// once; any previously live credential for the identity is revoked.
func (h *CredentialHandler) IssueHandler(c *gin.Context) {
	var req dto.IssueCredentialRequest

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

	identity := credentialDomain.Identity{
		UserID:   req.UserID,
		TenantID: req.TenantID,
	}

	output, err := h.lifecycle.Issue(c.Request.Context(), identity)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapIssueOutputToResponse(output))
}

// RevokeHandler revokes one credential by token id, or every credential for
// an identity when no token id is given.
// POST /v1/credentials/revoke
// Returns 204 No Content.
func (h *CredentialHandler) RevokeHandler(c *gin.Context) {
	var req dto.RevokeCredentialsRequest

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

	if req.JTI != "" {
		jti, err := uuid.Parse(req.JTI)
		if err != nil {
			httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid jti: %w", err), h.logger)
			return
		}
		if err := h.lifecycle.Revoke(c.Request.Context(), jti); err != nil {
			httputil.HandleErrorGin(c, err, h.logger)
			return
		}
		c.Status(http.StatusNoContent)
		return
	}

	if err := h.lifecycle.RevokeAll(c.Request.Context(), req.UserID, req.TenantID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// SweepHandler removes revoked and expired registry rows.
// POST /v1/credentials/sweep?dry_run=true
// Returns 200 OK with the number of rows removed (or countable in dry-run mode).
func (h *CredentialHandler) SweepHandler(c *gin.Context) {
	dryRun := c.Query("dry_run") == "true"

	removed, err := h.lifecycle.Sweep(c.Request.Context(), dryRun)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.SweepResponse{Removed: removed, DryRun: dryRun})
}
