package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	credentialDomain "github.com/allisson/gatekeeper/internal/credential/domain"
	"github.com/allisson/gatekeeper/internal/gateway"
	"github.com/allisson/gatekeeper/internal/httputil"
)

// AuthenticationMiddleware verifies the Bearer token in the Authorization
// header and stores the bound identity in the request context.
//
// Authorization header format: "Bearer <token>" (case-insensitive "bearer").
//
// Error handling:
//   - Missing or malformed Authorization header → 401 Unauthorized
//   - Invalid signature, expired, revoked or unknown token → 401 Unauthorized
//   - Other errors → 500 Internal Server Error
func AuthenticationMiddleware(authorizer gateway.Authorizer, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		signedToken, err := extractBearerToken(c)
		if err != nil {
			logger.Debug("authentication failed", slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		identity, err := authorizer.Authenticate(c.Request.Context(), signedToken)
		if err != nil {
			logger.Debug("authentication failed", slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		ctx := WithIdentity(c.Request.Context(), identity)
		ctx = WithToken(ctx, signedToken)
		c.Request = c.Request.WithContext(ctx)

		logger.Debug("authentication successful",
			slog.String("user_id", identity.UserID),
			slog.String("tenant_id", identity.TenantID),
		)

		c.Next()
	}
}

// extractBearerToken pulls the token out of the Authorization header.
func extractBearerToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", credentialDomain.ErrMissingCredential
	}

	const bearerPrefix = "bearer "
	if len(authHeader) < len(bearerPrefix) ||
		!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
		return "", credentialDomain.ErrMalformedCredential
	}

	signedToken := authHeader[len(bearerPrefix):]
	if signedToken == "" {
		return "", credentialDomain.ErrMissingCredential
	}

	return signedToken, nil
}
