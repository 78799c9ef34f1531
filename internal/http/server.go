package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/gatekeeper/internal/gateway"
	gatewayHTTP "github.com/allisson/gatekeeper/internal/gateway/http"
	"github.com/allisson/gatekeeper/internal/metrics"
)

// Server represents the HTTP server.
type Server struct {
	server *http.Server
	router *gin.Engine
	db     *sql.DB
	logger *slog.Logger
}

// NewServer creates a new HTTP server. The router is assembled separately via
// SetupRouter so callers control which handlers are mounted.
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// RouterConfig holds the handlers and settings needed to assemble the router.
type RouterConfig struct {
	Authorizer        gateway.Authorizer
	AuthorizeHandler  *gatewayHTTP.AuthorizeHandler
	PermissionHandler *gatewayHTTP.PermissionHandler
	ChannelHandler    *gatewayHTTP.ChannelHandler
	CredentialHandler *gatewayHTTP.CredentialHandler
	TenantHandler     *gatewayHTTP.TenantHandler

	// MetricsProvider is optional; when set, HTTP request metrics are recorded.
	MetricsProvider  *metrics.Provider
	MetricsNamespace string

	CORSEnabled      bool
	CORSAllowOrigins string

	RateLimitEnabled bool
	RateLimitRPS     float64
	RateLimitBurst   int
}

// SetupRouter assembles the Gin router with middleware and API routes.
//
// Credential issuance stays outside the authenticated group: a caller cannot
// hold a bearer token before one exists. Everything else requires a verified
// token.
func (s *Server) SetupRouter(cfg RouterConfig) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if cfg.MetricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(cfg.MetricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")

	// Bootstrap endpoint: mints the token later requests authenticate with.
	v1.POST("/credentials", cfg.CredentialHandler.IssueHandler)

	authenticated := v1.Group("")
	authenticated.Use(gatewayHTTP.AuthenticationMiddleware(cfg.Authorizer, s.logger))
	if cfg.RateLimitEnabled {
		authenticated.Use(gatewayHTTP.RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst, s.logger))
	}

	authenticated.POST("/authorize", cfg.AuthorizeHandler.AuthorizeHandler)
	authenticated.GET("/execution-credential", cfg.AuthorizeHandler.ExecutionCredentialHandler)

	authenticated.POST("/credentials/revoke", cfg.CredentialHandler.RevokeHandler)
	authenticated.POST("/credentials/sweep", cfg.CredentialHandler.SweepHandler)

	authenticated.PUT("/installations", cfg.TenantHandler.SaveHandler)
	authenticated.GET("/installations", cfg.TenantHandler.ListHandler)
	authenticated.GET("/installations/:id", cfg.TenantHandler.GetHandler)
	authenticated.DELETE("/installations/:id", cfg.TenantHandler.DeleteHandler)

	tenants := authenticated.Group("/tenants/:tenant_id")
	tenants.PUT("/permissions/defaults", cfg.PermissionHandler.SetDefaultsHandler)
	tenants.GET("/users", cfg.PermissionHandler.ListUsersHandler)
	tenants.PUT("/users/:user_id", cfg.PermissionHandler.EnsureUserHandler)
	tenants.GET("/users/:user_id/permissions", cfg.PermissionHandler.GetEffectiveHandler)
	tenants.PUT("/users/:user_id/overrides", cfg.PermissionHandler.SetOverridesHandler)
	tenants.PUT("/users/:user_id/active", cfg.PermissionHandler.SetActiveHandler)
	tenants.DELETE("/users/:user_id", cfg.PermissionHandler.RemoveUserHandler)
	tenants.POST("/channels/block", cfg.ChannelHandler.BlockHandler)
	tenants.GET("/channels/blocked", cfg.ChannelHandler.ListHandler)
	tenants.DELETE("/channels/:channel_id/block", cfg.ChannelHandler.UnblockHandler)
	authenticated.DELETE("/tenants/:tenant_id", cfg.TenantHandler.TeardownHandler)

	s.router = router
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the server can do useful work. A failed
// database ping makes the server not ready.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{"database": "ok"}

	if s.db == nil {
		components["database"] = "error"
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": components,
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		components["database"] = "error"
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": components,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": components,
	})
}

// GetHandler returns the configured router. Nil until SetupRouter is called.
func (s *Server) GetHandler() http.Handler {
	if s.router == nil {
		return nil
	}
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
