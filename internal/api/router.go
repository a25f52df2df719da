package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/charlesng35/agentauth/internal/app"
	"github.com/charlesng35/agentauth/internal/auth"
	"github.com/charlesng35/agentauth/internal/handlers"
	"github.com/charlesng35/agentauth/internal/middleware"
	"github.com/charlesng35/agentauth/internal/monitoring"
	"github.com/charlesng35/agentauth/internal/playground"
)

// Dependencies groups the services the HTTP layer dispatches to.
type Dependencies struct {
	Config     *app.Config
	Auth       *auth.Service
	Playground *playground.Service
	// Readiness is optional; /health/ready is only mounted when set.
	Readiness *monitoring.Readiness
}

// NewRouter builds the Gin engine, wires middleware and registers routes.
func NewRouter(deps Dependencies) (*gin.Engine, error) {
	if deps.Config == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if deps.Auth == nil {
		return nil, fmt.Errorf("auth service must be provided")
	}
	if deps.Playground == nil {
		return nil, fmt.Errorf("playground service must be provided")
	}
	cfg := deps.Config

	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowedOrigins...))

	r.GET("/health", handlers.Health())
	if deps.Readiness != nil {
		r.GET("/health/ready", handlers.Readiness(deps.Readiness))
	}

	authHandler := handlers.NewAuthHandler(deps.Auth)
	authRoutes := r.Group("/api/auth")
	{
		authRoutes.POST("/verify-invitation", authHandler.VerifyInvitation)
		authRoutes.POST("/verify-session", authHandler.VerifySession)
		authRoutes.POST("/logout", authHandler.Logout)
		authRoutes.GET("/invitations", authHandler.ListInvitations)
	}

	playgroundHandler := handlers.NewPlaygroundHandler(deps.Playground)
	r.GET("/v1/playground/agents/:agent_id/sessions", playgroundHandler.ListSessions)

	if prom := cfg.Monitoring.Prometheus; prom.Enabled {
		endpoint := prom.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
