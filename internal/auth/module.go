// Package auth provides the authentication bounded context module.
package auth

import (
	"taskboard_backend/internal/auth/handler"
	"taskboard_backend/internal/auth/repository"
	"taskboard_backend/internal/auth/service"
	"taskboard_backend/internal/events"
	apphttp "taskboard_backend/internal/http"
	"taskboard_backend/platform/config"
	"taskboard_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates and initializes the auth module with all its dependencies.
func NewModule(pool *pgxpool.Pool, cfg config.AuthServiceConfig, val *validator.Validator, eventBus events.Bus) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cfg, eventBus)
	h := handler.New(svc, val)

	return &Module{handler: h}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// RegisterRoutes mounts auth routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Public auth routes with stricter rate limiting
	authGroup := ctx.V1.Group("/auth")
	authGroup.Use(ctx.AuthRateLimiter.RateLimit())
	m.handler.RegisterRoutes(authGroup)

	m.handler.RegisterProtectedRoutes(ctx.Protected.Group("/auth"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
