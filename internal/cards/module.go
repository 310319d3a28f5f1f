// Package cards provides the cards domain module, including the filtered,
// access-controlled card search.
package cards

import (
	"taskboard_backend/internal/cards/handler"
	"taskboard_backend/internal/cards/repository"
	"taskboard_backend/internal/cards/service"
	"taskboard_backend/internal/events"
	apphttp "taskboard_backend/internal/http"
	"taskboard_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the cards domain module
type Module struct {
	handler *handler.Handler
}

// NewModule creates a new cards module with all dependencies wired
func NewModule(pool *pgxpool.Pool, val *validator.Validator, eventBus events.Bus) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, eventBus)
	h := handler.New(svc, val)

	return &Module{handler: h}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "cards"
}

// RegisterRoutes registers the module's routes under /api/v1
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/cards"))
	m.handler.RegisterListRoutes(ctx.Protected.Group("/lists"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
