// Package boards provides the boards bounded context module: boards, lists
// and board memberships.
package boards

import (
	"taskboard_backend/internal/boards/handler"
	"taskboard_backend/internal/boards/repository"
	"taskboard_backend/internal/boards/service"
	"taskboard_backend/internal/events"
	apphttp "taskboard_backend/internal/http"
	"taskboard_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the boards bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates a new boards module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, eventBus events.Bus) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, eventBus)
	h := handler.New(svc, val)

	return &Module{handler: h}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "boards"
}

// RegisterRoutes registers the module's routes under /api/v1.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/boards"))
	m.handler.RegisterProjectRoutes(ctx.Protected.Group("/projects"))
	m.handler.RegisterListRoutes(ctx.Protected.Group("/lists"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
