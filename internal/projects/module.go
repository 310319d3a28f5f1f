// Package projects provides the projects bounded context module: project CRUD
// and project manager grants.
package projects

import (
	apphttp "taskboard_backend/internal/http"
	"taskboard_backend/internal/projects/handler"
	"taskboard_backend/internal/projects/repository"
	"taskboard_backend/internal/projects/service"
	"taskboard_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the projects bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates a new projects module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo)
	h := handler.New(svc, val)

	return &Module{handler: h}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "projects"
}

// RegisterRoutes registers the module's routes under /api/v1.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/projects"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
