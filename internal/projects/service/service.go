package service

import (
	"context"

	"taskboard_backend/internal/projects/repository"
	"taskboard_backend/internal/projects/transport"
	"taskboard_backend/platform/apperr"
)

// Repository is the data access the projects service consumes. The concrete
// implementation lives in the repository package; tests substitute fakes.
type Repository interface {
	CreateProject(ctx context.Context, name, description string, createdBy int64) (*repository.Project, error)
	GetProject(ctx context.Context, id int64) (*repository.Project, error)
	ListProjectsForUser(ctx context.Context, userID int64) ([]repository.Project, error)
	UpdateProject(ctx context.Context, id int64, name, description *string) (*repository.Project, error)
	DeleteProject(ctx context.Context, id int64) error
	IsProjectManager(ctx context.Context, projectID, userID int64) (bool, error)
	HasBoardMembership(ctx context.Context, projectID, userID int64) (bool, error)
	GrantManager(ctx context.Context, projectID, userID int64) error
	RevokeManager(ctx context.Context, projectID, userID int64) error
	ListManagers(ctx context.Context, projectID int64) ([]repository.Manager, error)
}

// Service provides project CRUD and manager grant management. Reads require
// the caller to manage the project or belong to one of its boards; mutations
// other than create require a manager grant.
type Service struct {
	repo Repository
}

// New creates a new projects service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateProject creates a project owned by the caller. The creator receives a
// manager grant as part of the same operation.
func (s *Service) CreateProject(ctx context.Context, userID int64, req transport.CreateProjectRequest) (*transport.ProjectResponse, error) {
	p, err := s.repo.CreateProject(ctx, req.Name, req.Description, userID)
	if err != nil {
		return nil, err
	}
	return toProjectResponse(p), nil
}

// GetProject returns a project the caller manages or participates in.
func (s *Service) GetProject(ctx context.Context, userID, projectID int64) (*transport.ProjectResponse, error) {
	p, err := s.repo.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.requireAccess(ctx, projectID, userID); err != nil {
		return nil, err
	}
	return toProjectResponse(p), nil
}

// ListProjects returns the projects the caller manages or participates in.
func (s *Service) ListProjects(ctx context.Context, userID int64) ([]transport.ProjectResponse, error) {
	projects, err := s.repo.ListProjectsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]transport.ProjectResponse, 0, len(projects))
	for i := range projects {
		out = append(out, *toProjectResponse(&projects[i]))
	}
	return out, nil
}

// UpdateProject updates a project. Manager only.
func (s *Service) UpdateProject(ctx context.Context, userID, projectID int64, req transport.UpdateProjectRequest) (*transport.ProjectResponse, error) {
	if err := s.requireManager(ctx, projectID, userID); err != nil {
		return nil, err
	}

	p, err := s.repo.UpdateProject(ctx, projectID, req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	return toProjectResponse(p), nil
}

// DeleteProject deletes a project and everything under it. Manager only.
func (s *Service) DeleteProject(ctx context.Context, userID, projectID int64) error {
	if err := s.requireManager(ctx, projectID, userID); err != nil {
		return err
	}
	return s.repo.DeleteProject(ctx, projectID)
}

// GrantManager grants manager rights on a project. Manager only.
func (s *Service) GrantManager(ctx context.Context, userID, projectID, granteeID int64) error {
	if err := s.requireManager(ctx, projectID, userID); err != nil {
		return err
	}
	return s.repo.GrantManager(ctx, projectID, granteeID)
}

// RevokeManager revokes manager rights on a project. Manager only.
func (s *Service) RevokeManager(ctx context.Context, userID, projectID, granteeID int64) error {
	if err := s.requireManager(ctx, projectID, userID); err != nil {
		return err
	}
	return s.repo.RevokeManager(ctx, projectID, granteeID)
}

// ListManagers lists the manager grants on a project the caller can access.
func (s *Service) ListManagers(ctx context.Context, userID, projectID int64) ([]transport.ManagerResponse, error) {
	if err := s.requireAccess(ctx, projectID, userID); err != nil {
		return nil, err
	}

	managers, err := s.repo.ListManagers(ctx, projectID)
	if err != nil {
		return nil, err
	}

	out := make([]transport.ManagerResponse, 0, len(managers))
	for _, m := range managers {
		out = append(out, transport.ManagerResponse{
			ProjectID: m.ProjectID,
			UserID:    m.UserID,
			GrantedAt: m.GrantedAt,
		})
	}
	return out, nil
}

// requireAccess admits project managers and members of any board under the
// project, mirroring the board access rule.
func (s *Service) requireAccess(ctx context.Context, projectID, userID int64) error {
	manager, err := s.repo.IsProjectManager(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if manager {
		return nil
	}

	member, err := s.repo.HasBoardMembership(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if !member {
		return apperr.Forbidden("not a project member")
	}
	return nil
}

func (s *Service) requireManager(ctx context.Context, projectID, userID int64) error {
	manager, err := s.repo.IsProjectManager(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if !manager {
		return apperr.Forbidden("not a project manager")
	}
	return nil
}

func toProjectResponse(p *repository.Project) *transport.ProjectResponse {
	return &transport.ProjectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   p.CreatedAt,
	}
}
