package service

import (
	"context"
	"testing"

	"taskboard_backend/internal/projects/repository"
	"taskboard_backend/internal/projects/transport"
	"taskboard_backend/platform/apperr"
)

type userProject struct{ userID, projectID int64 }

type fakeRepo struct {
	projects    map[int64]repository.Project
	managers    map[userProject]bool
	boardMember map[userProject]bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		projects:    make(map[int64]repository.Project),
		managers:    make(map[userProject]bool),
		boardMember: make(map[userProject]bool),
	}
}

func (f *fakeRepo) CreateProject(ctx context.Context, name, description string, createdBy int64) (*repository.Project, error) {
	p := repository.Project{ID: int64(len(f.projects) + 1), Name: name, Description: description, CreatedBy: createdBy}
	f.projects[p.ID] = p
	f.managers[userProject{createdBy, p.ID}] = true
	return &p, nil
}

func (f *fakeRepo) GetProject(ctx context.Context, id int64) (*repository.Project, error) {
	if p, ok := f.projects[id]; ok {
		return &p, nil
	}
	return nil, apperr.NotFound("project not found")
}

func (f *fakeRepo) ListProjectsForUser(ctx context.Context, userID int64) ([]repository.Project, error) {
	return nil, nil
}

func (f *fakeRepo) UpdateProject(ctx context.Context, id int64, name, description *string) (*repository.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, apperr.NotFound("project not found")
	}
	if name != nil {
		p.Name = *name
	}
	if description != nil {
		p.Description = *description
	}
	f.projects[id] = p
	return &p, nil
}

func (f *fakeRepo) DeleteProject(ctx context.Context, id int64) error {
	delete(f.projects, id)
	return nil
}

func (f *fakeRepo) IsProjectManager(ctx context.Context, projectID, userID int64) (bool, error) {
	return f.managers[userProject{userID, projectID}], nil
}

func (f *fakeRepo) HasBoardMembership(ctx context.Context, projectID, userID int64) (bool, error) {
	return f.boardMember[userProject{userID, projectID}], nil
}

func (f *fakeRepo) GrantManager(ctx context.Context, projectID, userID int64) error {
	f.managers[userProject{userID, projectID}] = true
	return nil
}

func (f *fakeRepo) RevokeManager(ctx context.Context, projectID, userID int64) error {
	delete(f.managers, userProject{userID, projectID})
	return nil
}

func (f *fakeRepo) ListManagers(ctx context.Context, projectID int64) ([]repository.Manager, error) {
	return nil, nil
}

const requesterID int64 = 42

func TestGetProjectRejectsOutsiders(t *testing.T) {
	repo := newFakeRepo()
	repo.projects[1] = repository.Project{ID: 1, Name: "internal"}
	svc := New(repo)

	_, err := svc.GetProject(context.Background(), requesterID, 1)
	if err == nil {
		t.Fatalf("expected forbidden error for an outsider")
	}
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden kind, got %v", err)
	}
}

func TestGetProjectAdmitsBoardMember(t *testing.T) {
	repo := newFakeRepo()
	repo.projects[1] = repository.Project{ID: 1, Name: "internal"}
	repo.boardMember[userProject{requesterID, 1}] = true
	svc := New(repo)

	p, err := svc.GetProject(context.Background(), requesterID, 1)
	if err != nil {
		t.Fatalf("expected success for a board member, got %v", err)
	}
	if p.ID != 1 {
		t.Fatalf("expected project 1, got %d", p.ID)
	}
}

func TestGetProjectAdmitsManager(t *testing.T) {
	repo := newFakeRepo()
	repo.projects[1] = repository.Project{ID: 1, Name: "internal"}
	repo.managers[userProject{requesterID, 1}] = true
	svc := New(repo)

	if _, err := svc.GetProject(context.Background(), requesterID, 1); err != nil {
		t.Fatalf("expected success for a manager, got %v", err)
	}
}

func TestListManagersRejectsOutsiders(t *testing.T) {
	repo := newFakeRepo()
	repo.projects[1] = repository.Project{ID: 1, Name: "internal"}
	svc := New(repo)

	_, err := svc.ListManagers(context.Background(), requesterID, 1)
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden kind, got %v", err)
	}
}

func TestUpdateProjectRequiresManagerGrant(t *testing.T) {
	repo := newFakeRepo()
	repo.projects[1] = repository.Project{ID: 1, Name: "internal"}
	repo.boardMember[userProject{requesterID, 1}] = true
	svc := New(repo)

	name := "renamed"
	_, err := svc.UpdateProject(context.Background(), requesterID, 1, transport.UpdateProjectRequest{Name: &name})
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden kind for non-manager, got %v", err)
	}
}
