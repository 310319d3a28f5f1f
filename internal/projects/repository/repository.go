package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskboard_backend/platform/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Project represents the project database model.
type Project struct {
	ID          int64     `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	CreatedBy   int64     `db:"created_by"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// Manager is a project manager grant.
type Manager struct {
	ProjectID int64     `db:"project_id"`
	UserID    int64     `db:"user_id"`
	GrantedAt time.Time `db:"granted_at"`
}

const projectNotFoundMsg = "project not found"

// Repository provides database operations for projects and manager grants.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new projects repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateProject inserts a project and grants the creator manager rights in
// the same transaction.
func (r *Repository) CreateProject(ctx context.Context, name, description string, createdBy int64) (*Project, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var p Project
	query := `
		INSERT INTO projects (name, description, created_by)
		VALUES ($1, $2, $3)
		RETURNING id, name, description, created_by, created_at, updated_at`

	err = tx.QueryRow(ctx, query, name, description, createdBy).
		Scan(&p.ID, &p.Name, &p.Description, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO project_managers (project_id, user_id) VALUES ($1, $2)`,
		p.ID, createdBy)
	if err != nil {
		return nil, fmt.Errorf("failed to grant creator manager rights: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &p, nil
}

// GetProject retrieves a project by ID.
func (r *Repository) GetProject(ctx context.Context, id int64) (*Project, error) {
	var p Project
	query := `SELECT id, name, description, created_by, created_at, updated_at FROM projects WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(projectNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return &p, nil
}

// ListProjectsForUser retrieves all projects the user manages or participates
// in through a board membership.
func (r *Repository) ListProjectsForUser(ctx context.Context, userID int64) ([]Project, error) {
	query := `
		SELECT DISTINCT p.id, p.name, p.description, p.created_by, p.created_at, p.updated_at
		FROM projects p
		LEFT JOIN project_managers pm ON pm.project_id = p.id AND pm.user_id = $1
		LEFT JOIN boards b ON b.project_id = p.id
		LEFT JOIN board_memberships bm ON bm.board_id = b.id AND bm.user_id = $1
		WHERE pm.user_id IS NOT NULL OR bm.user_id IS NOT NULL
		ORDER BY p.created_at, p.id`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := make([]Project, 0)
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}

	return projects, nil
}

// UpdateProject applies non-nil fields and returns the updated row.
func (r *Repository) UpdateProject(ctx context.Context, id int64, name, description *string) (*Project, error) {
	var p Project
	query := `
		UPDATE projects
		SET name = COALESCE($2, name),
		    description = COALESCE($3, description),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, description, created_by, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, id, name, description).
		Scan(&p.ID, &p.Name, &p.Description, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(projectNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return &p, nil
}

// DeleteProject removes a project.
func (r *Repository) DeleteProject(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(projectNotFoundMsg)
	}
	return nil
}

// IsProjectManager reports whether the user holds a manager grant on the project.
func (r *Repository) IsProjectManager(ctx context.Context, projectID, userID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM project_managers WHERE project_id = $1 AND user_id = $2)`

	if err := r.pool.QueryRow(ctx, query, projectID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check project manager: %w", err)
	}
	return exists, nil
}

// HasBoardMembership reports whether the user is a member of any board under
// the project.
func (r *Repository) HasBoardMembership(ctx context.Context, projectID, userID int64) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS(
			SELECT 1 FROM board_memberships bm
			JOIN boards b ON b.id = bm.board_id
			WHERE b.project_id = $1 AND bm.user_id = $2
		)`

	if err := r.pool.QueryRow(ctx, query, projectID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check project participation: %w", err)
	}
	return exists, nil
}

// GrantManager adds a manager grant. Granting twice is a no-op.
func (r *Repository) GrantManager(ctx context.Context, projectID, userID int64) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO project_managers (project_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		projectID, userID)
	if err != nil {
		return fmt.Errorf("failed to grant manager: %w", err)
	}
	return nil
}

// RevokeManager removes a manager grant.
func (r *Repository) RevokeManager(ctx context.Context, projectID, userID int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM project_managers WHERE project_id = $1 AND user_id = $2`,
		projectID, userID)
	if err != nil {
		return fmt.Errorf("failed to revoke manager: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("manager grant not found")
	}
	return nil
}

// ListManagers retrieves the manager grants for a project.
func (r *Repository) ListManagers(ctx context.Context, projectID int64) ([]Manager, error) {
	query := `SELECT project_id, user_id, granted_at FROM project_managers WHERE project_id = $1 ORDER BY granted_at, user_id`

	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list managers: %w", err)
	}
	defer rows.Close()

	managers := make([]Manager, 0)
	for rows.Next() {
		var m Manager
		if err := rows.Scan(&m.ProjectID, &m.UserID, &m.GrantedAt); err != nil {
			return nil, fmt.Errorf("failed to scan manager: %w", err)
		}
		managers = append(managers, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate managers: %w", err)
	}

	return managers, nil
}
