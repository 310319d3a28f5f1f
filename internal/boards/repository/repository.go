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

// Board represents the board database model.
type Board struct {
	ID        int64     `db:"id"`
	ProjectID int64     `db:"project_id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// List represents a list (column) on a board.
type List struct {
	ID       int64  `db:"id"`
	BoardID  int64  `db:"board_id"`
	Name     string `db:"name"`
	Position int32  `db:"position"`
}

// Membership is a user's participation grant on a board.
type Membership struct {
	BoardID   int64     `db:"board_id"`
	UserID    int64     `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
}

const (
	boardNotFoundMsg = "board not found"
	listNotFoundMsg  = "list not found"
)

// Repository provides database operations for boards, lists and memberships.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new boards repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateBoard inserts a board and adds the creator as its first member in the
// same transaction.
func (r *Repository) CreateBoard(ctx context.Context, projectID int64, name string, createdBy int64) (*Board, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var b Board
	query := `
		INSERT INTO boards (project_id, name)
		VALUES ($1, $2)
		RETURNING id, project_id, name, created_at, updated_at`

	err = tx.QueryRow(ctx, query, projectID, name).
		Scan(&b.ID, &b.ProjectID, &b.Name, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create board: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO board_memberships (board_id, user_id) VALUES ($1, $2)`,
		b.ID, createdBy)
	if err != nil {
		return nil, fmt.Errorf("failed to add creator membership: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &b, nil
}

// GetBoard retrieves a board by ID.
func (r *Repository) GetBoard(ctx context.Context, id int64) (*Board, error) {
	var b Board
	query := `SELECT id, project_id, name, created_at, updated_at FROM boards WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).
		Scan(&b.ID, &b.ProjectID, &b.Name, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(boardNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get board: %w", err)
	}

	return &b, nil
}

// ListBoards retrieves all boards under a project.
func (r *Repository) ListBoards(ctx context.Context, projectID int64) ([]Board, error) {
	query := `SELECT id, project_id, name, created_at, updated_at FROM boards WHERE project_id = $1 ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list boards: %w", err)
	}
	defer rows.Close()

	boards := make([]Board, 0)
	for rows.Next() {
		var b Board
		if err := rows.Scan(&b.ID, &b.ProjectID, &b.Name, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan board: %w", err)
		}
		boards = append(boards, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate boards: %w", err)
	}

	return boards, nil
}

// UpdateBoard renames a board.
func (r *Repository) UpdateBoard(ctx context.Context, id int64, name string) (*Board, error) {
	var b Board
	query := `
		UPDATE boards SET name = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, project_id, name, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, id, name).
		Scan(&b.ID, &b.ProjectID, &b.Name, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(boardNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to update board: %w", err)
	}

	return &b, nil
}

// DeleteBoard removes a board.
func (r *Repository) DeleteBoard(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM boards WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete board: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(boardNotFoundMsg)
	}
	return nil
}

// CreateList appends a list at the end of the board.
func (r *Repository) CreateList(ctx context.Context, boardID int64, name string) (*List, error) {
	var l List
	query := `
		INSERT INTO lists (board_id, name, position)
		SELECT $1, $2, COALESCE(MAX(position) + 1, 0) FROM lists WHERE board_id = $1
		RETURNING id, board_id, name, position`

	err := r.pool.QueryRow(ctx, query, boardID, name).
		Scan(&l.ID, &l.BoardID, &l.Name, &l.Position)
	if err != nil {
		return nil, fmt.Errorf("failed to create list: %w", err)
	}

	return &l, nil
}

// GetList retrieves a list by ID.
func (r *Repository) GetList(ctx context.Context, id int64) (*List, error) {
	var l List
	query := `SELECT id, board_id, name, position FROM lists WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(&l.ID, &l.BoardID, &l.Name, &l.Position)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(listNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get list: %w", err)
	}

	return &l, nil
}

// ListLists retrieves the lists on a board in position order.
func (r *Repository) ListLists(ctx context.Context, boardID int64) ([]List, error) {
	query := `SELECT id, board_id, name, position FROM lists WHERE board_id = $1 ORDER BY position, id`

	rows, err := r.pool.Query(ctx, query, boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lists: %w", err)
	}
	defer rows.Close()

	lists := make([]List, 0)
	for rows.Next() {
		var l List
		if err := rows.Scan(&l.ID, &l.BoardID, &l.Name, &l.Position); err != nil {
			return nil, fmt.Errorf("failed to scan list: %w", err)
		}
		lists = append(lists, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lists: %w", err)
	}

	return lists, nil
}

// UpdateList applies non-nil fields and returns the updated row.
func (r *Repository) UpdateList(ctx context.Context, id int64, name *string, position *int32) (*List, error) {
	var l List
	query := `
		UPDATE lists
		SET name = COALESCE($2, name),
		    position = COALESCE($3, position)
		WHERE id = $1
		RETURNING id, board_id, name, position`

	err := r.pool.QueryRow(ctx, query, id, name, position).
		Scan(&l.ID, &l.BoardID, &l.Name, &l.Position)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(listNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to update list: %w", err)
	}

	return &l, nil
}

// DeleteList removes a list and its cards.
func (r *Repository) DeleteList(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM lists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete list: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(listNotFoundMsg)
	}
	return nil
}

// IsBoardMember reports whether the user holds a membership on the board.
func (r *Repository) IsBoardMember(ctx context.Context, boardID, userID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM board_memberships WHERE board_id = $1 AND user_id = $2)`

	if err := r.pool.QueryRow(ctx, query, boardID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check board membership: %w", err)
	}
	return exists, nil
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

// AddMember grants board membership. Adding twice is a no-op.
func (r *Repository) AddMember(ctx context.Context, boardID, userID int64) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO board_memberships (board_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		boardID, userID)
	if err != nil {
		return fmt.Errorf("failed to add board member: %w", err)
	}
	return nil
}

// RemoveMember revokes board membership.
func (r *Repository) RemoveMember(ctx context.Context, boardID, userID int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM board_memberships WHERE board_id = $1 AND user_id = $2`,
		boardID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove board member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("membership not found")
	}
	return nil
}

// ListMembers retrieves the memberships on a board.
func (r *Repository) ListMembers(ctx context.Context, boardID int64) ([]Membership, error) {
	query := `SELECT board_id, user_id, created_at FROM board_memberships WHERE board_id = $1 ORDER BY created_at, user_id`

	rows, err := r.pool.Query(ctx, query, boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to list board members: %w", err)
	}
	defer rows.Close()

	members := make([]Membership, 0)
	for rows.Next() {
		var m Membership
		if err := rows.Scan(&m.BoardID, &m.UserID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate memberships: %w", err)
	}

	return members, nil
}
