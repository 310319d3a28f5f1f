package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskboard_backend/internal/cards/criteria"
	"taskboard_backend/platform/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Card represents the card database model.
type Card struct {
	ID          int64     `db:"id"`
	BoardID     int64     `db:"board_id"`
	ListID      int64     `db:"list_id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// Board is the minimal board projection the cards module reads.
type Board struct {
	ID        int64 `db:"id"`
	ProjectID int64 `db:"project_id"`
}

// BoardMembership is a user's participation grant on a board.
type BoardMembership struct {
	ID        int64     `db:"id"`
	BoardID   int64     `db:"board_id"`
	UserID    int64     `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
}

// CardMembership is a user's assignment to a card.
type CardMembership struct {
	ID        int64     `db:"id"`
	CardID    int64     `db:"card_id"`
	UserID    int64     `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
}

// CardLabel is a label attached to a card, denormalized with the label row.
type CardLabel struct {
	ID      int64  `db:"id"`
	CardID  int64  `db:"card_id"`
	LabelID int64  `db:"label_id"`
	Name    string `db:"name"`
	Color   string `db:"color"`
}

// Task is a checklist task on a card.
type Task struct {
	ID          int64     `db:"id"`
	CardID      int64     `db:"card_id"`
	Name        string    `db:"name"`
	IsCompleted bool      `db:"is_completed"`
	CreatedAt   time.Time `db:"created_at"`
}

const cardNotFoundMsg = "card not found"

// Repository provides database operations for cards and the access-control
// lookups the search pipeline depends on.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new cards repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FindBoard retrieves a board by ID. A missing board is not an error: it
// returns (nil, nil) so callers can distinguish absence from failure.
func (r *Repository) FindBoard(ctx context.Context, boardID int64) (*Board, error) {
	var board Board
	query := `SELECT id, project_id FROM boards WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, boardID).Scan(&board.ID, &board.ProjectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find board: %w", err)
	}

	return &board, nil
}

// FindBoardByList retrieves the board owning the given list, or nil.
func (r *Repository) FindBoardByList(ctx context.Context, listID int64) (*Board, error) {
	var board Board
	query := `SELECT b.id, b.project_id FROM boards b JOIN lists l ON l.board_id = b.id WHERE l.id = $1`

	err := r.pool.QueryRow(ctx, query, listID).Scan(&board.ID, &board.ProjectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find board by list: %w", err)
	}

	return &board, nil
}

// FindBoardMembership retrieves the user's membership on a board, or nil.
func (r *Repository) FindBoardMembership(ctx context.Context, boardID, userID int64) (*BoardMembership, error) {
	var m BoardMembership
	query := `SELECT id, board_id, user_id, created_at FROM board_memberships WHERE board_id = $1 AND user_id = $2`

	err := r.pool.QueryRow(ctx, query, boardID, userID).Scan(&m.ID, &m.BoardID, &m.UserID, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find board membership: %w", err)
	}

	return &m, nil
}

// IsBoardMember reports whether the user holds a membership on the board.
func (r *Repository) IsBoardMember(ctx context.Context, userID, boardID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM board_memberships WHERE board_id = $1 AND user_id = $2)`

	if err := r.pool.QueryRow(ctx, query, boardID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check board membership: %w", err)
	}

	return exists, nil
}

// IsProjectManager reports whether the user manages the project.
func (r *Repository) IsProjectManager(ctx context.Context, userID, projectID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM project_managers WHERE project_id = $1 AND user_id = $2)`

	if err := r.pool.QueryRow(ctx, query, projectID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check project manager: %w", err)
	}

	return exists, nil
}

// IsCardSubscriber reports whether the user subscribed to the card.
func (r *Repository) IsCardSubscriber(ctx context.Context, userID, cardID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM card_subscriptions WHERE card_id = $1 AND user_id = $2)`

	if err := r.pool.QueryRow(ctx, query, cardID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check card subscription: %w", err)
	}

	return exists, nil
}

// FindCards retrieves cards matching the compiled criteria in stable
// creation order. Candidate order is what the search response preserves.
func (r *Repository) FindCards(ctx context.Context, crit criteria.Criteria) ([]Card, error) {
	query, args := buildFindCardsQuery(crit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find cards: %w", err)
	}
	defer rows.Close()

	var items []Card
	for rows.Next() {
		var card Card
		if err := rows.Scan(
			&card.ID, &card.BoardID, &card.ListID, &card.Name,
			&card.Description, &card.CreatedAt, &card.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		items = append(items, card)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cards: %w", err)
	}

	return items, nil
}

// buildFindCardsQuery translates criteria into a parameterized SELECT.
// Contains predicates use ILIKE, matching the store's case-insensitive
// substring semantics.
func buildFindCardsQuery(crit criteria.Criteria) (string, []interface{}) {
	query := `SELECT id, board_id, list_id, name, description, created_at, updated_at FROM cards WHERE 1=1`
	args := make([]interface{}, 0, 6)
	argIndex := 1

	for _, eq := range crit.Equalities {
		query += fmt.Sprintf(" AND %s = $%d", eq.Field, argIndex)
		args = append(args, eq.Value)
		argIndex++
	}

	for _, c := range crit.Contains {
		query += fmt.Sprintf(" AND %s ILIKE $%d", c.Field, argIndex)
		args = append(args, "%"+escapeLike(c.Phrase)+"%")
		argIndex++
	}

	if crit.Created != nil {
		if crit.Created.Min != nil {
			query += fmt.Sprintf(" AND created_at >= $%d", argIndex)
			args = append(args, *crit.Created.Min)
			argIndex++
		}
		if crit.Created.Max != nil {
			query += fmt.Sprintf(" AND created_at <= $%d", argIndex)
			args = append(args, *crit.Created.Max)
			argIndex++
		}
	}

	query += " ORDER BY created_at, id"
	return query, args
}

// escapeLike neutralizes LIKE metacharacters so user text matches literally.
func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}

// FindCardMemberships batch-fetches memberships for the given card IDs in one query.
func (r *Repository) FindCardMemberships(ctx context.Context, cardIDs []int64) ([]CardMembership, error) {
	if len(cardIDs) == 0 {
		return []CardMembership{}, nil
	}

	query := `SELECT id, card_id, user_id, created_at FROM card_memberships WHERE card_id = ANY($1) ORDER BY card_id, id`

	rows, err := r.pool.Query(ctx, query, cardIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to find card memberships: %w", err)
	}
	defer rows.Close()

	items := make([]CardMembership, 0)
	for rows.Next() {
		var m CardMembership
		if err := rows.Scan(&m.ID, &m.CardID, &m.UserID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan card membership: %w", err)
		}
		items = append(items, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate card memberships: %w", err)
	}

	return items, nil
}

// FindCardLabels batch-fetches labels for the given card IDs in one query.
func (r *Repository) FindCardLabels(ctx context.Context, cardIDs []int64) ([]CardLabel, error) {
	if len(cardIDs) == 0 {
		return []CardLabel{}, nil
	}

	query := `SELECT cl.id, cl.card_id, cl.label_id, l.name, l.color
		FROM card_labels cl
		JOIN labels l ON l.id = cl.label_id
		WHERE cl.card_id = ANY($1) ORDER BY cl.card_id, cl.id`

	rows, err := r.pool.Query(ctx, query, cardIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to find card labels: %w", err)
	}
	defer rows.Close()

	items := make([]CardLabel, 0)
	for rows.Next() {
		var cl CardLabel
		if err := rows.Scan(&cl.ID, &cl.CardID, &cl.LabelID, &cl.Name, &cl.Color); err != nil {
			return nil, fmt.Errorf("failed to scan card label: %w", err)
		}
		items = append(items, cl)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate card labels: %w", err)
	}

	return items, nil
}

// FindTasks batch-fetches tasks for the given card IDs in one query.
func (r *Repository) FindTasks(ctx context.Context, cardIDs []int64) ([]Task, error) {
	if len(cardIDs) == 0 {
		return []Task{}, nil
	}

	query := `SELECT id, card_id, name, is_completed, created_at FROM tasks WHERE card_id = ANY($1) ORDER BY card_id, id`

	rows, err := r.pool.Query(ctx, query, cardIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to find tasks: %w", err)
	}
	defer rows.Close()

	items := make([]Task, 0)
	for rows.Next() {
		var task Task
		if err := rows.Scan(&task.ID, &task.CardID, &task.Name, &task.IsCompleted, &task.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		items = append(items, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}

	return items, nil
}

// GetCard retrieves a card by ID.
func (r *Repository) GetCard(ctx context.Context, cardID int64) (*Card, error) {
	var card Card
	query := `SELECT id, board_id, list_id, name, description, created_at, updated_at FROM cards WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, cardID).Scan(
		&card.ID, &card.BoardID, &card.ListID, &card.Name,
		&card.Description, &card.CreatedAt, &card.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(cardNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get card: %w", err)
	}

	return &card, nil
}

// CreateCard inserts a card into the list, deriving board_id from the list row.
func (r *Repository) CreateCard(ctx context.Context, listID int64, name, description string) (*Card, error) {
	var card Card
	query := `INSERT INTO cards (board_id, list_id, name, description)
		SELECT l.board_id, l.id, $2, $3 FROM lists l WHERE l.id = $1
		RETURNING id, board_id, list_id, name, description, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, listID, name, description).Scan(
		&card.ID, &card.BoardID, &card.ListID, &card.Name,
		&card.Description, &card.CreatedAt, &card.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("list not found")
		}
		return nil, fmt.Errorf("failed to create card: %w", err)
	}

	return &card, nil
}

// UpdateCard updates a card's name and description.
func (r *Repository) UpdateCard(ctx context.Context, card *Card) error {
	query := `UPDATE cards SET name = $2, description = $3, updated_at = now() WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, card.ID, card.Name, card.Description)
	if err != nil {
		return fmt.Errorf("failed to update card: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound(cardNotFoundMsg)
	}

	return nil
}

// DeleteCard removes a card.
func (r *Repository) DeleteCard(ctx context.Context, cardID int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM cards WHERE id = $1`, cardID)
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound(cardNotFoundMsg)
	}

	return nil
}

// Subscribe records the user's subscription to the card. Idempotent.
func (r *Repository) Subscribe(ctx context.Context, userID, cardID int64) error {
	query := `INSERT INTO card_subscriptions (card_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`

	if _, err := r.pool.Exec(ctx, query, cardID, userID); err != nil {
		return fmt.Errorf("failed to subscribe to card: %w", err)
	}

	return nil
}

// Unsubscribe removes the user's subscription to the card. Idempotent.
func (r *Repository) Unsubscribe(ctx context.Context, userID, cardID int64) error {
	query := `DELETE FROM card_subscriptions WHERE card_id = $1 AND user_id = $2`

	if _, err := r.pool.Exec(ctx, query, cardID, userID); err != nil {
		return fmt.Errorf("failed to unsubscribe from card: %w", err)
	}

	return nil
}
