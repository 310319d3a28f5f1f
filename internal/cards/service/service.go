package service

import (
	"context"
	"strconv"

	"taskboard_backend/internal/cards/criteria"
	"taskboard_backend/internal/cards/repository"
	"taskboard_backend/internal/cards/transport"
	"taskboard_backend/internal/events"
	"taskboard_backend/platform/apperr"

	"golang.org/x/sync/errgroup"
)

const msgNotEnoughRights = "Not enough rights"

// Repository is the record store the search pipeline consumes. The concrete
// implementation lives in the repository package; tests substitute fakes.
type Repository interface {
	FindBoard(ctx context.Context, boardID int64) (*repository.Board, error)
	FindBoardByList(ctx context.Context, listID int64) (*repository.Board, error)
	FindBoardMembership(ctx context.Context, boardID, userID int64) (*repository.BoardMembership, error)
	IsBoardMember(ctx context.Context, userID, boardID int64) (bool, error)
	IsProjectManager(ctx context.Context, userID, projectID int64) (bool, error)
	IsCardSubscriber(ctx context.Context, userID, cardID int64) (bool, error)
	FindCards(ctx context.Context, crit criteria.Criteria) ([]repository.Card, error)
	FindCardMemberships(ctx context.Context, cardIDs []int64) ([]repository.CardMembership, error)
	FindCardLabels(ctx context.Context, cardIDs []int64) ([]repository.CardLabel, error)
	FindTasks(ctx context.Context, cardIDs []int64) ([]repository.Task, error)

	GetCard(ctx context.Context, cardID int64) (*repository.Card, error)
	CreateCard(ctx context.Context, listID int64, name, description string) (*repository.Card, error)
	UpdateCard(ctx context.Context, card *repository.Card) error
	DeleteCard(ctx context.Context, cardID int64) error
	Subscribe(ctx context.Context, userID, cardID int64) error
	Unsubscribe(ctx context.Context, userID, cardID int64) error
}

// Service provides business logic for cards, most importantly the filtered,
// access-controlled search.
type Service struct {
	repo     Repository
	eventBus events.Bus
}

// New creates a new cards service.
func New(repo Repository, eventBus events.Bus) *Service {
	return &Service{repo: repo, eventBus: eventBus}
}

// Search runs the full pipeline: compile filters, gate an explicit board
// scope, fetch candidates, authorize each candidate independently, enrich the
// authorized subset.
//
// Two distinct outcomes look similar but are not: a boardId that matches no
// board yields a successful empty envelope, while a board the requester may
// not search rejects the whole request with a forbidden error.
func (s *Service) Search(ctx context.Context, userID int64, req transport.SearchCardsRequest) (*transport.SearchResultResponse, error) {
	filters, ok := toFilters(req)
	if !ok {
		// A scope identifier no stored record can carry matches nothing.
		return emptyEnvelope(), nil
	}
	crit := criteria.Compile(filters)

	if filters.BoardID != nil {
		allowed, found, err := s.authorizeScope(ctx, *filters.BoardID, userID)
		if err != nil {
			return nil, err
		}
		if !found {
			return emptyEnvelope(), nil
		}
		if !allowed {
			return nil, apperr.Forbidden(msgNotEnoughRights).
				WithDetails(map[string]string{"notEnoughRights": msgNotEnoughRights})
		}
	}

	candidates, err := s.repo.FindCards(ctx, crit)
	if err != nil {
		return nil, err
	}

	authorized, err := s.authorizeCards(ctx, userID, candidates)
	if err != nil {
		return nil, err
	}

	return s.enrich(ctx, userID, authorized)
}

// authorizeScope is the coarse gate for an explicit board scope.
// Returns (allowed, boardFound, err).
func (s *Service) authorizeScope(ctx context.Context, boardID, userID int64) (bool, bool, error) {
	board, err := s.repo.FindBoard(ctx, boardID)
	if err != nil {
		return false, false, err
	}
	if board == nil {
		return false, false, nil
	}

	membership, err := s.repo.FindBoardMembership(ctx, boardID, userID)
	if err != nil {
		return false, true, err
	}

	manager, err := s.repo.IsProjectManager(ctx, userID, board.ProjectID)
	if err != nil {
		return false, true, err
	}

	return membership != nil || manager, true, nil
}

// authorizeCards checks every candidate concurrently and returns the visible
// subset in candidate order. Cards failing the check are dropped silently.
// The check runs for every candidate even when the scope gate already passed.
func (s *Service) authorizeCards(ctx context.Context, userID int64, candidates []repository.Card) ([]repository.Card, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	visible := make([]bool, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	for i, card := range candidates {
		i, card := i, card
		g.Go(func() error {
			ok, err := s.authorizeCard(gctx, userID, card)
			if err != nil {
				return err
			}
			visible[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	authorized := make([]repository.Card, 0, len(candidates))
	for i, card := range candidates {
		if visible[i] {
			authorized = append(authorized, card)
		}
	}
	return authorized, nil
}

// authorizeCard decides visibility for one card: board member OR manager of
// the board's project. The membership check and board fetch are independent
// reads and run concurrently. A dangling board reference means no project,
// which never grants manager rights.
func (s *Service) authorizeCard(ctx context.Context, userID int64, card repository.Card) (bool, error) {
	var (
		member bool
		board  *repository.Board
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ok, err := s.repo.IsBoardMember(gctx, userID, card.BoardID)
		member = ok
		return err
	})
	g.Go(func() error {
		b, err := s.repo.FindBoard(gctx, card.BoardID)
		board = b
		return err
	})
	if err := g.Wait(); err != nil {
		return false, err
	}

	manager := false
	if board != nil {
		ok, err := s.repo.IsProjectManager(ctx, userID, board.ProjectID)
		if err != nil {
			return false, err
		}
		manager = ok
	}

	return member || manager, nil
}

// enrich assembles the envelope: the requester's subscription flag per card,
// plus one batch fetch each for memberships, labels and tasks. All fetches
// must succeed; there are no partial results.
func (s *Service) enrich(ctx context.Context, userID int64, authorized []repository.Card) (*transport.SearchResultResponse, error) {
	if len(authorized) == 0 {
		return emptyEnvelope(), nil
	}

	items := make([]transport.CardResponse, len(authorized))
	cardIDs := make([]int64, len(authorized))
	for i, card := range authorized {
		items[i] = toCardResponse(card)
		cardIDs[i] = card.ID
	}

	var (
		memberships []repository.CardMembership
		labels      []repository.CardLabel
		tasks       []repository.Task
	)

	g, gctx := errgroup.WithContext(ctx)
	for i := range items {
		i := i
		g.Go(func() error {
			subscribed, err := s.repo.IsCardSubscriber(gctx, userID, items[i].ID)
			if err != nil {
				return err
			}
			items[i].IsSubscribed = subscribed
			return nil
		})
	}
	g.Go(func() error {
		found, err := s.repo.FindCardMemberships(gctx, cardIDs)
		memberships = found
		return err
	})
	g.Go(func() error {
		found, err := s.repo.FindCardLabels(gctx, cardIDs)
		labels = found
		return err
	})
	g.Go(func() error {
		found, err := s.repo.FindTasks(gctx, cardIDs)
		tasks = found
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &transport.SearchResultResponse{
		Items:    items,
		Total:    len(items),
		Included: toIncludedResponse(memberships, labels, tasks),
	}, nil
}

func emptyEnvelope() *transport.SearchResultResponse {
	return &transport.SearchResultResponse{
		Items: []transport.CardResponse{},
		Total: 0,
		Included: transport.IncludedResponse{
			CardMemberships: []transport.CardMembershipResponse{},
			CardLabels:      []transport.CardLabelResponse{},
			Tasks:           []transport.TaskResponse{},
		},
	}
}

// toFilters converts the validated request into compiler inputs. The boundary
// guarantees numeric form but not int64 range; a digit string too large for
// any stored identifier reports ok=false, and the scope must then be treated
// as a record that cannot exist, never as an absent filter.
func toFilters(req transport.SearchCardsRequest) (criteria.Filters, bool) {
	f := criteria.Filters{
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Name:        req.Name,
		Description: req.Description,
	}
	if req.BoardID != nil {
		id, err := strconv.ParseInt(*req.BoardID, 10, 64)
		if err != nil {
			return criteria.Filters{}, false
		}
		f.BoardID = &id
	}
	if req.ListID != nil {
		id, err := strconv.ParseInt(*req.ListID, 10, 64)
		if err != nil {
			return criteria.Filters{}, false
		}
		f.ListID = &id
	}
	return f, true
}

func toCardResponse(card repository.Card) transport.CardResponse {
	return transport.CardResponse{
		ID:          card.ID,
		BoardID:     card.BoardID,
		ListID:      card.ListID,
		Name:        card.Name,
		Description: card.Description,
		CreatedAt:   card.CreatedAt,
		UpdatedAt:   card.UpdatedAt,
	}
}

func toIncludedResponse(
	memberships []repository.CardMembership,
	labels []repository.CardLabel,
	tasks []repository.Task,
) transport.IncludedResponse {
	included := transport.IncludedResponse{
		CardMemberships: make([]transport.CardMembershipResponse, 0, len(memberships)),
		CardLabels:      make([]transport.CardLabelResponse, 0, len(labels)),
		Tasks:           make([]transport.TaskResponse, 0, len(tasks)),
	}
	for _, m := range memberships {
		included.CardMemberships = append(included.CardMemberships, transport.CardMembershipResponse{
			ID: m.ID, CardID: m.CardID, UserID: m.UserID, CreatedAt: m.CreatedAt,
		})
	}
	for _, l := range labels {
		included.CardLabels = append(included.CardLabels, transport.CardLabelResponse{
			ID: l.ID, CardID: l.CardID, LabelID: l.LabelID, Name: l.Name, Color: l.Color,
		})
	}
	for _, task := range tasks {
		included.Tasks = append(included.Tasks, transport.TaskResponse{
			ID: task.ID, CardID: task.CardID, Name: task.Name,
			IsCompleted: task.IsCompleted, CreatedAt: task.CreatedAt,
		})
	}
	return included
}
