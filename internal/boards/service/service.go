package service

import (
	"context"

	"taskboard_backend/internal/boards/repository"
	"taskboard_backend/internal/boards/transport"
	"taskboard_backend/internal/events"
	"taskboard_backend/platform/apperr"
)

// Service provides board, list and membership management. Reads and writes on
// a board require the caller to be a board member or a manager of the owning
// project; creating a board requires manager rights on the project.
type Service struct {
	repo     *repository.Repository
	eventBus events.Bus
}

// New creates a new boards service.
func New(repo *repository.Repository, eventBus events.Bus) *Service {
	return &Service{repo: repo, eventBus: eventBus}
}

// CreateBoard creates a board under a project. Project manager only. The
// creator becomes the board's first member.
func (s *Service) CreateBoard(ctx context.Context, userID, projectID int64, req transport.CreateBoardRequest) (*transport.BoardResponse, error) {
	manager, err := s.repo.IsProjectManager(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	if !manager {
		return nil, apperr.Forbidden("not a project manager")
	}

	b, err := s.repo.CreateBoard(ctx, projectID, req.Name, userID)
	if err != nil {
		return nil, err
	}

	s.eventBus.Publish(ctx, events.BoardCreated{
		BaseEvent: events.NewBaseEvent(),
		BoardID:   b.ID,
		ProjectID: b.ProjectID,
		CreatedBy: userID,
	})

	return toBoardResponse(b), nil
}

// GetBoard returns a board the caller can access.
func (s *Service) GetBoard(ctx context.Context, userID, boardID int64) (*transport.BoardResponse, error) {
	b, err := s.requireBoardAccess(ctx, userID, boardID)
	if err != nil {
		return nil, err
	}
	return toBoardResponse(b), nil
}

// ListBoards returns the boards under a project the caller can see.
func (s *Service) ListBoards(ctx context.Context, userID, projectID int64) ([]transport.BoardResponse, error) {
	boards, err := s.repo.ListBoards(ctx, projectID)
	if err != nil {
		return nil, err
	}

	manager, err := s.repo.IsProjectManager(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}

	out := make([]transport.BoardResponse, 0, len(boards))
	for i := range boards {
		if !manager {
			member, err := s.repo.IsBoardMember(ctx, boards[i].ID, userID)
			if err != nil {
				return nil, err
			}
			if !member {
				continue
			}
		}
		out = append(out, *toBoardResponse(&boards[i]))
	}
	return out, nil
}

// UpdateBoard renames a board.
func (s *Service) UpdateBoard(ctx context.Context, userID, boardID int64, req transport.UpdateBoardRequest) (*transport.BoardResponse, error) {
	if _, err := s.requireBoardAccess(ctx, userID, boardID); err != nil {
		return nil, err
	}

	b, err := s.repo.UpdateBoard(ctx, boardID, req.Name)
	if err != nil {
		return nil, err
	}
	return toBoardResponse(b), nil
}

// DeleteBoard removes a board and everything on it. Project manager only.
func (s *Service) DeleteBoard(ctx context.Context, userID, boardID int64) error {
	b, err := s.repo.GetBoard(ctx, boardID)
	if err != nil {
		return err
	}

	manager, err := s.repo.IsProjectManager(ctx, b.ProjectID, userID)
	if err != nil {
		return err
	}
	if !manager {
		return apperr.Forbidden("not a project manager")
	}

	return s.repo.DeleteBoard(ctx, boardID)
}

// CreateList adds a list at the end of a board.
func (s *Service) CreateList(ctx context.Context, userID, boardID int64, req transport.CreateListRequest) (*transport.ListResponse, error) {
	if _, err := s.requireBoardAccess(ctx, userID, boardID); err != nil {
		return nil, err
	}

	l, err := s.repo.CreateList(ctx, boardID, req.Name)
	if err != nil {
		return nil, err
	}
	return toListResponse(l), nil
}

// ListLists returns the lists on a board in position order.
func (s *Service) ListLists(ctx context.Context, userID, boardID int64) ([]transport.ListResponse, error) {
	if _, err := s.requireBoardAccess(ctx, userID, boardID); err != nil {
		return nil, err
	}

	lists, err := s.repo.ListLists(ctx, boardID)
	if err != nil {
		return nil, err
	}

	out := make([]transport.ListResponse, 0, len(lists))
	for i := range lists {
		out = append(out, *toListResponse(&lists[i]))
	}
	return out, nil
}

// UpdateList renames a list and/or moves it to a new position.
func (s *Service) UpdateList(ctx context.Context, userID, listID int64, req transport.UpdateListRequest) (*transport.ListResponse, error) {
	l, err := s.repo.GetList(ctx, listID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireBoardAccess(ctx, userID, l.BoardID); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateList(ctx, listID, req.Name, req.Position)
	if err != nil {
		return nil, err
	}
	return toListResponse(updated), nil
}

// DeleteList removes a list and its cards.
func (s *Service) DeleteList(ctx context.Context, userID, listID int64) error {
	l, err := s.repo.GetList(ctx, listID)
	if err != nil {
		return err
	}
	if _, err := s.requireBoardAccess(ctx, userID, l.BoardID); err != nil {
		return err
	}

	return s.repo.DeleteList(ctx, listID)
}

// AddMember grants board membership to a user.
func (s *Service) AddMember(ctx context.Context, userID, boardID, memberID int64) error {
	if _, err := s.requireBoardAccess(ctx, userID, boardID); err != nil {
		return err
	}

	if err := s.repo.AddMember(ctx, boardID, memberID); err != nil {
		return err
	}

	s.eventBus.Publish(ctx, events.BoardMemberAdded{
		BaseEvent: events.NewBaseEvent(),
		BoardID:   boardID,
		UserID:    memberID,
		AddedBy:   userID,
	})

	return nil
}

// RemoveMember revokes board membership.
func (s *Service) RemoveMember(ctx context.Context, userID, boardID, memberID int64) error {
	if _, err := s.requireBoardAccess(ctx, userID, boardID); err != nil {
		return err
	}
	return s.repo.RemoveMember(ctx, boardID, memberID)
}

// ListMembers lists the memberships on a board.
func (s *Service) ListMembers(ctx context.Context, userID, boardID int64) ([]transport.MemberResponse, error) {
	if _, err := s.requireBoardAccess(ctx, userID, boardID); err != nil {
		return nil, err
	}

	members, err := s.repo.ListMembers(ctx, boardID)
	if err != nil {
		return nil, err
	}

	out := make([]transport.MemberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, transport.MemberResponse{
			BoardID:   m.BoardID,
			UserID:    m.UserID,
			CreatedAt: m.CreatedAt,
		})
	}
	return out, nil
}

func (s *Service) requireBoardAccess(ctx context.Context, userID, boardID int64) (*repository.Board, error) {
	b, err := s.repo.GetBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}

	member, err := s.repo.IsBoardMember(ctx, boardID, userID)
	if err != nil {
		return nil, err
	}
	if member {
		return b, nil
	}

	manager, err := s.repo.IsProjectManager(ctx, b.ProjectID, userID)
	if err != nil {
		return nil, err
	}
	if !manager {
		return nil, apperr.Forbidden("not a board member")
	}
	return b, nil
}

func toBoardResponse(b *repository.Board) *transport.BoardResponse {
	return &transport.BoardResponse{
		ID:        b.ID,
		ProjectID: b.ProjectID,
		Name:      b.Name,
		CreatedAt: b.CreatedAt,
	}
}

func toListResponse(l *repository.List) *transport.ListResponse {
	return &transport.ListResponse{
		ID:       l.ID,
		BoardID:  l.BoardID,
		Name:     l.Name,
		Position: l.Position,
	}
}
