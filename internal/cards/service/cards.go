package service

import (
	"context"

	"taskboard_backend/internal/cards/repository"
	"taskboard_backend/internal/cards/transport"
	"taskboard_backend/internal/events"
	"taskboard_backend/platform/apperr"
)

// GetCard returns a single card if the requester may see it, enriched with
// the requester's subscription flag.
func (s *Service) GetCard(ctx context.Context, userID, cardID int64) (*transport.CardResponse, error) {
	card, err := s.repo.GetCard(ctx, cardID)
	if err != nil {
		return nil, err
	}

	ok, err := s.authorizeCard(ctx, userID, *card)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Hidden cards are indistinguishable from missing ones.
		return nil, apperr.NotFound("card not found")
	}

	resp := toCardResponse(*card)
	subscribed, err := s.repo.IsCardSubscriber(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}
	resp.IsSubscribed = subscribed

	return &resp, nil
}

// CreateCard creates a card in the list after verifying the requester may
// write to the list's board.
func (s *Service) CreateCard(ctx context.Context, userID, listID int64, req transport.CreateCardRequest) (*transport.CardResponse, error) {
	board, err := s.repo.FindBoardByList(ctx, listID)
	if err != nil {
		return nil, err
	}
	if board == nil {
		return nil, apperr.NotFound("list not found")
	}

	if err := s.requireBoardAccess(ctx, userID, board); err != nil {
		return nil, err
	}

	card, err := s.repo.CreateCard(ctx, listID, req.Name, req.Description)
	if err != nil {
		return nil, err
	}

	event := events.CardCreated{
		BaseEvent: events.NewBaseEvent(),
		CardID:    card.ID,
		BoardID:   card.BoardID,
		ListID:    card.ListID,
		CreatedBy: userID,
	}
	s.eventBus.Publish(ctx, event)

	resp := toCardResponse(*card)
	return &resp, nil
}

// UpdateCard applies a partial update to a card the requester may write to.
func (s *Service) UpdateCard(ctx context.Context, userID, cardID int64, req transport.UpdateCardRequest) (*transport.CardResponse, error) {
	card, err := s.writableCard(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		card.Name = *req.Name
	}
	if req.Description != nil {
		card.Description = *req.Description
	}

	if err := s.repo.UpdateCard(ctx, card); err != nil {
		return nil, err
	}

	resp := toCardResponse(*card)
	return &resp, nil
}

// DeleteCard removes a card the requester may write to.
func (s *Service) DeleteCard(ctx context.Context, userID, cardID int64) error {
	card, err := s.writableCard(ctx, userID, cardID)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteCard(ctx, cardID); err != nil {
		return err
	}

	event := events.CardDeleted{
		BaseEvent: events.NewBaseEvent(),
		CardID:    card.ID,
		BoardID:   card.BoardID,
		DeletedBy: userID,
	}
	s.eventBus.Publish(ctx, event)

	return nil
}

// Subscribe adds the requester to the card's subscribers.
func (s *Service) Subscribe(ctx context.Context, userID, cardID int64) error {
	card, err := s.repo.GetCard(ctx, cardID)
	if err != nil {
		return err
	}

	ok, err := s.authorizeCard(ctx, userID, *card)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("card not found")
	}

	return s.repo.Subscribe(ctx, userID, cardID)
}

// Unsubscribe removes the requester from the card's subscribers.
func (s *Service) Unsubscribe(ctx context.Context, userID, cardID int64) error {
	card, err := s.repo.GetCard(ctx, cardID)
	if err != nil {
		return err
	}

	ok, err := s.authorizeCard(ctx, userID, *card)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("card not found")
	}

	return s.repo.Unsubscribe(ctx, userID, cardID)
}

// writableCard loads a card and requires board membership or project
// management before any mutation.
func (s *Service) writableCard(ctx context.Context, userID, cardID int64) (*repository.Card, error) {
	card, err := s.repo.GetCard(ctx, cardID)
	if err != nil {
		return nil, err
	}

	ok, err := s.authorizeCard(ctx, userID, *card)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("card not found")
	}

	return card, nil
}

func (s *Service) requireBoardAccess(ctx context.Context, userID int64, board *repository.Board) error {
	member, err := s.repo.IsBoardMember(ctx, userID, board.ID)
	if err != nil {
		return err
	}
	if member {
		return nil
	}

	manager, err := s.repo.IsProjectManager(ctx, userID, board.ProjectID)
	if err != nil {
		return err
	}
	if !manager {
		return apperr.Forbidden(msgNotEnoughRights)
	}

	return nil
}
