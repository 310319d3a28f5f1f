// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"taskboard_backend/platform/events"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Auth Domain Events
// =============================================================================

// UserSignedUp is published when a new user successfully registers.
type UserSignedUp struct {
	BaseEvent
	UserID int64  `json:"userId"`
	Email  string `json:"email"`
}

func (e UserSignedUp) EventName() string { return "auth.user.signed_up" }

// =============================================================================
// Boards Domain Events
// =============================================================================

// BoardCreated is published when a board is created under a project.
type BoardCreated struct {
	BaseEvent
	BoardID   int64 `json:"boardId"`
	ProjectID int64 `json:"projectId"`
	CreatedBy int64 `json:"createdBy"`
}

func (e BoardCreated) EventName() string { return "boards.board.created" }

// BoardMemberAdded is published when a user is granted board membership.
type BoardMemberAdded struct {
	BaseEvent
	BoardID int64 `json:"boardId"`
	UserID  int64 `json:"userId"`
	AddedBy int64 `json:"addedBy"`
}

func (e BoardMemberAdded) EventName() string { return "boards.member.added" }

// =============================================================================
// Cards Domain Events
// =============================================================================

// CardCreated is published when a card is created in a list.
type CardCreated struct {
	BaseEvent
	CardID    int64 `json:"cardId"`
	BoardID   int64 `json:"boardId"`
	ListID    int64 `json:"listId"`
	CreatedBy int64 `json:"createdBy"`
}

func (e CardCreated) EventName() string { return "cards.card.created" }

// CardDeleted is published when a card is removed.
type CardDeleted struct {
	BaseEvent
	CardID    int64 `json:"cardId"`
	BoardID   int64 `json:"boardId"`
	DeletedBy int64 `json:"deletedBy"`
}

func (e CardDeleted) EventName() string { return "cards.card.deleted" }
