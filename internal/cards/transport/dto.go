package transport

import (
	"time"
)

// SearchCardsRequest is the query parameters for card search.
// Dates are strict YYYY-MM-DD calendar days; identifiers are numeric strings.
// Validation tags enforce the boundary contract before the service runs.
type SearchCardsRequest struct {
	StartDate   *string `form:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate     *string `form:"endDate" validate:"omitempty,datetime=2006-01-02"`
	BoardID     *string `form:"boardId" validate:"omitempty,numeric"`
	ListID      *string `form:"listId" validate:"omitempty,numeric"`
	Name        *string `form:"name"`
	Description *string `form:"description"`
}

// CreateCardRequest is the request body for creating a card in a list.
type CreateCardRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Description string `json:"description,omitempty" validate:"max=5000"`
}

// UpdateCardRequest is the request body for updating a card.
type UpdateCardRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=5000"`
}

// CardResponse is a card as returned to the client. IsSubscribed is the
// requester's own subscription state, computed per search and never persisted.
type CardResponse struct {
	ID           int64     `json:"id"`
	BoardID      int64     `json:"boardId"`
	ListID       int64     `json:"listId"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	IsSubscribed bool      `json:"isSubscribed"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CardMembershipResponse is a user's assignment to a card.
type CardMembershipResponse struct {
	ID        int64     `json:"id"`
	CardID    int64     `json:"cardId"`
	UserID    int64     `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// CardLabelResponse is a label attached to a card.
type CardLabelResponse struct {
	ID      int64  `json:"id"`
	CardID  int64  `json:"cardId"`
	LabelID int64  `json:"labelId"`
	Name    string `json:"name"`
	Color   string `json:"color"`
}

// TaskResponse is a checklist task on a card.
type TaskResponse struct {
	ID          int64     `json:"id"`
	CardID      int64     `json:"cardId"`
	Name        string    `json:"name"`
	IsCompleted bool      `json:"isCompleted"`
	CreatedAt   time.Time `json:"createdAt"`
}

// IncludedResponse carries the related records batch-fetched for the result set.
type IncludedResponse struct {
	CardMemberships []CardMembershipResponse `json:"cardMemberships"`
	CardLabels      []CardLabelResponse      `json:"cardLabels"`
	Tasks           []TaskResponse           `json:"tasks"`
}

// SearchResultResponse is the search envelope.
type SearchResultResponse struct {
	Items    []CardResponse   `json:"items"`
	Total    int              `json:"total"`
	Included IncludedResponse `json:"included"`
}
