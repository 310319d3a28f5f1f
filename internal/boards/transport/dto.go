package transport

import "time"

// CreateBoardRequest is the request body for creating a board under a project.
type CreateBoardRequest struct {
	Name string `json:"name" validate:"required,min=1,max=200"`
}

// UpdateBoardRequest is the request body for renaming a board.
type UpdateBoardRequest struct {
	Name string `json:"name" validate:"required,min=1,max=200"`
}

// CreateListRequest is the request body for creating a list on a board.
type CreateListRequest struct {
	Name string `json:"name" validate:"required,min=1,max=200"`
}

// UpdateListRequest renames a list and/or moves it to a new position.
type UpdateListRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=200"`
	Position *int32  `json:"position" validate:"omitempty,gte=0"`
}

// AddMemberRequest names the user to add to a board.
type AddMemberRequest struct {
	UserID int64 `json:"userId" validate:"required,gt=0"`
}

// BoardResponse is a single board.
type BoardResponse struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"projectId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListResponse is a single list on a board.
type ListResponse struct {
	ID       int64  `json:"id"`
	BoardID  int64  `json:"boardId"`
	Name     string `json:"name"`
	Position int32  `json:"position"`
}

// MemberResponse is a board membership.
type MemberResponse struct {
	BoardID   int64     `json:"boardId"`
	UserID    int64     `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}
