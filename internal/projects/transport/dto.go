package transport

import "time"

// CreateProjectRequest is the request body for creating a project.
type CreateProjectRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

// UpdateProjectRequest is the request body for updating a project.
type UpdateProjectRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// GrantManagerRequest names the user to grant project manager rights to.
type GrantManagerRequest struct {
	UserID int64 `json:"userId" validate:"required,gt=0"`
}

// ProjectResponse is a single project.
type ProjectResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedBy   int64     `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ManagerResponse is a project manager grant.
type ManagerResponse struct {
	ProjectID int64     `json:"projectId"`
	UserID    int64     `json:"userId"`
	GrantedAt time.Time `json:"grantedAt"`
}
