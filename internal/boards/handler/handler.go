package handler

import (
	"net/http"
	"strconv"

	"taskboard_backend/internal/boards/service"
	"taskboard_backend/internal/boards/transport"
	"taskboard_backend/platform/httpkit"
	"taskboard_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for boards and lists.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new boards handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the board routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id", h.GetByID)
	rg.PATCH("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.GET("/:id/lists", h.ListLists)
	rg.POST("/:id/lists", h.CreateList)
	rg.GET("/:id/members", h.ListMembers)
	rg.POST("/:id/members", h.AddMember)
	rg.DELETE("/:id/members/:userId", h.RemoveMember)
}

// RegisterProjectRoutes registers the project-scoped board routes.
func (h *Handler) RegisterProjectRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id/boards", h.ListByProject)
	rg.POST("/:id/boards", h.Create)
}

// RegisterListRoutes registers the standalone list routes.
func (h *Handler) RegisterListRoutes(rg *gin.RouterGroup) {
	rg.PATCH("/:id", h.UpdateList)
	rg.DELETE("/:id", h.DeleteList)
}

// Create handles POST /api/v1/projects/:id/boards
func (h *Handler) Create(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req transport.CreateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.CreateBoard(c.Request.Context(), identity.UserID(), projectID, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, result)
}

// ListByProject handles GET /api/v1/projects/:id/boards
func (h *Handler) ListByProject(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.ListBoards(c.Request.Context(), identity.UserID(), projectID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// GetByID handles GET /api/v1/boards/:id
func (h *Handler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.GetBoard(c.Request.Context(), identity.UserID(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// Update handles PATCH /api/v1/boards/:id
func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req transport.UpdateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.UpdateBoard(c.Request.Context(), identity.UserID(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// Delete handles DELETE /api/v1/boards/:id
func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	if httpkit.HandleError(c, h.svc.DeleteBoard(c.Request.Context(), identity.UserID(), id)) {
		return
	}

	c.Status(http.StatusNoContent)
}

// CreateList handles POST /api/v1/boards/:id/lists
func (h *Handler) CreateList(c *gin.Context) {
	boardID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req transport.CreateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.CreateList(c.Request.Context(), identity.UserID(), boardID, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, result)
}

// ListLists handles GET /api/v1/boards/:id/lists
func (h *Handler) ListLists(c *gin.Context) {
	boardID, ok := parseID(c, "id")
	if !ok {
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.ListLists(c.Request.Context(), identity.UserID(), boardID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// UpdateList handles PATCH /api/v1/lists/:id
func (h *Handler) UpdateList(c *gin.Context) {
	listID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req transport.UpdateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.UpdateList(c.Request.Context(), identity.UserID(), listID, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// DeleteList handles DELETE /api/v1/lists/:id
func (h *Handler) DeleteList(c *gin.Context) {
	listID, ok := parseID(c, "id")
	if !ok {
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	if httpkit.HandleError(c, h.svc.DeleteList(c.Request.Context(), identity.UserID(), listID)) {
		return
	}

	c.Status(http.StatusNoContent)
}

// ListMembers handles GET /api/v1/boards/:id/members
func (h *Handler) ListMembers(c *gin.Context) {
	boardID, ok := parseID(c, "id")
	if !ok {
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.ListMembers(c.Request.Context(), identity.UserID(), boardID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// AddMember handles POST /api/v1/boards/:id/members
func (h *Handler) AddMember(c *gin.Context) {
	boardID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req transport.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	if httpkit.HandleError(c, h.svc.AddMember(c.Request.Context(), identity.UserID(), boardID, req.UserID)) {
		return
	}

	c.Status(http.StatusNoContent)
}

// RemoveMember handles DELETE /api/v1/boards/:id/members/:userId
func (h *Handler) RemoveMember(c *gin.Context) {
	boardID, ok := parseID(c, "id")
	if !ok {
		return
	}
	memberID, ok := parseID(c, "userId")
	if !ok {
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	if httpkit.HandleError(c, h.svc.RemoveMember(c.Request.Context(), identity.UserID(), boardID, memberID)) {
		return
	}

	c.Status(http.StatusNoContent)
}

func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return 0, false
	}
	return id, true
}
