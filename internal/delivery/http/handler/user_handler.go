package handler

import (
	"net/http"

	"game-exchange/internal/delivery/http/middleware"
	entity "game-exchange/internal/domain"
	"game-exchange/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UserHandler struct {
	catalog *service.CatalogService
}

func NewUserHandler(catalog *service.CatalogService) *UserHandler {
	return &UserHandler{catalog: catalog}
}

// POST /api/users
func (h *UserHandler) Register(c *gin.Context) {
	var input entity.RegisterUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	resp, err := h.catalog.RegisterUser(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GET /api/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.catalog.ListUsers(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// GET /api/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	user, err := h.catalog.GetUser(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// PUT /api/users/:id replaces every editable field.
func (h *UserHandler) ReplaceUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var input entity.RegisterUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	patch := entity.UserPatch{Name: &input.Name, Email: &input.Email, Address: &input.Address}
	h.update(c, id, patch)
}

// PATCH /api/users/:id
func (h *UserHandler) PatchUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var patch entity.UserPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	h.update(c, id, patch)
}

func (h *UserHandler) update(c *gin.Context, id uuid.UUID, patch entity.UserPatch) {
	user, err := h.catalog.UpdateUser(c.Request.Context(), id, patch, middleware.CallerID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
