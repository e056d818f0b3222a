package handler

import (
	"errors"
	"net/http"
	"strings"

	"game-exchange/internal/delivery/http/middleware"
	entity "game-exchange/internal/domain"
	"game-exchange/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type GameHandler struct {
	catalog *service.CatalogService
}

func NewGameHandler(catalog *service.CatalogService) *GameHandler {
	return &GameHandler{catalog: catalog}
}

// POST /api/games
func (h *GameHandler) CreateGame(c *gin.Context) {
	var input entity.CreateGameInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	game, err := h.catalog.CreateGame(c.Request.Context(), input, middleware.CallerID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, game)
}

// GET /api/games?title=&platform=&owner_id=
func (h *GameHandler) ListGames(c *gin.Context) {
	filter := entity.GameFilter{
		Title:    strings.TrimSpace(c.Query("title")),
		Platform: strings.TrimSpace(c.Query("platform")),
	}
	if raw := strings.TrimSpace(c.Query("owner_id")); raw != "" {
		owner, err := uuid.Parse(raw)
		if err != nil {
			badRequest(c, errors.New("invalid owner_id"))
			return
		}
		filter.OwnerID = owner
	}

	games, err := h.catalog.ListGames(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, games)
}

// GET /api/games/:id
func (h *GameHandler) GetGame(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	game, err := h.catalog.GetGame(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, game)
}

// PUT /api/games/:id replaces every editable field.
func (h *GameHandler) ReplaceGame(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var input entity.CreateGameInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	patch := entity.GamePatch{
		Title:          &input.Title,
		Platform:       &input.Platform,
		Publisher:      &input.Publisher,
		Year:           &input.Year,
		Condition:      &input.Condition,
		PreviousOwners: &input.PreviousOwners,
	}
	h.update(c, id, patch)
}

// PATCH /api/games/:id
func (h *GameHandler) PatchGame(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var patch entity.GamePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	h.update(c, id, patch)
}

func (h *GameHandler) update(c *gin.Context, id uuid.UUID, patch entity.GamePatch) {
	game, err := h.catalog.UpdateGame(c.Request.Context(), id, patch, middleware.CallerID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, game)
}
