package handler

import (
	"errors"
	"net/http"

	entity "game-exchange/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func respondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: code}})
}

// respondServiceError maps the entity error kinds onto HTTP statuses.
// Anything unrecognised is a 500 with a generic message.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, entity.ErrValidation):
		respondError(c, http.StatusBadRequest, "validation_error", err)
	case errors.Is(err, entity.ErrUnauthorized):
		respondError(c, http.StatusForbidden, "forbidden", err)
	case errors.Is(err, entity.ErrNotFound):
		respondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, entity.ErrConflict):
		respondError(c, http.StatusConflict, "conflict", err)
	default:
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "internal_error", errors.New("internal server error"))
	}
}

func badRequest(c *gin.Context, err error) {
	respondError(c, http.StatusBadRequest, "bad_request", err)
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, errors.New("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}
