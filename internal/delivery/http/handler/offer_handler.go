package handler

import (
	"net/http"

	"game-exchange/internal/delivery/http/middleware"
	entity "game-exchange/internal/domain"
	"game-exchange/internal/service"

	"github.com/gin-gonic/gin"
)

type OfferHandler struct {
	offerService *service.OfferService
}

func NewOfferHandler(offerService *service.OfferService) *OfferHandler {
	return &OfferHandler{offerService: offerService}
}

// POST /api/offers
func (h *OfferHandler) CreateOffer(c *gin.Context) {
	var input entity.CreateOfferInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	offer, err := h.offerService.CreateOffer(c.Request.Context(), input, middleware.CallerID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, offer)
}

// GET /api/offers/inbox
func (h *OfferHandler) GetIncomingOffers(c *gin.Context) {
	offers, err := h.offerService.GetOffersForUser(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, offers)
}

// GET /api/offers/:id
func (h *OfferHandler) GetOffer(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	offer, err := h.offerService.GetOffer(c.Request.Context(), id, middleware.CallerID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, offer)
}

// GET /api/offers/:id/history
func (h *OfferHandler) GetOfferHistory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	history, err := h.offerService.History(c.Request.Context(), id, middleware.CallerID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

// PATCH /api/offers/:id/status
func (h *OfferHandler) UpdateOfferStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var input entity.UpdateOfferStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	offer, err := h.offerService.UpdateOfferStatus(c.Request.Context(), id, input.Status, middleware.CallerID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, offer)
}
