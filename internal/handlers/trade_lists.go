package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"trade-service/internal/models"
)

type listService interface {
	AddEntry(ctx context.Context, userID, cardID int, kind models.ListKind) (models.TradeListEntry, error)
	RemoveEntry(ctx context.Context, userID, cardID int, kind models.ListKind) error
	Entries(ctx context.Context, userID int) ([]models.TradeListEntry, error)
	UpdateLocation(ctx context.Context, userID int, lat, lng float64) (models.Location, error)
}

// TradeListHandler manages a user's WANT/HAVE lists and location.
type TradeListHandler struct {
	lists listService
}

// NewTradeListHandler builds a TradeListHandler.
func NewTradeListHandler(lists listService) *TradeListHandler {
	return &TradeListHandler{lists: lists}
}

// ListEntries returns the caller's lists split by kind.
func (h *TradeListHandler) ListEntries(c *gin.Context) {
	userID := c.GetInt("userID")

	entries, err := h.lists.Entries(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err, "failed to load trade lists")
		return
	}

	want := make([]int, 0)
	have := make([]int, 0)
	for _, e := range entries {
		if e.Kind == models.ListWant {
			want = append(want, e.CardID)
		} else {
			have = append(have, e.CardID)
		}
	}
	c.JSON(http.StatusOK, gin.H{"want": want, "have": have})
}

// AddEntry puts a card on the caller's WANT or HAVE list.
func (h *TradeListHandler) AddEntry(c *gin.Context) {
	var req struct {
		CardID int    `json:"card_id" binding:"required"`
		Kind   string `json:"kind" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	kind, ok := models.ParseListKind(req.Kind)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be WANT or HAVE"})
		return
	}

	entry, err := h.lists.AddEntry(c.Request.Context(), c.GetInt("userID"), req.CardID, kind)
	if err != nil {
		writeError(c, err, "could not add card")
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// RemoveEntry takes a card off one of the caller's lists.
func (h *TradeListHandler) RemoveEntry(c *gin.Context) {
	kind, ok := models.ParseListKind(c.Param("kind"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be WANT or HAVE"})
		return
	}
	cardID, err := strconv.Atoi(c.Param("card_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid card id"})
		return
	}

	if err := h.lists.RemoveEntry(c.Request.Context(), c.GetInt("userID"), cardID, kind); err != nil {
		writeError(c, err, "could not remove card")
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateLocation stores the caller's current coordinates.
func (h *TradeListHandler) UpdateLocation(c *gin.Context) {
	var req struct {
		Latitude  *float64 `json:"latitude" binding:"required"`
		Longitude *float64 `json:"longitude" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	loc, err := h.lists.UpdateLocation(c.Request.Context(), c.GetInt("userID"), *req.Latitude, *req.Longitude)
	if err != nil {
		writeError(c, err, "could not update location")
		return
	}
	c.JSON(http.StatusOK, loc)
}
