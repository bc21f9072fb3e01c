package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"trade-service/internal/trading"
)

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, trading.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, trading.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, trading.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, trading.ErrSessionNotActive), errors.Is(err, trading.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, trading.ErrLocationRequired):
		return http.StatusUnprocessableEntity
	case errors.Is(err, trading.ErrCollaborator):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeError(c *gin.Context, err error, fallback string) {
	status := statusFor(err)
	msg := fallback
	if status != http.StatusInternalServerError {
		msg = err.Error()
	}
	c.JSON(status, gin.H{"error": msg})
}

func parseSessionID(c *gin.Context) (int, bool) {
	sessionID, err := strconv.Atoi(c.Param("session_id"))
	if err != nil || sessionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return 0, false
	}
	return sessionID, true
}
