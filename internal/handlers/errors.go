package handlers

import (
	"errors"
	"net/http"

	"github.com/ArowuTest/raffle-backend/internal/lottery"
	"github.com/ArowuTest/raffle-backend/internal/repositories"
	"github.com/ArowuTest/raffle-backend/internal/services"
	"github.com/ArowuTest/raffle-backend/internal/utils"
	"github.com/gin-gonic/gin"
)

// respondError maps service and lottery errors to HTTP responses
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	var notNeeded *lottery.UpkeepNotNeededError
	switch {
	case errors.As(err, &notNeeded):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Upkeep not needed",
			"pool":    notNeeded.Pool.String(),
			"players": notNeeded.Players,
			"state":   notNeeded.State.String(),
		})
	case errors.Is(err, lottery.ErrInsufficientPayment):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "Payment is below the entrance fee"})
	case errors.Is(err, lottery.ErrNotOpen):
		c.JSON(http.StatusConflict, gin.H{"error": "Lottery is not open"})
	case errors.Is(err, lottery.ErrUnknownRequest):
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown or stale request"})
	case errors.Is(err, lottery.ErrPlayerIndexOutOfRange):
		c.JSON(http.StatusNotFound, gin.H{"error": "Player index out of range"})
	case errors.Is(err, repositories.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, lottery.ErrPayoutFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Payout failed: " + err.Error()})
	case errors.Is(err, lottery.ErrRandomnessRequest):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Randomness request failed: " + err.Error()})
	case errors.Is(err, lottery.ErrInvalidParticipant),
		errors.Is(err, lottery.ErrInvalidRandomness),
		errors.Is(err, utils.ErrInvalidAddress),
		errors.Is(err, utils.ErrInvalidAmount),
		errors.Is(err, utils.ErrInvalidRequest),
		errors.Is(err, utils.ErrInvalidWord):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	case errors.Is(err, services.ErrInvalidSubject):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrStorage):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Storage unavailable, nothing was changed"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
