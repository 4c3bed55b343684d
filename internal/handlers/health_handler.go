package handlers

import (
	"net/http"

	"github.com/ArowuTest/raffle-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// HealthHandler handles GET /health
type HealthHandler struct {
	lotteryService *services.LotteryService
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(lotteryService *services.LotteryService) *HealthHandler {
	return &HealthHandler{lotteryService: lotteryService}
}

func (h *HealthHandler) Health(c *gin.Context) {
	status := h.lotteryService.Status()
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"state":  status.State,
		"round":  status.Round,
	})
}
