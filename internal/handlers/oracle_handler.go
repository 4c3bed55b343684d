package handlers

import (
	"math/big"
	"net/http"

	"github.com/ArowuTest/raffle-backend/internal/services"
	"github.com/ArowuTest/raffle-backend/internal/utils"
	"github.com/gin-gonic/gin"
)

// OracleHandler receives randomness callbacks from an external coordinator
type OracleHandler struct {
	lotteryService *services.LotteryService
}

// NewOracleHandler creates a new OracleHandler
func NewOracleHandler(lotteryService *services.LotteryService) *OracleHandler {
	return &OracleHandler{lotteryService: lotteryService}
}

// FulfillRequest is the body of POST /oracle/fulfill. Words are uint256
// values in decimal or 0x hex; only the first one picks the winner.
type FulfillRequest struct {
	RequestID   string   `json:"requestId" binding:"required"`
	RandomWords []string `json:"randomWords" binding:"required,min=1"`
}

// Fulfill handles POST /oracle/fulfill
func (h *OracleHandler) Fulfill(c *gin.Context) {
	var req FulfillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	requestID, err := utils.ParseRequestID(req.RequestID)
	if err != nil {
		respondError(c, err)
		return
	}
	words := make([]*big.Int, 0, len(req.RandomWords))
	for _, w := range req.RandomWords {
		word, err := utils.ParseWord(w)
		if err != nil {
			respondError(c, err)
			return
		}
		words = append(words, word)
	}

	payout, err := h.lotteryService.FulfillRandomness(c.Request.Context(), requestID, words[0])
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"round":       payout.Round,
		"requestId":   payout.RequestID.Hex(),
		"winner":      payout.Winner.Hex(),
		"winnerIndex": payout.WinnerIndex,
		"players":     payout.Players,
		"prizeWei":    payout.Prize.String(),
	})
}
