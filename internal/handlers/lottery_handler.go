package handlers

import (
	"fmt"
	"math/big"
	"net/http"
	"strconv"

	"github.com/ArowuTest/raffle-backend/internal/middleware"
	"github.com/ArowuTest/raffle-backend/internal/models"
	"github.com/ArowuTest/raffle-backend/internal/services"
	"github.com/ArowuTest/raffle-backend/internal/utils"
	"github.com/ArowuTest/raffle-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
)

// LotteryHandler handles lottery HTTP requests
type LotteryHandler struct {
	lotteryService *services.LotteryService
	allowAnonymous bool
}

// NewLotteryHandler creates a new LotteryHandler. With allowAnonymous set,
// unauthenticated callers may enter by naming the player address in the
// body.
func NewLotteryHandler(lotteryService *services.LotteryService, allowAnonymous bool) *LotteryHandler {
	return &LotteryHandler{
		lotteryService: lotteryService,
		allowAnonymous: allowAnonymous,
	}
}

// EnterRequest is the body of POST /lottery/enter. Exactly one of
// PaymentWei and PaymentEther is expected.
type EnterRequest struct {
	Player       string `json:"player"`
	PaymentWei   string `json:"paymentWei"`
	PaymentEther string `json:"paymentEther"`
}

// GetStatus handles GET /lottery
func (h *LotteryHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.lotteryService.Status())
}

// GetPlayer handles GET /lottery/players/:index
func (h *LotteryHandler) GetPlayer(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid player index"})
		return
	}
	player, err := h.lotteryService.Player(index)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"index": index, "player": player.Hex()})
}

// Enter handles POST /lottery/enter. Players enter as the address in their
// token; operators and anonymous callers name the player in the body.
func (h *LotteryHandler) Enter(c *gin.Context) {
	var req EnterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	playerHex := req.Player
	role, authenticated := middleware.Role(c)
	switch {
	case authenticated && role == jwt.RolePlayer:
		playerHex, _ = middleware.Subject(c)
	case authenticated && role == jwt.RoleOperator:
	case !authenticated && h.allowAnonymous:
	case !authenticated:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
		return
	default:
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		return
	}

	player, err := utils.ParseAddress(playerHex)
	if err != nil {
		respondError(c, err)
		return
	}
	payment, err := parsePayment(req)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.lotteryService.Enter(c.Request.Context(), player, payment); err != nil {
		respondError(c, err)
		return
	}
	status := h.lotteryService.Status()
	c.JSON(http.StatusCreated, gin.H{
		"player":          player.Hex(),
		"paymentWei":      payment.String(),
		"numberOfPlayers": status.NumberOfPlayers,
		"poolWei":         status.PoolWei,
		"round":           status.Round,
	})
}

// CheckUpkeep handles GET /lottery/upkeep
func (h *LotteryHandler) CheckUpkeep(c *gin.Context) {
	check := h.lotteryService.CheckUpkeep()
	c.JSON(http.StatusOK, gin.H{
		"upkeepNeeded": check.Needed(),
		"conditions":   check,
	})
}

// PerformUpkeep handles POST /lottery/upkeep
func (h *LotteryHandler) PerformUpkeep(c *gin.Context) {
	requestID, err := h.lotteryService.PerformUpkeep(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"requestId": requestID.Hex()})
}

// GetRounds handles GET /rounds?limit=&offset=
func (h *LotteryHandler) GetRounds(c *gin.Context) {
	page := parsePage(c)
	rounds, total, err := h.lotteryService.Rounds(c.Request.Context(), page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"rounds": rounds,
		"total":  total,
		"limit":  page.Limit,
		"offset": page.Offset,
	})
}

// GetRound handles GET /rounds/:round
func (h *LotteryHandler) GetRound(c *gin.Context) {
	round, err := strconv.ParseUint(c.Param("round"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid round number"})
		return
	}
	result, err := h.lotteryService.Round(c.Request.Context(), round)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func parsePayment(req EnterRequest) (*big.Int, error) {
	switch {
	case req.PaymentWei != "":
		return utils.ParseWei(req.PaymentWei)
	case req.PaymentEther != "":
		return utils.ParseEther(req.PaymentEther)
	default:
		return nil, fmt.Errorf("%w: paymentWei or paymentEther is required", utils.ErrInvalidAmount)
	}
}

// parsePage reads limit and offset query parameters. Unparseable values
// fall back to the defaults.
func parsePage(c *gin.Context) models.Page {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(models.DefaultPageLimit)))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	return models.Page{Limit: limit, Offset: offset}.Normalize()
}
