package handlers

import (
	"net/http"

	"github.com/ArowuTest/raffle-backend/internal/middleware"
	"github.com/ArowuTest/raffle-backend/internal/services"
	"github.com/ArowuTest/raffle-backend/internal/utils"
	"github.com/gin-gonic/gin"
)

// BlacklistHandler manages addresses that cannot be paid
type BlacklistHandler struct {
	blacklistService *services.BlacklistService
}

// NewBlacklistHandler creates a new BlacklistHandler
func NewBlacklistHandler(blacklistService *services.BlacklistService) *BlacklistHandler {
	return &BlacklistHandler{blacklistService: blacklistService}
}

// BlacklistRequest is the body of POST /blacklist
type BlacklistRequest struct {
	Address string `json:"address" binding:"required"`
	Reason  string `json:"reason"`
}

// GetBlacklist handles GET /blacklist
func (h *BlacklistHandler) GetBlacklist(c *gin.Context) {
	entries, err := h.blacklistService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "total": len(entries)})
}

// AddToBlacklist handles POST /blacklist
func (h *BlacklistHandler) AddToBlacklist(c *gin.Context) {
	var req BlacklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	address, err := utils.ParseAddress(req.Address)
	if err != nil {
		respondError(c, err)
		return
	}
	createdBy, _ := middleware.Subject(c)
	if err := h.blacklistService.Add(c.Request.Context(), address, req.Reason, createdBy); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"address": address.Hex(), "reason": req.Reason})
}

// RemoveFromBlacklist handles DELETE /blacklist/:address
func (h *BlacklistHandler) RemoveFromBlacklist(c *gin.Context) {
	address, err := utils.ParseAddress(c.Param("address"))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.blacklistService.Remove(c.Request.Context(), address); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
