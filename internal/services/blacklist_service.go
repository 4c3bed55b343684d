package services

import (
	"context"
	"log/slog"

	"github.com/ArowuTest/raffle-backend/internal/models"
	"github.com/ArowuTest/raffle-backend/internal/repositories"
	"github.com/ArowuTest/raffle-backend/internal/utils"
	"github.com/ethereum/go-ethereum/common"
)

// BlacklistService manages addresses the ledger gateway refuses to pay
type BlacklistService struct {
	repo   repositories.BlacklistRepository
	logger *slog.Logger
}

// NewBlacklistService creates a new BlacklistService
func NewBlacklistService(repo repositories.BlacklistRepository, logger *slog.Logger) *BlacklistService {
	return &BlacklistService{repo: repo, logger: logger}
}

// Add blocks payouts to address
func (s *BlacklistService) Add(ctx context.Context, address common.Address, reason, createdBy string) error {
	if err := s.repo.Add(ctx, address, reason, createdBy); err != nil {
		return err
	}
	s.logger.Info("Address blacklisted", "address", utils.MaskAddress(address), "reason", reason, "by", createdBy)
	return nil
}

// Remove lifts the block on address
func (s *BlacklistService) Remove(ctx context.Context, address common.Address) error {
	if err := s.repo.Remove(ctx, address); err != nil {
		return err
	}
	s.logger.Info("Address removed from blacklist", "address", utils.MaskAddress(address))
	return nil
}

// List returns every blacklisted address
func (s *BlacklistService) List(ctx context.Context) ([]*models.BlacklistEntry, error) {
	return s.repo.FindAll(ctx)
}

// IsBlacklisted implements payout.Rejecter
func (s *BlacklistService) IsBlacklisted(ctx context.Context, address common.Address) (bool, error) {
	return s.repo.IsBlacklisted(ctx, address)
}
