package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ArowuTest/raffle-backend/internal/lottery"
	"github.com/ethereum/go-ethereum/common"
)

// UpkeepRunner is the part of LotteryService the keeper drives
type UpkeepRunner interface {
	CheckUpkeep() lottery.UpkeepCheck
	PerformUpkeep(ctx context.Context) (common.Hash, error)
}

// KeeperService polls the upkeep predicate and performs upkeep when it
// holds, standing in for an external automation network.
type KeeperService struct {
	runner   UpkeepRunner
	interval time.Duration
	logger   *slog.Logger
}

// NewKeeperService creates a new KeeperService
func NewKeeperService(runner UpkeepRunner, interval time.Duration, logger *slog.Logger) *KeeperService {
	return &KeeperService{
		runner:   runner,
		interval: interval,
		logger:   logger,
	}
}

// Run polls until ctx is cancelled
func (k *KeeperService) Run(ctx context.Context) error {
	ticker := time.NewTicker(k.interval)
	defer ticker.Stop()

	k.logger.Info("Keeper started", "pollInterval", k.interval.String())
	for {
		select {
		case <-ctx.Done():
			k.logger.Info("Keeper stopped")
			return ctx.Err()
		case <-ticker.C:
			k.Tick(ctx)
		}
	}
}

// Tick checks once and performs upkeep if needed. It reports whether a
// randomness request was made.
func (k *KeeperService) Tick(ctx context.Context) bool {
	if !k.runner.CheckUpkeep().Needed() {
		return false
	}

	requestID, err := k.runner.PerformUpkeep(ctx)
	switch {
	case errors.Is(err, lottery.ErrUpkeepNotNeeded):
		// another caller got there first
		k.logger.Debug("Upkeep no longer needed", "error", err)
		return false
	case err != nil:
		k.logger.Error("Keeper failed to perform upkeep", "error", err)
		return false
	}
	k.logger.Info("Keeper requested randomness", "requestId", requestID.Hex())
	return true
}
