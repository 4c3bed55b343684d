package repositories

import (
	"context"
	"errors"

	"github.com/ArowuTest/raffle-backend/internal/models"
	"github.com/ethereum/go-ethereum/common"
)

// ErrNotFound is returned when a lookup matches nothing
var ErrNotFound = errors.New("repositories: not found")

// LotteryRepository persists the single lottery snapshot
type LotteryRepository interface {
	// Load returns ErrNotFound before the first Save.
	Load(ctx context.Context) (*models.LotterySnapshot, error)
	Save(ctx context.Context, snapshot *models.LotterySnapshot) error
}

// RoundRepository defines the interface for completed round operations
type RoundRepository interface {
	// Save inserts or replaces the result for result.Round.
	Save(ctx context.Context, result *models.RoundResult) error
	FindByRound(ctx context.Context, round uint64) (*models.RoundResult, error)
	// FindAll lists rounds newest first together with the total count.
	FindAll(ctx context.Context, page models.Page) ([]*models.RoundResult, int64, error)
}

// NotificationRepository defines the interface for notification history
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	// FindAll lists notifications newest first together with the total count.
	FindAll(ctx context.Context, page models.Page) ([]*models.Notification, int64, error)
}

// BlacklistRepository defines the interface for blacklist operations
type BlacklistRepository interface {
	IsBlacklisted(ctx context.Context, address common.Address) (bool, error)
	// Add is idempotent; adding an address again replaces its reason.
	Add(ctx context.Context, address common.Address, reason, createdBy string) error
	// Remove returns ErrNotFound when address is not listed.
	Remove(ctx context.Context, address common.Address) error
	FindAll(ctx context.Context) ([]*models.BlacklistEntry, error)
}

// Store bundles the repositories of one storage backend
type Store struct {
	Lottery       LotteryRepository
	Rounds        RoundRepository
	Notifications NotificationRepository
	Blacklist     BlacklistRepository
	Close         func() error
}
