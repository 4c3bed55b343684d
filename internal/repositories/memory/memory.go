// Package memory keeps repository data in process memory. It backs tests
// and single-process development runs; nothing survives a restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ArowuTest/raffle-backend/internal/models"
	"github.com/ArowuTest/raffle-backend/internal/repositories"
	"github.com/ethereum/go-ethereum/common"
)

// NewStore creates a store backed by in-memory repositories
func NewStore() *repositories.Store {
	return &repositories.Store{
		Lottery:       NewLotteryRepository(),
		Rounds:        NewRoundRepository(),
		Notifications: NewNotificationRepository(),
		Blacklist:     NewBlacklistRepository(),
		Close:         func() error { return nil },
	}
}

// LotteryRepository holds the last saved snapshot
type LotteryRepository struct {
	mu       sync.Mutex
	snapshot *models.LotterySnapshot
}

func NewLotteryRepository() *LotteryRepository {
	return &LotteryRepository{}
}

func (r *LotteryRepository) Load(_ context.Context) (*models.LotterySnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.snapshot == nil {
		return nil, repositories.ErrNotFound
	}
	return cloneSnapshot(r.snapshot), nil
}

func (r *LotteryRepository) Save(_ context.Context, snapshot *models.LotterySnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshot = cloneSnapshot(snapshot)
	return nil
}

func cloneSnapshot(s *models.LotterySnapshot) *models.LotterySnapshot {
	out := *s
	out.Players = append([]string(nil), s.Players...)
	return &out
}

// RoundRepository keeps round results keyed by round number
type RoundRepository struct {
	mu     sync.RWMutex
	rounds map[uint64]models.RoundResult
}

func NewRoundRepository() *RoundRepository {
	return &RoundRepository{rounds: make(map[uint64]models.RoundResult)}
}

func (r *RoundRepository) Save(_ context.Context, result *models.RoundResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rounds[result.Round] = *result
	return nil
}

func (r *RoundRepository) FindByRound(_ context.Context, round uint64) (*models.RoundResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result, ok := r.rounds[round]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &result, nil
}

func (r *RoundRepository) FindAll(_ context.Context, page models.Page) ([]*models.RoundResult, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]uint64, 0, len(r.rounds))
	for k := range r.rounds {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] > keys[j] })

	start, end := window(len(keys), page)
	results := make([]*models.RoundResult, 0, end-start)
	for _, k := range keys[start:end] {
		result := r.rounds[k]
		results = append(results, &result)
	}
	return results, int64(len(keys)), nil
}

// NotificationRepository keeps notifications in insertion order
type NotificationRepository struct {
	mu            sync.RWMutex
	notifications []models.Notification
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{}
}

func (r *NotificationRepository) Create(_ context.Context, notification *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, *notification)
	return nil
}

func (r *NotificationRepository) FindAll(_ context.Context, page models.Page) ([]*models.Notification, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := len(r.notifications)
	start, end := window(total, page)
	out := make([]*models.Notification, 0, end-start)
	for i := start; i < end; i++ {
		n := r.notifications[total-1-i]
		out = append(out, &n)
	}
	return out, int64(total), nil
}

// BlacklistRepository keeps blacklisted addresses in a map
type BlacklistRepository struct {
	mu      sync.RWMutex
	entries map[common.Address]models.BlacklistEntry
	now     func() time.Time
}

func NewBlacklistRepository() *BlacklistRepository {
	return &BlacklistRepository{
		entries: make(map[common.Address]models.BlacklistEntry),
		now:     time.Now,
	}
}

func (r *BlacklistRepository) IsBlacklisted(_ context.Context, address common.Address) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[address]
	return ok, nil
}

func (r *BlacklistRepository) Add(_ context.Context, address common.Address, reason, createdBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[address] = models.BlacklistEntry{
		Address:   address.Hex(),
		Reason:    reason,
		CreatedBy: createdBy,
		CreatedAt: r.now(),
	}
	return nil
}

func (r *BlacklistRepository) Remove(_ context.Context, address common.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[address]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.entries, address)
	return nil
}

func (r *BlacklistRepository) FindAll(_ context.Context) ([]*models.BlacklistEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := make([]*models.BlacklistEntry, 0, len(r.entries))
	for _, e := range r.entries {
		entry := e
		entries = append(entries, &entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Address < entries[j].Address })
	return entries, nil
}

func window(total int, page models.Page) (int, int) {
	page = page.Normalize()
	start := page.Offset
	if start > total {
		start = total
	}
	end := start + page.Limit
	if end > total {
		end = total
	}
	return start, end
}
