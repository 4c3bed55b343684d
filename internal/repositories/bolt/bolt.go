// Package bolt stores repository data in a single bbolt file. Values are
// JSON encoded models.
package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ArowuTest/raffle-backend/internal/models"
	"github.com/ArowuTest/raffle-backend/internal/repositories"
	"github.com/ethereum/go-ethereum/common"
	"go.etcd.io/bbolt"
)

var (
	lotteryBucket      = []byte("lottery")
	roundsBucket       = []byte("rounds")
	notificationBucket = []byte("notifications")
	blacklistBucket    = []byte("blacklist")
)

// Open opens (or creates) the database at path and returns a store over it
func Open(path string) (*repositories.Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{lotteryBucket, roundsBucket, notificationBucket, blacklistBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}

	return &repositories.Store{
		Lottery:       &LotteryRepository{db: db},
		Rounds:        &RoundRepository{db: db},
		Notifications: &NotificationRepository{db: db},
		Blacklist:     &BlacklistRepository{db: db, now: time.Now},
		Close:         db.Close,
	}, nil
}

func uint64Key(n uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, n)
	return key
}

// LotteryRepository implements repositories.LotteryRepository
type LotteryRepository struct {
	db *bbolt.DB
}

func (r *LotteryRepository) Load(_ context.Context) (*models.LotterySnapshot, error) {
	var snapshot models.LotterySnapshot
	err := r.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(lotteryBucket).Get([]byte(models.CurrentLotteryID))
		if data == nil {
			return repositories.ErrNotFound
		}
		return json.Unmarshal(data, &snapshot)
	})
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (r *LotteryRepository) Save(_ context.Context, snapshot *models.LotterySnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return r.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(lotteryBucket).Put([]byte(models.CurrentLotteryID), data)
	})
}

// RoundRepository implements repositories.RoundRepository. Keys are the
// big-endian round number so cursor order is round order.
type RoundRepository struct {
	db *bbolt.DB
}

func (r *RoundRepository) Save(_ context.Context, result *models.RoundResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return r.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(roundsBucket).Put(uint64Key(result.Round), data)
	})
}

func (r *RoundRepository) FindByRound(_ context.Context, round uint64) (*models.RoundResult, error) {
	var result models.RoundResult
	err := r.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(roundsBucket).Get(uint64Key(round))
		if data == nil {
			return repositories.ErrNotFound
		}
		return json.Unmarshal(data, &result)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *RoundRepository) FindAll(_ context.Context, page models.Page) ([]*models.RoundResult, int64, error) {
	results := []*models.RoundResult{}
	var total int64
	err := r.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(roundsBucket)
		total = int64(b.Stats().KeyN)
		return reverseWindow(b, page, func(v []byte) error {
			var result models.RoundResult
			if err := json.Unmarshal(v, &result); err != nil {
				return err
			}
			results = append(results, &result)
			return nil
		})
	})
	if err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

// NotificationRepository implements repositories.NotificationRepository.
// Keys come from the bucket sequence so cursor order is insertion order.
type NotificationRepository struct {
	db *bbolt.DB
}

func (r *NotificationRepository) Create(_ context.Context, notification *models.Notification) error {
	data, err := json.Marshal(notification)
	if err != nil {
		return err
	}
	return r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(notificationBucket)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		return b.Put(uint64Key(seq), data)
	})
}

func (r *NotificationRepository) FindAll(_ context.Context, page models.Page) ([]*models.Notification, int64, error) {
	out := []*models.Notification{}
	var total int64
	err := r.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(notificationBucket)
		total = int64(b.Stats().KeyN)
		return reverseWindow(b, page, func(v []byte) error {
			var n models.Notification
			if err := json.Unmarshal(v, &n); err != nil {
				return err
			}
			out = append(out, &n)
			return nil
		})
	})
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// reverseWindow walks b from the last key, skipping page.Offset values and
// visiting at most page.Limit.
func reverseWindow(b *bbolt.Bucket, page models.Page, visit func(v []byte) error) error {
	page = page.Normalize()
	c := b.Cursor()
	skipped, seen := 0, 0
	for k, v := c.Last(); k != nil && seen < page.Limit; k, v = c.Prev() {
		if skipped < page.Offset {
			skipped++
			continue
		}
		if err := visit(v); err != nil {
			return err
		}
		seen++
	}
	return nil
}

// BlacklistRepository implements repositories.BlacklistRepository
type BlacklistRepository struct {
	db  *bbolt.DB
	now func() time.Time
}

func (r *BlacklistRepository) IsBlacklisted(_ context.Context, address common.Address) (bool, error) {
	var found bool
	err := r.db.View(func(tx *bbolt.Tx) error {
		found = tx.Bucket(blacklistBucket).Get(address.Bytes()) != nil
		return nil
	})
	return found, err
}

func (r *BlacklistRepository) Add(_ context.Context, address common.Address, reason, createdBy string) error {
	data, err := json.Marshal(models.BlacklistEntry{
		Address:   address.Hex(),
		Reason:    reason,
		CreatedBy: createdBy,
		CreatedAt: r.now(),
	})
	if err != nil {
		return err
	}
	return r.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(blacklistBucket).Put(address.Bytes(), data)
	})
}

func (r *BlacklistRepository) Remove(_ context.Context, address common.Address) error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(blacklistBucket)
		if b.Get(address.Bytes()) == nil {
			return repositories.ErrNotFound
		}
		return b.Delete(address.Bytes())
	})
}

func (r *BlacklistRepository) FindAll(_ context.Context) ([]*models.BlacklistEntry, error) {
	entries := []*models.BlacklistEntry{}
	err := r.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(blacklistBucket).ForEach(func(_, v []byte) error {
			var e models.BlacklistEntry
			if err := json.Unmarshal(v, &e); err != nil {
				return err
			}
			entries = append(entries, &e)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
