// Package repotest holds behaviour tests shared by every storage backend.
package repotest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ArowuTest/raffle-backend/internal/models"
	"github.com/ArowuTest/raffle-backend/internal/repositories"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob   = common.HexToAddress("0x00000000000000000000000000000000000000b2")
)

// Run exercises store against the repository contracts. newStore must
// return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) *repositories.Store) {
	t.Run("lottery", func(t *testing.T) { testLottery(t, newStore(t)) })
	t.Run("rounds", func(t *testing.T) { testRounds(t, newStore(t)) })
	t.Run("notifications", func(t *testing.T) { testNotifications(t, newStore(t)) })
	t.Run("blacklist", func(t *testing.T) { testBlacklist(t, newStore(t)) })
}

func testLottery(t *testing.T, store *repositories.Store) {
	ctx := context.Background()

	_, err := store.Lottery.Load(ctx)
	require.ErrorIs(t, err, repositories.ErrNotFound)

	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	first := &models.LotterySnapshot{
		ID:            models.CurrentLotteryID,
		State:         "OPEN",
		Players:       []string{alice.Hex()},
		PoolWei:       "10000000000000000",
		LastTimestamp: at,
		Round:         1,
		UpdatedAt:     at,
	}
	require.NoError(t, store.Lottery.Save(ctx, first))

	second := *first
	second.State = "CALCULATING"
	second.Players = []string{alice.Hex(), bob.Hex()}
	second.PoolWei = "20000000000000000"
	second.PendingRequest = common.HexToHash("0x1").Hex()
	require.NoError(t, store.Lottery.Save(ctx, &second))

	loaded, err := store.Lottery.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "CALCULATING", loaded.State)
	assert.Equal(t, second.Players, loaded.Players)
	assert.Equal(t, "20000000000000000", loaded.PoolWei)
	assert.Equal(t, second.PendingRequest, loaded.PendingRequest)
	assert.True(t, at.Equal(loaded.LastTimestamp))
}

func testRounds(t *testing.T, store *repositories.Store) {
	ctx := context.Background()

	_, err := store.Rounds.FindByRound(ctx, 1)
	require.ErrorIs(t, err, repositories.ErrNotFound)

	for i := uint64(1); i <= 5; i++ {
		require.NoError(t, store.Rounds.Save(ctx, &models.RoundResult{
			Round:    i,
			Winner:   alice.Hex(),
			PrizeWei: fmt.Sprint(i * 100),
			Players:  int(i),
		}))
	}
	// saving the same round again replaces it
	require.NoError(t, store.Rounds.Save(ctx, &models.RoundResult{Round: 3, Winner: bob.Hex(), PrizeWei: "300"}))

	got, err := store.Rounds.FindByRound(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, bob.Hex(), got.Winner)

	page, total, err := store.Rounds.FindAll(ctx, models.Page{Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, page, 2)
	assert.Equal(t, uint64(4), page[0].Round)
	assert.Equal(t, uint64(3), page[1].Round)

	page, _, err = store.Rounds.FindAll(ctx, models.Page{Limit: 10, Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, page)
}

func testNotifications(t *testing.T, store *repositories.Store) {
	ctx := context.Background()

	empty, total, err := store.Notifications.FindAll(ctx, models.Page{})
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.Zero(t, total)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Notifications.Create(ctx, &models.Notification{
			ID:          fmt.Sprintf("n-%d", i),
			Type:        "ENTERED",
			Participant: alice.Hex(),
			Round:       1,
			CreatedAt:   base.Add(time.Duration(i) * time.Second),
		}))
	}

	list, total, err := store.Notifications.FindAll(ctx, models.Page{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, list, 2)
	assert.Equal(t, "n-2", list[0].ID)
	assert.Equal(t, "n-1", list[1].ID)
}

func testBlacklist(t *testing.T, store *repositories.Store) {
	ctx := context.Background()

	blocked, err := store.Blacklist.IsBlacklisted(ctx, alice)
	require.NoError(t, err)
	assert.False(t, blocked)

	require.NoError(t, store.Blacklist.Add(ctx, alice, "reverts on receive", "operator"))
	require.NoError(t, store.Blacklist.Add(ctx, alice, "still reverts", "operator"))
	require.NoError(t, store.Blacklist.Add(ctx, bob, "", "operator"))

	blocked, err = store.Blacklist.IsBlacklisted(ctx, alice)
	require.NoError(t, err)
	assert.True(t, blocked)

	entries, err := store.Blacklist.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	var addresses []string
	for _, e := range entries {
		addresses = append(addresses, e.Address)
		if e.Address == alice.Hex() {
			assert.Equal(t, "still reverts", e.Reason)
		}
	}
	assert.ElementsMatch(t, []string{alice.Hex(), bob.Hex()}, addresses)
	assert.NotSame(t, entries[0], entries[1])

	// listed entries are copies
	entries[0].Reason = "edited"
	again, err := store.Blacklist.FindAll(ctx)
	require.NoError(t, err)
	for _, e := range again {
		assert.NotEqual(t, "edited", e.Reason)
	}

	require.NoError(t, store.Blacklist.Remove(ctx, alice))
	assert.ErrorIs(t, store.Blacklist.Remove(ctx, alice), repositories.ErrNotFound)
	blocked, err = store.Blacklist.IsBlacklisted(ctx, alice)
	require.NoError(t, err)
	assert.False(t, blocked)
}
