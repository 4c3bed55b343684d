package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ArowuTest/raffle-backend/internal/lottery"
	"github.com/ArowuTest/raffle-backend/internal/models"
	"github.com/ArowuTest/raffle-backend/internal/repositories"
	"github.com/ArowuTest/raffle-backend/internal/repositories/memory"
	"github.com/ArowuTest/raffle-backend/pkg/payout"
	"github.com/ArowuTest/raffle-backend/pkg/vrf"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	fee   = big.NewInt(10_000_000_000_000_000)
	alice = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob   = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	carol = common.HexToAddress("0x00000000000000000000000000000000000000c3")
	dave  = common.HexToAddress("0x00000000000000000000000000000000000000d4")
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// flakyLotteryRepo fails Save while failing is set
type flakyLotteryRepo struct {
	repositories.LotteryRepository
	failing bool
}

func (r *flakyLotteryRepo) Save(ctx context.Context, s *models.LotterySnapshot) error {
	if r.failing {
		return errors.New("disk full")
	}
	return r.LotteryRepository.Save(ctx, s)
}

type recordingPublisher struct {
	mu       sync.Mutex
	messages []*models.Notification
}

func (p *recordingPublisher) Publish(_ context.Context, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, v.(*models.Notification))
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.messages))
	for i, m := range p.messages {
		out[i] = m.Type
	}
	return out
}

type harness struct {
	svc         *LotteryService
	store       *repositories.Store
	lotteryRepo *flakyLotteryRepo
	coordinator *vrf.MockCoordinator
	ledger      *payout.LedgerGateway
	blacklist   *BlacklistService
	publisher   *recordingPublisher
	clock       *clock
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWithStore(t, memory.NewStore(), &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)})
}

func newHarnessWithStore(t *testing.T, store *repositories.Store, clk *clock) *harness {
	t.Helper()
	logger := discardLogger()

	blacklist := NewBlacklistService(store.Blacklist, logger)
	ledger := payout.NewLedgerGateway(blacklist)
	coordinator := vrf.NewMockCoordinator(vrf.Config{NumWords: 1})
	publisher := &recordingPublisher{}
	notifications := NewNotificationService(store.Notifications, logger, publisher)

	machine, err := lottery.New(lottery.Config{EntranceFee: fee, Interval: 30 * time.Second}, coordinator, ledger, lottery.WithClock(clk.Now))
	require.NoError(t, err)

	lotteryRepo := &flakyLotteryRepo{LotteryRepository: store.Lottery}
	svc := NewLotteryService(machine, lotteryRepo, store.Rounds, notifications, logger)
	svc.now = clk.Now
	coordinator.SetConsumer(svc)
	require.NoError(t, svc.Start(context.Background()))

	return &harness{
		svc:         svc,
		store:       store,
		lotteryRepo: lotteryRepo,
		coordinator: coordinator,
		ledger:      ledger,
		blacklist:   blacklist,
		publisher:   publisher,
		clock:       clk,
	}
}

func TestLotteryServiceStartPersistsFreshLottery(t *testing.T) {
	h := newHarness(t)
	doc, err := h.store.Lottery.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "OPEN", doc.State)
	assert.Equal(t, uint64(1), doc.Round)
	assert.Equal(t, "0", doc.PoolWei)
}

func TestLotteryServiceFullRound(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	for _, p := range []common.Address{alice, bob, carol, dave} {
		require.NoError(t, h.svc.Enter(ctx, p, fee))
	}
	assert.False(t, h.svc.CheckUpkeep().Needed())

	h.clock.Advance(31 * time.Second)
	require.True(t, h.svc.CheckUpkeep().Needed())

	requestID, err := h.svc.PerformUpkeep(ctx)
	require.NoError(t, err)
	assert.Equal(t, vrf.RequestIDFromUint64(1), requestID)

	doc, err := h.store.Lottery.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "CALCULATING", doc.State)
	assert.Equal(t, requestID.Hex(), doc.PendingRequest)

	h.clock.Advance(5 * time.Second)
	require.NoError(t, h.coordinator.FulfillWithWords(ctx, requestID, []*big.Int{big.NewInt(7)}))

	status := h.svc.Status()
	assert.Equal(t, "OPEN", status.State)
	assert.Equal(t, dave.Hex(), status.RecentWinner)
	assert.Equal(t, "0", status.PoolWei)
	assert.Equal(t, 0, status.NumberOfPlayers)
	assert.Equal(t, uint64(2), status.Round)
	assert.Empty(t, status.PendingRequest)
	assert.Equal(t, h.clock.Now(), status.LastTimestamp)
	assert.Equal(t, "40000000000000000", h.ledger.Balance(dave).String())

	round, err := h.svc.Round(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, round.WinnerIndex)
	assert.Equal(t, dave.Hex(), round.Winner)
	assert.Equal(t, "40000000000000000", round.PrizeWei)
	assert.Equal(t, "7", round.RandomValue)
	assert.Equal(t, 4, round.Players)

	assert.Equal(t, []string{"ENTERED", "ENTERED", "ENTERED", "ENTERED", "UPKEEP_PERFORMED", "WINNER_PICKED"}, h.publisher.types())
	stored, total, err := h.store.Notifications.FindAll(ctx, models.Page{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(6), total)
	assert.Equal(t, "WINNER_PICKED", stored[0].Type)
}

func TestLotteryServiceDerivedRandomness(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	require.NoError(t, h.svc.Enter(ctx, alice, fee))
	require.NoError(t, h.svc.Enter(ctx, bob, fee))
	h.clock.Advance(time.Minute)
	requestID, err := h.svc.PerformUpkeep(ctx)
	require.NoError(t, err)

	require.NoError(t, h.coordinator.Fulfill(ctx, requestID))

	want := new(big.Int).Mod(vrf.DeriveWord(requestID, 0), big.NewInt(2)).Int64()
	winner := []common.Address{alice, bob}[want]
	assert.Equal(t, winner.Hex(), h.svc.Status().RecentWinner)
}

func TestLotteryServiceStorageFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	require.NoError(t, h.svc.Enter(ctx, alice, fee))

	h.lotteryRepo.failing = true
	err := h.svc.Enter(ctx, bob, fee)
	require.ErrorIs(t, err, ErrStorage)

	status := h.svc.Status()
	assert.Equal(t, 1, status.NumberOfPlayers)
	assert.Equal(t, fee.String(), status.PoolWei)
	assert.Equal(t, []string{"ENTERED"}, h.publisher.types())

	h.clock.Advance(time.Minute)
	_, err = h.svc.PerformUpkeep(ctx)
	require.ErrorIs(t, err, ErrStorage)
	assert.Equal(t, "OPEN", h.svc.Status().State)

	h.lotteryRepo.failing = false
	requestID, err := h.svc.PerformUpkeep(ctx)
	require.NoError(t, err)
	// the first request was rolled back, so the mock handed out a new id
	assert.Equal(t, vrf.RequestIDFromUint64(2), requestID)
}

func TestLotteryServiceBlacklistedWinner(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	require.NoError(t, h.svc.Enter(ctx, alice, fee))
	require.NoError(t, h.blacklist.Add(ctx, alice, "reverts on receive", "test"))
	h.clock.Advance(time.Minute)
	requestID, err := h.svc.PerformUpkeep(ctx)
	require.NoError(t, err)

	err = h.coordinator.FulfillWithWords(ctx, requestID, []*big.Int{big.NewInt(0)})
	require.ErrorIs(t, err, lottery.ErrPayoutFailed)
	assert.ErrorIs(t, err, payout.ErrRecipientRejected)

	status := h.svc.Status()
	assert.Equal(t, "CALCULATING", status.State)
	assert.Equal(t, fee.String(), status.PoolWei)
	assert.Equal(t, requestID.Hex(), status.PendingRequest)
	assert.NotContains(t, h.publisher.types(), "WINNER_PICKED")
	assert.Equal(t, 0, h.ledger.TotalPaid().Sign())

	_, err = h.svc.Round(ctx, 1)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestLotteryServiceStaleFulfilment(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	_, err := h.svc.FulfillRandomness(ctx, common.HexToHash("0x1"), big.NewInt(1))
	assert.ErrorIs(t, err, lottery.ErrUnknownRequest)

	err = h.svc.FulfillRandomWords(ctx, common.HexToHash("0x1"), nil)
	assert.ErrorIs(t, err, lottery.ErrInvalidRandomness)
}

func TestLotteryServicePayoutPersistFailureKeepsRound(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	require.NoError(t, h.svc.Enter(ctx, alice, fee))
	h.clock.Advance(time.Minute)
	requestID, err := h.svc.PerformUpkeep(ctx)
	require.NoError(t, err)

	h.lotteryRepo.failing = true
	result, err := h.svc.FulfillRandomness(ctx, requestID, big.NewInt(3))
	require.NoError(t, err)
	assert.Equal(t, alice, result.Winner)
	assert.Equal(t, "OPEN", h.svc.Status().State)

	// storage still holds the calculating round until the next save
	doc, err := h.store.Lottery.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "CALCULATING", doc.State)

	h.lotteryRepo.failing = false
	require.NoError(t, h.svc.Enter(ctx, bob, fee))
	doc, err = h.store.Lottery.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "OPEN", doc.State)
	assert.Equal(t, uint64(2), doc.Round)
}

func TestLotteryServiceRestartAfterUnsavedPayoutDoesNotPayTwice(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	clk := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	first := newHarnessWithStore(t, store, clk)

	require.NoError(t, first.svc.Enter(ctx, alice, fee))
	require.NoError(t, first.svc.Enter(ctx, bob, fee))
	clk.Advance(time.Minute)
	requestID, err := first.svc.PerformUpkeep(ctx)
	require.NoError(t, err)

	first.lotteryRepo.failing = true
	clk.Advance(time.Second)
	result, err := first.svc.FulfillRandomness(ctx, requestID, big.NewInt(1))
	require.NoError(t, err)
	require.Equal(t, bob, result.Winner)
	assert.Equal(t, "20000000000000000", first.ledger.TotalPaid().String())

	doc, err := store.Lottery.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "CALCULATING", doc.State)

	second := newHarnessWithStore(t, store, clk)
	status := second.svc.Status()
	assert.Equal(t, "OPEN", status.State)
	assert.Equal(t, uint64(2), status.Round)
	assert.Equal(t, "0", status.PoolWei)
	assert.Equal(t, 0, status.NumberOfPlayers)
	assert.Equal(t, bob.Hex(), status.RecentWinner)
	assert.Empty(t, status.PendingRequest)
	assert.Equal(t, clk.Now(), status.LastTimestamp)

	doc, err = store.Lottery.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "OPEN", doc.State)
	assert.Equal(t, uint64(2), doc.Round)

	_, err = second.svc.FulfillRandomness(ctx, requestID, big.NewInt(1))
	assert.ErrorIs(t, err, lottery.ErrUnknownRequest)
	assert.Equal(t, 0, second.ledger.TotalPaid().Sign())

	_, total, err := store.Rounds.FindAll(ctx, models.Page{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestLotteryServiceStartRejectsCorruptRoundRecord(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	clk := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	first := newHarnessWithStore(t, store, clk)

	require.NoError(t, first.svc.Enter(ctx, alice, fee))
	clk.Advance(time.Minute)
	requestID, err := first.svc.PerformUpkeep(ctx)
	require.NoError(t, err)

	// a record naming someone who never entered
	require.NoError(t, store.Rounds.Save(ctx, &models.RoundResult{
		Round:       1,
		RequestID:   requestID.Hex(),
		RandomValue: "0",
		Winner:      carol.Hex(),
		PrizeWei:    fee.String(),
		Players:     1,
	}))

	machine, err := lottery.New(lottery.Config{EntranceFee: fee, Interval: 30 * time.Second}, vrf.NewMockCoordinator(vrf.Config{}), payout.NewLedgerGateway(nil))
	require.NoError(t, err)
	svc := NewLotteryService(machine, store.Lottery, store.Rounds, NewNotificationService(store.Notifications, discardLogger()), discardLogger())
	assert.ErrorIs(t, svc.Start(ctx), lottery.ErrCorruptSnapshot)
}

func TestLotteryServiceRestartResumesCalculatingRound(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	clk := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	first := newHarnessWithStore(t, store, clk)

	require.NoError(t, first.svc.Enter(ctx, alice, fee))
	require.NoError(t, first.svc.Enter(ctx, bob, fee))
	clk.Advance(time.Minute)
	requestID, err := first.svc.PerformUpkeep(ctx)
	require.NoError(t, err)

	second := newHarnessWithStore(t, store, clk)
	status := second.svc.Status()
	assert.Equal(t, "CALCULATING", status.State)
	assert.Equal(t, 2, status.NumberOfPlayers)
	assert.Equal(t, requestID.Hex(), status.PendingRequest)

	assert.Equal(t, requestID, second.svc.PendingRequest())

	result, err := second.svc.FulfillRandomness(ctx, requestID, big.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, bob, result.Winner)
	assert.Equal(t, common.Hash{}, second.svc.PendingRequest())
}

func TestLotteryServiceStartRejectsCorruptSnapshot(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Lottery.Save(ctx, &models.LotterySnapshot{
		ID:      models.CurrentLotteryID,
		State:   "CALCULATING",
		PoolWei: "0",
		Round:   1,
	}))

	machine, err := lottery.New(lottery.Config{EntranceFee: fee, Interval: time.Second}, vrf.NewMockCoordinator(vrf.Config{}), payout.NewLedgerGateway(nil))
	require.NoError(t, err)
	svc := NewLotteryService(machine, store.Lottery, store.Rounds, NewNotificationService(store.Notifications, discardLogger()), discardLogger())
	assert.ErrorIs(t, svc.Start(ctx), lottery.ErrCorruptSnapshot)
}

func TestLotteryServiceConcurrentEntries(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, h.svc.Enter(ctx, alice, fee))
		}()
	}
	wg.Wait()

	status := h.svc.Status()
	assert.Equal(t, 50, status.NumberOfPlayers)
	assert.Equal(t, new(big.Int).Mul(fee, big.NewInt(50)).String(), status.PoolWei)
}

func TestLotteryServiceUpkeepNotNeeded(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.PerformUpkeep(context.Background())

	var notNeeded *lottery.UpkeepNotNeededError
	require.ErrorAs(t, err, &notNeeded)
	assert.Equal(t, 0, notNeeded.Players)
	assert.Equal(t, lottery.StateOpen, notNeeded.State)
}
