package lottery

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCoordinator struct {
	next  uint64
	calls int
	err   error
}

func (c *fakeCoordinator) RequestRandomness(context.Context) (common.Hash, error) {
	c.calls++
	if c.err != nil {
		return common.Hash{}, c.err
	}
	c.next++
	return common.BigToHash(new(big.Int).SetUint64(c.next)), nil
}

type payment struct {
	reference string
	to        common.Address
	amount    *big.Int
}

type fakePayer struct {
	payments []payment
	err      error
}

func (p *fakePayer) Pay(_ context.Context, reference string, to common.Address, amount *big.Int) error {
	if p.err != nil {
		return p.err
	}
	p.payments = append(p.payments, payment{reference: reference, to: to, amount: new(big.Int).Set(amount)})
	return nil
}

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

const interval = 30 * time.Second

var (
	fee     = big.NewInt(10_000_000_000_000_000) // 0.01 ether
	alice   = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob     = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	carol   = common.HexToAddress("0x00000000000000000000000000000000000000c3")
	dave    = common.HexToAddress("0x00000000000000000000000000000000000000d4")
	ctx     = context.Background()
	genesis = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
)

func newMachine(t *testing.T) (*Machine, *fakeCoordinator, *fakePayer, *testClock) {
	t.Helper()
	coord := &fakeCoordinator{}
	payer := &fakePayer{}
	clock := &testClock{t: genesis}
	m, err := New(Config{EntranceFee: fee, Interval: interval}, coord, payer, WithClock(clock.Now))
	require.NoError(t, err)
	return m, coord, payer, clock
}

func mul(x *big.Int, n int64) *big.Int {
	return new(big.Int).Mul(x, big.NewInt(n))
}

func TestNew(t *testing.T) {
	t.Run("initial state", func(t *testing.T) {
		m, _, _, _ := newMachine(t)
		assert.Equal(t, StateOpen, m.State())
		assert.Equal(t, 0, m.NumberOfPlayers())
		assert.Equal(t, 0, m.Pool().Sign())
		assert.Equal(t, genesis, m.LastTimestamp())
		assert.Equal(t, common.Hash{}, m.PendingRequest())
		assert.Equal(t, common.Address{}, m.RecentWinner())
		assert.Equal(t, interval, m.Interval())
		assert.Equal(t, 0, m.EntranceFee().Cmp(fee))
		assert.Equal(t, uint64(1), m.Round())
	})

	tests := []struct {
		name  string
		cfg   Config
		coord Coordinator
		payer Payer
	}{
		{"nil fee", Config{Interval: interval}, &fakeCoordinator{}, &fakePayer{}},
		{"zero fee", Config{EntranceFee: big.NewInt(0), Interval: interval}, &fakeCoordinator{}, &fakePayer{}},
		{"negative interval", Config{EntranceFee: fee, Interval: -time.Second}, &fakeCoordinator{}, &fakePayer{}},
		{"missing coordinator", Config{EntranceFee: fee, Interval: interval}, nil, &fakePayer{}},
		{"missing payer", Config{EntranceFee: fee, Interval: interval}, &fakeCoordinator{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg, tt.coord, tt.payer)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	t.Run("entrance fee is copied", func(t *testing.T) {
		f := big.NewInt(5)
		m, err := New(Config{EntranceFee: f}, &fakeCoordinator{}, &fakePayer{})
		require.NoError(t, err)
		f.SetInt64(100)
		assert.Equal(t, int64(5), m.EntranceFee().Int64())
	})
}

func TestEnter(t *testing.T) {
	t.Run("payment below fee is rejected without effect", func(t *testing.T) {
		m, _, _, _ := newMachine(t)
		for _, p := range []*big.Int{nil, big.NewInt(0), new(big.Int).Sub(fee, big.NewInt(1))} {
			err := m.Enter(alice, p)
			assert.ErrorIs(t, err, ErrInsufficientPayment)
		}
		assert.Equal(t, 0, m.NumberOfPlayers())
		assert.Equal(t, 0, m.Pool().Sign())
		assert.Empty(t, m.DrainNotifications())
	})

	t.Run("records player and pool", func(t *testing.T) {
		m, _, _, _ := newMachine(t)
		require.NoError(t, m.Enter(alice, fee))

		player, err := m.Player(0)
		require.NoError(t, err)
		assert.Equal(t, alice, player)
		assert.Equal(t, 0, m.Pool().Cmp(fee))
	})

	t.Run("overpayment goes to the pool", func(t *testing.T) {
		m, _, _, _ := newMachine(t)
		require.NoError(t, m.Enter(alice, mul(fee, 3)))
		assert.Equal(t, 0, m.Pool().Cmp(mul(fee, 3)))
		assert.Equal(t, 1, m.NumberOfPlayers())
	})

	t.Run("duplicates get separate slots", func(t *testing.T) {
		m, _, _, _ := newMachine(t)
		require.NoError(t, m.Enter(alice, fee))
		require.NoError(t, m.Enter(alice, fee))
		assert.Equal(t, 2, m.NumberOfPlayers())
		assert.Equal(t, 0, m.Pool().Cmp(mul(fee, 2)))
	})

	t.Run("each entry grows pool by payment and players by one", func(t *testing.T) {
		m, _, _, _ := newMachine(t)
		payments := []*big.Int{fee, mul(fee, 2), new(big.Int).Add(fee, big.NewInt(7))}
		total := new(big.Int)
		for i, p := range payments {
			before := m.Pool()
			require.NoError(t, m.Enter(bob, p))
			total.Add(total, p)
			assert.Equal(t, 0, new(big.Int).Sub(m.Pool(), before).Cmp(p))
			assert.Equal(t, i+1, m.NumberOfPlayers())
		}
		assert.Equal(t, 0, m.Pool().Cmp(total))
	})

	t.Run("emits entered", func(t *testing.T) {
		m, _, _, _ := newMachine(t)
		require.NoError(t, m.Enter(alice, fee))
		events := m.DrainNotifications()
		require.Len(t, events, 1)
		assert.Equal(t, NotificationEntered, events[0].Type)
		assert.Equal(t, alice, events[0].Participant)
		assert.Equal(t, uint64(1), events[0].Round)
		assert.Empty(t, m.DrainNotifications())
	})

	t.Run("zero address is rejected", func(t *testing.T) {
		m, _, _, _ := newMachine(t)
		assert.ErrorIs(t, m.Enter(common.Address{}, fee), ErrInvalidParticipant)
		assert.Equal(t, 0, m.NumberOfPlayers())
	})

	t.Run("not open while calculating", func(t *testing.T) {
		m, _, _, clock := newMachine(t)
		require.NoError(t, m.Enter(alice, fee))
		clock.Advance(interval + time.Second)
		_, err := m.PerformUpkeep(ctx)
		require.NoError(t, err)
		m.DrainNotifications()

		err = m.Enter(bob, fee)
		assert.ErrorIs(t, err, ErrNotOpen)
		assert.Equal(t, 1, m.NumberOfPlayers())
		assert.Equal(t, 0, m.Pool().Cmp(fee))
		assert.Empty(t, m.DrainNotifications())
	})
}

func TestCheckUpkeep(t *testing.T) {
	t.Run("false without players or balance", func(t *testing.T) {
		m, _, _, clock := newMachine(t)
		clock.Advance(interval + time.Second)
		detail := m.CheckUpkeepDetail()
		assert.True(t, detail.IsOpen)
		assert.True(t, detail.TimePassed)
		assert.False(t, detail.HasBalance)
		assert.False(t, detail.HasPlayers)
		assert.False(t, m.CheckUpkeep())
	})

	t.Run("false before interval elapses", func(t *testing.T) {
		m, _, _, clock := newMachine(t)
		require.NoError(t, m.Enter(alice, fee))
		clock.Advance(interval - 5*time.Second)
		assert.False(t, m.CheckUpkeepDetail().TimePassed)
		assert.False(t, m.CheckUpkeep())
	})

	t.Run("true once interval has elapsed exactly", func(t *testing.T) {
		m, _, _, clock := newMachine(t)
		require.NoError(t, m.Enter(alice, fee))
		clock.Advance(interval)
		assert.True(t, m.CheckUpkeep())
	})

	t.Run("false while calculating", func(t *testing.T) {
		m, _, _, clock := newMachine(t)
		require.NoError(t, m.Enter(alice, fee))
		clock.Advance(interval + time.Second)
		_, err := m.PerformUpkeep(ctx)
		require.NoError(t, err)
		assert.False(t, m.CheckUpkeepDetail().IsOpen)
		assert.False(t, m.CheckUpkeep())
	})

	t.Run("does not mutate", func(t *testing.T) {
		m, coord, _, clock := newMachine(t)
		require.NoError(t, m.Enter(alice, fee))
		m.DrainNotifications()
		clock.Advance(interval + time.Second)
		before := m.Snapshot()
		for i := 0; i < 3; i++ {
			assert.True(t, m.CheckUpkeep())
		}
		assert.Equal(t, before, m.Snapshot())
		assert.Equal(t, 0, coord.calls)
		assert.Empty(t, m.DrainNotifications())
	})
}

func TestPerformUpkeep(t *testing.T) {
	t.Run("fails when not needed and carries diagnostics", func(t *testing.T) {
		m, coord, _, _ := newMachine(t)
		_, err := m.PerformUpkeep(ctx)
		require.ErrorIs(t, err, ErrUpkeepNotNeeded)

		var notNeeded *UpkeepNotNeededError
		require.ErrorAs(t, err, &notNeeded)
		assert.Equal(t, 0, notNeeded.Pool.Sign())
		assert.Equal(t, 0, notNeeded.Players)
		assert.Equal(t, StateOpen, notNeeded.State)
		assert.Equal(t, 0, coord.calls)
		assert.Equal(t, StateOpen, m.State())
	})

	t.Run("moves to calculating and records the request", func(t *testing.T) {
		m, coord, _, clock := newMachine(t)
		require.NoError(t, m.Enter(alice, fee))
		m.DrainNotifications()
		clock.Advance(interval + time.Second)

		id, err := m.PerformUpkeep(ctx)
		require.NoError(t, err)
		assert.NotEqual(t, common.Hash{}, id)
		assert.Equal(t, id, m.PendingRequest())
		assert.Equal(t, StateCalculating, m.State())
		assert.Equal(t, 1, coord.calls)

		events := m.DrainNotifications()
		require.Len(t, events, 1)
		assert.Equal(t, NotificationUpkeepPerformed, events[0].Type)
		assert.Equal(t, id, events[0].RequestID)
	})

	t.Run("second call never issues a second request", func(t *testing.T) {
		m, coord, _, clock := newMachine(t)
		require.NoError(t, m.Enter(alice, fee))
		clock.Advance(interval + time.Second)
		first, err := m.PerformUpkeep(ctx)
		require.NoError(t, err)

		_, err = m.PerformUpkeep(ctx)
		var notNeeded *UpkeepNotNeededError
		require.ErrorAs(t, err, &notNeeded)
		assert.Equal(t, StateCalculating, notNeeded.State)
		assert.Equal(t, 1, notNeeded.Players)
		assert.Equal(t, 1, coord.calls)
		assert.Equal(t, first, m.PendingRequest())
	})

	t.Run("coordinator failure leaves state untouched", func(t *testing.T) {
		m, coord, _, clock := newMachine(t)
		require.NoError(t, m.Enter(alice, fee))
		m.DrainNotifications()
		clock.Advance(interval + time.Second)
		coord.err = errors.New("oracle offline")
		before := m.Snapshot()

		_, err := m.PerformUpkeep(ctx)
		assert.ErrorIs(t, err, ErrRandomnessRequest)
		assert.ErrorIs(t, err, coord.err)
		assert.Equal(t, before, m.Snapshot())
		assert.Empty(t, m.DrainNotifications())
	})
}

func calculating(t *testing.T, players ...common.Address) (*Machine, common.Hash, *fakePayer, *testClock) {
	t.Helper()
	m, _, payer, clock := newMachine(t)
	for _, p := range players {
		require.NoError(t, m.Enter(p, fee))
	}
	clock.Advance(interval + time.Second)
	id, err := m.PerformUpkeep(ctx)
	require.NoError(t, err)
	m.DrainNotifications()
	return m, id, payer, clock
}

func TestFulfillRandomness(t *testing.T) {
	t.Run("single entrant wins the pool", func(t *testing.T) {
		m, id, payer, clock := calculating(t, alice)
		clock.Advance(time.Minute)

		payout, err := m.FulfillRandomness(ctx, id, big.NewInt(123456789))
		require.NoError(t, err)
		assert.Equal(t, alice, payout.Winner)
		assert.Equal(t, 0, payout.WinnerIndex)
		assert.Equal(t, 0, payout.Prize.Cmp(fee))
		assert.Equal(t, uint64(1), payout.Round)

		require.Len(t, payer.payments, 1)
		assert.Equal(t, alice, payer.payments[0].to)
		assert.Equal(t, 0, payer.payments[0].amount.Cmp(fee))
		assert.Equal(t, PayoutReference(1, id), payer.payments[0].reference)

		assert.Equal(t, alice, m.RecentWinner())
		assert.Equal(t, StateOpen, m.State())
		assert.Equal(t, 0, m.NumberOfPlayers())
		assert.Equal(t, 0, m.Pool().Sign())
		assert.Equal(t, common.Hash{}, m.PendingRequest())
		assert.Equal(t, clock.Now(), m.LastTimestamp())
		assert.Equal(t, uint64(2), m.Round())
		_, err = m.Player(0)
		assert.ErrorIs(t, err, ErrPlayerIndexOutOfRange)
	})

	t.Run("winner is random value mod players", func(t *testing.T) {
		m, id, payer, _ := calculating(t, alice, bob, carol, dave)

		payout, err := m.FulfillRandomness(ctx, id, big.NewInt(7))
		require.NoError(t, err)
		assert.Equal(t, 3, payout.WinnerIndex)
		assert.Equal(t, dave, payout.Winner)
		assert.Equal(t, dave, m.RecentWinner())
		require.Len(t, payer.payments, 1)
		assert.Equal(t, 0, payer.payments[0].amount.Cmp(mul(fee, 4)))
	})

	t.Run("uses the full width of the random value", func(t *testing.T) {
		m, id, _, _ := calculating(t, alice, bob, carol)
		// 2^255 + 1 mod 3 = 0 since 2^255 mod 3 = 2.
		v := new(big.Int).Lsh(big.NewInt(1), 255)
		v.Add(v, big.NewInt(1))

		payout, err := m.FulfillRandomness(ctx, id, v)
		require.NoError(t, err)
		assert.Equal(t, 0, payout.WinnerIndex)
		assert.Equal(t, alice, payout.Winner)
	})

	t.Run("emits winner picked", func(t *testing.T) {
		m, id, _, _ := calculating(t, alice, bob)
		_, err := m.FulfillRandomness(ctx, id, big.NewInt(1))
		require.NoError(t, err)

		events := m.DrainNotifications()
		require.Len(t, events, 1)
		assert.Equal(t, NotificationWinnerPicked, events[0].Type)
		assert.Equal(t, bob, events[0].Winner)
		assert.Equal(t, uint64(1), events[0].Round)
	})

	t.Run("stale or unknown request changes nothing", func(t *testing.T) {
		m, id, payer, _ := calculating(t, alice, bob)
		before := m.Snapshot()

		for _, other := range []common.Hash{{}, common.HexToHash("0xdead")} {
			_, err := m.FulfillRandomness(ctx, other, big.NewInt(1))
			assert.ErrorIs(t, err, ErrUnknownRequest)
		}
		assert.Equal(t, before, m.Snapshot())
		assert.Empty(t, payer.payments)
		assert.Empty(t, m.DrainNotifications())

		_, err := m.FulfillRandomness(ctx, id, big.NewInt(1))
		require.NoError(t, err)
		// replaying the same id after completion is stale
		_, err = m.FulfillRandomness(ctx, id, big.NewInt(1))
		assert.ErrorIs(t, err, ErrUnknownRequest)
	})

	t.Run("request while open is rejected", func(t *testing.T) {
		m, _, _, _ := newMachine(t)
		_, err := m.FulfillRandomness(ctx, common.HexToHash("0x1"), big.NewInt(1))
		assert.ErrorIs(t, err, ErrUnknownRequest)
	})

	t.Run("negative random value is rejected", func(t *testing.T) {
		m, id, _, _ := calculating(t, alice)
		before := m.Snapshot()
		_, err := m.FulfillRandomness(ctx, id, big.NewInt(-1))
		assert.ErrorIs(t, err, ErrInvalidRandomness)
		_, err = m.FulfillRandomness(ctx, id, nil)
		assert.ErrorIs(t, err, ErrInvalidRandomness)
		assert.Equal(t, before, m.Snapshot())
	})

	t.Run("payout failure rolls back and stays calculating", func(t *testing.T) {
		m, id, payer, _ := calculating(t, alice, bob)
		payer.err = errors.New("recipient rejected funds")
		before := m.Snapshot()

		_, err := m.FulfillRandomness(ctx, id, big.NewInt(0))
		assert.ErrorIs(t, err, ErrPayoutFailed)
		assert.ErrorIs(t, err, payer.err)
		assert.Equal(t, before, m.Snapshot())
		assert.Equal(t, StateCalculating, m.State())
		assert.Equal(t, 2, m.NumberOfPlayers())
		assert.Empty(t, m.DrainNotifications())

		// no automatic retry: the upkeep predicate stays false
		assert.False(t, m.CheckUpkeep())
	})

	t.Run("last timestamp never moves backwards", func(t *testing.T) {
		m, id, _, clock := calculating(t, alice)
		last := m.LastTimestamp()
		clock.t = last.Add(-time.Hour)
		_, err := m.FulfillRandomness(ctx, id, big.NewInt(0))
		require.NoError(t, err)
		assert.Equal(t, last, m.LastTimestamp())
	})
}

func TestFullCycles(t *testing.T) {
	m, _, payer, clock := newMachine(t)

	for round := 1; round <= 3; round++ {
		require.NoError(t, m.Enter(alice, fee))
		require.NoError(t, m.Enter(bob, fee))
		clock.Advance(interval)
		require.True(t, m.CheckUpkeep())

		id, err := m.PerformUpkeep(ctx)
		require.NoError(t, err)
		assert.Equal(t, common.BigToHash(big.NewInt(int64(round))), id)

		payout, err := m.FulfillRandomness(ctx, id, big.NewInt(int64(round)))
		require.NoError(t, err)
		assert.Equal(t, uint64(round), payout.Round)

		// interval restarts from the payout
		assert.False(t, m.CheckUpkeep())
	}
	assert.Len(t, payer.payments, 3)
	assert.Equal(t, uint64(4), m.Round())
}

func TestPayoutReference(t *testing.T) {
	id := common.HexToHash("0x2a")
	assert.Equal(t, "round-3-0x000000000000000000000000000000000000000000000000000000000000002a", PayoutReference(3, id))
	assert.NotEqual(t, PayoutReference(3, id), PayoutReference(4, id))
}

func TestApplyPayout(t *testing.T) {
	t.Run("settles the round without paying", func(t *testing.T) {
		m, id, payer, clock := calculating(t, alice, bob)
		paidAt := clock.Now().Add(time.Minute)

		err := m.ApplyPayout(&Payout{Round: 1, RequestID: id, WinnerIndex: 1, Winner: bob, Prize: mul(fee, 2), Players: 2}, paidAt)
		require.NoError(t, err)

		assert.Empty(t, payer.payments)
		assert.Equal(t, StateOpen, m.State())
		assert.Equal(t, bob, m.RecentWinner())
		assert.Equal(t, 0, m.NumberOfPlayers())
		assert.Equal(t, 0, m.Pool().Sign())
		assert.Equal(t, common.Hash{}, m.PendingRequest())
		assert.Equal(t, uint64(2), m.Round())
		assert.Equal(t, paidAt, m.LastTimestamp())

		_, err = m.FulfillRandomness(ctx, id, big.NewInt(0))
		assert.ErrorIs(t, err, ErrUnknownRequest)
	})

	tests := []struct {
		name    string
		payout  func(id common.Hash) *Payout
		wantErr error
	}{
		{"other request", func(common.Hash) *Payout {
			return &Payout{Round: 1, RequestID: common.HexToHash("0x99"), Winner: alice}
		}, ErrUnknownRequest},
		{"other round", func(id common.Hash) *Payout {
			return &Payout{Round: 2, RequestID: id, Winner: alice}
		}, ErrUnknownRequest},
		{"winner not at index", func(id common.Hash) *Payout {
			return &Payout{Round: 1, RequestID: id, WinnerIndex: 0, Winner: bob}
		}, ErrCorruptSnapshot},
		{"index out of range", func(id common.Hash) *Payout {
			return &Payout{Round: 1, RequestID: id, WinnerIndex: 5, Winner: alice}
		}, ErrCorruptSnapshot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, id, _, clock := calculating(t, alice, bob)
			before := m.Snapshot()
			assert.ErrorIs(t, m.ApplyPayout(tt.payout(id), clock.Now()), tt.wantErr)
			assert.Equal(t, before, m.Snapshot())
		})
	}

	t.Run("open machine", func(t *testing.T) {
		m, _, _, clock := newMachine(t)
		err := m.ApplyPayout(&Payout{Round: 1, RequestID: common.HexToHash("0x1"), Winner: alice}, clock.Now())
		assert.ErrorIs(t, err, ErrUnknownRequest)
	})
}

func TestSnapshotRestore(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		m, id, _, _ := calculating(t, alice, bob)
		snap := m.Snapshot()

		other, _, _, _ := newMachine(t)
		require.NoError(t, other.Restore(snap))
		assert.Equal(t, snap, other.Snapshot())
		assert.Equal(t, StateCalculating, other.State())
		assert.Equal(t, id, other.PendingRequest())
	})

	t.Run("snapshot is a deep copy", func(t *testing.T) {
		m, _, _, _ := newMachine(t)
		require.NoError(t, m.Enter(alice, fee))
		snap := m.Snapshot()
		snap.Players[0] = bob
		snap.Pool.SetInt64(1)

		p, err := m.Player(0)
		require.NoError(t, err)
		assert.Equal(t, alice, p)
		assert.Equal(t, 0, m.Pool().Cmp(fee))
	})

	t.Run("restore discards undrained notifications", func(t *testing.T) {
		m, _, _, _ := newMachine(t)
		snap := m.Snapshot()
		require.NoError(t, m.Enter(alice, fee))
		require.NoError(t, m.Restore(snap))
		assert.Empty(t, m.DrainNotifications())
		assert.Equal(t, 0, m.NumberOfPlayers())
	})

	valid := Snapshot{State: StateOpen, Pool: new(big.Int), Round: 1}
	tests := []struct {
		name   string
		mutate func(s *Snapshot)
	}{
		{"unknown state", func(s *Snapshot) { s.State = State(9) }},
		{"nil pool", func(s *Snapshot) { s.Pool = nil }},
		{"negative pool", func(s *Snapshot) { s.Pool = big.NewInt(-1) }},
		{"pending while open", func(s *Snapshot) { s.PendingRequest = common.HexToHash("0x1") }},
		{"calculating without request", func(s *Snapshot) {
			s.State = StateCalculating
			s.Players = []common.Address{alice}
			s.Pool = fee
		}},
		{"players without pool", func(s *Snapshot) { s.Players = []common.Address{alice} }},
		{"pool without players", func(s *Snapshot) { s.Pool = fee }},
		{"round zero", func(s *Snapshot) { s.Round = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, _, _ := newMachine(t)
			s := valid
			s.Pool = new(big.Int)
			tt.mutate(&s)
			assert.ErrorIs(t, m.Restore(s), ErrCorruptSnapshot)
			assert.Equal(t, StateOpen, m.State())
		})
	}
}

func TestStateText(t *testing.T) {
	for _, s := range []State{StateOpen, StateCalculating} {
		text, err := s.MarshalText()
		require.NoError(t, err)
		var got State
		require.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, s, got)
	}
	_, err := State(5).MarshalText()
	assert.Error(t, err)
	var s State
	assert.Error(t, s.UnmarshalText([]byte("CLOSED")))
}
