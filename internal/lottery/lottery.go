// Package lottery implements the raffle state machine: paid entries, the
// upkeep predicate, the randomness request and the payout that closes a
// round.
//
// A Machine is not safe for concurrent use. The host is expected to run one
// call at a time and to treat every call as all-or-nothing: a call that
// returns an error leaves the machine exactly as it found it.
package lottery

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Coordinator issues randomness requests. The random value arrives later
// through Machine.FulfillRandomness with the returned request id.
type Coordinator interface {
	RequestRandomness(ctx context.Context) (common.Hash, error)
}

// Payer moves the pool to the winner. reference is the same for every
// attempt at paying one round, so a payer can ignore a transfer it has
// already made.
type Payer interface {
	Pay(ctx context.Context, reference string, to common.Address, amount *big.Int) error
}

// PayoutReference identifies the payout of round for requestID.
func PayoutReference(round uint64, requestID common.Hash) string {
	return fmt.Sprintf("round-%d-%s", round, requestID.Hex())
}

// Config is fixed for the lifetime of a Machine.
type Config struct {
	EntranceFee *big.Int
	Interval    time.Duration
}

// Option customises a Machine.
type Option func(*Machine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) {
		if now != nil {
			m.now = now
		}
	}
}

// Machine holds the state of the current round.
type Machine struct {
	entranceFee *big.Int
	interval    time.Duration
	coordinator Coordinator
	payer       Payer
	now         func() time.Time

	players        []common.Address
	pool           *big.Int
	state          State
	lastTimestamp  time.Time
	pendingRequest common.Hash
	recentWinner   common.Address
	round          uint64

	outbox []Notification
}

// New creates an open machine with an empty pool. The creation time is the
// first lastTimestamp.
func New(cfg Config, coordinator Coordinator, payer Payer, opts ...Option) (*Machine, error) {
	if cfg.EntranceFee == nil || cfg.EntranceFee.Sign() <= 0 {
		return nil, fmt.Errorf("%w: entrance fee must be positive", ErrInvalidConfig)
	}
	if cfg.Interval < 0 {
		return nil, fmt.Errorf("%w: interval must not be negative", ErrInvalidConfig)
	}
	if coordinator == nil || payer == nil {
		return nil, fmt.Errorf("%w: coordinator and payer are required", ErrInvalidConfig)
	}

	m := &Machine{
		entranceFee: new(big.Int).Set(cfg.EntranceFee),
		interval:    cfg.Interval,
		coordinator: coordinator,
		payer:       payer,
		now:         time.Now,
		pool:        new(big.Int),
		state:       StateOpen,
		round:       1,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.lastTimestamp = m.now()
	return m, nil
}

// Enter records one paid entry for caller. The same address may enter any
// number of times; each entry is its own slot.
func (m *Machine) Enter(caller common.Address, payment *big.Int) error {
	if caller == (common.Address{}) {
		return ErrInvalidParticipant
	}
	if payment == nil || payment.Cmp(m.entranceFee) < 0 {
		return ErrInsufficientPayment
	}
	if m.state != StateOpen {
		return ErrNotOpen
	}

	m.players = append(m.players, caller)
	m.pool.Add(m.pool, payment)
	m.emit(Notification{Type: NotificationEntered, Participant: caller})
	return nil
}

// CheckUpkeepDetail evaluates each upkeep condition without side effects.
func (m *Machine) CheckUpkeepDetail() UpkeepCheck {
	return UpkeepCheck{
		IsOpen:     m.state == StateOpen,
		TimePassed: m.now().Sub(m.lastTimestamp) >= m.interval,
		HasBalance: m.pool.Sign() > 0,
		HasPlayers: len(m.players) > 0,
	}
}

// CheckUpkeep reports whether PerformUpkeep would succeed now.
func (m *Machine) CheckUpkeep() bool {
	return m.CheckUpkeepDetail().Needed()
}

// PerformUpkeep closes entry and requests a random value. While the request
// is outstanding the machine stays CALCULATING, so a second call fails the
// predicate and never issues a second request.
func (m *Machine) PerformUpkeep(ctx context.Context) (common.Hash, error) {
	if !m.CheckUpkeep() {
		return common.Hash{}, &UpkeepNotNeededError{
			Pool:    new(big.Int).Set(m.pool),
			Players: len(m.players),
			State:   m.state,
		}
	}

	requestID, err := m.coordinator.RequestRandomness(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("%w: %w", ErrRandomnessRequest, err)
	}
	if requestID == (common.Hash{}) {
		return common.Hash{}, fmt.Errorf("%w: coordinator returned an empty request id", ErrRandomnessRequest)
	}

	m.state = StateCalculating
	m.pendingRequest = requestID
	m.emit(Notification{Type: NotificationUpkeepPerformed, RequestID: requestID})
	return requestID, nil
}

// FulfillRandomness picks the entry at randomValue mod N, pays it the whole
// pool and opens the next round. If the payment fails nothing changes and
// the round stays CALCULATING; it is not retried.
func (m *Machine) FulfillRandomness(ctx context.Context, requestID common.Hash, randomValue *big.Int) (*Payout, error) {
	if m.state != StateCalculating || requestID == (common.Hash{}) || requestID != m.pendingRequest {
		return nil, ErrUnknownRequest
	}
	if randomValue == nil || randomValue.Sign() < 0 {
		return nil, ErrInvalidRandomness
	}

	n := len(m.players)
	index := int(new(big.Int).Mod(randomValue, big.NewInt(int64(n))).Int64())
	winner := m.players[index]
	prize := new(big.Int).Set(m.pool)

	if err := m.payer.Pay(ctx, PayoutReference(m.round, requestID), winner, prize); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPayoutFailed, err)
	}

	payout := &Payout{
		Round:       m.round,
		RequestID:   requestID,
		RandomValue: new(big.Int).Set(randomValue),
		WinnerIndex: index,
		Winner:      winner,
		Prize:       prize,
		Players:     n,
	}

	m.settle(winner, m.now())
	m.emit(Notification{Type: NotificationWinnerPicked, Winner: winner})
	return payout, nil
}

// ApplyPayout moves a CALCULATING machine past a payout that was already
// made, without paying again. p must be the payout of the current round for
// the pending request. No notification is emitted.
func (m *Machine) ApplyPayout(p *Payout, paidAt time.Time) error {
	if m.state != StateCalculating || p.RequestID != m.pendingRequest || p.Round != m.round {
		return ErrUnknownRequest
	}
	if p.WinnerIndex < 0 || p.WinnerIndex >= len(m.players) || m.players[p.WinnerIndex] != p.Winner {
		return fmt.Errorf("%w: winner %s is not entry %d", ErrCorruptSnapshot, p.Winner.Hex(), p.WinnerIndex)
	}
	m.settle(p.Winner, paidAt)
	return nil
}

// settle closes the current round in favour of winner and opens the next.
func (m *Machine) settle(winner common.Address, at time.Time) {
	m.recentWinner = winner
	m.players = nil
	m.pool = new(big.Int)
	if at.After(m.lastTimestamp) {
		m.lastTimestamp = at
	}
	m.state = StateOpen
	m.pendingRequest = common.Hash{}
	m.round++
}

// Snapshot returns a deep copy of the round state.
func (m *Machine) Snapshot() Snapshot {
	players := make([]common.Address, len(m.players))
	copy(players, m.players)
	return Snapshot{
		State:          m.state,
		Players:        players,
		Pool:           new(big.Int).Set(m.pool),
		LastTimestamp:  m.lastTimestamp,
		PendingRequest: m.pendingRequest,
		RecentWinner:   m.recentWinner,
		Round:          m.round,
	}
}

// Restore replaces the round state with s and discards undrained
// notifications. Snapshots that break the machine invariants are rejected.
func (m *Machine) Restore(s Snapshot) error {
	if err := s.validate(); err != nil {
		return err
	}
	players := make([]common.Address, len(s.Players))
	copy(players, s.Players)

	m.state = s.State
	m.players = players
	m.pool = new(big.Int).Set(s.Pool)
	m.lastTimestamp = s.LastTimestamp
	m.pendingRequest = s.PendingRequest
	m.recentWinner = s.RecentWinner
	m.round = s.Round
	m.outbox = nil
	return nil
}

// State returns whether the machine is accepting entries.
func (m *Machine) State() State { return m.state }

// EntranceFee returns the minimum payment per entry.
func (m *Machine) EntranceFee() *big.Int { return new(big.Int).Set(m.entranceFee) }

// Interval returns the minimum time between rounds.
func (m *Machine) Interval() time.Duration { return m.interval }

// Player returns the entry at index i of the current round.
func (m *Machine) Player(i int) (common.Address, error) {
	if i < 0 || i >= len(m.players) {
		return common.Address{}, ErrPlayerIndexOutOfRange
	}
	return m.players[i], nil
}

// NumberOfPlayers returns the number of entries in the current round.
func (m *Machine) NumberOfPlayers() int { return len(m.players) }

// RecentWinner is the zero address until the first round completes.
func (m *Machine) RecentWinner() common.Address { return m.recentWinner }

// LastTimestamp returns when the current round started.
func (m *Machine) LastTimestamp() time.Time { return m.lastTimestamp }

// Pool returns the prize collected so far.
func (m *Machine) Pool() *big.Int { return new(big.Int).Set(m.pool) }

// PendingRequest is the zero hash while the machine is open.
func (m *Machine) PendingRequest() common.Hash { return m.pendingRequest }

// Round returns the number of the current round.
func (m *Machine) Round() uint64 { return m.round }
