package lottery

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// State is the lifecycle state of the lottery. The numeric values match the
// ones exposed by the on-chain raffle (0 = open, 1 = calculating).
type State uint8

const (
	StateOpen State = iota
	StateCalculating
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "OPEN"
	case StateCalculating:
		return "CALCULATING"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Valid reports whether s is a known state.
func (s State) Valid() bool {
	return s == StateOpen || s == StateCalculating
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("lottery: cannot marshal %s", s)
	}
	return []byte(s.String()), nil
}

// UnmarshalText accepts the state name.
func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "OPEN":
		*s = StateOpen
	case "CALCULATING":
		*s = StateCalculating
	default:
		return fmt.Errorf("lottery: unknown state %q", text)
	}
	return nil
}

// UpkeepCheck holds the four conditions of the upkeep predicate.
type UpkeepCheck struct {
	IsOpen     bool `json:"isOpen"`
	TimePassed bool `json:"timePassed"`
	HasBalance bool `json:"hasBalance"`
	HasPlayers bool `json:"hasPlayers"`
}

// Needed reports whether all four conditions hold.
func (c UpkeepCheck) Needed() bool {
	return c.IsOpen && c.TimePassed && c.HasBalance && c.HasPlayers
}

// Snapshot is a deep copy of the mutable lottery fields. It is what gets
// persisted between calls and what Restore re-installs after a failed call.
type Snapshot struct {
	State          State
	Players        []common.Address
	Pool           *big.Int
	LastTimestamp  time.Time
	PendingRequest common.Hash
	RecentWinner   common.Address
	Round          uint64
}

func (s Snapshot) validate() error {
	switch {
	case !s.State.Valid():
		return fmt.Errorf("%w: state %s", ErrCorruptSnapshot, s.State)
	case s.Pool == nil || s.Pool.Sign() < 0:
		return fmt.Errorf("%w: negative or missing pool", ErrCorruptSnapshot)
	case s.State == StateOpen && s.PendingRequest != (common.Hash{}):
		return fmt.Errorf("%w: pending request while open", ErrCorruptSnapshot)
	case s.State == StateCalculating && s.PendingRequest == (common.Hash{}):
		return fmt.Errorf("%w: calculating without a pending request", ErrCorruptSnapshot)
	case s.State == StateCalculating && len(s.Players) == 0:
		return fmt.Errorf("%w: calculating without players", ErrCorruptSnapshot)
	case (len(s.Players) == 0) != (s.Pool.Sign() == 0):
		return fmt.Errorf("%w: players and pool out of sync", ErrCorruptSnapshot)
	case s.Round == 0:
		return fmt.Errorf("%w: round must start at 1", ErrCorruptSnapshot)
	}
	return nil
}

// Payout describes a completed round.
type Payout struct {
	Round       uint64
	RequestID   common.Hash
	RandomValue *big.Int
	WinnerIndex int
	Winner      common.Address
	Prize       *big.Int
	Players     int
}
