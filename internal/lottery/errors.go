package lottery

import (
	"errors"
	"fmt"
	"math/big"
)

var (
	ErrInvalidConfig         = errors.New("lottery: invalid configuration")
	ErrInvalidParticipant    = errors.New("lottery: invalid participant address")
	ErrInsufficientPayment   = errors.New("lottery: payment below entrance fee")
	ErrNotOpen               = errors.New("lottery: not open")
	ErrUpkeepNotNeeded       = errors.New("lottery: upkeep not needed")
	ErrRandomnessRequest     = errors.New("lottery: randomness request failed")
	ErrUnknownRequest        = errors.New("lottery: unknown or stale request")
	ErrInvalidRandomness     = errors.New("lottery: invalid random value")
	ErrPayoutFailed          = errors.New("lottery: payout failed")
	ErrPlayerIndexOutOfRange = errors.New("lottery: player index out of range")
	ErrCorruptSnapshot       = errors.New("lottery: corrupt snapshot")
)

// UpkeepNotNeededError is returned by PerformUpkeep when the upkeep
// predicate is false. It carries the values that were evaluated.
type UpkeepNotNeededError struct {
	Pool    *big.Int
	Players int
	State   State
}

func (e *UpkeepNotNeededError) Error() string {
	return fmt.Sprintf("lottery: upkeep not needed (pool=%s players=%d state=%s)", e.Pool, e.Players, e.State)
}

// Is makes errors.Is(err, ErrUpkeepNotNeeded) hold.
func (e *UpkeepNotNeededError) Is(target error) bool {
	return target == ErrUpkeepNotNeeded
}
