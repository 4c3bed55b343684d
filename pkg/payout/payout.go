// Package payout moves the prize pool to the round winner.
package payout

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrRecipientRejected = errors.New("payout: recipient rejected the transfer")
	ErrTransferFailed    = errors.New("payout: transfer failed")
	ErrInvalidAmount     = errors.New("payout: invalid amount")
	ErrMissingReference  = errors.New("payout: missing reference")
	ErrReferenceReused   = errors.New("payout: reference already used for another transfer")
)

// Rejecter reports recipients that cannot receive funds.
type Rejecter interface {
	IsBlacklisted(ctx context.Context, address common.Address) (bool, error)
}
