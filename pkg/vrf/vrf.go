// Package vrf talks to the randomness oracle. A coordinator hands out
// request ids and later delivers the random words for an id to a Consumer.
package vrf

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrNonexistentRequest = errors.New("vrf: nonexistent request")
	ErrNoConsumer         = errors.New("vrf: no consumer registered")
	ErrBadResponse        = errors.New("vrf: bad oracle response")
)

// Config carries the oracle request parameters. They are forwarded with
// every request and never interpreted locally.
type Config struct {
	KeyHash              common.Hash
	CallbackGasLimit     uint32
	RequestConfirmations uint16
	NumWords             uint32
}

func (c Config) numWords() uint32 {
	if c.NumWords == 0 {
		return 1
	}
	return c.NumWords
}

// Consumer receives random words for a request id.
type Consumer interface {
	FulfillRandomWords(ctx context.Context, requestID common.Hash, words []*big.Int) error
}

// RequestIDFromUint64 encodes a sequential id as a 32-byte request id.
func RequestIDFromUint64(n uint64) common.Hash {
	return common.BigToHash(new(big.Int).SetUint64(n))
}
