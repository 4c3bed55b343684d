package payout

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// LedgerGateway keeps balances in memory. It stands in for the chain on
// development setups and in tests.
type LedgerGateway struct {
	mu       sync.RWMutex
	balances map[common.Address]*big.Int
	paid     *big.Int
	settled  map[string]transfer
	rejecter Rejecter
}

type transfer struct {
	to     common.Address
	amount *big.Int
}

// NewLedgerGateway creates a new ledger gateway. rejecter may be nil.
func NewLedgerGateway(rejecter Rejecter) *LedgerGateway {
	return &LedgerGateway{
		balances: make(map[common.Address]*big.Int),
		paid:     new(big.Int),
		settled:  make(map[string]transfer),
		rejecter: rejecter,
	}
}

// Pay credits amount to to. A reference that was already paid is not
// credited again.
func (g *LedgerGateway) Pay(ctx context.Context, reference string, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if reference == "" {
		return ErrMissingReference
	}
	if done, err := g.settledAs(reference, to, amount); done || err != nil {
		return err
	}
	if g.rejecter != nil {
		blocked, err := g.rejecter.IsBlacklisted(ctx, to)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrTransferFailed, err)
		}
		if blocked {
			return fmt.Errorf("%w: %s", ErrRecipientRejected, to.Hex())
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.settled[reference]; ok {
		return nil
	}
	g.settled[reference] = transfer{to: to, amount: new(big.Int).Set(amount)}
	balance, ok := g.balances[to]
	if !ok {
		balance = new(big.Int)
		g.balances[to] = balance
	}
	balance.Add(balance, amount)
	g.paid.Add(g.paid, amount)
	return nil
}

// settledAs reports whether reference was already paid. Reusing a
// reference for a different transfer is an error.
func (g *LedgerGateway) settledAs(reference string, to common.Address, amount *big.Int) (bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	t, ok := g.settled[reference]
	if !ok {
		return false, nil
	}
	if t.to != to || t.amount.Cmp(amount) != 0 {
		return false, fmt.Errorf("%w: %s", ErrReferenceReused, reference)
	}
	return true, nil
}

// Balance returns the credited balance of address.
func (g *LedgerGateway) Balance(address common.Address) *big.Int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if b, ok := g.balances[address]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

// TotalPaid returns the sum of all payouts.
func (g *LedgerGateway) TotalPaid() *big.Int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return new(big.Int).Set(g.paid)
}
