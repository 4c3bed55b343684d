package vrf

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// MockCoordinator is an in-process coordinator for development networks.
// Request ids are sequential starting at 1. Random words are derived
// deterministically as keccak256(requestId ‖ i), both left-padded to 32
// bytes.
type MockCoordinator struct {
	mu       sync.Mutex
	cfg      Config
	lastID   uint64
	pending  map[common.Hash]uint32
	consumer Consumer

	autoFulfill time.Duration
	logger      *slog.Logger
	wg          sync.WaitGroup
}

// MockOption customises a MockCoordinator.
type MockOption func(*MockCoordinator)

// WithAutoFulfill makes the coordinator answer every request by itself
// after delay.
func WithAutoFulfill(delay time.Duration) MockOption {
	return func(c *MockCoordinator) {
		c.autoFulfill = delay
	}
}

// WithLogger sets the logger used for auto-fulfilment failures.
func WithLogger(logger *slog.Logger) MockOption {
	return func(c *MockCoordinator) {
		c.logger = logger
	}
}

// NewMockCoordinator creates a new mock coordinator
func NewMockCoordinator(cfg Config, opts ...MockOption) *MockCoordinator {
	c := &MockCoordinator{
		cfg:     cfg,
		pending: make(map[common.Hash]uint32),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetConsumer registers the contract that receives the random words.
func (c *MockCoordinator) SetConsumer(consumer Consumer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.consumer = consumer
}

// RequestRandomness records a new request and returns its id.
func (c *MockCoordinator) RequestRandomness(ctx context.Context) (common.Hash, error) {
	if err := ctx.Err(); err != nil {
		return common.Hash{}, err
	}

	c.mu.Lock()
	c.lastID++
	id := RequestIDFromUint64(c.lastID)
	c.pending[id] = c.cfg.numWords()
	c.mu.Unlock()

	c.scheduleFulfil(id)
	return id, nil
}

// Observe records an id issued by an earlier coordinator so that new ids
// continue after it. Ids that are not sequential are ignored.
func (c *MockCoordinator) Observe(id common.Hash) {
	n := new(big.Int).SetBytes(id.Bytes())
	if !n.IsUint64() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if n.Uint64() > c.lastID {
		c.lastID = n.Uint64()
	}
}

// Resume takes over a request that was still outstanding when an earlier
// coordinator stopped. It is fulfilled like a request of this coordinator.
func (c *MockCoordinator) Resume(id common.Hash) {
	if id == (common.Hash{}) {
		return
	}
	c.Observe(id)
	c.mu.Lock()
	if _, ok := c.pending[id]; ok {
		c.mu.Unlock()
		return
	}
	c.pending[id] = c.cfg.numWords()
	c.mu.Unlock()

	c.scheduleFulfil(id)
}

func (c *MockCoordinator) scheduleFulfil(id common.Hash) {
	c.mu.Lock()
	auto := c.autoFulfill > 0 && c.consumer != nil
	c.mu.Unlock()
	if !auto {
		return
	}

	c.wg.Add(1)
	time.AfterFunc(c.autoFulfill, func() {
		defer c.wg.Done()
		if err := c.Fulfill(context.Background(), id); err != nil {
			c.logger.Error("Auto fulfilment failed", "requestId", id.Hex(), "error", err)
		}
	})
}

// Fulfill delivers the derived words for id to the registered consumer.
func (c *MockCoordinator) Fulfill(ctx context.Context, id common.Hash) error {
	c.mu.Lock()
	n, ok := c.pending[id]
	c.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNonexistentRequest, id.Hex())
	}

	words := make([]*big.Int, n)
	for i := range words {
		words[i] = DeriveWord(id, uint64(i))
	}
	return c.FulfillWithWords(ctx, id, words)
}

// FulfillWithWords delivers caller-chosen words for id. The request is
// consumed whether or not the consumer accepts the words.
func (c *MockCoordinator) FulfillWithWords(ctx context.Context, id common.Hash, words []*big.Int) error {
	c.mu.Lock()
	_, ok := c.pending[id]
	delete(c.pending, id)
	consumer := c.consumer
	c.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNonexistentRequest, id.Hex())
	}
	if consumer == nil {
		return ErrNoConsumer
	}
	return consumer.FulfillRandomWords(ctx, id, words)
}

// Pending reports whether id is still waiting for fulfilment.
func (c *MockCoordinator) Pending(id common.Hash) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pending[id]
	return ok
}

// Wait blocks until scheduled auto-fulfilments have run.
func (c *MockCoordinator) Wait() {
	c.wg.Wait()
}

// DeriveWord returns keccak256(id ‖ uint256(i)).
func DeriveWord(id common.Hash, i uint64) *big.Int {
	h := sha3.NewLegacyKeccak256()
	h.Write(id.Bytes())
	h.Write(common.BigToHash(new(big.Int).SetUint64(i)).Bytes())
	return new(big.Int).SetBytes(h.Sum(nil))
}
