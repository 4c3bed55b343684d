package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/ArowuTest/raffle-backend/internal/lottery"
	"github.com/ArowuTest/raffle-backend/internal/models"
	"github.com/ArowuTest/raffle-backend/internal/repositories"
	"github.com/ArowuTest/raffle-backend/internal/utils"
	"github.com/ethereum/go-ethereum/common"
)

// ErrStorage wraps persistence failures that aborted a lottery call
var ErrStorage = errors.New("storage failure")

// Dispatcher receives the notifications of a committed call
type Dispatcher interface {
	Dispatch(ctx context.Context, events []lottery.Notification)
}

// LotteryService runs the lottery machine one call at a time. Each
// mutating call either commits in memory and in storage, or leaves both as
// they were.
type LotteryService struct {
	mu          sync.Mutex
	machine     *lottery.Machine
	lotteryRepo repositories.LotteryRepository
	roundRepo   repositories.RoundRepository
	dispatcher  Dispatcher
	logger      *slog.Logger
	now         func() time.Time
}

// NewLotteryService creates a new LotteryService
func NewLotteryService(
	machine *lottery.Machine,
	lotteryRepo repositories.LotteryRepository,
	roundRepo repositories.RoundRepository,
	dispatcher Dispatcher,
	logger *slog.Logger,
) *LotteryService {
	return &LotteryService{
		machine:     machine,
		lotteryRepo: lotteryRepo,
		roundRepo:   roundRepo,
		dispatcher:  dispatcher,
		logger:      logger,
		now:         time.Now,
	}
}

// Start restores the persisted lottery, or persists the fresh one when
// storage is empty. A round left CALCULATING resumes waiting for its
// randomness, unless its payout was already recorded; then the round is
// closed from that record without paying again.
func (s *LotteryService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.lotteryRepo.Load(ctx)
	if errors.Is(err, repositories.ErrNotFound) {
		if err := s.persist(ctx); err != nil {
			return fmt.Errorf("%w: %w", ErrStorage, err)
		}
		s.logger.Info("Lottery initialised", "round", s.machine.Round(), "entranceFee", utils.FormatWei(s.machine.EntranceFee()))
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	snapshot, err := doc.ToSnapshot()
	if err != nil {
		return fmt.Errorf("%w: %w", lottery.ErrCorruptSnapshot, err)
	}
	if err := s.machine.Restore(snapshot); err != nil {
		return err
	}
	s.logger.Info("Lottery restored",
		"round", snapshot.Round,
		"state", snapshot.State.String(),
		"players", len(snapshot.Players),
		"pool", utils.FormatWei(snapshot.Pool),
	)
	if snapshot.State == lottery.StateCalculating {
		return s.recoverPaidRound(ctx)
	}
	return nil
}

// recoverPaidRound closes a restored CALCULATING round whose result was
// saved before the lottery state could be.
func (s *LotteryService) recoverPaidRound(ctx context.Context) error {
	result, err := s.roundRepo.FindByRound(ctx, s.machine.Round())
	if errors.Is(err, repositories.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	paid, err := result.ToPayout()
	if err != nil {
		return fmt.Errorf("%w: round %d: %w", lottery.ErrCorruptSnapshot, result.Round, err)
	}
	if paid.RequestID != s.machine.PendingRequest() {
		s.logger.Warn("Recorded round does not match pending request",
			"round", result.Round,
			"recordedRequestId", result.RequestID,
			"pendingRequestId", s.machine.PendingRequest().Hex(),
		)
		return nil
	}
	if err := s.machine.ApplyPayout(paid, result.EndedAt); err != nil {
		return err
	}
	if err := s.persist(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	s.logger.Warn("Closed round that was paid before restart",
		"round", paid.Round,
		"requestId", paid.RequestID.Hex(),
		"winner", utils.MaskAddress(paid.Winner),
		"prize", utils.FormatWei(paid.Prize),
	)
	return nil
}

// Enter records a paid entry for caller
func (s *LotteryService) Enter(ctx context.Context, caller common.Address, payment *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.commit(ctx, func() error {
		return s.machine.Enter(caller, payment)
	})
	if err != nil {
		return err
	}
	s.logger.Info("Entry recorded",
		"player", utils.MaskAddress(caller),
		"payment", utils.FormatWei(payment),
		"players", s.machine.NumberOfPlayers(),
		"round", s.machine.Round(),
	)
	return nil
}

// CheckUpkeep evaluates the upkeep predicate
func (s *LotteryService) CheckUpkeep() lottery.UpkeepCheck {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.CheckUpkeepDetail()
}

// PerformUpkeep closes entry and requests randomness
func (s *LotteryService) PerformUpkeep(ctx context.Context) (common.Hash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var requestID common.Hash
	err := s.commit(ctx, func() error {
		var err error
		requestID, err = s.machine.PerformUpkeep(ctx)
		return err
	})
	if err != nil {
		return common.Hash{}, err
	}
	s.logger.Info("Upkeep performed", "requestId", requestID.Hex(), "round", s.machine.Round(), "players", s.machine.NumberOfPlayers())
	return requestID, nil
}

// FulfillRandomness pays the winner chosen by randomValue. Once the payout
// has gone through the round is final: a storage failure afterwards is
// logged instead of rolled back. The round result is saved first, so Start
// can close the round from it if the lottery state was not saved.
func (s *LotteryService) FulfillRandomness(ctx context.Context, requestID common.Hash, randomValue *big.Int) (*lottery.Payout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	startedAt := s.machine.LastTimestamp()
	payout, err := s.machine.FulfillRandomness(ctx, requestID, randomValue)
	if err != nil {
		if errors.Is(err, lottery.ErrPayoutFailed) {
			s.logger.Error("Payout failed, round stays calculating", "error", err, "requestId", requestID.Hex(), "round", s.machine.Round())
		}
		return nil, err
	}

	if err := s.roundRepo.Save(ctx, models.NewRoundResult(payout, startedAt, s.machine.LastTimestamp())); err != nil {
		s.logger.Error("Failed to record round result", "error", err, "round", payout.Round)
	}
	if err := s.persist(ctx); err != nil {
		s.logger.Error("CRITICAL: payout sent but lottery state not persisted",
			"error", err,
			"round", payout.Round,
			"requestId", payout.RequestID.Hex(),
			"winner", payout.Winner.Hex(),
			"prize", payout.Prize.String(),
		)
	}
	s.dispatcher.Dispatch(ctx, s.machine.DrainNotifications())

	s.logger.Info("Winner picked",
		"round", payout.Round,
		"winner", utils.MaskAddress(payout.Winner),
		"winnerIndex", payout.WinnerIndex,
		"players", payout.Players,
		"prize", utils.FormatWei(payout.Prize),
	)
	return payout, nil
}

// FulfillRandomWords implements vrf.Consumer. Only the first word is used.
func (s *LotteryService) FulfillRandomWords(ctx context.Context, requestID common.Hash, words []*big.Int) error {
	if len(words) == 0 {
		return fmt.Errorf("%w: no random words", lottery.ErrInvalidRandomness)
	}
	_, err := s.FulfillRandomness(ctx, requestID, words[0])
	return err
}

// Status returns every read accessor in one consistent view
func (s *LotteryService) Status() *models.LotteryStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.machine
	status := &models.LotteryStatus{
		State:           m.State().String(),
		StateCode:       uint8(m.State()),
		EntranceFeeWei:  m.EntranceFee().String(),
		IntervalSeconds: int64(m.Interval() / time.Second),
		NumberOfPlayers: m.NumberOfPlayers(),
		PoolWei:         m.Pool().String(),
		LastTimestamp:   m.LastTimestamp(),
		Round:           m.Round(),
		UpkeepNeeded:    m.CheckUpkeep(),
	}
	if id := m.PendingRequest(); id != (common.Hash{}) {
		status.PendingRequest = id.Hex()
	}
	if w := m.RecentWinner(); w != (common.Address{}) {
		status.RecentWinner = w.Hex()
	}
	return status
}

// PendingRequest returns the outstanding randomness request, or the zero
// hash while the lottery is open
func (s *LotteryService) PendingRequest() common.Hash {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.PendingRequest()
}

// Player returns the entry at index i of the current round
func (s *LotteryService) Player(i int) (common.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Player(i)
}

// Round returns a completed round
func (s *LotteryService) Round(ctx context.Context, round uint64) (*models.RoundResult, error) {
	return s.roundRepo.FindByRound(ctx, round)
}

// Rounds lists completed rounds newest first
func (s *LotteryService) Rounds(ctx context.Context, page models.Page) ([]*models.RoundResult, int64, error) {
	return s.roundRepo.FindAll(ctx, page)
}

// commit runs fn against the machine and persists the result. When saving
// fails the machine is put back to where it was before fn.
func (s *LotteryService) commit(ctx context.Context, fn func() error) error {
	before := s.machine.Snapshot()
	if err := fn(); err != nil {
		return err
	}
	if err := s.persist(ctx); err != nil {
		if rerr := s.machine.Restore(before); rerr != nil {
			s.logger.Error("Failed to roll back lottery state", "error", rerr)
		}
		s.logger.Error("Failed to persist lottery state", "error", err)
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	s.dispatcher.Dispatch(ctx, s.machine.DrainNotifications())
	return nil
}

func (s *LotteryService) persist(ctx context.Context) error {
	return s.lotteryRepo.Save(ctx, models.NewLotterySnapshot(s.machine.Snapshot(), s.now()))
}
