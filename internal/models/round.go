package models

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ArowuTest/raffle-backend/internal/lottery"
	"github.com/ethereum/go-ethereum/common"
)

// RoundResult records a completed round
type RoundResult struct {
	Round       uint64    `bson:"_id" json:"round"`
	RequestID   string    `bson:"requestId" json:"requestId"`
	RandomValue string    `bson:"randomValue" json:"randomValue"` // decimal uint256
	WinnerIndex int       `bson:"winnerIndex" json:"winnerIndex"`
	Winner      string    `bson:"winner" json:"winner"`
	PrizeWei    string    `bson:"prizeWei" json:"prizeWei"`
	Players     int       `bson:"players" json:"players"`
	StartedAt   time.Time `bson:"startedAt" json:"startedAt"`
	EndedAt     time.Time `bson:"endedAt" json:"endedAt"`
}

// NewRoundResult builds the record of a payout. startedAt is the last
// timestamp the round was measured from.
func NewRoundResult(p *lottery.Payout, startedAt, endedAt time.Time) *RoundResult {
	return &RoundResult{
		Round:       p.Round,
		RequestID:   p.RequestID.Hex(),
		RandomValue: p.RandomValue.String(),
		WinnerIndex: p.WinnerIndex,
		Winner:      p.Winner.Hex(),
		PrizeWei:    p.Prize.String(),
		Players:     p.Players,
		StartedAt:   startedAt,
		EndedAt:     endedAt,
	}
}

// ToPayout converts the record back into the payout it describes
func (r *RoundResult) ToPayout() (*lottery.Payout, error) {
	if !common.IsHexAddress(r.Winner) {
		return nil, fmt.Errorf("invalid winner %q", r.Winner)
	}
	prize, ok := new(big.Int).SetString(r.PrizeWei, 10)
	if !ok {
		return nil, fmt.Errorf("invalid prize %q", r.PrizeWei)
	}
	randomValue, ok := new(big.Int).SetString(r.RandomValue, 10)
	if !ok {
		return nil, fmt.Errorf("invalid random value %q", r.RandomValue)
	}
	return &lottery.Payout{
		Round:       r.Round,
		RequestID:   common.HexToHash(r.RequestID),
		RandomValue: randomValue,
		WinnerIndex: r.WinnerIndex,
		Winner:      common.HexToAddress(r.Winner),
		Prize:       prize,
		Players:     r.Players,
	}, nil
}
