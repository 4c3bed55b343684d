package models

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ArowuTest/raffle-backend/internal/lottery"
	"github.com/ethereum/go-ethereum/common"
)

// CurrentLotteryID is the id of the single persisted lottery document
const CurrentLotteryID = "current"

// LotterySnapshot is the persisted form of the lottery state. Amounts are
// decimal wei strings and addresses are hex so the document reads the same
// in MongoDB and in the bolt JSON buckets.
type LotterySnapshot struct {
	ID             string    `bson:"_id" json:"id"`
	State          string    `bson:"state" json:"state"`
	Players        []string  `bson:"players" json:"players"`
	PoolWei        string    `bson:"poolWei" json:"poolWei"`
	LastTimestamp  time.Time `bson:"lastTimestamp" json:"lastTimestamp"`
	PendingRequest string    `bson:"pendingRequest,omitempty" json:"pendingRequest,omitempty"`
	RecentWinner   string    `bson:"recentWinner,omitempty" json:"recentWinner,omitempty"`
	Round          uint64    `bson:"round" json:"round"`
	UpdatedAt      time.Time `bson:"updatedAt" json:"updatedAt"`
}

// NewLotterySnapshot converts machine state into its persisted form
func NewLotterySnapshot(s lottery.Snapshot, updatedAt time.Time) *LotterySnapshot {
	players := make([]string, len(s.Players))
	for i, p := range s.Players {
		players[i] = p.Hex()
	}
	doc := &LotterySnapshot{
		ID:            CurrentLotteryID,
		State:         s.State.String(),
		Players:       players,
		PoolWei:       s.Pool.String(),
		LastTimestamp: s.LastTimestamp,
		Round:         s.Round,
		UpdatedAt:     updatedAt,
	}
	if s.PendingRequest != (common.Hash{}) {
		doc.PendingRequest = s.PendingRequest.Hex()
	}
	if s.RecentWinner != (common.Address{}) {
		doc.RecentWinner = s.RecentWinner.Hex()
	}
	return doc
}

// ToSnapshot converts the persisted form back into machine state. The
// result is validated again by lottery.Machine.Restore.
func (d *LotterySnapshot) ToSnapshot() (lottery.Snapshot, error) {
	var s lottery.Snapshot
	if err := s.State.UnmarshalText([]byte(d.State)); err != nil {
		return s, err
	}
	pool, ok := new(big.Int).SetString(d.PoolWei, 10)
	if !ok {
		return s, fmt.Errorf("invalid pool %q", d.PoolWei)
	}
	players := make([]common.Address, len(d.Players))
	for i, p := range d.Players {
		if !common.IsHexAddress(p) {
			return s, fmt.Errorf("invalid player address %q", p)
		}
		players[i] = common.HexToAddress(p)
	}
	if d.RecentWinner != "" {
		if !common.IsHexAddress(d.RecentWinner) {
			return s, fmt.Errorf("invalid recent winner %q", d.RecentWinner)
		}
		s.RecentWinner = common.HexToAddress(d.RecentWinner)
	}
	if d.PendingRequest != "" {
		s.PendingRequest = common.HexToHash(d.PendingRequest)
	}
	s.Players = players
	s.Pool = pool
	s.LastTimestamp = d.LastTimestamp
	s.Round = d.Round
	return s, nil
}

// LotteryStatus is the read model served by GET /lottery
type LotteryStatus struct {
	State           string    `json:"state"`
	StateCode       uint8     `json:"stateCode"`
	EntranceFeeWei  string    `json:"entranceFeeWei"`
	IntervalSeconds int64     `json:"intervalSeconds"`
	NumberOfPlayers int       `json:"numberOfPlayers"`
	PoolWei         string    `json:"poolWei"`
	LastTimestamp   time.Time `json:"lastTimestamp"`
	PendingRequest  string    `json:"pendingRequest,omitempty"`
	RecentWinner    string    `json:"recentWinner,omitempty"`
	Round           uint64    `json:"round"`
	UpkeepNeeded    bool      `json:"upkeepNeeded"`
}
