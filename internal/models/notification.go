package models

import (
	"time"

	"github.com/ArowuTest/raffle-backend/internal/lottery"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// Notification is the stored and broadcast form of a lottery event
type Notification struct {
	ID          string    `bson:"_id" json:"id"`
	Type        string    `bson:"type" json:"type"` // ENTERED, UPKEEP_PERFORMED, WINNER_PICKED
	Participant string    `bson:"participant,omitempty" json:"participant,omitempty"`
	RequestID   string    `bson:"requestId,omitempty" json:"requestId,omitempty"`
	Winner      string    `bson:"winner,omitempty" json:"winner,omitempty"`
	Round       uint64    `bson:"round" json:"round"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}

// NewNotification assigns an id to a machine notification
func NewNotification(n lottery.Notification) *Notification {
	out := &Notification{
		ID:        uuid.NewString(),
		Type:      string(n.Type),
		Round:     n.Round,
		CreatedAt: n.At,
	}
	if n.Participant != (common.Address{}) {
		out.Participant = n.Participant.Hex()
	}
	if n.RequestID != (common.Hash{}) {
		out.RequestID = n.RequestID.Hex()
	}
	if n.Winner != (common.Address{}) {
		out.Winner = n.Winner.Hex()
	}
	return out
}
