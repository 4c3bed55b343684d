package models

import (
	"time"
)

// BlacklistEntry represents an address that cannot receive payouts
type BlacklistEntry struct {
	Address   string    `bson:"_id" json:"address"`
	Reason    string    `bson:"reason,omitempty" json:"reason,omitempty"`
	CreatedBy string    `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
