package lottery

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// NotificationType names the observable events of the lottery.
type NotificationType string

const (
	NotificationEntered         NotificationType = "ENTERED"
	NotificationUpkeepPerformed NotificationType = "UPKEEP_PERFORMED"
	NotificationWinnerPicked    NotificationType = "WINNER_PICKED"
)

// Notification is an append-only event emitted by a successful transition.
// Only the field matching Type is set.
type Notification struct {
	Type        NotificationType
	Participant common.Address
	RequestID   common.Hash
	Winner      common.Address
	Round       uint64
	At          time.Time
}

func (m *Machine) emit(n Notification) {
	n.Round = m.round
	n.At = m.now()
	m.outbox = append(m.outbox, n)
}

// DrainNotifications returns the notifications emitted since the last drain
// and empties the outbox. The host calls it once a call has committed.
func (m *Machine) DrainNotifications() []Notification {
	out := m.outbox
	m.outbox = nil
	return out
}
