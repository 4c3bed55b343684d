package services

import (
	"context"
	"log/slog"

	"github.com/ArowuTest/raffle-backend/internal/lottery"
	"github.com/ArowuTest/raffle-backend/internal/models"
	"github.com/ArowuTest/raffle-backend/internal/repositories"
	"github.com/ArowuTest/raffle-backend/pkg/broadcast"
)

// Publisher forwards notifications to an external channel
type Publisher interface {
	Publish(ctx context.Context, v any) error
}

// NotificationService stores lottery notifications and fans them out to
// stream subscribers and publishers. Delivery problems are logged and never
// reach the lottery call that produced the notification.
type NotificationService struct {
	repo        repositories.NotificationRepository
	broadcaster *broadcast.MemoryBroadcaster[*models.Notification]
	publishers  []Publisher
	logger      *slog.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(repo repositories.NotificationRepository, logger *slog.Logger, publishers ...Publisher) *NotificationService {
	return &NotificationService{
		repo:        repo,
		broadcaster: broadcast.NewMemoryBroadcaster[*models.Notification](64),
		publishers:  publishers,
		logger:      logger,
	}
}

// Dispatch delivers committed machine notifications in order.
func (s *NotificationService) Dispatch(ctx context.Context, events []lottery.Notification) {
	for _, event := range events {
		n := models.NewNotification(event)
		if err := s.repo.Create(ctx, n); err != nil {
			s.logger.Error("Failed to store notification", "error", err, "notificationId", n.ID, "type", n.Type)
		}
		s.broadcaster.Broadcast(n)
		for _, p := range s.publishers {
			if err := p.Publish(ctx, n); err != nil {
				s.logger.Warn("Failed to publish notification", "error", err, "notificationId", n.ID, "type", n.Type)
			}
		}
		s.logger.Debug("Notification dispatched", "notificationId", n.ID, "type", n.Type, "round", n.Round)
	}
}

// List returns stored notifications newest first
func (s *NotificationService) List(ctx context.Context, page models.Page) ([]*models.Notification, int64, error) {
	return s.repo.FindAll(ctx, page)
}

// Subscribe streams notifications dispatched after the call until ctx ends
func (s *NotificationService) Subscribe(ctx context.Context) <-chan *models.Notification {
	return s.broadcaster.Subscribe(ctx)
}

// Subscribers returns the number of open subscriptions
func (s *NotificationService) Subscribers() int {
	return s.broadcaster.Subscribers()
}

// Close ends every open subscription
func (s *NotificationService) Close() {
	s.broadcaster.Close()
}
