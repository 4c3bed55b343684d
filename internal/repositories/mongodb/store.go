package mongodb

import (
	"context"
	"time"

	"github.com/ArowuTest/raffle-backend/internal/repositories"
	mongoclient "github.com/ArowuTest/raffle-backend/pkg/mongodb"
)

// NewStore connects to MongoDB and returns the repositories over database
func NewStore(ctx context.Context, uri, database string) (*repositories.Store, error) {
	client, err := mongoclient.NewClient(ctx, uri, database)
	if err != nil {
		return nil, err
	}
	db := client.Database()
	return &repositories.Store{
		Lottery:       NewLotteryRepository(db),
		Rounds:        NewRoundRepository(db),
		Notifications: NewNotificationRepository(db),
		Blacklist:     NewBlacklistRepository(db),
		Close: func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return client.Disconnect(ctx)
		},
	}, nil
}
