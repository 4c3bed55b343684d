package mongodb

import (
	"context"
	"errors"

	"github.com/ArowuTest/raffle-backend/internal/models"
	"github.com/ArowuTest/raffle-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LotteryRepository implements the repositories.LotteryRepository interface.
// The state lives in one document with _id "current".
type LotteryRepository struct {
	collection *mongo.Collection
}

// NewLotteryRepository creates a new LotteryRepository
func NewLotteryRepository(db *mongo.Database) repositories.LotteryRepository {
	return &LotteryRepository{
		collection: db.Collection("lottery"),
	}
}

// Load returns the current snapshot
func (r *LotteryRepository) Load(ctx context.Context) (*models.LotterySnapshot, error) {
	var snapshot models.LotterySnapshot
	err := r.collection.FindOne(ctx, bson.M{"_id": models.CurrentLotteryID}).Decode(&snapshot)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// Save upserts the current snapshot
func (r *LotteryRepository) Save(ctx context.Context, snapshot *models.LotterySnapshot) error {
	snapshot.ID = models.CurrentLotteryID
	_, err := r.collection.ReplaceOne(ctx,
		bson.M{"_id": models.CurrentLotteryID},
		snapshot,
		options.Replace().SetUpsert(true),
	)
	return err
}
