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

// RoundRepository implements the repositories.RoundRepository interface
type RoundRepository struct {
	collection *mongo.Collection
}

// NewRoundRepository creates a new RoundRepository
func NewRoundRepository(db *mongo.Database) repositories.RoundRepository {
	return &RoundRepository{
		collection: db.Collection("rounds"),
	}
}

// Save upserts a round result keyed by round number
func (r *RoundRepository) Save(ctx context.Context, result *models.RoundResult) error {
	_, err := r.collection.ReplaceOne(ctx,
		bson.M{"_id": result.Round},
		result,
		options.Replace().SetUpsert(true),
	)
	return err
}

// FindByRound finds a round result by round number
func (r *RoundRepository) FindByRound(ctx context.Context, round uint64) (*models.RoundResult, error) {
	var result models.RoundResult
	err := r.collection.FindOne(ctx, bson.M{"_id": round}).Decode(&result)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// FindAll lists round results newest first
func (r *RoundRepository) FindAll(ctx context.Context, page models.Page) ([]*models.RoundResult, int64, error) {
	page = page.Normalize()
	total, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSkip(int64(page.Offset)).
		SetLimit(int64(page.Limit)).
		SetSort(bson.M{"_id": -1})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	results := []*models.RoundResult{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, 0, err
	}
	return results, total, nil
}
