package rewardRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookly/database"
	"bookly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRewardRepo implements RewardRepository using MongoDB.
type MongoRewardRepo struct {
	rewards     *mongo.Collection
	redemptions *mongo.Collection
}

// NewMongoRewardRepo creates a new instance of RewardRepository using MongoDB.
func NewMongoRewardRepo(db *mongo.Database) *MongoRewardRepo {
	repo := &MongoRewardRepo{
		rewards:     db.Collection("rewards"),
		redemptions: db.Collection("reward_redemptions"),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := repo.rewards.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true),
	}); err != nil {
		fmt.Printf("failed to create reward indexes: %v\n", err)
	}
	if _, err := repo.redemptions.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "customerId", Value: 1}, {Key: "status", Value: 1}}},
	}); err != nil {
		fmt.Printf("failed to create redemption indexes: %v\n", err)
	}
	return repo
}

func (r *MongoRewardRepo) CreateReward(ctx context.Context, reward *models.Reward) error {
	if reward.CreatedAt.IsZero() {
		reward.CreatedAt = time.Now()
	}
	if _, err := r.rewards.InsertOne(ctx, reward); err != nil {
		return fmt.Errorf("failed to create reward: %w", err)
	}
	return nil
}

func (r *MongoRewardRepo) GetReward(ctx context.Context, id string) (*models.Reward, error) {
	var reward models.Reward
	err := r.rewards.FindOne(ctx, bson.M{"id": id}).Decode(&reward)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reward %s: %w", id, err)
	}
	return &reward, nil
}

func (r *MongoRewardRepo) CreateRedemption(ctx context.Context, redemption *models.RewardRedemption) error {
	if redemption.CreatedAt.IsZero() {
		redemption.CreatedAt = time.Now()
	}
	if _, err := r.redemptions.InsertOne(ctx, redemption); err != nil {
		return fmt.Errorf("failed to create redemption: %w", err)
	}
	return nil
}

func (r *MongoRewardRepo) GetRedemption(ctx context.Context, id string) (*models.RewardRedemption, error) {
	var redemption models.RewardRedemption
	err := r.redemptions.FindOne(ctx, bson.M{"id": id}).Decode(&redemption)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch redemption %s: %w", id, err)
	}
	return &redemption, nil
}

func (r *MongoRewardRepo) ListApproved(ctx context.Context, customerID string) ([]models.RewardRedemption, error) {
	filter := bson.M{"customerId": customerID, "status": models.RedemptionApproved}
	cursor, err := r.redemptions.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list redemptions: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.RewardRedemption
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode redemptions: %w", err)
	}
	return out, nil
}

func (r *MongoRewardRepo) Consume(ctx context.Context, id, bookingID string, discount float64, at time.Time) error {
	filter := bson.M{"id": id, "status": models.RedemptionApproved}
	update := bson.M{"$set": bson.M{
		"status":          models.RedemptionUsed,
		"bookingId":       bookingID,
		"discountApplied": discount,
		"usedAt":          at,
	}}
	result, err := r.redemptions.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to consume redemption %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return database.ErrConflict
	}
	return nil
}
