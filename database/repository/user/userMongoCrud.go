package userRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookly/database"
	"bookly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Create inserts a new user document.
func (r *MongoUserRepo) Create(ctx context.Context, user *models.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return database.ErrConflict
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by its unique ID.
func (r *MongoUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user with id %s: %w", id, err)
	}
	return &user, nil
}

// AdjustLoyaltyPoints increments loyaltyPoints, refusing to go negative.
func (r *MongoUserRepo) AdjustLoyaltyPoints(ctx context.Context, id string, delta int64) error {
	return r.adjust(ctx, id, "loyaltyPoints", delta, delta < 0, -delta)
}

// AdjustWallet increments walletBalance, refusing to go negative.
func (r *MongoUserRepo) AdjustWallet(ctx context.Context, id string, delta float64) error {
	return r.adjust(ctx, id, "walletBalance", delta, delta < 0, -delta)
}

func (r *MongoUserRepo) adjust(ctx context.Context, id, field string, delta any, guard bool, need any) error {
	filter := bson.M{"id": id}
	if guard {
		filter[field] = bson.M{"$gte": need}
	}
	update := bson.M{
		"$inc": bson.M{field: delta},
		"$set": bson.M{"updatedAt": time.Now()},
	}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update %s of user %s: %w", field, id, err)
	}
	if result.MatchedCount > 0 {
		return nil
	}
	// Tell a missing user apart from a short balance.
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return database.ErrInsufficientBalance
}
