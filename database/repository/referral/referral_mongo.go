package referralRepo

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

// MongoReferralRepo implements ReferralRepository using MongoDB.
type MongoReferralRepo struct {
	coll *mongo.Collection
}

// NewMongoReferralRepo creates a new instance of ReferralRepository using MongoDB.
func NewMongoReferralRepo(db *mongo.Database) *MongoReferralRepo {
	repo := &MongoReferralRepo{coll: db.Collection("referrals")}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := repo.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "referredId", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "firstBookingId", Value: 1}}, Options: options.Index().SetSparse(true)},
	}); err != nil {
		fmt.Printf("failed to create referral indexes: %v\n", err)
	}
	return repo
}

func (r *MongoReferralRepo) Create(ctx context.Context, referral *models.Referral) error {
	if referral.CreatedAt.IsZero() {
		referral.CreatedAt = time.Now()
	}
	if _, err := r.coll.InsertOne(ctx, referral); err != nil {
		return fmt.Errorf("failed to create referral: %w", err)
	}
	return nil
}

func (r *MongoReferralRepo) GetByID(ctx context.Context, id string) (*models.Referral, error) {
	ref, err := r.findOne(ctx, bson.M{"id": id})
	if err != nil {
		return nil, err
	}
	if ref == nil {
		return nil, database.ErrNotFound
	}
	return ref, nil
}

func (r *MongoReferralRepo) GetPendingByReferred(ctx context.Context, referredID string) (*models.Referral, error) {
	return r.findOne(ctx, bson.M{"referredId": referredID, "status": models.ReferralPending})
}

func (r *MongoReferralRepo) GetByFirstBooking(ctx context.Context, bookingID string) (*models.Referral, error) {
	return r.findOne(ctx, bson.M{"firstBookingId": bookingID})
}

func (r *MongoReferralRepo) SetFirstBooking(ctx context.Context, id, bookingID string) (bool, error) {
	filter := bson.M{
		"id":     id,
		"status": models.ReferralPending,
		"$or": bson.A{
			bson.M{"firstBookingId": bson.M{"$exists": false}},
			bson.M{"firstBookingId": ""},
		},
	}
	result, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"firstBookingId": bookingID}})
	if err != nil {
		return false, fmt.Errorf("failed to track first booking on referral %s: %w", id, err)
	}
	return result.ModifiedCount > 0, nil
}

func (r *MongoReferralRepo) ClearFirstBooking(ctx context.Context, id, bookingID string) error {
	filter := bson.M{"id": id, "firstBookingId": bookingID, "status": models.ReferralPending}
	if _, err := r.coll.UpdateOne(ctx, filter, bson.M{"$unset": bson.M{"firstBookingId": ""}}); err != nil {
		return fmt.Errorf("failed to release first booking on referral %s: %w", id, err)
	}
	return nil
}

func (r *MongoReferralRepo) Complete(ctx context.Context, id string, bonusPoints int64, at time.Time) error {
	filter := bson.M{"id": id, "status": models.ReferralPending}
	update := bson.M{"$set": bson.M{
		"status":      models.ReferralCompleted,
		"bonusPoints": bonusPoints,
		"completedAt": at,
	}}
	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to complete referral %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return database.ErrConflict
	}
	return nil
}

func (r *MongoReferralRepo) findOne(ctx context.Context, filter bson.M) (*models.Referral, error) {
	var ref models.Referral
	err := r.coll.FindOne(ctx, filter).Decode(&ref)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch referral: %w", err)
	}
	return &ref, nil
}
