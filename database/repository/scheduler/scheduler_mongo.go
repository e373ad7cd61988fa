package schedulerRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSchedulerRepo implements BookingRepository and SlotLocker using MongoDB.
type MongoSchedulerRepo struct {
	bookingColl *mongo.Collection
	lockColl    *mongo.Collection
	lockTTL     time.Duration
}

// NewMongoSchedulerRepo constructs a new instance of MongoSchedulerRepo.
func NewMongoSchedulerRepo(db *mongo.Database) *MongoSchedulerRepo {
	repo := &MongoSchedulerRepo{
		bookingColl: db.Collection("bookings"),
		lockColl:    db.Collection("slot_locks"),
		lockTTL:     24 * time.Hour,
	}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create scheduler indexes: %v\n", err)
	}
	return repo
}

func (repo *MongoSchedulerRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	bookingIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "specialistId", Value: 1}, {Key: "status", Value: 1}, {Key: "scheduledAt", Value: 1}}},
		{Keys: bson.D{{Key: "customerId", Value: 1}, {Key: "scheduledAt", Value: -1}}},
		{Keys: bson.D{{Key: "customerId", Value: 1}, {Key: "serviceId", Value: 1}, {Key: "scheduledAt", Value: 1}}},
	}
	if _, err := repo.bookingColl.Indexes().CreateMany(ctx, bookingIndexes); err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}

	lockIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "lockedAt", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(int32(repo.lockTTL.Seconds())),
	}
	if _, err := repo.lockColl.Indexes().CreateOne(ctx, lockIndex); err != nil {
		return fmt.Errorf("failed to create slot lock TTL index: %w", err)
	}
	return nil
}
