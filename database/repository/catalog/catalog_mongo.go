package catalogRepo

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

// MongoCatalogRepo implements CatalogRepository using MongoDB.
type MongoCatalogRepo struct {
	services    *mongo.Collection
	specialists *mongo.Collection
}

// NewMongoCatalogRepo creates a new instance of CatalogRepository using MongoDB.
func NewMongoCatalogRepo(db *mongo.Database) *MongoCatalogRepo {
	repo := &MongoCatalogRepo{
		services:    db.Collection("services"),
		specialists: db.Collection("specialists"),
	}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create catalog indexes: %v\n", err)
	}
	return repo
}

func (r *MongoCatalogRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := r.services.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "specialistId", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("failed to create service indexes: %w", err)
	}
	if _, err := r.specialists.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
	}); err != nil {
		return fmt.Errorf("failed to create specialist indexes: %w", err)
	}
	return nil
}

func (r *MongoCatalogRepo) CreateService(ctx context.Context, service *models.Service) error {
	now := time.Now()
	service.CreatedAt, service.UpdatedAt = now, now
	if _, err := r.services.InsertOne(ctx, service); err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	return nil
}

func (r *MongoCatalogRepo) GetService(ctx context.Context, id string) (*models.Service, error) {
	var service models.Service
	if err := findOne(ctx, r.services, bson.M{"id": id}, &service); err != nil {
		return nil, fmt.Errorf("failed to fetch service with id %s: %w", id, err)
	}
	return &service, nil
}

func (r *MongoCatalogRepo) CreateSpecialist(ctx context.Context, specialist *models.Specialist) error {
	now := time.Now()
	specialist.CreatedAt, specialist.UpdatedAt = now, now
	if _, err := r.specialists.InsertOne(ctx, specialist); err != nil {
		return fmt.Errorf("failed to create specialist: %w", err)
	}
	return nil
}

func (r *MongoCatalogRepo) GetSpecialist(ctx context.Context, id string) (*models.Specialist, error) {
	var specialist models.Specialist
	if err := findOne(ctx, r.specialists, bson.M{"id": id}, &specialist); err != nil {
		return nil, fmt.Errorf("failed to fetch specialist with id %s: %w", id, err)
	}
	return &specialist, nil
}

func (r *MongoCatalogRepo) GetSpecialistByUserID(ctx context.Context, userID string) (*models.Specialist, error) {
	var specialist models.Specialist
	if err := findOne(ctx, r.specialists, bson.M{"userId": userID}, &specialist); err != nil {
		return nil, fmt.Errorf("failed to fetch specialist for user %s: %w", userID, err)
	}
	return &specialist, nil
}

func (r *MongoCatalogRepo) IncrementCompletedBookings(ctx context.Context, specialistID string) error {
	update := bson.M{
		"$inc": bson.M{"completedBookings": 1},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	result, err := r.specialists.UpdateOne(ctx, bson.M{"id": specialistID}, update)
	if err != nil {
		return fmt.Errorf("failed to update specialist with id %s: %w", specialistID, err)
	}
	if result.MatchedCount == 0 {
		return database.ErrNotFound
	}
	return nil
}

func findOne(ctx context.Context, coll *mongo.Collection, filter bson.M, out any) error {
	err := coll.FindOne(ctx, filter).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return database.ErrNotFound
	}
	return err
}
