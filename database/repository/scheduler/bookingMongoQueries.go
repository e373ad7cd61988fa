package schedulerRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FindDuplicate looks up a non-cancelled booking for the same customer, service and instant.
func (repo *MongoSchedulerRepo) FindDuplicate(ctx context.Context, customerID, serviceID string, at time.Time) (*models.Booking, error) {
	filter := bson.M{
		"customerId":  customerID,
		"serviceId":   serviceID,
		"scheduledAt": at,
		"status":      bson.M{"$ne": models.StatusCancelled},
	}
	var booking models.Booking
	err := repo.bookingColl.FindOne(ctx, filter).Decode(&booking)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("duplicate lookup failed: %w", err)
	}
	return &booking, nil
}

// FindLiveInWindow returns live bookings of a specialist starting strictly inside (from, to).
func (repo *MongoSchedulerRepo) FindLiveInWindow(ctx context.Context, specialistID string, from, to time.Time) ([]models.Booking, error) {
	filter := bson.M{
		"specialistId": specialistID,
		"status":       bson.M{"$in": models.LiveStatuses},
		"scheduledAt":  bson.M{"$gt": from, "$lt": to},
	}
	cursor, err := repo.bookingColl.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error fetching live bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding live bookings: %w", err)
	}
	return bookings, nil
}

// EarliestLiveForCustomer picks the next live booking a referral can track.
func (repo *MongoSchedulerRepo) EarliestLiveForCustomer(ctx context.Context, customerID, excludeID string) (*models.Booking, error) {
	filter := bson.M{
		"customerId": customerID,
		"id":         bson.M{"$ne": excludeID},
		"status":     bson.M{"$in": models.LiveStatuses},
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "scheduledAt", Value: 1}, {Key: "id", Value: 1}})
	var booking models.Booking
	err := repo.bookingColl.FindOne(ctx, filter, opts).Decode(&booking)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching earliest live booking: %w", err)
	}
	return &booking, nil
}

// List returns a page of bookings for a customer or a specialist.
func (repo *MongoSchedulerRepo) List(ctx context.Context, q models.BookingQuery) ([]models.Booking, int64, error) {
	filter := bson.M{}
	if q.CustomerID != "" {
		filter["customerId"] = q.CustomerID
	}
	if q.SpecialistID != "" {
		filter["specialistId"] = q.SpecialistID
	}
	if q.Status != "" {
		filter["status"] = q.Status
	}

	total, err := repo.bookingColl.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting bookings: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "scheduledAt", Value: -1}}).
		SetSkip(int64((q.Page - 1) * q.Limit)).
		SetLimit(int64(q.Limit))
	cursor, err := repo.bookingColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []models.Booking{}
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, 0, fmt.Errorf("error decoding bookings: %w", err)
	}
	return bookings, total, nil
}

// Stats groups a specialist's bookings by status and sums the money fields.
func (repo *MongoSchedulerRepo) Stats(ctx context.Context, specialistID string, from, to *time.Time) (*models.SpecialistStats, error) {
	match := bson.M{"specialistId": specialistID}
	if from != nil || to != nil {
		window := bson.M{}
		if from != nil {
			window["$gte"] = *from
		}
		if to != nil {
			window["$lt"] = *to
		}
		match["scheduledAt"] = window
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":      "$status",
			"count":    bson.M{"$sum": 1},
			"total":    bson.M{"$sum": "$totalAmount"},
			"earnings": bson.M{"$sum": "$specialistEarnings"},
			"fees":     bson.M{"$sum": "$platformFeeAmount"},
			"deposits": bson.M{"$sum": "$depositAmount"},
			"refunds":  bson.M{"$sum": "$refundAmount"},
		}}},
	}
	cursor, err := repo.bookingColl.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregation error: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []StatusAggregate
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("error decoding aggregation result: %w", err)
	}
	return FoldStats(specialistID, from, to, rows), nil
}
