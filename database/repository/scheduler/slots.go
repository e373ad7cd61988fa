package schedulerRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookly/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LockKey names the lock document of one specialist minute.
func LockKey(specialistID string, bucket int64) string {
	return fmt.Sprintf("%s:%d", specialistID, bucket)
}

// Acquire upserts one lock document per bucket inside the caller's transaction.
// A concurrent transaction writing the same document aborts with a transient
// write conflict, which the transaction runner retries after this one ends.
func (repo *MongoSchedulerRepo) Acquire(ctx context.Context, specialistID string, buckets []int64) error {
	if !database.InTransaction(ctx) {
		return database.ErrNoTransaction
	}
	now := time.Now()
	opts := options.Update().SetUpsert(true)
	for _, bucket := range buckets {
		filter := bson.M{"_id": LockKey(specialistID, bucket)}
		update := bson.M{
			"$inc": bson.M{"seq": 1},
			"$set": bson.M{"lockedAt": now},
		}
		if _, err := repo.lockColl.UpdateOne(ctx, filter, update, opts); err != nil {
			if isTransient(err) {
				// Let the transaction runner see the label and retry.
				return err
			}
			return fmt.Errorf("%w: %v", database.ErrLockUnavailable, err)
		}
	}
	return nil
}

func isTransient(err error) bool {
	var se mongo.ServerError
	if errors.As(err, &se) {
		return se.HasErrorLabel("TransientTransactionError")
	}
	return false
}
