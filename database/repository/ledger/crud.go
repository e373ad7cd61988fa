package ledgerRepo

import (
	"context"
	"fmt"
	"time"

	"bookly/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoLedgerRepo struct {
	loyalty *mongo.Collection
	wallet  *mongo.Collection
}

// NewMongoLedgerRepo returns a LedgerRepository backed by MongoDB.
func NewMongoLedgerRepo(db *mongo.Database) LedgerRepository {
	repo := &mongoLedgerRepo{
		loyalty: db.Collection("loyalty_transactions"),
		wallet:  db.Collection("wallet_transactions"),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, coll := range []*mongo.Collection{repo.loyalty, repo.wallet} {
		_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: 1}}},
			{Keys: bson.D{{Key: "bookingId", Value: 1}}},
		})
		if err != nil {
			fmt.Printf("failed to create ledger indexes on %s: %v\n", coll.Name(), err)
		}
	}
	return repo
}

func (r *mongoLedgerRepo) AppendLoyalty(ctx context.Context, tx *models.LoyaltyTransaction) error {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}
	if _, err := r.loyalty.InsertOne(ctx, tx); err != nil {
		return fmt.Errorf("failed to append loyalty transaction: %w", err)
	}
	return nil
}

func (r *mongoLedgerRepo) AppendWallet(ctx context.Context, tx *models.WalletTransaction) error {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}
	if _, err := r.wallet.InsertOne(ctx, tx); err != nil {
		return fmt.Errorf("failed to append wallet transaction: %w", err)
	}
	return nil
}

func (r *mongoLedgerRepo) LoyaltyHistory(ctx context.Context, userID string) ([]models.LoyaltyTransaction, error) {
	var out []models.LoyaltyTransaction
	if err := r.history(ctx, r.loyalty, userID, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *mongoLedgerRepo) WalletHistory(ctx context.Context, userID string) ([]models.WalletTransaction, error) {
	var out []models.WalletTransaction
	if err := r.history(ctx, r.wallet, userID, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *mongoLedgerRepo) history(ctx context.Context, coll *mongo.Collection, userID string, out any) error {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", coll.Name(), err)
	}
	defer cursor.Close(ctx)
	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", coll.Name(), err)
	}
	return nil
}
