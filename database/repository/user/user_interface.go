package userRepo

import (
	"context"

	"bookly/models"
)

// UserRepository defines methods for user data access. Balances only move
// through the Adjust methods, which the booking ledger pairs with ledger entries.
type UserRepository interface {
	// GetByID retrieves a user by their unique ID.
	GetByID(ctx context.Context, id string) (*models.User, error)
	// Create inserts a new user record.
	Create(ctx context.Context, user *models.User) error
	// AdjustLoyaltyPoints adds delta to the user's points. A negative delta
	// fails with database.ErrInsufficientBalance if the balance would go below zero.
	AdjustLoyaltyPoints(ctx context.Context, id string, delta int64) error
	// AdjustWallet adds delta to the user's wallet balance under the same rule.
	AdjustWallet(ctx context.Context, id string, delta float64) error
}
