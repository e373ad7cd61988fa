package rewardRepo

import (
	"context"
	"time"

	"bookly/models"
)

// RewardRepository defines data access for rewards and their redemptions.
type RewardRepository interface {
	CreateReward(ctx context.Context, reward *models.Reward) error
	GetReward(ctx context.Context, id string) (*models.Reward, error)
	CreateRedemption(ctx context.Context, redemption *models.RewardRedemption) error
	GetRedemption(ctx context.Context, id string) (*models.RewardRedemption, error)
	// ListApproved returns the customer's redemptions still in APPROVED status.
	ListApproved(ctx context.Context, customerID string) ([]models.RewardRedemption, error)
	// Consume moves a redemption APPROVED -> USED. It returns
	// database.ErrConflict when the redemption is no longer APPROVED.
	Consume(ctx context.Context, id, bookingID string, discount float64, at time.Time) error
}
