package referralRepo

import (
	"context"
	"time"

	"bookly/models"
)

// ReferralRepository defines data access for referrals.
type ReferralRepository interface {
	Create(ctx context.Context, referral *models.Referral) error
	GetByID(ctx context.Context, id string) (*models.Referral, error)
	// GetPendingByReferred returns the PENDING referral of a referred customer, or nil.
	GetPendingByReferred(ctx context.Context, referredID string) (*models.Referral, error)
	// GetByFirstBooking returns the referral tracking bookingID, or nil.
	GetByFirstBooking(ctx context.Context, bookingID string) (*models.Referral, error)
	// SetFirstBooking records bookingID only if no first booking is tracked yet.
	// It reports whether the referral was updated.
	SetFirstBooking(ctx context.Context, id, bookingID string) (bool, error)
	// ClearFirstBooking releases tracking only if it currently points at bookingID.
	ClearFirstBooking(ctx context.Context, id, bookingID string) error
	// Complete moves PENDING -> COMPLETED or returns database.ErrConflict.
	Complete(ctx context.Context, id string, bonusPoints int64, at time.Time) error
}
