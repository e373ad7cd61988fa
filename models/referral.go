package models

import "time"

// ReferralStatus moves PENDING -> COMPLETED once.
type ReferralStatus string

const (
	ReferralPending   ReferralStatus = "PENDING"
	ReferralCompleted ReferralStatus = "COMPLETED"
)

// Referral links a referring customer to the customer they invited.
// FirstBookingID tracks the referred customer's first live booking.
type Referral struct {
	ID             string         `bson:"id" json:"id"`
	ReferrerID     string         `bson:"referrerId" json:"referrerId"`
	ReferredID     string         `bson:"referredId" json:"referredId"`
	Status         ReferralStatus `bson:"status" json:"status"`
	FirstBookingID string         `bson:"firstBookingId,omitempty" json:"firstBookingId,omitempty"`
	BonusPoints    int64          `bson:"bonusPoints" json:"bonusPoints"`
	CompletedAt    *time.Time     `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CreatedAt      time.Time      `bson:"createdAt" json:"createdAt"`
}
