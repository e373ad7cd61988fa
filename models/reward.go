package models

import "time"

// RewardType selects how a reward discounts a booking.
type RewardType string

const (
	RewardPercentage   RewardType = "PERCENTAGE"
	RewardFixedVoucher RewardType = "FIXED_VOUCHER"
	RewardFreeService  RewardType = "FREE_SERVICE"
)

// Reward is a discount definition customers can redeem.
type Reward struct {
	ID           string     `bson:"id" json:"id"`
	Name         string     `bson:"name" json:"name"`
	Type         RewardType `bson:"type" json:"type"`
	Value        float64    `bson:"value" json:"value"`                                 // percent for PERCENTAGE, amount for FIXED_VOUCHER
	MaxDiscount  float64    `bson:"maxDiscount,omitempty" json:"maxDiscount,omitempty"` // 0 = uncapped
	SpecialistID string     `bson:"specialistId,omitempty" json:"specialistId,omitempty"`
	ServiceIDs   []string   `bson:"serviceIds,omitempty" json:"serviceIds,omitempty"`
	CreatedAt    time.Time  `bson:"createdAt" json:"createdAt"`
}

// AppliesToService reports whether the reward's service restriction admits serviceID.
func (r Reward) AppliesToService(serviceID string) bool {
	if len(r.ServiceIDs) == 0 {
		return true
	}
	for _, id := range r.ServiceIDs {
		if id == serviceID {
			return true
		}
	}
	return false
}

// RedemptionStatus is APPROVED until a booking consumes it.
type RedemptionStatus string

const (
	RedemptionApproved RedemptionStatus = "APPROVED"
	RedemptionUsed     RedemptionStatus = "USED"
)

// RewardRedemption is a single-use grant of a reward to one customer.
type RewardRedemption struct {
	ID              string           `bson:"id" json:"id"`
	RewardID        string           `bson:"rewardId" json:"rewardId"`
	CustomerID      string           `bson:"customerId" json:"customerId"`
	Status          RedemptionStatus `bson:"status" json:"status"`
	ExpiresAt       *time.Time       `bson:"expiresAt,omitempty" json:"expiresAt,omitempty"`
	BookingID       string           `bson:"bookingId,omitempty" json:"bookingId,omitempty"`
	DiscountApplied float64          `bson:"discountApplied" json:"discountApplied"`
	UsedAt          *time.Time       `bson:"usedAt,omitempty" json:"usedAt,omitempty"`
	CreatedAt       time.Time        `bson:"createdAt" json:"createdAt"`
}

// Expired reports whether the redemption is past its expiry at now.
func (r RewardRedemption) Expired(now time.Time) bool {
	return r.ExpiresAt != nil && !now.Before(*r.ExpiresAt)
}
