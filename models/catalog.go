package models

import "time"

// Service is a bookable offering owned by a specialist.
type Service struct {
	ID           string    `bson:"id" json:"id"`
	SpecialistID string    `bson:"specialistId" json:"specialistId"`
	Name         string    `bson:"name" json:"name"`
	BasePrice    float64   `bson:"basePrice" json:"basePrice"`
	Duration     int       `bson:"duration" json:"duration"` // minutes
	IsActive     bool      `bson:"isActive" json:"isActive"`
	IsDeleted    bool      `bson:"isDeleted" json:"isDeleted"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Bookable reports whether new bookings may reference the service.
func (s Service) Bookable() bool {
	return s.IsActive && !s.IsDeleted
}

// Specialist sells services. UserID is the account that acts on its behalf.
type Specialist struct {
	ID                    string    `bson:"id" json:"id"`
	UserID                string    `bson:"userId" json:"userId"`
	DisplayName           string    `bson:"displayName" json:"displayName"`
	AutoBooking           bool      `bson:"autoBooking" json:"autoBooking"`
	CompletedBookings     int64     `bson:"completedBookings" json:"completedBookings"`
	SubscriptionActive    bool      `bson:"subscriptionActive" json:"subscriptionActive"`
	StripeCustomerID      string    `bson:"stripeCustomerId,omitempty" json:"-"`
	StripePaymentMethodID string    `bson:"stripePaymentMethodId,omitempty" json:"-"`
	CreatedAt             time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt             time.Time `bson:"updatedAt" json:"updatedAt"`
}
