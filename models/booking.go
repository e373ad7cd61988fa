package models

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	StatusPending        BookingStatus = "PENDING"
	StatusPendingPayment BookingStatus = "PENDING_PAYMENT"
	StatusConfirmed      BookingStatus = "CONFIRMED"
	StatusInProgress     BookingStatus = "IN_PROGRESS"
	StatusCompleted      BookingStatus = "COMPLETED"
	StatusCancelled      BookingStatus = "CANCELLED"
)

// LiveStatuses are the statuses that occupy a specialist's time.
var LiveStatuses = []BookingStatus{
	StatusPending,
	StatusPendingPayment,
	StatusConfirmed,
	StatusInProgress,
}

// IsTerminal reports whether no further transitions are possible.
func (s BookingStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// IsLive reports whether the status blocks the specialist's calendar.
func (s BookingStatus) IsLive() bool {
	for _, l := range LiveStatuses {
		if s == l {
			return true
		}
	}
	return false
}

// CancelActor identifies which side of the booking cancelled it.
type CancelActor string

const (
	CancelledByCustomer   CancelActor = "CUSTOMER"
	CancelledBySpecialist CancelActor = "SPECIALIST"
)

// Booking is a customer's appointment with a specialist for one service.
type Booking struct {
	ID           string        `bson:"id" json:"id"`
	CustomerID   string        `bson:"customerId" json:"customerId"`
	SpecialistID string        `bson:"specialistId" json:"specialistId"`
	ServiceID    string        `bson:"serviceId" json:"serviceId"`
	ScheduledAt  time.Time     `bson:"scheduledAt" json:"scheduledAt"`
	Duration     int           `bson:"duration" json:"duration"` // minutes
	Status       BookingStatus `bson:"status" json:"status"`

	// Money. Immutable once the booking is terminal.
	BasePrice          float64 `bson:"basePrice" json:"basePrice"`
	TotalAmount        float64 `bson:"totalAmount" json:"totalAmount"`
	DepositAmount      float64 `bson:"depositAmount" json:"depositAmount"`
	RemainingAmount    float64 `bson:"remainingAmount" json:"remainingAmount"`
	PlatformFeeAmount  float64 `bson:"platformFeeAmount" json:"platformFeeAmount"`
	SpecialistEarnings float64 `bson:"specialistEarnings" json:"specialistEarnings"`
	RefundAmount       float64 `bson:"refundAmount" json:"refundAmount"`

	LoyaltyPointsUsed   int64   `bson:"loyaltyPointsUsed" json:"loyaltyPointsUsed"`
	LoyaltyDiscount     float64 `bson:"loyaltyDiscount" json:"loyaltyDiscount"`
	LoyaltyPointsEarned int64   `bson:"loyaltyPointsEarned" json:"loyaltyPointsEarned"`
	RewardRedemptionID  string  `bson:"rewardRedemptionId,omitempty" json:"rewardRedemptionId,omitempty"`
	RewardDiscount      float64 `bson:"rewardDiscount" json:"rewardDiscount"`

	CustomerNotes      string      `bson:"customerNotes,omitempty" json:"customerNotes,omitempty"`
	SpecialistNotes    string      `bson:"specialistNotes,omitempty" json:"specialistNotes,omitempty"`
	PaymentConfirmed   bool        `bson:"paymentConfirmed" json:"paymentConfirmed"`
	CancelledBy        CancelActor `bson:"cancelledBy,omitempty" json:"cancelledBy,omitempty"`
	CancelledByUserID  string      `bson:"cancelledByUserId,omitempty" json:"cancelledByUserId,omitempty"`
	CancellationReason string      `bson:"cancellationReason,omitempty" json:"cancellationReason,omitempty"`

	ConfirmedAt *time.Time `bson:"confirmedAt,omitempty" json:"confirmedAt,omitempty"`
	StartedAt   *time.Time `bson:"startedAt,omitempty" json:"startedAt,omitempty"`
	CompletedAt *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CancelledAt *time.Time `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	CreatedAt   time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// EndsAt returns the exclusive end of the booked interval.
func (b Booking) EndsAt() time.Time {
	return b.ScheduledAt.Add(time.Duration(b.Duration) * time.Minute)
}

// BookingPage is one page of a user's bookings.
type BookingPage struct {
	Bookings   []Booking `json:"bookings"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	TotalPages int       `json:"totalPages"`
}

// BookingQuery filters a paged listing.
type BookingQuery struct {
	CustomerID   string
	SpecialistID string
	Status       BookingStatus
	Page         int
	Limit        int
}

// SpecialistStats aggregates a specialist's bookings over a period.
type SpecialistStats struct {
	SpecialistID       string                  `json:"specialistId"`
	From               *time.Time              `json:"from,omitempty"`
	To                 *time.Time              `json:"to,omitempty"`
	Total              int64                   `json:"total"`
	ByStatus           map[BookingStatus]int64 `json:"byStatus"`
	Revenue            float64                 `json:"revenue"`
	SpecialistEarnings float64                 `json:"specialistEarnings"`
	PlatformFees       float64                 `json:"platformFees"`
	DepositsForfeited  float64                 `json:"depositsForfeited"`
	RefundsIssued      float64                 `json:"refundsIssued"`
}
