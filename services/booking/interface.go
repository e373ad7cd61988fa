package booking

import (
	"context"
	"time"

	"bookly/config"
	"bookly/database"
	"bookly/database/repository"
	"bookly/models"

	"go.uber.org/zap"
)

// BookingService is the booking lifecycle engine.
type BookingService interface {
	CreateBooking(ctx context.Context, in CreateBookingInput) (*models.Booking, error)
	ConfirmBooking(ctx context.Context, bookingID, specialistUserID string) (*models.Booking, error)
	RejectBooking(ctx context.Context, bookingID, specialistUserID, reason string) (*models.Booking, error)
	CancelBooking(ctx context.Context, bookingID, cancelledByUserID, reason string) (*models.Booking, error)
	StartBooking(ctx context.Context, bookingID, specialistUserID string) (*models.Booking, error)
	CompleteBookingWithPayment(ctx context.Context, bookingID, specialistUserID string, paymentConfirmed bool, notes string) (*models.Booking, error)
	GetBooking(ctx context.Context, bookingID string) (*models.Booking, error)
	GetUserBookings(ctx context.Context, q UserBookingsQuery) (*models.BookingPage, error)
	GetSpecialistBookingStats(ctx context.Context, specialistID string, from, to *time.Time) (*models.SpecialistStats, error)
}

// CreateBookingInput is the request to book a service. A zero Duration uses
// the service's own duration.
type CreateBookingInput struct {
	CustomerID         string    `json:"-"`
	ServiceID          string    `json:"serviceId"`
	ScheduledAt        time.Time `json:"scheduledAt"`
	Duration           int       `json:"duration,omitempty"`
	CustomerNotes      string    `json:"customerNotes,omitempty"`
	LoyaltyPointsUsed  int64     `json:"loyaltyPointsUsed,omitempty"`
	RewardRedemptionID string    `json:"rewardRedemptionId,omitempty"`
}

// Role selects which side of the bookings a listing is for.
type Role string

const (
	RoleCustomer   Role = "customer"
	RoleSpecialist Role = "specialist"
)

// UserBookingsQuery asks for one page of a user's bookings.
type UserBookingsQuery struct {
	UserID string
	Role   Role
	Status models.BookingStatus
	Page   int
	Limit  int
}

// CatalogLookup resolves the catalog entities a booking refers to.
// Missing entities are reported as database.ErrNotFound.
type CatalogLookup interface {
	GetActiveService(ctx context.Context, serviceID string) (*models.Service, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetSpecialist(ctx context.Context, specialistID string) (*models.Specialist, error)
	GetSpecialistByUserID(ctx context.Context, userID string) (*models.Specialist, error)
}

// Notifier delivers lifecycle notifications. Failures are logged by the caller.
type Notifier interface {
	Send(ctx context.Context, userID string, payload models.NotificationPayload) error
	// Revoke withdraws a pending delayed notification by key. Unknown keys are not an error.
	Revoke(ctx context.Context, key string) error
}

// ReferralProcessor is told about completed bookings.
type ReferralProcessor interface {
	OnBookingCompleted(ctx context.Context, bookingID string) error
}

// FeeProcessor bills the specialist for a completed booking.
type FeeProcessor interface {
	OnBookingCompleted(ctx context.Context, bookingID string) (float64, error)
}

// Deps are the collaborators a DefaultBookingService is built from.
type Deps struct {
	Tx          database.TxManager
	Bookings    repository.BookingRepository
	Locks       repository.SlotLocker
	Users       repository.UserRepository
	Ledger      repository.LedgerRepository
	Rewards     repository.RewardRepository
	Referrals   repository.ReferralRepository
	CatalogRepo repository.CatalogRepository
	Catalog     CatalogLookup
	Notifier    Notifier
	Referral    ReferralProcessor
	Fees        FeeProcessor
	Stats       StatsCache
	Logger      *zap.Logger
	Policy      config.Policy
	Clock       func() time.Time
}

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Deps
}

// NewBookingService fills in optional collaborators and returns the service.
func NewBookingService(d Deps) *DefaultBookingService {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.Stats == nil {
		d.Stats = NopStatsCache{}
	}
	if d.Policy == (config.Policy{}) {
		d.Policy = config.DefaultPolicy()
	}
	return &DefaultBookingService{Deps: d}
}

// FromStore copies the repositories of a store into d.
func (d Deps) FromStore(s *repository.Store) Deps {
	d.Tx = s.Tx
	d.Bookings = s.Bookings
	d.Locks = s.Locks
	d.Users = s.Users
	d.Ledger = s.Ledger
	d.Rewards = s.Rewards
	d.Referrals = s.Referrals
	d.CatalogRepo = s.Catalog
	return d
}

func (s *DefaultBookingService) now() time.Time {
	return s.Clock().UTC()
}
