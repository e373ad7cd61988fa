package schedulerRepo

import (
	"context"
	"time"

	"bookly/models"
)

// BookingRepository defines data access for booking records.
type BookingRepository interface {
	// Create inserts a new booking.
	Create(ctx context.Context, booking *models.Booking) error
	// GetByID returns database.ErrNotFound when the booking does not exist.
	GetByID(ctx context.Context, bookingID string) (*models.Booking, error)
	// UpdateGuarded replaces the booking only if its stored status is still
	// expected, returning database.ErrConflict otherwise.
	UpdateGuarded(ctx context.Context, booking *models.Booking, expected models.BookingStatus) error
	// FindDuplicate returns a non-cancelled booking of the same customer,
	// service and instant, or nil.
	FindDuplicate(ctx context.Context, customerID, serviceID string, at time.Time) (*models.Booking, error)
	// FindLiveInWindow returns the specialist's live bookings whose start lies in (from, to).
	FindLiveInWindow(ctx context.Context, specialistID string, from, to time.Time) ([]models.Booking, error)
	// EarliestLiveForCustomer returns the customer's live booking with the
	// earliest start other than excludeID, or nil.
	EarliestLiveForCustomer(ctx context.Context, customerID, excludeID string) (*models.Booking, error)
	// List returns one page ordered by scheduledAt descending, plus the total count.
	List(ctx context.Context, q models.BookingQuery) ([]models.Booking, int64, error)
	// Stats aggregates a specialist's bookings scheduled in [from, to).
	Stats(ctx context.Context, specialistID string, from, to *time.Time) (*models.SpecialistStats, error)
}

// SlotLocker takes minute-bucket locks scoped to the current transaction.
type SlotLocker interface {
	// Acquire locks every bucket (unix minute) for the specialist until the
	// transaction in ctx ends. Buckets must be sorted ascending.
	Acquire(ctx context.Context, specialistID string, buckets []int64) error
}
