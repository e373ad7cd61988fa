package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookly/database"
	"bookly/models"

	"go.uber.org/zap"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// GetBooking returns a single booking.
func (s *DefaultBookingService) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	return s.loadBooking(ctx, bookingID)
}

// GetUserBookings lists a customer's or a specialist's bookings, newest
// scheduled time first.
func (s *DefaultBookingService) GetUserBookings(ctx context.Context, q UserBookingsQuery) (*models.BookingPage, error) {
	if q.UserID == "" {
		return nil, validationError(CodeInvalidInput, "user id is required")
	}
	if q.Status != "" && !knownStatus(q.Status) {
		return nil, validationError(CodeInvalidInput, "unknown status %q", q.Status)
	}
	if q.Page < 1 {
		q.Page = 1
	}
	switch {
	case q.Limit <= 0:
		q.Limit = defaultPageLimit
	case q.Limit > maxPageLimit:
		q.Limit = maxPageLimit
	}

	query := models.BookingQuery{Status: q.Status, Page: q.Page, Limit: q.Limit}
	switch q.Role {
	case RoleCustomer, "":
		query.CustomerID = q.UserID
	case RoleSpecialist:
		sp, err := s.Catalog.GetSpecialistByUserID(ctx, q.UserID)
		if errors.Is(err, database.ErrNotFound) {
			return nil, notFoundError(CodeSpecialistNotFound, "user %s is not a specialist", q.UserID)
		}
		if err != nil {
			return nil, err
		}
		query.SpecialistID = sp.ID
	default:
		return nil, validationError(CodeInvalidInput, "role must be %q or %q", RoleCustomer, RoleSpecialist)
	}

	bookings, total, err := s.Bookings.List(ctx, query)
	if err != nil {
		return nil, err
	}
	totalPages := int((total + int64(q.Limit) - 1) / int64(q.Limit))
	return &models.BookingPage{
		Bookings:   bookings,
		Total:      total,
		Page:       q.Page,
		TotalPages: totalPages,
	}, nil
}

func knownStatus(st models.BookingStatus) bool {
	return st.IsLive() || st.IsTerminal()
}

// GetSpecialistBookingStats aggregates a specialist's bookings scheduled in
// [from, to). Results are cached until the next mutation of that specialist's
// bookings.
func (s *DefaultBookingService) GetSpecialistBookingStats(ctx context.Context, specialistID string, from, to *time.Time) (*models.SpecialistStats, error) {
	if specialistID == "" {
		return nil, validationError(CodeInvalidInput, "specialist id is required")
	}
	if from != nil && to != nil && !from.Before(*to) {
		return nil, validationError(CodeInvalidDateRange, "startDate must be before endDate")
	}

	key := fmt.Sprintf("%s:v%d:%s:%s", specialistID, s.Stats.Version(ctx, specialistID), stamp(from), stamp(to))
	if cached, ok := s.Stats.Get(ctx, key); ok {
		return cached, nil
	}

	stats, err := s.Bookings.Stats(ctx, specialistID, from, to)
	if err != nil {
		return nil, err
	}
	if err := s.Stats.Set(ctx, key, stats, s.Policy.StatsCacheTTL); err != nil {
		s.Logger.Warn("stats cache write failed", zap.String("specialistId", specialistID), zap.Error(err))
	}
	return stats, nil
}

func stamp(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}
