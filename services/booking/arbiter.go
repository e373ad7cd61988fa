package booking

import (
	"context"
	"errors"
	"time"

	"bookly/database"

	"go.uber.org/zap"
)

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) share any instant. Touching endpoints do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// minuteBuckets lists the unix minutes touched by [start, end), ascending.
func minuteBuckets(start, end time.Time) []int64 {
	first := floorDiv(start.Unix(), 60)
	last := floorDiv(end.Add(-time.Nanosecond).Unix(), 60)
	buckets := make([]int64, 0, last-first+1)
	for m := first; m <= last; m++ {
		buckets = append(buckets, m)
	}
	return buckets
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// reserve proves that [start, start+duration) is free for the specialist.
// It must run inside the transaction that will insert the booking: the
// bucket locks it takes are what keep a concurrent reserve of an
// overlapping window from passing the same check.
func (s *DefaultBookingService) reserve(ctx context.Context, specialistID string, start time.Time, durationMinutes int) error {
	end := start.Add(time.Duration(durationMinutes) * time.Minute)

	if err := s.Locks.Acquire(ctx, specialistID, minuteBuckets(start, end)); err != nil {
		if errors.Is(err, database.ErrLockUnavailable) {
			s.Logger.Warn("slot lock unavailable",
				zap.String("specialistId", specialistID), zap.Time("start", start), zap.Error(err))
			return conflictError(CodeTimeSlotNotAvailable, "the requested time slot is not available")
		}
		return err
	}

	window := time.Duration(s.Policy.MaxBookingMinutes) * time.Minute
	candidates, err := s.Bookings.FindLiveInWindow(ctx, specialistID, start.Add(-window), end)
	if err != nil {
		return err
	}
	for _, c := range candidates {
		if Overlaps(start, end, c.ScheduledAt, c.EndsAt()) {
			return conflictError(CodeTimeSlotNotAvailable,
				"the requested time slot overlaps booking %s", c.ID)
		}
	}
	return nil
}
