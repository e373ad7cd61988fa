package booking

import (
	"time"

	"bookly/models"
)

// transitions is the allowed status graph. Anything not listed is rejected.
var transitions = map[models.BookingStatus][]models.BookingStatus{
	models.StatusPending:        {models.StatusPendingPayment, models.StatusConfirmed, models.StatusCancelled},
	models.StatusPendingPayment: {models.StatusConfirmed, models.StatusCancelled},
	models.StatusConfirmed:      {models.StatusInProgress, models.StatusCompleted, models.StatusCancelled},
	models.StatusInProgress:     {models.StatusCompleted, models.StatusCancelled},
}

// CanTransition reports whether a booking may move from one status to another.
func CanTransition(from, to models.BookingStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// transition moves b to status and stamps the matching timestamp.
func transition(b *models.Booking, to models.BookingStatus, at time.Time) error {
	if !CanTransition(b.Status, to) {
		return ruleError(CodeInvalidStatusTransition, "cannot move booking from %s to %s", b.Status, to)
	}
	b.Status = to
	switch to {
	case models.StatusConfirmed:
		b.ConfirmedAt = &at
	case models.StatusInProgress:
		b.StartedAt = &at
	case models.StatusCompleted:
		b.CompletedAt = &at
	case models.StatusCancelled:
		b.CancelledAt = &at
	}
	return nil
}
