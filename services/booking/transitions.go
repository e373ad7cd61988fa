package booking

import (
	"context"
	"errors"

	"bookly/database"
	"bookly/models"

	"go.uber.org/zap"
)

func (s *DefaultBookingService) loadBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := s.Bookings.GetByID(ctx, bookingID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, notFoundError(CodeBookingNotFound, "booking %s not found", bookingID)
	}
	return b, err
}

// ownedBySpecialist reports whether userID acts for the booking's specialist.
func (s *DefaultBookingService) ownedBySpecialist(ctx context.Context, b *models.Booking, userID string) (bool, error) {
	sp, err := s.Catalog.GetSpecialistByUserID(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return sp.ID == b.SpecialistID, nil
}

func (s *DefaultBookingService) requireSpecialist(ctx context.Context, b *models.Booking, userID string) error {
	ok, err := s.ownedBySpecialist(ctx, b, userID)
	if err != nil {
		return err
	}
	if !ok {
		return authorizationError(CodeSpecialistNotAuthorized, "only the booking's specialist can do this")
	}
	return nil
}

// save writes b if its stored status is still expected. A lost race is
// reported with the code the caller's status check would have produced.
func (s *DefaultBookingService) save(ctx context.Context, b *models.Booking, expected models.BookingStatus, code string) error {
	b.UpdatedAt = s.now()
	err := s.Bookings.UpdateGuarded(ctx, b, expected)
	if errors.Is(err, database.ErrConflict) {
		return ruleError(code, "booking %s changed concurrently", b.ID)
	}
	return err
}

// mutate runs fn on a freshly loaded booking inside a transaction.
func (s *DefaultBookingService) mutate(ctx context.Context, bookingID string, fn func(ctx context.Context, b *models.Booking) error) (*models.Booking, error) {
	var out *models.Booking
	err := s.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		b, err := s.loadBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if err := fn(ctx, b); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.afterCommit(ctx, out)
	return out, nil
}

// ConfirmBooking accepts a pending booking on behalf of its specialist.
func (s *DefaultBookingService) ConfirmBooking(ctx context.Context, bookingID, specialistUserID string) (*models.Booking, error) {
	b, err := s.mutate(ctx, bookingID, func(ctx context.Context, b *models.Booking) error {
		if err := s.requireSpecialist(ctx, b, specialistUserID); err != nil {
			return err
		}
		if b.Status != models.StatusPending {
			return ruleError(CodeBookingNotPending, "booking is %s, not PENDING", b.Status)
		}
		if err := transition(b, models.StatusConfirmed, s.now()); err != nil {
			return err
		}
		return s.save(ctx, b, models.StatusPending, CodeBookingNotPending)
	})
	if err != nil {
		return nil, err
	}
	s.Logger.Info("booking confirmed", zap.String("bookingId", b.ID))
	s.notifyConfirmed(ctx, b)
	return b, nil
}

// RejectBooking declines a pending booking. It is a specialist cancellation,
// so the deposit is refunded, and it is not subject to the lead time.
func (s *DefaultBookingService) RejectBooking(ctx context.Context, bookingID, specialistUserID, reason string) (*models.Booking, error) {
	b, err := s.mutate(ctx, bookingID, func(ctx context.Context, b *models.Booking) error {
		if err := s.requireSpecialist(ctx, b, specialistUserID); err != nil {
			return err
		}
		if b.Status != models.StatusPending {
			return ruleError(CodeBookingNotPending, "booking is %s, not PENDING", b.Status)
		}
		if reason == "" {
			reason = "Rejected by specialist"
		}
		return s.cancel(ctx, b, models.CancelledBySpecialist, specialistUserID, reason, CodeBookingNotPending)
	})
	if err != nil {
		return nil, err
	}
	s.Logger.Info("booking rejected", zap.String("bookingId", b.ID))
	s.notifyCancelled(ctx, b)
	return b, nil
}

// cancellable are the statuses a booking can be cancelled from.
var cancellable = map[models.BookingStatus]bool{
	models.StatusPending:        true,
	models.StatusPendingPayment: true,
	models.StatusConfirmed:      true,
}

// CancelBooking cancels on behalf of the customer or the owning specialist.
// It must happen at least the cancellation lead time before the start.
func (s *DefaultBookingService) CancelBooking(ctx context.Context, bookingID, cancelledByUserID, reason string) (*models.Booking, error) {
	b, err := s.mutate(ctx, bookingID, func(ctx context.Context, b *models.Booking) error {
		actor := models.CancelledByCustomer
		if cancelledByUserID != b.CustomerID {
			ok, err := s.ownedBySpecialist(ctx, b, cancelledByUserID)
			if err != nil {
				return err
			}
			if !ok {
				return authorizationError(CodeCancellationNotAuthorized, "only the customer or the specialist can cancel this booking")
			}
			actor = models.CancelledBySpecialist
		}
		if !cancellable[b.Status] {
			return ruleError(CodeCancellationNotAllowed, "a %s booking cannot be cancelled", b.Status)
		}
		if b.ScheduledAt.Sub(s.now()) < s.Policy.CancellationLead {
			return ruleError(CodeCancellationTooLate,
				"bookings can only be cancelled at least %s before the start", s.Policy.CancellationLead)
		}
		return s.cancel(ctx, b, actor, cancelledByUserID, reason, CodeCancellationNotAllowed)
	})
	if err != nil {
		return nil, err
	}
	s.Logger.Info("booking cancelled",
		zap.String("bookingId", b.ID),
		zap.String("cancelledBy", string(b.CancelledBy)),
		zap.Float64("refund", b.RefundAmount))
	s.notifyCancelled(ctx, b)
	return b, nil
}

func (s *DefaultBookingService) cancel(ctx context.Context, b *models.Booking, actor models.CancelActor, userID, reason, code string) error {
	expected := b.Status
	if err := transition(b, models.StatusCancelled, s.now()); err != nil {
		return err
	}
	b.CancelledBy = actor
	b.CancelledByUserID = userID
	b.CancellationReason = reason
	if err := s.applyCancellation(ctx, b, actor); err != nil {
		return err
	}
	return s.save(ctx, b, expected, code)
}

// StartBooking marks a confirmed booking as in progress.
func (s *DefaultBookingService) StartBooking(ctx context.Context, bookingID, specialistUserID string) (*models.Booking, error) {
	b, err := s.mutate(ctx, bookingID, func(ctx context.Context, b *models.Booking) error {
		if err := s.requireSpecialist(ctx, b, specialistUserID); err != nil {
			return err
		}
		if b.Status != models.StatusConfirmed {
			return ruleError(CodeBookingNotConfirmed, "booking is %s, not CONFIRMED", b.Status)
		}
		if err := transition(b, models.StatusInProgress, s.now()); err != nil {
			return err
		}
		return s.save(ctx, b, models.StatusConfirmed, CodeBookingNotConfirmed)
	})
	if err != nil {
		return nil, err
	}
	s.Logger.Info("booking started", zap.String("bookingId", b.ID))
	s.notifyStarted(ctx, b)
	return b, nil
}

// CompleteBookingWithPayment finishes a confirmed or in-progress booking once
// the specialist confirms payment. Referral and fee processing run after the
// commit and only log their failures.
func (s *DefaultBookingService) CompleteBookingWithPayment(ctx context.Context, bookingID, specialistUserID string, paymentConfirmed bool, notes string) (*models.Booking, error) {
	var referralDue bool
	b, err := s.mutate(ctx, bookingID, func(ctx context.Context, b *models.Booking) error {
		if err := s.requireSpecialist(ctx, b, specialistUserID); err != nil {
			return err
		}
		if b.Status != models.StatusConfirmed && b.Status != models.StatusInProgress {
			return ruleError(CodeBookingNotInProgress, "booking is %s, not CONFIRMED or IN_PROGRESS", b.Status)
		}
		if !paymentConfirmed {
			return ruleError(CodePaymentNotConfirmed, "payment must be confirmed to complete the booking")
		}
		expected := b.Status
		if err := transition(b, models.StatusCompleted, s.now()); err != nil {
			return err
		}
		b.PaymentConfirmed = true
		if notes != "" {
			b.SpecialistNotes = notes
		}
		due, err := s.applyCompletion(ctx, b)
		if err != nil {
			return err
		}
		referralDue = due
		return s.save(ctx, b, expected, CodeBookingNotInProgress)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Info("booking completed",
		zap.String("bookingId", b.ID),
		zap.Int64("pointsEarned", b.LoyaltyPointsEarned))
	s.notifyCompleted(ctx, b)

	if referralDue && s.Referral != nil {
		if err := s.Referral.OnBookingCompleted(ctx, b.ID); err != nil {
			s.Logger.Error("referral processing failed", zap.String("bookingId", b.ID), zap.Error(err))
		}
	}
	if s.Fees != nil {
		fee, err := s.Fees.OnBookingCompleted(ctx, b.ID)
		if err != nil {
			s.Logger.Error("fee processing failed", zap.String("bookingId", b.ID), zap.Error(err))
		} else {
			s.Logger.Info("platform fee processed", zap.String("bookingId", b.ID), zap.Float64("fee", fee))
		}
	}
	return b, nil
}
