package booking

import (
	"context"
	"fmt"

	"bookly/models"

	"go.uber.org/zap"
)

// Notification types sent by the booking service.
const (
	NotifyBookingRequested = "booking_requested"
	NotifyBookingCreated   = "booking_created"
	NotifyBookingConfirmed = "booking_confirmed"
	NotifyBookingReminder  = "booking_reminder"
	NotifyBookingCancelled = "booking_cancelled"
	NotifyBookingStarted   = "booking_started"
	NotifyBookingCompleted = "booking_completed"
)

const displayTime = "2 January, 3:04 PM"

// afterCommit retires cached stats for the booking's specialist.
func (s *DefaultBookingService) afterCommit(ctx context.Context, b *models.Booking) {
	if err := s.Stats.Bump(ctx, b.SpecialistID); err != nil {
		s.Logger.Warn("stats cache invalidation failed",
			zap.String("specialistId", b.SpecialistID), zap.Error(err))
	}
}

func bookingData(b *models.Booking) map[string]any {
	return map[string]any{
		"bookingId":    b.ID,
		"serviceId":    b.ServiceID,
		"specialistId": b.SpecialistID,
		"scheduledAt":  b.ScheduledAt,
		"status":       b.Status,
		"totalAmount":  b.TotalAmount,
	}
}

// send delivers one notification. Delivery problems never reach the caller.
func (s *DefaultBookingService) send(ctx context.Context, userID string, p models.NotificationPayload) {
	if s.Notifier == nil || userID == "" {
		return
	}
	if err := s.Notifier.Send(ctx, userID, p); err != nil {
		s.Logger.Warn("notification failed",
			zap.String("userId", userID), zap.String("type", p.Type), zap.Error(err))
	}
}

// specialistUser resolves the account to notify for a specialist.
func (s *DefaultBookingService) specialistUser(ctx context.Context, specialistID string) string {
	sp, err := s.Catalog.GetSpecialist(ctx, specialistID)
	if err != nil {
		s.Logger.Warn("could not resolve specialist for notification",
			zap.String("specialistId", specialistID), zap.Error(err))
		return ""
	}
	return sp.UserID
}

func (s *DefaultBookingService) notifyCreated(ctx context.Context, b *models.Booking, svc *models.Service) {
	when := b.ScheduledAt.Format(displayTime)
	if b.Status == models.StatusConfirmed {
		s.send(ctx, b.CustomerID, models.NotificationPayload{
			Type:          NotifyBookingConfirmed,
			Title:         "Booking Confirmed!",
			Message:       fmt.Sprintf("Your %s appointment on %s is confirmed.", svc.Name, when),
			Data:          bookingData(b),
			EmailTemplate: "booking-confirmed",
		})
		s.scheduleReminder(ctx, b)
	} else {
		s.send(ctx, b.CustomerID, models.NotificationPayload{
			Type:    NotifyBookingRequested,
			Title:   "Booking Requested",
			Message: fmt.Sprintf("Your request for %s on %s is waiting for the specialist.", svc.Name, when),
			Data:    bookingData(b),
		})
	}
	s.send(ctx, s.specialistUser(ctx, b.SpecialistID), models.NotificationPayload{
		Type:        NotifyBookingCreated,
		Title:       "New Booking",
		Message:     fmt.Sprintf("New booking for %s on %s.", svc.Name, when),
		Data:        bookingData(b),
		SmsTemplate: "new-booking",
	})
}

func (s *DefaultBookingService) notifyConfirmed(ctx context.Context, b *models.Booking) {
	s.send(ctx, b.CustomerID, models.NotificationPayload{
		Type:          NotifyBookingConfirmed,
		Title:         "Booking Confirmed!",
		Message:       fmt.Sprintf("Your appointment on %s has been confirmed.", b.ScheduledAt.Format(displayTime)),
		Data:          bookingData(b),
		EmailTemplate: "booking-confirmed",
	})
	s.scheduleReminder(ctx, b)
}

// ReminderKey names the delayed reminder of a booking.
func ReminderKey(bookingID string) string {
	return "reminder-" + bookingID
}

// scheduleReminder asks the dispatcher to deliver a reminder ahead of the
// start. The reminder is keyed so cancellation can revoke it, and it only
// goes out if the booking is still on at delivery time.
func (s *DefaultBookingService) scheduleReminder(ctx context.Context, b *models.Booking) {
	at := b.ScheduledAt.Add(-s.Policy.ReminderLead)
	if !at.After(s.now()) {
		return
	}
	s.send(ctx, b.CustomerID, models.NotificationPayload{
		Type:         NotifyBookingReminder,
		Title:        "Upcoming Appointment",
		Message:      fmt.Sprintf("Reminder: your appointment starts at %s.", b.ScheduledAt.Format(displayTime)),
		Data:         bookingData(b),
		SendAt:       &at,
		Key:          ReminderKey(b.ID),
		BookingID:    b.ID,
		OnlyIfStatus: []models.BookingStatus{models.StatusConfirmed, models.StatusInProgress},
	})
}

// revokeReminder withdraws the reminder of a booking that will not happen.
func (s *DefaultBookingService) revokeReminder(ctx context.Context, b *models.Booking) {
	if s.Notifier == nil || b.ConfirmedAt == nil {
		return
	}
	if err := s.Notifier.Revoke(ctx, ReminderKey(b.ID)); err != nil {
		s.Logger.Warn("reminder revoke failed", zap.String("bookingId", b.ID), zap.Error(err))
	}
}

func (s *DefaultBookingService) notifyCancelled(ctx context.Context, b *models.Booking) {
	s.revokeReminder(ctx, b)
	msg := "Your booking has been cancelled."
	if b.RefundAmount > 0 {
		msg = fmt.Sprintf("Your booking was cancelled by the specialist. %.2f has been refunded to your wallet.", b.RefundAmount)
	}
	data := bookingData(b)
	data["cancelledBy"] = b.CancelledBy
	data["reason"] = b.CancellationReason
	data["refundAmount"] = b.RefundAmount

	payload := models.NotificationPayload{
		Type:          NotifyBookingCancelled,
		Title:         "Booking Cancelled",
		Message:       msg,
		Data:          data,
		EmailTemplate: "booking-cancelled",
	}
	s.send(ctx, b.CustomerID, payload)

	payload.Message = fmt.Sprintf("The booking on %s has been cancelled.", b.ScheduledAt.Format(displayTime))
	s.send(ctx, s.specialistUser(ctx, b.SpecialistID), payload)
}

func (s *DefaultBookingService) notifyStarted(ctx context.Context, b *models.Booking) {
	s.send(ctx, b.CustomerID, models.NotificationPayload{
		Type:    NotifyBookingStarted,
		Title:   "Appointment Started",
		Message: "Your appointment is now in progress.",
		Data:    bookingData(b),
	})
}

func (s *DefaultBookingService) notifyCompleted(ctx context.Context, b *models.Booking) {
	msg := "Thanks for your visit!"
	if b.LoyaltyPointsEarned > 0 {
		msg = fmt.Sprintf("Thanks for your visit! You earned %d loyalty points.", b.LoyaltyPointsEarned)
	}
	s.send(ctx, b.CustomerID, models.NotificationPayload{
		Type:          NotifyBookingCompleted,
		Title:         "Booking Completed",
		Message:       msg,
		Data:          bookingData(b),
		EmailTemplate: "booking-completed",
	})
}
