package booking

import (
	"context"
	"errors"
	"strings"

	"bookly/database"
	"bookly/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *DefaultBookingService) validateCreate(in CreateBookingInput) error {
	if strings.TrimSpace(in.CustomerID) == "" {
		return validationError(CodeInvalidInput, "customer id is required")
	}
	if strings.TrimSpace(in.ServiceID) == "" {
		return validationError(CodeInvalidInput, "service id is required")
	}
	if in.ScheduledAt.IsZero() {
		return validationError(CodeInvalidInput, "scheduledAt is required")
	}
	if !in.ScheduledAt.After(s.now()) {
		return validationError(CodeScheduledInPast, "scheduled time must be in the future")
	}
	if in.Duration < 0 || in.Duration > s.Policy.MaxBookingMinutes {
		return validationError(CodeInvalidDuration, "duration must be between 1 and %d minutes", s.Policy.MaxBookingMinutes)
	}
	if in.LoyaltyPointsUsed < 0 {
		return validationError(CodeInvalidInput, "loyaltyPointsUsed cannot be negative")
	}
	return nil
}

// CreateBooking validates the request, resolves the catalog, then in one
// transaction checks for duplicates, arbitrates the slot, prices the booking,
// stores it and applies the ledger side effects.
func (s *DefaultBookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (*models.Booking, error) {
	if err := s.validateCreate(in); err != nil {
		return nil, err
	}
	in.ScheduledAt = in.ScheduledAt.UTC()

	svc, err := s.Catalog.GetActiveService(ctx, in.ServiceID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, notFoundError(CodeServiceNotFound, "service %s not found", in.ServiceID)
	}
	if err != nil {
		return nil, err
	}

	customer, err := s.Catalog.GetUser(ctx, in.CustomerID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, notFoundError(CodeCustomerNotFound, "customer %s not found", in.CustomerID)
	}
	if err != nil {
		return nil, err
	}
	if !customer.IsActive {
		return nil, authorizationError(CodeCustomerNotActive, "customer account is not active")
	}

	specialist, err := s.Catalog.GetSpecialist(ctx, svc.SpecialistID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, notFoundError(CodeSpecialistNotFound, "specialist %s not found", svc.SpecialistID)
	}
	if err != nil {
		return nil, err
	}
	if specialist.UserID == in.CustomerID {
		return nil, ruleError(CodeCannotBookOwnService, "you cannot book your own service")
	}

	duration := in.Duration
	if duration == 0 {
		duration = svc.Duration
	}
	if duration <= 0 || duration > s.Policy.MaxBookingMinutes {
		return nil, validationError(CodeInvalidDuration, "duration must be between 1 and %d minutes", s.Policy.MaxBookingMinutes)
	}

	var created *models.Booking
	err = s.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		dup, err := s.Bookings.FindDuplicate(ctx, in.CustomerID, svc.ID, in.ScheduledAt)
		if err != nil {
			return err
		}
		if dup != nil {
			return conflictError(CodeDuplicateBooking, "you already have booking %s for this service at this time", dup.ID)
		}

		if err := s.reserve(ctx, svc.SpecialistID, in.ScheduledAt, duration); err != nil {
			return err
		}

		points := min(in.LoyaltyPointsUsed, PointsToCover(s.Policy, svc.BasePrice))
		if points > 0 {
			fresh, err := s.Users.GetByID(ctx, in.CustomerID)
			if err != nil {
				return err
			}
			if fresh.LoyaltyPoints < points {
				return ruleError(CodeInsufficientLoyaltyPoints,
					"customer has %d loyalty points, %d requested", fresh.LoyaltyPoints, points)
			}
		}

		preReward := Compose(s.Policy, svc.BasePrice, points, nil)
		resolved, err := s.resolveRedemption(ctx, in, svc, preReward.AfterLoyalty)
		if err != nil {
			return err
		}
		var reward *models.Reward
		if resolved != nil {
			reward = resolved.reward
		}
		quote := Compose(s.Policy, svc.BasePrice, points, reward)

		now := s.now()
		b := &models.Booking{
			ID:                 uuid.New().String(),
			CustomerID:         in.CustomerID,
			SpecialistID:       svc.SpecialistID,
			ServiceID:          svc.ID,
			ScheduledAt:        in.ScheduledAt,
			Duration:           duration,
			Status:             models.StatusPending,
			BasePrice:          quote.Subtotal,
			TotalAmount:        quote.Total,
			DepositAmount:      quote.Deposit,
			RemainingAmount:    quote.Remaining,
			PlatformFeeAmount:  quote.PlatformFee,
			SpecialistEarnings: quote.SpecialistEarnings,
			LoyaltyPointsUsed:  points,
			LoyaltyDiscount:    quote.LoyaltyDiscount,
			RewardDiscount:     quote.RewardDiscount,
			CustomerNotes:      in.CustomerNotes,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if resolved != nil {
			b.RewardRedemptionID = resolved.redemption.ID
		}
		if specialist.AutoBooking {
			b.Status = models.StatusConfirmed
			b.ConfirmedAt = &now
		}

		if err := s.Bookings.Create(ctx, b); err != nil {
			if errors.Is(err, database.ErrConflict) {
				return conflictError(CodeDuplicateBooking, "booking already exists")
			}
			return err
		}
		if err := s.applyCreation(ctx, b); err != nil {
			return err
		}
		created = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Info("booking created",
		zap.String("bookingId", created.ID),
		zap.String("specialistId", created.SpecialistID),
		zap.String("status", string(created.Status)),
		zap.Float64("total", created.TotalAmount))

	s.afterCommit(ctx, created)
	s.notifyCreated(ctx, created, svc)
	return created, nil
}
