package booking

import (
	"context"
	"errors"
	"fmt"

	"bookly/database"
	"bookly/models"

	"github.com/shopspring/decimal"
)

// The ledger steps below run inside the caller's transaction. They are
// retry-safe because every one of them follows a status update guarded on the
// previous status in the same transaction: a repeated call fails the guard
// before any balance moves.

// applyCreation spends loyalty points, consumes the reward redemption and
// starts referral tracking for the customer's first booking.
func (s *DefaultBookingService) applyCreation(ctx context.Context, b *models.Booking) error {
	now := s.now()

	if b.LoyaltyPointsUsed > 0 {
		err := s.Users.AdjustLoyaltyPoints(ctx, b.CustomerID, -b.LoyaltyPointsUsed)
		if errors.Is(err, database.ErrInsufficientBalance) {
			return ruleError(CodeInsufficientLoyaltyPoints, "customer does not have %d loyalty points", b.LoyaltyPointsUsed)
		}
		if err != nil {
			return fmt.Errorf("spend loyalty points: %w", err)
		}
		if err := s.Ledger.AppendLoyalty(ctx, &models.LoyaltyTransaction{
			UserID:    b.CustomerID,
			Type:      models.LoyaltyRedeemed,
			Delta:     -b.LoyaltyPointsUsed,
			Reason:    "Points redeemed for booking",
			BookingID: b.ID,
			CreatedAt: now,
		}); err != nil {
			return fmt.Errorf("record loyalty redemption: %w", err)
		}
	}

	if b.RewardRedemptionID != "" {
		err := s.Rewards.Consume(ctx, b.RewardRedemptionID, b.ID, b.RewardDiscount, now)
		if errors.Is(err, database.ErrConflict) {
			return ruleError(CodeRedemptionNotApproved, "reward redemption %s is no longer approved", b.RewardRedemptionID)
		}
		if err != nil {
			return fmt.Errorf("consume reward redemption: %w", err)
		}
	}

	ref, err := s.Referrals.GetPendingByReferred(ctx, b.CustomerID)
	if err != nil {
		return fmt.Errorf("load referral: %w", err)
	}
	if ref != nil && ref.FirstBookingID == "" {
		if _, err := s.Referrals.SetFirstBooking(ctx, ref.ID, b.ID); err != nil {
			return err
		}
	}
	return nil
}

// applyCancellation refunds according to who cancelled. A specialist
// cancellation returns the whole deposit to the customer's wallet; a customer
// cancellation forfeits it. Spent points always come back.
func (s *DefaultBookingService) applyCancellation(ctx context.Context, b *models.Booking, actor models.CancelActor) error {
	now := s.now()

	b.RefundAmount = 0
	if actor == models.CancelledBySpecialist && b.DepositAmount > 0 {
		if err := s.Users.AdjustWallet(ctx, b.CustomerID, b.DepositAmount); err != nil {
			return fmt.Errorf("credit wallet refund: %w", err)
		}
		if err := s.Ledger.AppendWallet(ctx, &models.WalletTransaction{
			UserID:    b.CustomerID,
			Type:      models.WalletRefund,
			Delta:     b.DepositAmount,
			Reason:    "Deposit refund: booking cancelled by specialist",
			BookingID: b.ID,
			CreatedAt: now,
		}); err != nil {
			return fmt.Errorf("record wallet refund: %w", err)
		}
		b.RefundAmount = b.DepositAmount
	}

	if b.LoyaltyPointsUsed > 0 {
		if err := s.Users.AdjustLoyaltyPoints(ctx, b.CustomerID, b.LoyaltyPointsUsed); err != nil {
			return fmt.Errorf("restore loyalty points: %w", err)
		}
		if err := s.Ledger.AppendLoyalty(ctx, &models.LoyaltyTransaction{
			UserID:    b.CustomerID,
			Type:      models.LoyaltyEarned,
			Delta:     b.LoyaltyPointsUsed,
			Reason:    "Points restored: booking cancelled",
			BookingID: b.ID,
			CreatedAt: now,
		}); err != nil {
			return fmt.Errorf("record loyalty restore: %w", err)
		}
	}

	return s.retrackReferral(ctx, b)
}

// retrackReferral moves referral tracking off a cancelled booking onto the
// customer's earliest remaining live booking, if there is one.
func (s *DefaultBookingService) retrackReferral(ctx context.Context, b *models.Booking) error {
	ref, err := s.Referrals.GetByFirstBooking(ctx, b.ID)
	if err != nil {
		return fmt.Errorf("load referral: %w", err)
	}
	if ref == nil || ref.Status != models.ReferralPending {
		return nil
	}
	if err := s.Referrals.ClearFirstBooking(ctx, ref.ID, b.ID); err != nil {
		return err
	}
	next, err := s.Bookings.EarliestLiveForCustomer(ctx, b.CustomerID, b.ID)
	if err != nil {
		return fmt.Errorf("find next referral booking: %w", err)
	}
	if next == nil {
		return nil
	}
	if _, err := s.Referrals.SetFirstBooking(ctx, ref.ID, next.ID); err != nil {
		return fmt.Errorf("track referral booking: %w", err)
	}
	return nil
}

// applyCompletion awards points for the amount paid and bumps the
// specialist's counter. It reports whether referral processing is due.
func (s *DefaultBookingService) applyCompletion(ctx context.Context, b *models.Booking) (bool, error) {
	earned := decimal.NewFromFloat(b.TotalAmount).
		Mul(decimal.NewFromFloat(s.Policy.LoyaltyEarnPerUnit)).
		Floor().
		IntPart()
	if earned > 0 {
		if err := s.Users.AdjustLoyaltyPoints(ctx, b.CustomerID, earned); err != nil {
			return false, fmt.Errorf("award loyalty points: %w", err)
		}
		if err := s.Ledger.AppendLoyalty(ctx, &models.LoyaltyTransaction{
			UserID:    b.CustomerID,
			Type:      models.LoyaltyEarned,
			Delta:     earned,
			Reason:    "Points earned for completed booking",
			BookingID: b.ID,
			CreatedAt: s.now(),
		}); err != nil {
			return false, fmt.Errorf("record loyalty award: %w", err)
		}
	}
	b.LoyaltyPointsEarned = earned

	if err := s.CatalogRepo.IncrementCompletedBookings(ctx, b.SpecialistID); err != nil {
		return false, fmt.Errorf("count completed booking: %w", err)
	}

	ref, err := s.Referrals.GetByFirstBooking(ctx, b.ID)
	if err != nil {
		return false, fmt.Errorf("load referral: %w", err)
	}
	if ref != nil {
		return ref.Status == models.ReferralPending, nil
	}

	// A pending referral with nothing tracked adopts the first booking to complete.
	pending, err := s.Referrals.GetPendingByReferred(ctx, b.CustomerID)
	if err != nil {
		return false, fmt.Errorf("load referral: %w", err)
	}
	if pending == nil || pending.FirstBookingID != "" {
		return false, nil
	}
	return s.Referrals.SetFirstBooking(ctx, pending.ID, b.ID)
}
