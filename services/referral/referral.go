package referral

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookly/database"
	"bookly/database/repository"
	"bookly/models"

	"go.uber.org/zap"
)

// Processor credits referrers once a referred customer's first booking completes.
type Processor struct {
	Tx          database.TxManager
	Bookings    repository.BookingRepository
	Referrals   repository.ReferralRepository
	Users       repository.UserRepository
	Ledger      repository.LedgerRepository
	BonusPoints int64
	Logger      *zap.Logger
	Clock       func() time.Time
}

func NewProcessor(store *repository.Store, bonusPoints int64, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		Tx:          store.Tx,
		Bookings:    store.Bookings,
		Referrals:   store.Referrals,
		Users:       store.Users,
		Ledger:      store.Ledger,
		BonusPoints: bonusPoints,
		Logger:      logger,
		Clock:       time.Now,
	}
}

// OnBookingCompleted completes the referral tracking bookingID, if any, and
// credits the referrer. Calling it again for the same booking does nothing.
func (p *Processor) OnBookingCompleted(ctx context.Context, bookingID string) error {
	var credited *models.Referral
	err := p.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		credited = nil

		b, err := p.Bookings.GetByID(ctx, bookingID)
		if err != nil {
			return fmt.Errorf("load booking %s: %w", bookingID, err)
		}
		if b.Status != models.StatusCompleted {
			return nil
		}

		ref, err := p.Referrals.GetByFirstBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if ref == nil || ref.Status != models.ReferralPending || ref.ReferredID != b.CustomerID {
			return nil
		}

		now := p.Clock().UTC()
		if err := p.Referrals.Complete(ctx, ref.ID, p.BonusPoints, now); err != nil {
			if errors.Is(err, database.ErrConflict) {
				return nil
			}
			return err
		}
		if p.BonusPoints > 0 {
			if err := p.Users.AdjustLoyaltyPoints(ctx, ref.ReferrerID, p.BonusPoints); err != nil {
				return fmt.Errorf("credit referrer %s: %w", ref.ReferrerID, err)
			}
			if err := p.Ledger.AppendLoyalty(ctx, &models.LoyaltyTransaction{
				UserID:    ref.ReferrerID,
				Type:      models.LoyaltyEarned,
				Delta:     p.BonusPoints,
				Reason:    "Referral bonus",
				BookingID: bookingID,
				CreatedAt: now,
			}); err != nil {
				return err
			}
		}
		credited = ref
		return nil
	})
	if err != nil {
		return err
	}
	if credited != nil {
		p.Logger.Info("referral completed",
			zap.String("referralId", credited.ID),
			zap.String("referrerId", credited.ReferrerID),
			zap.Int64("bonusPoints", p.BonusPoints))
	}
	return nil
}
