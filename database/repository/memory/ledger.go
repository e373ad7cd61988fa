package memory

import (
	"context"
	"time"

	"bookly/database"
	"bookly/models"

	"github.com/google/uuid"
)

type ledgerRepo struct{ s *Store }

func (r *ledgerRepo) AppendLoyalty(ctx context.Context, tx *models.LoyaltyTransaction) error {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}
	return r.s.write(ctx, func(d *dataset) error {
		d.loyalty = append(d.loyalty, *tx)
		return nil
	})
}

func (r *ledgerRepo) AppendWallet(ctx context.Context, tx *models.WalletTransaction) error {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}
	return r.s.write(ctx, func(d *dataset) error {
		d.wallet = append(d.wallet, *tx)
		return nil
	})
}

func (r *ledgerRepo) LoyaltyHistory(ctx context.Context, userID string) ([]models.LoyaltyTransaction, error) {
	var out []models.LoyaltyTransaction
	err := r.s.read(ctx, func(d *dataset) error {
		for _, tx := range d.loyalty {
			if tx.UserID == userID {
				out = append(out, tx)
			}
		}
		return nil
	})
	return out, err
}

func (r *ledgerRepo) WalletHistory(ctx context.Context, userID string) ([]models.WalletTransaction, error) {
	var out []models.WalletTransaction
	err := r.s.read(ctx, func(d *dataset) error {
		for _, tx := range d.wallet {
			if tx.UserID == userID {
				out = append(out, tx)
			}
		}
		return nil
	})
	return out, err
}

type rewardRepo struct{ s *Store }

func (r *rewardRepo) CreateReward(ctx context.Context, reward *models.Reward) error {
	return r.s.write(ctx, func(d *dataset) error {
		d.rewards[reward.ID] = *reward
		return nil
	})
}

func (r *rewardRepo) GetReward(ctx context.Context, id string) (*models.Reward, error) {
	var out *models.Reward
	err := r.s.read(ctx, func(d *dataset) error {
		rw, ok := d.rewards[id]
		if !ok {
			return database.ErrNotFound
		}
		out = &rw
		return nil
	})
	return out, err
}

func (r *rewardRepo) CreateRedemption(ctx context.Context, redemption *models.RewardRedemption) error {
	return r.s.write(ctx, func(d *dataset) error {
		d.redemptions[redemption.ID] = *redemption
		return nil
	})
}

func (r *rewardRepo) GetRedemption(ctx context.Context, id string) (*models.RewardRedemption, error) {
	var out *models.RewardRedemption
	err := r.s.read(ctx, func(d *dataset) error {
		rd, ok := d.redemptions[id]
		if !ok {
			return database.ErrNotFound
		}
		out = &rd
		return nil
	})
	return out, err
}

func (r *rewardRepo) ListApproved(ctx context.Context, customerID string) ([]models.RewardRedemption, error) {
	var out []models.RewardRedemption
	err := r.s.read(ctx, func(d *dataset) error {
		for _, rd := range d.redemptions {
			if rd.CustomerID == customerID && rd.Status == models.RedemptionApproved {
				out = append(out, rd)
			}
		}
		return nil
	})
	return out, err
}

func (r *rewardRepo) Consume(ctx context.Context, id, bookingID string, discount float64, at time.Time) error {
	return r.s.write(ctx, func(d *dataset) error {
		rd, ok := d.redemptions[id]
		if !ok || rd.Status != models.RedemptionApproved {
			return database.ErrConflict
		}
		rd.Status = models.RedemptionUsed
		rd.BookingID = bookingID
		rd.DiscountApplied = discount
		rd.UsedAt = &at
		d.redemptions[id] = rd
		return nil
	})
}

type referralRepo struct{ s *Store }

func (r *referralRepo) Create(ctx context.Context, referral *models.Referral) error {
	return r.s.write(ctx, func(d *dataset) error {
		d.referrals[referral.ID] = *referral
		return nil
	})
}

func (r *referralRepo) GetByID(ctx context.Context, id string) (*models.Referral, error) {
	var out *models.Referral
	err := r.s.read(ctx, func(d *dataset) error {
		ref, ok := d.referrals[id]
		if !ok {
			return database.ErrNotFound
		}
		out = &ref
		return nil
	})
	return out, err
}

func (r *referralRepo) find(ctx context.Context, match func(models.Referral) bool) (*models.Referral, error) {
	var out *models.Referral
	err := r.s.read(ctx, func(d *dataset) error {
		for _, ref := range d.referrals {
			if match(ref) {
				ref := ref
				out = &ref
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *referralRepo) GetPendingByReferred(ctx context.Context, referredID string) (*models.Referral, error) {
	return r.find(ctx, func(ref models.Referral) bool {
		return ref.ReferredID == referredID && ref.Status == models.ReferralPending
	})
}

func (r *referralRepo) GetByFirstBooking(ctx context.Context, bookingID string) (*models.Referral, error) {
	return r.find(ctx, func(ref models.Referral) bool {
		return ref.FirstBookingID == bookingID
	})
}

func (r *referralRepo) SetFirstBooking(ctx context.Context, id, bookingID string) (bool, error) {
	var updated bool
	err := r.s.write(ctx, func(d *dataset) error {
		ref, ok := d.referrals[id]
		if !ok || ref.Status != models.ReferralPending || ref.FirstBookingID != "" {
			return nil
		}
		ref.FirstBookingID = bookingID
		d.referrals[id] = ref
		updated = true
		return nil
	})
	return updated, err
}

func (r *referralRepo) ClearFirstBooking(ctx context.Context, id, bookingID string) error {
	return r.s.write(ctx, func(d *dataset) error {
		ref, ok := d.referrals[id]
		if !ok || ref.Status != models.ReferralPending || ref.FirstBookingID != bookingID {
			return nil
		}
		ref.FirstBookingID = ""
		d.referrals[id] = ref
		return nil
	})
}

func (r *referralRepo) Complete(ctx context.Context, id string, bonusPoints int64, at time.Time) error {
	return r.s.write(ctx, func(d *dataset) error {
		ref, ok := d.referrals[id]
		if !ok || ref.Status != models.ReferralPending {
			return database.ErrConflict
		}
		ref.Status = models.ReferralCompleted
		ref.BonusPoints = bonusPoints
		ref.CompletedAt = &at
		d.referrals[id] = ref
		return nil
	})
}
