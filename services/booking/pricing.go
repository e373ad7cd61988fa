package booking

import (
	"context"
	"errors"
	"sort"
	"time"

	"bookly/config"
	"bookly/database"
	"bookly/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Quote is the composed price of a booking.
type Quote struct {
	Subtotal           float64
	LoyaltyDiscount    float64
	AfterLoyalty       float64
	RewardDiscount     float64
	Total              float64
	Deposit            float64
	Remaining          float64
	PlatformFee        float64
	SpecialistEarnings float64
}

// Compose prices a booking. Discounts apply in a fixed order: loyalty points
// first, then the reward on what is left, then the result is floored at zero
// and split into deposit/remaining and fee/earnings.
func Compose(policy config.Policy, basePrice float64, pointsUsed int64, reward *models.Reward) Quote {
	base := decimal.NewFromFloat(basePrice).Round(2)

	loyalty := decimal.Zero
	if pointsUsed > 0 && policy.LoyaltyPointsPerUnit > 0 {
		loyalty = decimal.NewFromInt(pointsUsed).
			Div(decimal.NewFromInt(policy.LoyaltyPointsPerUnit)).
			Round(2)
	}
	loyalty = decimal.Min(loyalty, base)
	afterLoyalty := decimal.Max(base.Sub(loyalty), decimal.Zero)

	rewardOff := rewardDiscount(reward, afterLoyalty)
	total := decimal.Max(afterLoyalty.Sub(rewardOff), decimal.Zero)

	deposit := percentOf(total, policy.DepositPercent)
	fee := percentOf(total, policy.PlatformFeePercent)

	return Quote{
		Subtotal:           base.InexactFloat64(),
		LoyaltyDiscount:    loyalty.InexactFloat64(),
		AfterLoyalty:       afterLoyalty.InexactFloat64(),
		RewardDiscount:     rewardOff.InexactFloat64(),
		Total:              total.InexactFloat64(),
		Deposit:            deposit.InexactFloat64(),
		Remaining:          total.Sub(deposit).InexactFloat64(),
		PlatformFee:        fee.InexactFloat64(),
		SpecialistEarnings: total.Sub(fee).InexactFloat64(),
	}
}

// PointsToCover is the number of loyalty points that brings basePrice to zero.
// Requests above it are capped so no points are charged without a discount.
func PointsToCover(policy config.Policy, basePrice float64) int64 {
	if policy.LoyaltyPointsPerUnit <= 0 {
		return 0
	}
	return decimal.NewFromFloat(basePrice).Round(2).
		Mul(decimal.NewFromInt(policy.LoyaltyPointsPerUnit)).
		Ceil().IntPart()
}

func percentOf(amount decimal.Decimal, percent float64) decimal.Decimal {
	return amount.Mul(decimal.NewFromFloat(percent)).Div(hundred).Round(2)
}

// rewardDiscount is the amount a reward takes off subtotal, never more than subtotal.
func rewardDiscount(reward *models.Reward, subtotal decimal.Decimal) decimal.Decimal {
	if reward == nil {
		return decimal.Zero
	}
	var off decimal.Decimal
	switch reward.Type {
	case models.RewardPercentage:
		off = subtotal.Mul(decimal.NewFromFloat(reward.Value)).Div(hundred)
	case models.RewardFixedVoucher:
		off = decimal.NewFromFloat(reward.Value)
	case models.RewardFreeService:
		return subtotal
	default:
		return decimal.Zero
	}
	if reward.MaxDiscount > 0 {
		off = decimal.Min(off, decimal.NewFromFloat(reward.MaxDiscount))
	}
	return decimal.Min(off, subtotal).Round(2)
}

// checkRedemption applies the eligibility rules in order: ownership, status,
// expiry, specialist, service.
func checkRedemption(rd *models.RewardRedemption, reward *models.Reward, customerID, specialistID, serviceID string, now time.Time) error {
	if rd.CustomerID != customerID {
		return ruleError(CodeRedemptionNotOwned, "reward redemption %s does not belong to this customer", rd.ID)
	}
	if rd.Status != models.RedemptionApproved {
		return ruleError(CodeRedemptionNotApproved, "reward redemption %s is %s", rd.ID, rd.Status)
	}
	if rd.Expired(now) {
		return ruleError(CodeRedemptionExpired, "reward redemption %s has expired", rd.ID)
	}
	if reward.SpecialistID != "" && reward.SpecialistID != specialistID {
		return ruleError(CodeRedemptionWrongSpecialist, "reward %s is not valid for this specialist", reward.ID)
	}
	if !reward.AppliesToService(serviceID) {
		return ruleError(CodeRedemptionWrongService, "reward %s is not valid for this service", reward.ID)
	}
	return nil
}

type resolvedRedemption struct {
	redemption *models.RewardRedemption
	reward     *models.Reward
}

// resolveRedemption loads and checks the requested redemption, or, when none
// was requested, picks the customer's best applicable one.
func (s *DefaultBookingService) resolveRedemption(ctx context.Context, in CreateBookingInput, svc *models.Service, afterLoyalty float64) (*resolvedRedemption, error) {
	now := s.now()

	if in.RewardRedemptionID != "" {
		rd, err := s.Rewards.GetRedemption(ctx, in.RewardRedemptionID)
		if errors.Is(err, database.ErrNotFound) {
			return nil, notFoundError(CodeRedemptionNotFound, "reward redemption %s not found", in.RewardRedemptionID)
		}
		if err != nil {
			return nil, err
		}
		reward, err := s.Rewards.GetReward(ctx, rd.RewardID)
		if errors.Is(err, database.ErrNotFound) {
			return nil, notFoundError(CodeRedemptionNotFound, "reward %s not found", rd.RewardID)
		}
		if err != nil {
			return nil, err
		}
		if err := checkRedemption(rd, reward, in.CustomerID, svc.SpecialistID, svc.ID, now); err != nil {
			return nil, err
		}
		return &resolvedRedemption{redemption: rd, reward: reward}, nil
	}

	approved, err := s.Rewards.ListApproved(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}
	type candidate struct {
		resolvedRedemption
		discount decimal.Decimal
	}
	var candidates []candidate
	subtotal := decimal.NewFromFloat(afterLoyalty)
	for i := range approved {
		rd := approved[i]
		reward, err := s.Rewards.GetReward(ctx, rd.RewardID)
		if errors.Is(err, database.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if checkRedemption(&rd, reward, in.CustomerID, svc.SpecialistID, svc.ID, now) != nil {
			continue
		}
		off := rewardDiscount(reward, subtotal)
		if !off.IsPositive() {
			continue
		}
		candidates = append(candidates, candidate{resolvedRedemption{&rd, reward}, off})
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if c := candidates[i].discount.Cmp(candidates[j].discount); c != 0 {
			return c > 0
		}
		return expiresBefore(candidates[i].redemption, candidates[j].redemption)
	})
	best := candidates[0].resolvedRedemption
	return &best, nil
}

// expiresBefore orders redemptions by expiry; no expiry sorts last, then by id.
func expiresBefore(a, b *models.RewardRedemption) bool {
	switch {
	case a.ExpiresAt != nil && b.ExpiresAt != nil && !a.ExpiresAt.Equal(*b.ExpiresAt):
		return a.ExpiresAt.Before(*b.ExpiresAt)
	case a.ExpiresAt != nil && b.ExpiresAt == nil:
		return true
	case a.ExpiresAt == nil && b.ExpiresAt != nil:
		return false
	}
	return a.ID < b.ID
}
