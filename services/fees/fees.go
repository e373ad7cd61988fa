package fees

import (
	"context"
	"fmt"

	"bookly/database/repository"
	"bookly/models"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"
)

// billable loads a completed booking and the fee its specialist owes.
// Subscribed specialists owe nothing.
func billable(ctx context.Context, bookings repository.BookingRepository, catalog repository.CatalogRepository, bookingID string) (*models.Booking, *models.Specialist, float64, error) {
	b, err := bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("load booking %s: %w", bookingID, err)
	}
	if b.Status != models.StatusCompleted {
		return nil, nil, 0, fmt.Errorf("booking %s is %s, not COMPLETED", bookingID, b.Status)
	}
	sp, err := catalog.GetSpecialist(ctx, b.SpecialistID)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("load specialist %s: %w", b.SpecialistID, err)
	}
	if sp.SubscriptionActive {
		return b, sp, 0, nil
	}
	return b, sp, b.PlatformFeeAmount, nil
}

// RecordingFeeProcessor computes and logs the fee without charging anyone.
type RecordingFeeProcessor struct {
	Bookings repository.BookingRepository
	Catalog  repository.CatalogRepository
	Logger   *zap.Logger
}

func (p *RecordingFeeProcessor) OnBookingCompleted(ctx context.Context, bookingID string) (float64, error) {
	b, sp, fee, err := billable(ctx, p.Bookings, p.Catalog, bookingID)
	if err != nil {
		return 0, err
	}
	if p.Logger != nil {
		p.Logger.Info("platform fee recorded",
			zap.String("bookingId", b.ID),
			zap.String("specialistId", sp.ID),
			zap.Bool("subscribed", sp.SubscriptionActive),
			zap.Float64("fee", fee))
	}
	return fee, nil
}

// StripeFeeProcessor charges the platform fee to the specialist's saved card.
type StripeFeeProcessor struct {
	Bookings repository.BookingRepository
	Catalog  repository.CatalogRepository
	Currency string
	Logger   *zap.Logger

	charge func(*stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

func NewStripeFeeProcessor(bookings repository.BookingRepository, catalog repository.CatalogRepository, currency string, logger *zap.Logger) *StripeFeeProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StripeFeeProcessor{
		Bookings: bookings,
		Catalog:  catalog,
		Currency: currency,
		Logger:   logger,
		charge:   paymentintent.New,
	}
}

// IdempotencyKey names the single charge a booking may ever produce.
func IdempotencyKey(bookingID string) string {
	return "booking-fee-" + bookingID
}

// OnBookingCompleted charges the fee off-session. The idempotency key makes a
// retried call return the original charge instead of billing twice.
func (p *StripeFeeProcessor) OnBookingCompleted(ctx context.Context, bookingID string) (float64, error) {
	b, sp, fee, err := billable(ctx, p.Bookings, p.Catalog, bookingID)
	if err != nil {
		return 0, err
	}
	cents := decimal.NewFromFloat(fee).Shift(2).Round(0).IntPart()
	if cents <= 0 {
		return 0, nil
	}
	if sp.StripeCustomerID == "" || sp.StripePaymentMethodID == "" {
		return 0, fmt.Errorf("specialist %s has no saved payment method", sp.ID)
	}

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(cents),
		Currency:      stripe.String(p.Currency),
		Customer:      stripe.String(sp.StripeCustomerID),
		PaymentMethod: stripe.String(sp.StripePaymentMethodID),
		OffSession:    stripe.Bool(true),
		Confirm:       stripe.Bool(true),
		Description:   stripe.String(fmt.Sprintf("Platform fee for booking %s", b.ID)),
	}
	params.Context = ctx
	params.SetIdempotencyKey(IdempotencyKey(b.ID))
	params.AddMetadata("bookingId", b.ID)
	params.AddMetadata("specialistId", sp.ID)

	pi, err := p.charge(params)
	if err != nil {
		return 0, fmt.Errorf("stripe charge for booking %s: %w", b.ID, err)
	}
	p.Logger.Info("platform fee charged",
		zap.String("bookingId", b.ID),
		zap.String("paymentIntent", pi.ID),
		zap.String("status", string(pi.Status)),
		zap.Int64("amount", cents))
	return fee, nil
}
