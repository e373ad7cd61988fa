package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"bookly/models"
	"bookly/services/referral"
)

func TestCreateBookingPricesAndSpendsPoints(t *testing.T) {
	f := newFixture(t)
	f.seedPercentReward("rd-20", "c1", 20)

	b := f.create(CreateBookingInput{
		CustomerID:         "c1",
		ServiceID:          "svc-auto",
		ScheduledAt:        at(10, 0),
		LoyaltyPointsUsed:  500,
		RewardRedemptionID: "rd-20",
		CustomerNotes:      "first visit",
	})

	if b.Status != models.StatusConfirmed || b.ConfirmedAt == nil {
		t.Errorf("auto-booking specialist: status %s confirmedAt %v", b.Status, b.ConfirmedAt)
	}
	if b.Duration != 60 {
		t.Errorf("duration = %d, want service default 60", b.Duration)
	}
	if b.LoyaltyDiscount != 5 || b.RewardDiscount != 19 || b.TotalAmount != 76 {
		t.Errorf("discounts = %v/%v total %v", b.LoyaltyDiscount, b.RewardDiscount, b.TotalAmount)
	}
	if b.DepositAmount != 15.20 || b.RemainingAmount != 60.80 || b.PlatformFeeAmount != 3.80 || b.SpecialistEarnings != 72.20 {
		t.Errorf("split = %+v", b)
	}

	if got := f.user("c1").LoyaltyPoints; got != 500 {
		t.Errorf("points = %d, want 500", got)
	}
	hist, _ := f.repos.Ledger.LoyaltyHistory(f.ctx, "c1")
	if len(hist) != 1 || hist[0].Type != models.LoyaltyRedeemed || hist[0].Delta != -500 || hist[0].BookingID != b.ID {
		t.Errorf("loyalty ledger = %+v", hist)
	}

	rd, _ := f.repos.Rewards.GetRedemption(f.ctx, "rd-20")
	if rd.Status != models.RedemptionUsed || rd.BookingID != b.ID || rd.DiscountApplied != 19 || rd.UsedAt == nil {
		t.Errorf("redemption = %+v", rd)
	}

	if types := f.notifier.types("c1"); len(types) != 2 || types[0] != NotifyBookingConfirmed || types[1] != NotifyBookingReminder {
		t.Errorf("customer notifications = %v", types)
	}
	if types := f.notifier.types("u-auto"); len(types) != 1 || types[0] != NotifyBookingCreated {
		t.Errorf("specialist notifications = %v", types)
	}
}

func TestCreateBookingManualSpecialistStartsPending(t *testing.T) {
	f := newFixture(t)
	b := f.create(CreateBookingInput{CustomerID: "c1", ServiceID: "svc-manual", ScheduledAt: at(10, 0), Duration: 45})
	if b.Status != models.StatusPending || b.ConfirmedAt != nil {
		t.Errorf("status %s confirmedAt %v", b.Status, b.ConfirmedAt)
	}
	if b.Duration != 45 {
		t.Errorf("duration = %d, want 45", b.Duration)
	}
}

func TestCreateBookingChargesOnlyPointsItCanUse(t *testing.T) {
	f := newFixture(t)
	f.store.SeedUser(models.User{ID: "saver", IsActive: true, LoyaltyPoints: 15000})

	b := f.create(CreateBookingInput{CustomerID: "saver", ServiceID: "svc-auto", ScheduledAt: at(10, 0), LoyaltyPointsUsed: 12000})
	if b.LoyaltyPointsUsed != 10000 || b.LoyaltyDiscount != 100 || b.TotalAmount != 0 {
		t.Errorf("points used %d discount %v total %v", b.LoyaltyPointsUsed, b.LoyaltyDiscount, b.TotalAmount)
	}
	if got := f.user("saver").LoyaltyPoints; got != 5000 {
		t.Errorf("points = %d, want 5000", got)
	}
	hist, _ := f.repos.Ledger.LoyaltyHistory(f.ctx, "saver")
	if len(hist) != 1 || hist[0].Delta != -10000 {
		t.Errorf("loyalty ledger = %+v", hist)
	}

	if _, err := f.svc.CancelBooking(f.ctx, b.ID, "saver", ""); err != nil {
		t.Fatal(err)
	}
	if got := f.user("saver").LoyaltyPoints; got != 15000 {
		t.Errorf("points after cancel = %d, want 15000", got)
	}
}

func TestCreateBookingRejections(t *testing.T) {
	f := newFixture(t)
	f.store.SeedService(models.Service{ID: "svc-deleted", SpecialistID: "sp-auto", BasePrice: 10, Duration: 30, IsActive: true, IsDeleted: true})

	tests := []struct {
		name string
		in   CreateBookingInput
		code string
		kind ErrorKind
	}{
		{"missing customer", CreateBookingInput{ServiceID: "svc-auto", ScheduledAt: at(10, 0)}, CodeInvalidInput, KindValidation},
		{"missing service", CreateBookingInput{CustomerID: "c1", ScheduledAt: at(10, 0)}, CodeInvalidInput, KindValidation},
		{"in the past", CreateBookingInput{CustomerID: "c1", ServiceID: "svc-auto", ScheduledAt: baseNow.Add(-time.Hour)}, CodeScheduledInPast, KindValidation},
		{"right now", CreateBookingInput{CustomerID: "c1", ServiceID: "svc-auto", ScheduledAt: baseNow}, CodeScheduledInPast, KindValidation},
		{"negative duration", CreateBookingInput{CustomerID: "c1", ServiceID: "svc-auto", ScheduledAt: at(10, 0), Duration: -5}, CodeInvalidDuration, KindValidation},
		{"too long", CreateBookingInput{CustomerID: "c1", ServiceID: "svc-auto", ScheduledAt: at(10, 0), Duration: 1441}, CodeInvalidDuration, KindValidation},
		{"negative points", CreateBookingInput{CustomerID: "c1", ServiceID: "svc-auto", ScheduledAt: at(10, 0), LoyaltyPointsUsed: -1}, CodeInvalidInput, KindValidation},
		{"unknown service", CreateBookingInput{CustomerID: "c1", ServiceID: "nope", ScheduledAt: at(10, 0)}, CodeServiceNotFound, KindNotFound},
		{"deleted service", CreateBookingInput{CustomerID: "c1", ServiceID: "svc-deleted", ScheduledAt: at(10, 0)}, CodeServiceNotFound, KindNotFound},
		{"unknown customer", CreateBookingInput{CustomerID: "ghost", ServiceID: "svc-auto", ScheduledAt: at(10, 0)}, CodeCustomerNotFound, KindNotFound},
		{"inactive customer", CreateBookingInput{CustomerID: "c-off", ServiceID: "svc-auto", ScheduledAt: at(10, 0)}, CodeCustomerNotActive, KindAuthorization},
		{"own service", CreateBookingInput{CustomerID: "u-auto", ServiceID: "svc-auto", ScheduledAt: at(10, 0)}, CodeCannotBookOwnService, KindBusinessRule},
		{"not enough points", CreateBookingInput{CustomerID: "c2", ServiceID: "svc-auto", ScheduledAt: at(10, 0), LoyaltyPointsUsed: 1}, CodeInsufficientLoyaltyPoints, KindBusinessRule},
		{"unknown redemption", CreateBookingInput{CustomerID: "c1", ServiceID: "svc-auto", ScheduledAt: at(10, 0), RewardRedemptionID: "nope"}, CodeRedemptionNotFound, KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateBooking(f.ctx, tt.in)
			wantCode(t, err, tt.code)
			be, _ := AsBookingError(err)
			if be.Kind != tt.kind {
				t.Errorf("kind = %s, want %s", be.Kind, tt.kind)
			}
		})
	}

	if got := f.user("c1").LoyaltyPoints; got != 1000 {
		t.Errorf("failed creations moved points: %d", got)
	}
	page, _ := f.svc.GetUserBookings(f.ctx, UserBookingsQuery{UserID: "c1"})
	if page.Total != 0 {
		t.Errorf("failed creations left %d bookings", page.Total)
	}
}

func TestDuplicatePrevention(t *testing.T) {
	f := newFixture(t)
	in := CreateBookingInput{CustomerID: "c1", ServiceID: "svc-auto", ScheduledAt: at(10, 0)}
	first := f.create(in)

	_, err := f.svc.CreateBooking(f.ctx, in)
	wantCode(t, err, CodeDuplicateBooking)

	if _, err := f.svc.CancelBooking(f.ctx, first.ID, "c1", ""); err != nil {
		t.Fatal(err)
	}
	f.create(in)
}

func TestRewardRedemptionSingleUse(t *testing.T) {
	f := newFixture(t)
	f.seedPercentReward("rd-once", "c1", 10)

	f.create(CreateBookingInput{CustomerID: "c1", ServiceID: "svc-auto", ScheduledAt: at(10, 0), RewardRedemptionID: "rd-once"})
	_, err := f.svc.CreateBooking(f.ctx, CreateBookingInput{CustomerID: "c1", ServiceID: "svc-auto", ScheduledAt: at(14, 0), RewardRedemptionID: "rd-once"})
	wantCode(t, err, CodeRedemptionNotApproved)
}

func TestRedemptionAutoDiscoveryPicksBest(t *testing.T) {
	f := newFixture(t)
	soon := baseNow.Add(48 * time.Hour)
	later := baseNow.Add(96 * time.Hour)
	f.store.SeedReward(models.Reward{ID: "rw-5", Type: models.RewardFixedVoucher, Value: 5})
	f.store.SeedReward(models.Reward{ID: "rw-25", Type: models.RewardFixedVoucher, Value: 25})
	f.store.SeedReward(models.Reward{ID: "rw-other", Type: models.RewardPercentage, Value: 90, SpecialistID: "sp-manual"})
	f.store.SeedRedemption(models.RewardRedemption{ID: "rd-small", RewardID: "rw-5", CustomerID: "c1", Status: models.RedemptionApproved})
	f.store.SeedRedemption(models.RewardRedemption{ID: "rd-big-late", RewardID: "rw-25", CustomerID: "c1", Status: models.RedemptionApproved, ExpiresAt: &later})
	f.store.SeedRedemption(models.RewardRedemption{ID: "rd-big-soon", RewardID: "rw-25", CustomerID: "c1", Status: models.RedemptionApproved, ExpiresAt: &soon})
	f.store.SeedRedemption(models.RewardRedemption{ID: "rd-elsewhere", RewardID: "rw-other", CustomerID: "c1", Status: models.RedemptionApproved})

	b := f.create(CreateBookingInput{CustomerID: "c1", ServiceID: "svc-auto", ScheduledAt: at(10, 0)})
	if b.RewardRedemptionID != "rd-big-soon" || b.RewardDiscount != 25 || b.TotalAmount != 75 {
		t.Errorf("picked %s discount %v total %v", b.RewardRedemptionID, b.RewardDiscount, b.TotalAmount)
	}
}

func TestConfirmBooking(t *testing.T) {
	f := newFixture(t)
	b := f.create(CreateBookingInput{CustomerID: "c1", ServiceID: "svc-manual", ScheduledAt: at(10, 0)})

	_, err := f.svc.ConfirmBooking(f.ctx, b.ID, "u-auto")
	wantCode(t, err, CodeSpecialistNotAuthorized)
	_, err = f.svc.ConfirmBooking(f.ctx, "missing", "u-manual")
	wantCode(t, err, CodeBookingNotFound)

	confirmed, err := f.svc.ConfirmBooking(f.ctx, b.ID, "u-manual")
	if err != nil {
		t.Fatal(err)
	}
	if confirmed.Status != models.StatusConfirmed || confirmed.ConfirmedAt == nil || !confirmed.ConfirmedAt.Equal(baseNow) {
		t.Errorf("confirmed = %+v", confirmed)
	}

	_, err = f.svc.ConfirmBooking(f.ctx, b.ID, "u-manual")
	wantCode(t, err, CodeBookingNotPending)
}

func TestTransitionStampsServiceClock(t *testing.T) {
	f := newFixture(t)
	b := f.create(CreateBookingInput{CustomerID: "c1", ServiceID: "svc-manual", ScheduledAt: at(10, 0)})

	later := baseNow.Add(3 * time.Hour)
	f.clock.Set(later)
	if _, err := f.svc.ConfirmBooking(f.ctx, b.ID, "u-manual"); err != nil {
		t.Fatal(err)
	}
	stored := f.booking(b.ID)
	if !stored.UpdatedAt.Equal(later) || !stored.CreatedAt.Equal(baseNow) {
		t.Errorf("createdAt %v updatedAt %v, want %v and %v", stored.CreatedAt, stored.UpdatedAt, baseNow, later)
	}
}

func TestRejectBookingRefundsAsSpecialistCancellation(t *testing.T) {
	f := newFixture(t)
	b := f.create(CreateBookingInput{CustomerID: "c1", ServiceID: "svc-manual", ScheduledAt: baseNow.Add(2 * time.Hour), LoyaltyPointsUsed: 200})

	rejected, err := f.svc.RejectBooking(f.ctx, b.ID, "u-manual", "fully booked")
	if err != nil {
		t.Fatalf("reject within the lead time should be allowed: %v", err)
	}
	if rejected.Status != models.StatusCancelled || rejected.CancelledBy != models.CancelledBySpecialist {
		t.Errorf("rejected = %+v", rejected)
	}
	if rejected.CancellationReason != "fully booked" || rejected.RefundAmount != rejected.DepositAmount {
		t.Errorf("reason %q refund %v deposit %v", rejected.CancellationReason, rejected.RefundAmount, rejected.DepositAmount)
	}
	if got := f.user("c1"); got.LoyaltyPoints != 1000 || got.WalletBalance != rejected.DepositAmount {
		t.Errorf("customer = points %d wallet %v", got.LoyaltyPoints, got.WalletBalance)
	}

	_, err = f.svc.RejectBooking(f.ctx, b.ID, "u-manual", "")
	wantCode(t, err, CodeBookingNotPending)
}

func TestCancellationRefundAsymmetry(t *testing.T) {
	f := newFixture(t)
	bySpecialist := f.create(CreateBookingInput{CustomerID: "c1", ServiceID: "svc-auto", ScheduledAt: at(10, 0), LoyaltyPointsUsed: 500})
	byCustomer := f.create(CreateBookingInput{CustomerID: "c1", ServiceID: "svc-auto", ScheduledAt: at(14, 0), LoyaltyPointsUsed: 500})
	if got := f.user("c1").LoyaltyPoints; got != 0 {
		t.Fatalf("points after two bookings = %d, want 0", got)
	}

	cancelled, err := f.svc.CancelBooking(f.ctx, bySpecialist.ID, "u-auto", "sick")
	if err != nil {
		t.Fatal(err)
	}
	if cancelled.CancelledBy != models.CancelledBySpecialist || cancelled.RefundAmount != 19 {
		t.Errorf("specialist cancel: by %s refund %v", cancelled.CancelledBy, cancelled.RefundAmount)
	}
	c1 := f.user("c1")
	if c1.WalletBalance != 19 || c1.LoyaltyPoints != 500 {
		t.Errorf("after specialist cancel: wallet %v points %d", c1.WalletBalance, c1.LoyaltyPoints)
	}

	cancelled, err = f.svc.CancelBooking(f.ctx, byCustomer.ID, "c1", "changed plans")
	if err != nil {
		t.Fatal(err)
	}
	if cancelled.CancelledBy != models.CancelledByCustomer || cancelled.RefundAmount != 0 {
		t.Errorf("customer cancel: by %s refund %v", cancelled.CancelledBy, cancelled.RefundAmount)
	}
	c1 = f.user("c1")
	if c1.WalletBalance != 19 || c1.LoyaltyPoints != 1000 {
		t.Errorf("after customer cancel: wallet %v points %d", c1.WalletBalance, c1.LoyaltyPoints)
	}

	wallet, _ := f.repos.Ledger.WalletHistory(f.ctx, "c1")
	if len(wallet) != 1 || wallet[0].Type != models.WalletRefund || wallet[0].Delta != 19 {
		t.Errorf("wallet ledger = %+v", wallet)
	}
	loyalty, _ := f.repos.Ledger.LoyaltyHistory(f.ctx, "c1")
	var earned int64
	for _, tx := range loyalty {
		if tx.Type == models.LoyaltyEarned {
			earned += tx.Delta
		}
	}
	if earned != 1000 {
		t.Errorf("restored points = %d, want 1000", earned)
	}

	_, err = f.svc.CancelBooking(f.ctx, byCustomer.ID, "c1", "again")
	wantCode(t, err, CodeCancellationNotAllowed)
	if f.user("c1").LoyaltyPoints != 1000 {
		t.Error("second cancellation moved points")
	}
}

func TestCancellationLeadTimeBoundary(t *testing.T) {
	f := newFixture(t)
	onTime := f.create(CreateBookingInput{CustomerID: "c1", ServiceID: "svc-auto", ScheduledAt: at(10, 0)})
	late := f.create(CreateBookingInput{CustomerID: "c1", ServiceID: "svc-auto", ScheduledAt: at(14, 0)})

	f.clock.Set(onTime.ScheduledAt.Add(-24 * time.Hour))
	if _, err := f.svc.CancelBooking(f.ctx, onTime.ID, "c1", ""); err != nil {
		t.Errorf("cancel at exactly 24h: %v", err)
	}

	f.clock.Set(late.ScheduledAt.Add(-(23*time.Hour + 59*time.Minute)))
	_, err := f.svc.CancelBooking(f.ctx, late.ID, "c1", "")
	wantCode(t, err, CodeCancellationTooLate)
}

func TestCancelAuthorization(t *testing.T) {
	f := newFixture(t)
	b := f.create(CreateBookingInput{CustomerID: "c1", ServiceID: "svc-auto", ScheduledAt: at(10, 0)})

	_, err := f.svc.CancelBooking(f.ctx, b.ID, "c2", "")
	wantCode(t, err, CodeCancellationNotAuthorized)
	_, err = f.svc.CancelBooking(f.ctx, b.ID, "u-manual", "")
	wantCode(t, err, CodeCancellationNotAuthorized)
}

func TestCompleteBookingStateGuards(t *testing.T) {
	f := newFixture(t)
	pending := f.create(CreateBookingInput{CustomerID: "c1", ServiceID: "svc-manual", ScheduledAt: at(10, 0)})
	_, err := f.svc.CompleteBookingWithPayment(f.ctx, pending.ID, "u-manual", true, "")
	wantCode(t, err, CodeBookingNotInProgress)

	confirmed := f.create(CreateBookingInput{CustomerID: "c1", ServiceID: "svc-auto", ScheduledAt: at(10, 0)})
	_, err = f.svc.CompleteBookingWithPayment(f.ctx, confirmed.ID, "u-auto", false, "")
	wantCode(t, err, CodePaymentNotConfirmed)
	_, err = f.svc.CompleteBookingWithPayment(f.ctx, confirmed.ID, "u-manual", true, "")
	wantCode(t, err, CodeSpecialistNotAuthorized)

	done, err := f.svc.CompleteBookingWithPayment(f.ctx, confirmed.ID, "u-auto", true, "all good")
	if err != nil {
		t.Fatal(err)
	}
	if done.Status != models.StatusCompleted || done.CompletedAt == nil || !done.PaymentConfirmed || done.SpecialistNotes != "all good" {
		t.Errorf("completed = %+v", done)
	}
	if done.LoyaltyPointsEarned != 100 || f.user("c1").LoyaltyPoints != 1100 {
		t.Errorf("earned %d, balance %d", done.LoyaltyPointsEarned, f.user("c1").LoyaltyPoints)
	}
	sp, _ := f.repos.Catalog.GetSpecialist(f.ctx, "sp-auto")
	if sp.CompletedBookings != 1 {
		t.Errorf("completedBookings = %d, want 1", sp.CompletedBookings)
	}

	_, err = f.svc.CompleteBookingWithPayment(f.ctx, confirmed.ID, "u-auto", true, "")
	wantCode(t, err, CodeBookingNotInProgress)
	if f.user("c1").LoyaltyPoints != 1100 {
		t.Error("second completion awarded points again")
	}
	_, err = f.svc.CancelBooking(f.ctx, confirmed.ID, "c1", "")
	wantCode(t, err, CodeCancellationNotAllowed)
}

func TestStartThenComplete(t *testing.T) {
	f := newFixture(t)
	b := f.create(CreateBookingInput{CustomerID: "c1", ServiceID: "svc-auto", ScheduledAt: at(10, 0)})

	started, err := f.svc.StartBooking(f.ctx, b.ID, "u-auto")
	if err != nil {
		t.Fatal(err)
	}
	if started.Status != models.StatusInProgress || started.StartedAt == nil {
		t.Errorf("started = %+v", started)
	}
	_, err = f.svc.StartBooking(f.ctx, b.ID, "u-auto")
	wantCode(t, err, CodeBookingNotConfirmed)

	// in-progress bookings can no longer be cancelled through CancelBooking
	_, err = f.svc.CancelBooking(f.ctx, b.ID, "c1", "")
	wantCode(t, err, CodeCancellationNotAllowed)

	if _, err := f.svc.CompleteBookingWithPayment(f.ctx, b.ID, "u-auto", true, ""); err != nil {
		t.Fatal(err)
	}
}

type failingFees struct{ calls int }

func (f *failingFees) OnBookingCompleted(context.Context, string) (float64, error) {
	f.calls++
	return 0, errors.New("card declined")
}

func TestSideEffectFailuresDoNotFailCompletion(t *testing.T) {
	f := newFixture(t)
	fees := &failingFees{}
	f.svc.Fees = fees
	f.notifier.err = errors.New("push down")

	b := f.create(CreateBookingInput{CustomerID: "c1", ServiceID: "svc-auto", ScheduledAt: at(10, 0)})
	done, err := f.svc.CompleteBookingWithPayment(f.ctx, b.ID, "u-auto", true, "")
	if err != nil {
		t.Fatalf("post-commit failures leaked: %v", err)
	}
	if done.Status != models.StatusCompleted || fees.calls != 1 {
		t.Errorf("status %s, fee calls %d", done.Status, fees.calls)
	}
	if f.booking(b.ID).Status != models.StatusCompleted {
		t.Error("completion was not persisted")
	}
}

func TestReferralCompletesOnFirstBooking(t *testing.T) {
	f := newFixture(t)
	f.store.SeedUser(models.User{ID: "referrer", IsActive: true})
	f.store.SeedUser(models.User{ID: "friend", IsActive: true})
	f.store.SeedReferral(models.Referral{ID: "ref-1", ReferrerID: "referrer", ReferredID: "friend", Status: models.ReferralPending})
	f.svc.Referral = referral.NewProcessor(f.repos, 500, nil)

	first := f.create(CreateBookingInput{CustomerID: "friend", ServiceID: "svc-auto", ScheduledAt: at(10, 0)})
	ref, _ := f.repos.Referrals.GetByID(f.ctx, "ref-1")
	if ref.FirstBookingID != first.ID {
		t.Fatalf("first booking not tracked: %+v", ref)
	}

	// Cancelling releases the tracking so the next booking takes its place.
	if _, err := f.svc.CancelBooking(f.ctx, first.ID, "friend", ""); err != nil {
		t.Fatal(err)
	}
	second := f.create(CreateBookingInput{CustomerID: "friend", ServiceID: "svc-auto", ScheduledAt: at(12, 0)})
	ref, _ = f.repos.Referrals.GetByID(f.ctx, "ref-1")
	if ref.FirstBookingID != second.ID {
		t.Fatalf("tracking = %q, want %q", ref.FirstBookingID, second.ID)
	}

	if _, err := f.svc.CompleteBookingWithPayment(f.ctx, second.ID, "u-auto", true, ""); err != nil {
		t.Fatal(err)
	}
	ref, _ = f.repos.Referrals.GetByID(f.ctx, "ref-1")
	if ref.Status != models.ReferralCompleted {
		t.Errorf("referral status = %s", ref.Status)
	}
	if got := f.user("referrer").LoyaltyPoints; got != 500 {
		t.Errorf("referrer points = %d, want 500", got)
	}
}

func TestReferralMovesToRemainingBookingOnCancel(t *testing.T) {
	f := newFixture(t)
	f.store.SeedUser(models.User{ID: "referrer", IsActive: true})
	f.store.SeedUser(models.User{ID: "friend", IsActive: true})
	f.store.SeedReferral(models.Referral{ID: "ref-1", ReferrerID: "referrer", ReferredID: "friend", Status: models.ReferralPending})
	f.svc.Referral = referral.NewProcessor(f.repos, 500, nil)

	first := f.create(CreateBookingInput{CustomerID: "friend", ServiceID: "svc-auto", ScheduledAt: at(10, 0)})
	later := f.create(CreateBookingInput{CustomerID: "friend", ServiceID: "svc-auto", ScheduledAt: at(15, 0)})
	second := f.create(CreateBookingInput{CustomerID: "friend", ServiceID: "svc-auto", ScheduledAt: at(12, 0)})

	if _, err := f.svc.CancelBooking(f.ctx, first.ID, "friend", ""); err != nil {
		t.Fatal(err)
	}
	ref, _ := f.repos.Referrals.GetByID(f.ctx, "ref-1")
	if ref.FirstBookingID != second.ID {
		t.Fatalf("tracking = %q, want earliest remaining booking %q", ref.FirstBookingID, second.ID)
	}

	if _, err := f.svc.CompleteBookingWithPayment(f.ctx, second.ID, "u-auto", true, ""); err != nil {
		t.Fatal(err)
	}
	ref, _ = f.repos.Referrals.GetByID(f.ctx, "ref-1")
	if ref.Status != models.ReferralCompleted {
		t.Errorf("referral status = %s, want COMPLETED", ref.Status)
	}
	if got := f.user("referrer").LoyaltyPoints; got != 500 {
		t.Errorf("referrer points = %d, want 500", got)
	}

	// The bonus is paid once.
	if _, err := f.svc.CompleteBookingWithPayment(f.ctx, later.ID, "u-auto", true, ""); err != nil {
		t.Fatal(err)
	}
	if got := f.user("referrer").LoyaltyPoints; got != 500 {
		t.Errorf("referrer points after second completion = %d, want 500", got)
	}
}

func TestUntrackedReferralCompletesOnNextCompletion(t *testing.T) {
	f := newFixture(t)
	f.store.SeedUser(models.User{ID: "referrer", IsActive: true})
	f.store.SeedUser(models.User{ID: "friend", IsActive: true})
	f.store.SeedReferral(models.Referral{ID: "ref-1", ReferrerID: "referrer", ReferredID: "friend", Status: models.ReferralPending})
	f.store.SeedBooking(models.Booking{
		ID:           "b-old",
		CustomerID:   "friend",
		SpecialistID: "sp-auto",
		ServiceID:    "svc-auto",
		ScheduledAt:  at(9, 0),
		Duration:     60,
		Status:       models.StatusConfirmed,
		TotalAmount:  100,
	})
	f.svc.Referral = referral.NewProcessor(f.repos, 500, nil)

	if _, err := f.svc.CompleteBookingWithPayment(f.ctx, "b-old", "u-auto", true, ""); err != nil {
		t.Fatal(err)
	}
	ref, _ := f.repos.Referrals.GetByID(f.ctx, "ref-1")
	if ref.Status != models.ReferralCompleted || ref.FirstBookingID != "b-old" {
		t.Errorf("referral = %+v", ref)
	}
	if got := f.user("referrer").LoyaltyPoints; got != 500 {
		t.Errorf("referrer points = %d, want 500", got)
	}
}

func TestCancellationRevokesReminder(t *testing.T) {
	f := newFixture(t)
	b := f.create(CreateBookingInput{CustomerID: "c1", ServiceID: "svc-auto", ScheduledAt: at(10, 0)})

	var reminder *models.NotificationPayload
	for _, n := range f.notifier.sent {
		if n.Payload.Type == NotifyBookingReminder {
			p := n.Payload
			reminder = &p
		}
	}
	if reminder == nil {
		t.Fatal("no reminder scheduled")
	}
	if reminder.Key != ReminderKey(b.ID) || reminder.BookingID != b.ID {
		t.Errorf("reminder key %q booking %q", reminder.Key, reminder.BookingID)
	}
	if reminder.StillDeliverable(models.StatusCancelled) || !reminder.StillDeliverable(models.StatusConfirmed) {
		t.Errorf("reminder condition = %v", reminder.OnlyIfStatus)
	}

	if _, err := f.svc.CancelBooking(f.ctx, b.ID, "c1", ""); err != nil {
		t.Fatal(err)
	}
	if len(f.notifier.revoked) != 1 || f.notifier.revoked[0] != ReminderKey(b.ID) {
		t.Errorf("revoked = %v, want [%s]", f.notifier.revoked, ReminderKey(b.ID))
	}

	// A rejected booking was never confirmed, so there is nothing to revoke.
	pending := f.create(CreateBookingInput{CustomerID: "c2", ServiceID: "svc-manual", ScheduledAt: at(10, 0)})
	if _, err := f.svc.RejectBooking(f.ctx, pending.ID, "u-manual", ""); err != nil {
		t.Fatal(err)
	}
	if len(f.notifier.revoked) != 1 {
		t.Errorf("revoked = %v after reject", f.notifier.revoked)
	}
}

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to models.BookingStatus }{
		{models.StatusPending, models.StatusConfirmed},
		{models.StatusPending, models.StatusPendingPayment},
		{models.StatusPendingPayment, models.StatusConfirmed},
		{models.StatusConfirmed, models.StatusInProgress},
		{models.StatusConfirmed, models.StatusCompleted},
		{models.StatusInProgress, models.StatusCancelled},
	}
	for _, tr := range allowed {
		if !CanTransition(tr.from, tr.to) {
			t.Errorf("%s -> %s should be allowed", tr.from, tr.to)
		}
	}
	denied := []struct{ from, to models.BookingStatus }{
		{models.StatusPending, models.StatusCompleted},
		{models.StatusPending, models.StatusInProgress},
		{models.StatusCompleted, models.StatusCancelled},
		{models.StatusCancelled, models.StatusConfirmed},
		{models.StatusInProgress, models.StatusConfirmed},
	}
	for _, tr := range denied {
		if CanTransition(tr.from, tr.to) {
			t.Errorf("%s -> %s should be denied", tr.from, tr.to)
		}
	}
}
