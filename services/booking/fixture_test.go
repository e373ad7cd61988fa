package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"bookly/config"
	"bookly/database/repository"
	"bookly/database/repository/memory"
	"bookly/models"
	"bookly/services/catalog"
)

var baseNow = time.Date(2030, 3, 4, 8, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

type recordingNotifier struct {
	mu      sync.Mutex
	sent    []models.NotificationTask
	revoked []string
	err     error
}

func (n *recordingNotifier) Revoke(_ context.Context, key string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.revoked = append(n.revoked, key)
	return n.err
}

func (n *recordingNotifier) Send(_ context.Context, userID string, p models.NotificationPayload) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, models.NotificationTask{UserID: userID, Payload: p})
	return n.err
}

func (n *recordingNotifier) types(userID string) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []string
	for _, s := range n.sent {
		if s.UserID == userID {
			out = append(out, s.Payload.Type)
		}
	}
	return out
}

type fixture struct {
	t        *testing.T
	store    *memory.Store
	repos    *repository.Store
	clock    *fakeClock
	notifier *recordingNotifier
	svc      *DefaultBookingService
	ctx      context.Context
}

// Catalog used by every test:
//
//	sp-auto (user u-auto) autoBooking, service svc-auto: 100.00 / 60 min
//	sp-manual (user u-manual) manual confirm, service svc-manual: 100.00 / 60 min
//	customers c1 (1000 points), c2, inactive c-off
func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	store.SeedSpecialist(models.Specialist{ID: "sp-auto", UserID: "u-auto", AutoBooking: true})
	store.SeedSpecialist(models.Specialist{ID: "sp-manual", UserID: "u-manual"})
	store.SeedUser(models.User{ID: "u-auto", IsActive: true})
	store.SeedUser(models.User{ID: "u-manual", IsActive: true})
	store.SeedService(models.Service{ID: "svc-auto", SpecialistID: "sp-auto", Name: "Haircut", BasePrice: 100, Duration: 60, IsActive: true})
	store.SeedService(models.Service{ID: "svc-manual", SpecialistID: "sp-manual", Name: "Massage", BasePrice: 100, Duration: 60, IsActive: true})
	store.SeedUser(models.User{ID: "c1", IsActive: true, LoyaltyPoints: 1000})
	store.SeedUser(models.User{ID: "c2", IsActive: true})
	store.SeedUser(models.User{ID: "c-off", IsActive: false})

	repos := store.Repositories()
	clock := &fakeClock{t: baseNow}
	notifier := &recordingNotifier{}
	deps := Deps{
		Catalog:  catalog.NewCatalogService(repos.Catalog, repos.Users, nil, nil),
		Notifier: notifier,
		Policy:   config.DefaultPolicy(),
		Clock:    clock.Now,
	}.FromStore(repos)

	return &fixture{
		t:        t,
		store:    store,
		repos:    repos,
		clock:    clock,
		notifier: notifier,
		svc:      NewBookingService(deps),
		ctx:      context.Background(),
	}
}

// at returns a slot on the day after tomorrow.
func at(hour, minute int) time.Time {
	return time.Date(2030, 3, 6, hour, minute, 0, 0, time.UTC)
}

func (f *fixture) create(in CreateBookingInput) *models.Booking {
	f.t.Helper()
	b, err := f.svc.CreateBooking(f.ctx, in)
	if err != nil {
		f.t.Fatalf("CreateBooking(%+v): %v", in, err)
	}
	return b
}

func (f *fixture) user(id string) *models.User {
	f.t.Helper()
	u, err := f.repos.Users.GetByID(f.ctx, id)
	if err != nil {
		f.t.Fatal(err)
	}
	return u
}

func (f *fixture) booking(id string) *models.Booking {
	f.t.Helper()
	b, err := f.repos.Bookings.GetByID(f.ctx, id)
	if err != nil {
		f.t.Fatal(err)
	}
	return b
}

func (f *fixture) seedPercentReward(redemptionID, customerID string, percent float64) {
	f.store.SeedReward(models.Reward{ID: "rw-" + redemptionID, Name: "Percent off", Type: models.RewardPercentage, Value: percent})
	f.store.SeedRedemption(models.RewardRedemption{
		ID:         redemptionID,
		RewardID:   "rw-" + redemptionID,
		CustomerID: customerID,
		Status:     models.RedemptionApproved,
	})
}

func wantCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s, got nil", code)
	}
	if !IsCode(err, code) {
		var be *BookingError
		if errors.As(err, &be) {
			t.Fatalf("expected %s, got %s (%s)", code, be.Code, be.Message)
		}
		t.Fatalf("expected %s, got %v", code, err)
	}
}

func approx(a, b float64) bool {
	d := a - b
	return d < 0.0001 && d > -0.0001
}
