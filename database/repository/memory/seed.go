package memory

import (
	"context"

	"bookly/models"
)

// Seed helpers insert fixtures directly, bypassing the ledger. They are meant
// for tests and for bootstrapping a memory-mode server.

func (s *Store) SeedUser(u models.User) {
	_ = s.write(context.Background(), func(d *dataset) error {
		d.users[u.ID] = u
		return nil
	})
}

func (s *Store) SeedSpecialist(sp models.Specialist) {
	_ = s.write(context.Background(), func(d *dataset) error {
		d.specialists[sp.ID] = sp
		return nil
	})
}

func (s *Store) SeedService(svc models.Service) {
	_ = s.write(context.Background(), func(d *dataset) error {
		d.services[svc.ID] = svc
		return nil
	})
}

func (s *Store) SeedReward(rw models.Reward) {
	_ = s.write(context.Background(), func(d *dataset) error {
		d.rewards[rw.ID] = rw
		return nil
	})
}

func (s *Store) SeedRedemption(rd models.RewardRedemption) {
	_ = s.write(context.Background(), func(d *dataset) error {
		d.redemptions[rd.ID] = rd
		return nil
	})
}

func (s *Store) SeedReferral(ref models.Referral) {
	_ = s.write(context.Background(), func(d *dataset) error {
		d.referrals[ref.ID] = ref
		return nil
	})
}

func (s *Store) SeedBooking(b models.Booking) {
	_ = s.write(context.Background(), func(d *dataset) error {
		d.bookings[b.ID] = b
		return nil
	})
}
