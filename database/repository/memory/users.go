package memory

import (
	"context"
	"time"

	"bookly/database"
	"bookly/models"
)

type userRepo struct{ s *Store }

func (r *userRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	var out *models.User
	err := r.s.read(ctx, func(d *dataset) error {
		u, ok := d.users[id]
		if !ok {
			return database.ErrNotFound
		}
		out = &u
		return nil
	})
	return out, err
}

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	return r.s.write(ctx, func(d *dataset) error {
		if _, ok := d.users[user.ID]; ok {
			return database.ErrConflict
		}
		d.users[user.ID] = *user
		return nil
	})
}

func (r *userRepo) AdjustLoyaltyPoints(ctx context.Context, id string, delta int64) error {
	return r.s.write(ctx, func(d *dataset) error {
		u, ok := d.users[id]
		if !ok {
			return database.ErrNotFound
		}
		if u.LoyaltyPoints+delta < 0 {
			return database.ErrInsufficientBalance
		}
		u.LoyaltyPoints += delta
		u.UpdatedAt = time.Now()
		d.users[id] = u
		return nil
	})
}

func (r *userRepo) AdjustWallet(ctx context.Context, id string, delta float64) error {
	return r.s.write(ctx, func(d *dataset) error {
		u, ok := d.users[id]
		if !ok {
			return database.ErrNotFound
		}
		if u.WalletBalance+delta < 0 {
			return database.ErrInsufficientBalance
		}
		u.WalletBalance += delta
		u.UpdatedAt = time.Now()
		d.users[id] = u
		return nil
	})
}

type catalogRepo struct{ s *Store }

func (r *catalogRepo) CreateService(ctx context.Context, service *models.Service) error {
	return r.s.write(ctx, func(d *dataset) error {
		d.services[service.ID] = *service
		return nil
	})
}

func (r *catalogRepo) GetService(ctx context.Context, id string) (*models.Service, error) {
	var out *models.Service
	err := r.s.read(ctx, func(d *dataset) error {
		svc, ok := d.services[id]
		if !ok {
			return database.ErrNotFound
		}
		out = &svc
		return nil
	})
	return out, err
}

func (r *catalogRepo) CreateSpecialist(ctx context.Context, specialist *models.Specialist) error {
	return r.s.write(ctx, func(d *dataset) error {
		d.specialists[specialist.ID] = *specialist
		return nil
	})
}

func (r *catalogRepo) GetSpecialist(ctx context.Context, id string) (*models.Specialist, error) {
	var out *models.Specialist
	err := r.s.read(ctx, func(d *dataset) error {
		sp, ok := d.specialists[id]
		if !ok {
			return database.ErrNotFound
		}
		out = &sp
		return nil
	})
	return out, err
}

func (r *catalogRepo) GetSpecialistByUserID(ctx context.Context, userID string) (*models.Specialist, error) {
	var out *models.Specialist
	err := r.s.read(ctx, func(d *dataset) error {
		for _, sp := range d.specialists {
			if sp.UserID == userID {
				sp := sp
				out = &sp
				return nil
			}
		}
		return database.ErrNotFound
	})
	return out, err
}

func (r *catalogRepo) IncrementCompletedBookings(ctx context.Context, specialistID string) error {
	return r.s.write(ctx, func(d *dataset) error {
		sp, ok := d.specialists[specialistID]
		if !ok {
			return database.ErrNotFound
		}
		sp.CompletedBookings++
		sp.UpdatedAt = time.Now()
		d.specialists[specialistID] = sp
		return nil
	})
}
