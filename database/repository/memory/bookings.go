package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"bookly/database"
	schedulerRepo "bookly/database/repository/scheduler"
	"bookly/models"
)

type bookingRepo struct{ s *Store }

func (r *bookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	return r.s.write(ctx, func(d *dataset) error {
		if _, ok := d.bookings[booking.ID]; ok {
			return database.ErrConflict
		}
		d.bookings[booking.ID] = *booking
		return nil
	})
}

func (r *bookingRepo) GetByID(ctx context.Context, bookingID string) (*models.Booking, error) {
	var out *models.Booking
	err := r.s.read(ctx, func(d *dataset) error {
		b, ok := d.bookings[bookingID]
		if !ok {
			return database.ErrNotFound
		}
		out = &b
		return nil
	})
	return out, err
}

func (r *bookingRepo) UpdateGuarded(ctx context.Context, booking *models.Booking, expected models.BookingStatus) error {
	return r.s.write(ctx, func(d *dataset) error {
		cur, ok := d.bookings[booking.ID]
		if !ok || cur.Status != expected {
			return database.ErrConflict
		}
		d.bookings[booking.ID] = *booking
		return nil
	})
}

func (r *bookingRepo) FindDuplicate(ctx context.Context, customerID, serviceID string, at time.Time) (*models.Booking, error) {
	var out *models.Booking
	err := r.s.read(ctx, func(d *dataset) error {
		for _, b := range d.bookings {
			if b.CustomerID == customerID && b.ServiceID == serviceID &&
				b.ScheduledAt.Equal(at) && b.Status != models.StatusCancelled {
				b := b
				out = &b
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *bookingRepo) FindLiveInWindow(ctx context.Context, specialistID string, from, to time.Time) ([]models.Booking, error) {
	var out []models.Booking
	err := r.s.read(ctx, func(d *dataset) error {
		for _, b := range d.bookings {
			if b.SpecialistID == specialistID && b.Status.IsLive() &&
				b.ScheduledAt.After(from) && b.ScheduledAt.Before(to) {
				out = append(out, b)
			}
		}
		return nil
	})
	return out, err
}

func (r *bookingRepo) EarliestLiveForCustomer(ctx context.Context, customerID, excludeID string) (*models.Booking, error) {
	var out *models.Booking
	err := r.s.read(ctx, func(d *dataset) error {
		for _, b := range d.bookings {
			if b.CustomerID != customerID || b.ID == excludeID || !b.Status.IsLive() {
				continue
			}
			if out == nil || b.ScheduledAt.Before(out.ScheduledAt) ||
				(b.ScheduledAt.Equal(out.ScheduledAt) && b.ID < out.ID) {
				b := b
				out = &b
			}
		}
		return nil
	})
	return out, err
}

func (r *bookingRepo) List(ctx context.Context, q models.BookingQuery) ([]models.Booking, int64, error) {
	var matched []models.Booking
	err := r.s.read(ctx, func(d *dataset) error {
		for _, b := range d.bookings {
			if q.CustomerID != "" && b.CustomerID != q.CustomerID {
				continue
			}
			if q.SpecialistID != "" && b.SpecialistID != q.SpecialistID {
				continue
			}
			if q.Status != "" && b.Status != q.Status {
				continue
			}
			matched = append(matched, b)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].ScheduledAt.Equal(matched[j].ScheduledAt) {
			return matched[i].ScheduledAt.After(matched[j].ScheduledAt)
		}
		return matched[i].ID < matched[j].ID
	})

	total := int64(len(matched))
	start := (q.Page - 1) * q.Limit
	if start < 0 || start >= len(matched) {
		return []models.Booking{}, total, nil
	}
	end := start + q.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *bookingRepo) Stats(ctx context.Context, specialistID string, from, to *time.Time) (*models.SpecialistStats, error) {
	byStatus := map[models.BookingStatus]*schedulerRepo.StatusAggregate{}
	err := r.s.read(ctx, func(d *dataset) error {
		for _, b := range d.bookings {
			if b.SpecialistID != specialistID {
				continue
			}
			if from != nil && b.ScheduledAt.Before(*from) {
				continue
			}
			if to != nil && !b.ScheduledAt.Before(*to) {
				continue
			}
			row, ok := byStatus[b.Status]
			if !ok {
				row = &schedulerRepo.StatusAggregate{Status: b.Status}
				byStatus[b.Status] = row
			}
			row.Count++
			row.Total += b.TotalAmount
			row.Earnings += b.SpecialistEarnings
			row.Fees += b.PlatformFeeAmount
			row.Deposits += b.DepositAmount
			row.Refunds += b.RefundAmount
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	rows := make([]schedulerRepo.StatusAggregate, 0, len(byStatus))
	for _, row := range byStatus {
		rows = append(rows, *row)
	}
	return schedulerRepo.FoldStats(specialistID, from, to, rows), nil
}

type slotLocker struct{ s *Store }

// Acquire records the buckets on the transaction. Transactions are already
// serialised, so holding the key for the transaction's lifetime is enough.
func (l *slotLocker) Acquire(ctx context.Context, specialistID string, buckets []int64) error {
	st := l.s.txFrom(ctx)
	if st == nil {
		return database.ErrNoTransaction
	}
	for i, bucket := range buckets {
		if i > 0 && bucket <= buckets[i-1] {
			return fmt.Errorf("%w: buckets out of order", database.ErrLockUnavailable)
		}
		key := schedulerRepo.LockKey(specialistID, bucket)
		lock := st.held[key]
		lock.ID = key
		lock.Seq++
		lock.LockedAt = time.Now()
		st.held[key] = lock
	}
	return nil
}
