// Package memory is an in-process implementation of every repository and of
// the transaction manager. Transactions are serialised: each one works on a
// private copy of the data that replaces the shared state on commit and is
// dropped on error.
package memory

import (
	"context"
	"sync"

	"bookly/database/repository"
	"bookly/models"
)

type dataset struct {
	bookings    map[string]models.Booking
	users       map[string]models.User
	services    map[string]models.Service
	specialists map[string]models.Specialist
	rewards     map[string]models.Reward
	redemptions map[string]models.RewardRedemption
	referrals   map[string]models.Referral
	loyalty     []models.LoyaltyTransaction
	wallet      []models.WalletTransaction
}

func newDataset() *dataset {
	return &dataset{
		bookings:    map[string]models.Booking{},
		users:       map[string]models.User{},
		services:    map[string]models.Service{},
		specialists: map[string]models.Specialist{},
		rewards:     map[string]models.Reward{},
		redemptions: map[string]models.RewardRedemption{},
		referrals:   map[string]models.Referral{},
	}
}

func (d *dataset) clone() *dataset {
	c := newDataset()
	for k, v := range d.bookings {
		c.bookings[k] = v
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.services {
		c.services[k] = v
	}
	for k, v := range d.specialists {
		c.specialists[k] = v
	}
	for k, v := range d.rewards {
		c.rewards[k] = v
	}
	for k, v := range d.redemptions {
		c.redemptions[k] = v
	}
	for k, v := range d.referrals {
		c.referrals[k] = v
	}
	c.loyalty = append([]models.LoyaltyTransaction(nil), d.loyalty...)
	c.wallet = append([]models.WalletTransaction(nil), d.wallet...)
	return c
}

// Store holds the shared state. The zero value is not usable; call New.
type Store struct {
	txMu sync.Mutex   // one transaction at a time
	mu   sync.RWMutex // guards data
	data *dataset
}

// New returns an empty store.
func New() *Store {
	return &Store{data: newDataset()}
}

type txKey struct{}

// txState is one open transaction. Slot locks live only here: they end with
// the transaction and never reach the shared data.
type txState struct {
	store   *Store
	working *dataset
	held    map[string]models.SlotLock
}

func (s *Store) txFrom(ctx context.Context) *txState {
	st, _ := ctx.Value(txKey{}).(*txState)
	if st == nil || st.store != s {
		return nil
	}
	return st
}

// WithTransaction runs fn against a private copy of the data. A nested call
// with a ctx that already carries this store's transaction joins it.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.txFrom(ctx) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	st := &txState{store: s, working: s.data.clone(), held: map[string]models.SlotLock{}}
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, st)); err != nil {
		return err
	}

	s.mu.Lock()
	s.data = st.working
	s.mu.Unlock()
	return nil
}

func (s *Store) read(ctx context.Context, fn func(d *dataset) error) error {
	if st := s.txFrom(ctx); st != nil {
		return fn(st.working)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.data)
}

// write applies fn in the caller's transaction, or in a single-statement one.
func (s *Store) write(ctx context.Context, fn func(d *dataset) error) error {
	if st := s.txFrom(ctx); st != nil {
		return fn(st.working)
	}
	return s.WithTransaction(ctx, func(ctx context.Context) error {
		return fn(s.txFrom(ctx).working)
	})
}

// Repositories exposes the store through the repository interfaces.
func (s *Store) Repositories() *repository.Store {
	return &repository.Store{
		Tx:        s,
		Bookings:  &bookingRepo{s},
		Locks:     &slotLocker{s},
		Users:     &userRepo{s},
		Catalog:   &catalogRepo{s},
		Ledger:    &ledgerRepo{s},
		Rewards:   &rewardRepo{s},
		Referrals: &referralRepo{s},
	}
}
