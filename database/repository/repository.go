package repository

import (
	"bookly/database"
	catalogRepo "bookly/database/repository/catalog"
	ledgerRepo "bookly/database/repository/ledger"
	referralRepo "bookly/database/repository/referral"
	rewardRepo "bookly/database/repository/reward"
	schedulerRepo "bookly/database/repository/scheduler"
	userRepo "bookly/database/repository/user"

	"go.mongodb.org/mongo-driver/mongo"
)

// Re-export the repository interfaces so callers depend on one package.
type (
	BookingRepository  = schedulerRepo.BookingRepository
	SlotLocker         = schedulerRepo.SlotLocker
	UserRepository     = userRepo.UserRepository
	CatalogRepository  = catalogRepo.CatalogRepository
	LedgerRepository   = ledgerRepo.LedgerRepository
	RewardRepository   = rewardRepo.RewardRepository
	ReferralRepository = referralRepo.ReferralRepository
)

// Store bundles every repository together with the transaction manager they share.
type Store struct {
	Tx        database.TxManager
	Bookings  BookingRepository
	Locks     SlotLocker
	Users     UserRepository
	Catalog   CatalogRepository
	Ledger    LedgerRepository
	Rewards   RewardRepository
	Referrals ReferralRepository
}

// NewMongoStore wires the Mongo repositories against one database.
func NewMongoStore(client *mongo.Client, dbName string) *Store {
	db := client.Database(dbName)
	scheduler := schedulerRepo.NewMongoSchedulerRepo(db)
	return &Store{
		Tx:        database.NewMongoTxManager(client),
		Bookings:  scheduler,
		Locks:     scheduler,
		Users:     userRepo.NewMongoUserRepo(db),
		Catalog:   catalogRepo.NewMongoCatalogRepo(db),
		Ledger:    ledgerRepo.NewMongoLedgerRepo(db),
		Rewards:   rewardRepo.NewMongoRewardRepo(db),
		Referrals: referralRepo.NewMongoReferralRepo(db),
	}
}
