// models/user.go
package models

import "time"

// User is a platform account. Wallet and loyalty balances are caches of the
// ledger and only change through ledger transactions.
type User struct {
	ID            string    `bson:"id" json:"id"`
	Name          string    `bson:"name" json:"name"`
	Email         string    `bson:"email" json:"email"`
	PhoneNumber   string    `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	IsActive      bool      `bson:"isActive" json:"isActive"`
	WalletBalance float64   `bson:"walletBalance" json:"walletBalance"`
	LoyaltyPoints int64     `bson:"loyaltyPoints" json:"loyaltyPoints"`
	FCMToken      string    `bson:"fcmToken,omitempty" json:"-"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt" json:"updatedAt"`
}
