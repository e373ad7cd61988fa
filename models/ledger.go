package models

import "time"

// LoyaltyTxType classifies a loyalty ledger entry.
type LoyaltyTxType string

const (
	LoyaltyEarned   LoyaltyTxType = "EARNED"
	LoyaltyRedeemed LoyaltyTxType = "REDEEMED"
)

// LoyaltyTransaction is an append-only loyalty points ledger entry.
type LoyaltyTransaction struct {
	ID        string        `bson:"id" json:"id"`
	UserID    string        `bson:"userId" json:"userId"`
	Type      LoyaltyTxType `bson:"type" json:"type"`
	Delta     int64         `bson:"delta" json:"delta"`
	Reason    string        `bson:"reason" json:"reason"`
	BookingID string        `bson:"bookingId,omitempty" json:"bookingId,omitempty"`
	CreatedAt time.Time     `bson:"createdAt" json:"createdAt"`
}

// WalletTxType classifies a wallet ledger entry.
type WalletTxType string

const (
	WalletRefund WalletTxType = "REFUND"
	WalletCredit WalletTxType = "CREDIT"
	WalletDebit  WalletTxType = "DEBIT"
)

// WalletTransaction is an append-only wallet ledger entry.
type WalletTransaction struct {
	ID        string       `bson:"id" json:"id"`
	UserID    string       `bson:"userId" json:"userId"`
	Type      WalletTxType `bson:"type" json:"type"`
	Delta     float64      `bson:"delta" json:"delta"`
	Reason    string       `bson:"reason" json:"reason"`
	BookingID string       `bson:"bookingId,omitempty" json:"bookingId,omitempty"`
	CreatedAt time.Time    `bson:"createdAt" json:"createdAt"`
}
