package ledgerRepo

import (
	"context"

	"bookly/models"
)

// LedgerRepository appends to and reads the loyalty and wallet ledgers.
// Entries are never updated or removed.
type LedgerRepository interface {
	AppendLoyalty(ctx context.Context, tx *models.LoyaltyTransaction) error
	AppendWallet(ctx context.Context, tx *models.WalletTransaction) error
	// LoyaltyHistory returns a user's loyalty entries, oldest first.
	LoyaltyHistory(ctx context.Context, userID string) ([]models.LoyaltyTransaction, error)
	// WalletHistory returns a user's wallet entries, oldest first.
	WalletHistory(ctx context.Context, userID string) ([]models.WalletTransaction, error)
}
