package achievement

import "context"

// Repository stores one ledger per user.
type Repository interface {
	GetLedger(ctx context.Context, userID string) (*Ledger, error)
	SaveLedger(ctx context.Context, ledger *Ledger) error
}
