package saving

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Repository defines the interface for saving data access. Create, Settle
// and Unsettle are atomic units spanning the saving row, the audit-trail
// transaction and the account balance it moves: all commit or none do.
type Repository interface {
	// Create inserts the saving; when a source account is given it is
	// debited by the deposit amount and an Expense transaction (category
	// "Savings") is recorded in the same scope.
	Create(ctx context.Context, params DepositParams) (*Saving, error)

	// GetByID retrieves a saving owned by userID
	GetByID(ctx context.Context, id, userID string) (*Saving, error)

	// ListByUserID retrieves all savings for a specific user
	ListByUserID(ctx context.Context, userID string) ([]*Saving, error)

	// Settle marks the saving settled, credits the target account by
	// totalReturn, records an Income transaction (category "Savings
	// Return") and stores that transaction's id on the saving. The settled
	// flag is re-checked under lock; a concurrent settlement surfaces as
	// ErrAlreadySettled.
	Settle(ctx context.Context, id, userID, targetAccountID string, totalReturn decimal.Decimal, settledAt time.Time) (*Saving, error)

	// Unsettle clears the settled flag. When a settlement transaction link
	// exists, the linked transaction's account is debited by that
	// transaction's exact amount and the transaction is deleted in the
	// same scope. Without a link only the flag is cleared: money already
	// dispersed elsewhere is not chased.
	Unsettle(ctx context.Context, id, userID string) (*Saving, error)
}
