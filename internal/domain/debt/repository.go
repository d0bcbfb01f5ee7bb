package debt

import "context"

// Repository defines the interface for debt data access. Pay is an atomic
// unit spanning the debt row and, when a source account is given, the
// account debit and its audit-trail transaction.
type Repository interface {
	// Create records a new debt with remaining = original and paid = false
	Create(ctx context.Context, params CreateParams) (*Debt, error)

	// GetByID retrieves a debt owned by userID
	GetByID(ctx context.Context, id, userID string) (*Debt, error)

	// ListByUserID retrieves all debts for a specific user
	ListByUserID(ctx context.Context, userID string) ([]*Debt, error)

	// Pay applies a payment under lock: remaining is floored at zero and
	// paid latches when it reaches zero. An already-paid debt surfaces as
	// ErrAlreadyPaid with no mutation. When a source account is given it
	// is debited by the full payment amount, not the clamped delta, and an
	// Expense transaction (category "Debt Repayment") is recorded in the
	// same scope.
	Pay(ctx context.Context, params PayParams) (*Debt, error)
}
