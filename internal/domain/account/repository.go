package account

import "context"

// Repository defines the interface for account data access.
// This interface is defined in the domain layer, but implemented in the
// infrastructure layer. Every lookup is scoped by the owning user id:
// an account that exists but belongs to someone else is reported as
// ErrAccountNotFound, never as a distinct "forbidden" outcome.
type Repository interface {
	// Create creates a new account
	Create(ctx context.Context, params CreateParams) (*Account, error)

	// GetByID retrieves an account owned by userID
	GetByID(ctx context.Context, id, userID string) (*Account, error)

	// ListByUserID retrieves all accounts for a specific user
	ListByUserID(ctx context.Context, userID string) ([]*Account, error)

	// Delete removes an account owned by userID
	Delete(ctx context.Context, id, userID string) error

	// ListUserIDs returns the distinct user ids that own at least one account
	ListUserIDs(ctx context.Context) ([]string, error)
}
