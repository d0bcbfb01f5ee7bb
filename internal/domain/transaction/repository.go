package transaction

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// MatchCriteria defines the candidate search used to locate the partner of a
// legacy transfer leg that carries no pair id. Candidates are scoped by
// user, restricted to the opposite leg type, and bounded by a symmetric
// time window around the edited leg's date.
type MatchCriteria struct {
	ExcludeID      string
	UserID         string
	OppositeType   Type
	DateLowerBound time.Time
	DateUpperBound time.Time
}

// PartnerUpdate instructs the update path to synchronize the identified
// partner leg in the same atomic scope as the edited leg. When HealPairID
// is set, both legs are stamped with it so future edits resolve the pair
// by direct lookup instead of search.
type PartnerUpdate struct {
	ID         string
	HealPairID *string
}

// Repository defines the interface for transaction data access. Mutating
// operations couple the row write with the signed balance delta it implies:
// the implementation commits both or neither.
type Repository interface {
	// Create atomically inserts the transaction and applies its signed
	// effect to the owning account's balance.
	Create(ctx context.Context, params CreateParams) (*Transaction, error)

	// CreateTransferPair atomically inserts both legs of a transfer with a
	// shared pair id and applies both balance deltas.
	CreateTransferPair(ctx context.Context, params TransferParams) (*TransferPair, error)

	// GetByID retrieves a transaction owned by userID
	GetByID(ctx context.Context, id, userID string) (*Transaction, error)

	// ListByAccountID retrieves transactions for one account, newest first
	ListByAccountID(ctx context.Context, accountID, userID string, limit, offset int) ([]*Transaction, error)

	// ListByUserID retrieves transactions across all of a user's accounts
	ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*Transaction, error)

	// Update atomically patches the transaction, reversing its old signed
	// effect and applying the new one. When partner is non-nil the partner
	// leg's amount and account balance are synchronized in the same scope.
	Update(ctx context.Context, id, userID string, params UpdateParams, partner *PartnerUpdate) (*Transaction, error)

	// Delete atomically removes the transaction and reverses its signed
	// effect. A transfer leg with a pair id takes its partner down too.
	Delete(ctx context.Context, id, userID string) error

	// FindByPairID returns the partner leg sharing pairID, excluding the
	// given transaction id.
	FindByPairID(ctx context.Context, pairID, excludeID, userID string) (*Transaction, error)

	// FindTransferCandidates returns possible partner legs for a legacy
	// transfer leg, per the match criteria.
	FindTransferCandidates(ctx context.Context, criteria MatchCriteria) ([]*Transaction, error)

	// ListUnpairedTransferLegs returns a user's transfer legs that carry no
	// pair id, oldest first.
	ListUnpairedTransferLegs(ctx context.Context, userID string, limit, offset int) ([]*Transaction, error)

	// AssignPairID stamps both legs with the given pair id.
	AssignPairID(ctx context.Context, pairID, legID, partnerID, userID string) error

	// SumEffectsByAccount returns the sum of signed effects of all
	// transactions recorded against the account.
	SumEffectsByAccount(ctx context.Context, accountID, userID string) (decimal.Decimal, error)
}
