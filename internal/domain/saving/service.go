package saving

import (
	"context"
	"time"
)

// nowFunc is swapped in tests.
var nowFunc = time.Now

// Service contains the business logic for savings deposits: opening,
// interest settlement and settlement reversal.
type Service struct {
	repo Repository
}

// NewService creates a new savings service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Deposit opens a deposit. When a source account is given it is debited by
// the deposit amount, with an Expense transaction recorded, in the same
// atomic scope as the saving insert.
func (s *Service) Deposit(ctx context.Context, params DepositParams) (*Saving, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, params)
}

// GetSaving retrieves a saving, scoped to the owning user
func (s *Service) GetSaving(ctx context.Context, id, userID string) (*Saving, error) {
	return s.repo.GetByID(ctx, id, userID)
}

// ListSavings retrieves all savings for a user
func (s *Service) ListSavings(ctx context.Context, userID string) ([]*Saving, error) {
	return s.repo.ListByUserID(ctx, userID)
}

// Settle closes the deposit: simple interest is computed over the whole
// days elapsed since the start date (actual/365) and principal plus
// interest is credited to the target account, leaving an Income
// transaction linked back to the saving.
func (s *Service) Settle(ctx context.Context, id, userID, targetAccountID string) (*SettleResult, error) {
	sv, err := s.repo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if sv.Settled {
		return nil, ErrAlreadySettled
	}

	now := nowFunc()
	interest := sv.InterestAt(now)
	totalReturn := sv.Amount.Add(interest)

	settled, err := s.repo.Settle(ctx, id, userID, targetAccountID, totalReturn, now)
	if err != nil {
		return nil, err
	}

	return &SettleResult{
		Saving:      settled,
		Interest:    interest,
		TotalReturn: totalReturn,
	}, nil
}

// Unsettle reverses a settlement. The credit recorded at settlement time is
// removed exactly; a settlement that had no target account only has its
// flag cleared.
func (s *Service) Unsettle(ctx context.Context, id, userID string) (*Saving, error) {
	sv, err := s.repo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !sv.Settled {
		return nil, ErrNotSettled
	}
	return s.repo.Unsettle(ctx, id, userID)
}
