package debt

import "context"

// Service contains the business logic for peer debts
type Service struct {
	repo Repository
}

// NewService creates a new debt service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateDebt records a new outstanding debt
func (s *Service) CreateDebt(ctx context.Context, params CreateParams) (*Debt, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, params)
}

// GetDebt retrieves a debt, scoped to the owning user
func (s *Service) GetDebt(ctx context.Context, id, userID string) (*Debt, error) {
	return s.repo.GetByID(ctx, id, userID)
}

// ListDebts retrieves all debts for a user
func (s *Service) ListDebts(ctx context.Context, userID string) ([]*Debt, error) {
	return s.repo.ListByUserID(ctx, userID)
}

// PayDebt applies a partial or full payment. Overpayment floors the
// remaining balance at zero, but a supplied source account is still
// debited by the full payment amount.
func (s *Service) PayDebt(ctx context.Context, params PayParams) (*Debt, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(ctx, params.DebtID, params.UserID)
	if err != nil {
		return nil, err
	}
	if existing.Paid {
		return nil, ErrAlreadyPaid
	}

	return s.repo.Pay(ctx, params)
}
