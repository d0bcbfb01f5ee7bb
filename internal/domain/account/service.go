package account

import (
	"context"
	"errors"
)

// Service contains the business logic for account operations
type Service struct {
	repo Repository
}

// NewService creates a new account service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateAccount creates a new account with business validation
func (s *Service) CreateAccount(ctx context.Context, params CreateParams) (*Account, error) {
	if params.Currency == "" {
		params.Currency = "BRL"
	}

	if err := params.Validate(); err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, params)
}

// GetAccount retrieves an account by ID, scoped to the owning user
func (s *Service) GetAccount(ctx context.Context, accountID, userID string) (*Account, error) {
	if accountID == "" || userID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, accountID, userID)
}

// ListAccounts retrieves all accounts for a specific user
func (s *Service) ListAccounts(ctx context.Context, userID string) ([]*Account, error) {
	if userID == "" {
		return nil, errors.New("valid user ID is required")
	}
	return s.repo.ListByUserID(ctx, userID)
}

// DeleteAccount deletes an account after verifying ownership
func (s *Service) DeleteAccount(ctx context.Context, accountID, userID string) error {
	if _, err := s.GetAccount(ctx, accountID, userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, accountID, userID)
}
