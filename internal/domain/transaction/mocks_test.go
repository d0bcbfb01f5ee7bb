package transaction

import (
	"context"

	"github.com/shopspring/decimal"

	"soldo/internal/domain/account"
)

type MockTransactionRepo struct {
	CreateFunc                   func(ctx context.Context, params CreateParams) (*Transaction, error)
	CreateTransferPairFunc       func(ctx context.Context, params TransferParams) (*TransferPair, error)
	GetByIDFunc                  func(ctx context.Context, id, userID string) (*Transaction, error)
	ListByAccountIDFunc          func(ctx context.Context, accountID, userID string, limit, offset int) ([]*Transaction, error)
	ListByUserIDFunc             func(ctx context.Context, userID string, limit, offset int) ([]*Transaction, error)
	UpdateFunc                   func(ctx context.Context, id, userID string, params UpdateParams, partner *PartnerUpdate) (*Transaction, error)
	DeleteFunc                   func(ctx context.Context, id, userID string) error
	FindByPairIDFunc             func(ctx context.Context, pairID, excludeID, userID string) (*Transaction, error)
	FindTransferCandidatesFunc   func(ctx context.Context, criteria MatchCriteria) ([]*Transaction, error)
	ListUnpairedTransferLegsFunc func(ctx context.Context, userID string, limit, offset int) ([]*Transaction, error)
	AssignPairIDFunc             func(ctx context.Context, pairID, legID, partnerID, userID string) error
	SumEffectsByAccountFunc      func(ctx context.Context, accountID, userID string) (decimal.Decimal, error)
}

func (m *MockTransactionRepo) Create(ctx context.Context, params CreateParams) (*Transaction, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, nil
}
func (m *MockTransactionRepo) CreateTransferPair(ctx context.Context, params TransferParams) (*TransferPair, error) {
	if m.CreateTransferPairFunc != nil {
		return m.CreateTransferPairFunc(ctx, params)
	}
	return nil, nil
}
func (m *MockTransactionRepo) GetByID(ctx context.Context, id, userID string) (*Transaction, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id, userID)
	}
	return nil, nil
}
func (m *MockTransactionRepo) ListByAccountID(ctx context.Context, accountID, userID string, limit, offset int) ([]*Transaction, error) {
	if m.ListByAccountIDFunc != nil {
		return m.ListByAccountIDFunc(ctx, accountID, userID, limit, offset)
	}
	return nil, nil
}
func (m *MockTransactionRepo) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*Transaction, error) {
	if m.ListByUserIDFunc != nil {
		return m.ListByUserIDFunc(ctx, userID, limit, offset)
	}
	return nil, nil
}
func (m *MockTransactionRepo) Update(ctx context.Context, id, userID string, params UpdateParams, partner *PartnerUpdate) (*Transaction, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, userID, params, partner)
	}
	return nil, nil
}
func (m *MockTransactionRepo) Delete(ctx context.Context, id, userID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id, userID)
	}
	return nil
}
func (m *MockTransactionRepo) FindByPairID(ctx context.Context, pairID, excludeID, userID string) (*Transaction, error) {
	if m.FindByPairIDFunc != nil {
		return m.FindByPairIDFunc(ctx, pairID, excludeID, userID)
	}
	return nil, nil
}
func (m *MockTransactionRepo) FindTransferCandidates(ctx context.Context, criteria MatchCriteria) ([]*Transaction, error) {
	if m.FindTransferCandidatesFunc != nil {
		return m.FindTransferCandidatesFunc(ctx, criteria)
	}
	return nil, nil
}
func (m *MockTransactionRepo) ListUnpairedTransferLegs(ctx context.Context, userID string, limit, offset int) ([]*Transaction, error) {
	if m.ListUnpairedTransferLegsFunc != nil {
		return m.ListUnpairedTransferLegsFunc(ctx, userID, limit, offset)
	}
	return nil, nil
}
func (m *MockTransactionRepo) AssignPairID(ctx context.Context, pairID, legID, partnerID, userID string) error {
	if m.AssignPairIDFunc != nil {
		return m.AssignPairIDFunc(ctx, pairID, legID, partnerID, userID)
	}
	return nil
}
func (m *MockTransactionRepo) SumEffectsByAccount(ctx context.Context, accountID, userID string) (decimal.Decimal, error) {
	if m.SumEffectsByAccountFunc != nil {
		return m.SumEffectsByAccountFunc(ctx, accountID, userID)
	}
	return decimal.Zero, nil
}

type MockAccountRepo struct {
	CreateFunc       func(ctx context.Context, params account.CreateParams) (*account.Account, error)
	GetByIDFunc      func(ctx context.Context, id, userID string) (*account.Account, error)
	ListByUserIDFunc func(ctx context.Context, userID string) ([]*account.Account, error)
	DeleteFunc       func(ctx context.Context, id, userID string) error
	ListUserIDsFunc  func(ctx context.Context) ([]string, error)
}

func (m *MockAccountRepo) Create(ctx context.Context, params account.CreateParams) (*account.Account, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, nil
}
func (m *MockAccountRepo) GetByID(ctx context.Context, id, userID string) (*account.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id, userID)
	}
	return nil, nil
}
func (m *MockAccountRepo) ListByUserID(ctx context.Context, userID string) ([]*account.Account, error) {
	if m.ListByUserIDFunc != nil {
		return m.ListByUserIDFunc(ctx, userID)
	}
	return nil, nil
}
func (m *MockAccountRepo) Delete(ctx context.Context, id, userID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id, userID)
	}
	return nil
}
func (m *MockAccountRepo) ListUserIDs(ctx context.Context) ([]string, error) {
	if m.ListUserIDsFunc != nil {
		return m.ListUserIDsFunc(ctx)
	}
	return nil, nil
}
