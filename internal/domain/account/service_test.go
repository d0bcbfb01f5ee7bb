package account

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

type MockAccountRepo struct {
	CreateFunc       func(ctx context.Context, params CreateParams) (*Account, error)
	GetByIDFunc      func(ctx context.Context, id, userID string) (*Account, error)
	ListByUserIDFunc func(ctx context.Context, userID string) ([]*Account, error)
	DeleteFunc       func(ctx context.Context, id, userID string) error
	ListUserIDsFunc  func(ctx context.Context) ([]string, error)
}

func (m *MockAccountRepo) Create(ctx context.Context, params CreateParams) (*Account, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, nil
}
func (m *MockAccountRepo) GetByID(ctx context.Context, id, userID string) (*Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id, userID)
	}
	return nil, nil
}
func (m *MockAccountRepo) ListByUserID(ctx context.Context, userID string) ([]*Account, error) {
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

func TestCreateAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults currency to BRL", func(t *testing.T) {
		var gotParams CreateParams
		repo := &MockAccountRepo{
			CreateFunc: func(ctx context.Context, params CreateParams) (*Account, error) {
				gotParams = params
				return &Account{ID: "acc-1", Currency: params.Currency}, nil
			},
		}
		svc := NewService(repo)

		acc, err := svc.CreateAccount(ctx, CreateParams{UserID: "user-1", Name: "Checking"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotParams.Currency != "BRL" {
			t.Errorf("repo received currency %q, want BRL", gotParams.Currency)
		}
		if acc.ID != "acc-1" {
			t.Errorf("ID = %s, want acc-1", acc.ID)
		}
	})

	t.Run("rejects invalid currency", func(t *testing.T) {
		svc := NewService(&MockAccountRepo{})

		_, err := svc.CreateAccount(ctx, CreateParams{UserID: "user-1", Name: "Checking", Currency: "XYZ"})
		if !errors.Is(err, ErrInvalidCurrency) {
			t.Errorf("error = %v, want ErrInvalidCurrency", err)
		}
	})

	t.Run("rejects missing name", func(t *testing.T) {
		svc := NewService(&MockAccountRepo{})

		_, err := svc.CreateAccount(ctx, CreateParams{UserID: "user-1", Currency: "USD"})
		if err == nil {
			t.Error("expected validation error, got nil")
		}
	})

	t.Run("passes initial balance through", func(t *testing.T) {
		var gotParams CreateParams
		repo := &MockAccountRepo{
			CreateFunc: func(ctx context.Context, params CreateParams) (*Account, error) {
				gotParams = params
				return &Account{ID: "acc-1", Balance: params.InitialBalance}, nil
			},
		}
		svc := NewService(repo)

		_, err := svc.CreateAccount(ctx, CreateParams{
			UserID:         "user-1",
			Name:           "Checking",
			Currency:       "USD",
			InitialBalance: decimal.RequireFromString("500.00"),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !gotParams.InitialBalance.Equal(decimal.RequireFromString("500.00")) {
			t.Errorf("InitialBalance = %s, want 500.00", gotParams.InitialBalance)
		}
	})
}

func TestGetAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects empty ids", func(t *testing.T) {
		svc := NewService(&MockAccountRepo{})

		if _, err := svc.GetAccount(ctx, "", "user-1"); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("error = %v, want ErrInvalidInput", err)
		}
		if _, err := svc.GetAccount(ctx, "acc-1", ""); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("error = %v, want ErrInvalidInput", err)
		}
	})

	t.Run("other user's account is not found", func(t *testing.T) {
		repo := &MockAccountRepo{
			GetByIDFunc: func(ctx context.Context, id, userID string) (*Account, error) {
				return nil, ErrAccountNotFound
			},
		}
		svc := NewService(repo)

		_, err := svc.GetAccount(ctx, "acc-1", "intruder")
		if !errors.Is(err, ErrAccountNotFound) {
			t.Errorf("error = %v, want ErrAccountNotFound", err)
		}
	})
}

func TestDeleteAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("verifies ownership before deleting", func(t *testing.T) {
		deleted := false
		repo := &MockAccountRepo{
			GetByIDFunc: func(ctx context.Context, id, userID string) (*Account, error) {
				return nil, ErrAccountNotFound
			},
			DeleteFunc: func(ctx context.Context, id, userID string) error {
				deleted = true
				return nil
			},
		}
		svc := NewService(repo)

		if err := svc.DeleteAccount(ctx, "acc-1", "user-1"); !errors.Is(err, ErrAccountNotFound) {
			t.Errorf("error = %v, want ErrAccountNotFound", err)
		}
		if deleted {
			t.Error("Delete must not run when the lookup fails")
		}
	})

	t.Run("deletes owned account", func(t *testing.T) {
		repo := &MockAccountRepo{
			GetByIDFunc: func(ctx context.Context, id, userID string) (*Account, error) {
				return &Account{ID: id, UserID: userID}, nil
			},
		}
		svc := NewService(repo)

		if err := svc.DeleteAccount(ctx, "acc-1", "user-1"); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
