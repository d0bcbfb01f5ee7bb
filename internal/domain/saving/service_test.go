package saving

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

type MockSavingRepo struct {
	CreateFunc       func(ctx context.Context, params DepositParams) (*Saving, error)
	GetByIDFunc      func(ctx context.Context, id, userID string) (*Saving, error)
	ListByUserIDFunc func(ctx context.Context, userID string) ([]*Saving, error)
	SettleFunc       func(ctx context.Context, id, userID, targetAccountID string, totalReturn decimal.Decimal, settledAt time.Time) (*Saving, error)
	UnsettleFunc     func(ctx context.Context, id, userID string) (*Saving, error)
}

func (m *MockSavingRepo) Create(ctx context.Context, params DepositParams) (*Saving, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, nil
}
func (m *MockSavingRepo) GetByID(ctx context.Context, id, userID string) (*Saving, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id, userID)
	}
	return nil, nil
}
func (m *MockSavingRepo) ListByUserID(ctx context.Context, userID string) ([]*Saving, error) {
	if m.ListByUserIDFunc != nil {
		return m.ListByUserIDFunc(ctx, userID)
	}
	return nil, nil
}
func (m *MockSavingRepo) Settle(ctx context.Context, id, userID, targetAccountID string, totalReturn decimal.Decimal, settledAt time.Time) (*Saving, error) {
	if m.SettleFunc != nil {
		return m.SettleFunc(ctx, id, userID, targetAccountID, totalReturn, settledAt)
	}
	return nil, nil
}
func (m *MockSavingRepo) Unsettle(ctx context.Context, id, userID string) (*Saving, error) {
	if m.UnsettleFunc != nil {
		return m.UnsettleFunc(ctx, id, userID)
	}
	return nil, nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestInterestAt(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		amount string
		rate   string
		now    time.Time
		want   string
	}{
		{
			// 1,000,000 at 6% for a full 365 days is 60,000
			name:   "full year",
			amount: "1000000",
			rate:   "6",
			now:    start.AddDate(0, 0, 365),
			want:   "60000",
		},
		{
			// 10,000 * 0.05 * 30/365 = 41.0958... -> 41.10
			name:   "thirty days rounded",
			amount: "10000",
			rate:   "5",
			now:    start.AddDate(0, 0, 30),
			want:   "41.1",
		},
		{
			name:   "same day accrues nothing",
			amount: "10000",
			rate:   "5",
			now:    start,
			want:   "0",
		},
		{
			name:   "partial day truncates to whole days",
			amount: "10000",
			rate:   "5",
			now:    start.Add(30*24*time.Hour + 23*time.Hour),
			want:   "41.1",
		},
		{
			name:   "before start accrues nothing",
			amount: "10000",
			rate:   "5",
			now:    start.AddDate(0, 0, -10),
			want:   "0",
		},
		{
			name:   "zero rate",
			amount: "10000",
			rate:   "0",
			now:    start.AddDate(0, 0, 90),
			want:   "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sv := &Saving{
				Amount:      dec(tt.amount),
				RatePercent: dec(tt.rate),
				StartDate:   start,
			}
			got := sv.InterestAt(tt.now)
			if got.String() != tt.want {
				t.Errorf("InterestAt() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDeposit(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("rejects invalid params", func(t *testing.T) {
		svc := NewService(&MockSavingRepo{})

		tests := []struct {
			name   string
			params DepositParams
		}{
			{"zero amount", DepositParams{UserID: "user-1", BankName: "Banco X", Amount: decimal.Zero, RatePercent: dec("5"), StartDate: start}},
			{"negative rate", DepositParams{UserID: "user-1", BankName: "Banco X", Amount: dec("100"), RatePercent: dec("-1"), StartDate: start}},
			{"missing bank", DepositParams{UserID: "user-1", Amount: dec("100"), RatePercent: dec("5"), StartDate: start}},
			{"zero start date", DepositParams{UserID: "user-1", BankName: "Banco X", Amount: dec("100"), RatePercent: dec("5")}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if _, err := svc.Deposit(ctx, tt.params); err == nil {
					t.Error("expected validation error, got nil")
				}
			})
		}
	})

	t.Run("rejects end date before start date", func(t *testing.T) {
		svc := NewService(&MockSavingRepo{})

		end := start.AddDate(0, 0, -1)
		_, err := svc.Deposit(ctx, DepositParams{
			UserID: "user-1", BankName: "Banco X",
			Amount: dec("100"), RatePercent: dec("5"),
			StartDate: start, EndDate: &end,
		})
		if err == nil {
			t.Error("expected validation error, got nil")
		}
	})

	t.Run("delegates to repository", func(t *testing.T) {
		repo := &MockSavingRepo{
			CreateFunc: func(ctx context.Context, params DepositParams) (*Saving, error) {
				return &Saving{ID: "sav-1", Amount: params.Amount}, nil
			},
		}
		svc := NewService(repo)

		sv, err := svc.Deposit(ctx, DepositParams{
			UserID: "user-1", BankName: "Banco X",
			Amount: dec("5000"), RatePercent: dec("7.5"), StartDate: start,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sv.ID != "sav-1" {
			t.Errorf("ID = %s, want sav-1", sv.ID)
		}
	})
}

func TestSettle(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("credits principal plus interest", func(t *testing.T) {
		oldNow := nowFunc
		nowFunc = func() time.Time { return start.AddDate(0, 0, 365) }
		defer func() { nowFunc = oldNow }()

		var gotTotal decimal.Decimal
		repo := &MockSavingRepo{
			GetByIDFunc: func(ctx context.Context, id, userID string) (*Saving, error) {
				return &Saving{ID: id, UserID: userID, Amount: dec("1000000"), RatePercent: dec("6"), StartDate: start}, nil
			},
			SettleFunc: func(ctx context.Context, id, userID, targetAccountID string, totalReturn decimal.Decimal, settledAt time.Time) (*Saving, error) {
				gotTotal = totalReturn
				return &Saving{ID: id, Settled: true}, nil
			},
		}
		svc := NewService(repo)

		result, err := svc.Settle(ctx, "sav-1", "user-1", "acc-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.Interest.Equal(dec("60000")) {
			t.Errorf("Interest = %s, want 60000", result.Interest)
		}
		if !result.TotalReturn.Equal(dec("1060000")) {
			t.Errorf("TotalReturn = %s, want 1060000", result.TotalReturn)
		}
		if !gotTotal.Equal(dec("1060000")) {
			t.Errorf("repo received total %s, want 1060000", gotTotal)
		}
		if !result.Saving.Settled {
			t.Error("returned saving not settled")
		}
	})

	t.Run("settling before start returns principal only", func(t *testing.T) {
		oldNow := nowFunc
		nowFunc = func() time.Time { return start.AddDate(0, 0, -5) }
		defer func() { nowFunc = oldNow }()

		repo := &MockSavingRepo{
			GetByIDFunc: func(ctx context.Context, id, userID string) (*Saving, error) {
				return &Saving{ID: id, Amount: dec("5000"), RatePercent: dec("10"), StartDate: start}, nil
			},
			SettleFunc: func(ctx context.Context, id, userID, targetAccountID string, totalReturn decimal.Decimal, settledAt time.Time) (*Saving, error) {
				return &Saving{ID: id, Settled: true}, nil
			},
		}
		svc := NewService(repo)

		result, err := svc.Settle(ctx, "sav-1", "user-1", "acc-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.Interest.IsZero() {
			t.Errorf("Interest = %s, want 0", result.Interest)
		}
		if !result.TotalReturn.Equal(dec("5000")) {
			t.Errorf("TotalReturn = %s, want 5000", result.TotalReturn)
		}
	})

	t.Run("rejects already settled", func(t *testing.T) {
		repo := &MockSavingRepo{
			GetByIDFunc: func(ctx context.Context, id, userID string) (*Saving, error) {
				return &Saving{ID: id, Settled: true}, nil
			},
		}
		svc := NewService(repo)

		_, err := svc.Settle(ctx, "sav-1", "user-1", "acc-1")
		if !errors.Is(err, ErrAlreadySettled) {
			t.Errorf("error = %v, want ErrAlreadySettled", err)
		}
	})

	t.Run("propagates not found", func(t *testing.T) {
		repo := &MockSavingRepo{
			GetByIDFunc: func(ctx context.Context, id, userID string) (*Saving, error) {
				return nil, ErrSavingNotFound
			},
		}
		svc := NewService(repo)

		_, err := svc.Settle(ctx, "sav-x", "user-1", "acc-1")
		if !errors.Is(err, ErrSavingNotFound) {
			t.Errorf("error = %v, want ErrSavingNotFound", err)
		}
	})
}

func TestUnsettle(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects unsettled saving", func(t *testing.T) {
		repo := &MockSavingRepo{
			GetByIDFunc: func(ctx context.Context, id, userID string) (*Saving, error) {
				return &Saving{ID: id, Settled: false}, nil
			},
		}
		svc := NewService(repo)

		_, err := svc.Unsettle(ctx, "sav-1", "user-1")
		if !errors.Is(err, ErrNotSettled) {
			t.Errorf("error = %v, want ErrNotSettled", err)
		}
	})

	t.Run("delegates reversal to repository", func(t *testing.T) {
		repo := &MockSavingRepo{
			GetByIDFunc: func(ctx context.Context, id, userID string) (*Saving, error) {
				txID := "tx-settle"
				return &Saving{ID: id, Settled: true, SettlementTxID: &txID}, nil
			},
			UnsettleFunc: func(ctx context.Context, id, userID string) (*Saving, error) {
				return &Saving{ID: id, Settled: false}, nil
			},
		}
		svc := NewService(repo)

		sv, err := svc.Unsettle(ctx, "sav-1", "user-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sv.Settled {
			t.Error("saving still settled after unsettle")
		}
	})
}
