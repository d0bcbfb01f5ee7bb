package transaction

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func makeLeg(id string, typ Type, amount string, date time.Time) *Transaction {
	return &Transaction{
		ID:        id,
		UserID:    "user-1",
		AccountID: "acc-" + id,
		Type:      typ,
		Amount:    decimal.RequireFromString(amount),
		Date:      date,
	}
}

func TestOppositeType(t *testing.T) {
	if got := OppositeType(TypeTransferOut); got != TypeTransferIn {
		t.Errorf("OppositeType(TRANSFER_OUT) = %s, want TRANSFER_IN", got)
	}
	if got := OppositeType(TypeTransferIn); got != TypeTransferOut {
		t.Errorf("OppositeType(TRANSFER_IN) = %s, want TRANSFER_OUT", got)
	}
}

func TestCriteriaFor(t *testing.T) {
	date := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)
	leg := makeLeg("tx-1", TypeTransferOut, "150.00", date)

	criteria := CriteriaFor(leg)

	if criteria.ExcludeID != "tx-1" {
		t.Errorf("ExcludeID = %s, want tx-1", criteria.ExcludeID)
	}
	if criteria.UserID != "user-1" {
		t.Errorf("UserID = %s, want user-1", criteria.UserID)
	}
	if criteria.OppositeType != TypeTransferIn {
		t.Errorf("OppositeType = %s, want TRANSFER_IN", criteria.OppositeType)
	}
	if !criteria.DateLowerBound.Equal(date.Add(-MatchWindow)) {
		t.Errorf("DateLowerBound = %v, want %v", criteria.DateLowerBound, date.Add(-MatchWindow))
	}
	if !criteria.DateUpperBound.Equal(date.Add(MatchWindow)) {
		t.Errorf("DateUpperBound = %v, want %v", criteria.DateUpperBound, date.Add(MatchWindow))
	}
}

func TestResolvePartner(t *testing.T) {
	date := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name          string
		candidates    []*Transaction
		preEditAmount string
		wantID        string
		wantOutcome   MatchOutcome
	}{
		{
			name:          "no candidates",
			candidates:    nil,
			preEditAmount: "100.00",
			wantOutcome:   MatchNone,
		},
		{
			name: "single exact match",
			candidates: []*Transaction{
				makeLeg("tx-2", TypeTransferIn, "100.00", date),
			},
			preEditAmount: "100.00",
			wantID:        "tx-2",
			wantOutcome:   MatchFound,
		},
		{
			name: "exact match preferred over amount mismatch",
			candidates: []*Transaction{
				makeLeg("tx-2", TypeTransferIn, "99.00", date),
				makeLeg("tx-3", TypeTransferIn, "100.00", date),
			},
			preEditAmount: "100.00",
			wantID:        "tx-3",
			wantOutcome:   MatchFound,
		},
		{
			name: "multiple exact matches are ambiguous",
			candidates: []*Transaction{
				makeLeg("tx-2", TypeTransferIn, "100.00", date),
				makeLeg("tx-3", TypeTransferIn, "100.00", date),
			},
			preEditAmount: "100.00",
			wantOutcome:   MatchAmbiguous,
		},
		{
			name: "fallback recovers desynced pair",
			candidates: []*Transaction{
				makeLeg("tx-2", TypeTransferIn, "85.00", date),
			},
			preEditAmount: "100.00",
			wantID:        "tx-2",
			wantOutcome:   MatchFound,
		},
		{
			name: "multiple fallback candidates are ambiguous",
			candidates: []*Transaction{
				makeLeg("tx-2", TypeTransferIn, "85.00", date),
				makeLeg("tx-3", TypeTransferIn, "90.00", date),
			},
			preEditAmount: "100.00",
			wantOutcome:   MatchAmbiguous,
		},
		{
			name: "equal amount different scale still exact",
			candidates: []*Transaction{
				makeLeg("tx-2", TypeTransferIn, "100", date),
			},
			preEditAmount: "100.00",
			wantID:        "tx-2",
			wantOutcome:   MatchFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			partner, outcome := ResolvePartner(tt.candidates, decimal.RequireFromString(tt.preEditAmount))

			if outcome != tt.wantOutcome {
				t.Fatalf("outcome = %d, want %d", outcome, tt.wantOutcome)
			}
			if tt.wantOutcome == MatchFound {
				if partner == nil {
					t.Fatal("expected partner, got nil")
				}
				if partner.ID != tt.wantID {
					t.Errorf("partner.ID = %s, want %s", partner.ID, tt.wantID)
				}
			} else if partner != nil {
				t.Errorf("expected nil partner, got %s", partner.ID)
			}
		})
	}
}
