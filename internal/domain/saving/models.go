package saving

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Domain errors
var (
	ErrSavingNotFound = errors.New("saving not found")
	ErrAlreadySettled = errors.New("saving is already settled")
	ErrNotSettled     = errors.New("saving is not settled")
	ErrInvalidAmount  = errors.New("amount must be a positive decimal")
	ErrInvalidRate    = errors.New("rate must not be negative")
)

// daysPerYear is the actual/365 day-count convention denominator.
var daysPerYear = decimal.NewFromInt(365)

// Saving represents an interest-bearing deposit. It is created unsettled
// and transitions once to settled; unsettle exists only to reverse a
// settlement made in error.
type Saving struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	BankName        string          `json:"bankName"`
	Amount          decimal.Decimal `json:"amount"`
	RatePercent     decimal.Decimal `json:"ratePercent"`
	StartDate       time.Time       `json:"startDate"`
	EndDate         *time.Time      `json:"endDate,omitempty"`
	Settled         bool            `json:"settled"`
	SettlementTxID  *string         `json:"settlementTransactionId,omitempty"`
	SourceAccountID *string         `json:"sourceAccountId,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// InterestAt computes simple interest accrued up to now, using whole
// elapsed days and the actual/365 convention, rounded to 2 places.
// A deposit settled before its start date accrues nothing.
func (s *Saving) InterestAt(now time.Time) decimal.Decimal {
	days := int64(now.Sub(s.StartDate).Hours() / 24)
	if days <= 0 {
		return decimal.Zero
	}
	return s.Amount.
		Mul(s.RatePercent).
		Div(decimal.NewFromInt(100)).
		Mul(decimal.NewFromInt(days)).
		Div(daysPerYear).
		Round(2)
}

// DepositParams contains parameters for opening a deposit
type DepositParams struct {
	UserID          string
	BankName        string
	Amount          decimal.Decimal
	RatePercent     decimal.Decimal
	StartDate       time.Time
	EndDate         *time.Time
	SourceAccountID *string
}

// Validate validates the deposit parameters
func (p DepositParams) Validate() error {
	if p.UserID == "" {
		return errors.New("valid user ID is required")
	}
	if p.BankName == "" {
		return errors.New("bank name is required")
	}
	if !p.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if p.RatePercent.IsNegative() {
		return ErrInvalidRate
	}
	if p.StartDate.IsZero() {
		return errors.New("start date is required")
	}
	if p.EndDate != nil && p.EndDate.Before(p.StartDate) {
		return errors.New("end date must not precede start date")
	}
	return nil
}

// SettleResult is returned by a settlement.
type SettleResult struct {
	Saving      *Saving         `json:"saving"`
	Interest    decimal.Decimal `json:"interest"`
	TotalReturn decimal.Decimal `json:"totalReturn"`
}
