package debt

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Domain errors
var (
	ErrDebtNotFound  = errors.New("debt not found")
	ErrAlreadyPaid   = errors.New("debt is already paid")
	ErrInvalidAmount = errors.New("amount must be a positive decimal")
)

// Debt tracks an outstanding balance owed to a counterparty. Remaining
// starts equal to the original amount, decrements with each payment floored
// at zero, and the paid flag latches once remaining reaches zero. There is
// no un-pay operation.
type Debt struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	Name            string          `json:"name"`
	OriginalAmount  decimal.Decimal `json:"originalAmount"`
	RemainingAmount decimal.Decimal `json:"remainingAmount"`
	Paid            bool            `json:"paid"`
	DueDate         *time.Time      `json:"dueDate,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// CreateParams contains parameters for recording a new debt
type CreateParams struct {
	UserID  string
	Name    string
	Amount  decimal.Decimal
	DueDate *time.Time
}

// Validate validates the create parameters
func (p CreateParams) Validate() error {
	if p.UserID == "" {
		return errors.New("valid user ID is required")
	}
	if p.Name == "" {
		return errors.New("debt name is required")
	}
	if !p.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// PayParams contains parameters for applying a payment
type PayParams struct {
	UserID          string
	DebtID          string
	Amount          decimal.Decimal
	SourceAccountID *string
}

// Validate validates the payment parameters
func (p PayParams) Validate() error {
	if p.UserID == "" {
		return errors.New("valid user ID is required")
	}
	if p.DebtID == "" {
		return errors.New("debt ID is required")
	}
	if !p.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}
