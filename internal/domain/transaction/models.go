package transaction

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Type classifies a transaction's effect on its account balance.
type Type string

const (
	TypeIncome      Type = "INCOME"
	TypeExpense     Type = "EXPENSE"
	TypeTransferOut Type = "TRANSFER_OUT"
	TypeTransferIn  Type = "TRANSFER_IN"
)

// Reserved categories. "Transfer Out" / "Transfer In" mark the two legs of a
// transfer; the remaining ones are written by the savings and debt engines
// so their audit trail is recognizable.
const (
	CategoryTransferOut   = "Transfer Out"
	CategoryTransferIn    = "Transfer In"
	CategorySavings       = "Savings"
	CategorySavingsReturn = "Savings Return"
	CategoryDebtRepayment = "Debt Repayment"
	CategoryAdjustment    = "Balance Adjustment"
)

// Domain errors
var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidType         = errors.New("invalid transaction type")
	ErrInvalidAmount       = errors.New("amount must be a positive decimal")
	ErrCurrencyMismatch    = errors.New("transfer accounts must share a currency")
	ErrSameAccount         = errors.New("transfer accounts must differ")
	ErrTransferTypeChange  = errors.New("transfer legs cannot change type")
)

// Transaction represents a single ledger entry. Amount is always stored as a
// positive magnitude; the sign of its balance effect is conveyed by Type.
// PairID links the two legs of a transfer; legacy rows may carry none.
type Transaction struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	AccountID string          `json:"accountId"`
	Type      Type            `json:"type"`
	Category  string          `json:"category"`
	Amount    decimal.Decimal `json:"amount"`
	Date      time.Time       `json:"date"`
	Notes     *string         `json:"notes,omitempty"`
	Private   bool            `json:"private"`
	PairID    *string         `json:"pairId,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// IsTransferLeg reports whether the transaction is one half of a transfer.
func (t *Transaction) IsTransferLeg() bool {
	return t.Type == TypeTransferOut || t.Type == TypeTransferIn
}

// IsValidType checks if the provided type is one of the four entry types.
func IsValidType(t Type) bool {
	switch t {
	case TypeIncome, TypeExpense, TypeTransferOut, TypeTransferIn:
		return true
	}
	return false
}

// Effect returns the signed balance delta a transaction of the given type
// and (positive) amount applies to its account.
func Effect(t Type, amount decimal.Decimal) decimal.Decimal {
	switch t {
	case TypeIncome, TypeTransferIn:
		return amount
	case TypeExpense, TypeTransferOut:
		return amount.Neg()
	}
	return decimal.Zero
}

// CreateParams contains parameters for recording a new transaction
type CreateParams struct {
	UserID    string
	AccountID string
	Type      Type
	Category  string
	Amount    decimal.Decimal
	Date      time.Time
	Notes     *string
	Private   bool
}

// Validate validates the create parameters
func (p CreateParams) Validate() error {
	if p.UserID == "" {
		return errors.New("valid user ID is required")
	}
	if p.AccountID == "" {
		return errors.New("account ID is required")
	}
	if !IsValidType(p.Type) {
		return ErrInvalidType
	}
	if !p.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if p.Date.IsZero() {
		return errors.New("transaction date is required")
	}
	return nil
}

// TransferParams contains parameters for creating both legs of a transfer
type TransferParams struct {
	UserID        string
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
	Date          time.Time
	Notes         *string
	Private       bool
}

// Validate validates the transfer parameters
func (p TransferParams) Validate() error {
	if p.UserID == "" {
		return errors.New("valid user ID is required")
	}
	if p.FromAccountID == "" || p.ToAccountID == "" {
		return errors.New("both account IDs are required")
	}
	if p.FromAccountID == p.ToAccountID {
		return ErrSameAccount
	}
	if !p.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if p.Date.IsZero() {
		return errors.New("transfer date is required")
	}
	return nil
}

// TransferPair holds the two legs created by a transfer.
type TransferPair struct {
	Out *Transaction `json:"out"`
	In  *Transaction `json:"in"`
}

// UpdateParams contains the patchable fields of a transaction. Nil fields
// are left untouched.
type UpdateParams struct {
	Amount   *decimal.Decimal
	Type     *Type
	Category *string
	Date     *time.Time
	Notes    *string
	Private  *bool
}

// UpdateResult is returned by the update path. PartnerSynced is false when
// the edited row is a transfer leg whose partner could not be found or
// disambiguated; the edit itself still committed.
type UpdateResult struct {
	Transaction   *Transaction `json:"transaction"`
	PartnerSynced bool         `json:"partnerSynced"`
}
