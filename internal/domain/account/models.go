package account

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Common ISO 4217 currency codes
var validCurrencies = map[string]struct{}{
	"BRL": {}, "USD": {}, "EUR": {}, "GBP": {}, "JPY": {},
	"CHF": {}, "CAD": {}, "AUD": {}, "NZD": {}, "CNY": {},
	"INR": {}, "MXN": {}, "ZAR": {}, "SEK": {}, "NOK": {},
	"DKK": {}, "PLN": {}, "TRY": {}, "RUB": {}, "KRW": {},
	"SGD": {}, "HKD": {}, "ARS": {}, "CLP": {}, "COP": {},
}

// Domain errors
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrInvalidCurrency = errors.New("valid ISO 4217 currency is required")
	ErrInvalidInput    = errors.New("invalid input")
)

// Account represents a monetary account owned by a single user.
// The balance is never overwritten directly: it only moves through signed
// increments applied together with the transaction that justifies them.
type Account struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Name      string          `json:"name"`
	Currency  string          `json:"currency"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// CreateParams contains parameters for creating a new account
type CreateParams struct {
	UserID         string
	Name           string
	Currency       string
	InitialBalance decimal.Decimal
}

// Validate validates the create parameters
func (p CreateParams) Validate() error {
	if p.UserID == "" {
		return errors.New("valid user ID is required")
	}
	if p.Name == "" {
		return errors.New("account name is required")
	}
	if p.Currency == "" {
		return errors.New("currency is required")
	}
	if !IsValidCurrency(p.Currency) {
		return ErrInvalidCurrency
	}
	return nil
}

// IsValidCurrency checks if the provided currency is a valid ISO 4217 code.
func IsValidCurrency(c string) bool {
	if len(c) != 3 {
		return false
	}
	_, ok := validCurrencies[c]
	return ok
}
