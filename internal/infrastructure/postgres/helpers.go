package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"soldo/internal/domain/account"
	"soldo/internal/domain/transaction"
)

// txnColumns is the canonical column list for scanning transactions rows.
const txnColumns = `id, user_id, account_id, type, category, amount, date, notes, private, transfer_pair_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s rowScanner) (*transaction.Transaction, error) {
	var txn transaction.Transaction
	var notes, pairID sql.NullString

	err := s.Scan(
		&txn.ID, &txn.UserID, &txn.AccountID, &txn.Type, &txn.Category,
		&txn.Amount, &txn.Date, &notes, &txn.Private, &pairID,
		&txn.CreatedAt, &txn.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if notes.Valid {
		txn.Notes = &notes.String
	}
	if pairID.Valid {
		txn.PairID = &pairID.String
	}

	return &txn, nil
}

// lockAccountTx locks the account row for the remainder of the transaction
// and returns its currency. The row lock serializes concurrent operations
// touching the same account; a miss (absent or not owned) is
// account.ErrAccountNotFound.
func lockAccountTx(ctx context.Context, tx *sql.Tx, accountID, userID string) (string, error) {
	var currency string
	err := tx.QueryRowContext(ctx,
		`SELECT currency FROM accounts WHERE id = $1 AND user_id = $2 FOR UPDATE`,
		accountID, userID,
	).Scan(&currency)
	if err == sql.ErrNoRows {
		return "", account.ErrAccountNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to lock account: %w", err)
	}
	return currency, nil
}

// applyBalanceTx applies a signed delta to the account balance inside the
// current transaction.
func applyBalanceTx(ctx context.Context, tx *sql.Tx, accountID, userID string, delta decimal.Decimal) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE accounts SET balance = balance + $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2 AND user_id = $3`,
		delta, accountID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to apply balance delta: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return account.ErrAccountNotFound
	}
	return nil
}

// insertTransactionTx inserts a ledger entry inside the current transaction.
// The balance mutation is the caller's responsibility so that both land in
// the same atomic scope.
func insertTransactionTx(ctx context.Context, tx *sql.Tx, p transaction.CreateParams, pairID *string) (*transaction.Transaction, error) {
	txn := &transaction.Transaction{
		ID:        uuid.NewString(),
		UserID:    p.UserID,
		AccountID: p.AccountID,
		Type:      p.Type,
		Category:  p.Category,
		Amount:    p.Amount,
		Date:      p.Date,
		Notes:     p.Notes,
		Private:   p.Private,
		PairID:    pairID,
	}

	err := tx.QueryRowContext(ctx, `
		INSERT INTO transactions (id, user_id, account_id, type, category, amount, date, notes, private, transfer_pair_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`,
		txn.ID, txn.UserID, txn.AccountID, txn.Type, txn.Category,
		txn.Amount, txn.Date, nullString(txn.Notes), txn.Private, nullString(txn.PairID),
	).Scan(&txn.CreatedAt, &txn.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}

	return txn, nil
}

// Helper functions

func nowTimestamp() time.Time {
	return time.Now().UTC()
}

func nullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil || t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
