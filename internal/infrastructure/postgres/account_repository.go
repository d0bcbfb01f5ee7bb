package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"soldo/internal/domain/account"
	"soldo/internal/domain/transaction"
)

// AccountRepository implements the account.Repository interface for PostgreSQL
type AccountRepository struct {
	db *DB
}

// NewAccountRepository creates a new PostgreSQL account repository
func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create creates a new account. A non-zero initial balance is recorded as
// an ordinary adjustment transaction in the same atomic scope, so the
// balance always equals the sum of the account's transaction effects.
func (r *AccountRepository) Create(ctx context.Context, params account.CreateParams) (*account.Account, error) {
	acc := &account.Account{
		ID:       uuid.NewString(),
		UserID:   params.UserID,
		Name:     params.Name,
		Currency: params.Currency,
		Balance:  params.InitialBalance,
	}

	err := r.db.withTx(ctx, "account.Create", func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO accounts (id, user_id, name, currency, balance)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING created_at, updated_at
		`, acc.ID, acc.UserID, acc.Name, acc.Currency, acc.Balance).Scan(&acc.CreatedAt, &acc.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create account: %w", err)
		}

		if params.InitialBalance.IsZero() {
			return nil
		}

		typ := transaction.TypeIncome
		if params.InitialBalance.IsNegative() {
			typ = transaction.TypeExpense
		}
		_, err = insertTransactionTx(ctx, tx, transaction.CreateParams{
			UserID:    acc.UserID,
			AccountID: acc.ID,
			Type:      typ,
			Category:  transaction.CategoryAdjustment,
			Amount:    params.InitialBalance.Abs(),
			Date:      acc.CreatedAt,
		}, nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	return acc, nil
}

// GetByID retrieves an account owned by userID
func (r *AccountRepository) GetByID(ctx context.Context, id, userID string) (*account.Account, error) {
	var acc account.Account
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, currency, balance, created_at, updated_at
		FROM accounts
		WHERE id = $1 AND user_id = $2
	`, id, userID).Scan(
		&acc.ID, &acc.UserID, &acc.Name, &acc.Currency, &acc.Balance,
		&acc.CreatedAt, &acc.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, account.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return &acc, nil
}

// ListByUserID retrieves all accounts for a specific user
func (r *AccountRepository) ListByUserID(ctx context.Context, userID string) ([]*account.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, currency, balance, created_at, updated_at
		FROM accounts
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*account.Account
	for rows.Next() {
		var acc account.Account
		err := rows.Scan(
			&acc.ID, &acc.UserID, &acc.Name, &acc.Currency, &acc.Balance,
			&acc.CreatedAt, &acc.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, &acc)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	return accounts, nil
}

// Delete removes an account owned by userID
func (r *AccountRepository) Delete(ctx context.Context, id, userID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM accounts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
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

// ListUserIDs returns the distinct user ids that own at least one account
func (r *AccountRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT user_id FROM accounts ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list user ids: %w", err)
	}
	defer rows.Close()

	var userIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		userIDs = append(userIDs, id)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user ids: %w", err)
	}

	return userIDs, nil
}
