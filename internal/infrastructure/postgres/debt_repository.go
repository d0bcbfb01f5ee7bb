package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"soldo/internal/domain/debt"
	"soldo/internal/domain/transaction"
)

const debtColumns = `id, user_id, name, original_amount, remaining_amount, paid, due_date, created_at, updated_at`

// DebtRepository implements the debt.Repository interface for PostgreSQL
type DebtRepository struct {
	db *DB
}

// NewDebtRepository creates a new PostgreSQL debt repository
func NewDebtRepository(db *DB) *DebtRepository {
	return &DebtRepository{db: db}
}

// Create records a new debt with remaining = original and paid = false
func (r *DebtRepository) Create(ctx context.Context, params debt.CreateParams) (*debt.Debt, error) {
	d := &debt.Debt{
		ID:              uuid.NewString(),
		UserID:          params.UserID,
		Name:            params.Name,
		OriginalAmount:  params.Amount,
		RemainingAmount: params.Amount,
		DueDate:         params.DueDate,
	}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO debts (id, user_id, name, original_amount, remaining_amount, due_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`,
		d.ID, d.UserID, d.Name, d.OriginalAmount, d.RemainingAmount, nullTime(d.DueDate),
	).Scan(&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create debt: %w", err)
	}

	return d, nil
}

// GetByID retrieves a debt owned by userID
func (r *DebtRepository) GetByID(ctx context.Context, id, userID string) (*debt.Debt, error) {
	query := fmt.Sprintf(`SELECT %s FROM debts WHERE id = $1 AND user_id = $2`, debtColumns)

	d, err := scanDebt(r.db.QueryRowContext(ctx, query, id, userID))
	if err == sql.ErrNoRows {
		return nil, debt.ErrDebtNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get debt: %w", err)
	}
	return d, nil
}

// ListByUserID retrieves all debts for a specific user
func (r *DebtRepository) ListByUserID(ctx context.Context, userID string) ([]*debt.Debt, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM debts
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, debtColumns)

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list debts: %w", err)
	}
	defer rows.Close()

	var debts []*debt.Debt
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan debt: %w", err)
		}
		debts = append(debts, d)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating debts: %w", err)
	}

	return debts, nil
}

// Pay applies a payment under lock. Remaining is floored at zero and paid
// latches when it reaches zero; an already-paid debt aborts the scope with
// no mutation. A source account, when given, is debited by the full
// payment amount with an Expense transaction recorded in the same scope.
func (r *DebtRepository) Pay(ctx context.Context, params debt.PayParams) (*debt.Debt, error) {
	var paid *debt.Debt

	err := r.db.withTx(ctx, "debt.Pay", func(tx *sql.Tx) error {
		d, err := lockDebtTx(ctx, tx, params.DebtID, params.UserID)
		if err != nil {
			return err
		}
		if d.Paid {
			return debt.ErrAlreadyPaid
		}

		newRemaining := d.RemainingAmount.Sub(params.Amount)
		if newRemaining.IsNegative() {
			newRemaining = decimal.Zero
		}
		nowPaid := newRemaining.IsZero()

		err = tx.QueryRowContext(ctx, `
			UPDATE debts
			SET remaining_amount = $1, paid = $2, updated_at = CURRENT_TIMESTAMP
			WHERE id = $3 AND user_id = $4
			RETURNING updated_at
		`, newRemaining, nowPaid, params.DebtID, params.UserID).Scan(&d.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to update debt: %w", err)
		}

		if params.SourceAccountID != nil {
			srcID := *params.SourceAccountID
			if _, err := lockAccountTx(ctx, tx, srcID, params.UserID); err != nil {
				return err
			}
			if _, err := insertTransactionTx(ctx, tx, transaction.CreateParams{
				UserID:    params.UserID,
				AccountID: srcID,
				Type:      transaction.TypeExpense,
				Category:  transaction.CategoryDebtRepayment,
				Amount:    params.Amount,
				Date:      nowTimestamp(),
			}, nil); err != nil {
				return err
			}
			if err := applyBalanceTx(ctx, tx, srcID, params.UserID, params.Amount.Neg()); err != nil {
				return err
			}
		}

		d.RemainingAmount = newRemaining
		d.Paid = nowPaid
		paid = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	return paid, nil
}

// lockDebtTx locks the debt row for the remainder of the scope.
func lockDebtTx(ctx context.Context, tx *sql.Tx, id, userID string) (*debt.Debt, error) {
	query := fmt.Sprintf(`SELECT %s FROM debts WHERE id = $1 AND user_id = $2 FOR UPDATE`, debtColumns)

	d, err := scanDebt(tx.QueryRowContext(ctx, query, id, userID))
	if err == sql.ErrNoRows {
		return nil, debt.ErrDebtNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock debt: %w", err)
	}
	return d, nil
}

func scanDebt(s rowScanner) (*debt.Debt, error) {
	var d debt.Debt
	var dueDate sql.NullTime

	err := s.Scan(
		&d.ID, &d.UserID, &d.Name, &d.OriginalAmount, &d.RemainingAmount,
		&d.Paid, &dueDate, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if dueDate.Valid {
		d.DueDate = &dueDate.Time
	}

	return &d, nil
}
