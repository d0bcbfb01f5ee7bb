package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"soldo/internal/domain/saving"
	"soldo/internal/domain/transaction"
)

const savingColumns = `id, user_id, bank_name, amount, rate_percent, start_date, end_date, settled, settlement_tx_id, source_account_id, created_at, updated_at`

// SavingRepository implements the saving.Repository interface for PostgreSQL
type SavingRepository struct {
	db *DB
}

// NewSavingRepository creates a new PostgreSQL saving repository
func NewSavingRepository(db *DB) *SavingRepository {
	return &SavingRepository{db: db}
}

// Create inserts the saving. A source account, when given, is debited by
// the deposit amount with an Expense transaction recorded in the same
// atomic scope.
func (r *SavingRepository) Create(ctx context.Context, params saving.DepositParams) (*saving.Saving, error) {
	sv := &saving.Saving{
		ID:              uuid.NewString(),
		UserID:          params.UserID,
		BankName:        params.BankName,
		Amount:          params.Amount,
		RatePercent:     params.RatePercent,
		StartDate:       params.StartDate,
		EndDate:         params.EndDate,
		SourceAccountID: params.SourceAccountID,
	}

	err := r.db.withTx(ctx, "saving.Create", func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO savings (id, user_id, bank_name, amount, rate_percent, start_date, end_date, source_account_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING created_at, updated_at
		`,
			sv.ID, sv.UserID, sv.BankName, sv.Amount, sv.RatePercent,
			sv.StartDate, nullTime(sv.EndDate), nullString(sv.SourceAccountID),
		).Scan(&sv.CreatedAt, &sv.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create saving: %w", err)
		}

		if params.SourceAccountID == nil {
			return nil
		}

		srcID := *params.SourceAccountID
		if _, err := lockAccountTx(ctx, tx, srcID, params.UserID); err != nil {
			return err
		}
		if _, err := insertTransactionTx(ctx, tx, transaction.CreateParams{
			UserID:    params.UserID,
			AccountID: srcID,
			Type:      transaction.TypeExpense,
			Category:  transaction.CategorySavings,
			Amount:    params.Amount,
			Date:      params.StartDate,
		}, nil); err != nil {
			return err
		}
		return applyBalanceTx(ctx, tx, srcID, params.UserID, params.Amount.Neg())
	})
	if err != nil {
		return nil, err
	}

	return sv, nil
}

// GetByID retrieves a saving owned by userID
func (r *SavingRepository) GetByID(ctx context.Context, id, userID string) (*saving.Saving, error) {
	query := fmt.Sprintf(`SELECT %s FROM savings WHERE id = $1 AND user_id = $2`, savingColumns)

	sv, err := scanSaving(r.db.QueryRowContext(ctx, query, id, userID))
	if err == sql.ErrNoRows {
		return nil, saving.ErrSavingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get saving: %w", err)
	}
	return sv, nil
}

// ListByUserID retrieves all savings for a specific user
func (r *SavingRepository) ListByUserID(ctx context.Context, userID string) ([]*saving.Saving, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM savings
		WHERE user_id = $1
		ORDER BY start_date DESC, created_at DESC
	`, savingColumns)

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list savings: %w", err)
	}
	defer rows.Close()

	var savings []*saving.Saving
	for rows.Next() {
		sv, err := scanSaving(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan saving: %w", err)
		}
		savings = append(savings, sv)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating savings: %w", err)
	}

	return savings, nil
}

// Settle marks the saving settled, credits the target account by
// totalReturn, records the Income transaction and stores its id as the
// settlement link. The settled flag is re-checked under lock so a
// concurrent settlement cannot credit twice.
func (r *SavingRepository) Settle(ctx context.Context, id, userID, targetAccountID string, totalReturn decimal.Decimal, settledAt time.Time) (*saving.Saving, error) {
	var settled *saving.Saving

	err := r.db.withTx(ctx, "saving.Settle", func(tx *sql.Tx) error {
		sv, err := lockSavingTx(ctx, tx, id, userID)
		if err != nil {
			return err
		}
		if sv.Settled {
			return saving.ErrAlreadySettled
		}

		if _, err := lockAccountTx(ctx, tx, targetAccountID, userID); err != nil {
			return err
		}

		txn, err := insertTransactionTx(ctx, tx, transaction.CreateParams{
			UserID:    userID,
			AccountID: targetAccountID,
			Type:      transaction.TypeIncome,
			Category:  transaction.CategorySavingsReturn,
			Amount:    totalReturn,
			Date:      settledAt,
		}, nil)
		if err != nil {
			return err
		}

		if err := applyBalanceTx(ctx, tx, targetAccountID, userID, totalReturn); err != nil {
			return err
		}

		err = tx.QueryRowContext(ctx, `
			UPDATE savings
			SET settled = TRUE, settlement_tx_id = $1, updated_at = CURRENT_TIMESTAMP
			WHERE id = $2 AND user_id = $3
			RETURNING updated_at
		`, txn.ID, id, userID).Scan(&sv.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to settle saving: %w", err)
		}

		sv.Settled = true
		sv.SettlementTxID = &txn.ID
		settled = sv
		return nil
	})
	if err != nil {
		return nil, err
	}

	return settled, nil
}

// Unsettle clears the settled flag. A settlement-transaction link, when
// present, is reversed exactly: the linked transaction's account is
// debited by that transaction's amount and the transaction is deleted.
// Without a link only the flag is cleared; money already dispersed
// elsewhere is not chased.
func (r *SavingRepository) Unsettle(ctx context.Context, id, userID string) (*saving.Saving, error) {
	var unsettled *saving.Saving

	err := r.db.withTx(ctx, "saving.Unsettle", func(tx *sql.Tx) error {
		sv, err := lockSavingTx(ctx, tx, id, userID)
		if err != nil {
			return err
		}
		if !sv.Settled {
			return saving.ErrNotSettled
		}

		if sv.SettlementTxID != nil {
			txn, err := lockTransactionTx(ctx, tx, *sv.SettlementTxID, userID)
			if err != nil {
				return err
			}
			if err := applyBalanceTx(ctx, tx, txn.AccountID, userID, txn.Amount.Neg()); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM transactions WHERE id = $1 AND user_id = $2`, txn.ID, userID); err != nil {
				return fmt.Errorf("failed to delete settlement transaction: %w", err)
			}
		}

		err = tx.QueryRowContext(ctx, `
			UPDATE savings
			SET settled = FALSE, settlement_tx_id = NULL, updated_at = CURRENT_TIMESTAMP
			WHERE id = $1 AND user_id = $2
			RETURNING updated_at
		`, id, userID).Scan(&sv.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to unsettle saving: %w", err)
		}

		sv.Settled = false
		sv.SettlementTxID = nil
		unsettled = sv
		return nil
	})
	if err != nil {
		return nil, err
	}

	return unsettled, nil
}

// lockSavingTx locks the saving row for the remainder of the scope.
func lockSavingTx(ctx context.Context, tx *sql.Tx, id, userID string) (*saving.Saving, error) {
	query := fmt.Sprintf(`SELECT %s FROM savings WHERE id = $1 AND user_id = $2 FOR UPDATE`, savingColumns)

	sv, err := scanSaving(tx.QueryRowContext(ctx, query, id, userID))
	if err == sql.ErrNoRows {
		return nil, saving.ErrSavingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock saving: %w", err)
	}
	return sv, nil
}

func scanSaving(s rowScanner) (*saving.Saving, error) {
	var sv saving.Saving
	var endDate sql.NullTime
	var settlementTxID, sourceAccountID sql.NullString

	err := s.Scan(
		&sv.ID, &sv.UserID, &sv.BankName, &sv.Amount, &sv.RatePercent,
		&sv.StartDate, &endDate, &sv.Settled, &settlementTxID, &sourceAccountID,
		&sv.CreatedAt, &sv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if endDate.Valid {
		sv.EndDate = &endDate.Time
	}
	if settlementTxID.Valid {
		sv.SettlementTxID = &settlementTxID.String
	}
	if sourceAccountID.Valid {
		sv.SourceAccountID = &sourceAccountID.String
	}

	return &sv, nil
}
