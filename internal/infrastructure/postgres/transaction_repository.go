package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"soldo/internal/domain/transaction"
)

// TransactionRepository implements the transaction.Repository interface for
// PostgreSQL. Every mutating method runs as one database transaction with
// FOR UPDATE row locks on the rows it touches; row locking is the only
// concurrency control (no in-process locks).
type TransactionRepository struct {
	db *DB
}

// NewTransactionRepository creates a new PostgreSQL transaction repository
func NewTransactionRepository(db *DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create atomically inserts the transaction and applies its signed effect
// to the owning account's balance.
func (r *TransactionRepository) Create(ctx context.Context, params transaction.CreateParams) (*transaction.Transaction, error) {
	var created *transaction.Transaction

	err := r.db.withTx(ctx, "transaction.Create", func(tx *sql.Tx) error {
		if _, err := lockAccountTx(ctx, tx, params.AccountID, params.UserID); err != nil {
			return err
		}

		txn, err := insertTransactionTx(ctx, tx, params, nil)
		if err != nil {
			return err
		}

		if err := applyBalanceTx(ctx, tx, params.AccountID, params.UserID, transaction.Effect(params.Type, params.Amount)); err != nil {
			return err
		}

		created = txn
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// CreateTransferPair atomically inserts both legs with a shared pair id and
// applies both balance deltas. Accounts are locked in id order so two
// concurrent transfers over the same pair of accounts cannot deadlock.
func (r *TransactionRepository) CreateTransferPair(ctx context.Context, params transaction.TransferParams) (*transaction.TransferPair, error) {
	var pair *transaction.TransferPair

	err := r.db.withTx(ctx, "transaction.CreateTransferPair", func(tx *sql.Tx) error {
		first, second := params.FromAccountID, params.ToAccountID
		if second < first {
			first, second = second, first
		}

		currencies := make(map[string]string, 2)
		for _, id := range []string{first, second} {
			cur, err := lockAccountTx(ctx, tx, id, params.UserID)
			if err != nil {
				return err
			}
			currencies[id] = cur
		}
		if currencies[params.FromAccountID] != currencies[params.ToAccountID] {
			return transaction.ErrCurrencyMismatch
		}

		pairID := uuid.NewString()

		out, err := insertTransactionTx(ctx, tx, transaction.CreateParams{
			UserID:    params.UserID,
			AccountID: params.FromAccountID,
			Type:      transaction.TypeTransferOut,
			Category:  transaction.CategoryTransferOut,
			Amount:    params.Amount,
			Date:      params.Date,
			Notes:     params.Notes,
			Private:   params.Private,
		}, &pairID)
		if err != nil {
			return err
		}

		in, err := insertTransactionTx(ctx, tx, transaction.CreateParams{
			UserID:    params.UserID,
			AccountID: params.ToAccountID,
			Type:      transaction.TypeTransferIn,
			Category:  transaction.CategoryTransferIn,
			Amount:    params.Amount,
			Date:      params.Date,
			Notes:     params.Notes,
			Private:   params.Private,
		}, &pairID)
		if err != nil {
			return err
		}

		if err := applyBalanceTx(ctx, tx, params.FromAccountID, params.UserID, params.Amount.Neg()); err != nil {
			return err
		}
		if err := applyBalanceTx(ctx, tx, params.ToAccountID, params.UserID, params.Amount); err != nil {
			return err
		}

		pair = &transaction.TransferPair{Out: out, In: in}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return pair, nil
}

// GetByID retrieves a transaction owned by userID
func (r *TransactionRepository) GetByID(ctx context.Context, id, userID string) (*transaction.Transaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE id = $1 AND user_id = $2`, txnColumns)

	txn, err := scanTransaction(r.db.QueryRowContext(ctx, query, id, userID))
	if err == sql.ErrNoRows {
		return nil, transaction.ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return txn, nil
}

// ListByAccountID retrieves transactions for one account, newest first
func (r *TransactionRepository) ListByAccountID(ctx context.Context, accountID, userID string, limit, offset int) ([]*transaction.Transaction, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM transactions
		WHERE account_id = $1 AND user_id = $2
		ORDER BY date DESC, created_at DESC
		LIMIT $3 OFFSET $4
	`, txnColumns)

	return r.queryTransactions(ctx, query, accountID, userID, limit, offset)
}

// ListByUserID retrieves transactions across all of a user's accounts
func (r *TransactionRepository) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*transaction.Transaction, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM transactions
		WHERE user_id = $1
		ORDER BY date DESC, created_at DESC
		LIMIT $2 OFFSET $3
	`, txnColumns)

	return r.queryTransactions(ctx, query, userID, limit, offset)
}

// Update atomically patches the transaction. The old signed effect is
// reversed and the new one applied as a single delta; when a partner is
// supplied its amount and account balance are synchronized, and a heal
// pair id is stamped onto both legs, all in the same scope.
func (r *TransactionRepository) Update(ctx context.Context, id, userID string, params transaction.UpdateParams, partner *transaction.PartnerUpdate) (*transaction.Transaction, error) {
	var updated *transaction.Transaction

	err := r.db.withTx(ctx, "transaction.Update", func(tx *sql.Tx) error {
		oldTxn, err := lockTransactionTx(ctx, tx, id, userID)
		if err != nil {
			return err
		}

		next := *oldTxn
		if params.Amount != nil {
			next.Amount = *params.Amount
		}
		if params.Type != nil {
			next.Type = *params.Type
		}
		if params.Category != nil {
			next.Category = *params.Category
		}
		if params.Date != nil {
			next.Date = *params.Date
		}
		if params.Notes != nil {
			next.Notes = params.Notes
		}
		if params.Private != nil {
			next.Private = *params.Private
		}
		if partner != nil && partner.HealPairID != nil {
			next.PairID = partner.HealPairID
		}

		delta := transaction.Effect(next.Type, next.Amount).Sub(transaction.Effect(oldTxn.Type, oldTxn.Amount))
		if !delta.IsZero() {
			if err := applyBalanceTx(ctx, tx, oldTxn.AccountID, userID, delta); err != nil {
				return err
			}
		}

		err = tx.QueryRowContext(ctx, `
			UPDATE transactions
			SET amount = $1, type = $2, category = $3, date = $4, notes = $5, private = $6,
			    transfer_pair_id = $7, updated_at = CURRENT_TIMESTAMP
			WHERE id = $8 AND user_id = $9
			RETURNING updated_at
		`,
			next.Amount, next.Type, next.Category, next.Date, nullString(next.Notes),
			next.Private, nullString(next.PairID), id, userID,
		).Scan(&next.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to update transaction: %w", err)
		}

		if partner != nil {
			if err := r.syncPartnerTx(ctx, tx, partner, userID, next.Amount, next.PairID); err != nil {
				return err
			}
		}

		updated = &next
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// syncPartnerTx brings the partner leg's amount in line with the edited leg
// and adjusts the partner's account balance by exactly the difference.
func (r *TransactionRepository) syncPartnerTx(ctx context.Context, tx *sql.Tx, partner *transaction.PartnerUpdate, userID string, newAmount decimal.Decimal, pairID *string) error {
	pOld, err := lockTransactionTx(ctx, tx, partner.ID, userID)
	if err != nil {
		return err
	}

	pDelta := transaction.Effect(pOld.Type, newAmount).Sub(transaction.Effect(pOld.Type, pOld.Amount))
	if !pDelta.IsZero() {
		if err := applyBalanceTx(ctx, tx, pOld.AccountID, userID, pDelta); err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE transactions
		SET amount = $1, transfer_pair_id = COALESCE($2, transfer_pair_id), updated_at = CURRENT_TIMESTAMP
		WHERE id = $3 AND user_id = $4
	`, newAmount, nullString(pairID), partner.ID, userID)
	if err != nil {
		return fmt.Errorf("failed to sync partner leg: %w", err)
	}

	return nil
}

// Delete atomically removes the transaction and reverses its signed effect.
// A leg with a pair id takes its partner and the partner's balance effect
// down in the same scope; a legacy unpaired leg deletes alone.
func (r *TransactionRepository) Delete(ctx context.Context, id, userID string) error {
	return r.db.withTx(ctx, "transaction.Delete", func(tx *sql.Tx) error {
		oldTxn, err := lockTransactionTx(ctx, tx, id, userID)
		if err != nil {
			return err
		}

		if err := r.deleteLegTx(ctx, tx, oldTxn, userID); err != nil {
			return err
		}

		if oldTxn.PairID == nil {
			return nil
		}

		pTxn, err := lockPartnerTx(ctx, tx, *oldTxn.PairID, oldTxn.ID, userID)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return err
		}
		return r.deleteLegTx(ctx, tx, pTxn, userID)
	})
}

func (r *TransactionRepository) deleteLegTx(ctx context.Context, tx *sql.Tx, txn *transaction.Transaction, userID string) error {
	if err := applyBalanceTx(ctx, tx, txn.AccountID, userID, transaction.Effect(txn.Type, txn.Amount).Neg()); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = $1 AND user_id = $2`, txn.ID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return nil
}

// FindByPairID returns the partner leg sharing pairID
func (r *TransactionRepository) FindByPairID(ctx context.Context, pairID, excludeID, userID string) (*transaction.Transaction, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM transactions
		WHERE transfer_pair_id = $1 AND id <> $2 AND user_id = $3
	`, txnColumns)

	txn, err := scanTransaction(r.db.QueryRowContext(ctx, query, pairID, excludeID, userID))
	if err == sql.ErrNoRows {
		return nil, transaction.ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find partner leg: %w", err)
	}
	return txn, nil
}

// FindTransferCandidates returns possible partner legs for a legacy
// transfer leg: same user, opposite leg type, inside the time window,
// excluding the edited leg itself.
func (r *TransactionRepository) FindTransferCandidates(ctx context.Context, criteria transaction.MatchCriteria) ([]*transaction.Transaction, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM transactions
		WHERE user_id = $1 AND type = $2 AND id <> $3 AND date BETWEEN $4 AND $5
		ORDER BY date ASC
	`, txnColumns)

	return r.queryTransactions(ctx, query,
		criteria.UserID, criteria.OppositeType, criteria.ExcludeID,
		criteria.DateLowerBound, criteria.DateUpperBound)
}

// ListUnpairedTransferLegs returns a user's transfer legs with no pair id,
// oldest first
func (r *TransactionRepository) ListUnpairedTransferLegs(ctx context.Context, userID string, limit, offset int) ([]*transaction.Transaction, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM transactions
		WHERE user_id = $1 AND type IN ($2, $3) AND transfer_pair_id IS NULL
		ORDER BY date ASC, created_at ASC
		LIMIT $4 OFFSET $5
	`, txnColumns)

	return r.queryTransactions(ctx, query,
		userID, transaction.TypeTransferOut, transaction.TypeTransferIn, limit, offset)
}

// AssignPairID stamps both legs with the given pair id. The statement only
// touches legs that are still unpaired; anything other than exactly two
// affected rows aborts the scope.
func (r *TransactionRepository) AssignPairID(ctx context.Context, pairID, legID, partnerID, userID string) error {
	return r.db.withTx(ctx, "transaction.AssignPairID", func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE transactions
			SET transfer_pair_id = $1, updated_at = CURRENT_TIMESTAMP
			WHERE id IN ($2, $3) AND user_id = $4 AND transfer_pair_id IS NULL
		`, pairID, legID, partnerID, userID)
		if err != nil {
			return fmt.Errorf("failed to assign pair id: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get affected rows: %w", err)
		}
		if rows != 2 {
			return fmt.Errorf("pair assignment affected %d rows, want 2", rows)
		}
		return nil
	})
}

// SumEffectsByAccount returns the sum of signed effects of all transactions
// recorded against the account
func (r *TransactionRepository) SumEffectsByAccount(ctx context.Context, accountID, userID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(
			CASE WHEN type IN ($1, $2) THEN amount ELSE -amount END
		), 0)
		FROM transactions
		WHERE account_id = $3 AND user_id = $4
	`, transaction.TypeIncome, transaction.TypeTransferIn, accountID, userID).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum transaction effects: %w", err)
	}
	return sum, nil
}

// lockTransactionTx locks the transaction row for the remainder of the
// scope. A miss (absent or not owned) is transaction.ErrTransactionNotFound.
func lockTransactionTx(ctx context.Context, tx *sql.Tx, id, userID string) (*transaction.Transaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE id = $1 AND user_id = $2 FOR UPDATE`, txnColumns)

	txn, err := scanTransaction(tx.QueryRowContext(ctx, query, id, userID))
	if err == sql.ErrNoRows {
		return nil, transaction.ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock transaction: %w", err)
	}
	return txn, nil
}

// lockPartnerTx locks the partner leg by pair id. sql.ErrNoRows passes
// through so callers can treat a missing partner as non-fatal.
func lockPartnerTx(ctx context.Context, tx *sql.Tx, pairID, excludeID, userID string) (*transaction.Transaction, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM transactions
		WHERE transfer_pair_id = $1 AND id <> $2 AND user_id = $3
		FOR UPDATE
	`, txnColumns)

	return scanTransaction(tx.QueryRowContext(ctx, query, pairID, excludeID, userID))
}

func (r *TransactionRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]*transaction.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txns []*transaction.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, txn)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return txns, nil
}
