package transaction

import (
	"context"
	"errors"
	"log"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"soldo/internal/domain/account"
)

var (
	ledgerMeter        = otel.Meter("soldo/ledger")
	entriesCreated, _  = ledgerMeter.Int64Counter("ledger.entries.created", metric.WithDescription("Transactions recorded, including transfer legs"))
	partnerUnsynced, _ = ledgerMeter.Int64Counter("ledger.transfer.partner_unsynced", metric.WithDescription("Transfer leg edits that committed without a synchronized partner"))
)

// Ledger couples transaction records with the balance mutations they imply.
// Every mutating call runs as one atomic scope in the repository: the entry
// and the balance delta commit together or not at all.
type Ledger struct {
	repo     Repository
	accounts account.Repository
}

// NewLedger creates a new transaction ledger service
func NewLedger(repo Repository, accounts account.Repository) *Ledger {
	return &Ledger{repo: repo, accounts: accounts}
}

// CreateTransaction records a transaction and applies its signed effect to
// the owning account. Ownership of the account is verified inside the
// atomic scope; a miss is account.ErrAccountNotFound.
func (l *Ledger) CreateTransaction(ctx context.Context, params CreateParams) (*Transaction, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	txn, err := l.repo.Create(ctx, params)
	if err != nil {
		return nil, err
	}
	entriesCreated.Add(ctx, 1)
	return txn, nil
}

// CreateTransfer records both legs of a transfer between two of the user's
// accounts. The legs share a pair id, carry equal amounts and the same
// timestamp, and both balance deltas land in one atomic scope.
func (l *Ledger) CreateTransfer(ctx context.Context, params TransferParams) (*TransferPair, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	pair, err := l.repo.CreateTransferPair(ctx, params)
	if err != nil {
		return nil, err
	}
	entriesCreated.Add(ctx, 2)
	return pair, nil
}

// GetTransaction retrieves a transaction, scoped to the owning user
func (l *Ledger) GetTransaction(ctx context.Context, id, userID string) (*Transaction, error) {
	return l.repo.GetByID(ctx, id, userID)
}

// ListTransactions retrieves a page of the user's transactions
func (l *Ledger) ListTransactions(ctx context.Context, userID string, limit, offset int) ([]*Transaction, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return l.repo.ListByUserID(ctx, userID, limit, offset)
}

// ListAccountTransactions retrieves a page of one account's transactions
func (l *Ledger) ListAccountTransactions(ctx context.Context, accountID, userID string, limit, offset int) ([]*Transaction, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return l.repo.ListByAccountID(ctx, accountID, userID, limit, offset)
}

// UpdateTransaction patches a transaction. The balance delta is reversed
// using the old signed amount and reapplied using the new one, inside one
// atomic scope. Editing the amount of a transfer leg also synchronizes the
// partner leg and its account balance; when the partner cannot be found or
// disambiguated, the edited leg still commits and PartnerSynced is false.
func (l *Ledger) UpdateTransaction(ctx context.Context, id, userID string, params UpdateParams) (*UpdateResult, error) {
	if params.Amount != nil && !params.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	existing, err := l.repo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if params.Type != nil {
		if !IsValidType(*params.Type) {
			return nil, ErrInvalidType
		}
		// Type edits are limited to flipping income and expense. A transfer
		// leg keeps its type for life; so does its partner.
		if existing.IsTransferLeg() || *params.Type == TypeTransferOut || *params.Type == TypeTransferIn {
			if *params.Type != existing.Type {
				return nil, ErrTransferTypeChange
			}
		}
	}

	var partner *PartnerUpdate
	synced := true

	amountChanged := params.Amount != nil && !params.Amount.Equal(existing.Amount)
	if existing.IsTransferLeg() && amountChanged {
		p, err := l.resolvePartner(ctx, existing)
		if err != nil {
			return nil, err
		}
		if p == nil {
			synced = false
		} else {
			partner = p
		}
	}

	updated, err := l.repo.Update(ctx, id, userID, params, partner)
	if err != nil {
		return nil, err
	}

	if !synced {
		partnerUnsynced.Add(ctx, 1)
		log.Printf("transfer leg %s updated without partner sync (user %s)", id, userID)
	}

	return &UpdateResult{Transaction: updated, PartnerSynced: synced}, nil
}

// resolvePartner locates the partner leg of a transfer. Legs created by this
// system carry a shared pair id and resolve by direct lookup; legacy legs
// fall back to the two-pass candidate search, and a successful heuristic
// match is healed by stamping the pair id onto both legs.
func (l *Ledger) resolvePartner(ctx context.Context, leg *Transaction) (*PartnerUpdate, error) {
	if leg.PairID != nil {
		p, err := l.repo.FindByPairID(ctx, *leg.PairID, leg.ID, leg.UserID)
		if errors.Is(err, ErrTransactionNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &PartnerUpdate{ID: p.ID}, nil
	}

	candidates, err := l.repo.FindTransferCandidates(ctx, CriteriaFor(leg))
	if err != nil {
		return nil, err
	}

	// A candidate already stamped with a pair id belongs to another pair;
	// adopting it would overwrite that id and orphan its true partner.
	unpaired := candidates[:0]
	for _, c := range candidates {
		if c.PairID == nil {
			unpaired = append(unpaired, c)
		}
	}

	p, outcome := ResolvePartner(unpaired, leg.Amount)
	if outcome != MatchFound {
		return nil, nil
	}
	pairID := newPairID()
	return &PartnerUpdate{ID: p.ID, HealPairID: &pairID}, nil
}

// DeleteTransaction removes a transaction, reversing its balance effect.
// A transfer leg with a pair id takes its partner down in the same scope;
// a legacy unpaired leg deletes alone.
func (l *Ledger) DeleteTransaction(ctx context.Context, id, userID string) error {
	return l.repo.Delete(ctx, id, userID)
}

// AdjustBalance brings an account to the target balance by recording an
// ordinary adjustment transaction for the difference. Balances are never
// overwritten directly.
func (l *Ledger) AdjustBalance(ctx context.Context, accountID, userID string, target decimal.Decimal) (*Transaction, error) {
	acc, err := l.accounts.GetByID(ctx, accountID, userID)
	if err != nil {
		return nil, err
	}

	diff := target.Sub(acc.Balance)
	if diff.IsZero() {
		return nil, account.ErrInvalidInput
	}

	typ := TypeIncome
	if diff.IsNegative() {
		typ = TypeExpense
	}

	return l.CreateTransaction(ctx, CreateParams{
		UserID:    userID,
		AccountID: accountID,
		Type:      typ,
		Category:  CategoryAdjustment,
		Amount:    diff.Abs(),
		Date:      nowFunc(),
	})
}
