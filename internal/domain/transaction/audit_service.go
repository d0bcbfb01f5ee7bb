package transaction

import (
	"context"
	"log"
	"sync"

	"github.com/shopspring/decimal"

	"soldo/internal/domain/account"
)

// AccountDivergence reports an account whose stored balance does not equal
// the sum of its transactions' signed effects.
type AccountDivergence struct {
	AccountID   string
	AccountName string
	Stored      decimal.Decimal
	Computed    decimal.Decimal
	Delta       decimal.Decimal
}

// BalanceAuditResult contains the results of a balance audit run
type BalanceAuditResult struct {
	AccountsChecked int
	Divergences     []AccountDivergence
	Errors          []string
}

// BalanceAuditService recomputes account balances from transaction history
// and reports divergence. Purely diagnostic: nothing is mutated.
type BalanceAuditService struct {
	accounts    account.Repository
	repo        Repository
	workerCount int
}

// NewBalanceAuditService creates a new balance audit service
func NewBalanceAuditService(accounts account.Repository, repo Repository, workerCount int) *BalanceAuditService {
	if workerCount <= 0 {
		workerCount = DefaultWorkerCount
	}
	return &BalanceAuditService{accounts: accounts, repo: repo, workerCount: workerCount}
}

// AuditUser checks every account of one user.
func (s *BalanceAuditService) AuditUser(ctx context.Context, userID string) (*BalanceAuditResult, error) {
	result := &BalanceAuditResult{Errors: []string{}}

	accounts, err := s.accounts.ListByUserID(ctx, userID)
	if err != nil {
		return result, err
	}

	for _, acc := range accounts {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		result.AccountsChecked++

		computed, err := s.repo.SumEffectsByAccount(ctx, acc.ID, userID)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
			continue
		}

		if !computed.Equal(acc.Balance) {
			result.Divergences = append(result.Divergences, AccountDivergence{
				AccountID:   acc.ID,
				AccountName: acc.Name,
				Stored:      acc.Balance,
				Computed:    computed,
				Delta:       acc.Balance.Sub(computed),
			})
		}
	}

	log.Printf("balance audit for user %s: accounts=%d diverged=%d errors=%d",
		userID, result.AccountsChecked, len(result.Divergences), len(result.Errors))

	return result, nil
}

// AuditUsers audits all provided user IDs with bounded concurrency.
// Returns a map of userID -> result.
func (s *BalanceAuditService) AuditUsers(ctx context.Context, userIDs []string) map[string]*BalanceAuditResult {
	results := make(map[string]*BalanceAuditResult)
	var mu sync.Mutex
	var wg sync.WaitGroup

	sem := make(chan struct{}, s.workerCount)

	for _, userID := range userIDs {
		wg.Add(1)
		go func(uid string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				mu.Lock()
				results[uid] = &BalanceAuditResult{Errors: []string{ctx.Err().Error()}}
				mu.Unlock()
				return
			}

			result, err := s.AuditUser(ctx, uid)
			if err != nil {
				result = &BalanceAuditResult{Errors: []string{err.Error()}}
			}

			mu.Lock()
			results[uid] = result
			mu.Unlock()
		}(userID)
	}

	wg.Wait()
	return results
}
