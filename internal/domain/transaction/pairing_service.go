package transaction

import (
	"context"
	"log"
	"sync"
)

const (
	// DefaultWorkerCount bounds concurrent per-user maintenance runs
	DefaultWorkerCount = 4

	// DefaultBatchSize is the page size used when walking a user's rows
	DefaultBatchSize = 500
)

// PairBackfillResult contains the results of a pair backfill run
type PairBackfillResult struct {
	LegsChecked int
	PairsLinked int
	Ambiguous   int
	Unmatched   int
	Errors      []string
}

// PairBackfillService assigns pair ids to legacy transfer legs using the
// two-pass candidate search. Ambiguous legs are counted and left untouched.
type PairBackfillService struct {
	repo        Repository
	workerCount int
}

// NewPairBackfillService creates a new pair backfill service
func NewPairBackfillService(repo Repository, workerCount int) *PairBackfillService {
	if workerCount <= 0 {
		workerCount = DefaultWorkerCount
	}
	return &PairBackfillService{repo: repo, workerCount: workerCount}
}

// BackfillUser links the unambiguous pairs among one user's unpaired
// transfer legs. The full unpaired set is collected up front: linking
// removes rows from the set, which would make offset pagination skip legs
// if fetching and linking were interleaved.
func (s *PairBackfillService) BackfillUser(ctx context.Context, userID string) (*PairBackfillResult, error) {
	result := &PairBackfillResult{Errors: []string{}}

	var legs []*Transaction
	offset := 0
	for {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		batch, err := s.repo.ListUnpairedTransferLegs(ctx, userID, DefaultBatchSize, offset)
		if err != nil {
			return result, err
		}
		legs = append(legs, batch...)
		offset += len(batch)
		if len(batch) < DefaultBatchSize {
			break
		}
	}

	linked := make(map[string]bool)

	for _, leg := range legs {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if linked[leg.ID] {
			continue
		}
		result.LegsChecked++

		candidates, err := s.repo.FindTransferCandidates(ctx, CriteriaFor(leg))
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
			continue
		}

		// Candidates already stamped, here or in a previous run, belong to
		// someone else's pair.
		unpaired := make([]*Transaction, 0, len(candidates))
		for _, c := range candidates {
			if c.PairID == nil && !linked[c.ID] {
				unpaired = append(unpaired, c)
			}
		}

		partner, outcome := ResolvePartner(unpaired, leg.Amount)
		switch outcome {
		case MatchFound:
			pairID := newPairID()
			if err := s.repo.AssignPairID(ctx, pairID, leg.ID, partner.ID, userID); err != nil {
				result.Errors = append(result.Errors, err.Error())
				continue
			}
			linked[leg.ID] = true
			linked[partner.ID] = true
			result.PairsLinked++
		case MatchAmbiguous:
			result.Ambiguous++
		case MatchNone:
			result.Unmatched++
		}
	}

	log.Printf("pair backfill for user %s: checked=%d linked=%d ambiguous=%d unmatched=%d errors=%d",
		userID, result.LegsChecked, result.PairsLinked, result.Ambiguous, result.Unmatched, len(result.Errors))

	return result, nil
}

// BackfillUsers runs the backfill for all provided user IDs with bounded
// concurrency. Returns a map of userID -> result.
func (s *PairBackfillService) BackfillUsers(ctx context.Context, userIDs []string) map[string]*PairBackfillResult {
	results := make(map[string]*PairBackfillResult)
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
				results[uid] = &PairBackfillResult{Errors: []string{ctx.Err().Error()}}
				mu.Unlock()
				return
			}

			result, err := s.BackfillUser(ctx, uid)
			if err != nil {
				result = &PairBackfillResult{Errors: []string{err.Error()}}
			}

			mu.Lock()
			results[uid] = result
			mu.Unlock()
		}(userID)
	}

	wg.Wait()
	return results
}
