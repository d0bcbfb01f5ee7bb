package transaction

import (
	"time"

	"github.com/shopspring/decimal"
)

// MatchWindow is the symmetric time window used when searching for the
// partner of a legacy transfer leg. Legs are created back-to-back, not
// simultaneously, so a couple of seconds is enough.
const MatchWindow = 2 * time.Second

// MatchOutcome describes the result of resolving a transfer partner.
type MatchOutcome int

const (
	// MatchFound means exactly one partner was identified.
	MatchFound MatchOutcome = iota
	// MatchNone means no candidate survived either pass.
	MatchNone
	// MatchAmbiguous means the fallback pass left more than one equally
	// plausible candidate. Never guess among them.
	MatchAmbiguous
)

// OppositeType returns the partner leg type for a transfer leg type.
func OppositeType(t Type) Type {
	if t == TypeTransferOut {
		return TypeTransferIn
	}
	return TypeTransferOut
}

// CriteriaFor builds the candidate search criteria for a transfer leg.
func CriteriaFor(leg *Transaction) MatchCriteria {
	return MatchCriteria{
		ExcludeID:      leg.ID,
		UserID:         leg.UserID,
		OppositeType:   OppositeType(leg.Type),
		DateLowerBound: leg.Date.Add(-MatchWindow),
		DateUpperBound: leg.Date.Add(MatchWindow),
	}
}

// ResolvePartner picks the partner leg from candidates already filtered by
// user, opposite type and time window.
//
// Exact pass: candidates whose amount equals the leg's pre-edit amount; a
// single survivor is the partner. Fallback pass (only when the exact pass
// yields zero): drop the amount filter; a single survivor is accepted,
// which recovers a pair whose amounts previously desynced. Zero or more
// than one survivor on the fallback is reported, not resolved.
func ResolvePartner(candidates []*Transaction, preEditAmount decimal.Decimal) (*Transaction, MatchOutcome) {
	var exact []*Transaction
	for _, c := range candidates {
		if c.Amount.Equal(preEditAmount) {
			exact = append(exact, c)
		}
	}

	if len(exact) == 1 {
		return exact[0], MatchFound
	}
	if len(exact) > 1 {
		return nil, MatchAmbiguous
	}

	// Fallback: amount filter dropped
	switch len(candidates) {
	case 0:
		return nil, MatchNone
	case 1:
		return candidates[0], MatchFound
	default:
		return nil, MatchAmbiguous
	}
}
