// Package classify partitions a user's transactions into the buckets the
// spending engine aggregates over: regular (recurring) commitments, savings
// plans, goal-transfer bookkeeping legs, large one-offs, and ordinary
// spending. All functions are pure and order-preserving; callers chain them.
package classify

import (
	"strings"

	"sts/models"
)

// Narrative markers carried over from the account's bookkeeping conventions.
// Goal markers tag the internal leg of a pot transfer; only the real leg of
// such a transfer may count toward spending.
const (
	TravelNarrative           = "TfL"
	InternalTransferNarrative = "INTERNAL TRANSFER"
	MonthlyCashGoalNarrative  = "💸 Monthly Cash"
	SavingsGoalNarrative      = "💰 Savings"
	CardGoalNarrative         = "💳 Amex"
)

// regularSources mark recurring commitment entries.
var regularSources = []models.TransactionSource{
	models.SourceExternalRegularInbound,
	models.SourceExternalRegularOut,
}

// Exclusions is the per-calculation filter configuration: transactions with
// these sources or narratives never count as discretionary spending. The
// historical formula variants disagreed on the exact set; Default is the
// canonical one and callers may override per calculation.
type Exclusions struct {
	Sources    []models.TransactionSource
	Narratives []string
}

// Default returns the canonical exclusion set: recurring and savings
// entries, card-settlement funding, direct debits, and the internal-transfer
// narratives.
func Default() Exclusions {
	return Exclusions{
		Sources: []models.TransactionSource{
			models.SourceExternalRegularInbound,
			models.SourceExternalRegularOut,
			models.SourceExternalSavings,
			models.SourceStripeFunding,
			models.SourceDirectDebit,
		},
		Narratives: []string{
			MonthlyCashGoalNarrative,
			InternalTransferNarrative,
		},
	}
}

// IsRegular reports whether tx is a recurring commitment entry.
func IsRegular(tx models.Transaction) bool {
	for _, s := range regularSources {
		if tx.Source == s {
			return true
		}
	}
	return false
}

// IsSavings reports whether tx is a savings plan entry.
func IsSavings(tx models.Transaction) bool {
	return tx.Source == models.SourceExternalSavings
}

// IsLarge reports whether tx's absolute amount meets the user's one-off
// threshold.
func IsLarge(tx models.Transaction, threshold float64) bool {
	amount := tx.Amount
	if amount < 0 {
		amount = -amount
	}
	return amount >= threshold
}

// FilterRegularCounterparts drops transactions that are the real-world
// counterpart of a regular entry: same lower-cased narrative as the entry's
// internal narrative and, when the entry pins an internal amount, the exact
// same amount. Without this the recurring transfer would be double-counted.
func FilterRegularCounterparts(transactions, regulars []models.Transaction) []models.Transaction {
	type counterpart struct {
		narrative string
		amount    *float64
	}
	counterparts := make([]counterpart, 0, len(regulars))
	for _, r := range regulars {
		if r.InternalNarrative == nil {
			continue
		}
		counterparts = append(counterparts, counterpart{
			narrative: strings.ToLower(*r.InternalNarrative),
			amount:    r.InternalAmount,
		})
	}

	out := make([]models.Transaction, 0, len(transactions))
	for _, tx := range transactions {
		narrative := strings.ToLower(tx.Narrative)
		matched := false
		for _, cp := range counterparts {
			if narrative != cp.narrative {
				continue
			}
			if cp.amount != nil && tx.Amount != *cp.amount {
				continue
			}
			matched = true
			break
		}
		if !matched {
			out = append(out, tx)
		}
	}
	return out
}

// FilterGoalTransactions drops the bookkeeping leg of goal transfers: a
// card-goal narrative is kept only when outbound, a savings-goal narrative
// only when inbound.
func FilterGoalTransactions(transactions []models.Transaction) []models.Transaction {
	out := make([]models.Transaction, 0, len(transactions))
	for _, tx := range transactions {
		switch tx.Narrative {
		case CardGoalNarrative:
			if tx.Direction != models.DirectionOutbound {
				continue
			}
		case SavingsGoalNarrative:
			if tx.Direction != models.DirectionInbound {
				continue
			}
		}
		out = append(out, tx)
	}
	return out
}

// AmountSum totals the signed amounts of transactions.
func AmountSum(transactions []models.Transaction) float64 {
	var sum float64
	for _, tx := range transactions {
		sum += tx.Amount
	}
	return sum
}
