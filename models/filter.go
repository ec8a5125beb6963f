package models

import "time"

// TransactionFilter narrows a user's transaction history. Zero value matches
// everything. Repositories translate it to SQL; test fakes apply it in
// memory, so the matching rules live here next to the model.
type TransactionFilter struct {
	SourceIn       []TransactionSource
	SourceNotIn    []TransactionSource
	NarrativeIs    string
	NarrativeNotIn []string

	// Created >= From and Created < To; ToInclusive widens the upper bound
	// to Created <= To.
	From        *time.Time
	To          *time.Time
	ToInclusive bool

	// Absolute-amount bands: AbsAmountBelow keeps ordinary spending,
	// AbsAmountAtLeast keeps large one-offs. At most one is normally set.
	AbsAmountBelow   *float64
	AbsAmountAtLeast *float64

	ExcludeArchived bool
	SortCreatedAsc  bool
}

// Matches applies the filter to a single transaction. Sorting is the
// caller's concern.
func (f TransactionFilter) Matches(t Transaction) bool {
	if len(f.SourceIn) > 0 && !containsSource(f.SourceIn, t.Source) {
		return false
	}
	if containsSource(f.SourceNotIn, t.Source) {
		return false
	}
	if f.NarrativeIs != "" && t.Narrative != f.NarrativeIs {
		return false
	}
	for _, n := range f.NarrativeNotIn {
		if t.Narrative == n {
			return false
		}
	}
	if f.From != nil && t.Created.Before(*f.From) {
		return false
	}
	if f.To != nil {
		if f.ToInclusive {
			if t.Created.After(*f.To) {
				return false
			}
		} else if !t.Created.Before(*f.To) {
			return false
		}
	}
	abs := t.Amount
	if abs < 0 {
		abs = -abs
	}
	if f.AbsAmountBelow != nil && abs >= *f.AbsAmountBelow {
		return false
	}
	if f.AbsAmountAtLeast != nil && abs < *f.AbsAmountAtLeast {
		return false
	}
	if f.ExcludeArchived && t.IsArchived {
		return false
	}
	return true
}

func containsSource(list []TransactionSource, s TransactionSource) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
