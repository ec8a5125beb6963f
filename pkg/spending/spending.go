// Package spending is the allowance engine: it turns a user's transaction
// ledger into the safe-to-spend numbers (weekly allowance, carry-over,
// monthly forecast) and closes pay cycles into end-of-month summaries.
//
// Every calculation is stateless and recomputed per call from the store and
// the user profile; "month" always means payday-to-payday, never calendar
// month. Degenerate date windows (zero days) are guarded by returning 0
// rather than an error throughout.
package spending

import (
	"time"

	"sts/models"
	"sts/pkg/classify"
	"sts/pkg/dates"
)

// Store is the repository surface the engine consumes. Queries may run
// concurrently across users but are sequential within one user.
type Store interface {
	TransactionsForUser(userID uint, f models.TransactionFilter) ([]models.Transaction, error)
	LatestEndOfMonthSummary(userID uint) (*models.EndOfMonthSummary, error)
	SaveEndOfMonthSummary(s *models.EndOfMonthSummary) error
	SaveUser(u *models.User) error
}

// Calculator computes spending aggregates for one user at a time.
type Calculator struct {
	store Store
	cal   dates.Calendar
	excl  classify.Exclusions
}

// New returns a Calculator over the given store, calendar, and exclusion
// configuration (classify.Default for the canonical set).
func New(store Store, cal dates.Calendar, excl classify.Exclusions) *Calculator {
	return &Calculator{store: store, cal: cal, excl: excl}
}

// SpendingLimit is the cycle's fixed commitments plus overspend debt: the
// sum of regular entries and large one-offs since the previous payday, plus
// the last closed cycle's balance when negative.
func (c *Calculator) SpendingLimit(user *models.User, now time.Time) (float64, error) {
	from := c.cal.Next(c.cal.StartOfDay(now), user.Payday, dates.Backward)
	to := now

	threshold := user.LargeTransaction
	large, regulars, err := c.spendable(user, models.TransactionFilter{
		From:             &from,
		To:               &to,
		AbsAmountAtLeast: &threshold,
		ExcludeArchived:  true,
	})
	if err != nil {
		return 0, err
	}

	sum := classify.AmountSum(regulars) + classify.AmountSum(large)

	last, err := c.store.LatestEndOfMonthSummary(user.ID)
	if err != nil {
		return 0, err
	}
	if last != nil && last.Balance < 0 {
		sum += last.Balance
	}
	return sum, nil
}

// SpendingThisWeek sums ordinary spending since the start of the current
// week, clipped to the pay cycle. Today's travel charges are excluded; they
// are amortized through the travel average instead.
func (c *Calculator) SpendingThisWeek(user *models.User, now time.Time) (float64, error) {
	today := c.cal.StartOfDay(now)
	previousPayday := c.cal.Next(today, user.Payday, dates.Backward)
	from := c.cal.StartOfWeek(today)
	if previousPayday.After(from) {
		from = previousPayday
	}
	return c.spending(user, from, now, false)
}

// SpendingThisMonth sums ordinary spending since the previous payday,
// travel included.
func (c *Calculator) SpendingThisMonth(user *models.User, now time.Time) (float64, error) {
	from := c.cal.Next(c.cal.StartOfDay(now), user.Payday, dates.Backward)
	return c.spending(user, from, now, true)
}

// SpendingTotalThisMonth is the cycle's full spending with no
// large-transaction exclusion.
func (c *Calculator) SpendingTotalThisMonth(user *models.User, now time.Time) (float64, error) {
	from := c.cal.Next(c.cal.StartOfDay(now), user.Payday, dates.Backward)
	transactions, _, err := c.spendable(user, models.TransactionFilter{
		From:            &from,
		ExcludeArchived: true,
	})
	if err != nil {
		return 0, err
	}
	return classify.AmountSum(transactions), nil
}

// CarryOverFromPreviousWeeks propagates overspend from the completed weeks
// of this cycle into the current week. Only debt carries: the result is
// never positive, underspend does not roll forward.
func (c *Calculator) CarryOverFromPreviousWeeks(user *models.User, limit float64, now time.Time) (float64, error) {
	today := c.cal.StartOfDay(now)
	startOfWeek := c.cal.StartOfWeek(today)
	nextPayday := c.cal.Next(today, user.Payday, dates.Forward)
	payday := c.cal.Next(today, user.Payday, dates.Backward)
	if !payday.Before(startOfWeek) {
		return 0, nil
	}

	daysSincePayday := c.cal.NumberOfDays(payday, startOfWeek)
	daysInMonth := c.cal.NumberOfDays(payday, nextPayday)
	if daysInMonth == 0 {
		return 0, nil
	}

	threshold := user.LargeTransaction
	transactions, _, err := c.spendable(user, models.TransactionFilter{
		From:            &payday,
		To:              &startOfWeek,
		AbsAmountBelow:  &threshold,
		ExcludeArchived: true,
	})
	if err != nil {
		return 0, err
	}

	spent := classify.AmountSum(transactions)
	dailyLimit := limit / float64(daysInMonth)
	carryOver := dailyLimit*float64(daysSincePayday) + spent
	if carryOver < 0 {
		return carryOver, nil
	}
	return 0, nil
}

// WeeklyLimit spreads the remaining limit over the current week, clipped to
// the pay cycle so a payday mid-week doesn't over- or under-count days.
// Returns 0 when no days remain in the cycle.
func (c *Calculator) WeeklyLimit(user *models.User, limit, carryOver float64, now time.Time) float64 {
	today := c.cal.StartOfDay(now)
	previousPayday := c.cal.Next(today, user.Payday, dates.Backward)
	nextPayday := c.cal.Next(today, user.Payday, dates.Forward)

	startOfWeek := c.cal.StartOfWeek(today)
	if previousPayday.After(startOfWeek) {
		startOfWeek = previousPayday
	}
	endOfWeek := c.cal.EndOfWeek(today)
	if nextPayday.Before(endOfWeek) {
		endOfWeek = nextPayday
	}

	daysInWeek := c.cal.NumberOfDays(startOfWeek, endOfWeek)
	daysInMonth := c.cal.NumberOfDays(previousPayday, nextPayday)
	if daysInMonth == 0 {
		return 0
	}
	daysRemaining := c.cal.NumberOfDays(startOfWeek, nextPayday)
	if daysRemaining == 0 {
		return 0
	}

	dailyLimit := limit / float64(daysInMonth)
	newDailyLimit := dailyLimit + carryOver/float64(daysRemaining)
	return newDailyLimit * float64(daysInWeek)
}

// Allowance is the remaining safe-to-spend amount for the current week.
// Spending sums are negative, so the figure shrinks as spending accrues.
func (c *Calculator) Allowance(user *models.User, now time.Time) (float64, error) {
	limit, err := c.SpendingLimit(user, now)
	if err != nil {
		return 0, err
	}
	thisWeek, err := c.SpendingThisWeek(user, now)
	if err != nil {
		return 0, err
	}
	carryOver, err := c.CarryOverFromPreviousWeeks(user, limit, now)
	if err != nil {
		return 0, err
	}
	weeklyLimit := c.WeeklyLimit(user, limit, carryOver, now)
	remainingTravel := c.RemainingTravelSpendingThisWeek(user, now)
	return weeklyLimit + thisWeek + remainingTravel, nil
}

// CurrentMonthSummary assembles the cycle-to-date allowance, the month-end
// forecast, and the total spending figure in one pass over shared inputs.
func (c *Calculator) CurrentMonthSummary(user *models.User, now time.Time) (models.CurrentMonthSummary, error) {
	limit, err := c.SpendingLimit(user, now)
	if err != nil {
		return models.CurrentMonthSummary{}, err
	}
	thisMonth, err := c.SpendingThisMonth(user, now)
	if err != nil {
		return models.CurrentMonthSummary{}, err
	}
	total, err := c.SpendingTotalThisMonth(user, now)
	if err != nil {
		return models.CurrentMonthSummary{}, err
	}

	today := c.cal.StartOfDay(now)
	nextPayday := c.cal.Next(today, user.Payday, dates.Forward)
	remainingDays := c.cal.NumberOfDays(c.cal.AddDays(today, 1), nextPayday)
	if remainingDays < 0 {
		remainingDays = 0
	}

	allowance := limit + thisMonth + c.RemainingTravelSpendingThisMonth(user, now)
	forecast := limit + thisMonth + user.DailySpendingAverage*float64(remainingDays)

	return models.CurrentMonthSummary{
		Allowance: allowance,
		Forecast:  forecast,
		Spending:  total,
	}, nil
}

// DailySpendingAverage is total qualifying spend divided by elapsed days
// since the user's start date, clamped to at least one day.
func (c *Calculator) DailySpendingAverage(user *models.User, now time.Time) (float64, error) {
	today := c.cal.StartOfDay(now)
	from := user.StartDate
	transactions, _, err := c.spendable(user, models.TransactionFilter{
		From: &from,
		To:   &today,
	})
	if err != nil {
		return 0, err
	}
	days := c.cal.NumberOfDays(user.StartDate, c.cal.AddDays(today, -1))
	if days < 1 {
		days = 1
	}
	return classify.AmountSum(transactions) / float64(days), nil
}

// DailyTravelSpending averages travel-narrative spend per day since the
// first travel charge on record. No charges, or a first charge today,
// yields 0.
func (c *Calculator) DailyTravelSpending(user *models.User, now time.Time) (float64, error) {
	today := c.cal.StartOfDay(now)
	transactions, err := c.store.TransactionsForUser(user.ID, models.TransactionFilter{
		NarrativeIs:    classify.TravelNarrative,
		To:             &today,
		SortCreatedAsc: true,
	})
	if err != nil {
		return 0, err
	}
	if len(transactions) == 0 {
		return 0, nil
	}
	first := c.cal.StartOfDay(transactions[0].Created)
	days := c.cal.NumberOfDays(first, today)
	if days == 0 {
		return 0, nil
	}
	return classify.AmountSum(transactions) / float64(days), nil
}

// RemainingTravelSpendingThisWeek amortizes the travel average over the days
// left in the week, clipped to the pay cycle.
func (c *Calculator) RemainingTravelSpendingThisWeek(user *models.User, now time.Time) float64 {
	today := c.cal.StartOfDay(now)
	nextPayday := c.cal.Next(today, user.Payday, dates.Forward)
	daysUntilPayday := c.cal.NumberOfDays(today, nextPayday)
	daysUntilEndOfWeek := c.cal.NumberOfDays(today, c.cal.EndOfWeek(today))
	remaining := daysUntilEndOfWeek
	if daysUntilPayday < remaining {
		remaining = daysUntilPayday
	}
	if remaining < 0 {
		remaining = 0
	}
	return user.DailyTravelSpendingAverage * float64(remaining)
}

// RemainingTravelSpendingThisMonth amortizes the travel average over the
// days left in the pay cycle, starting tomorrow.
func (c *Calculator) RemainingTravelSpendingThisMonth(user *models.User, now time.Time) float64 {
	today := c.cal.StartOfDay(now)
	nextPayday := c.cal.Next(today, user.Payday, dates.Forward)
	remaining := c.cal.NumberOfDays(c.cal.AddDays(today, 1), nextPayday)
	if remaining < 0 {
		remaining = 0
	}
	return user.DailyTravelSpendingAverage * float64(remaining)
}

// UpdateDailySpendingAverages recomputes and persists the user's cached
// daily spending and travel averages.
func (c *Calculator) UpdateDailySpendingAverages(user *models.User, now time.Time) error {
	spendingAverage, err := c.DailySpendingAverage(user, now)
	if err != nil {
		return err
	}
	travelAverage, err := c.DailyTravelSpending(user, now)
	if err != nil {
		return err
	}
	user.DailySpendingAverage = spendingAverage
	user.DailyTravelSpendingAverage = travelAverage
	return c.store.SaveUser(user)
}

// spending sums ordinary (non-large, non-excluded) spending in [from, now].
// With withTravel false, travel charges posted today or later are dropped:
// they are charged as a lump and covered by the amortized travel average.
func (c *Calculator) spending(user *models.User, from time.Time, now time.Time, withTravel bool) (float64, error) {
	threshold := user.LargeTransaction
	transactions, _, err := c.spendable(user, models.TransactionFilter{
		From:            &from,
		To:              &now,
		ToInclusive:     true,
		AbsAmountBelow:  &threshold,
		ExcludeArchived: true,
	})
	if err != nil {
		return 0, err
	}
	if !withTravel {
		today := c.cal.StartOfDay(now)
		kept := transactions[:0]
		for _, tx := range transactions {
			if tx.Narrative == classify.TravelNarrative && tx.Created.After(today) {
				continue
			}
			kept = append(kept, tx)
		}
		transactions = kept
	}
	return classify.AmountSum(transactions), nil
}

// spendable fetches the user's transactions matching f with the exclusion
// chain applied: excluded sources and narratives, regular counterparts, and
// mismatched goal legs. The user's regular entries are returned alongside.
func (c *Calculator) spendable(user *models.User, f models.TransactionFilter) ([]models.Transaction, []models.Transaction, error) {
	regulars, err := c.regularTransactions(user.ID)
	if err != nil {
		return nil, nil, err
	}

	f.SourceNotIn = append(f.SourceNotIn, c.excl.Sources...)
	f.NarrativeNotIn = append(f.NarrativeNotIn, c.excl.Narratives...)
	transactions, err := c.store.TransactionsForUser(user.ID, f)
	if err != nil {
		return nil, nil, err
	}

	transactions = classify.FilterRegularCounterparts(transactions, regulars)
	transactions = classify.FilterGoalTransactions(transactions)
	return transactions, regulars, nil
}

func (c *Calculator) regularTransactions(userID uint) ([]models.Transaction, error) {
	return c.store.TransactionsForUser(userID, models.TransactionFilter{
		SourceIn: []models.TransactionSource{
			models.SourceExternalRegularInbound,
			models.SourceExternalRegularOut,
		},
	})
}

func (c *Calculator) savingsTransactions(userID uint) ([]models.Transaction, error) {
	return c.store.TransactionsForUser(userID, models.TransactionFilter{
		SourceIn: []models.TransactionSource{models.SourceExternalSavings},
	})
}
