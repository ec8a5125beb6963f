package spending

import (
	"time"

	"sts/models"
	"sts/pkg/classify"
	"sts/pkg/dates"
)

// EndOfMonthBalance closes the user's oldest unclosed pay cycle by writing
// one EndOfMonthSummary dated at the cycle's closing payday boundary.
//
// While the current cycle is still open (the latest summary already sits on
// the most recent payday boundary) the call is an idempotent no-op. A
// negative balance on the previous summary compounds into the new one.
// When the user falls several cycles behind, each call advances one cycle;
// the daily batch catches the backlog up over successive runs.
func (c *Calculator) EndOfMonthBalance(user *models.User, now time.Time) error {
	last, err := c.store.LatestEndOfMonthSummary(user.ID)
	if err != nil {
		return err
	}

	var from, to time.Time
	if last != nil {
		boundary := c.cal.Next(c.cal.StartOfDay(now), user.Payday, dates.Backward)
		if last.Created.Equal(boundary) {
			return nil
		}
		from = last.Created
		to = c.cal.Next(c.cal.AddDays(c.cal.StartOfDay(from), 1), user.Payday, dates.Forward)
	} else {
		to = c.cal.Next(c.cal.StartOfDay(now), user.Payday, dates.Backward)
		from = c.cal.Next(c.cal.AddDays(to, -1), user.Payday, dates.Backward)
	}

	transactions, regulars, err := c.spendable(user, models.TransactionFilter{
		From: &from,
		To:   &to,
	})
	if err != nil {
		return err
	}
	savingsEntries, err := c.savingsTransactions(user.ID)
	if err != nil {
		return err
	}

	balance := classify.AmountSum(transactions) + classify.AmountSum(regulars)
	if last != nil && last.Balance < 0 {
		balance += last.Balance
	}
	savings := classify.AmountSum(savingsEntries)
	if savings < 0 {
		savings = -savings
	}

	summary := models.EndOfMonthSummary{
		UserID:  user.ID,
		Created: to,
		Balance: balance,
		Savings: savings,
	}
	return c.store.SaveEndOfMonthSummary(&summary)
}
