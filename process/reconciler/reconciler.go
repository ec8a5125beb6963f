// Package reconciler runs the nightly per-user pipeline: refresh the cached
// daily averages, close any completed pay cycle, and archive stale
// transactions. Users are processed in parallel; steps within one user are
// sequential because each depends on the previous one's writes.
package reconciler

import (
	"fmt"
	"log"
	"sync"
	"time"

	"sts/models"
	"sts/pkg/dates"
	"sts/pkg/spending"
)

// archiveAfterMonths is how far back a transaction may sit before the sweep
// flags it out of the hot path.
const archiveAfterMonths = 2

// Store extends the engine's store with the batch-only operations.
type Store interface {
	spending.Store
	Users() ([]models.User, error)
	ArchiveTransactions(userID uint, before time.Time) (int64, error)
}

// Result reports a batch run. The batch is best-effort: Failed lists users
// whose pipeline errored without stopping the others.
type Result struct {
	Users  int
	Failed map[uint]error
}

// OK reports whether every user's pipeline completed.
func (r Result) OK() bool { return len(r.Failed) == 0 }

// Pipeline fans the per-user work out across all users.
type Pipeline struct {
	store Store
	calc  *spending.Calculator
	cal   dates.Calendar
}

// New returns a Pipeline over the given store and calculator.
func New(store Store, calc *spending.Calculator, cal dates.Calendar) *Pipeline {
	return &Pipeline{store: store, calc: calc, cal: cal}
}

// Run executes the pipeline for every user as of now. Listing the users is
// the only fatal error; per-user failures are collected and logged.
func (p *Pipeline) Run(now time.Time) (Result, error) {
	users, err := p.store.Users()
	if err != nil {
		return Result{}, fmt.Errorf("reconciler: listing users: %w", err)
	}

	result := Result{Users: len(users), Failed: make(map[uint]error)}
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for i := range users {
		user := users[i]
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := p.runUser(&user, now); err != nil {
				log.Printf("reconciler: user %d: %v", user.ID, err)
				mu.Lock()
				result.Failed[user.ID] = err
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return result, nil
}

func (p *Pipeline) runUser(user *models.User, now time.Time) error {
	if err := p.calc.UpdateDailySpendingAverages(user, now); err != nil {
		return fmt.Errorf("updating averages: %w", err)
	}
	if err := p.calc.EndOfMonthBalance(user, now); err != nil {
		return fmt.Errorf("closing cycle: %w", err)
	}
	cutoff := p.cal.AddMonths(p.cal.StartOfDay(now), -archiveAfterMonths)
	if _, err := p.store.ArchiveTransactions(user.ID, cutoff); err != nil {
		return fmt.Errorf("archiving: %w", err)
	}
	return nil
}
