package reconciler

import (
	"errors"
	"sync"
	"testing"
	"time"

	"sts/models"
	"sts/pkg/classify"
	"sts/pkg/dates"
	"sts/pkg/spending"
)

type batchStore struct {
	mu           sync.Mutex
	users        []models.User
	transactions []models.Transaction
	summaries    []models.EndOfMonthSummary
	archived     map[uint]time.Time
	failUser     uint // SaveUser fails for this user id
}

func (b *batchStore) Users() ([]models.User, error) {
	return b.users, nil
}

func (b *batchStore) TransactionsForUser(userID uint, f models.TransactionFilter) ([]models.Transaction, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []models.Transaction
	for _, tx := range b.transactions {
		if tx.UserID == userID && f.Matches(tx) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (b *batchStore) LatestEndOfMonthSummary(userID uint) (*models.EndOfMonthSummary, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var latest *models.EndOfMonthSummary
	for i := range b.summaries {
		s := &b.summaries[i]
		if s.UserID == userID && (latest == nil || s.Created.After(latest.Created)) {
			latest = s
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (b *batchStore) SaveEndOfMonthSummary(s *models.EndOfMonthSummary) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.summaries = append(b.summaries, *s)
	return nil
}

func (b *batchStore) SaveUser(u *models.User) error {
	if u.ID == b.failUser {
		return errors.New("user row gone")
	}
	return nil
}

func (b *batchStore) ArchiveTransactions(userID uint, before time.Time) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.archived == nil {
		b.archived = make(map[uint]time.Time)
	}
	b.archived[userID] = before
	return 0, nil
}

func newPipeline(store Store) *Pipeline {
	cal := dates.New(time.UTC)
	return New(store, spending.New(store, cal, classify.Default()), cal)
}

var now = time.Date(2024, time.March, 13, 2, 0, 0, 0, time.UTC)

func user(id uint) models.User {
	return models.User{
		ID:        id,
		Payday:    28,
		StartDate: time.Date(2024, time.January, 28, 0, 0, 0, 0, time.UTC),
	}
}

func TestRunClosesCycleForEveryUser(t *testing.T) {
	store := &batchStore{users: []models.User{user(1), user(2)}}
	result, err := newPipeline(store).Run(now)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !result.OK() || result.Users != 2 {
		t.Fatalf("expected clean run over 2 users, got %+v", result)
	}
	if len(store.summaries) != 2 {
		t.Fatalf("expected a summary per user got %d", len(store.summaries))
	}
	if len(store.archived) != 2 {
		t.Fatalf("archive sweep missing: %v", store.archived)
	}
	// Cutoff sits two months back from the run date.
	want := time.Date(2024, time.January, 13, 0, 0, 0, 0, time.UTC)
	if got := store.archived[1]; !got.Equal(want) {
		t.Fatalf("expected cutoff %v got %v", want, got)
	}
}

func TestRunIsolatesFailingUser(t *testing.T) {
	store := &batchStore{users: []models.User{user(1), user(2), user(3)}, failUser: 2}
	result, err := newPipeline(store).Run(now)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.OK() {
		t.Fatalf("expected a failure for user 2")
	}
	if _, ok := result.Failed[2]; !ok || len(result.Failed) != 1 {
		t.Fatalf("expected only user 2 to fail, got %v", result.Failed)
	}
	// The siblings still completed their cycle close.
	if len(store.summaries) != 2 {
		t.Fatalf("sibling pipelines did not finish: %d summaries", len(store.summaries))
	}
}

func TestRunTwiceStaysIdempotent(t *testing.T) {
	store := &batchStore{users: []models.User{user(1)}}
	p := newPipeline(store)
	if _, err := p.Run(now); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := p.Run(now.Add(3 * time.Hour)); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(store.summaries) != 1 {
		t.Fatalf("open cycle re-closed: %d summaries", len(store.summaries))
	}
}
