// Package store provides the Postgres-backed repositories. Business code
// never touches gorm directly: it passes a models.TransactionFilter and gets
// plain ordered slices back.
package store

import (
	"errors"
	"time"

	"sts/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrUserNotFound marks a lookup for a user id with no row behind it.
var ErrUserNotFound = errors.New("store: user not found")

// Store wraps the gorm handle.
type Store struct {
	db *gorm.DB
}

// New returns a Store over an open gorm connection.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// User fetches one user by id.
func (s *Store) User(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Users lists all users, oldest first.
func (s *Store) Users() ([]models.User, error) {
	var users []models.User
	if err := s.db.Order("id asc").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// SaveUser persists profile changes.
func (s *Store) SaveUser(u *models.User) error {
	return s.db.Save(u).Error
}

// TransactionsForUser applies the filter to the user's history.
func (s *Store) TransactionsForUser(userID uint, f models.TransactionFilter) ([]models.Transaction, error) {
	q := s.db.Where("user_id = ?", userID)
	if len(f.SourceIn) > 0 {
		q = q.Where("source IN ?", f.SourceIn)
	}
	if len(f.SourceNotIn) > 0 {
		q = q.Where("source NOT IN ?", f.SourceNotIn)
	}
	if f.NarrativeIs != "" {
		q = q.Where("narrative = ?", f.NarrativeIs)
	}
	if len(f.NarrativeNotIn) > 0 {
		q = q.Where("narrative NOT IN ?", f.NarrativeNotIn)
	}
	if f.From != nil {
		q = q.Where("created >= ?", *f.From)
	}
	if f.To != nil {
		if f.ToInclusive {
			q = q.Where("created <= ?", *f.To)
		} else {
			q = q.Where("created < ?", *f.To)
		}
	}
	if f.AbsAmountBelow != nil {
		q = q.Where("amount > ? AND amount < ?", -*f.AbsAmountBelow, *f.AbsAmountBelow)
	}
	if f.AbsAmountAtLeast != nil {
		q = q.Where("(amount <= ? OR amount >= ?)", -*f.AbsAmountAtLeast, *f.AbsAmountAtLeast)
	}
	if f.ExcludeArchived {
		q = q.Where("is_archived = false")
	}
	if f.SortCreatedAsc {
		q = q.Order("created asc")
	}
	var transactions []models.Transaction
	if err := q.Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

// SaveTransaction inserts a transaction if its id is new; an id already on
// record is left untouched, which makes feed ingest idempotent.
func (s *Store) SaveTransaction(t *models.Transaction) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return s.db.Where("id = ?", t.ID).FirstOrCreate(t).Error
}

// LatestTransactionDate returns the newest bank-feed transaction timestamp,
// skipping user-maintained entries; fallback when the ledger is empty. The
// feed importer pulls from this point forward.
func (s *Store) LatestTransactionDate(userID uint, fallback time.Time) (time.Time, error) {
	var tx models.Transaction
	err := s.db.
		Where("user_id = ?", userID).
		Where("source NOT IN ?", []models.TransactionSource{
			models.SourceExternalInbound,
			models.SourceExternalOutbound,
			models.SourceExternalRegularInbound,
			models.SourceExternalRegularOut,
			models.SourceExternalSavings,
		}).
		Order("created desc").
		First(&tx).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fallback, nil
		}
		return time.Time{}, err
	}
	return tx.Created, nil
}

// ArchiveTransactions flags the user's transactions created before the
// cutoff so hot-path window queries can skip them. Returns the number of
// rows flagged.
func (s *Store) ArchiveTransactions(userID uint, before time.Time) (int64, error) {
	res := s.db.Model(&models.Transaction{}).
		Where("user_id = ? AND created < ? AND is_archived = false", userID, before).
		Update("is_archived", true)
	return res.RowsAffected, res.Error
}

// LatestEndOfMonthSummary returns the most recent closed cycle, or nil when
// none has been recorded.
func (s *Store) LatestEndOfMonthSummary(userID uint) (*models.EndOfMonthSummary, error) {
	var summary models.EndOfMonthSummary
	err := s.db.Where("user_id = ?", userID).Order("created desc").First(&summary).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &summary, nil
}

// EndOfMonthSummaries lists the user's closed cycles, oldest first.
func (s *Store) EndOfMonthSummaries(userID uint) ([]models.EndOfMonthSummary, error) {
	var summaries []models.EndOfMonthSummary
	if err := s.db.Where("user_id = ?", userID).Order("created asc").Find(&summaries).Error; err != nil {
		return nil, err
	}
	return summaries, nil
}

// SaveEndOfMonthSummary appends a closed cycle.
func (s *Store) SaveEndOfMonthSummary(summary *models.EndOfMonthSummary) error {
	if summary.ID == uuid.Nil {
		summary.ID = uuid.New()
	}
	return s.db.Create(summary).Error
}
