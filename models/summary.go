package models

import (
	"time"

	"github.com/google/uuid"
)

// EndOfMonthSummary records one completed pay cycle: Created is the cycle's
// close date (the next payday boundary), Balance the net spending for the
// cycle with negative carry-over folded in, Savings the savings commitments.
// Rows are appended by reconciliation and never rewritten once their cycle
// has closed.
type EndOfMonthSummary struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
	UserID    uint      `gorm:"index;not null"`
	Created   time.Time `gorm:"index;not null"`
	Balance   float64   `gorm:"not null"`
	Savings   float64   `gorm:"not null"`
}

// Response shapes the summary for transport.
func (s EndOfMonthSummary) Response() EndOfMonthSummaryResponse {
	return EndOfMonthSummaryResponse{
		ID:      s.ID,
		Created: s.Created,
		Balance: s.Balance,
		Savings: s.Savings,
	}
}

// EndOfMonthSummaryResponse is the wire form of a closed cycle.
type EndOfMonthSummaryResponse struct {
	ID      uuid.UUID `json:"id"`
	Created time.Time `json:"created"`
	Balance float64   `json:"balance"`
	Savings float64   `json:"savings"`
}

// CurrentMonthSummary is derived on every request and never persisted.
type CurrentMonthSummary struct {
	Allowance float64 `json:"allowance"`
	Forecast  float64 `json:"forecast"`
	Spending  float64 `json:"spending"`
}

// EndOfMonthSummariesResponse bundles the open cycle's derived numbers with
// the closed cycles on record.
type EndOfMonthSummariesResponse struct {
	CurrentMonthSummary CurrentMonthSummary         `json:"currentMonthSummary"`
	EndOfMonthSummaries []EndOfMonthSummaryResponse `json:"endOfMonthSummaries"`
}
