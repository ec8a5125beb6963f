package models

import (
	"time"
)

// User model
type User struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time `gorm:"index"`
	Name      string     `gorm:"size:255;not null;unique" json:"name"`
	// Payday is the day of month (1-31) on which the pay cycle rolls over.
	Payday int `gorm:"not null;default:1" json:"payday"`
	// StartDate is the earliest date transactions are considered.
	StartDate time.Time `gorm:"not null" json:"startDate"`
	// LargeTransaction is the absolute amount at or above which a transaction
	// counts as a one-off commitment rather than ordinary spending.
	LargeTransaction float64 `gorm:"not null;default:0" json:"largeTransaction"`
	// Cached running averages, refreshed by the batch pipeline. Always
	// re-derivable from transaction history.
	DailySpendingAverage       float64 `gorm:"not null;default:0" json:"dailySpendingAverage"`
	DailyTravelSpendingAverage float64 `gorm:"not null;default:0" json:"dailyTravelSpendingAverage"`
}
