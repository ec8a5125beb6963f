package models

import (
	"time"
)

// Reminder is a user-created note about an upcoming commitment (a bill to
// cancel, a refund to chase). Reminders carry no amounts and never feed the
// allowance maths.
type Reminder struct {
	ID          uint `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	UserID      uint   `gorm:"index;not null" json:"userId"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"not null" json:"description"`
	// Categories assigned at creation. Stored through the
	// reminder_categories join table.
	Categories []Category `gorm:"many2many:reminder_categories" json:"categories"`
}

// Category is a free-form tag shared across reminders.
type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:255;not null;unique" json:"name"`
}
