package store

import (
	"encoding/json"
	"errors"

	"sts/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrReminderNotFound marks a lookup for a reminder id with no row behind it.
var ErrReminderNotFound = errors.New("store: reminder not found")

// ErrCategoryNotFound marks a lookup for a category id with no row behind it.
var ErrCategoryNotFound = errors.New("store: category not found")

// Reminders lists every reminder with its categories, oldest first.
func (s *Store) Reminders() ([]models.Reminder, error) {
	var reminders []models.Reminder
	if err := s.db.Preload("Categories").Order("id asc").Find(&reminders).Error; err != nil {
		return nil, err
	}
	return reminders, nil
}

// Reminder fetches one reminder by id, categories included.
func (s *Store) Reminder(id uint) (*models.Reminder, error) {
	var reminder models.Reminder
	if err := s.db.Preload("Categories").First(&reminder, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReminderNotFound
		}
		return nil, err
	}
	return &reminder, nil
}

// SaveReminder inserts a reminder along with its category links.
func (s *Store) SaveReminder(r *models.Reminder) error {
	return s.db.Create(r).Error
}

// ReminderCategories lists the categories tagged on one reminder.
func (s *Store) ReminderCategories(reminderID uint) ([]models.Category, error) {
	reminder, err := s.Reminder(reminderID)
	if err != nil {
		return nil, err
	}
	if reminder.Categories == nil {
		return []models.Category{}, nil
	}
	return reminder.Categories, nil
}

// Categories lists every category, oldest first.
func (s *Store) Categories() ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.Order("id asc").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// Category fetches one category by id.
func (s *Store) Category(id uint) (*models.Category, error) {
	var category models.Category
	if err := s.db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

// SaveCategory inserts a category.
func (s *Store) SaveCategory(c *models.Category) error {
	return s.db.Create(c).Error
}

// CategoriesByID resolves a list of category ids to rows. Ids with no row
// behind them are silently skipped: a reminder keeps only the tags that
// exist.
func (s *Store) CategoriesByID(ids []uint) ([]models.Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var categories []models.Category
	if err := s.db.Where("id IN ?", ids).Order("id asc").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// CategoryReminders lists the reminders carrying one category.
func (s *Store) CategoryReminders(categoryID uint) ([]models.Reminder, error) {
	if _, err := s.Category(categoryID); err != nil {
		return nil, err
	}
	var reminders []models.Reminder
	err := s.db.
		Joins("JOIN reminder_categories rc ON rc.reminder_id = reminders.id").
		Where("rc.category_id = ?", categoryID).
		Order("reminders.id asc").
		Find(&reminders).Error
	if err != nil {
		return nil, err
	}
	return reminders, nil
}

// SaveMetric stores a raw telemetry payload. The payload must be valid JSON;
// nothing beyond that is checked.
func (s *Store) SaveMetric(payload []byte) error {
	if !json.Valid(payload) {
		return errors.New("store: metric payload is not valid JSON")
	}
	return s.db.Create(&models.Metric{ID: uuid.New(), Payload: string(payload)}).Error
}
