package main

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"sts/models"
	"sts/store"

	"github.com/gin-gonic/gin"
)

func setupReminderRoutes(r *gin.Engine) {
	r.GET("/reminders", listRemindersHandler)
	r.POST("/reminders", createReminderHandler)
	r.GET("/reminders/:id", getReminderHandler)
	r.GET("/reminders/:id/categories", reminderCategoriesHandler)
	r.GET("/categories", listCategoriesHandler)
	r.POST("/categories", createCategoryHandler)
	r.GET("/categories/:id", getCategoryHandler)
	r.GET("/categories/:id/reminders", categoryRemindersHandler)
	r.POST("/metrics", storeMetricHandler)
}

func idFromPath(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

func listRemindersHandler(c *gin.Context) {
	reminders, err := appStore.Reminders()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, reminders)
}

// createReminderHandler stores a reminder and tags it with the requested
// categories. Unknown category ids are dropped rather than rejected.
func createReminderHandler(c *gin.Context) {
	var req struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
		UserID      uint   `json:"userId" binding:"required"`
		Categories  []uint `json:"categories"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := appStore.User(req.UserID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	categories, err := appStore.CategoriesByID(req.Categories)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	reminder := models.Reminder{
		UserID:      req.UserID,
		Title:       req.Title,
		Description: req.Description,
		Categories:  categories,
	}
	if err := appStore.SaveReminder(&reminder); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, reminder)
}

func getReminderHandler(c *gin.Context) {
	id, ok := idFromPath(c)
	if !ok {
		return
	}
	reminder, err := appStore.Reminder(id)
	if err != nil {
		if errors.Is(err, store.ErrReminderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "reminder not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, reminder)
}

func reminderCategoriesHandler(c *gin.Context) {
	id, ok := idFromPath(c)
	if !ok {
		return
	}
	categories, err := appStore.ReminderCategories(id)
	if err != nil {
		if errors.Is(err, store.ErrReminderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "reminder not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, categories)
}

func listCategoriesHandler(c *gin.Context) {
	categories, err := appStore.Categories()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, categories)
}

func createCategoryHandler(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	category := models.Category{Name: req.Name}
	if err := appStore.SaveCategory(&category); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, category)
}

func getCategoryHandler(c *gin.Context) {
	id, ok := idFromPath(c)
	if !ok {
		return
	}
	category, err := appStore.Category(id)
	if err != nil {
		if errors.Is(err, store.ErrCategoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, category)
}

func categoryRemindersHandler(c *gin.Context) {
	id, ok := idFromPath(c)
	if !ok {
		return
	}
	reminders, err := appStore.CategoryReminders(id)
	if err != nil {
		if errors.Is(err, store.ErrCategoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, reminders)
}

// storeMetricHandler stores the request body verbatim as a telemetry event.
// The app fires these on a background queue and never reads them back, so
// the only response that matters is the status code.
func storeMetricHandler(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil || len(payload) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty body"})
		return
	}
	if err := appStore.SaveMetric(payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusOK)
}
