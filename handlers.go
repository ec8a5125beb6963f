package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"sts/models"
	"sts/store"

	"github.com/gin-gonic/gin"
)

func setupRoutes(r *gin.Engine) {
	r.GET("/health", healthHandler)
	r.POST("/reconcile", reconcileHandler)
	r.GET("/users/:id", getUserHandler)
	r.PUT("/users/:id", updateUserHandler)
	r.GET("/users/:id/allowance", allowanceHandler)
	r.GET("/users/:id/summaries", summariesHandler)
	r.GET("/users/:id/transactions", listTransactionsHandler)
	r.GET("/users/:id/transactions/latest", latestTransactionHandler)
	r.POST("/users/:id/transactions", ingestTransactionsHandler)
	setupReminderRoutes(r)
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// userFromPath resolves the :id path segment to a user row.
func userFromPath(c *gin.Context) (*models.User, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return nil, false
	}
	user, err := appStore.User(uint(id))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return nil, false
	}
	return user, true
}

func getUserHandler(c *gin.Context) {
	user, ok := userFromPath(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, user)
}

func updateUserHandler(c *gin.Context) {
	user, ok := userFromPath(c)
	if !ok {
		return
	}
	var req struct {
		Name             *string    `json:"name"`
		Payday           *int       `json:"payday"`
		StartDate        *time.Time `json:"startDate"`
		LargeTransaction *float64   `json:"largeTransaction"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Payday != nil {
		if *req.Payday < 1 || *req.Payday > 31 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "payday must be between 1 and 31"})
			return
		}
		user.Payday = *req.Payday
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.StartDate != nil {
		user.StartDate = *req.StartDate
	}
	if req.LargeTransaction != nil {
		user.LargeTransaction = *req.LargeTransaction
	}
	if err := appStore.SaveUser(user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, user)
}

func allowanceHandler(c *gin.Context) {
	user, ok := userFromPath(c)
	if !ok {
		return
	}
	allowance, err := calc.Allowance(user, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"allowance": allowance})
}

func summariesHandler(c *gin.Context) {
	user, ok := userFromPath(c)
	if !ok {
		return
	}
	current, err := calc.CurrentMonthSummary(user, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	summaries, err := appStore.EndOfMonthSummaries(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	responses := make([]models.EndOfMonthSummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		responses = append(responses, s.Response())
	}
	c.JSON(http.StatusOK, models.EndOfMonthSummariesResponse{
		CurrentMonthSummary: current,
		EndOfMonthSummaries: responses,
	})
}

func listTransactionsHandler(c *gin.Context) {
	user, ok := userFromPath(c)
	if !ok {
		return
	}
	filter := models.TransactionFilter{SortCreatedAsc: true, ToInclusive: true}
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be RFC3339"})
			return
		}
		filter.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "to must be RFC3339"})
			return
		}
		filter.To = &t
	}
	transactions, err := appStore.TransactionsForUser(user.ID, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, transactions)
}

// latestTransactionHandler reports the newest bank-feed timestamp on
// record. Export producers use it to pull incrementally instead of shipping
// full history every time.
func latestTransactionHandler(c *gin.Context) {
	user, ok := userFromPath(c)
	if !ok {
		return
	}
	latest, err := appStore.LatestTransactionDate(user.ID, user.StartDate)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"latest": latest})
}

// ingestTransactionsHandler accepts an exported feed payload and persists
// its entries for the user. Replays are harmless: entries are keyed by the
// bank's transaction id.
func ingestTransactionsHandler(c *gin.Context) {
	user, ok := userFromPath(c)
	if !ok {
		return
	}
	n, err := importer.Import(user.ID, c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": n})
}

// reconcileHandler triggers the batch pipeline immediately. The batch is
// best-effort: a 200 with the failed user ids, not an all-or-nothing error.
func reconcileHandler(c *gin.Context) {
	result, err := pipeline.Run(time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	failed := make([]uint, 0, len(result.Failed))
	for id := range result.Failed {
		failed = append(failed, id)
	}
	c.JSON(http.StatusOK, gin.H{"users": result.Users, "failed": failed})
}
