package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"sts/models"

	"github.com/gin-gonic/gin"
)

// helper to perform requests against the router
func performRequest(r http.Handler, method, path string, body io.Reader) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func setupTestServer(t *testing.T) *gin.Engine {
	// integration tests are opt-in. Set DB_DSN_TEST=1 and DB_DSN to run them.
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	gin.SetMode(gin.TestMode)
	initDB()
	initApp()
	r := gin.Default()
	setupRoutes(r)
	return r
}

func TestFullFlow(t *testing.T) {
	r := setupTestServer(t)

	// 1. Seed a user directly; onboarding has no HTTP surface.
	user := models.User{
		Name:             fmt.Sprintf("it-%d", time.Now().UnixNano()),
		Payday:           28,
		StartDate:        time.Now().AddDate(0, -1, 0),
		LargeTransaction: 500,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	base := fmt.Sprintf("/users/%d", user.ID)

	// 2. Ingest a small feed payload.
	payload := `{"_embedded":{"transactions":[
		{"id":"1f0e3dad-9990-4e48-8d1b-6fd2b1f3a001","amount":-42.5,"direction":"OUTBOUND",
		 "created":"` + time.Now().AddDate(0, 0, -2).Format(time.RFC3339) + `",
		 "narrative":"Groceries","source":"MASTER_CARD"}]}}`
	resp := performRequest(r, http.MethodPost, base+"/transactions", bytes.NewBufferString(payload))
	if resp.Code != http.StatusOK {
		t.Fatalf("ingest failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// Replay must not duplicate.
	resp = performRequest(r, http.MethodPost, base+"/transactions", bytes.NewBufferString(payload))
	if resp.Code != http.StatusOK {
		t.Fatalf("replay failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodGet, base+"/transactions", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("list failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var listed []models.Transaction
	if err := json.Unmarshal(resp.Body.Bytes(), &listed); err != nil {
		t.Fatalf("list decode: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("replay duplicated the transaction: %d rows", len(listed))
	}

	// 3. Allowance and summaries respond with numbers.
	resp = performRequest(r, http.MethodGet, base+"/allowance", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("allowance failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodGet, base+"/summaries", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("summaries failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var summaries models.EndOfMonthSummariesResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &summaries); err != nil {
		t.Fatalf("summaries decode: %v", err)
	}

	// 4. Reconcile twice; the open cycle must yield exactly one summary.
	for i := 0; i < 2; i++ {
		resp = performRequest(r, http.MethodPost, "/reconcile", nil)
		if resp.Code != http.StatusOK {
			t.Fatalf("reconcile failed status=%d body=%s", resp.Code, resp.Body.String())
		}
	}
	var count int64
	if err := db.Model(&models.EndOfMonthSummary{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
		t.Fatalf("count summaries: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one summary after double reconcile, got %d", count)
	}

	// 5. Profile update round-trip.
	update, _ := json.Marshal(map[string]any{"payday": 25})
	resp = performRequest(r, http.MethodPut, base, bytes.NewBuffer(update))
	if resp.Code != http.StatusOK {
		t.Fatalf("update failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodGet, base, nil)
	var got models.User
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatalf("user decode: %v", err)
	}
	if got.Payday != 25 {
		t.Fatalf("payday update lost: %+v", got)
	}
}

func TestInvalidPaydayRejected(t *testing.T) {
	r := setupTestServer(t)
	user := models.User{Name: fmt.Sprintf("it-bad-%d", time.Now().UnixNano()), Payday: 1, StartDate: time.Now()}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	body, _ := json.Marshal(map[string]any{"payday": 32})
	resp := performRequest(r, http.MethodPut, fmt.Sprintf("/users/%d", user.ID), bytes.NewBuffer(body))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestReminderCategoryFlow(t *testing.T) {
	r := setupTestServer(t)
	user := models.User{Name: fmt.Sprintf("it-rem-%d", time.Now().UnixNano()), Payday: 1, StartDate: time.Now()}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	// Create a category, then a reminder tagged with it. The reminder also
	// names a bogus category id, which must be dropped, not rejected.
	catBody, _ := json.Marshal(map[string]any{"name": fmt.Sprintf("bills-%d", time.Now().UnixNano())})
	resp := performRequest(r, http.MethodPost, "/categories", bytes.NewBuffer(catBody))
	if resp.Code != http.StatusOK {
		t.Fatalf("create category status=%d body=%s", resp.Code, resp.Body.String())
	}
	var category models.Category
	if err := json.Unmarshal(resp.Body.Bytes(), &category); err != nil {
		t.Fatalf("category decode: %v", err)
	}

	remBody, _ := json.Marshal(map[string]any{
		"title":       "Cancel gym",
		"description": "direct debit renews on the 1st",
		"userId":      user.ID,
		"categories":  []uint{category.ID, 999999999},
	})
	resp = performRequest(r, http.MethodPost, "/reminders", bytes.NewBuffer(remBody))
	if resp.Code != http.StatusOK {
		t.Fatalf("create reminder status=%d body=%s", resp.Code, resp.Body.String())
	}
	var reminder models.Reminder
	if err := json.Unmarshal(resp.Body.Bytes(), &reminder); err != nil {
		t.Fatalf("reminder decode: %v", err)
	}
	if len(reminder.Categories) != 1 || reminder.Categories[0].ID != category.ID {
		t.Fatalf("expected exactly the real category attached, got %+v", reminder.Categories)
	}

	// The link must be navigable from both sides.
	resp = performRequest(r, http.MethodGet, fmt.Sprintf("/reminders/%d/categories", reminder.ID), nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("reminder categories status=%d body=%s", resp.Code, resp.Body.String())
	}
	var cats []models.Category
	if err := json.Unmarshal(resp.Body.Bytes(), &cats); err != nil {
		t.Fatalf("categories decode: %v", err)
	}
	if len(cats) != 1 || cats[0].Name != category.Name {
		t.Fatalf("expected [%s], got %+v", category.Name, cats)
	}
	resp = performRequest(r, http.MethodGet, fmt.Sprintf("/categories/%d/reminders", category.ID), nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("category reminders status=%d body=%s", resp.Code, resp.Body.String())
	}
	var rems []models.Reminder
	if err := json.Unmarshal(resp.Body.Bytes(), &rems); err != nil {
		t.Fatalf("reminders decode: %v", err)
	}
	if len(rems) != 1 || rems[0].Title != "Cancel gym" {
		t.Fatalf("expected the reminder back, got %+v", rems)
	}

	// A reminder for a user that does not exist is a bad request.
	badBody, _ := json.Marshal(map[string]any{"title": "x", "userId": uint(999999999)})
	resp = performRequest(r, http.MethodPost, "/reminders", bytes.NewBuffer(badBody))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown user, got %d", resp.Code)
	}
}

func TestMetricIngest(t *testing.T) {
	r := setupTestServer(t)

	resp := performRequest(r, http.MethodPost, "/metrics", bytes.NewBufferString(`{"event":"app_open","elapsed":1.25}`))
	if resp.Code != http.StatusOK {
		t.Fatalf("metric store status=%d body=%s", resp.Code, resp.Body.String())
	}
	var count int64
	if err := db.Model(&models.Metric{}).Count(&count).Error; err != nil {
		t.Fatalf("count metrics: %v", err)
	}
	if count == 0 {
		t.Fatal("metric row was not stored")
	}

	// Payloads that are not JSON never reach the table.
	resp = performRequest(r, http.MethodPost, "/metrics", bytes.NewBufferString("not json"))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-JSON payload, got %d", resp.Code)
	}
	resp = performRequest(r, http.MethodPost, "/metrics", nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty payload, got %d", resp.Code)
	}
}
