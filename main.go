package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"sts/pkg/classify"
	"sts/pkg/dates"
	"sts/pkg/feed"
	"sts/pkg/spending"
	"sts/process/reconciler"
	"sts/store"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var (
	cal      dates.Calendar
	appStore *store.Store
	calc     *spending.Calculator
	pipeline *reconciler.Pipeline
	importer *feed.Importer
)

func main() {
	// Load ./.env if present; variables already set in the environment win.
	_ = godotenv.Load()

	initDB()
	initApp()

	// Lightweight migrate command: `./sts_app migrate` runs AutoMigrate and
	// exits. Useful for CI or manual DB setup.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		fmt.Println("migration completed")
		return
	}

	// Optional feed drop directory: exported payloads copied here are
	// imported as they appear.
	if dir := os.Getenv("FEED_DIR"); dir != "" {
		watcher, err := feed.NewWatcher(dir, importer)
		if err != nil {
			log.Fatalf("feed watcher: %v", err)
		}
		defer watcher.Close()
	}

	r := gin.Default()
	setupRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}
	r.Run(":" + port)
}

// initApp wires the calendar, repositories, and engine. The calendar's zone
// is fixed by CAL_TZ (UTC when unset), never the host zone, so day
// boundaries stay deterministic across deployments.
func initApp() {
	loc := time.UTC
	if tz := os.Getenv("CAL_TZ"); tz != "" {
		var err error
		loc, err = time.LoadLocation(tz)
		if err != nil {
			log.Fatalf("bad CAL_TZ %q: %v", tz, err)
		}
	}
	cal = dates.New(loc)
	appStore = store.New(db)
	calc = spending.New(appStore, cal, classify.Default())
	pipeline = reconciler.New(appStore, calc, cal)
	importer = feed.NewImporter(appStore)
}
