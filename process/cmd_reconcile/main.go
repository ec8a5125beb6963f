package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"sts/pkg/classify"
	"sts/pkg/dates"
	"sts/pkg/spending"
	"sts/process/reconciler"
	"sts/store"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	tz := flag.String("tz", os.Getenv("CAL_TZ"), "calendar time zone (default UTC)")
	flag.Parse()

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "DB_DSN not set; export and retry")
		os.Exit(2)
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}

	loc := time.UTC
	if *tz != "" {
		loc, err = time.LoadLocation(*tz)
		if err != nil {
			log.Fatalf("bad time zone %q: %v", *tz, err)
		}
	}

	cal := dates.New(loc)
	st := store.New(gdb)
	pipeline := reconciler.New(st, spending.New(st, cal, classify.Default()), cal)

	result, err := pipeline.Run(time.Now())
	if err != nil {
		log.Fatalf("batch failed: %v", err)
	}
	log.Printf("reconciled %d users, %d failed", result.Users, len(result.Failed))
	if !result.OK() {
		os.Exit(1)
	}
}
