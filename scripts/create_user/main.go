package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"sts/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Println("usage: go run ./scripts/create_user <name> <payday> [largeTransaction]")
		os.Exit(2)
	}
	name := os.Args[1]
	payday, err := strconv.Atoi(os.Args[2])
	if err != nil || payday < 1 || payday > 31 {
		log.Fatal("payday must be a day of month between 1 and 31")
	}
	large := 500.0
	if len(os.Args) > 3 {
		large, err = strconv.ParseFloat(os.Args[3], 64)
		if err != nil {
			log.Fatalf("bad largeTransaction: %v", err)
		}
	}

	dsn := os.Getenv("DB_DSN")
	if strings.TrimSpace(dsn) == "" {
		log.Fatal("DB_DSN not set in environment")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}

	var existing models.User
	if err := db.Where("name = ?", name).First(&existing).Error; err == nil {
		fmt.Printf("user %s already exists (id=%d)\n", name, existing.ID)
		os.Exit(0)
	}

	user := models.User{
		Name:             name,
		Payday:           payday,
		StartDate:        time.Now().UTC().Truncate(24 * time.Hour),
		LargeTransaction: large,
	}
	if err := db.Create(&user).Error; err != nil {
		log.Fatalf("failed to create user: %v", err)
	}
	fmt.Printf("created user %s id=%d payday=%d\n", name, user.ID, user.Payday)
}
