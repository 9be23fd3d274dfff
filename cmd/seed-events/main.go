package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/andrej/teamup-api/internal/config"
	"github.com/andrej/teamup-api/internal/database"
)

func main() {
	if len(os.Args) < 2 || len(os.Args) > 3 {
		fmt.Println("Usage: seed-events <name> [team-capacity]")
		os.Exit(1)
	}

	name := os.Args[1]

	var capacity *int
	if len(os.Args) == 3 {
		n, err := strconv.Atoi(os.Args[2])
		if err != nil || n < 1 {
			log.Fatalf("Invalid team capacity: %s", os.Args[2])
		}
		capacity = &n
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	startsAt := time.Now().Add(7 * 24 * time.Hour)
	endsAt := startsAt.Add(48 * time.Hour)

	var id string
	err = db.Pool.QueryRow(ctx, `
		INSERT INTO events (name, description, team_capacity, starts_at, ends_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, name, "", capacity, startsAt, endsAt).Scan(&id)
	if err != nil {
		log.Fatalf("Failed to create event: %v", err)
	}

	fmt.Printf("Created event %s (%s)\n", name, id)
}
