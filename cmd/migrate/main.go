package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"roomshare/config"
	"roomshare/internal/services"
	"roomshare/pkg/database"

	"gorm.io/gorm"
)

const usage = `
Roomshare - Database CLI Tool

Usage:
  migrate [command] [flags]

Commands:
  up          Create or update all tables and indexes
  status      Show database connection status and row counts
  seed-dev    Seed with development data and print access tokens
  truncate    Delete all rows (DANGEROUS)

Flags:
  -users int      Profiles to create with seed-dev (default 4)
  -listings int   Listings per profile with seed-dev (default 2)

Examples:
  go run cmd/migrate/main.go up
  go run cmd/migrate/main.go seed-dev -users 6
`

func main() {
	users := flag.Int("users", 4, "Profiles to create with seed-dev")
	listings := flag.Int("listings", 2, "Listings per profile with seed-dev")

	flag.Usage = func() {
		fmt.Print(usage)
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	command := flag.Arg(0)

	cfg := config.LoadConfig()
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	defer database.Close(db)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	switch command {
	case "up":
		runMigrationsUp(db)
	case "status":
		showStatus(ctx, db)
	case "seed-dev":
		seedCfg := database.DefaultSeedConfig()
		seedCfg.Users = *users
		seedCfg.ListingsPerUser = *listings
		runSeedDevelopment(ctx, cfg, db, seedCfg)
	case "truncate":
		runTruncate(ctx, db)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}

func runMigrationsUp(db *gorm.DB) {
	log.Println("Running migrations...")

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("Migrations completed successfully")
}

func showStatus(ctx context.Context, db *gorm.DB) {
	log.Println("Checking database status...")

	if err := database.HealthCheck(ctx, db); err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Database connection: OK")

	counts, err := database.TableCounts(ctx, db)
	if err != nil {
		log.Fatalf("Counting rows failed (run 'up' first?): %v", err)
	}
	tables := make([]string, 0, len(counts))
	for table := range counts {
		tables = append(tables, table)
	}
	sort.Strings(tables)
	for _, table := range tables {
		log.Printf("Table %-15s %d rows", table, counts[table])
	}
}

func runSeedDevelopment(ctx context.Context, cfg *config.Config, db *gorm.DB, seedCfg *database.SeedConfig) {
	log.Println("Seeding database (development mode)...")

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	result, err := database.Seed(ctx, db, seedCfg)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Seed summary:")
	log.Printf("   - Profiles: %d", len(result.Profiles))
	log.Printf("   - Listings: %d", len(result.Listings))
	log.Printf("   - Conversations: %d", len(result.Conversations))
	log.Printf("   - Messages: %d", len(result.Messages))
	log.Printf("   - Favorites: %d", len(result.Favorites))

	auth := services.NewAuthService(cfg)
	log.Println("Access tokens:")
	for _, p := range result.Profiles {
		email := ""
		if p.EmailPublic != nil {
			email = *p.EmailPublic
		}
		token, err := auth.IssueAccessToken(p.ID, email)
		if err != nil {
			log.Fatalf("Issuing token failed: %v", err)
		}
		log.Printf("   %s %s\n      %s", p.ID, email, token)
	}
	log.Println("Development seeding completed")
}

func runTruncate(ctx context.Context, db *gorm.DB) {
	log.Println("WARNING: This will delete all rows!")

	if err := database.Truncate(ctx, db); err != nil {
		log.Fatalf("Truncate failed: %v", err)
	}

	log.Println("All tables truncated")
}
