package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"live-poll/config"
	"live-poll/internal/repository"
	"live-poll/pkg/database"
)

const usage = `
Live Poll - Store CLI Tool

Usage:
  migrate [command]

Commands:
  up          Create or update the questions, active and responses tables
  status      Show store connection status and row counts
  seed-dev    Seed sample questions and activate one
  truncate    Delete every question, response and the active pointer (DANGEROUS)

The store is selected with STORE_DRIVER (postgres, sqlite or mongo). Mongo
needs no migration; up and truncate only apply to the relational drivers.

Examples:
  go run cmd/migrate/main.go up
  STORE_DRIVER=sqlite SQLITE_PATH=poll.db go run cmd/migrate/main.go seed-dev
`

func main() {
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

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	switch command {
	case "up":
		runMigrationsUp(cfg)
	case "status":
		showStatus(ctx, cfg)
	case "seed-dev":
		runSeedDevelopment(ctx, cfg)
	case "truncate":
		runTruncate(cfg)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}

func requireRelational(cfg *config.Config) {
	if cfg.StoreDriver == config.StoreDriverMongo {
		log.Fatalf("❌ Command needs a relational store, STORE_DRIVER is %s", cfg.StoreDriver)
	}
}

func runMigrationsUp(cfg *config.Config) {
	requireRelational(cfg)
	log.Println("🚀 Running migrations UP...")

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("❌ Connection failed: %v", err)
	}
	defer database.Close()

	if err := repository.InitSchema(db); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}
	log.Println("✅ Migrations completed successfully!")
}

func showStatus(ctx context.Context, cfg *config.Config) {
	log.Printf("🔍 Checking %s store status...", cfg.StoreDriver)

	if cfg.StoreDriver == config.StoreDriverMongo {
		store, err := database.OpenStore(ctx, cfg)
		if err != nil {
			log.Fatalf("❌ Store connection failed: %v", err)
		}
		defer store.Close(ctx)
		if err := store.Ping(ctx); err != nil {
			log.Fatalf("❌ Store ping failed: %v", err)
		}
		log.Println("✅ Store connection: OK")
		return
	}

	if _, err := database.Connect(cfg); err != nil {
		log.Fatalf("❌ Database connection failed: %v", err)
	}
	defer database.Close()

	if err := database.Ping(ctx); err != nil {
		log.Fatalf("❌ Database connection failed: %v", err)
	}
	log.Println("✅ Database connection: OK")

	for _, table := range repository.Tables {
		if !database.TableExists(table) {
			log.Printf("❌ Table %-12s does not exist", table)
			continue
		}
		count, err := database.GetTableCount(table)
		if err != nil {
			log.Printf("⚠️  Error counting table %s: %v", table, err)
			continue
		}
		log.Printf("✅ Table %-12s exists (%d rows)", table, count)
	}

	if err := database.HealthCheck(ctx); err != nil {
		log.Printf("⚠️  Health check warning: %v", err)
	} else {
		log.Println("✅ Health check: PASSED")
	}
}

func runSeedDevelopment(ctx context.Context, cfg *config.Config) {
	log.Println("🌱 Seeding store (development mode)...")

	store, err := database.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Store connection failed: %v", err)
	}
	defer store.Close(ctx)

	result, err := database.SeedDevelopment(ctx, store)
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("📊 Seed Summary:")
	log.Printf("   - Questions: %d", len(result.Questions))
	log.Printf("   - Active question: %s", result.ActiveID)
	log.Println("✅ Development seeding completed!")
}

func runTruncate(cfg *config.Config) {
	requireRelational(cfg)
	log.Println("⚠️  WARNING: This will DELETE all poll data!")

	if _, err := database.Connect(cfg); err != nil {
		log.Fatalf("❌ Database connection failed: %v", err)
	}
	defer database.Close()

	if err := database.TruncateAllTables(); err != nil {
		log.Fatalf("❌ Truncate failed: %v", err)
	}
	log.Println("✅ All tables truncated successfully!")
}
