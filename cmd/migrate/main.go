package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"saunakirje/config"
	"saunakirje/internal/domain/newsletter"
	"saunakirje/internal/domain/profile"
	"saunakirje/internal/domain/subscriber"
	"saunakirje/pkg/database"
)

const usage = `
Saunakirje - Database CLI Tool

Usage:
  migrate [command] [flags]

Commands:
  up          Run all migrations (GORM + SQL)
  status      Show database connection status
  seed        Seed the database with the initial admin profile
  seed-dev    Seed with development/sample data

Flags:
  -migrations string   Path to migrations directory (default "migrations")
  -admin-email string  Admin email for seeding (default "arkisto@saunakartta.fi")
  -admin-pass string   Admin password for seeding (default "Lauteet@123!")

Examples:
  go run cmd/migrate/main.go up
  go run cmd/migrate/main.go seed
  go run cmd/migrate/main.go seed-dev
`

func main() {
	migrationsDir := flag.String("migrations", "migrations", "Path to migrations directory")
	adminEmail := flag.String("admin-email", "arkisto@saunakartta.fi", "Admin email for seeding")
	adminPass := flag.String("admin-pass", "Lauteet@123!", "Admin password for seeding")

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
	database.Connect(cfg)

	switch command {
	case "up":
		if err := database.DB.AutoMigrate(
			&subscriber.Subscriber{},
			&profile.Profile{},
			&newsletter.Newsletter{},
			&newsletter.RecipientLog{},
		); err != nil {
			log.Fatalf("Failed to apply GORM migrations: %v", err)
		}
		if err := database.ApplyRawMigrations(*migrationsDir); err != nil {
			log.Fatalf("Failed to apply raw migrations: %v", err)
		}
		log.Println("Migrations applied")

	case "status":
		if err := database.HealthCheck(); err != nil {
			log.Fatalf("Database unhealthy: %v", err)
		}
		log.Println("Database connection healthy")

	case "seed":
		seedCfg := database.DefaultSeedConfig()
		seedCfg.AdminEmail = *adminEmail
		seedCfg.AdminPassword = *adminPass
		if err := database.Seed(seedCfg); err != nil {
			log.Fatalf("Seeding failed: %v", err)
		}

	case "seed-dev":
		seedCfg := database.DefaultSeedConfig()
		seedCfg.AdminEmail = *adminEmail
		seedCfg.AdminPassword = *adminPass
		seedCfg.CreateSampleData = true
		if err := database.Seed(seedCfg); err != nil {
			log.Fatalf("Seeding failed: %v", err)
		}

	default:
		flag.Usage()
		os.Exit(1)
	}
}
