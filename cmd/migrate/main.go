package main

import (
	"flag"
	"log"

	migrate "github.com/rubenv/sql-migrate"

	"github.com/johnquangdev/meeting-insights/internal/infrastructure/database"
	"github.com/johnquangdev/meeting-insights/pkg/config"
)

func main() {
	down := flag.Bool("down", false, "roll back instead of applying")
	steps := flag.Int("steps", 0, "maximum number of migrations to run, 0 means all")
	status := flag.Bool("status", false, "print applied migrations and exit")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	if *status {
		records, err := database.MigrationStatus(db)
		if err != nil {
			log.Fatalf("Failed to read migration status: %v", err)
		}
		for _, r := range records {
			log.Printf("%s applied at %s", r.Id, r.AppliedAt.Format("2006-01-02 15:04:05"))
		}
		return
	}

	dir := migrate.Up
	if *down {
		dir = migrate.Down
		if *steps == 0 {
			*steps = 1
		}
	}

	log.Println("🔄 Applying migrations...")
	n, err := database.Migrate(db, dir, *steps)
	if err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	log.Printf("✅ Successfully applied %d migration(s)!\n", n)
}
