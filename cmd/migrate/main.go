package main

// Run database migrations:
//   go run ./cmd/migrate [up|down|status]

import (
	"context"
	"log"
	"os"

	"docuscore-backend/internal/shared/config"
	"docuscore-backend/internal/shared/storage/db"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	opts := db.OptionsFromEnv(db.DefaultMigrateOptions())
	sqlDB, dialect, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		log.Printf("failed to connect database: %v", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	switch command {
	case "up":
		err = db.RunMigrations(ctx, sqlDB, dialect)
	case "down":
		err = db.RollbackMigration(ctx, sqlDB, dialect)
	case "status":
		var version int64
		version, err = db.MigrationVersion(ctx, sqlDB, dialect)
		if err == nil {
			log.Printf("schema version %d (%s)", version, dialect)
		}
	default:
		log.Printf("unknown command %q; want up, down or status", command)
		sqlDB.Close()
		os.Exit(2)
	}
	if err != nil {
		log.Printf("migrate %s failed: %v", command, err)
		sqlDB.Close()
		os.Exit(1)
	}
	log.Printf("migrate %s done (%s)", command, dialect)
}
