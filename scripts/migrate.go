// Standalone migration runner for deploys where the API starts with
// DB_AUTO_MIGRATE disabled. Run from the repository root.
package main

import (
	"log"

	"github.com/podflow-team/podflow/internal/infrastructure/database"
	"github.com/podflow-team/podflow/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}
}
