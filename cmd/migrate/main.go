// Migrate applies the embedded schema migrations.
// Usage: migrate [up|down] (default up). DATABASE_URL must be set.
package main

import (
	"log"
	"os"

	"campus-dispatch/internal/config"
	"campus-dispatch/internal/db/migrate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("migrate: DATABASE_URL is required")
	}

	direction := "up"
	if len(os.Args) > 1 {
		direction = os.Args[1]
	}

	if err := migrate.Run(cfg.DatabaseURL, direction); err != nil {
		log.Fatalf("migrate %s: %v", direction, err)
	}
	log.Printf("migrate %s: done", direction)
}
