// migrate applies the embedded SQL migrations; use go run ./cmd/migrate.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"taskhub/backend/internal/config"
	"taskhub/backend/internal/db/migrate"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	flag.Parse()

	if err := run(*direction); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}

func run(direction string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	err = migrate.Run(cfg.DatabaseURL, direction)
	if errors.Is(err, migrate.ErrNoChange) {
		log.Println("migrate: schema already up to date")
		return nil
	}
	return err
}
