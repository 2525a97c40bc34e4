package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/netcycle/netcycle/internal/config"
	"github.com/netcycle/netcycle/internal/logger"
	"github.com/netcycle/netcycle/internal/postgres"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "Print pending migration SQL without executing it")
	flag.Parse()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	logger.Infow("Connecting to database", "host", cfg.Postgres.Host)
	db, err := postgres.NewDB(cfg, logger)
	if err != nil {
		logger.Fatalw("Failed to connect to postgres", "error", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if *dryRun {
		pending, err := db.Pending(ctx)
		if err != nil {
			logger.Fatalw("Failed to list pending migrations", "error", err)
		}
		for _, m := range pending {
			fmt.Fprintf(os.Stdout, "-- %s\n%s\n", m.Version, m.SQL)
		}
		logger.Infow("Dry run complete", "pending", len(pending))
		return
	}

	applied, err := db.Migrate(ctx)
	if err != nil {
		logger.Fatalw("Failed to run migrations", "error", err, "applied", applied)
	}
	logger.Infow("Database migrations completed", "applied", applied)
}
