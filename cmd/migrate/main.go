package main

import (
	"context"
	"embed"
	"flag"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/billforge/billforge/internal/config"
	"github.com/billforge/billforge/internal/logger"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrations embed.FS

func main() {
	dryRun := flag.Bool("dry-run", false, "Print migration SQL without executing it")
	flag.Parse()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		logger.Fatalw("Failed to read migrations", "error", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	if *dryRun {
		for _, entry := range entries {
			sql, err := migrations.ReadFile("migrations/" + entry.Name())
			if err != nil {
				logger.Fatalw("Failed to read migration", "file", entry.Name(), "error", err)
			}
			fmt.Printf("-- %s\n%s\n", entry.Name(), sql)
		}
		return
	}

	logger.Infow("Connecting to database", "host", cfg.Postgres.Host)
	db, err := sqlx.Connect("postgres", cfg.Postgres.GetDSN())
	if err != nil {
		logger.Fatalw("Failed to connect to postgres", "error", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, entry := range entries {
		sql, err := migrations.ReadFile("migrations/" + entry.Name())
		if err != nil {
			logger.Fatalw("Failed to read migration", "file", entry.Name(), "error", err)
		}
		logger.Infow("Applying migration", "file", entry.Name())
		if _, err := db.ExecContext(ctx, string(sql)); err != nil {
			logger.Fatalw("Migration failed", "file", entry.Name(), "error", err)
		}
	}

	logger.Info("Migrations completed successfully")
}
