package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/kinsync/kinsync/internal/config"
	"github.com/kinsync/kinsync/internal/ingest"
	"github.com/kinsync/kinsync/internal/match"
	"github.com/kinsync/kinsync/internal/server"
	"github.com/kinsync/kinsync/internal/storage"
	"github.com/kinsync/kinsync/internal/storage/postgres"
	"github.com/kinsync/kinsync/internal/storage/sqlite"
	"github.com/kinsync/kinsync/pkg/types"
	"github.com/kinsync/kinsync/web/handlers"
)

func main() {
	// Parse command line flags
	matchConfigPath := flag.String("match-config", "", "Path to matching config YAML (overrides defaults)")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *matchConfigPath != "" {
		cfg.Matching, err = config.LoadMatchConfig(*matchConfigPath)
		if err != nil {
			log.Fatalf("Failed to load matching config: %v", err)
		}
	}

	// Initialize storage
	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	resolver := match.NewResolver(cfg.Matching)
	detector := match.NewDetector(cfg.Matching)

	// Start the mention relay poller when a relay is configured. The resolver
	// is shared with the HTTP layer so both paths warm the same alias caches.
	var relay handlers.RelayStatsGetter
	if cfg.Ingest.RelayURL != "" {
		client := ingest.NewClient(cfg.Ingest.RelayURL, cfg.Ingest.RelayToken, cfg.Ingest.RateLimit, cfg.Ingest.RateBurst)
		relay = client

		poller := ingest.NewPoller(client, store, resolver, cfg.Ingest.PollInterval,
			func(m ingest.Mention, result types.PersonMatch) {
				if result.Person != nil {
					log.Printf("ingest: mention %q resolved to person %s (%s, %.2f)", m.Text, result.Person.ID, result.Method, result.Confidence)
				}
			},
			func(m ingest.Mention, result types.TaskMatch) {
				if !result.IsNew {
					log.Printf("ingest: mention %q resolved to task %s (%s, %.2f)", m.Text, result.Task.ID, result.Method, result.Confidence)
					return
				}
				task := &types.Task{Title: m.Text, CreatedBy: m.CreatedBy}
				if err := store.StoreTask(ctx, task); err != nil {
					log.Printf("ingest: failed to create task for mention %q: %v", m.Text, err)
					return
				}
				log.Printf("ingest: created task %s from mention %q", task.ID, m.Text)
			},
		)
		go poller.Run(ctx)
		log.Printf("Mention relay poller started (relay: %s)", cfg.Ingest.RelayURL)
	}

	// Start server
	addr, _ := server.Start(ctx, cfg, store, resolver, detector, relay)
	log.Printf("KinSync API running at http://%s", addr)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down gracefully...")

	cancel()
	time.Sleep(1 * time.Second) // Give time for connections to close
}

// openStore selects the storage backend from configuration. For sqlite, any
// migrations dropped into <data>/migrations are applied on startup.
func openStore(cfg *config.Config) (storage.RosterStore, error) {
	switch cfg.Storage.StorageEngine {
	case "postgres":
		return postgres.NewRosterStore(cfg.Storage.PostgresURL)
	default:
		if err := os.MkdirAll(cfg.Storage.DataPath, 0o755); err != nil {
			return nil, err
		}
		store, err := sqlite.NewRosterStore(cfg.Storage.DataPath + "/kinsync.db")
		if err != nil {
			return nil, err
		}
		migrationsDir := filepath.Join(cfg.Storage.DataPath, "migrations")
		if _, err := os.Stat(migrationsDir); err == nil {
			if err := store.RunMigrations(migrationsDir); err != nil {
				store.Close()
				return nil, err
			}
		}
		return store, nil
	}
}
