// TraceOS core runtime server. Owns the tri-state memory store, the agent
// dispatcher, the per-session valuation engine and the compression pipeline.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/jesforart/traceos-sub000/pkg/agent"
	"github.com/jesforart/traceos-sub000/pkg/api"
	"github.com/jesforart/traceos-sub000/pkg/compress"
	"github.com/jesforart/traceos-sub000/pkg/config"
	"github.com/jesforart/traceos-sub000/pkg/database"
	"github.com/jesforart/traceos-sub000/pkg/eventlog"
	"github.com/jesforart/traceos-sub000/pkg/gut"
	"github.com/jesforart/traceos-sub000/pkg/ingest"
	"github.com/jesforart/traceos-sub000/pkg/oracle"
	"github.com/jesforart/traceos-sub000/pkg/services"
	"github.com/jesforart/traceos-sub000/pkg/telemetry"
	"github.com/jesforart/traceos-sub000/pkg/version"
)

const shutdownTimeout = 15 * time.Second

func main() {
	envFile := flag.String("env-file", ".env", "Path to .env file")
	purgeSession := flag.String("purge-session", "", "Purge one session and exit (maintenance mode)")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil {
		slog.Warn("Could not load .env file, continuing with existing environment",
			"path", *envFile, "error", err)
	}

	ctx := context.Background()

	// 1. Resolve configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(cfg.StorageRoot, 0o755); err != nil {
		slog.Error("Failed to create storage root", "path", cfg.StorageRoot, "error", err)
		os.Exit(1)
	}
	slog.Info("Starting TraceOS",
		"version", version.Full(),
		"http_port", cfg.HTTPPort,
		"storage_root", cfg.StorageRoot,
		"dev_mode", cfg.DevMode)

	// 2. Open the database under the migration lock. Concurrent startups
	// race on the lock; exactly one performs the migration.
	lock := database.NewMigrationLock(cfg.MigrationLockPath())
	if err := lock.Lock(ctx); err != nil {
		slog.Error("Failed to acquire migration lock", "error", err)
		os.Exit(1)
	}

	dbClient, err := database.NewClient(ctx, database.Config{
		Path:             cfg.DBPath(),
		StrictSignatures: cfg.StrictMigrations,
	})
	if err != nil {
		_ = lock.Unlock()
		slog.Error("Failed to open database", "path", cfg.DBPath(), "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			slog.Error("Error closing database", "error", err)
		}
	}()

	migErr := dbClient.Migrate(ctx)
	if unlockErr := lock.Unlock(); unlockErr != nil {
		slog.Warn("Failed to release migration lock", "error", unlockErr)
	}
	if migErr != nil {
		if database.IsSignatureMismatch(migErr) {
			slog.Error("Schema signature mismatch under strict mode", "error", migErr)
		} else {
			slog.Error("Migration failed", "error", migErr)
		}
		os.Exit(1)
	}
	slog.Info("Database ready", "path", cfg.DBPath())

	// 3. Domain services
	blocks := services.NewBlockService(dbClient)
	dnas := services.NewDNAService(dbClient)
	intents := services.NewIntentService(dbClient)
	chunks := services.NewChunkService(dbClient)
	contracts := services.NewContractService(dbClient)
	cleanup := services.NewCleanupService(dbClient)

	// Maintenance mode: purge and exit.
	if *purgeSession != "" {
		if err := runPurge(ctx, cleanup, *purgeSession); err != nil {
			slog.Error("Purge failed", "session_id", *purgeSession, "error", err)
			os.Exit(2)
		}
		return
	}

	// 4. Telemetry writer pool
	pool, err := telemetry.NewWriterPool(cfg.TelemetryDir())
	if err != nil {
		slog.Error("Failed to initialize telemetry pool", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := pool.Close(); err != nil {
			slog.Error("Error closing telemetry writers", "error", err)
		}
	}()

	// 5. Event log integration (optional, probed non-fatally)
	events := eventlog.NewClient(cfg.EventLogURL)
	if events != nil {
		if err := events.Probe(ctx); err != nil {
			slog.Warn("Event log probe failed, continuing", "url", cfg.EventLogURL, "error", err)
		} else {
			slog.Info("Event log reachable", "url", cfg.EventLogURL)
		}
	}

	// 6. Oracle
	llm, err := buildOracle(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize oracle", "error", err)
		os.Exit(1)
	}

	// 7. Registry, dispatcher, valuation pool, pipelines
	registry := agent.NewRegistry()
	if cfg.DevMode {
		if err := registry.Register(agent.EchoAgent(), agent.EchoExecutor{}); err != nil {
			slog.Error("Failed to register echo agent", "error", err)
			os.Exit(1)
		}
		slog.Info("Registered development echo agent")
	}

	var emitter agent.EventEmitter
	if events != nil {
		emitter = events
	}
	dispatcher := agent.NewDispatcher(registry, contracts, emitter)
	guts := gut.NewPool(cfg.GutDecay, cfg.GutMinDwell)

	var source compress.EventSource
	if events != nil {
		source = events
	}
	pipeline := compress.NewPipeline(source, llm, blocks, cfg.DevMode)
	engine := ingest.NewEngine(pool, chunks, dnas, intents, blocks)

	// 8. HTTP server
	server := api.NewServer(api.Deps{
		DB:         dbClient,
		Registry:   registry,
		Dispatcher: dispatcher,
		Contracts:  contracts,
		Blocks:     blocks,
		Cleanup:    cleanup,
		Pipeline:   pipeline,
		Engine:     engine,
		Guts:       guts,
		Oracle:     llm,
		Events:     events,
		Telemetry:  pool,
	})

	httpServer := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: server.Routes(),
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 9. Wait for shutdown signal or server error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		slog.Info("Shutdown signal received", "signal", sig)
	case err := <-errCh:
		slog.Error("Server error triggered shutdown", "error", err)
	}

	// 10. Graceful shutdown: stop accepting requests, then close writers
	// and the database via the deferred closers.
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP shutdown incomplete", "error", err)
	}
	slog.Info("TraceOS stopped")
}

// buildOracle returns the live Gemini oracle, or a stub in dev mode when no
// API key is configured.
func buildOracle(ctx context.Context, cfg *config.Config) (oracle.Oracle, error) {
	if cfg.OracleAPIKey != "" {
		return oracle.NewGemini(ctx, cfg.OracleAPIKey, cfg.OracleModel, cfg.OracleTimeout)
	}
	if !cfg.DevMode {
		return nil, fmt.Errorf("GEMINI_API_KEY is required outside dev mode")
	}
	slog.Warn("No oracle API key, using dev stub")
	return oracle.CompleteFunc(func(context.Context, string, float32) (string, error) {
		return "", oracle.ErrUnavailable
	}), nil
}

func runPurge(ctx context.Context, cleanup *services.CleanupService, sessionID string) error {
	result, err := cleanup.PurgeSession(ctx, sessionID)
	if err != nil {
		return err
	}
	fmt.Printf("purged session %s: blocks=%d style_dna=%d intents=%d chunks=%d contracts=%d\n",
		sessionID, result.Blocks, result.StyleDNA, result.Intents, result.Chunks, result.Contracts)
	return nil
}
