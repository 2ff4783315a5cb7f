// Package main implements the golf catalogue server with a RESTful API,
// construction sweeps and a database admin subcommand.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"golf/cmd/golf-server/cli"
	"golf/internal/config"
	"golf/internal/server/construct"
	"golf/internal/server/http"
	"golf/internal/server/processor"
	"golf/internal/server/service"
	"golf/internal/server/storage"
)

const (
	gracefulShutdownTimeout = time.Second * 5
)

func main() {
	// Check for CLI database commands
	if len(os.Args) > 1 && os.Args[1] == "db" {
		if err := cli.Run(os.Args[2:]); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		os.Exit(0)
	}

	var (
		configFile       = flag.String("config", "golf.yaml", "Path to the YAML configuration file")
		apiHost          = flag.String("api-host", "", "API server host (overrides config)")
		apiPort          = flag.Int("api-port", 0, "API server port (overrides config)")
		dev              = flag.Bool("dev", false, "Development mode (relaxed rate limits, WAL journal)")
		storagePath      = flag.String("storage-path", "", "Path to SQLite database file (overrides config)")
		logLevel         = flag.String("log-level", "", "Log level: debug|info|warn|error (overrides config)")
		pidPath          = flag.String("pid", "", "Optional path to write PID file")
		pidLock          = flag.Bool("pid-lock", false, "Lock PID file to allow only one instance (requires -pid)")
		runConstructions = flag.Bool("construct", false, "Queue a sweep of all constructions at startup")
	)
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Explicit flags win over file and environment
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "api-host":
			cfg.API.Host = *apiHost
		case "api-port":
			cfg.API.Port = *apiPort
		case "dev":
			cfg.Dev = *dev
		case "storage-path":
			cfg.Storage.Path = *storagePath
		case "log-level":
			cfg.Log.Level = *logLevel
		case "pid":
			cfg.API.PIDFile = *pidPath
		case "pid-lock":
			cfg.API.PIDLock = *pidLock
		case "construct":
			cfg.Constructions.RunOnStart = *runConstructions
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}
	slog.SetDefault(logger)

	if cfg.API.PIDLock && cfg.API.PIDFile == "" {
		log.Fatal("Error: -pid-lock flag requires the -pid flag to be set")
	}

	if cfg.API.PIDFile != "" {
		cleanup, err := managePIDFile(cfg.API.PIDFile, cfg.API.PIDLock)
		if err != nil {
			log.Fatalf("Failed to manage PID file: %v", err)
		}
		defer cleanup()
		logger.Info("PID file created", "path", cfg.API.PIDFile, "lock", cfg.API.PIDLock)
	}

	// 1. Storage
	logger.Info("Initializing storage", "path", cfg.Storage.Path)
	store, err := storage.NewStore(cfg.Storage.Path, cfg.Dev, logger)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	if err := store.InitDB(); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close storage cleanly", "error", err)
		}
	}()

	// 2. Metrics and service
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	svc := service.New(store, logger, service.NewMetrics(reg), nil)

	// 3. Construction registry and processor
	registry := construct.NewRegistry(svc, logger,
		construct.WithLimits(cfg.Constructions.MaxNumGroups, cfg.Constructions.MaxGroupSize),
		construct.WithContact(cfg.Constructions.ContactEmail))
	proc := processor.New(svc, registry, logger)

	if cfg.Constructions.RunOnStart {
		jobID, err := proc.Queue().Submit("")
		if err != nil {
			logger.Error("Failed to queue startup constructions", "error", err)
		} else {
			logger.Info("Queued startup constructions", "job_id", jobID)
		}
	}

	// 4. HTTP
	app := http.NewFiberApp(proc, svc, http.Options{
		DevMode:   cfg.Dev,
		Gatherer:  reg,
		AccessLog: cfg.API.AccessLog,
	})

	apiAddr := cfg.API.Addr()
	go func() {
		logger.Info("Golf API server starting",
			"addr", "http://"+apiAddr,
			"version", "v1",
			"dev", cfg.Dev,
			"storage", cfg.Storage.Path)
		logger.Info("Endpoints",
			"instances", "http://"+apiAddr+"/api/v1/instances",
			"health", "http://"+apiAddr+"/health",
			"metrics", "http://"+apiAddr+"/metrics")

		if err := app.Listen(apiAddr); err != nil {
			logger.Error("API server listen error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("Server forced to shutdown", "error", err)
	}

	// Let a running sweep finish before the store closes
	if err := proc.Close(); err != nil {
		logger.Warn("Processor close error", "error", err)
	}

	if err := store.Flush(shutdownCtx); err != nil {
		logger.Warn("Pending writes not flushed", "error", err)
	}

	logger.Info("Server exited")
}

// newLogger builds the process logger from configuration
func newLogger(cfg config.LogConfig) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
}
