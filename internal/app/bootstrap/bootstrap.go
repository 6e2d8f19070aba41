package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	lifecycleservice "pojat/contexts/prompt-moderation/lifecycle-service"
	lifecyclepostgres "pojat/contexts/prompt-moderation/lifecycle-service/adapters/postgres"
	lifecycleworkers "pojat/contexts/prompt-moderation/lifecycle-service/application/workers"
	notationservice "pojat/contexts/prompt-moderation/notation-service"
	notationpostgres "pojat/contexts/prompt-moderation/notation-service/adapters/postgres"
	votetallyengine "pojat/contexts/prompt-moderation/vote-tally-engine"
	votepostgres "pojat/contexts/prompt-moderation/vote-tally-engine/adapters/postgres"
	"pojat/internal/platform/config"
	"pojat/internal/platform/db"
	"pojat/internal/platform/httpserver"
	"pojat/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	outboxRelay  lifecycleworkers.OutboxRelay
	relayEnabled bool
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	if err := db.Migrate(cfg.PostgresDSN, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	lifecycleRepo := lifecyclepostgres.NewRepository(pg.DB, logger)
	lifecycleModule := lifecycleservice.NewModule(lifecycleservice.Dependencies{
		Prompts:     lifecycleRepo,
		Maintenance: lifecycleRepo,
		Outbox:      lifecycleRepo,
		Clock:       lifecyclepostgres.SystemClock{},
		IDGen:       lifecyclepostgres.UUIDGenerator{},
		Logger:      logger,
	})

	voteRepo := votepostgres.NewRepository(pg.DB, logger)
	voteModule := votetallyengine.NewModule(votetallyengine.Dependencies{
		Votes:  voteRepo,
		Outbox: voteRepo,
		Clock:  votepostgres.SystemClock{},
		IDGen:  votepostgres.UUIDGenerator{},
		Logger: logger,
	})

	notationRepo := notationpostgres.NewRepository(pg.DB, logger)
	notationModule := notationservice.NewModule(notationservice.Dependencies{
		Notes:  notationRepo,
		Logger: logger,
	})

	server := httpserver.New(lifecycleModule, voteModule, notationModule, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	kafka, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}

	// Both services append to the shared outbox table, so one relay drains
	// lifecycle and tally events alike.
	repo := lifecyclepostgres.NewRepository(pg.DB, logger)
	return &WorkerApp{
		postgres: pg,
		outboxRelay: lifecycleworkers.OutboxRelay{
			Outbox:    repo,
			Publisher: kafka,
			Clock:     lifecyclepostgres.SystemClock{},
			BatchSize: 100,
			Logger:    logger,
		},
		relayEnabled: cfg.EnableOutboxRelay,
		pollInterval: cfg.OutboxPollInterval,
		logger:       logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
		"relay_enabled", w.relayEnabled,
	)

	for {
		if w.relayEnabled {
			if err := w.outboxRelay.RunOnce(ctx); err != nil {
				return err
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
