package handlers

import (
	"fmt"
	"time"

	"isthatstilltrue/internal/config"
	"isthatstilltrue/internal/factcheck"
	"isthatstilltrue/internal/factgen"
	"isthatstilltrue/internal/llm"
	"isthatstilltrue/internal/logger"
	"isthatstilltrue/internal/memories"
	"isthatstilltrue/internal/persistence"
	"isthatstilltrue/internal/store"
	"isthatstilltrue/internal/wiki"
)

// getDatabase opens Postgres when a connection string is configured,
// otherwise the local SQLite store.
func getDatabase() (persistence.Database, error) {
	cfg := config.Get()

	if cfg.Database.ConnectionString != "" {
		logger.Info("Connecting to PostgreSQL")
		db, err := persistence.NewPostgresDB(cfg.Database.ConnectionString)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return db, nil
	}

	logger.Info("No database configured, using local SQLite store", "dir", cfg.Cache.Directory)
	return store.NewStore(cfg.Cache.Directory)
}

// newProvider builds the configured AI provider wrapped with retries.
func newProvider(cfg *config.Config) (llm.Provider, error) {
	provider, err := llm.NewProvider(cfg.AI)
	if err != nil {
		return nil, err
	}

	timeout := cfg.AI.Gemini.Timeout
	if cfg.AI.Provider == "openai" {
		timeout = cfg.AI.OpenAI.Timeout
	}

	return llm.WithRetry(
		provider,
		config.Duration(timeout, 25*time.Second),
		cfg.Pipeline.MaxRetries,
		config.Duration(cfg.Pipeline.RetryBaseDelay, time.Second),
	), nil
}

// services bundles the request-handling collaborators built from config.
type services struct {
	pipeline   *factgen.Pipeline
	checker    *factcheck.Checker
	researcher *memories.Researcher
}

// newServices wires the pipeline, checker, and researcher for a database.
func newServices(cfg *config.Config, db persistence.Database) (*services, error) {
	provider, err := newProvider(cfg)
	if err != nil {
		return nil, err
	}

	encyclopedia := wiki.NewClient(cfg.Wikipedia)
	retention := config.Duration(cfg.Cache.Retention, 7*24*time.Hour)

	return &services{
		pipeline:   factgen.NewPipeline(provider, encyclopedia, db.Cache(), cfg.Pipeline, retention),
		checker:    factcheck.NewChecker(provider, encyclopedia),
		researcher: memories.NewResearcher(provider, db.Cache(), retention),
	}, nil
}
