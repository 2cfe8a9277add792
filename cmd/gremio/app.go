// Copyright 2026 © The Gremio Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/jllopis/gremio/pkg/audit"
	"github.com/jllopis/gremio/pkg/catalog"
	"github.com/jllopis/gremio/pkg/config"
	"github.com/jllopis/gremio/pkg/engine"
	"github.com/jllopis/gremio/pkg/intent"
	"github.com/jllopis/gremio/pkg/intent/ollama"
	"github.com/jllopis/gremio/pkg/intent/qdrant"
	"github.com/jllopis/gremio/pkg/session"
	"github.com/jllopis/gremio/pkg/telemetry"
)

// app bundles the wired runtime pieces shared by the serve, mcp, and chat
// commands.
type app struct {
	cfg      *config.Config
	engine   *engine.Engine
	sessions *session.InMemoryStore

	cleanups []func(context.Context) error
}

// close runs cleanups in reverse registration order.
func (a *app) close(ctx context.Context) {
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		if err := a.cleanups[i](ctx); err != nil {
			fmt.Fprintln(os.Stderr, "shutdown:", err)
		}
	}
}

func buildApp(ctx context.Context, global globalFlags) (*app, error) {
	cfg, err := config.Load(global.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	a := &app{cfg: cfg}

	logger := telemetry.ConfigureSlog(os.Stderr, cfg.Log)

	var metrics *telemetry.EngineMetrics
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.Init(ctx, "gremio", version, cfg.Telemetry)
		if err != nil {
			return nil, fmt.Errorf("init telemetry: %w", err)
		}
		a.cleanups = append(a.cleanups, shutdown)

		metrics, err = telemetry.NewEngineMetrics(ctx)
		if err != nil {
			return nil, fmt.Errorf("init metrics: %w", err)
		}
	}

	cat, err := catalog.LoadFile(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	resolver, err := buildResolver(ctx, cfg, cat)
	if err != nil {
		return nil, err
	}

	a.sessions = session.NewInMemoryStore(cfg.Session.TTL)
	stopSweeper := a.sessions.StartSweeper(cfg.Session.SweepInterval)
	a.cleanups = append(a.cleanups, func(context.Context) error {
		stopSweeper()
		return nil
	})

	opts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithStrategyName(cfg.Intent.Strategy),
	}
	if metrics != nil {
		opts = append(opts, engine.WithMetrics(metrics))
	}
	if cfg.Audit.Enabled {
		store, err := buildAuditStore(a, cfg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, engine.WithAuditStore(store))
	}

	eng, err := engine.New(cat, resolver, opts...)
	if err != nil {
		return nil, err
	}
	a.engine = eng
	return a, nil
}

func buildResolver(ctx context.Context, cfg *config.Config, cat *catalog.Catalog) (intent.Resolver, error) {
	switch cfg.Intent.Strategy {
	case "", "keyword":
		return intent.NewKeywordResolver(cat), nil
	case "embedding":
		store, err := qdrant.New(cfg.Intent.QdrantAddr)
		if err != nil {
			return nil, fmt.Errorf("connect qdrant: %w", err)
		}
		embedder := ollama.NewEmbedder(cfg.Intent.EmbedderBaseURL, cfg.Intent.EmbedderModel)
		resolver := intent.NewEmbeddingResolver(store, embedder, embeddingConfig(cfg.Intent))
		if err := resolver.IndexCatalog(ctx, cat); err != nil {
			return nil, fmt.Errorf("index catalog: %w", err)
		}
		return resolver, nil
	default:
		return nil, fmt.Errorf("unknown intent strategy %q", cfg.Intent.Strategy)
	}
}

// embeddingConfig maps the intent section onto the resolver tuning knobs.
// The resolver works in float32 because that is what vector scores are.
func embeddingConfig(cfg config.IntentConfig) intent.EmbeddingConfig {
	return intent.EmbeddingConfig{
		Collection: cfg.Collection,
		Threshold:  float32(cfg.Threshold),
		Margin:     float32(cfg.Margin),
		Floor:      float32(cfg.Floor),
	}
}

func buildAuditStore(a *app, cfg *config.Config) (audit.Store, error) {
	switch cfg.Audit.Backend {
	case "", "memory":
		return audit.NewMemoryStore(), nil
	case "sqlite":
		db, err := sql.Open("sqlite", cfg.Audit.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open audit db: %w", err)
		}
		a.cleanups = append(a.cleanups, func(context.Context) error {
			return db.Close()
		})
		return audit.NewSQLiteStore(db)
	default:
		return nil, fmt.Errorf("unknown audit backend %q", cfg.Audit.Backend)
	}
}
