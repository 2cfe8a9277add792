// Copyright 2026 © The Gremio Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/jllopis/gremio/pkg/catalog"
	"github.com/jllopis/gremio/pkg/config"
	"github.com/jllopis/gremio/pkg/httpapi"
	"github.com/jllopis/gremio/pkg/mcpserver"
)

func runServe(ctx context.Context, global globalFlags) {
	a, err := buildApp(ctx, global)
	if err != nil {
		fatal(err)
	}
	defer a.close(context.Background())

	watcher, err := config.NewWatcher(global.ConfigPath, []string{a.cfg.Catalog.Path},
		config.WithWatchLogger(slog.Default()))
	if err != nil {
		fatal(err)
	}
	watcher.OnChange(func(cfg *config.Config) {
		cat, err := catalog.LoadFile(cfg.Catalog.Path)
		if err != nil {
			slog.Error("serve.catalog.reload_failed", "path", cfg.Catalog.Path, "error", err)
			return
		}
		resolver, err := buildResolver(ctx, cfg, cat)
		if err != nil {
			slog.Error("serve.resolver.rebuild_failed", "error", err)
			return
		}
		if err := a.engine.Reload(cat, resolver); err != nil {
			slog.Error("serve.catalog.reload_failed", "error", err)
		}
	})
	watcher.Start(ctx)
	defer watcher.Stop()

	api := httpapi.NewServer(a.engine, a.sessions, slog.Default())
	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("gremio.serve.start", "addr", a.cfg.Server.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		slog.Info("gremio.serve.shutdown")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			fatal(err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(err)
		}
	}
}

func runMCP(ctx context.Context, global globalFlags) {
	a, err := buildApp(ctx, global)
	if err != nil {
		fatal(err)
	}
	defer a.close(context.Background())

	srv := mcpserver.NewServer("gremio", version, a.engine, a.sessions)
	slog.Info("gremio.mcp.start")
	if err := srv.ServeStdio(); err != nil {
		fatal(err)
	}
}
