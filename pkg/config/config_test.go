package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Intent.Strategy != "keyword" {
		t.Errorf("expected default strategy keyword, got %s", cfg.Intent.Strategy)
	}
	if cfg.Session.TTL != 30*time.Minute {
		t.Errorf("expected default session ttl 30m, got %s", cfg.Session.TTL)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected default addr :8080, got %s", cfg.Server.Addr)
	}
	if cfg.Audit.Backend != "memory" {
		t.Errorf("expected default audit backend memory, got %s", cfg.Audit.Backend)
	}
}

func TestLoadEnv(t *testing.T) {
	os.Setenv("GREMIO_LOG_LEVEL", "debug")
	defer os.Unsetenv("GREMIO_LOG_LEVEL")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("expected log level debug from env, got %s", cfg.Log.Level)
	}
}

func TestLoadEnvMultiWordKeys(t *testing.T) {
	os.Setenv("GREMIO_SESSION_SWEEP_INTERVAL", "5s")
	os.Setenv("GREMIO_TELEMETRY_OTLP_ENDPOINT", "collector:4317")
	os.Setenv("GREMIO_INTENT_EMBEDDER_BASE_URL", "http://embedder:11434")
	defer func() {
		os.Unsetenv("GREMIO_SESSION_SWEEP_INTERVAL")
		os.Unsetenv("GREMIO_TELEMETRY_OTLP_ENDPOINT")
		os.Unsetenv("GREMIO_INTENT_EMBEDDER_BASE_URL")
	}()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Session.SweepInterval != 5*time.Second {
		t.Errorf("expected sweep interval 5s from env, got %s", cfg.Session.SweepInterval)
	}
	if cfg.Telemetry.OTLPEndpoint != "collector:4317" {
		t.Errorf("expected otlp endpoint from env, got %s", cfg.Telemetry.OTLPEndpoint)
	}
	if cfg.Intent.EmbedderBaseURL != "http://embedder:11434" {
		t.Errorf("expected embedder base url from env, got %s", cfg.Intent.EmbedderBaseURL)
	}
}

func TestLoadFile(t *testing.T) {
	tmpDir := t.TempDir()
	content := `
log:
  level: "warn"
intent:
  strategy: "embedding"
  threshold: 0.8
session:
  ttl: "5m"
audit:
  enabled: true
  backend: "sqlite"
`
	path := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Log.Level != "warn" {
		t.Errorf("expected log level warn, got %s", cfg.Log.Level)
	}
	if cfg.Intent.Strategy != "embedding" {
		t.Errorf("expected strategy embedding, got %s", cfg.Intent.Strategy)
	}
	if cfg.Intent.Threshold != 0.8 {
		t.Errorf("expected threshold 0.8, got %v", cfg.Intent.Threshold)
	}
	if cfg.Session.TTL != 5*time.Minute {
		t.Errorf("expected ttl 5m, got %s", cfg.Session.TTL)
	}
	if !cfg.Audit.Enabled || cfg.Audit.Backend != "sqlite" {
		t.Errorf("unexpected audit config: %+v", cfg.Audit)
	}
	// Untouched keys keep their defaults.
	if cfg.Intent.EmbedderModel != "nomic-embed-text" {
		t.Errorf("expected default embedder model, got %s", cfg.Intent.EmbedderModel)
	}
}

func TestWatcherReload(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: \"info\"\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	w, err := NewWatcher(path, nil, WithWatchInterval(10*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	changed := make(chan *Config, 1)
	w.OnChange(func(cfg *Config) {
		select {
		case changed <- cfg:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer w.Stop()

	// mtime granularity on some filesystems is one second
	time.Sleep(20 * time.Millisecond)
	now := time.Now().Add(2 * time.Second)
	if err := os.WriteFile(path, []byte("log:\n  level: \"debug\"\n"), 0644); err != nil {
		t.Fatalf("failed to rewrite config: %v", err)
	}
	if err := os.Chtimes(path, now, now); err != nil {
		t.Fatalf("failed to bump mtime: %v", err)
	}

	select {
	case cfg := <-changed:
		if cfg.Log.Level != "debug" {
			t.Fatalf("expected reloaded level debug, got %s", cfg.Log.Level)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestWatcherExtraPathTriggersReload(t *testing.T) {
	tmpDir := t.TempDir()
	catalogPath := filepath.Join(tmpDir, "catalog.yaml")
	if err := os.WriteFile(catalogPath, []byte("roles: []\n"), 0644); err != nil {
		t.Fatalf("failed to write catalog: %v", err)
	}

	// No config file; the watcher tracks the catalog path alone.
	w, err := NewWatcher("", []string{catalogPath}, WithWatchInterval(10*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	changed := make(chan *Config, 1)
	w.OnChange(func(cfg *Config) {
		select {
		case changed <- cfg:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer w.Stop()

	time.Sleep(20 * time.Millisecond)
	now := time.Now().Add(2 * time.Second)
	if err := os.WriteFile(catalogPath, []byte("roles: [{name: Cook}]\n"), 0644); err != nil {
		t.Fatalf("failed to rewrite catalog: %v", err)
	}
	if err := os.Chtimes(catalogPath, now, now); err != nil {
		t.Fatalf("failed to bump mtime: %v", err)
	}

	select {
	case cfg := <-changed:
		// The config comes from defaults; the edit only triggers the reload.
		if cfg.Intent.Strategy != "keyword" {
			t.Fatalf("expected default strategy, got %s", cfg.Intent.Strategy)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}
