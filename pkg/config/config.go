package config

import (
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Log       LogConfig       `koanf:"log"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	Intent    IntentConfig    `koanf:"intent"`
	Session   SessionConfig   `koanf:"session"`
	Audit     AuditConfig     `koanf:"audit"`
	Server    ServerConfig    `koanf:"server"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, text
}

type TelemetryConfig struct {
	Enabled      bool   `koanf:"enabled"`
	Exporter     string `koanf:"exporter"` // stdout, otlp
	OTLPEndpoint string `koanf:"otlp_endpoint"`
	OTLPInsecure bool   `koanf:"otlp_insecure"`
}

type CatalogConfig struct {
	Path string `koanf:"path"`
}

type IntentConfig struct {
	Strategy        string  `koanf:"strategy"` // keyword, embedding
	QdrantAddr      string  `koanf:"qdrant_addr"`
	Collection      string  `koanf:"collection"`
	EmbedderBaseURL string  `koanf:"embedder_base_url"`
	EmbedderModel   string  `koanf:"embedder_model"`
	Threshold       float64 `koanf:"threshold"`
	Margin          float64 `koanf:"margin"`
	Floor           float64 `koanf:"floor"`
}

type SessionConfig struct {
	TTL           time.Duration `koanf:"ttl"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

type AuditConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Backend    string `koanf:"backend"` // memory, sqlite
	SQLitePath string `koanf:"sqlite_path"`
}

type ServerConfig struct {
	Addr string `koanf:"addr"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Defaults
	k.Set("log.level", "info")
	k.Set("log.format", "text")
	k.Set("telemetry.enabled", false)
	k.Set("telemetry.exporter", "stdout")
	k.Set("catalog.path", "catalog.yaml")
	k.Set("intent.strategy", "keyword")
	k.Set("intent.qdrant_addr", "localhost:6334")
	k.Set("intent.collection", "gremio_roles")
	k.Set("intent.embedder_base_url", "http://localhost:11434")
	k.Set("intent.embedder_model", "nomic-embed-text")
	k.Set("intent.threshold", 0.75)
	k.Set("intent.margin", 0.05)
	k.Set("intent.floor", 0.35)
	k.Set("session.ttl", "30m")
	k.Set("session.sweep_interval", "1m")
	k.Set("audit.enabled", false)
	k.Set("audit.backend", "memory")
	k.Set("audit.sqlite_path", "gremio_audit.db")
	k.Set("server.addr", ":8080")

	// 1. Load from file
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// 2. Load from ENV. Sections are single words and keys may contain
	// underscores, so only the first underscore becomes the separator:
	// GREMIO_INTENT_EMBEDDER_BASE_URL -> intent.embedder_base_url.
	if err := k.Load(env.Provider("GREMIO_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "GREMIO_")), "_", ".", 1)
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
