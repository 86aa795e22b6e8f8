package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default server port = %d", cfg.Server.Port)
	}
	if cfg.Index.SnapshotPath == "" {
		t.Error("default snapshot path is empty")
	}
}

func TestLoadFromFile(t *testing.T) {
	content := `
server:
  port: 9999
index:
  snapshotPath: /var/lib/docsearch/index.pndx
  preserveCompound: true
  extraStopwords: [etc, ibid]
redis:
  cacheTTL: 90s
search:
  defaultLimit: 20
  maxResults: 50
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("server port = %d", cfg.Server.Port)
	}
	if !cfg.Index.PreserveCompound {
		t.Error("preserveCompound not read")
	}
	if len(cfg.Index.ExtraStopwords) != 2 {
		t.Errorf("extra stopwords = %v", cfg.Index.ExtraStopwords)
	}
	if cfg.Redis.CacheTTL != 90*time.Second {
		t.Errorf("cache TTL = %v", cfg.Redis.CacheTTL)
	}
	// Unset fields keep defaults.
	if cfg.Logging.Level != "info" {
		t.Errorf("logging level = %q", cfg.Logging.Level)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PN_SERVER_PORT", "7070")
	t.Setenv("PN_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("PN_INDEX_SNAPSHOT_PATH", "/tmp/override.pndx")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("server port = %d", cfg.Server.Port)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "k2:9092" {
		t.Errorf("brokers = %v", cfg.Kafka.Brokers)
	}
	if cfg.Index.SnapshotPath != "/tmp/override.pndx" {
		t.Errorf("snapshot path = %q", cfg.Index.SnapshotPath)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"empty snapshot path", func(c *Config) { c.Index.SnapshotPath = "" }},
		{"zero default limit", func(c *Config) { c.Search.DefaultLimit = 0 }},
		{"max below default", func(c *Config) { c.Search.MaxResults = 1; c.Search.DefaultLimit = 10 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate accepted invalid config")
			}
		})
	}
	if err := Defaults().Validate(); err != nil {
		t.Errorf("defaults are invalid: %v", err)
	}
}
