package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "session:\n  secret: s3cret\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.App.Port != 8000 {
		t.Errorf("app.port = %d, want 8000", cfg.App.Port)
	}
	if cfg.Storage.Driver != "local" || cfg.Storage.Root != "Uploads" {
		t.Errorf("storage defaults = %+v", cfg.Storage)
	}
	if got := cfg.Storage.MaxVideoBytes(); got != 100<<20 {
		t.Errorf("MaxVideoBytes = %d, want %d", got, 100<<20)
	}
	if got := cfg.Storage.MaxThumbnailBytes(); got != 5<<20 {
		t.Errorf("MaxThumbnailBytes = %d, want %d", got, 5<<20)
	}
	if got := cfg.Session.ExpireDuration(); got != 24*time.Hour {
		t.Errorf("ExpireDuration = %v, want 24h", got)
	}
	if cfg.Redis.Enabled() || cfg.Kafka.Enabled() {
		t.Errorf("redis/kafka should be disabled without hosts")
	}
	if cfg.Kafka.VideoEventsTopic() != "video-events" {
		t.Errorf("VideoEventsTopic = %q", cfg.Kafka.VideoEventsTopic())
	}
	if cfg.Elasticsearch.VideosIndex() != "videos" {
		t.Errorf("VideosIndex = %q", cfg.Elasticsearch.VideosIndex())
	}
	if Get() != cfg {
		t.Errorf("Get should return the loaded config")
	}
}

func TestSearchIndexRequiresKafka(t *testing.T) {
	cfg := &Config{Elasticsearch: ElasticsearchConfig{Hosts: []string{"http://localhost:9200"}}}
	if cfg.SearchIndexEnabled() {
		t.Error("search index enabled without kafka")
	}
	cfg.Kafka.Brokers = []string{"localhost:9092"}
	if !cfg.SearchIndexEnabled() {
		t.Error("search index disabled with elasticsearch and kafka")
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "session:\n  secret: s3cret\ndatabase:\n  password: fromfile\n")
	t.Setenv("DATABASE_PASSWORD", "fromenv")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Password != "fromenv" {
		t.Errorf("database.password = %q, want fromenv", cfg.Database.Password)
	}
}

func TestLoadRequiresSessionSecret(t *testing.T) {
	path := writeConfig(t, "app:\n  name: test\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error when session.secret is empty")
	}
}
