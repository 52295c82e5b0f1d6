package database

import (
	"path/filepath"
	"testing"

	"vidshare/internal/config"
	"vidshare/internal/model"
)

func TestInitSQLiteAndMigrate(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Driver:       "sqlite",
		SQLitePath:   filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}
	if err := Init(cfg); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { _ = Close() })

	if err := AutoMigrate(model.All()...); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	for _, table := range []string{"users", "videos", "comments", "likes", "subscriptions"} {
		if !Get().Migrator().HasTable(table) {
			t.Errorf("table %s was not created", table)
		}
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(&config.DatabaseConfig{Driver: "mysql"}); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}
