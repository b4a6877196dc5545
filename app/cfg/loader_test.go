package cfg

import (
	"testing"
	"time"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}

	original := Version
	defer func() { Version = original }()

	Version = ""
	if GetVersion() != "unknown" {
		t.Errorf("Expected 'unknown' for empty version, got: %s", GetVersion())
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load([]string{})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.DBPath != "./feedio.db" {
		t.Errorf("Expected db path './feedio.db', got: %s", cfg.DBPath)
	}
	if cfg.SourcesDir != "./sources" {
		t.Errorf("Expected sources dir './sources', got: %s", cfg.SourcesDir)
	}
	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got: %s", cfg.Port)
	}
	if cfg.WorkerCount != 5 {
		t.Errorf("Expected worker count 5, got: %d", cfg.WorkerCount)
	}
	if cfg.FetchTimeout != 30*time.Second {
		t.Errorf("Expected fetch timeout 30s, got: %v", cfg.FetchTimeout)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Errorf("Expected cache TTL 5m, got: %v", cfg.CacheTTL)
	}
	if Get() != cfg {
		t.Error("Expected Get to return the loaded configuration")
	}
}

func TestLoadFlags(t *testing.T) {
	cfg, err := load([]string{
		"--db-path", "/tmp/test.db",
		"--port", "9090",
		"--worker-count", "2",
		"--fetch-timeout", "5s",
		"--api-key", "secret",
		"--debug",
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.DBPath != "/tmp/test.db" {
		t.Errorf("Expected db path '/tmp/test.db', got: %s", cfg.DBPath)
	}
	if cfg.Port != "9090" {
		t.Errorf("Expected port '9090', got: %s", cfg.Port)
	}
	if cfg.WorkerCount != 2 {
		t.Errorf("Expected worker count 2, got: %d", cfg.WorkerCount)
	}
	if cfg.FetchTimeout != 5*time.Second {
		t.Errorf("Expected fetch timeout 5s, got: %v", cfg.FetchTimeout)
	}
	if cfg.APIAccessKey != "secret" {
		t.Errorf("Expected API key 'secret', got: %s", cfg.APIAccessKey)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
}

func TestLoadRejectsInvalidWorkerCount(t *testing.T) {
	if _, err := load([]string{"--worker-count", "0"}); err == nil {
		t.Error("Expected error for zero workers")
	}
}
