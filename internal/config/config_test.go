package config

import (
	"path/filepath"
	"testing"
)

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	s, err := LoadFrom("/nonexistent/path/settings.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.ConcurrencyCap != DefaultConcurrencyCap {
		t.Errorf("expected default concurrency cap, got %d", s.ConcurrencyCap)
	}
	if s.ConfidenceFloor != DefaultConfidenceFloor {
		t.Errorf("expected default confidence floor, got %v", s.ConfidenceFloor)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	s := &Settings{InventoryPath: "inventory.yaml", SSHUser: "admin", RedisAddr: "10.0.0.1:6379", ConfidenceFloor: 0.8}
	if err := s.SaveTo(path); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if loaded.InventoryPath != "inventory.yaml" || loaded.SSHUser != "admin" || loaded.RedisAddr != "10.0.0.1:6379" {
		t.Fatalf("unexpected loaded settings: %+v", loaded)
	}
	if loaded.ConfidenceFloor != 0.8 {
		t.Errorf("expected preserved confidence floor, got %v", loaded.ConfidenceFloor)
	}
}
