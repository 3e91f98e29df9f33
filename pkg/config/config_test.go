package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadWithoutEnvFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() without .env returned error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default server port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Booking.NumberPrefix != "CHL" {
		t.Errorf("expected default booking prefix CHL, got %q", cfg.Booking.NumberPrefix)
	}
}

func TestLoadEnvVarsOnly(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DATABASE_HOST", "db.internal")
	t.Setenv("BOOKING_NUMBER_PREFIX", "ALP")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected server port 9090 from env, got %d", cfg.Server.Port)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("expected database host db.internal from env, got %q", cfg.Database.Host)
	}
	if cfg.Booking.NumberPrefix != "ALP" {
		t.Errorf("expected booking prefix ALP from env, got %q", cfg.Booking.NumberPrefix)
	}
}

func TestLoadEnvVarsWinOverFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("SERVER_PORT=7070\nAPP_NAME=from-file\n"), 0o644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}
	t.Chdir(dir)
	t.Setenv("SERVER_PORT", "6060")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Server.Port != 6060 {
		t.Errorf("expected env var to win over file, got port %d", cfg.Server.Port)
	}
	if cfg.App.Name != "from-file" {
		t.Errorf("expected app name from file, got %q", cfg.App.Name)
	}
}
