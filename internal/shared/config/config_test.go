package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("TT_DB_HOST", "db.internal")

	path := writeConfig(t, `
# tracking service configuration
database:
  host: ${TT_DB_HOST:-localhost}
  port: 5432
  user: tracker
  password: ${TT_DB_PASSWORD:-secret}
  database: tutortrack

rabbitmq:
  host: localhost
  port: 5672
  user: guest
  password: guest

server:
  port: 3000

auth:
  jwt_secret: test-secret

tracking:
  arrival_radius_m: 150
  safety_radius_m: 2500
  idle_timeout_min: 15
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Database.Host != "db.internal" {
		t.Errorf("env expansion: got host %q, want db.internal", cfg.Database.Host)
	}
	if cfg.Database.Password != "secret" {
		t.Errorf("env default: got password %q, want secret", cfg.Database.Password)
	}
	if cfg.Database.Database != "tutortrack" {
		t.Errorf("got database %q", cfg.Database.Database)
	}
	if cfg.Auth.JWTSecret != "test-secret" {
		t.Errorf("got jwt_secret %q", cfg.Auth.JWTSecret)
	}
	if cfg.Tracking.SafetyRadiusM != 2500 {
		t.Errorf("got safety_radius_m %v, want 2500", cfg.Tracking.SafetyRadiusM)
	}
	if cfg.Tracking.IdleTimeoutMin != 15 {
		t.Errorf("got idle_timeout_min %d, want 15", cfg.Tracking.IdleTimeoutMin)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  host: localhost
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Tracking.ArrivalRadiusM != 150 {
		t.Errorf("default arrival radius: got %v, want 150", cfg.Tracking.ArrivalRadiusM)
	}
	if cfg.Tracking.SweepIntervalSec != 60 {
		t.Errorf("default sweep interval: got %d, want 60", cfg.Tracking.SweepIntervalSec)
	}
	if cfg.Tracking.MirrorBuffer != 1024 {
		t.Errorf("default mirror buffer: got %d, want 1024", cfg.Tracking.MirrorBuffer)
	}
	if cfg.Server.Port != "3000" {
		t.Errorf("default server port: got %q, want 3000", cfg.Server.Port)
	}
}

func TestLoadConfigIgnoresGarbageValues(t *testing.T) {
	path := writeConfig(t, `
tracking:
  arrival_radius_m: not-a-number
  idle_timeout_min: -3
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Tracking.ArrivalRadiusM != 150 {
		t.Errorf("unparsable radius should keep default, got %v", cfg.Tracking.ArrivalRadiusM)
	}
	if cfg.Tracking.IdleTimeoutMin != 10 {
		t.Errorf("negative timeout should keep default, got %d", cfg.Tracking.IdleTimeoutMin)
	}
}
