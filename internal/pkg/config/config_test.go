package config

import (
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" || cfg.Env != "development" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Session.IdleTimeout != 30*time.Minute {
		t.Fatalf("expected 30m idle timeout, got %v", cfg.Session.IdleTimeout)
	}
	if cfg.Session.Secret == "" {
		t.Fatalf("expected development secret to be filled in")
	}
	if cfg.Store.Driver != StoreMongo {
		t.Fatalf("expected mongo driver by default, got %q", cfg.Store.Driver)
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(envconfig.MapLookuper(map[string]string{
		"ENV":                  "production",
		"SESSION_SECRET":       "s3cret",
		"SESSION_IDLE_TIMEOUT": "5m",
		"STORE_DRIVER":         "memory",
		"REPORT_ARCHIVE_DIR":   "/tmp/reports",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.IsDevelopment() {
		t.Fatalf("expected production env")
	}
	if cfg.Session.IdleTimeout != 5*time.Minute {
		t.Fatalf("unexpected idle timeout %v", cfg.Session.IdleTimeout)
	}
	if cfg.Report.ArchiveDir != "/tmp/reports" {
		t.Fatalf("unexpected archive dir %q", cfg.Report.ArchiveDir)
	}
}

func TestLoadFrom_RequiresSecretOutsideDevelopment(t *testing.T) {
	_, err := LoadFrom(envconfig.MapLookuper(map[string]string{"ENV": "production"}))
	if err == nil {
		t.Fatalf("expected error without SESSION_SECRET")
	}
}

func TestLoadFrom_RejectsUnknownDriver(t *testing.T) {
	_, err := LoadFrom(envconfig.MapLookuper(map[string]string{"STORE_DRIVER": "postgres"}))
	if err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}
