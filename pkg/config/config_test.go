package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestApplyDefaultsFillsRequiredFields(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.EPP.TLSCertFile = "testdata/cert.pem"
	cfg.EPP.TLSKeyFile = "testdata/key.pem"
	if err := Validate(cfg); err != nil {
		t.Fatalf("expected defaulted config to validate, got: %v", err)
	}
	if cfg.EPP.Port != 700 {
		t.Fatalf("expected default EPP port 700, got %d", cfg.EPP.Port)
	}
	if cfg.Store.Driver != "memory" {
		t.Fatalf("expected default store driver memory, got %s", cfg.Store.Driver)
	}
}

func TestValidateRejectsPostgresWithoutConnectionDetails(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.EPP.TLSCertFile = "testdata/cert.pem"
	cfg.EPP.TLSKeyFile = "testdata/key.pem"
	cfg.Store.Driver = "postgres"
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected validation error for postgres driver with no host/database/user set")
	}
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.EPP.TLSCertFile = "testdata/cert.pem"
	cfg.EPP.TLSKeyFile = "testdata/key.pem"
	cfg.Logging.Level = "TRACE"
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected validation error for invalid log level")
	}
}

func TestLoadParsesHumanReadableDurations(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
epp:
  tls_cert_file: testdata/cert.pem
  tls_key_file: testdata/key.pem
  idle_timeout: 90s
transfer:
  sweep_interval: 5m
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.EPP.IdleTimeout != 90*time.Second {
		t.Fatalf("expected idle_timeout 90s, got %v", cfg.EPP.IdleTimeout)
	}
	if cfg.Transfer.SweepInterval != 5*time.Minute {
		t.Fatalf("expected sweep_interval 5m, got %v", cfg.Transfer.SweepInterval)
	}
}
