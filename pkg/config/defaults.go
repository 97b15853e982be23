package config

import (
	"strings"
	"time"
)

// ApplyDefaults fills zero-valued fields with sensible defaults after a
// config file and environment variables have been layered in.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyEPPDefaults(&cfg.EPP)
	applyRDAPDefaults(&cfg.RDAP)
	applyWHOISDefaults(&cfg.WHOIS)
	applyStoreDefaults(&cfg.Store)
	applyMetricsDefaults(&cfg.Metrics)
	applyTransferDefaults(&cfg.Transfer)

	if cfg.ServerID == "" {
		cfg.ServerID = "EPP"
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)
	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyEPPDefaults sets the RFC 5734 standard port and the timeouts this
// profile recommends for a WAN-facing registrar front end.
func applyEPPDefaults(cfg *EPPConfig) {
	if cfg.Port == 0 {
		cfg.Port = 700
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 10 * time.Minute
	}
	if cfg.HandshakeTimeout == 0 {
		cfg.HandshakeTimeout = 30 * time.Second
	}
}

func applyRDAPDefaults(cfg *RDAPConfig) {
	if cfg.Addr == "" {
		cfg.Addr = ":8043"
	}
}

func applyWHOISDefaults(cfg *WHOISConfig) {
	if cfg.Port == 0 {
		cfg.Port = 43
	}
}

func applyStoreDefaults(cfg *StoreConfig) {
	if cfg.Driver == "" {
		cfg.Driver = "memory"
	}
	cfg.Postgres.ApplyDefaults()
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Addr == "" {
		cfg.Addr = ":9090"
	}
}

func applyTransferDefaults(cfg *TransferConfig) {
	if cfg.AutoApproveDays == 0 {
		cfg.AutoApproveDays = 5
	}
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = time.Hour
	}
}
