// Package config loads and validates the static configuration for the
// registry daemon: listener addresses, TLS material, store connection
// settings and the auto-approval sweeper interval.
//
// Configuration sources, highest precedence first:
//  1. Environment variables (EPPD_*)
//  2. Configuration file (YAML)
//  3. Default values
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/qenex-ai/epp-registry-platform/pkg/store/postgres"
)

// Config is the top-level daemon configuration.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	EPP     EPPConfig     `mapstructure:"epp" yaml:"epp"`
	RDAP    RDAPConfig    `mapstructure:"rdap" yaml:"rdap"`
	WHOIS   WHOISConfig   `mapstructure:"whois" yaml:"whois"`
	Store   StoreConfig   `mapstructure:"store" yaml:"store"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
	Transfer TransferConfig `mapstructure:"transfer" yaml:"transfer"`

	// ServerID is embedded in every server-assigned repository object
	// identifier (ROID) as the trailing "-SERVERID" suffix.
	ServerID string `mapstructure:"server_id" yaml:"server_id" validate:"required"`

	// ShutdownTimeout bounds how long graceful shutdown waits for active
	// connections across all three listeners.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"required,gt=0"`
}

// LoggingConfig controls logging behavior, mirroring internal/logger.Config.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"required,oneof=text json"`
	Output string `mapstructure:"output" yaml:"output"`
}

// EPPConfig configures the TLS-terminated EPP listener (C1-C8's front door).
type EPPConfig struct {
	// Port is the TCP port to listen on. RFC 5734 recommends 700.
	Port int `mapstructure:"port" yaml:"port" validate:"min=0,max=65535"`

	// TLSCertFile/TLSKeyFile are the server's certificate and private key,
	// required: the protocol mandates TLS 1.2 or higher.
	TLSCertFile string `mapstructure:"tls_cert_file" yaml:"tls_cert_file" validate:"required"`
	TLSKeyFile  string `mapstructure:"tls_key_file" yaml:"tls_key_file" validate:"required"`

	// TLSClientCAFile, if set, enables mutual TLS by verifying client
	// certificates against this CA bundle. Optional: registrars may
	// authenticate with <login> credentials alone.
	TLSClientCAFile string `mapstructure:"tls_client_ca_file" yaml:"tls_client_ca_file"`

	// MaxConnections limits concurrent registrar sessions; 0 means unlimited.
	MaxConnections int `mapstructure:"max_connections" yaml:"max_connections" validate:"min=0"`

	// IdleTimeout closes a connection that sends no frame for this long.
	IdleTimeout time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout" validate:"min=0"`

	// HandshakeTimeout bounds the TLS handshake on accept.
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout" yaml:"handshake_timeout" validate:"min=0"`
}

// RDAPConfig configures the read-only RDAP JSON HTTP front end.
type RDAPConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Addr    string `mapstructure:"addr" yaml:"addr"`
}

// WHOISConfig configures the read-only plain-text WHOIS front end.
type WHOISConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Port    int  `mapstructure:"port" yaml:"port" validate:"min=0,max=65535"`
}

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	// Driver is "memory" or "postgres".
	Driver string `mapstructure:"driver" yaml:"driver" validate:"required,oneof=memory postgres"`

	// Postgres configures the postgres driver; ignored for the memory
	// driver. validate:"-" because its own Validate only runs when Driver
	// is "postgres"; diving into it unconditionally would reject the
	// all-memory default configuration.
	Postgres postgres.Config `mapstructure:"postgres" yaml:"postgres" validate:"-"`

	// SeedRegistrars provisions registrar credentials at startup for the
	// memory driver, where there is no administration path to create them
	// otherwise. Ignored by the postgres driver, which reads the
	// registrars table migrations create.
	SeedRegistrars []RegistrarSeed `mapstructure:"seed_registrars" yaml:"seed_registrars" validate:"dive"`
}

// RegistrarSeed is one registrar credential loaded into the memory store at
// startup.
type RegistrarSeed struct {
	ClID  string `mapstructure:"clid" yaml:"clid" validate:"required"`
	PW    string `mapstructure:"pw" yaml:"pw" validate:"required"`
	Name  string `mapstructure:"name" yaml:"name"`
	Email string `mapstructure:"email" yaml:"email"`
}

// MetricsConfig configures the Prometheus exposition endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Addr    string `mapstructure:"addr" yaml:"addr"`
}

// TransferConfig configures the pending-transfer auto-approval sweeper.
type TransferConfig struct {
	// AutoApproveDays is the RFC 5730 default five-day grace period after
	// which an unactioned transfer request auto-approves. The field is
	// defaulted and validated but not read by the sweeper, which always
	// uses handlers.AutoApproveDays (5 days).
	AutoApproveDays int `mapstructure:"auto_approve_days" yaml:"auto_approve_days" validate:"min=1"`

	// SweepInterval is how often the sweeper scans for elapsed transfers.
	SweepInterval time.Duration `mapstructure:"sweep_interval" yaml:"sweep_interval" validate:"required,gt=0"`
}

// Load reads the configuration file, with EPPD_* environment variables
// taking precedence over the keys it sets, applies defaults for anything
// left unset, and validates the result. When no file is found, nothing is
// unmarshalled, so environment variables are not read either and only
// defaults apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if found {
		if err := v.Unmarshal(cfg, viper.DecodeHook(durationDecodeHook())); err != nil {
			return nil, fmt.Errorf("config: unmarshal: %w", err)
		}
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}

// MustLoad loads configuration from configPath (or the default location if
// empty), checking existence first so the caller gets an actionable message
// pointing at `eppd init` instead of viper's bare "not found" error.
func MustLoad(configPath string) (*Config, error) {
	if configPath == "" {
		if !DefaultConfigExists() {
			return nil, fmt.Errorf("no configuration file found at default location: %s\n\n"+
				"initialize one first:\n  eppd init\n\n"+
				"or point at an existing file:\n  eppd <command> --config /path/to/config.yaml",
				GetDefaultConfigPath())
		}
		configPath = GetDefaultConfigPath()
	} else if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s\n\ncreate it with:\n  eppd init --config %s",
			configPath, configPath)
	}
	return Load(configPath)
}

// GetDefaultConfigPath returns the path Load searches when no --config flag
// is given.
func GetDefaultConfigPath() string {
	return filepath.Join(defaultConfigDir(), "config.yaml")
}

// DefaultConfigExists reports whether a config file already sits at
// GetDefaultConfigPath.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// SaveConfig writes cfg as YAML to path, creating parent directories as
// needed. Used by `eppd init`.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("config: write: %w", err)
	}
	return nil
}

// durationDecodeHook lets viper populate time.Duration fields from
// human-readable strings ("30s", "5m") as well as raw integers (nanoseconds),
// matching how YAML/env values are actually written by operators.
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(_ reflect.Type, to reflect.Type, data any) (any, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// setupViper wires environment variable overrides (EPPD_* with "." replaced
// by "_") and the YAML config file search path.
func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("EPPD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}
	v.AddConfigPath(defaultConfigDir())
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("config: read: %w", err)
	}
	return true, nil
}

func defaultConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "eppd")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "eppd")
}

// structValidator is a package-level validator instance; safe for concurrent use
// once constructed.
var structValidator = validator.New()

// Validate checks struct-tag constraints with go-playground/validator, then
// runs the handful of cross-field checks tags can't express.
func Validate(cfg *Config) error {
	if err := structValidator.Struct(cfg); err != nil {
		return err
	}
	if cfg.Store.Driver == "postgres" {
		if err := cfg.Store.Postgres.Validate(); err != nil {
			return fmt.Errorf("store.postgres: %w", err)
		}
	}
	if cfg.EPP.TLSClientCAFile != "" {
		if _, err := os.Stat(cfg.EPP.TLSClientCAFile); err != nil {
			return fmt.Errorf("epp.tls_client_ca_file: %w", err)
		}
	}
	return nil
}
