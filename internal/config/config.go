// ABOUTME: Configuration loading and parsing for wallet-gateway
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete wallet-gateway configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Wallet    WalletConfig    `yaml:"wallet"`
	Session   SessionConfig   `yaml:"session"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// TailscaleConfig holds Tailscale tsnet configuration
type TailscaleConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Hostname  string `yaml:"hostname"`
	AuthKey   string `yaml:"auth_key"`
	StateDir  string `yaml:"state_dir"`
	Ephemeral bool   `yaml:"ephemeral"`
}

// DatabaseConfig holds snapshot database configuration
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig holds scope token configuration
type AuthConfig struct {
	// ScopeSecret signs the per-tab scope tokens (HS256)
	ScopeSecret string `yaml:"scope_secret"`

	ScopeTTL time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	ScopeTTLRaw string `yaml:"scope_ttl"`
}

// WalletConfig holds opaque pass-through values for the external wallet
// provider. None of these carry semantics for the gateway itself.
type WalletConfig struct {
	PortalURL    string `yaml:"portal_url"`
	RPCURL       string `yaml:"rpc_url"`
	PaymasterURL string `yaml:"paymaster_url"`

	StubLatency time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	StubLatencyRaw string `yaml:"stub_latency"`
}

// SessionConfig holds session controller configuration
type SessionConfig struct {
	// Mirror enables the session snapshot mirror for refresh survival
	Mirror bool `yaml:"mirror"`

	// ClearOnLogout deletes the mirrored snapshot on explicit logout.
	// When false a logged-out scope stays restorable until its
	// snapshot expires.
	ClearOnLogout bool `yaml:"clear_on_logout"`

	ConnectTimeout time.Duration `yaml:"-"`
	SnapshotTTL    time.Duration `yaml:"-"`

	// Raw string values for YAML unmarshaling
	ConnectTimeoutRaw string `yaml:"connect_timeout"`
	SnapshotTTLRaw    string `yaml:"snapshot_ttl"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Defaults applied when fields are absent from the file
const (
	DefaultScopeTTL       = 12 * time.Hour
	DefaultConnectTimeout = 2 * time.Minute
	DefaultSnapshotTTL    = 24 * time.Hour
)

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	// Mirroring defaults on; the file can switch it off explicitly
	cfg := Config{
		Session: SessionConfig{Mirror: true},
	}
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Parse duration fields
	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	cfg.applyDefaults()

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	// Match ${VAR_NAME} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyDefaults fills in defaults for optional duration fields.
func (c *Config) applyDefaults() {
	if c.Auth.ScopeTTL == 0 {
		c.Auth.ScopeTTL = DefaultScopeTTL
	}
	if c.Session.ConnectTimeout == 0 {
		c.Session.ConnectTimeout = DefaultConnectTimeout
	}
	if c.Session.SnapshotTTL == 0 {
		c.Session.SnapshotTTL = DefaultSnapshotTTL
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	// Server address is required unless Tailscale is enabled
	if !c.Tailscale.Enabled && c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required (or enable tailscale)")
	}

	// Tailscale requires a hostname
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.Auth.ScopeSecret == "" {
		return fmt.Errorf("auth.scope_secret is required")
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Auth.ScopeTTLRaw != "" {
		cfg.Auth.ScopeTTL, err = time.ParseDuration(cfg.Auth.ScopeTTLRaw)
		if err != nil {
			return fmt.Errorf("parsing scope_ttl %q: %w", cfg.Auth.ScopeTTLRaw, err)
		}
	}

	if cfg.Wallet.StubLatencyRaw != "" {
		cfg.Wallet.StubLatency, err = time.ParseDuration(cfg.Wallet.StubLatencyRaw)
		if err != nil {
			return fmt.Errorf("parsing stub_latency %q: %w", cfg.Wallet.StubLatencyRaw, err)
		}
	}

	if cfg.Session.ConnectTimeoutRaw != "" {
		cfg.Session.ConnectTimeout, err = time.ParseDuration(cfg.Session.ConnectTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing connect_timeout %q: %w", cfg.Session.ConnectTimeoutRaw, err)
		}
	}

	if cfg.Session.SnapshotTTLRaw != "" {
		cfg.Session.SnapshotTTL, err = time.ParseDuration(cfg.Session.SnapshotTTLRaw)
		if err != nil {
			return fmt.Errorf("parsing snapshot_ttl %q: %w", cfg.Session.SnapshotTTLRaw, err)
		}
	}

	return nil
}
