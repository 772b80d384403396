package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// ConfigFileName is the default config file name.
const ConfigFileName = "beehive-mcp.jsonc"

// UnifiedConfig is the single configuration file format for beehive-mcp.
type UnifiedConfig struct {
	Beehive BeehiveSection `json:"beehive" yaml:"beehive"`
	Server  ServerSection  `json:"server" yaml:"server"`
	Logging LoggingSection `json:"logging" yaml:"logging"`
	Audit   AuditSection   `json:"audit" yaml:"audit"`
}

// BeehiveSection describes the upstream automation engine.
type BeehiveSection struct {
	URL     string `json:"url" yaml:"url"`
	APIKey  string `json:"api_key" yaml:"api_key"`
	Timeout string `json:"timeout" yaml:"timeout"` // Go duration, e.g. "30s"
}

// ServerSection contains the MCP server identity and HTTP surface settings.
type ServerSection struct {
	Name      string           `json:"name" yaml:"name"`
	Address   string           `json:"address" yaml:"address"`
	Tokens    []string         `json:"tokens" yaml:"tokens"` // bearer tokens for the HTTP surface; empty disables auth
	RateLimit RateLimitSection `json:"rate_limit" yaml:"rate_limit"`
}

// RateLimitSection configures per-client rate limiting on the HTTP surface.
type RateLimitSection struct {
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
	Burst             int     `json:"burst" yaml:"burst"`
}

// LoggingSection configures log output.
type LoggingSection struct {
	Dir   string `json:"dir" yaml:"dir"`
	JSON  bool   `json:"json" yaml:"json"`
	Level string `json:"level" yaml:"level"`
}

// AuditSection configures the tool-call audit trail.
type AuditSection struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	DBPath  string `json:"db_path" yaml:"db_path"` // sqlite file; setting it enables audit
}

// FindConfigPath returns the path to the config file using precedence:
// 1. explicit path (must exist)
// 2. ./beehive-mcp.jsonc
// 3. ./config/beehive-mcp.jsonc
// 4. ~/.beehive-mcp/beehive-mcp.jsonc
// An empty result with a nil error means no file was found and defaults apply.
func FindConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file %s: %w", explicit, err)
		}
		return absOrSelf(explicit), nil
	}

	candidates := []string{
		ConfigFileName,
		filepath.Join("config", ConfigFileName),
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(homeDir, ".beehive-mcp", ConfigFileName))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return absOrSelf(path), nil
		}
	}
	return "", nil
}

func absOrSelf(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

// LoadUnifiedConfig loads configuration from a JSONC or YAML file, chosen
// by extension.
func LoadUnifiedConfig(configPath string) (*UnifiedConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", configPath, err)
	}

	var cfg UnifiedConfig
	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", configPath, err)
		}
	default:
		if err := json.Unmarshal(jsonc.ToJSON(data), &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", configPath, err)
		}
	}

	applyUnifiedDefaults(&cfg)
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *UnifiedConfig {
	var cfg UnifiedConfig
	applyUnifiedDefaults(&cfg)
	return &cfg
}

func applyUnifiedDefaults(cfg *UnifiedConfig) {
	if cfg.Beehive.URL == "" {
		cfg.Beehive.URL = "http://localhost:8181"
	}
	if cfg.Beehive.Timeout == "" {
		cfg.Beehive.Timeout = "30s"
	}

	if cfg.Server.Name == "" {
		cfg.Server.Name = "beehive"
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":3000"
	}
	if cfg.Server.RateLimit.RequestsPerSecond == 0 {
		cfg.Server.RateLimit.RequestsPerSecond = 10
	}
	if cfg.Server.RateLimit.Burst == 0 {
		cfg.Server.RateLimit.Burst = 20
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	// A store nobody records into would only ever read back empty.
	if cfg.Audit.DBPath != "" {
		cfg.Audit.Enabled = true
	}
}

// UpstreamTimeout returns the parsed Beehive request timeout.
func (u *UnifiedConfig) UpstreamTimeout() time.Duration {
	d, err := time.ParseDuration(u.Beehive.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// Validate checks that required configuration is present and well formed.
func (u *UnifiedConfig) Validate() error {
	parsed, err := url.Parse(u.Beehive.URL)
	if err != nil {
		return fmt.Errorf("beehive.url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("beehive.url must be an absolute http(s) URL, got %q", u.Beehive.URL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("beehive.url is missing a host: %q", u.Beehive.URL)
	}

	if d, err := time.ParseDuration(u.Beehive.Timeout); err != nil {
		return fmt.Errorf("beehive.timeout: %w", err)
	} else if d < 0 {
		return fmt.Errorf("beehive.timeout must not be negative")
	}

	if u.Server.RateLimit.RequestsPerSecond < 0 || u.Server.RateLimit.Burst < 0 {
		return fmt.Errorf("server.rate_limit values must not be negative")
	}
	return nil
}
