package config

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables understood by LoadAll. Names match the ones the
// Beehive MCP adapter has always read.
const (
	EnvBeehiveURL    = "BEEHIVE_URL"
	EnvBeehiveAPIKey = "BEEHIVE_API_KEY"
	EnvServerName    = "MCP_SERVER_NAME"
	EnvPort          = "PORT"
	EnvAddr          = "BEEHIVE_MCP_ADDR"
	EnvTokens        = "BEEHIVE_MCP_TOKENS"
	EnvLogDir        = "BEEHIVE_MCP_LOG_DIR"
	EnvLogJSON       = "BEEHIVE_MCP_LOG_JSON"
	EnvLogLevel      = "BEEHIVE_MCP_LOG_LEVEL"
	EnvAuditDB       = "BEEHIVE_MCP_AUDIT_DB"
)

// LoadOptions controls where LoadAll looks.
type LoadOptions struct {
	ConfigPath string // explicit config file; empty searches the default locations
	EnvFile    string // dotenv file; empty means ".env"
}

// LoadAll resolves configuration with precedence defaults < file < dotenv <
// environment. A missing config file or dotenv file is not an error.
func LoadAll(opts LoadOptions) (*UnifiedConfig, error) {
	path, err := FindConfigPath(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if path != "" {
		if cfg, err = LoadUnifiedConfig(path); err != nil {
			return nil, err
		}
	}

	if err := loadDotEnv(opts.EnvFile); err != nil {
		return nil, err
	}
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadDotEnv populates unset variables from a dotenv file. Variables already
// present in the environment win.
func loadDotEnv(envFile string) error {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", envFile, err)
	}
	return nil
}

func applyEnv(cfg *UnifiedConfig) {
	if v, ok := os.LookupEnv(EnvBeehiveURL); ok && v != "" {
		cfg.Beehive.URL = v
	}
	if v, ok := os.LookupEnv(EnvBeehiveAPIKey); ok {
		cfg.Beehive.APIKey = v
	}
	if v, ok := os.LookupEnv(EnvServerName); ok && v != "" {
		cfg.Server.Name = v
	}
	if v, ok := os.LookupEnv(EnvPort); ok && v != "" {
		cfg.Server.Address = ":" + strings.TrimPrefix(v, ":")
	}
	if v, ok := os.LookupEnv(EnvAddr); ok && v != "" {
		cfg.Server.Address = v
	}
	if v, ok := os.LookupEnv(EnvTokens); ok {
		cfg.Server.Tokens = splitList(v)
	}
	if v, ok := os.LookupEnv(EnvLogDir); ok {
		cfg.Logging.Dir = v
	}
	if v, ok := os.LookupEnv(EnvLogJSON); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Logging.JSON = b
		}
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		cfg.Logging.Level = v
	}
	if v, ok := os.LookupEnv(EnvAuditDB); ok && v != "" {
		cfg.Audit.Enabled = true
		cfg.Audit.DBPath = v
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
