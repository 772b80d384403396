package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/beehive-mcp/beehive-mcp/internal/audit"
	"github.com/beehive-mcp/beehive-mcp/internal/beehive"
	"github.com/beehive-mcp/beehive-mcp/internal/config"
	"github.com/beehive-mcp/beehive-mcp/internal/logger"
	"github.com/beehive-mcp/beehive-mcp/internal/mcp"
)

var (
	configPath string
	envFile    string
)

var rootCmd = &cobra.Command{
	Use:   "beehive-mcp",
	Short: "MCP server for the Beehive automation engine",
	Long: `beehive-mcp lets MCP clients list, inspect, create, update, delete and trigger
Beehive hives, bees, chains and actions. Without a subcommand it serves MCP on stdio.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (JSONC or YAML)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file (default .env)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(callCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(versionCmd)
}

// runtimeEnv is everything a command needs once configuration is loaded.
type runtimeEnv struct {
	cfg    *config.UnifiedConfig
	client *beehive.Client
	server *mcp.Server
	store  *audit.Store
}

func (r *runtimeEnv) Close() {
	audit.Default().SetRecorder(nil)
	if r.store != nil {
		_ = r.store.Close()
	}
	_ = logger.CloseSlog()
	_ = logger.Close()
}

// setup loads configuration, initializes logging and audit, and builds the
// Beehive client and MCP server.
func setup() (*runtimeEnv, error) {
	cfg, err := config.LoadAll(config.LoadOptions{ConfigPath: configPath, EnvFile: envFile})
	if err != nil {
		return nil, err
	}

	if err := logger.Init(cfg.Logging.Dir); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := logger.InitSlog(cfg.Logging.Dir, cfg.Logging.JSON, cfg.Logging.Level); err != nil {
		return nil, fmt.Errorf("failed to initialize structured logger: %w", err)
	}

	env := &runtimeEnv{cfg: cfg}

	if cfg.Audit.Enabled {
		audit.Default().SetEnabled(true)
		if cfg.Audit.DBPath != "" {
			store, err := audit.NewStore(cfg.Audit.DBPath)
			if err != nil {
				env.Close()
				return nil, fmt.Errorf("failed to open audit store: %w", err)
			}
			env.store = store
			audit.Default().SetRecorder(store)
		}
	}

	env.client = beehive.NewClient(cfg.Beehive.URL, cfg.Beehive.APIKey, beehive.WithTimeout(cfg.UpstreamTimeout()))
	env.server = mcp.NewServer(env.client, &mcp.ServerConfig{
		Name:              cfg.Server.Name,
		Tokens:            cfg.Server.Tokens,
		RequestsPerSecond: cfg.Server.RateLimit.RequestsPerSecond,
		Burst:             cfg.Server.RateLimit.Burst,
		Redact:            []string{cfg.Beehive.APIKey},
	})
	return env, nil
}

func fail(format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	fmt.Fprintln(os.Stderr, "Error:", err)
	return err
}
