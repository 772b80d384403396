package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/beehive-mcp/beehive-mcp/internal/logger"
)

var serveHTTP bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve MCP on stdio, or over HTTP with --http",
	Long: `Serve the Beehive tools.

By default MCP is spoken over stdin/stdout for clients that launch the server as a
subprocess. With --http the server listens on server.address and exposes /mcp
(streamable MCP), GET /tools, POST /tools/{name}, /metadata, /health, /ready and /metrics.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveHTTP, "http", false, "serve over HTTP instead of stdio")
}

func runServe(cmd *cobra.Command, args []string) error {
	env, err := setup()
	if err != nil {
		return fail("%v", err)
	}
	defer env.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("🐝 Beehive MCP %s", cmd.Root().Version)
	logger.Info("🔗 Connected to Beehive at: %s", env.client.BaseURL())
	if env.cfg.Beehive.APIKey == "" {
		logger.Info("   No BEEHIVE_API_KEY set, requests are sent without authentication")
	}
	if env.store != nil {
		logger.Info("📝 Audit database: %s", env.cfg.Audit.DBPath)
	}

	if !serveHTTP {
		if err := env.server.RunStdio(ctx); err != nil && ctx.Err() == nil {
			return fail("stdio server: %v", err)
		}
		return nil
	}

	if len(env.cfg.Server.Tokens) == 0 {
		logger.Info("⚠️  No bearer tokens configured, the HTTP surface is unauthenticated")
	}
	if err := env.server.Serve(ctx, env.cfg.Server.Address); err != nil {
		return fail("http server: %v", err)
	}
	logger.Info("👋 Shut down cleanly")
	return nil
}
