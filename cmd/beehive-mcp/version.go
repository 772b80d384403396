package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/beehive-mcp/beehive-mcp/internal/mcp"
)

var (
	// GitCommit is the git commit hash, set at build time.
	GitCommit = "dev"
	// BuildDate is the build date, set at build time.
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("beehive-mcp %s\n", mcp.Version)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		fmt.Printf("  Build date: %s\n", BuildDate)
		fmt.Printf("  Go version: %s\n", runtime.Version())
		fmt.Printf("  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.Version = mcp.Version
}
