// Command beehive-mcp exposes a Beehive automation server's REST API as MCP
// tools, over stdio or HTTP.
package main

import (
	"os"
)

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
