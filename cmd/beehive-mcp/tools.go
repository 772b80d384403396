package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/beehive-mcp/beehive-mcp/internal/mcp"
)

var toolsJSON bool

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the available tools",
	RunE: func(cmd *cobra.Command, args []string) error {
		// The catalog does not depend on configuration.
		tools := mcp.NewServer(nil, nil).GetRegistry().GetAllTools()

		if toolsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(tools)
		}
		for _, t := range tools {
			summary, _, _ := strings.Cut(t.Description, "\n")
			fmt.Printf("%-18s %s\n", t.Name, summary)
		}
		return nil
	},
}

func init() {
	toolsCmd.Flags().BoolVar(&toolsJSON, "json", false, "print names, descriptions and input schemas as JSON")
}
