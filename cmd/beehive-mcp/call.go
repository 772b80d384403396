package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/beehive-mcp/beehive-mcp/internal/logger"
)

var callCmd = &cobra.Command{
	Use:   "call <tool> [json-arguments|-]",
	Short: "Run one tool and print its result",
	Long: `Run one tool against the configured Beehive and print the result text.
Arguments are a JSON object given inline, or read from stdin when "-" is passed.`,
	Example: `  beehive-mcp call list_hives
  beehive-mcp call create_bee '{"name":"Feed","hive":"rss","options":{"url":"http://e/f.xml"}}'
  echo '{"id":"b1"}' | beehive-mcp call get_bee -`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runCall,
}

func runCall(cmd *cobra.Command, args []string) error {
	var raw json.RawMessage
	if len(args) == 2 {
		if args[1] == "-" {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fail("reading arguments: %v", err)
			}
			raw = data
		} else {
			raw = json.RawMessage(args[1])
		}
	}

	env, err := setup()
	if err != nil {
		return fail("%v", err)
	}
	defer env.Close()

	ctx := logger.WithRequestID(context.Background(), uuid.NewString())
	res := env.server.GetRegistry().Dispatch(ctx, args[0], raw)
	if res.IsError() {
		fmt.Fprintln(os.Stderr, res.Text())
		return fmt.Errorf("%s: %s", res.Err.Kind, res.Err.Message)
	}
	fmt.Println(res.Text())
	return nil
}
