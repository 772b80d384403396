package mcp

import (
	"context"
	"testing"

	mcp_sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// connectSDK wires an SDK client to the server over in-memory transports.
func connectSDK(t *testing.T, s *Server) *mcp_sdk.ClientSession {
	t.Helper()
	ctx := context.Background()
	serverT, clientT := mcp_sdk.NewInMemoryTransports()

	ss, err := s.MCPServer().Connect(ctx, serverT, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	t.Cleanup(func() { _ = ss.Close() })

	client := mcp_sdk.NewClient(&mcp_sdk.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func resultText(t *testing.T, res *mcp_sdk.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("content = %d items, want 1", len(res.Content))
	}
	tc, ok := res.Content[0].(*mcp_sdk.TextContent)
	if !ok {
		t.Fatalf("content is %T, want *TextContent", res.Content[0])
	}
	return tc.Text
}

func TestSDK_UnknownToolIsToolResult(t *testing.T) {
	gw := newFakeGateway()
	cs := connectSDK(t, NewServer(gw, nil))

	res, err := cs.CallTool(context.Background(), &mcp_sdk.CallToolParams{Name: "nonexistent_tool"})
	if err != nil {
		t.Fatalf("CallTool() error = %v, want a tool result", err)
	}
	if !res.IsError {
		t.Error("IsError = false, want true")
	}
	if got, want := resultText(t, res), "Error: unknown tool: nonexistent_tool"; got != want {
		t.Errorf("text = %q, want %q", got, want)
	}
	if gw.callCount() != 0 {
		t.Errorf("gateway calls = %v, want none", gw.calls)
	}
}

func TestSDK_KnownToolsStillDispatch(t *testing.T) {
	gw := newFakeGateway()
	cs := connectSDK(t, NewServer(gw, nil))
	ctx := context.Background()

	res, err := cs.CallTool(ctx, &mcp_sdk.CallToolParams{Name: "list_bees"})
	if err != nil {
		t.Fatalf("list_bees: %v", err)
	}
	if res.IsError {
		t.Errorf("list_bees failed: %s", resultText(t, res))
	}
	if !gw.called("ListBees") {
		t.Error("ListBees not called")
	}

	res, err = cs.CallTool(ctx, &mcp_sdk.CallToolParams{
		Name:      "create_bee",
		Arguments: map[string]any{"name": "x"},
	})
	if err != nil {
		t.Fatalf("create_bee: %v", err)
	}
	if !res.IsError {
		t.Error("create_bee without hive should be an error result")
	}
}

func TestSDK_ListToolsMatchesRegistry(t *testing.T) {
	s := NewServer(newFakeGateway(), nil)
	cs := connectSDK(t, s)

	res, err := cs.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := len(res.Tools), len(s.GetRegistry().GetAllTools()); got != want {
		t.Errorf("tools = %d, want %d", got, want)
	}
}
