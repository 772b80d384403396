package mcp

import (
	"context"
	"encoding/json"

	"github.com/beehive-mcp/beehive-mcp/internal/beehive"
)

// Gateway is the subset of the Beehive client the tool handlers use.
// *beehive.Client implements it.
type Gateway interface {
	ListHives(ctx context.Context) (json.RawMessage, error)
	GetHive(ctx context.Context, name string) (json.RawMessage, error)
	LookupHive(ctx context.Context, name string) (*beehive.Hive, error)

	ListBees(ctx context.Context) (json.RawMessage, error)
	GetBee(ctx context.Context, id string) (json.RawMessage, error)
	LookupBee(ctx context.Context, id string) (*beehive.Bee, error)
	CreateBee(ctx context.Context, bee *beehive.Bee) (json.RawMessage, error)
	UpdateBee(ctx context.Context, id string, bee *beehive.Bee) (json.RawMessage, error)
	DeleteBee(ctx context.Context, id string) (json.RawMessage, error)

	ListChains(ctx context.Context) (json.RawMessage, error)
	GetChain(ctx context.Context, id string) (json.RawMessage, error)
	LookupChain(ctx context.Context, id string) (*beehive.Chain, error)
	CreateChain(ctx context.Context, chain *beehive.Chain) (json.RawMessage, error)
	UpdateChain(ctx context.Context, id string, chain *beehive.Chain) (json.RawMessage, error)
	DeleteChain(ctx context.Context, id string) (json.RawMessage, error)

	CreateAction(ctx context.Context, action *beehive.Action) (string, error)
	TriggerAction(ctx context.Context, beeID, actionName string, params map[string]any) (json.RawMessage, error)
	GetLogs(ctx context.Context, beeID string) (json.RawMessage, error)
}

var _ Gateway = (*beehive.Client)(nil)
