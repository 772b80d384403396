package mcp

import (
	"context"
	"encoding/json"

	"github.com/beehive-mcp/beehive-mcp/internal/logger"
	"github.com/beehive-mcp/beehive-mcp/internal/shape"
)

type ListBeesParams struct{}

type BeeIDParams struct {
	ID string `json:"id" description:"Bee ID"`
}

type CreateBeeParams struct {
	Name        string         `json:"name" description:"Name for the new bee"`
	Hive        string         `json:"hive" description:"Hive (bee type) to instantiate"`
	Description string         `json:"description,omitempty" description:"Human-readable description"`
	Options     map[string]any `json:"options,omitempty" description:"Option values keyed by option name; unknown names are ignored"`
}

type UpdateBeeParams struct {
	ID          string         `json:"id" description:"Bee ID"`
	Name        string         `json:"name,omitempty" description:"New name"`
	Description string         `json:"description,omitempty" description:"New description; omit or leave empty to keep the current one"`
	Active      *bool          `json:"active,omitempty" description:"Enable or disable the bee"`
	Options     map[string]any `json:"options,omitempty" description:"Option values to change; others keep their current value"`
}

func (s *Server) handleListBees(ctx context.Context, _ *ListBeesParams) (json.RawMessage, error) {
	return s.gateway.ListBees(ctx)
}

func (s *Server) handleGetBee(ctx context.Context, params *BeeIDParams) (json.RawMessage, error) {
	if params.ID == "" {
		return nil, invalidArguments("id is required")
	}
	return s.gateway.GetBee(ctx, params.ID)
}

func (s *Server) handleCreateBee(ctx context.Context, params *CreateBeeParams) (json.RawMessage, error) {
	if params.Name == "" || params.Hive == "" {
		return nil, invalidArguments("name and hive are required")
	}

	hive, err := s.gateway.LookupHive(ctx, params.Hive)
	if err != nil {
		return nil, err
	}

	active := true
	bee, dropped := shape.ToRemoteBee(shape.BeeRequest{
		Name:        params.Name,
		Namespace:   params.Hive,
		Description: params.Description,
		Active:      &active,
		Options:     params.Options,
	}, hive.Options, nil)
	warnDropped(ctx, params.Hive, dropped)

	return s.gateway.CreateBee(ctx, bee)
}

func (s *Server) handleUpdateBee(ctx context.Context, params *UpdateBeeParams) (json.RawMessage, error) {
	if params.ID == "" {
		return nil, invalidArguments("id is required")
	}

	current, err := s.gateway.LookupBee(ctx, params.ID)
	if err != nil {
		return nil, err
	}
	hive, err := s.gateway.LookupHive(ctx, current.Namespace)
	if err != nil {
		return nil, err
	}

	bee, dropped := shape.ToRemoteBee(shape.BeeRequest{
		Name:        params.Name,
		Description: params.Description,
		Active:      params.Active,
		Options:     params.Options,
	}, hive.Options, current)
	warnDropped(ctx, current.Namespace, dropped)

	return s.gateway.UpdateBee(ctx, params.ID, bee)
}

func (s *Server) handleDeleteBee(ctx context.Context, params *BeeIDParams) (json.RawMessage, error) {
	if params.ID == "" {
		return nil, invalidArguments("id is required")
	}
	return s.gateway.DeleteBee(ctx, params.ID)
}

func warnDropped(ctx context.Context, hive string, dropped []string) {
	if len(dropped) > 0 {
		logger.WarnContext(ctx, "ignoring options unknown to hive", "hive", hive, "options", dropped)
	}
}
