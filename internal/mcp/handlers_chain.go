package mcp

import (
	"context"
	"encoding/json"

	"github.com/beehive-mcp/beehive-mcp/internal/shape"
)

type ListChainsParams struct{}

type ChainIDParams struct {
	ID string `json:"id" description:"Chain ID"`
}

type ChainEventParams struct {
	Bee     string          `json:"bee" description:"ID of the bee emitting the event"`
	Name    string          `json:"name" description:"Event name"`
	Options json.RawMessage `json:"options,omitempty" description:"Event options, passed through as given"`
}

// UpdateChainEventParams is the event of update_chain. Fields left empty keep
// the chain's current event values.
type UpdateChainEventParams struct {
	Bee     string          `json:"bee,omitempty" description:"ID of the bee emitting the event; omit to keep the current one"`
	Name    string          `json:"name,omitempty" description:"Event name; omit to keep the current one"`
	Options json.RawMessage `json:"options,omitempty" description:"Event options, passed through as given"`
}

type ChainActionParams struct {
	Bee     string          `json:"bee" description:"ID of the bee performing the action"`
	Name    string          `json:"name" description:"Action name"`
	Options json.RawMessage `json:"options,omitempty" description:"Action options: an object of name to value, or an array of {Name, Type, Value}"`
}

type CreateChainParams struct {
	Name        string              `json:"name" description:"Chain name"`
	Description string              `json:"description,omitempty" description:"Human-readable description"`
	Event       ChainEventParams    `json:"event" description:"Event that triggers the chain"`
	Actions     []ChainActionParams `json:"actions" description:"Actions to run, in order"`
	Filters     []json.RawMessage   `json:"filters,omitempty" description:"Filters, passed through as given"`
}

type UpdateChainParams struct {
	ID          string                  `json:"id" description:"Chain ID"`
	Name        string                  `json:"name,omitempty" description:"New name"`
	Description string                  `json:"description,omitempty" description:"New description"`
	Event       *UpdateChainEventParams `json:"event,omitempty" description:"Replacement event"`
	Actions     []ChainActionParams     `json:"actions,omitempty" description:"Replacement actions; omit to keep the current ones"`
	Filters     []json.RawMessage       `json:"filters,omitempty" description:"Replacement filters"`
}

func (s *Server) handleListChains(ctx context.Context, _ *ListChainsParams) (json.RawMessage, error) {
	return s.gateway.ListChains(ctx)
}

func (s *Server) handleGetChain(ctx context.Context, params *ChainIDParams) (json.RawMessage, error) {
	if params.ID == "" {
		return nil, invalidArguments("id is required")
	}
	return s.gateway.GetChain(ctx, params.ID)
}

func (s *Server) handleCreateChain(ctx context.Context, params *CreateChainParams) (json.RawMessage, error) {
	if params.Name == "" {
		return nil, invalidArguments("name is required")
	}
	if params.Event.Bee == "" || params.Event.Name == "" {
		return nil, invalidArguments("event.bee and event.name are required")
	}

	req := shape.ChainRequest{
		Name:        params.Name,
		Description: params.Description,
		Event:       eventRequest(&params.Event),
		Actions:     actionRequests(params.Actions),
		Filters:     params.Filters,
	}
	chain, err := shape.BuildChain(ctx, s.gateway, req, nil)
	if err != nil {
		return nil, err
	}
	return s.gateway.CreateChain(ctx, chain)
}

func (s *Server) handleUpdateChain(ctx context.Context, params *UpdateChainParams) (json.RawMessage, error) {
	if params.ID == "" {
		return nil, invalidArguments("id is required")
	}

	current, err := s.gateway.LookupChain(ctx, params.ID)
	if err != nil {
		return nil, err
	}
	if e := params.Event; e != nil && current.Event == nil && (e.Bee == "" || e.Name == "") {
		return nil, invalidArguments("chain %s has no event; event.bee and event.name are required", params.ID)
	}

	req := shape.ChainRequest{
		Name:        params.Name,
		Description: params.Description,
		Event:       updateEventRequest(params.Event),
		Actions:     actionRequests(params.Actions),
		Filters:     params.Filters,
	}
	chain, err := shape.BuildChain(ctx, s.gateway, req, current)
	if err != nil {
		return nil, err
	}
	return s.gateway.UpdateChain(ctx, params.ID, chain)
}

func (s *Server) handleDeleteChain(ctx context.Context, params *ChainIDParams) (json.RawMessage, error) {
	if params.ID == "" {
		return nil, invalidArguments("id is required")
	}
	return s.gateway.DeleteChain(ctx, params.ID)
}

func eventRequest(p *ChainEventParams) *shape.EventRequest {
	if p == nil {
		return nil
	}
	return &shape.EventRequest{Bee: p.Bee, Name: p.Name, Options: p.Options}
}

func updateEventRequest(p *UpdateChainEventParams) *shape.EventRequest {
	if p == nil {
		return nil
	}
	return &shape.EventRequest{Bee: p.Bee, Name: p.Name, Options: p.Options}
}

func actionRequests(in []ChainActionParams) []shape.ActionRequest {
	if len(in) == 0 {
		return nil
	}
	out := make([]shape.ActionRequest, len(in))
	for i, a := range in {
		out[i] = shape.ActionRequest{Bee: a.Bee, Name: a.Name, Options: a.Options}
	}
	return out
}
