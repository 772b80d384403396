package mcp

import (
	"context"
	"encoding/json"
)

type ListHivesParams struct{}

type GetHiveParams struct {
	Name string `json:"name" description:"Hive name, e.g. rss or email"`
}

func (s *Server) handleListHives(ctx context.Context, _ *ListHivesParams) (json.RawMessage, error) {
	return s.gateway.ListHives(ctx)
}

func (s *Server) handleGetHive(ctx context.Context, params *GetHiveParams) (json.RawMessage, error) {
	if params.Name == "" {
		return nil, invalidArguments("name is required")
	}
	return s.gateway.GetHive(ctx, params.Name)
}
