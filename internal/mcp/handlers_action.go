package mcp

import (
	"context"
	"encoding/json"
)

type TriggerActionParams struct {
	BeeID      string         `json:"beeId" description:"ID of the bee to run the action on"`
	ActionName string         `json:"actionName" description:"Action name, as declared by the bee's hive"`
	Options    map[string]any `json:"options,omitempty" description:"Action parameters"`
}

type GetLogsParams struct {
	BeeID string `json:"beeId,omitempty" description:"Only return logs for this bee"`
}

func (s *Server) handleTriggerAction(ctx context.Context, params *TriggerActionParams) (json.RawMessage, error) {
	if params.BeeID == "" || params.ActionName == "" {
		return nil, invalidArguments("beeId and actionName are required")
	}
	return s.gateway.TriggerAction(ctx, params.BeeID, params.ActionName, params.Options)
}

func (s *Server) handleGetLogs(ctx context.Context, params *GetLogsParams) (json.RawMessage, error) {
	return s.gateway.GetLogs(ctx, params.BeeID)
}
