package mcp

// registerAllTools registers all MCP tools with the registry
func (s *Server) registerAllTools(r *Registry) {
	s.registerHiveTools(r)
	s.registerBeeTools(r)
	s.registerChainTools(r)
	s.registerActionTools(r)
}

func (s *Server) registerHiveTools(r *Registry) {
	Register(r, ToolDef{
		Name:        "list_hives",
		Description: "List all Hives (plugin types) available on the Beehive instance, with their options, events and actions.",
	}, s.handleListHives)

	Register(r, ToolDef{
		Name:        "get_hive_details",
		Description: "Get one Hive by name. Use it to see which options a Bee of that Hive accepts before create_bee.",
	}, s.handleGetHive)
}

func (s *Server) registerBeeTools(r *Registry) {
	Register(r, ToolDef{
		Name:        "list_bees",
		Description: "List all configured Bees.",
	}, s.handleListBees)

	Register(r, ToolDef{
		Name:        "get_bee",
		Description: "Get one Bee by ID.",
	}, s.handleGetBee)

	Register(r, ToolDef{
		Name: "create_bee",
		Description: `Create a Bee from a Hive.

options is a flat object of option name to value. Every option the Hive declares is sent:
missing ones use the Hive's default, or "*" when there is none. Names the Hive does not
declare are ignored. New Bees are created active.`,
	}, s.handleCreateBee)

	Register(r, ToolDef{
		Name: "update_bee",
		Description: `Update a Bee. The current Bee is fetched first; anything not given keeps its
current value, including options not mentioned in options.`,
	}, s.handleUpdateBee)

	Register(r, ToolDef{
		Name:        "delete_bee",
		Description: "Delete a Bee by ID.",
	}, s.handleDeleteBee)
}

func (s *Server) registerChainTools(r *Registry) {
	Register(r, ToolDef{
		Name:        "list_chains",
		Description: "List all Chains (event to action rules).",
	}, s.handleListChains)

	Register(r, ToolDef{
		Name:        "get_chain",
		Description: "Get one Chain by ID.",
	}, s.handleGetChain)

	Register(r, ToolDef{
		Name: "create_chain",
		Description: `Create a Chain that runs actions when a Bee emits an event.

Each action is created on the Beehive first, in order, and the Chain references the
resulting action IDs. If any action fails the Chain is not created; actions already
created are reported in the error and are left in place.`,
	}, s.handleCreateChain)

	Register(r, ToolDef{
		Name: "update_chain",
		Description: `Update a Chain. The current Chain is fetched first; anything not given keeps its
current value. Passing actions replaces all actions with newly created ones.`,
	}, s.handleUpdateChain)

	Register(r, ToolDef{
		Name:        "delete_chain",
		Description: "Delete a Chain by ID.",
	}, s.handleDeleteChain)
}

func (s *Server) registerActionTools(r *Registry) {
	Register(r, ToolDef{
		Name:        "trigger_action",
		Description: "Run an action on a Bee immediately, outside of any Chain.",
	}, s.handleTriggerAction)

	Register(r, ToolDef{
		Name:        "get_logs",
		Description: "Get Beehive logs, optionally only those of one Bee.",
	}, s.handleGetLogs)
}
