// Package shape converts between the flat configuration agents send and the
// nested, type-tagged structures the Beehive API expects.
package shape

import (
	"sort"

	"github.com/beehive-mcp/beehive-mcp/internal/beehive"
)

// Wildcard is the value sent for an option with no value and no default.
const Wildcard = "*"

// BeeRequest is the flat, agent-facing form of a Bee.
// Zero values mean "not given"; on update they keep the current value.
type BeeRequest struct {
	Name        string
	Namespace   string
	Description string
	Active      *bool
	Options     map[string]any
}

// ToRemoteBee builds the full remote Bee from a flat request. specs is the
// Hive's declared option list and fixes the output order. current is the
// Bee as it exists remotely, or nil when creating.
//
// Every spec yields exactly one option. The value comes from the request,
// then from current, then from the spec's default, then Wildcard. Request
// option keys with no matching spec are not sent; their names are returned
// sorted so the caller can report them.
func ToRemoteBee(req BeeRequest, specs []beehive.OptionSpec, current *beehive.Bee) (*beehive.Bee, []string) {
	bee := &beehive.Bee{
		Name:        req.Name,
		Namespace:   req.Namespace,
		Description: req.Description,
		Options:     make([]beehive.BeeOption, 0, len(specs)),
	}
	if req.Active != nil {
		bee.Active = *req.Active
	}

	if current != nil {
		bee.Namespace = current.Namespace
		if bee.Name == "" {
			bee.Name = current.Name
		}
		if bee.Description == "" {
			bee.Description = current.Description
		}
		if req.Active == nil {
			bee.Active = current.Active
		}
	}

	known := make(map[string]struct{}, len(specs))
	for _, spec := range specs {
		known[spec.Name] = struct{}{}
		bee.Options = append(bee.Options, beehive.BeeOption{
			Name:        spec.Name,
			Description: spec.Description,
			Type:        spec.Type,
			Default:     spec.Default,
			Mandatory:   spec.Mandatory,
			Value:       optionValue(spec, req.Options, current),
		})
	}

	var dropped []string
	for name := range req.Options {
		if _, ok := known[name]; !ok {
			dropped = append(dropped, name)
		}
	}
	sort.Strings(dropped)

	return bee, dropped
}

func optionValue(spec beehive.OptionSpec, given map[string]any, current *beehive.Bee) any {
	if v, ok := given[spec.Name]; ok {
		return v
	}
	if current != nil {
		if opt, ok := current.Option(spec.Name); ok {
			return opt.Value
		}
	}
	if spec.HasDefault() {
		return spec.Default
	}
	return Wildcard
}
