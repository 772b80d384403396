package beehive

import "encoding/json"

// OptionSpec declares one configurable field of a Hive.
type OptionSpec struct {
	Name        string `json:"Name"`
	Description string `json:"Description"`
	Type        string `json:"Type"`
	Default     any    `json:"Default"`
	Mandatory   bool   `json:"Mandatory"`
}

// HasDefault reports whether the spec carries a usable default value.
// Beehive serializes "no default" as null or an empty string.
func (o OptionSpec) HasDefault() bool {
	if o.Default == nil {
		return false
	}
	if s, ok := o.Default.(string); ok && s == "" {
		return false
	}
	return true
}

// Hive is a plugin type available on the remote engine.
type Hive struct {
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Options     []OptionSpec `json:"options"`
}

// BeeOption is a concrete option binding as the remote engine stores it.
// Descriptor fields are echoed back from the Hive's OptionSpec on submit.
type BeeOption struct {
	Name        string `json:"Name"`
	Description string `json:"Description,omitempty"`
	Type        string `json:"Type"`
	Default     any    `json:"Default"`
	Mandatory   bool   `json:"Mandatory"`
	Value       any    `json:"Value"`
}

// Bee is a configured instance of a Hive.
type Bee struct {
	ID          string      `json:"id,omitempty"`
	Name        string      `json:"name"`
	Namespace   string      `json:"namespace"`
	Description string      `json:"description"`
	Active      bool        `json:"active"`
	Options     []BeeOption `json:"options"`
}

// Option returns the current binding for name, if any.
func (b *Bee) Option(name string) (BeeOption, bool) {
	for _, o := range b.Options {
		if o.Name == name {
			return o, true
		}
	}
	return BeeOption{}, false
}

// Event identifies the triggering event of a Chain. A nil Options is
// sent as null, never {}.
type Event struct {
	Bee     string          `json:"Bee"`
	Name    string          `json:"Name"`
	Options json.RawMessage `json:"Options"`
}

// Placeholder is one typed option of an Action.
type Placeholder struct {
	Name  string `json:"Name"`
	Type  string `json:"Type"`
	Value any    `json:"Value"`
}

// Action is an invocation directive submitted to POST /v1/actions.
// Options is kept raw so caller-shaped arrays pass through untouched.
type Action struct {
	ID      string          `json:"id,omitempty"`
	Bee     string          `json:"bee"`
	Name    string          `json:"name"`
	Options json.RawMessage `json:"options"`
}

// Chain binds one event to a list of persisted action IDs.
type Chain struct {
	ID          string            `json:"id,omitempty"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Event       *Event            `json:"event"`
	Actions     []string          `json:"actions"`
	Filters     []json.RawMessage `json:"filters"`
}

// Envelope keys the remote API wraps single resources in.
type beeEnvelope struct {
	Bee *Bee `json:"bee"`
}

type chainEnvelope struct {
	Chain *Chain `json:"chain"`
}

type actionEnvelope struct {
	Action *Action `json:"action"`
}

// List responses; single-resource fetches return a one-element list.
type hiveList struct {
	Hives []Hive `json:"hives"`
}

type beeList struct {
	Bees []Bee `json:"bees"`
}

type chainList struct {
	Chains []Chain `json:"chains"`
}

type actionList struct {
	Actions []Action `json:"actions"`
}
