package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/beehive-mcp/beehive-mcp/internal/beehive"
)

// fakeGateway is an in-memory Beehive that records every call.
type fakeGateway struct {
	mu sync.Mutex

	hives  map[string]*beehive.Hive
	bees   map[string]*beehive.Bee
	chains map[string]*beehive.Chain

	calls         []string
	createdBees   []*beehive.Bee
	updatedBees   []*beehive.Bee
	actions       []*beehive.Action
	createdChains []*beehive.Chain
	updatedChains []*beehive.Chain
	triggered     map[string]any

	failActionAt int   // 1-based CreateAction call that fails; 0 never fails
	err          error // returned by every call when set
	panicOn      string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		hives:  map[string]*beehive.Hive{},
		bees:   map[string]*beehive.Bee{},
		chains: map[string]*beehive.Chain{},
	}
}

func (f *fakeGateway) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	if f.panicOn == call {
		panic("boom in " + call)
	}
	return f.err
}

func (f *fakeGateway) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeGateway) called(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == name {
			return true
		}
	}
	return false
}

func mustJSON(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}

func notFound(op, what string) error {
	return &beehive.APIError{Op: op, Phase: beehive.PhaseHTTP, Status: 404, Message: what + " not found"}
}

func (f *fakeGateway) ListHives(ctx context.Context) (json.RawMessage, error) {
	if err := f.record("ListHives"); err != nil {
		return nil, err
	}
	list := make([]*beehive.Hive, 0, len(f.hives))
	for _, h := range f.hives {
		list = append(list, h)
	}
	return mustJSON(map[string]any{"hives": list}), nil
}

func (f *fakeGateway) GetHive(ctx context.Context, name string) (json.RawMessage, error) {
	if err := f.record("GetHive"); err != nil {
		return nil, err
	}
	return mustJSON(map[string]any{"hives": []*beehive.Hive{f.hives[name]}}), nil
}

func (f *fakeGateway) LookupHive(ctx context.Context, name string) (*beehive.Hive, error) {
	if err := f.record("LookupHive"); err != nil {
		return nil, err
	}
	h, ok := f.hives[name]
	if !ok {
		return nil, notFound("fetching hive "+name, "hive")
	}
	return h, nil
}

func (f *fakeGateway) ListBees(ctx context.Context) (json.RawMessage, error) {
	if err := f.record("ListBees"); err != nil {
		return nil, err
	}
	return json.RawMessage(`{"bees":[]}`), nil
}

func (f *fakeGateway) GetBee(ctx context.Context, id string) (json.RawMessage, error) {
	if err := f.record("GetBee"); err != nil {
		return nil, err
	}
	return mustJSON(map[string]any{"bees": []*beehive.Bee{f.bees[id]}}), nil
}

func (f *fakeGateway) LookupBee(ctx context.Context, id string) (*beehive.Bee, error) {
	if err := f.record("LookupBee"); err != nil {
		return nil, err
	}
	b, ok := f.bees[id]
	if !ok {
		return nil, notFound("fetching bee "+id, "bee")
	}
	return b, nil
}

func (f *fakeGateway) CreateBee(ctx context.Context, bee *beehive.Bee) (json.RawMessage, error) {
	if err := f.record("CreateBee"); err != nil {
		return nil, err
	}
	f.createdBees = append(f.createdBees, bee)
	return mustJSON(map[string]any{"bee": bee}), nil
}

func (f *fakeGateway) UpdateBee(ctx context.Context, id string, bee *beehive.Bee) (json.RawMessage, error) {
	if err := f.record("UpdateBee"); err != nil {
		return nil, err
	}
	f.updatedBees = append(f.updatedBees, bee)
	return mustJSON(map[string]any{"bee": bee}), nil
}

func (f *fakeGateway) DeleteBee(ctx context.Context, id string) (json.RawMessage, error) {
	if err := f.record("DeleteBee"); err != nil {
		return nil, err
	}
	return json.RawMessage("null"), nil
}

func (f *fakeGateway) ListChains(ctx context.Context) (json.RawMessage, error) {
	if err := f.record("ListChains"); err != nil {
		return nil, err
	}
	return json.RawMessage(`{"chains":[]}`), nil
}

func (f *fakeGateway) GetChain(ctx context.Context, id string) (json.RawMessage, error) {
	if err := f.record("GetChain"); err != nil {
		return nil, err
	}
	return mustJSON(map[string]any{"chains": []*beehive.Chain{f.chains[id]}}), nil
}

func (f *fakeGateway) LookupChain(ctx context.Context, id string) (*beehive.Chain, error) {
	if err := f.record("LookupChain"); err != nil {
		return nil, err
	}
	c, ok := f.chains[id]
	if !ok {
		return nil, notFound("fetching chain "+id, "chain")
	}
	return c, nil
}

func (f *fakeGateway) CreateChain(ctx context.Context, chain *beehive.Chain) (json.RawMessage, error) {
	if err := f.record("CreateChain"); err != nil {
		return nil, err
	}
	f.createdChains = append(f.createdChains, chain)
	return mustJSON(map[string]any{"chain": chain}), nil
}

func (f *fakeGateway) UpdateChain(ctx context.Context, id string, chain *beehive.Chain) (json.RawMessage, error) {
	if err := f.record("UpdateChain"); err != nil {
		return nil, err
	}
	f.updatedChains = append(f.updatedChains, chain)
	return mustJSON(map[string]any{"chain": chain}), nil
}

func (f *fakeGateway) DeleteChain(ctx context.Context, id string) (json.RawMessage, error) {
	if err := f.record("DeleteChain"); err != nil {
		return nil, err
	}
	return json.RawMessage("null"), nil
}

func (f *fakeGateway) CreateAction(ctx context.Context, action *beehive.Action) (string, error) {
	if err := f.record("CreateAction"); err != nil {
		return "", err
	}
	f.actions = append(f.actions, action)
	if f.failActionAt == len(f.actions) {
		return "", &beehive.APIError{Op: "creating action", Phase: beehive.PhaseHTTP, Status: 500, Message: "action rejected"}
	}
	return fmt.Sprintf("action-%d", len(f.actions)), nil
}

func (f *fakeGateway) TriggerAction(ctx context.Context, beeID, actionName string, params map[string]any) (json.RawMessage, error) {
	if err := f.record("TriggerAction"); err != nil {
		return nil, err
	}
	f.triggered = params
	return json.RawMessage(`{"ok":true}`), nil
}

func (f *fakeGateway) GetLogs(ctx context.Context, beeID string) (json.RawMessage, error) {
	if err := f.record("GetLogs"); err != nil {
		return nil, err
	}
	return mustJSON(map[string]any{"logs": []any{}, "bee": beeID}), nil
}

var errNetwork = &beehive.APIError{Op: "listing hives", Phase: beehive.PhaseNetwork, Message: "connection refused"}
