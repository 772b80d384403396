package beehive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/beehive-mcp/beehive-mcp/internal/logger"
	"github.com/beehive-mcp/beehive-mcp/internal/metrics"
)

// DefaultBaseURL is where a local Beehive listens by default.
const DefaultBaseURL = "http://localhost:8181"

// Client talks to the Beehive REST API. Every method makes exactly one
// request and never retries; there is no caching between calls.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the transport timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient = &http.Client{Timeout: d}
	}
}

// NewClient creates a client for baseURL. apiKey is sent as a bearer token
// when non-empty.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Hives

func (c *Client) ListHives(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, "hives", "fetching hives", http.MethodGet, "/v1/hives", nil)
}

func (c *Client) GetHive(ctx context.Context, name string) (json.RawMessage, error) {
	return c.do(ctx, "hives", "fetching hive "+name, http.MethodGet, "/v1/hives/"+url.PathEscape(name), nil)
}

// LookupHive fetches a Hive and decodes its option specs.
func (c *Client) LookupHive(ctx context.Context, name string) (*Hive, error) {
	raw, err := c.GetHive(ctx, name)
	if err != nil {
		return nil, err
	}
	var list hiveList
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decoding hive %s: %w", name, err)
	}
	if len(list.Hives) == 0 {
		return nil, fmt.Errorf("hive %s not found in response", name)
	}
	return &list.Hives[0], nil
}

// Bees

func (c *Client) ListBees(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, "bees", "fetching bees", http.MethodGet, "/v1/bees", nil)
}

func (c *Client) GetBee(ctx context.Context, id string) (json.RawMessage, error) {
	return c.do(ctx, "bees", "fetching bee "+id, http.MethodGet, "/v1/bees/"+url.PathEscape(id), nil)
}

// LookupBee fetches the current remote representation of a Bee.
func (c *Client) LookupBee(ctx context.Context, id string) (*Bee, error) {
	raw, err := c.GetBee(ctx, id)
	if err != nil {
		return nil, err
	}
	var list beeList
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decoding bee %s: %w", id, err)
	}
	if len(list.Bees) == 0 {
		return nil, fmt.Errorf("bee %s not found in response", id)
	}
	return &list.Bees[0], nil
}

func (c *Client) CreateBee(ctx context.Context, bee *Bee) (json.RawMessage, error) {
	return c.do(ctx, "bees", "creating bee", http.MethodPost, "/v1/bees", beeEnvelope{Bee: bee})
}

func (c *Client) UpdateBee(ctx context.Context, id string, bee *Bee) (json.RawMessage, error) {
	return c.do(ctx, "bees", "updating bee "+id, http.MethodPut, "/v1/bees/"+url.PathEscape(id), beeEnvelope{Bee: bee})
}

func (c *Client) DeleteBee(ctx context.Context, id string) (json.RawMessage, error) {
	return c.do(ctx, "bees", "deleting bee "+id, http.MethodDelete, "/v1/bees/"+url.PathEscape(id), nil)
}

// Chains

func (c *Client) ListChains(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, "chains", "fetching chains", http.MethodGet, "/v1/chains", nil)
}

func (c *Client) GetChain(ctx context.Context, id string) (json.RawMessage, error) {
	return c.do(ctx, "chains", "fetching chain "+id, http.MethodGet, "/v1/chains/"+url.PathEscape(id), nil)
}

// LookupChain fetches the current remote representation of a Chain.
func (c *Client) LookupChain(ctx context.Context, id string) (*Chain, error) {
	raw, err := c.GetChain(ctx, id)
	if err != nil {
		return nil, err
	}
	var list chainList
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decoding chain %s: %w", id, err)
	}
	if len(list.Chains) == 0 {
		return nil, fmt.Errorf("chain %s not found in response", id)
	}
	return &list.Chains[0], nil
}

func (c *Client) CreateChain(ctx context.Context, chain *Chain) (json.RawMessage, error) {
	return c.do(ctx, "chains", "creating chain", http.MethodPost, "/v1/chains", chainEnvelope{Chain: chain})
}

func (c *Client) UpdateChain(ctx context.Context, id string, chain *Chain) (json.RawMessage, error) {
	return c.do(ctx, "chains", "updating chain "+id, http.MethodPut, "/v1/chains/"+url.PathEscape(id), chainEnvelope{Chain: chain})
}

func (c *Client) DeleteChain(ctx context.Context, id string) (json.RawMessage, error) {
	return c.do(ctx, "chains", "deleting chain "+id, http.MethodDelete, "/v1/chains/"+url.PathEscape(id), nil)
}

// Actions

// CreateAction persists an action and returns the ID the engine assigned.
func (c *Client) CreateAction(ctx context.Context, action *Action) (string, error) {
	raw, err := c.do(ctx, "actions", "creating action", http.MethodPost, "/v1/actions", actionEnvelope{Action: action})
	if err != nil {
		return "", err
	}
	var list actionList
	if err := json.Unmarshal(raw, &list); err != nil {
		return "", fmt.Errorf("decoding created action: %w", err)
	}
	if len(list.Actions) == 0 || list.Actions[0].ID == "" {
		return "", fmt.Errorf("creating action: response carried no action id")
	}
	return list.Actions[0].ID, nil
}

// TriggerAction runs actionName on a Bee immediately. A nil params sends {}.
func (c *Client) TriggerAction(ctx context.Context, beeID, actionName string, params map[string]any) (json.RawMessage, error) {
	if params == nil {
		params = map[string]any{}
	}
	op := fmt.Sprintf("triggering action %s on bee %s", actionName, beeID)
	path := "/v1/bees/" + url.PathEscape(beeID) + "/actions/" + url.PathEscape(actionName)
	return c.do(ctx, "actions", op, http.MethodPost, path, params)
}

// Logs

// GetLogs returns engine logs, filtered to one Bee when beeID is non-empty.
func (c *Client) GetLogs(ctx context.Context, beeID string) (json.RawMessage, error) {
	path := "/v1/logs"
	if beeID != "" {
		path += "?" + url.Values{"bee": {beeID}}.Encode()
	}
	return c.do(ctx, "logs", "fetching logs", http.MethodGet, path, nil)
}

// do performs one round-trip and returns the response body unmodified.
func (c *Client) do(ctx context.Context, resource, op, method, path string, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: encoding request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%s: building request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordUpstreamRequest(resource, method, "error", time.Since(start).Seconds())
		logger.WarnContext(ctx, "beehive request failed", "method", method, "path", path, "error", err)
		return nil, networkError(op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	metrics.RecordUpstreamRequest(resource, method, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())
	if err != nil {
		return nil, networkError(op, err)
	}

	logger.DebugContext(ctx, "beehive request", "method", method, "path", path, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, httpError(op, resp.StatusCode, data)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return json.RawMessage("null"), nil
	}
	return json.RawMessage(data), nil
}
