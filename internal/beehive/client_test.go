package beehive

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// recordedRequest captures what the fake engine received.
type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   string
}

func newTestServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var reqs []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		reqs = append(reqs, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Auth:   r.Header.Get("Authorization"),
			Body:   string(body),
		})
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &reqs
}

func TestClient_ListHivesReturnsBodyUnmodified(t *testing.T) {
	const body = `{"hives":[{"name":"rss","options":[]}]}`
	srv, reqs := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	})

	c := NewClient(srv.URL, "")
	got, err := c.ListHives(context.Background())
	if err != nil {
		t.Fatalf("ListHives() error = %v", err)
	}
	if string(got) != body {
		t.Errorf("ListHives() = %s, want %s", got, body)
	}
	if len(*reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(*reqs))
	}
	if (*reqs)[0].Path != "/v1/hives" || (*reqs)[0].Method != http.MethodGet {
		t.Errorf("unexpected request %+v", (*reqs)[0])
	}
	if (*reqs)[0].Auth != "" {
		t.Errorf("expected no Authorization header, got %q", (*reqs)[0].Auth)
	}
}

func TestClient_SendsBearerTokenWhenConfigured(t *testing.T) {
	srv, reqs := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	c := NewClient(srv.URL+"/", "secret")
	if _, err := c.ListBees(context.Background()); err != nil {
		t.Fatalf("ListBees() error = %v", err)
	}
	if got := (*reqs)[0].Auth; got != "Bearer secret" {
		t.Errorf("Authorization = %q, want %q", got, "Bearer secret")
	}
	if got := (*reqs)[0].Path; got != "/v1/bees" {
		t.Errorf("path = %q, want /v1/bees", got)
	}
}

func TestClient_Routes(t *testing.T) {
	srv, reqs := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	c := NewClient(srv.URL, "")
	ctx := context.Background()

	tests := []struct {
		name   string
		call   func() error
		method string
		path   string
		query  string
	}{
		{"get hive", func() error { _, err := c.GetHive(ctx, "rss"); return err }, "GET", "/v1/hives/rss", ""},
		{"get bee", func() error { _, err := c.GetBee(ctx, "b1"); return err }, "GET", "/v1/bees/b1", ""},
		{"delete bee", func() error { _, err := c.DeleteBee(ctx, "b1"); return err }, "DELETE", "/v1/bees/b1", ""},
		{"list chains", func() error { _, err := c.ListChains(ctx); return err }, "GET", "/v1/chains", ""},
		{"get chain", func() error { _, err := c.GetChain(ctx, "c1"); return err }, "GET", "/v1/chains/c1", ""},
		{"delete chain", func() error { _, err := c.DeleteChain(ctx, "c1"); return err }, "DELETE", "/v1/chains/c1", ""},
		{"trigger", func() error { _, err := c.TriggerAction(ctx, "b1", "send", nil); return err }, "POST", "/v1/bees/b1/actions/send", ""},
		{"logs", func() error { _, err := c.GetLogs(ctx, ""); return err }, "GET", "/v1/logs", ""},
		{"logs for bee", func() error { _, err := c.GetLogs(ctx, "b1"); return err }, "GET", "/v1/logs", "bee=b1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(*reqs)
			if err := tt.call(); err != nil {
				t.Fatalf("call error = %v", err)
			}
			if len(*reqs) != before+1 {
				t.Fatalf("expected exactly one request, got %d", len(*reqs)-before)
			}
			got := (*reqs)[before]
			if got.Method != tt.method || got.Path != tt.path || got.Query != tt.query {
				t.Errorf("got %s %s?%s, want %s %s?%s", got.Method, got.Path, got.Query, tt.method, tt.path, tt.query)
			}
		})
	}
}

func TestClient_TriggerActionSendsEmptyObjectForNilParams(t *testing.T) {
	srv, reqs := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	c := NewClient(srv.URL, "")
	if _, err := c.TriggerAction(context.Background(), "b1", "send", nil); err != nil {
		t.Fatalf("TriggerAction() error = %v", err)
	}
	if got := (*reqs)[0].Body; got != "{}" {
		t.Errorf("body = %q, want {}", got)
	}
}

func TestClient_CreateBeeWrapsEnvelope(t *testing.T) {
	srv, reqs := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"bees":[{"id":"new"}]}`))
	})
	c := NewClient(srv.URL, "")
	_, err := c.CreateBee(context.Background(), &Bee{Name: "Feed", Namespace: "rss", Active: true})
	if err != nil {
		t.Fatalf("CreateBee() error = %v", err)
	}

	var sent map[string]map[string]any
	if err := json.Unmarshal([]byte((*reqs)[0].Body), &sent); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	bee, ok := sent["bee"]
	if !ok {
		t.Fatalf("expected body wrapped under \"bee\", got %s", (*reqs)[0].Body)
	}
	if bee["name"] != "Feed" || bee["namespace"] != "rss" || bee["active"] != true {
		t.Errorf("unexpected bee payload %v", bee)
	}
}

func TestClient_CreateActionReturnsID(t *testing.T) {
	srv, reqs := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"actions":[{"id":"a-1","bee":"b1","name":"send"}]}`))
	})
	c := NewClient(srv.URL, "")
	id, err := c.CreateAction(context.Background(), &Action{Bee: "b1", Name: "send", Options: json.RawMessage(`[]`)})
	if err != nil {
		t.Fatalf("CreateAction() error = %v", err)
	}
	if id != "a-1" {
		t.Errorf("id = %q, want a-1", id)
	}
	if !strings.HasPrefix((*reqs)[0].Body, `{"action":`) {
		t.Errorf("expected action envelope, got %s", (*reqs)[0].Body)
	}
}

func TestClient_CreateActionWithoutIDFails(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"actions":[]}`))
	})
	c := NewClient(srv.URL, "")
	if _, err := c.CreateAction(context.Background(), &Action{Bee: "b1", Name: "send"}); err == nil {
		t.Fatal("expected error when response carries no action id")
	}
}

func TestClient_LookupBeeDecodesFirstElement(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"bees":[{"id":"b1","name":"Feed","namespace":"rss","active":true,"options":[{"Name":"url","Value":"http://e/f.xml"}]}]}`))
	})
	c := NewClient(srv.URL, "")
	bee, err := c.LookupBee(context.Background(), "b1")
	if err != nil {
		t.Fatalf("LookupBee() error = %v", err)
	}
	if bee.Namespace != "rss" {
		t.Errorf("namespace = %q, want rss", bee.Namespace)
	}
	opt, ok := bee.Option("url")
	if !ok || opt.Value != "http://e/f.xml" {
		t.Errorf("Option(url) = %+v, %v", opt, ok)
	}
}

func TestClient_LookupHiveEmptyListFails(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hives":[]}`))
	})
	c := NewClient(srv.URL, "")
	if _, err := c.LookupHive(context.Background(), "nope"); err == nil {
		t.Fatal("expected error for empty hive list")
	}
}

func TestClient_HTTPErrorCarriesStatusAndBody(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"no such bee"}`))
	})
	c := NewClient(srv.URL, "")
	_, err := c.GetBee(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Phase != PhaseHTTP || apiErr.Status != http.StatusNotFound {
		t.Errorf("got phase=%s status=%d", apiErr.Phase, apiErr.Status)
	}
	body, ok := apiErr.Body.(map[string]any)
	if !ok || body["error"] != "no such bee" {
		t.Errorf("unexpected body %#v", apiErr.Body)
	}
	if !IsHTTP(err) || IsNetwork(err) {
		t.Error("expected IsHTTP true and IsNetwork false")
	}
	want := `fetching bee missing: 404 - {"error":"no such bee"}`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestClient_NonJSONErrorBodyKeptAsText(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	c := NewClient(srv.URL, "")
	_, err := c.ListChains(context.Background())

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if s, ok := apiErr.Body.(string); !ok || strings.TrimSpace(s) != "boom" {
		t.Errorf("Body = %#v, want \"boom\"", apiErr.Body)
	}
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(url, "")
	_, err := c.ListHives(context.Background())
	if err == nil {
		t.Fatal("expected error against closed server")
	}
	if !IsNetwork(err) {
		t.Errorf("expected network error, got %v", err)
	}
	if !strings.Contains(err.Error(), "no response received") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestClient_EmptySuccessBodyIsNull(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	c := NewClient(srv.URL, "")
	got, err := c.DeleteChain(context.Background(), "c1")
	if err != nil {
		t.Fatalf("DeleteChain() error = %v", err)
	}
	if string(got) != "null" {
		t.Errorf("got %s, want null", got)
	}
}

func TestOptionSpec_HasDefault(t *testing.T) {
	tests := []struct {
		name string
		def  any
		want bool
	}{
		{"nil", nil, false},
		{"empty string", "", false},
		{"string", "60", true},
		{"number", float64(0), true},
		{"bool", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (OptionSpec{Default: tt.def}).HasDefault(); got != tt.want {
				t.Errorf("HasDefault() = %v, want %v", got, tt.want)
			}
		})
	}
}
