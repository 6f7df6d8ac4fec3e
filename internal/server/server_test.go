package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/wiretidy/internal/config"
	"github.com/matzehuels/wiretidy/pkg/beautify"
	"github.com/matzehuels/wiretidy/pkg/circuit"
	"github.com/matzehuels/wiretidy/pkg/errors"
	"github.com/matzehuels/wiretidy/pkg/observability"
	"github.com/matzehuels/wiretidy/pkg/pipeline"
)

const pairModel = `{
  "wires": {
    "a": {"id": "a", "output_port": "p1", "start": {"x": 60, "y": 10}, "initial_orientation": "horizontal",
          "segments": [{"index": 0, "length": 40}, {"index": 1, "length": 40}, {"index": 2, "length": 40}]},
    "b": {"id": "b", "output_port": "p2", "start": {"x": 140, "y": 10}, "initial_orientation": "horizontal",
          "segments": [{"index": 0, "length": -40}, {"index": 1, "length": 40}, {"index": 2, "length": -40}]}
  }
}`

func newTestServer(t *testing.T, settings config.Server) *httptest.Server {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(nil, nil, logger)
	srv := httptest.NewServer(New(runner, settings, beautify.DefaultConfig(), logger).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, data
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, config.Server{})
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" || body["version"] == "" {
		t.Errorf("body = %v", body)
	}
}

func TestLayout(t *testing.T) {
	srv := newTestServer(t, config.Server{})
	resp, data := post(t, srv.URL+"/v1/layout", `{"model": `+pairModel+`, "config": {"max_segment_separation": 10}}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, data)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var result pipeline.Result
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("decode: %v\n%s", err, data)
	}
	if result.Model == nil || len(result.Model.Wires) != 2 {
		t.Fatalf("model = %+v", result.Model)
	}
	a, b := result.Model.Wires["a"], result.Model.Wires["b"]
	if got, want := a.Start.X+a.Segments[0].Length, 95.0; got != want {
		t.Errorf("a vertical at x=%v, want %v", got, want)
	}
	if got, want := b.Start.X+b.Segments[0].Length, 105.0; got != want {
		t.Errorf("b vertical at x=%v, want %v", got, want)
	}
	if result.ModelHash == "" {
		t.Error("model_hash missing")
	}
}

func TestLayoutConfigKeepsDefaults(t *testing.T) {
	logger := log.NewWithOptions(io.Discard, log.Options{})
	defaults := beautify.DefaultConfig()
	defaults.MaxSegmentSeparation = 10
	handler := New(pipeline.NewRunner(nil, nil, logger), config.Server{}, defaults, logger).Handler()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	tests := []struct {
		name   string
		config string
		lo, hi float64
	}{
		{"no config", ``, 95, 105},
		{"unrelated field", `, "config": {"overlap_tolerance": 1}`, 95, 105},
		{"override", `, "config": {"max_segment_separation": 7}`, 96.5, 103.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := post(t, srv.URL+"/v1/layout", `{"model": `+pairModel+tt.config+`}`)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d: %s", resp.StatusCode, data)
			}
			var result pipeline.Result
			if err := json.Unmarshal(data, &result); err != nil {
				t.Fatal(err)
			}
			a, b := result.Model.Wires["a"], result.Model.Wires["b"]
			if got := a.Start.X + a.Segments[0].Length; got != tt.lo {
				t.Errorf("a vertical at x=%v, want %v", got, tt.lo)
			}
			if got := b.Start.X + b.Segments[0].Length; got != tt.hi {
				t.Errorf("b vertical at x=%v, want %v", got, tt.hi)
			}
		})
	}
}

func TestCheck(t *testing.T) {
	srv := newTestServer(t, config.Server{})
	resp, data := post(t, srv.URL+"/v1/check", `{"model": `+pairModel+`}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, data)
	}
	var result pipeline.CheckResult
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatal(err)
	}
	if got, want := len(result.Report.Overlaps), 1; got != want {
		t.Errorf("overlaps = %d, want %d", got, want)
	}
	if result.Report.Overlaps[0].Orientation != circuit.Vertical {
		t.Errorf("overlap = %+v", result.Report.Overlaps[0])
	}
}

func TestErrors(t *testing.T) {
	srv := newTestServer(t, config.Server{MaxBodyBytes: 4096})
	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   errors.Code
	}{
		{"bad json", "/v1/layout", `{"model": `, http.StatusBadRequest, errors.ErrCodeInvalidFormat},
		{"missing model", "/v1/layout", `{}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"unknown field", "/v1/check", `{"model": {}, "colour": "red"}`, http.StatusBadRequest, errors.ErrCodeInvalidFormat},
		{"invalid model", "/v1/layout", `{"model": {"wires": {"a": {"id": "b"}}}}`, http.StatusBadRequest, errors.ErrCodeInvalidModel},
		{"invalid config", "/v1/layout", `{"model": {}, "config": {"max_segment_separation": -1}}`, http.StatusBadRequest, errors.ErrCodeInvalidConfig},
		{"body too large", "/v1/layout", `{"model": {}, "wires_to_route": ["` + strings.Repeat("w", 5000) + `"]}`, http.StatusBadRequest, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := post(t, srv.URL+tt.path, tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d: %s", resp.StatusCode, tt.status, data)
			}
			var body errorBody
			if err := json.Unmarshal(data, &body); err != nil {
				t.Fatalf("decode: %v\n%s", err, data)
			}
			if body.Error.Code != tt.code {
				t.Errorf("code = %s, want %s", body.Error.Code, tt.code)
			}
			if body.Error.RequestID == "" {
				t.Error("request_id missing")
			}
		})
	}

	resp, err := http.Get(srv.URL + "/v1/layout")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET /v1/layout status = %d", resp.StatusCode)
	}
}

func TestHTTPHooks(t *testing.T) {
	observability.Reset()
	t.Cleanup(observability.Reset)
	hooks := &recordingHTTPHooks{}
	observability.SetHTTPHooks(hooks)

	srv := newTestServer(t, config.Server{})
	post(t, srv.URL+"/v1/check", `{"model": `+pairModel+`}`)

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if len(hooks.routes) != 1 || hooks.routes[0] != "POST /v1/check 200" {
		t.Errorf("responses = %v", hooks.routes)
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	logger := log.NewWithOptions(io.Discard, log.Options{})
	s := New(pipeline.NewRunner(nil, nil, logger), config.Server{Addr: "127.0.0.1:0"}, beautify.DefaultConfig(), logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

type recordingHTTPHooks struct {
	observability.NoopHTTPHooks
	mu     sync.Mutex
	routes []string
}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, method, route string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.routes = append(h.routes, fmt.Sprintf("%s %s %d", method, route, status))
}
