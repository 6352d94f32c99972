package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/agentry-ai/agentry/internal/agent"
	"github.com/agentry-ai/agentry/internal/catalog"
	"github.com/agentry-ai/agentry/internal/discovery"
	"github.com/agentry-ai/agentry/internal/dispatch"
	"github.com/agentry-ai/agentry/internal/manifest"
	"github.com/agentry-ai/agentry/internal/registry"
	"github.com/agentry-ai/agentry/internal/runstore"
)

func testManifest(id, version, name, category string) *manifest.Manifest {
	return &manifest.Manifest{
		AgentID:     id,
		Version:     version,
		Name:        name,
		Category:    category,
		Description: "Test agent",
		WhenToUse:   "In tests",
		Inputs:      map[string]string{},
		Outputs:     map[string]string{},
		Owner:       "qa",
		Frequency:   "daily",
		Cost:        "low",
	}
}

// setupTestServer builds a server over a static registry with three agents:
// alpha (v1, v2) accepting any object, beta (v1) with a strict schema, and
// gamma (v1) which always fails. The returned counter tracks alpha runs.
func setupTestServer(t *testing.T, runs *runstore.Store) (*Server, *int) {
	t.Helper()

	invoked := new(int)
	openSchema := `{"type": "object"}`
	strictSchema := `{
		"type": "object",
		"properties": {"rows": {"type": "array"}},
		"required": ["rows"],
		"additionalProperties": false
	}`

	alphaFactory := func(version string) agent.Factory {
		return func() agent.Executable {
			return agent.NewBaseAgent("alpha", json.RawMessage(openSchema),
				func(ctx context.Context, input json.RawMessage, meta *agent.Meta) (*agent.Output, error) {
					*invoked++
					return &agent.Output{Summary: "alpha " + version}, nil
				})
		}
	}

	packages := []discovery.StaticPackage{
		{ID: "alpha", Version: "v1", Manifest: testManifest("alpha", "v1", "Alpha Agent", "analysis"), Factory: alphaFactory("v1")},
		{ID: "alpha", Version: "v2", Manifest: testManifest("alpha", "v2", "Alpha Agent", "analysis"), Factory: alphaFactory("v2")},
		{
			ID: "beta", Version: "v1",
			Manifest: testManifest("beta", "v1", "Beta Agent", "reporting"),
			Factory: func() agent.Executable {
				return agent.NewBaseAgent("beta", json.RawMessage(strictSchema),
					func(ctx context.Context, input json.RawMessage, meta *agent.Meta) (*agent.Output, error) {
						return &agent.Output{Summary: "beta ran"}, nil
					})
			},
		},
		{
			ID: "gamma", Version: "v1",
			Manifest: testManifest("gamma", "v1", "Gamma Agent", "analysis"),
			Factory: func() agent.Executable {
				return agent.NewBaseAgent("gamma", json.RawMessage(openSchema),
					func(ctx context.Context, input json.RawMessage, meta *agent.Meta) (*agent.Output, error) {
						return nil, context.DeadlineExceeded
					})
			},
		},
	}

	reg := registry.New(discovery.NewStaticSource("test", packages...))
	if err := reg.Build(context.Background()); err != nil {
		t.Fatalf("Failed to build registry: %v", err)
	}

	srv := &Server{
		config:     DefaultConfig(),
		reg:        reg,
		dispatcher: dispatch.New(reg, runs),
		runs:       runs,
	}
	return srv, invoked
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	return resp
}

func TestServiceInfo(t *testing.T) {
	srv, _ := setupTestServer(t, nil)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	srv.serviceInfo(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}

	var info map[string]any
	if err := json.NewDecoder(w.Body).Decode(&info); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}

	if info["service"] != serviceName {
		t.Errorf("Service mismatch: got %v", info["service"])
	}
	endpoints, ok := info["endpoints"].(map[string]any)
	if !ok {
		t.Fatalf("Expected endpoints map, got %T", info["endpoints"])
	}
	if endpoints["invoke_agent"] != "/agents/{agent_id}/run" {
		t.Errorf("invoke_agent mismatch: got %v", endpoints["invoke_agent"])
	}
}

func TestHealth(t *testing.T) {
	srv, _ := setupTestServer(t, nil)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	srv.health(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}

	var health map[string]any
	if err := json.NewDecoder(w.Body).Decode(&health); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if health["status"] != "ok" {
		t.Errorf("Expected status ok, got %v", health["status"])
	}
	if health["agents"] != float64(3) {
		t.Errorf("Expected 3 agents, got %v", health["agents"])
	}
}

func TestListAgents(t *testing.T) {
	srv, _ := setupTestServer(t, nil)

	req := httptest.NewRequest("GET", "/agents", nil)
	w := httptest.NewRecorder()

	srv.listAgents(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}

	var entries []catalog.ListEntry
	if err := json.NewDecoder(w.Body).Decode(&entries); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}

	if len(entries) != 3 {
		t.Fatalf("Expected 3 agents, got %d", len(entries))
	}
	if entries[0].AgentID != "alpha" || entries[0].LatestVersion != "v2" {
		t.Errorf("Unexpected first entry: %+v", entries[0])
	}
}

func TestRegistryView(t *testing.T) {
	srv, _ := setupTestServer(t, nil)

	req := httptest.NewRequest("GET", "/agents/registry", nil)
	w := httptest.NewRecorder()

	srv.registryView(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}

	var records []catalog.AgentRecord
	if err := json.NewDecoder(w.Body).Decode(&records); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}

	alpha := records[0]
	if alpha.AgentID != "alpha" {
		t.Fatalf("Expected alpha first, got %s", alpha.AgentID)
	}
	if alpha.LatestVersion != "v2" {
		t.Errorf("Expected latest v2, got %s", alpha.LatestVersion)
	}
	if len(alpha.Versions) != 2 || alpha.Versions[0] != "v1" || alpha.Versions[1] != "v2" {
		t.Errorf("Expected versions [v1 v2], got %v", alpha.Versions)
	}
	if alpha.Manifests["v2"] == nil || alpha.Manifests["v2"].Name != "Alpha Agent" {
		t.Errorf("Missing v2 manifest: %+v", alpha.Manifests)
	}
}

func TestCatalogView_JSON(t *testing.T) {
	srv, _ := setupTestServer(t, nil)

	req := httptest.NewRequest("GET", "/agents/catalog", nil)
	w := httptest.NewRecorder()

	srv.catalogView(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected application/json, got %s", ct)
	}

	var categories []catalog.Category
	if err := json.NewDecoder(w.Body).Decode(&categories); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}

	if len(categories) != 2 {
		t.Fatalf("Expected 2 categories, got %d", len(categories))
	}
	if categories[0].Name != "analysis" || categories[1].Name != "reporting" {
		t.Errorf("Unexpected category order: %s, %s", categories[0].Name, categories[1].Name)
	}
	if len(categories[0].Agents) != 2 {
		t.Errorf("Expected 2 analysis agents, got %d", len(categories[0].Agents))
	}
}

func TestCatalogView_YAML(t *testing.T) {
	srv, _ := setupTestServer(t, nil)

	req := httptest.NewRequest("GET", "/agents/catalog?format=yaml", nil)
	w := httptest.NewRecorder()

	srv.catalogView(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/yaml" {
		t.Errorf("Expected application/yaml, got %s", ct)
	}
	if !strings.Contains(w.Body.String(), "agent_id: alpha") {
		t.Errorf("Expected YAML body, got %s", w.Body.String())
	}
}

func TestCatalogView_Text(t *testing.T) {
	srv, _ := setupTestServer(t, nil)

	req := httptest.NewRequest("GET", "/agents/catalog?format=text", nil)
	w := httptest.NewRecorder()

	srv.catalogView(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
		t.Errorf("Expected text/plain, got %s", ct)
	}
	body := w.Body.String()
	if !strings.Contains(body, "analysis (2)") || !strings.Contains(body, "AGENT") {
		t.Errorf("Unexpected text body: %s", body)
	}
}

func TestCatalogView_UnsupportedFormat(t *testing.T) {
	srv, _ := setupTestServer(t, nil)

	req := httptest.NewRequest("GET", "/agents/catalog?format=xml", nil)
	w := httptest.NewRecorder()

	srv.catalogView(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
	resp := decodeError(t, w)
	if resp.Error.Code != ErrCodeInvalidRequest {
		t.Errorf("Expected INVALID_REQUEST, got %s", resp.Error.Code)
	}
}

func TestListVersions(t *testing.T) {
	srv, _ := setupTestServer(t, nil)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("agentID", "alpha")

	req := httptest.NewRequest("GET", "/agents/alpha/versions", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()

	srv.listVersions(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp VersionsResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}

	if resp.AgentID != "alpha" || resp.LatestVersion != "v2" {
		t.Errorf("Unexpected response: %+v", resp)
	}
	// Newest first.
	if len(resp.Versions) != 2 || resp.Versions[0] != "v2" || resp.Versions[1] != "v1" {
		t.Errorf("Expected [v2 v1], got %v", resp.Versions)
	}
}

func TestListVersions_UnknownAgent(t *testing.T) {
	srv, _ := setupTestServer(t, nil)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("agentID", "alpah")

	req := httptest.NewRequest("GET", "/agents/alpah/versions", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()

	srv.listVersions(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
	resp := decodeError(t, w)
	if resp.Error.Code != ErrCodeNotFound {
		t.Errorf("Expected NOT_FOUND, got %s", resp.Error.Code)
	}
	if !strings.Contains(resp.Error.Message, "alpha") {
		t.Errorf("Expected a suggestion in %q", resp.Error.Message)
	}
}

func runRequest(t *testing.T, srv *Server, agentID, query string, body []byte) *httptest.ResponseRecorder {
	t.Helper()

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("agentID", agentID)

	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader(body)
	}

	req := httptest.NewRequest("POST", "/agents/"+agentID+"/run"+query, reader)
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()

	srv.runAgent(w, req)
	return w
}

func TestRunAgent_LatestVersion(t *testing.T) {
	srv, invoked := setupTestServer(t, nil)

	w := runRequest(t, srv, "alpha", "", []byte(`{"query": "best pages"}`))

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var envelope dispatch.Envelope
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}

	if !envelope.Success {
		t.Errorf("Expected success, got error %q", envelope.Error)
	}
	if envelope.AgentID != "alpha" || envelope.Version != "v2" {
		t.Errorf("Expected alpha@v2, got %s@%s", envelope.AgentID, envelope.Version)
	}
	if envelope.Output == nil || envelope.Output.Summary != "alpha v2" {
		t.Errorf("Unexpected output: %+v", envelope.Output)
	}
	if envelope.RunID == "" {
		t.Error("Run ID should not be empty")
	}
	if *invoked != 1 {
		t.Errorf("Expected 1 invocation, got %d", *invoked)
	}
}

func TestRunAgent_PinnedVersion(t *testing.T) {
	srv, _ := setupTestServer(t, nil)

	w := runRequest(t, srv, "alpha", "?version=v1", []byte(`{}`))

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var envelope dispatch.Envelope
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if envelope.Version != "v1" || envelope.Output.Summary != "alpha v1" {
		t.Errorf("Expected alpha v1, got %+v", envelope)
	}
}

func TestRunAgent_EmptyBody(t *testing.T) {
	srv, _ := setupTestServer(t, nil)

	w := runRequest(t, srv, "alpha", "", nil)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var envelope dispatch.Envelope
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if !envelope.Success {
		t.Errorf("Expected success, got error %q", envelope.Error)
	}
}

func TestRunAgent_UnknownAgent(t *testing.T) {
	srv, _ := setupTestServer(t, nil)

	w := runRequest(t, srv, "delta", "", []byte(`{}`))

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
	resp := decodeError(t, w)
	if resp.Error.Code != ErrCodeNotFound {
		t.Errorf("Expected NOT_FOUND, got %s", resp.Error.Code)
	}
}

func TestRunAgent_UnknownVersion(t *testing.T) {
	srv, invoked := setupTestServer(t, nil)

	w := runRequest(t, srv, "alpha", "?version=v9", []byte(`{}`))

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
	resp := decodeError(t, w)
	if resp.Error.Code != ErrCodeInvalidRequest {
		t.Errorf("Expected INVALID_REQUEST, got %s", resp.Error.Code)
	}
	if !strings.Contains(resp.Error.Message, "v9") {
		t.Errorf("Expected version in message, got %q", resp.Error.Message)
	}
	if *invoked != 0 {
		t.Errorf("Agent should not run on version errors, got %d invocations", *invoked)
	}
}

func TestRunAgent_InvalidPayload(t *testing.T) {
	srv, _ := setupTestServer(t, nil)

	w := runRequest(t, srv, "beta", "", []byte(`{"rows": "not an array"}`))

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
	resp := decodeError(t, w)
	if resp.Error.Code != ErrCodeInvalidRequest {
		t.Errorf("Expected INVALID_REQUEST, got %s", resp.Error.Code)
	}
	if resp.Error.Details["agent_id"] != "beta" {
		t.Errorf("Expected agent_id detail, got %v", resp.Error.Details)
	}
}

func TestRunAgent_MalformedJSON(t *testing.T) {
	srv, _ := setupTestServer(t, nil)

	w := runRequest(t, srv, "alpha", "", []byte("not json"))

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

func TestRunAgent_FailureEnvelope(t *testing.T) {
	srv, _ := setupTestServer(t, nil)

	w := runRequest(t, srv, "gamma", "", []byte(`{}`))

	// Agent failures still produce a 200 with the failure envelope.
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var envelope dispatch.Envelope
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if envelope.Success {
		t.Error("Expected failure envelope")
	}
	if envelope.Error == "" {
		t.Error("Expected error message")
	}
	if envelope.Output != nil {
		t.Errorf("Expected no output, got %+v", envelope.Output)
	}
}

func TestRunAgent_PayloadTooLarge(t *testing.T) {
	srv, _ := setupTestServer(t, nil)

	w := runRequest(t, srv, "alpha", "", bytes.Repeat([]byte("a"), maxRunPayloadBytes+1))

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected 413, got %d", w.Code)
	}
}

func TestReloadRegistry(t *testing.T) {
	srv, _ := setupTestServer(t, nil)

	req := httptest.NewRequest("POST", "/agents/reload", nil)
	w := httptest.NewRecorder()

	srv.reloadRegistry(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if resp["reloaded"] != true {
		t.Errorf("Expected reloaded true, got %v", resp["reloaded"])
	}
	if resp["agents"] != float64(3) {
		t.Errorf("Expected 3 agents, got %v", resp["agents"])
	}
}

func TestListRuns_StoreDisabled(t *testing.T) {
	srv, _ := setupTestServer(t, nil)

	req := httptest.NewRequest("GET", "/agents/runs", nil)
	w := httptest.NewRecorder()

	srv.listRuns(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func openRunStore(t *testing.T) *runstore.Store {
	t.Helper()
	store, err := runstore.Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open run store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestListRuns(t *testing.T) {
	store := openRunStore(t)
	srv, _ := setupTestServer(t, store)

	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"run-a", "run-b"} {
		err := store.Put(ctx, &runstore.Run{
			ID:        id,
			AgentID:   "alpha",
			Version:   "v2",
			Success:   true,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Failed to seed run: %v", err)
		}
	}

	req := httptest.NewRequest("GET", "/agents/runs?agent_id=alpha", nil)
	w := httptest.NewRecorder()

	srv.listRuns(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var runs []*runstore.Run
	if err := json.NewDecoder(w.Body).Decode(&runs); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != "run-b" {
		t.Errorf("Expected newest first, got %s", runs[0].ID)
	}
}

func TestListRuns_InvalidLimit(t *testing.T) {
	store := openRunStore(t)
	srv, _ := setupTestServer(t, store)

	req := httptest.NewRequest("GET", "/agents/runs?limit=zero", nil)
	w := httptest.NewRecorder()

	srv.listRuns(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

func TestGetRun_NotFound(t *testing.T) {
	store := openRunStore(t)
	srv, _ := setupTestServer(t, store)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("runID", "missing")

	req := httptest.NewRequest("GET", "/agents/runs/missing", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()

	srv.getRun(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestRunAgent_RecordsRun(t *testing.T) {
	store := openRunStore(t)
	srv, _ := setupTestServer(t, store)

	w := runRequest(t, srv, "alpha", "", []byte(`{"query": "audit"}`))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var envelope dispatch.Envelope
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("runID", envelope.RunID)

	req := httptest.NewRequest("GET", "/agents/runs/"+envelope.RunID, nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rw := httptest.NewRecorder()

	srv.getRun(rw, req)

	if rw.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rw.Code, rw.Body.String())
	}

	var run runstore.Run
	if err := json.NewDecoder(rw.Body).Decode(&run); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if run.AgentID != "alpha" || run.Version != "v2" || !run.Success {
		t.Errorf("Unexpected run record: %+v", run)
	}
}

func TestRoutes(t *testing.T) {
	store := openRunStore(t)
	srvBase, _ := setupTestServer(t, store)

	srv := New(DefaultConfig(), srvBase.reg, srvBase.dispatcher, srvBase.runs)

	cases := []struct {
		method string
		path   string
		body   string
		status int
	}{
		{"GET", "/", "", http.StatusOK},
		{"GET", "/health", "", http.StatusOK},
		{"GET", "/agents", "", http.StatusOK},
		{"GET", "/agents/registry", "", http.StatusOK},
		{"GET", "/agents/catalog", "", http.StatusOK},
		{"GET", "/agents/alpha/versions", "", http.StatusOK},
		{"POST", "/agents/alpha/run", `{}`, http.StatusOK},
		{"POST", "/agents/reload", "", http.StatusOK},
		{"GET", "/agents/runs", "", http.StatusOK},
		{"GET", "/agents/runs/missing", "", http.StatusNotFound},
		{"GET", "/nope", "", http.StatusNotFound},
	}

	for _, tc := range cases {
		var body *bytes.Reader
		if tc.body == "" {
			body = bytes.NewReader(nil)
		} else {
			body = bytes.NewReader([]byte(tc.body))
		}

		req := httptest.NewRequest(tc.method, tc.path, body)
		w := httptest.NewRecorder()

		srv.Router().ServeHTTP(w, req)

		if w.Code != tc.status {
			t.Errorf("%s %s: expected %d, got %d: %s", tc.method, tc.path, tc.status, w.Code, w.Body.String())
		}
	}
}
