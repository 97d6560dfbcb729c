package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"verseline/internal/api"
	"verseline/internal/config"
	"verseline/internal/logging"
	"verseline/internal/queue"
	"verseline/internal/stage"
	"verseline/internal/testsupport"
	"verseline/internal/workflow"
)

type stubReporter struct {
	summary workflow.StatusSummary
	ready   bool
	checks  []stage.Health
}

func (s *stubReporter) Status(context.Context) workflow.StatusSummary { return s.summary }
func (s *stubReporter) Healthy(context.Context) (bool, []stage.Health) {
	return s.ready, s.checks
}

func newServer(t *testing.T, opts ...testsupport.ConfigOption) (*api.Server, *queue.Store, *config.Config) {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	store := testsupport.MustOpenStore(t, cfg)
	reporter := &stubReporter{
		summary: workflow.StatusSummary{Running: true, Workers: 2},
		ready:   true,
		checks:  []stage.Health{stage.Healthy("fetch"), stage.Healthy("render")},
	}
	srv := api.NewServer(cfg, store, reporter, nil, logging.NewNop())
	if srv == nil {
		t.Fatal("expected server, got nil")
	}
	return srv, store, cfg
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any, out any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if out != nil && rec.Code < 300 {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("decode response: %v (body %s)", err, rec.Body.String())
		}
	}
	return rec
}

func TestHealthEndpointReportsStages(t *testing.T) {
	srv, _, _ := newServer(t)
	var resp api.HealthResponse
	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/health", nil, &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if resp.Status != "ok" || !resp.Running || resp.Workers != 2 {
		t.Fatalf("unexpected health payload: %+v", resp)
	}
	if len(resp.Stages) != 2 {
		t.Fatalf("expected 2 stage checks, got %d", len(resp.Stages))
	}
}

func TestThemesEndpointListsRegistry(t *testing.T) {
	srv, _, _ := newServer(t)
	var resp map[string][]api.ThemeView
	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/themes", nil, &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	themes := resp["themes"]
	if len(themes) < 5 {
		t.Fatalf("expected at least 5 themes, got %d", len(themes))
	}
	found := false
	for _, view := range themes {
		if view.Key == "nature" {
			found = true
			if view.DefaultAnimation == "" {
				t.Fatal("expected default animation populated")
			}
		}
	}
	if !found {
		t.Fatal("nature theme missing from listing")
	}
}

func TestRandomPoemHonorsThemeFilter(t *testing.T) {
	srv, _, _ := newServer(t)
	var resp api.PoemResponse
	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/poetry/random?theme=ocean", nil, &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if len(resp.Lines) == 0 {
		t.Fatal("expected poem lines")
	}

	rec = doJSON(t, srv.Handler(), http.MethodGet, "/api/poetry/random?theme=nope", nil, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown theme, got %d", rec.Code)
	}
}

func TestCreateVideoEnqueuesItem(t *testing.T) {
	srv, store, _ := newServer(t)
	payload := api.CreateVideoRequest{
		Theme:           "sunset",
		AnimationMode:   "typewriter",
		DurationSeconds: 20,
		Lines:           []string{"Golden light", "falls on water", "and the day ends"},
		Title:           "Evening",
	}
	var created api.ItemView
	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/videos", payload, &created)
	if rec.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	if created.VideoID == "" || created.Status != string(queue.StatusPending) {
		t.Fatalf("unexpected created item: %+v", created)
	}

	item, err := store.GetByVideoID(context.Background(), created.VideoID)
	if err != nil {
		t.Fatalf("GetByVideoID failed: %v", err)
	}
	if item == nil {
		t.Fatal("created item not persisted")
	}
	if item.Theme != "sunset" || item.AnimationMode != "typewriter" || item.DurationHint != 20 {
		t.Fatalf("unexpected persisted item: %+v", item)
	}
	if item.PoetryJSON == "" {
		t.Fatal("expected poem payload persisted")
	}
}

func TestCreateVideoWithoutPoemSelectsFromCatalog(t *testing.T) {
	srv, store, _ := newServer(t)
	var created api.ItemView
	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/videos", api.CreateVideoRequest{Theme: "forest"}, &created)
	if rec.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	item, err := store.GetByVideoID(context.Background(), created.VideoID)
	if err != nil {
		t.Fatalf("GetByVideoID failed: %v", err)
	}
	if item.PoetryJSON == "" {
		t.Fatal("expected catalog poem persisted")
	}
}

func TestCreateVideoValidation(t *testing.T) {
	srv, _, _ := newServer(t)
	cases := []struct {
		name    string
		payload api.CreateVideoRequest
	}{
		{"unknown theme", api.CreateVideoRequest{Theme: "vaporwave"}},
		{"unknown animation", api.CreateVideoRequest{Theme: "nature", AnimationMode: "spin"}},
		{"duration too short", api.CreateVideoRequest{Theme: "nature", DurationSeconds: 2}},
		{"duration too long", api.CreateVideoRequest{Theme: "nature", DurationSeconds: 300}},
		{"too few lines", api.CreateVideoRequest{Theme: "nature", Lines: []string{"one", "two"}}},
		{"speaking rate out of range", api.CreateVideoRequest{Theme: "nature", SpeakingRate: 9}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/videos", tc.payload, nil)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestCreateVideoTruncatesLongPoems(t *testing.T) {
	srv, store, _ := newServer(t)
	lines := make([]string, 15)
	for i := range lines {
		lines[i] = "line"
	}
	var created api.ItemView
	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/videos", api.CreateVideoRequest{Theme: "nature", Lines: lines}, &created)
	if rec.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	item, err := store.GetByVideoID(context.Background(), created.VideoID)
	if err != nil {
		t.Fatalf("GetByVideoID failed: %v", err)
	}
	var decoded struct {
		Lines []string `json:"lines"`
	}
	if err := json.Unmarshal([]byte(item.PoetryJSON), &decoded); err != nil {
		t.Fatalf("decode persisted poem: %v", err)
	}
	if len(decoded.Lines) != 12 {
		t.Fatalf("expected 12 lines after truncation, got %d", len(decoded.Lines))
	}
}

func TestVideoLookupAndQueueListing(t *testing.T) {
	srv, store, _ := newServer(t)
	item := testsupport.NewVideo(t, store, queue.Request{Theme: "nature"})

	var fetched api.ItemView
	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/videos/"+item.VideoID, nil, &fetched)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if fetched.VideoID != item.VideoID {
		t.Fatalf("unexpected video id %q", fetched.VideoID)
	}

	rec = doJSON(t, srv.Handler(), http.MethodGet, "/api/videos/missing-id", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	var listing api.QueueListResponse
	rec = doJSON(t, srv.Handler(), http.MethodGet, "/api/queue?status=pending", nil, &listing)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if len(listing.Items) != 1 {
		t.Fatalf("expected 1 pending item, got %d", len(listing.Items))
	}
	if listing.Stats["pending"] != 1 {
		t.Fatalf("unexpected stats: %+v", listing.Stats)
	}

	rec = doJSON(t, srv.Handler(), http.MethodGet, "/api/queue?status=bogus", nil, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", rec.Code)
	}
}

func TestBearerAuthGuardsEndpoints(t *testing.T) {
	srv, _, _ := newServer(t, testsupport.WithAPIToken("sekrit"))
	handler := srv.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Authorization", "Bearer sekrit")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rec.Code)
	}
}
