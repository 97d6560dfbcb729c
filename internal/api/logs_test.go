package api_test

import (
	"net/http"
	"os"
	"testing"

	"verseline/internal/api"
	"verseline/internal/logging"
)

func TestLogsEndpointTailsDaemonLog(t *testing.T) {
	srv, _, cfg := newServer(t)

	path := logging.FilePath(cfg.Paths.LogDir)
	if err := os.WriteFile(path, []byte("first\nsecond\nthird\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	var resp api.LogTailResponse
	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/logs?limit=2", nil, &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	if len(resp.Lines) != 2 || resp.Lines[0] != "second" || resp.Lines[1] != "third" {
		t.Fatalf("unexpected lines: %#v", resp.Lines)
	}
	if resp.Offset == 0 {
		t.Fatal("expected offset to advance")
	}

	var next api.LogTailResponse
	rec = doJSON(t, srv.Handler(), http.MethodGet, "/api/logs?offset=0", nil, &next)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if len(next.Lines) != 3 {
		t.Fatalf("expected full read from offset zero, got %#v", next.Lines)
	}
}

func TestLogsEndpointRejectsBadQuery(t *testing.T) {
	srv, _, _ := newServer(t)
	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/logs?offset=abc", nil, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	rec = doJSON(t, srv.Handler(), http.MethodGet, "/api/logs?limit=-3", nil, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
