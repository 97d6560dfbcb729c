package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"verseline/internal/api"
	"verseline/internal/config"
)

// daemonAPI is a thin client for the daemon's HTTP surface. A nil or
// unreachable daemon is not an error for most commands; callers degrade to
// direct store access.
type daemonAPI struct {
	baseURL string
	token   string
	client  *http.Client
}

func newDaemonAPI(cfg *config.Config) *daemonAPI {
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil
	}
	// A wildcard bind is dialed over loopback.
	if strings.HasPrefix(bind, ":") {
		bind = "127.0.0.1" + bind
	} else if strings.HasPrefix(bind, "0.0.0.0:") {
		bind = "127.0.0.1" + strings.TrimPrefix(bind, "0.0.0.0")
	}
	return &daemonAPI{
		baseURL: "http://" + bind,
		token:   strings.TrimSpace(cfg.Paths.APIToken),
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func (d *daemonAPI) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+path, nil)
	if err != nil {
		return err
	}
	if d.token != "" {
		req.Header.Set("Authorization", "Bearer "+d.token)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("daemon responded %d for %s", resp.StatusCode, path)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Health fetches daemon health; a nil receiver or transport failure returns
// (nil, err) so callers can treat the daemon as offline.
func (d *daemonAPI) Health(ctx context.Context) (*api.HealthResponse, error) {
	if d == nil {
		return nil, fmt.Errorf("api disabled in configuration")
	}
	var health api.HealthResponse
	if err := d.get(ctx, "/api/health", &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// Logs fetches a page of daemon log lines. A negative offset asks for the
// last limit lines; follow makes the daemon hold the request briefly waiting
// for new output.
func (d *daemonAPI) Logs(ctx context.Context, offset int64, limit int, follow bool) (*api.LogTailResponse, error) {
	if d == nil {
		return nil, fmt.Errorf("api disabled in configuration")
	}
	path := fmt.Sprintf("/api/logs?offset=%d&limit=%d", offset, limit)
	client := d.client
	if follow {
		path += "&follow=1"
		// Follow requests block server side, so skip the short default timeout.
		client = &http.Client{}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	if d.token != "" {
		req.Header.Set("Authorization", "Bearer "+d.token)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("daemon responded %d for %s", resp.StatusCode, path)
	}
	var payload api.LogTailResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return &payload, nil
}
