// Package pexels searches and downloads portrait stock footage used as
// render backgrounds. A missing API key disables the provider; callers fall
// back to the local background pool or a solid fill.
package pexels

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL     = "https://api.pexels.com/videos"
	defaultHTTPTimeout = 30 * time.Second
	defaultPerPage     = 10
)

// Client wraps the Pexels video search API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option customizes the Pexels client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the default API base (useful for tests).
func WithBaseURL(base string) Option {
	return func(c *Client) {
		base = strings.TrimSpace(base)
		if base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithTimeout bounds every API and download request.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient constructs a Pexels API client.
func NewClient(apiKey string, opts ...Option) *Client {
	client := &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

// Video is one search hit with its downloadable renditions.
type Video struct {
	ID         int         `json:"id"`
	Duration   float64     `json:"duration"`
	Width      int         `json:"width"`
	Height     int         `json:"height"`
	VideoFiles []VideoFile `json:"video_files"`
}

// VideoFile is a single rendition of a video.
type VideoFile struct {
	Link    string `json:"link"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Quality string `json:"quality"`
}

type searchResponse struct {
	Videos []Video `json:"videos"`
}

// SearchPortrait queries for portrait-orientation footage matching the
// keywords.
func (c *Client) SearchPortrait(ctx context.Context, keywords []string) ([]Video, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("pexels: api key not configured")
	}
	query := strings.TrimSpace(strings.Join(keywords, " "))
	if query == "" {
		return nil, fmt.Errorf("pexels: search keywords required")
	}

	endpoint, err := url.Parse(c.baseURL + "/search")
	if err != nil {
		return nil, fmt.Errorf("pexels: build url: %w", err)
	}
	values := endpoint.Query()
	values.Set("query", query)
	values.Set("orientation", "portrait")
	values.Set("per_page", strconv.Itoa(defaultPerPage))
	endpoint.RawQuery = values.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("pexels: request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pexels: search failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("pexels: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("pexels: decode response: %w", err)
	}
	return decoded.Videos, nil
}

// BestPortraitFile picks the tallest portrait rendition, preferring HD when
// heights tie. Returns false when no rendition is portrait.
func BestPortraitFile(video Video) (VideoFile, bool) {
	var best VideoFile
	found := false
	for _, file := range video.VideoFiles {
		if file.Height <= file.Width || file.Link == "" {
			continue
		}
		if !found || file.Height > best.Height ||
			(file.Height == best.Height && file.Quality == "hd" && best.Quality != "hd") {
			best = file
			found = true
		}
	}
	return best, found
}

// Download streams a rendition to destPath. Partial downloads are removed.
func (c *Client) Download(ctx context.Context, file VideoFile, destPath string) error {
	if file.Link == "" {
		return fmt.Errorf("pexels: rendition has no link")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link, nil)
	if err != nil {
		return fmt.Errorf("pexels: download request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("pexels: download failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("pexels: download http %d", resp.StatusCode)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("pexels: create download target: %w", err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		_ = os.Remove(destPath)
		return fmt.Errorf("pexels: write download: %w", err)
	}
	return out.Close()
}
