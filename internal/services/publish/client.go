// Package publish uploads finished videos to the remote reel endpoint. When
// publishing is disabled the local output file stands in for the remote copy
// and its file:// URL is recorded instead.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const defaultUploadTimeout = 120 * time.Second

// Metadata accompanies the uploaded video.
type Metadata struct {
	VideoID  string
	Title    string
	Theme    string
	Duration float64
}

// Client posts finished videos to the configured upload endpoint.
type Client struct {
	uploadURL   string
	accessToken string
	httpClient  *http.Client
}

// Option customizes the publish client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout bounds the upload request.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient constructs an upload client. A blank upload URL disables it.
func NewClient(uploadURL, accessToken string, opts ...Option) *Client {
	client := &Client{
		uploadURL:   strings.TrimSpace(uploadURL),
		accessToken: strings.TrimSpace(accessToken),
		httpClient:  &http.Client{Timeout: defaultUploadTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Enabled reports whether uploads are configured.
func (c *Client) Enabled() bool {
	return c != nil && c.uploadURL != ""
}

// LocalURL returns the file:// form of a finished video for disabled uploads.
func LocalURL(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return "file://" + abs
}

type uploadResponse struct {
	URL string `json:"url"`
}

// Upload sends the video as a multipart form and returns the published URL.
// When the endpoint responds without a URL the upload endpoint itself is
// returned so the item still records where the video went.
func (c *Client) Upload(ctx context.Context, videoPath string, meta Metadata) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("publish: upload url not configured")
	}
	file, err := os.Open(videoPath)
	if err != nil {
		return "", fmt.Errorf("publish: open video: %w", err)
	}
	defer file.Close()

	pipeReader, pipeWriter := io.Pipe()
	form := multipart.NewWriter(pipeWriter)
	go func() {
		err := writeForm(form, file, filepath.Base(videoPath), meta)
		if closeErr := form.Close(); err == nil {
			err = closeErr
		}
		pipeWriter.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, pipeReader)
	if err != nil {
		return "", fmt.Errorf("publish: request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("publish: upload failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return "", fmt.Errorf("publish: read response: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("publish: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded uploadResponse
	if err := json.Unmarshal(body, &decoded); err == nil && strings.TrimSpace(decoded.URL) != "" {
		return strings.TrimSpace(decoded.URL), nil
	}
	return c.uploadURL, nil
}

func writeForm(form *multipart.Writer, file io.Reader, filename string, meta Metadata) error {
	fields := map[string]string{
		"video_id": meta.VideoID,
		"title":    meta.Title,
		"theme":    meta.Theme,
		"duration": fmt.Sprintf("%.3f", meta.Duration),
	}
	for key, value := range fields {
		if value == "" {
			continue
		}
		if err := form.WriteField(key, value); err != nil {
			return err
		}
	}
	part, err := form.CreateFormFile("video", filename)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, file)
	return err
}
