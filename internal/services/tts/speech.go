package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const (
	defaultSpeechBaseURL = "https://api.openai.com/v1"
	defaultSpeechModel   = "tts-1"
	defaultSpeechVoice   = "alloy"
	defaultSpeechTimeout = 60 * time.Second
)

// SpeechClient calls an OpenAI-compatible speech synthesis endpoint.
type SpeechClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// SpeechOption customizes the speech client.
type SpeechOption func(*SpeechClient)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) SpeechOption {
	return func(c *SpeechClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewSpeechClient constructs a hosted speech synthesis provider.
func NewSpeechClient(baseURL, apiKey, model string, opts ...SpeechOption) *SpeechClient {
	client := &SpeechClient{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:     strings.TrimSpace(apiKey),
		model:      strings.TrimSpace(model),
		httpClient: &http.Client{Timeout: defaultSpeechTimeout},
	}
	if client.baseURL == "" {
		client.baseURL = defaultSpeechBaseURL
	}
	if client.model == "" {
		client.model = defaultSpeechModel
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Name identifies the provider in chain diagnostics.
func (c *SpeechClient) Name() string { return "speech-api" }

type speechRequest struct {
	Model  string  `json:"model"`
	Input  string  `json:"input"`
	Voice  string  `json:"voice"`
	Speed  float64 `json:"speed,omitempty"`
	Format string  `json:"response_format,omitempty"`
}

// Synthesize posts the narration text and streams the returned audio to the
// requested output path.
func (c *SpeechClient) Synthesize(ctx context.Context, req Request) error {
	if c.apiKey == "" {
		return fmt.Errorf("speech api: api key required")
	}
	endpoint, err := url.JoinPath(c.baseURL, "/audio/speech")
	if err != nil {
		return fmt.Errorf("speech api: build url: %w", err)
	}
	voice := strings.TrimSpace(req.Voice)
	if voice == "" {
		voice = defaultSpeechVoice
	}
	payload := speechRequest{
		Model:  c.model,
		Input:  req.Text,
		Voice:  voice,
		Speed:  req.Rate,
		Format: "mp3",
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("speech api: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("speech api: request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("speech api: request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("speech api: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	out, err := os.Create(req.OutputPath)
	if err != nil {
		return fmt.Errorf("speech api: create output: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("speech api: write audio: %w", err)
	}
	return nil
}
