package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	StagingDir     string `toml:"staging_dir"`
	OutputDir      string `toml:"output_dir"`
	LogDir         string `toml:"log_dir"`
	BackgroundsDir string `toml:"backgrounds_dir"`
	MusicDir       string `toml:"music_dir"`
	APIBind        string `toml:"api_bind"`
	APIToken       string `toml:"api_token"`
}

// Video contains configuration for the rendered output format.
type Video struct {
	Width                  int     `toml:"width"`
	Height                 int     `toml:"height"`
	FPS                    int     `toml:"fps"`
	DefaultDurationSeconds float64 `toml:"default_duration_seconds"`
	MinDurationSeconds     float64 `toml:"min_duration_seconds"`
	MaxDurationSeconds     float64 `toml:"max_duration_seconds"`
	NarrationBufferSeconds float64 `toml:"narration_buffer_seconds"`
	Preset                 string  `toml:"preset"`
	CRF                    int     `toml:"crf"`
}

// Poetry contains configuration for poem selection and line windows.
type Poetry struct {
	MinLines int `toml:"min_lines"`
	MaxLines int `toml:"max_lines"`
}

// TTS contains configuration for narration synthesis.
type TTS struct {
	Enabled          bool    `toml:"enabled"`
	BaseURL          string  `toml:"base_url"`
	APIKey           string  `toml:"api_key"`
	Model            string  `toml:"model"`
	DefaultVoice     string  `toml:"default_voice"`
	SpeakingRate     float64 `toml:"speaking_rate"`
	LinePauseSeconds float64 `toml:"line_pause_seconds"`
	TimeoutSeconds   int     `toml:"timeout_seconds"`
}

// Pexels contains configuration for the stock video API.
type Pexels struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Publish contains configuration for uploading finished videos.
type Publish struct {
	Enabled        bool   `toml:"enabled"`
	UploadURL      string `toml:"upload_url"`
	AccessToken    string `toml:"access_token"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Render         bool   `toml:"render"`
	Publish        bool   `toml:"publish"`
	Queue          bool   `toml:"queue"`
	Review         bool   `toml:"review"`
	Errors         bool   `toml:"errors"`
}

// Workflow contains configuration for daemon timing and intervals.
type Workflow struct {
	QueuePollInterval   int `toml:"queue_poll_interval"`
	ErrorRetryInterval  int `toml:"error_retry_interval"`
	HeartbeatInterval   int `toml:"heartbeat_interval"`
	HeartbeatTimeout    int `toml:"heartbeat_timeout"`
	RenderWorkers       int `toml:"render_workers"`
	FetchTimeoutSeconds int `toml:"fetch_timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for Verseline.
//
// Configuration sections by subsystem:
//   - Paths: directories and API bind address
//   - Video: output resolution, frame rate, and duration bounds
//   - Poetry: poem line window for caption layout
//   - TTS: narration synthesis providers
//   - Pexels: stock background video retrieval
//   - Publish: upload of finished videos
//   - Notifications: ntfy push notification settings
//   - Workflow: daemon polling intervals and worker sizing
//   - Logging: log format, level, and retention
type Config struct {
	Paths         Paths         `toml:"paths"`
	Video         Video         `toml:"video"`
	Poetry        Poetry        `toml:"poetry"`
	TTS           TTS           `toml:"tts"`
	Pexels        Pexels        `toml:"pexels"`
	Publish       Publish       `toml:"publish"`
	Notifications Notifications `toml:"notifications"`
	Workflow      Workflow      `toml:"workflow"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/verseline/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/verseline/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("verseline.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
// OutputDir is created on a best-effort basis so the daemon can run when
// external storage is temporarily unavailable.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StagingDir, c.Paths.LogDir, c.Paths.BackgroundsDir, c.Paths.MusicDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.OutputDir) != "" {
		// Best-effort to avoid failing config load when storage is offline.
		_ = os.MkdirAll(c.Paths.OutputDir, 0o755)
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable name used for composition.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for media validation.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

// EdgeTTSBinary returns the edge-tts executable name used as the second
// narration provider in the fallback chain.
func (c *Config) EdgeTTSBinary() string {
	return "edge-tts"
}

// EspeakBinary returns the espeak-ng executable name used as the last
// narration provider in the fallback chain.
func (c *Config) EspeakBinary() string {
	return "espeak-ng"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	sample := sampleConfig

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
