package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeVideo()
	c.normalizeTTS()
	c.normalizePexels()
	c.normalizePublish()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.BackgroundsDir) == "" {
		c.Paths.BackgroundsDir = defaultBackgroundsDir
	}
	if c.Paths.BackgroundsDir, err = expandPath(c.Paths.BackgroundsDir); err != nil {
		return fmt.Errorf("paths.backgrounds_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.MusicDir) == "" {
		c.Paths.MusicDir = defaultMusicDir
	}
	if c.Paths.MusicDir, err = expandPath(c.Paths.MusicDir); err != nil {
		return fmt.Errorf("paths.music_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeVideo() {
	if c.Video.Width <= 0 {
		c.Video.Width = defaultVideoWidth
	}
	if c.Video.Height <= 0 {
		c.Video.Height = defaultVideoHeight
	}
	if c.Video.FPS <= 0 {
		c.Video.FPS = defaultVideoFPS
	}
	if c.Video.DefaultDurationSeconds <= 0 {
		c.Video.DefaultDurationSeconds = defaultVideoDurationSeconds
	}
	if c.Video.MinDurationSeconds <= 0 {
		c.Video.MinDurationSeconds = defaultMinDurationSeconds
	}
	if c.Video.MaxDurationSeconds <= 0 {
		c.Video.MaxDurationSeconds = defaultMaxDurationSeconds
	}
	if c.Video.NarrationBufferSeconds < 0 {
		c.Video.NarrationBufferSeconds = defaultNarrationBufferSeconds
	}
	c.Video.Preset = strings.TrimSpace(c.Video.Preset)
	if c.Video.Preset == "" {
		c.Video.Preset = defaultVideoPreset
	}
	if c.Video.CRF <= 0 {
		c.Video.CRF = defaultVideoCRF
	}
}

func (c *Config) normalizeTTS() {
	c.TTS.BaseURL = strings.TrimSpace(c.TTS.BaseURL)
	c.TTS.APIKey = strings.TrimSpace(c.TTS.APIKey)
	if c.TTS.APIKey == "" {
		if value, ok := os.LookupEnv("TTS_API_KEY"); ok {
			c.TTS.APIKey = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
			c.TTS.APIKey = strings.TrimSpace(value)
		}
	}
	c.TTS.Model = strings.TrimSpace(c.TTS.Model)
	if c.TTS.Model == "" {
		c.TTS.Model = defaultTTSModel
	}
	c.TTS.DefaultVoice = strings.TrimSpace(c.TTS.DefaultVoice)
	if c.TTS.DefaultVoice == "" {
		c.TTS.DefaultVoice = defaultTTSVoice
	}
	if c.TTS.SpeakingRate <= 0 {
		c.TTS.SpeakingRate = defaultTTSSpeakingRate
	}
	if c.TTS.LinePauseSeconds < 0 {
		c.TTS.LinePauseSeconds = defaultTTSLinePauseSeconds
	}
	if c.TTS.TimeoutSeconds <= 0 {
		c.TTS.TimeoutSeconds = defaultTTSTimeoutSeconds
	}
}

func (c *Config) normalizePexels() {
	c.Pexels.APIKey = strings.TrimSpace(c.Pexels.APIKey)
	if c.Pexels.APIKey == "" {
		if value, ok := os.LookupEnv("PEXELS_API_KEY"); ok {
			c.Pexels.APIKey = strings.TrimSpace(value)
		}
	}
	c.Pexels.BaseURL = strings.TrimSpace(c.Pexels.BaseURL)
	if c.Pexels.BaseURL == "" {
		c.Pexels.BaseURL = defaultPexelsBaseURL
	}
	if c.Pexels.RequestTimeout <= 0 {
		c.Pexels.RequestTimeout = defaultPexelsRequestTimeout
	}
}

func (c *Config) normalizePublish() {
	c.Publish.UploadURL = strings.TrimSpace(c.Publish.UploadURL)
	c.Publish.AccessToken = strings.TrimSpace(c.Publish.AccessToken)
	if c.Publish.AccessToken == "" {
		if value, ok := os.LookupEnv("PUBLISH_ACCESS_TOKEN"); ok {
			c.Publish.AccessToken = strings.TrimSpace(value)
		}
	}
	if c.Publish.TimeoutSeconds <= 0 {
		c.Publish.TimeoutSeconds = defaultPublishTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
