package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateVideo(); err != nil {
		return err
	}
	if err := c.validatePoetry(); err != nil {
		return err
	}
	if err := c.validateTTS(); err != nil {
		return err
	}
	if err := c.validatePublish(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateVideo() error {
	if c.Video.Width%2 != 0 || c.Video.Height%2 != 0 {
		return errors.New("video.width and video.height must be even for the h264 encoder")
	}
	if c.Video.MinDurationSeconds >= c.Video.MaxDurationSeconds {
		return errors.New("video.min_duration_seconds must be less than video.max_duration_seconds")
	}
	if c.Video.DefaultDurationSeconds < c.Video.MinDurationSeconds ||
		c.Video.DefaultDurationSeconds > c.Video.MaxDurationSeconds {
		return errors.New("video.default_duration_seconds must fall within the min/max duration bounds")
	}
	if c.Video.CRF > 51 {
		return errors.New("video.crf must be between 1 and 51")
	}
	return nil
}

func (c *Config) validatePoetry() error {
	if c.Poetry.MinLines < 3 {
		return errors.New("poetry.min_lines must be at least 3")
	}
	if c.Poetry.MaxLines > 12 {
		return errors.New("poetry.max_lines must be at most 12")
	}
	if c.Poetry.MinLines > c.Poetry.MaxLines {
		return errors.New("poetry.min_lines must not exceed poetry.max_lines")
	}
	return nil
}

func (c *Config) validateTTS() error {
	if c.TTS.SpeakingRate <= 0 || c.TTS.SpeakingRate > 2 {
		return errors.New("tts.speaking_rate must be between 0 and 2")
	}
	return nil
}

func (c *Config) validatePublish() error {
	if !c.Publish.Enabled {
		return nil
	}
	if strings.TrimSpace(c.Publish.UploadURL) == "" {
		return errors.New("publish.upload_url must be set when publish.enabled is true")
	}
	if strings.TrimSpace(c.Publish.AccessToken) == "" {
		return errors.New("publish.access_token must be set when publish.enabled is true (or set PUBLISH_ACCESS_TOKEN)")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if err := ensurePositiveMap(map[string]int{
		"workflow.queue_poll_interval":   c.Workflow.QueuePollInterval,
		"workflow.error_retry_interval":  c.Workflow.ErrorRetryInterval,
		"workflow.fetch_timeout_seconds": c.Workflow.FetchTimeoutSeconds,
		"notifications.request_timeout":  c.Notifications.RequestTimeout,
		"tts.timeout_seconds":            c.TTS.TimeoutSeconds,
		"pexels.request_timeout":         c.Pexels.RequestTimeout,
		"publish.timeout_seconds":        c.Publish.TimeoutSeconds,
	}); err != nil {
		return err
	}
	if c.Workflow.HeartbeatInterval <= 0 {
		return errors.New("workflow.heartbeat_interval must be positive")
	}
	if c.Workflow.HeartbeatTimeout <= 0 {
		return errors.New("workflow.heartbeat_timeout must be positive")
	}
	if c.Workflow.HeartbeatTimeout <= c.Workflow.HeartbeatInterval {
		return errors.New("workflow.heartbeat_timeout must be greater than workflow.heartbeat_interval")
	}
	if c.Workflow.RenderWorkers < 0 {
		return errors.New("workflow.render_workers must be >= 0 (0 sizes the pool from host CPU count)")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
