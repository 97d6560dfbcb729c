package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"verseline/internal/config"
)

const userAgent = "Verseline/0.1.0"

// Service defines the notification surface exposed to workflow components.
type Service interface {
	NotifyVideoQueued(ctx context.Context, videoID, themeName string) error
	NotifyRenderStarted(ctx context.Context, videoID, title string) error
	NotifyRenderCompleted(ctx context.Context, videoID, title string, duration float64) error
	NotifyPublishCompleted(ctx context.Context, videoID, url string) error
	NotifyReviewRequired(ctx context.Context, videoID, reason string) error
	NotifyQueueCompleted(ctx context.Context, processed, failed int, duration time.Duration) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		settings: cfg.Notifications,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	settings config.Notifications
}

func (n *ntfyService) NotifyVideoQueued(ctx context.Context, videoID, themeName string) error {
	if !n.settings.Queue {
		return nil
	}
	themeName = strings.TrimSpace(themeName)
	if themeName == "" {
		themeName = "default"
	}
	data := payload{
		title:   "Verseline - Queued",
		message: fmt.Sprintf("Video %s queued (%s theme)", strings.TrimSpace(videoID), themeName),
		tags:    []string{"verseline", "queue", "created"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRenderStarted(ctx context.Context, videoID, title string) error {
	if !n.settings.Render {
		return nil
	}
	data := payload{
		title:   "Verseline - Render Started",
		message: fmt.Sprintf("Rendering %s: %s", strings.TrimSpace(videoID), strings.TrimSpace(title)),
		tags:    []string{"verseline", "render", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRenderCompleted(ctx context.Context, videoID, title string, duration float64) error {
	if !n.settings.Render {
		return nil
	}
	data := payload{
		title:   "Verseline - Render Complete",
		message: fmt.Sprintf("Rendered %s: %s (%.1fs)", strings.TrimSpace(videoID), strings.TrimSpace(title), duration),
		tags:    []string{"verseline", "render", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyPublishCompleted(ctx context.Context, videoID, url string) error {
	if !n.settings.Publish {
		return nil
	}
	message := fmt.Sprintf("Published %s", strings.TrimSpace(videoID))
	if url = strings.TrimSpace(url); url != "" {
		message = fmt.Sprintf("%s\n%s", message, url)
	}
	data := payload{
		title:    "Verseline - Published",
		message:  message,
		tags:     []string{"verseline", "publish", "completed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyReviewRequired(ctx context.Context, videoID, reason string) error {
	if !n.settings.Review {
		return nil
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "manual review required"
	}
	data := payload{
		title:   "Verseline - Review Required",
		message: fmt.Sprintf("Video %s needs review: %s", strings.TrimSpace(videoID), reason),
		tags:    []string{"verseline", "review"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyQueueCompleted(ctx context.Context, processed, failed int, duration time.Duration) error {
	if !n.settings.Queue {
		return nil
	}
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	durationText := duration.String()
	if duration == 0 {
		durationText = "0s"
	}

	var title, message string
	if failed == 0 {
		title = "Verseline - Queue Complete"
		message = fmt.Sprintf("Queue drained: %d videos finished in %s", processed, durationText)
	} else {
		title = "Verseline - Queue Complete (with errors)"
		message = fmt.Sprintf("Queue drained: %d succeeded, %d failed in %s", processed, failed, durationText)
	}

	data := payload{
		title:   title,
		message: message,
		tags:    []string{"verseline", "queue", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.settings.Errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Verseline - Error",
		message:  builder.String(),
		tags:     []string{"verseline", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Verseline - Test",
		message:  "Notification system test",
		tags:     []string{"verseline", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyVideoQueued(context.Context, string, string) error              { return nil }
func (noopService) NotifyRenderStarted(context.Context, string, string) error            { return nil }
func (noopService) NotifyRenderCompleted(context.Context, string, string, float64) error { return nil }
func (noopService) NotifyPublishCompleted(context.Context, string, string) error         { return nil }
func (noopService) NotifyReviewRequired(context.Context, string, string) error           { return nil }
func (noopService) NotifyQueueCompleted(context.Context, int, int, time.Duration) error  { return nil }
func (noopService) NotifyError(context.Context, error, string) error                     { return nil }
func (noopService) TestNotification(context.Context) error                               { return nil }
