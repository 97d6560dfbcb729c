// Package publisher implements the publish stage: uploading a rendered video
// to the configured reel endpoint, or recording its local URL when uploads
// are disabled.
package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"verseline/internal/config"
	"verseline/internal/logging"
	"verseline/internal/notifications"
	"verseline/internal/queue"
	"verseline/internal/services"
	publishpkg "verseline/internal/services/publish"
	"verseline/internal/stage"
)

const stageName = "publish"

// Uploader sends a finished video somewhere public.
type Uploader interface {
	Enabled() bool
	Upload(ctx context.Context, videoPath string, meta publishpkg.Metadata) (string, error)
}

// Publisher manages the final stage of the pipeline.
type Publisher struct {
	store    *queue.Store
	cfg      *config.Config
	logger   *slog.Logger
	uploader Uploader
	notifier notifications.Service
}

// NewPublisher constructs the publish stage handler.
func NewPublisher(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Publisher {
	client := publishpkg.NewClient(cfg.Publish.UploadURL, cfg.Publish.AccessToken,
		publishpkg.WithTimeout(time.Duration(cfg.Publish.TimeoutSeconds)*time.Second),
	)
	return NewPublisherWithDependencies(cfg, store, logger, client, notifications.NewService(cfg))
}

// NewPublisherWithDependencies allows injecting custom dependencies (used for tests).
func NewPublisherWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, uploader Uploader, notifier notifications.Service) *Publisher {
	p := &Publisher{
		store:    store,
		cfg:      cfg,
		uploader: uploader,
		notifier: notifier,
	}
	p.SetLogger(logger)
	return p
}

// SetLogger updates the publisher's logging destination.
func (p *Publisher) SetLogger(logger *slog.Logger) {
	p.logger = logging.NewComponentLogger(logger, "publisher")
}

// Prepare initializes publish progress tracking.
func (p *Publisher) Prepare(ctx context.Context, item *queue.Item) error {
	item.InitProgress("Publishing", "Uploading finished video")
	return nil
}

// Execute uploads the rendered file, or records its local URL when uploads
// are disabled. Upload failures surface to the caller: the orchestration
// layer decides whether to retry; nothing is retried here.
func (p *Publisher) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, p.logger)

	output := strings.TrimSpace(item.OutputFile)
	if output == "" {
		return services.Wrap(
			services.ErrValidation,
			stageName,
			"validate inputs",
			"No rendered file available to publish; rerun the render stage",
			nil,
		)
	}
	if _, err := os.Stat(output); err != nil {
		return services.Wrap(
			services.ErrNotFound,
			stageName,
			"locate rendered file",
			"Rendered file disappeared before publishing; rerun the render stage",
			err,
		)
	}

	if !p.cfg.Publish.Enabled || p.uploader == nil || !p.uploader.Enabled() {
		item.PublishedURL = publishpkg.LocalURL(output)
		item.SetProgressComplete("Published", "Upload disabled, recorded local file URL")
		logger.Info("publish skipped, local URL recorded",
			logging.String("url", item.PublishedURL),
		)
		p.cleanupStaging(logger, item)
		return nil
	}

	title := ""
	if poem, err := stage.ParsePoem(item.PoetryJSON); err == nil {
		title = poem.Title
	}

	url, err := p.uploader.Upload(ctx, output, publishpkg.Metadata{
		VideoID:  item.VideoID,
		Title:    title,
		Theme:    item.Theme,
		Duration: item.RealizedDuration,
	})
	if err != nil {
		return services.Wrap(
			services.ErrTransient,
			stageName,
			"upload video",
			"Upload to the reel endpoint failed; the item can be retried",
			err,
		)
	}

	item.PublishedURL = url
	item.SetProgressComplete("Published", fmt.Sprintf("Available at %s", url))
	if p.notifier != nil {
		_ = p.notifier.NotifyPublishCompleted(ctx, item.VideoID, url)
	}
	logger.Info("video published",
		logging.String(logging.FieldEventType, "publish_complete"),
		logging.String("url", url),
	)
	p.cleanupStaging(logger, item)
	return nil
}

// cleanupStaging drops the item's staging directory once its output has left
// the pipeline. A removal failure never fails the stage.
func (p *Publisher) cleanupStaging(logger *slog.Logger, item *queue.Item) {
	if err := stage.CleanupStaging(p.cfg.Paths.StagingDir, item.VideoID); err != nil {
		logger.Warn("failed to remove staging directory", logging.Error(err))
	}
}

// HealthCheck reports upload configuration state.
func (p *Publisher) HealthCheck(ctx context.Context) stage.Health {
	if p.cfg.Publish.Enabled && (p.uploader == nil || !p.uploader.Enabled()) {
		return stage.Unhealthy(stageName, "publishing enabled but upload endpoint not configured")
	}
	return stage.Healthy(stageName)
}
