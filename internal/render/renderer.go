// Package render implements the render stage: it turns a fetched queue item
// into one encoded video through the composition engine.
package render

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"verseline/internal/compose"
	"verseline/internal/config"
	"verseline/internal/deps"
	"verseline/internal/fileutil"
	"verseline/internal/logging"
	"verseline/internal/media/ffprobe"
	"verseline/internal/notifications"
	"verseline/internal/queue"
	"verseline/internal/services"
	"verseline/internal/stage"
	"verseline/internal/theme"
)

const stageName = "render"

// Renderer manages composition and encoding of queued videos.
type Renderer struct {
	store    *queue.Store
	cfg      *config.Config
	logger   *slog.Logger
	engine   *compose.Renderer
	notifier notifications.Service
	probe    func(ctx context.Context, binary, path string) (ffprobe.Result, error)
}

// NewRenderer constructs the render stage handler.
func NewRenderer(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Renderer {
	engine := compose.NewRenderer(cfg.FFmpegBinary(), cfg.FFprobeBinary(), logger)
	return NewRendererWithDependencies(cfg, store, logger, engine, notifications.NewService(cfg))
}

// NewRendererWithDependencies allows injecting custom dependencies (used for tests).
func NewRendererWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, engine *compose.Renderer, notifier notifications.Service) *Renderer {
	r := &Renderer{
		store:    store,
		cfg:      cfg,
		engine:   engine,
		notifier: notifier,
		probe:    ffprobe.Inspect,
	}
	r.SetLogger(logger)
	return r
}

// SetLogger updates the renderer's logging destination.
func (r *Renderer) SetLogger(logger *slog.Logger) {
	r.logger = logging.NewComponentLogger(logger, "render")
}

// WithProber injects a custom media prober for tests.
func (r *Renderer) WithProber(probe func(ctx context.Context, binary, path string) (ffprobe.Result, error)) {
	if r != nil && probe != nil {
		r.probe = probe
	}
}

// Prepare initializes render progress tracking.
func (r *Renderer) Prepare(ctx context.Context, item *queue.Item) error {
	item.InitProgress("Rendering", "Composing timeline")
	return nil
}

// Execute composes and encodes the video. The encode happens in a per-item
// scratch directory that is removed on every exit path; the finished file
// only appears under the output directory once it has been verified.
func (r *Renderer) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, r.logger)

	poem, err := stage.ParsePoem(item.PoetryJSON)
	if err != nil {
		return err
	}
	th, ok := theme.Get(item.Theme)
	if !ok {
		th = theme.Default()
	}
	mode, ok := theme.ParseAnimationMode(item.AnimationMode)
	if !ok {
		mode = th.DefaultAnimation
	}

	request := compose.Request{
		Lines:        poem.Lines,
		Theme:        th,
		Animation:    mode,
		DurationHint: item.DurationHint,
		Background:   r.loadClip(ctx, logger, item.BackgroundFile, "background"),
		Music:        r.loadClip(ctx, logger, item.MusicFile, "music"),
		Narration:    r.narrationClip(ctx, logger, item),
	}

	plan, err := compose.Compose(request, compose.Settings{
		Width:           r.cfg.Video.Width,
		Height:          r.cfg.Video.Height,
		FPS:             r.cfg.Video.FPS,
		Preset:          r.cfg.Video.Preset,
		CRF:             r.cfg.Video.CRF,
		NarrationBuffer: r.cfg.Video.NarrationBufferSeconds,
	})
	if err != nil {
		return services.Wrap(
			services.ErrValidation,
			stageName,
			"compose timeline",
			"Video could not be composed from the queued request; check poem content and video settings",
			err,
		)
	}

	if r.notifier != nil {
		_ = r.notifier.NotifyRenderStarted(ctx, item.VideoID, poem.Title)
	}
	item.SetProgress("Rendering",
		fmt.Sprintf("Encoding %.1fs video, %d caption rows", plan.Duration, len(plan.Timeline.Captions())), 25)

	scratchDir := filepath.Join(r.cfg.Paths.StagingDir, item.VideoID, "render")
	if err := os.MkdirAll(scratchDir, 0o755); err != nil {
		return services.Wrap(
			services.ErrConfiguration,
			stageName,
			"create scratch directory",
			"Staging directory is not writable; check paths.staging_dir",
			err,
		)
	}
	defer func() {
		if err := os.RemoveAll(scratchDir); err != nil {
			logger.Warn("failed to remove render scratch directory", logging.Error(err))
		}
	}()

	scratchOut := filepath.Join(scratchDir, item.VideoID+".mp4")
	result, err := r.engine.Render(ctx, plan, scratchOut)
	if err != nil {
		return services.Wrap(
			services.ErrExternalTool,
			stageName,
			"encode video",
			"ffmpeg failed to encode the composed timeline",
			err,
		)
	}

	finalPath := filepath.Join(r.cfg.Paths.OutputDir, item.VideoID+".mp4")
	if err := publishArtifact(result.Path, finalPath); err != nil {
		return services.Wrap(
			services.ErrConfiguration,
			stageName,
			"move output",
			"Could not place the encoded video in the output directory",
			err,
		)
	}

	item.OutputFile = finalPath
	item.RealizedDuration = result.Duration
	item.SetProgressComplete("Rendered", fmt.Sprintf("Encoded %.1fs video", result.Duration))

	if r.notifier != nil {
		_ = r.notifier.NotifyRenderCompleted(ctx, item.VideoID, poem.Title, result.Duration)
	}
	logger.Info("video rendered",
		logging.String(logging.FieldEventType, "render_complete"),
		logging.String("output", finalPath),
		logging.Float64("duration_seconds", result.Duration),
	)
	return nil
}

// HealthCheck verifies the media toolchain is present.
func (r *Renderer) HealthCheck(ctx context.Context) stage.Health {
	statuses := deps.CheckBinaries([]deps.Requirement{
		{Name: "FFmpeg", Command: r.cfg.FFmpegBinary()},
		{Name: "FFprobe", Command: r.cfg.FFprobeBinary()},
	})
	if missing := deps.MissingRequired(statuses); len(missing) > 0 {
		return stage.Unhealthy(stageName, fmt.Sprintf("missing binaries: %s", strings.Join(missing, ", ")))
	}
	return stage.Healthy(stageName)
}

// loadClip probes a fetched media file. Any problem degrades to a nil clip
// and is logged, never surfaced.
func (r *Renderer) loadClip(ctx context.Context, logger *slog.Logger, path, layer string) *compose.Clip {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	probed, err := r.probe(ctx, r.cfg.FFprobeBinary(), path)
	if err != nil || probed.DurationSeconds() <= 0 {
		logger.Warn("fetched media unreadable, using fallback",
			logging.String("layer", layer),
			logging.String("path", path),
			logging.Error(err),
		)
		return nil
	}
	return &compose.Clip{Path: path, Duration: probed.DurationSeconds()}
}

func (r *Renderer) narrationClip(ctx context.Context, logger *slog.Logger, item *queue.Item) *compose.Clip {
	if strings.TrimSpace(item.NarrationFile) == "" {
		return nil
	}
	if item.NarrationSeconds > 0 {
		return &compose.Clip{Path: item.NarrationFile, Duration: item.NarrationSeconds}
	}
	return r.loadClip(ctx, logger, item.NarrationFile, "narration")
}

// publishArtifact moves the verified encode into the output directory. Rename
// is atomic on one filesystem; across filesystems fall back to verified copy.
func publishArtifact(src, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	if err := os.Rename(src, dest); err == nil {
		return nil
	}
	if err := fileutil.CopyFileVerified(src, dest); err != nil {
		return err
	}
	return os.Remove(src)
}
