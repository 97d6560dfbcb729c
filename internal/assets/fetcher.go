// Package assets implements the fetch stage: concurrent acquisition of the
// background clip, the music bed, and the narration track for one queued
// video. Every acquisition failure degrades to a documented fallback and is
// recorded on the item; only invalid input or a dead staging directory fails
// the stage.
package assets

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"verseline/internal/config"
	"verseline/internal/logging"
	"verseline/internal/media/ffprobe"
	"verseline/internal/poetry"
	"verseline/internal/queue"
	"verseline/internal/services"
	"verseline/internal/services/pexels"
	"verseline/internal/services/tts"
	"verseline/internal/stage"
	"verseline/internal/theme"
)

const stageName = "fetch"

var (
	videoExtensions = map[string]struct{}{".mp4": {}, ".mov": {}, ".webm": {}, ".mkv": {}}
	audioExtensions = map[string]struct{}{".mp3": {}, ".wav": {}, ".m4a": {}, ".ogg": {}, ".flac": {}}
)

// Narrator produces a narration file for the given request.
type Narrator interface {
	Synthesize(ctx context.Context, req tts.Request) (string, error)
}

// BackgroundSource searches and downloads stock footage.
type BackgroundSource interface {
	Enabled() bool
	SearchPortrait(ctx context.Context, keywords []string) ([]pexels.Video, error)
	Download(ctx context.Context, file pexels.VideoFile, destPath string) error
}

// Fetcher acquires all media inputs for one queued video.
type Fetcher struct {
	store    *queue.Store
	cfg      *config.Config
	logger   *slog.Logger
	source   BackgroundSource
	narrator Narrator
	probe    func(ctx context.Context, binary, path string) (ffprobe.Result, error)
}

// NewFetcher constructs the fetch stage handler with its default
// collaborators.
func NewFetcher(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Fetcher {
	source := pexels.NewClient(cfg.Pexels.APIKey,
		pexels.WithBaseURL(cfg.Pexels.BaseURL),
		pexels.WithTimeout(time.Duration(cfg.Pexels.RequestTimeout)*time.Second),
	)
	var narrator Narrator
	if cfg.TTS.Enabled {
		narrator = tts.NewChain(cfg, logger)
	}
	return NewFetcherWithDependencies(cfg, store, logger, source, narrator)
}

// NewFetcherWithDependencies allows injecting custom collaborators (used for tests).
func NewFetcherWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, source BackgroundSource, narrator Narrator) *Fetcher {
	f := &Fetcher{
		store:    store,
		cfg:      cfg,
		source:   source,
		narrator: narrator,
		probe:    ffprobe.Inspect,
	}
	f.SetLogger(logger)
	return f
}

// SetLogger updates the fetcher's logging destination.
func (f *Fetcher) SetLogger(logger *slog.Logger) {
	f.logger = logging.NewComponentLogger(logger, "fetcher")
}

// WithProber injects a custom media prober for tests.
func (f *Fetcher) WithProber(probe func(ctx context.Context, binary, path string) (ffprobe.Result, error)) {
	if f != nil && probe != nil {
		f.probe = probe
	}
}

// Prepare initializes fetch progress tracking.
func (f *Fetcher) Prepare(ctx context.Context, item *queue.Item) error {
	item.InitProgress("Fetching", "Acquiring background, music, and narration")
	return nil
}

// Execute acquires the three media layers concurrently. The goroutines only
// surface context cancellation; every provider failure downgrades its layer
// to the documented fallback.
func (f *Fetcher) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, f.logger)

	poem, err := stage.ParsePoem(item.PoetryJSON)
	if err != nil {
		return err
	}

	th, ok := theme.Get(item.Theme)
	if !ok {
		th = theme.Default()
	}

	assetDir := filepath.Join(f.cfg.Paths.StagingDir, item.VideoID)
	if err := os.MkdirAll(assetDir, 0o755); err != nil {
		return services.Wrap(
			services.ErrConfiguration,
			stageName,
			"create staging directory",
			"Staging directory is not writable; check paths.staging_dir",
			err,
		)
	}

	fetchTimeout := time.Duration(f.cfg.Workflow.FetchTimeoutSeconds) * time.Second
	if fetchTimeout <= 0 {
		fetchTimeout = 60 * time.Second
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		fetchCtx, cancel := context.WithTimeout(groupCtx, fetchTimeout)
		defer cancel()
		item.BackgroundFile = f.fetchBackground(fetchCtx, logger, item, th, assetDir)
		return nil
	})

	group.Go(func() error {
		item.MusicFile = f.pickLocalTrack(logger)
		return nil
	})

	group.Go(func() error {
		fetchCtx, cancel := context.WithTimeout(groupCtx, fetchTimeout)
		defer cancel()
		file, seconds := f.fetchNarration(fetchCtx, logger, item, poem, assetDir)
		item.NarrationFile = file
		item.NarrationSeconds = seconds
		return nil
	})

	if err := group.Wait(); err != nil {
		return services.Wrap(services.ErrTransient, stageName, "acquire assets", "Asset acquisition interrupted", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	item.SetProgressComplete("Assets ready", fmt.Sprintf(
		"background=%s music=%s narration=%s",
		presence(item.BackgroundFile), presence(item.MusicFile), presence(item.NarrationFile),
	))
	logger.Info("assets acquired",
		logging.String(logging.FieldEventType, "assets_acquired"),
		logging.Bool("background", item.BackgroundFile != ""),
		logging.Bool("music", item.MusicFile != ""),
		logging.Bool("narration", item.NarrationFile != ""),
	)
	return nil
}

// HealthCheck verifies the staging directory is writable.
func (f *Fetcher) HealthCheck(ctx context.Context) stage.Health {
	if err := os.MkdirAll(f.cfg.Paths.StagingDir, 0o755); err != nil {
		return stage.Unhealthy(stageName, fmt.Sprintf("staging directory unavailable: %v", err))
	}
	return stage.Healthy(stageName)
}

// fetchBackground tries, in order: the caller-supplied URL, a stock footage
// search, and the local background pool. An empty return selects the solid
// accent-color fallback at render time.
func (f *Fetcher) fetchBackground(ctx context.Context, logger *slog.Logger, item *queue.Item, th theme.Theme, assetDir string) string {
	dest := filepath.Join(assetDir, "background.mp4")

	if url := strings.TrimSpace(item.CustomBackgroundURL); url != "" {
		if err := f.source.Download(ctx, pexels.VideoFile{Link: url}, dest); err != nil {
			logger.Warn("custom background download failed", logging.Error(err), logging.String("url", url))
		} else if f.validVideo(ctx, dest) {
			return dest
		}
	}

	if f.source != nil && f.source.Enabled() {
		videos, err := f.source.SearchPortrait(ctx, th.BackgroundKeywords)
		if err != nil {
			logger.Warn("stock footage search failed", logging.Error(err))
		}
		for _, video := range videos {
			file, ok := pexels.BestPortraitFile(video)
			if !ok {
				continue
			}
			if err := f.source.Download(ctx, file, dest); err != nil {
				logger.Warn("stock footage download failed", logging.Error(err), logging.Int("video_id", video.ID))
				continue
			}
			if f.validVideo(ctx, dest) {
				return dest
			}
		}
	}

	if local := pickRandomFile(f.cfg.Paths.BackgroundsDir, videoExtensions); local != "" {
		if f.validVideo(ctx, local) {
			return local
		}
		logger.Warn("local background unreadable", logging.String("path", local))
	}

	logger.Info("no background available, render will use a solid fill")
	return ""
}

func (f *Fetcher) pickLocalTrack(logger *slog.Logger) string {
	track := pickRandomFile(f.cfg.Paths.MusicDir, audioExtensions)
	if track == "" {
		logger.Info("no music track available, render will be narration-only or silent")
	}
	return track
}

// fetchNarration synthesizes speech for the poem. Chain failure means no
// narration: the video falls back to its nominal duration.
func (f *Fetcher) fetchNarration(ctx context.Context, logger *slog.Logger, item *queue.Item, poem poetry.Poem, assetDir string) (string, float64) {
	if f.narrator == nil || !item.NarrationEnabled {
		return "", 0
	}

	rate := item.SpeakingRate
	if rate <= 0 {
		rate = f.cfg.TTS.SpeakingRate
	}
	voice := strings.TrimSpace(item.VoiceStyle)
	if voice == "" {
		voice = f.cfg.TTS.DefaultVoice
	}

	dest := filepath.Join(assetDir, "narration.mp3")
	provider, err := f.narrator.Synthesize(ctx, tts.Request{
		Text:       poetry.SpeechText(poem.Lines),
		Voice:      voice,
		Rate:       rate,
		OutputPath: dest,
	})
	if err != nil {
		logger.Warn("narration unavailable, falling back to nominal duration", logging.Error(err))
		return "", 0
	}

	probed, err := f.probe(ctx, f.cfg.FFprobeBinary(), dest)
	if err != nil || probed.DurationSeconds() <= 0 {
		logger.Warn("narration produced but unreadable, discarding",
			logging.Error(err),
			logging.String("provider", provider),
		)
		_ = os.Remove(dest)
		return "", 0
	}

	logger.Info("narration ready",
		logging.String("provider", provider),
		logging.Float64("duration_seconds", probed.DurationSeconds()),
	)
	return dest, probed.DurationSeconds()
}

func (f *Fetcher) validVideo(ctx context.Context, path string) bool {
	probed, err := f.probe(ctx, f.cfg.FFprobeBinary(), path)
	if err != nil {
		return false
	}
	return probed.VideoStreamCount() > 0 && probed.DurationSeconds() > 0
}

func pickRandomFile(dir string, extensions map[string]struct{}) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var candidates []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := extensions[strings.ToLower(filepath.Ext(entry.Name()))]; ok {
			candidates = append(candidates, filepath.Join(dir, entry.Name()))
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	return candidates[rand.Intn(len(candidates))]
}

func presence(path string) string {
	if path == "" {
		return "fallback"
	}
	return "ready"
}
