package assets_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"verseline/internal/assets"
	"verseline/internal/config"
	"verseline/internal/logging"
	"verseline/internal/media/ffprobe"
	"verseline/internal/poetry"
	"verseline/internal/queue"
	"verseline/internal/services/pexels"
	"verseline/internal/services/tts"
	"verseline/internal/testsupport"
)

type fakeSource struct {
	enabled     bool
	videos      []pexels.Video
	searchErr   error
	downloadErr error
	downloads   []string
}

func (s *fakeSource) Enabled() bool { return s.enabled }

func (s *fakeSource) SearchPortrait(ctx context.Context, keywords []string) ([]pexels.Video, error) {
	return s.videos, s.searchErr
}

func (s *fakeSource) Download(ctx context.Context, file pexels.VideoFile, destPath string) error {
	if s.downloadErr != nil {
		return s.downloadErr
	}
	s.downloads = append(s.downloads, file.Link)
	return os.WriteFile(destPath, []byte("video"), 0o644)
}

type fakeNarrator struct {
	err   error
	calls int
}

func (n *fakeNarrator) Synthesize(ctx context.Context, req tts.Request) (string, error) {
	n.calls++
	if n.err != nil {
		return "", n.err
	}
	if err := os.WriteFile(req.OutputPath, []byte("audio"), 0o644); err != nil {
		return "", err
	}
	return "fake-provider", nil
}

func goodProbe(ctx context.Context, binary, path string) (ffprobe.Result, error) {
	return ffprobe.Result{
		Streams: []ffprobe.Stream{{CodecType: "video"}, {CodecType: "audio"}},
		Format:  ffprobe.Format{Duration: "12.3"},
	}, nil
}

func poemJSON(t *testing.T) string {
	t.Helper()
	encoded, err := poetry.Encode(poetry.Poem{
		Title:  "Test Poem",
		Author: "Anonymous",
		Lines:  []string{"First line", "Second line", "Third line", "Fourth line"},
	})
	if err != nil {
		t.Fatalf("encode poem: %v", err)
	}
	return encoded
}

func newFetcher(t *testing.T, cfg *config.Config, source assets.BackgroundSource, narrator assets.Narrator) (*assets.Fetcher, *queue.Store) {
	t.Helper()
	store := testsupport.MustOpenStore(t, cfg)
	fetcher := assets.NewFetcherWithDependencies(cfg, store, logging.NewNop(), source, narrator)
	fetcher.WithProber(goodProbe)
	return fetcher, store
}

func TestExecuteAcquiresAllLayers(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := os.MkdirAll(cfg.Paths.MusicDir, 0o755); err != nil {
		t.Fatalf("mkdir music: %v", err)
	}
	track := filepath.Join(cfg.Paths.MusicDir, "calm.mp3")
	if err := os.WriteFile(track, []byte("music"), 0o644); err != nil {
		t.Fatalf("write track: %v", err)
	}

	source := &fakeSource{
		enabled: true,
		videos: []pexels.Video{{
			ID: 7,
			VideoFiles: []pexels.VideoFile{
				{Link: "https://cdn.example/bg.mp4", Width: 1080, Height: 1920, Quality: "hd"},
			},
		}},
	}
	narrator := &fakeNarrator{}
	fetcher, store := newFetcher(t, cfg, source, narrator)

	item := testsupport.NewVideo(t, store, queue.Request{
		PoetryJSON:       poemJSON(t),
		NarrationEnabled: true,
	})
	if err := fetcher.Prepare(context.Background(), item); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := fetcher.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if item.BackgroundFile == "" {
		t.Fatal("background not acquired")
	}
	if item.MusicFile != track {
		t.Fatalf("music = %q, want %q", item.MusicFile, track)
	}
	if item.NarrationFile == "" || item.NarrationSeconds != 12.3 {
		t.Fatalf("narration = %q (%vs)", item.NarrationFile, item.NarrationSeconds)
	}
	if narrator.calls != 1 {
		t.Fatalf("narrator calls = %d", narrator.calls)
	}
	if len(source.downloads) != 1 {
		t.Fatalf("downloads = %v", source.downloads)
	}
}

func TestExecuteDegradesOnEveryProviderFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	source := &fakeSource{enabled: true, searchErr: errors.New("api down")}
	narrator := &fakeNarrator{err: errors.New("all providers failed")}
	fetcher, store := newFetcher(t, cfg, source, narrator)

	item := testsupport.NewVideo(t, store, queue.Request{
		PoetryJSON:       poemJSON(t),
		NarrationEnabled: true,
	})
	if err := fetcher.Execute(context.Background(), item); err != nil {
		t.Fatalf("degradable failures must not fail the stage: %v", err)
	}
	if item.BackgroundFile != "" {
		t.Fatalf("background = %q, want solid fallback", item.BackgroundFile)
	}
	if item.MusicFile != "" {
		t.Fatalf("music = %q, want silence fallback", item.MusicFile)
	}
	if item.NarrationFile != "" || item.NarrationSeconds != 0 {
		t.Fatalf("narration = %q (%vs), want absent", item.NarrationFile, item.NarrationSeconds)
	}
}

func TestExecuteUsesCustomBackgroundURL(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	source := &fakeSource{enabled: true}
	fetcher, store := newFetcher(t, cfg, source, nil)

	item := testsupport.NewVideo(t, store, queue.Request{
		PoetryJSON:          poemJSON(t),
		CustomBackgroundURL: "https://cdn.example/custom.mp4",
	})
	if err := fetcher.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(source.downloads) != 1 || source.downloads[0] != "https://cdn.example/custom.mp4" {
		t.Fatalf("downloads = %v, want the custom url", source.downloads)
	}
	if item.BackgroundFile == "" {
		t.Fatal("custom background not recorded")
	}
}

func TestExecuteFallsBackToLocalBackgroundPool(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := os.MkdirAll(cfg.Paths.BackgroundsDir, 0o755); err != nil {
		t.Fatalf("mkdir backgrounds: %v", err)
	}
	local := filepath.Join(cfg.Paths.BackgroundsDir, "pool.mp4")
	if err := os.WriteFile(local, []byte("video"), 0o644); err != nil {
		t.Fatalf("write background: %v", err)
	}

	source := &fakeSource{enabled: true, downloadErr: errors.New("cdn unreachable")}
	fetcher, store := newFetcher(t, cfg, source, nil)

	item := testsupport.NewVideo(t, store, queue.Request{PoetryJSON: poemJSON(t)})
	if err := fetcher.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if item.BackgroundFile != local {
		t.Fatalf("background = %q, want local pool file %q", item.BackgroundFile, local)
	}
}

func TestExecuteSkipsNarrationWhenDisabled(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithNarrationDisabled())
	narrator := &fakeNarrator{}
	fetcher, store := newFetcher(t, cfg, &fakeSource{}, narrator)

	item := testsupport.NewVideo(t, store, queue.Request{
		PoetryJSON:       poemJSON(t),
		NarrationEnabled: false,
	})
	if err := fetcher.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if narrator.calls != 0 {
		t.Fatalf("narrator should not run when disabled, calls = %d", narrator.calls)
	}
}

func TestExecuteRejectsInvalidPoem(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	fetcher, store := newFetcher(t, cfg, &fakeSource{}, nil)

	item := testsupport.NewVideo(t, store, queue.Request{PoetryJSON: "not json"})
	if err := fetcher.Execute(context.Background(), item); err == nil {
		t.Fatal("expected validation error for invalid poem payload")
	}
}

func TestHealthCheckReportsStagingDir(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	fetcher, _ := newFetcher(t, cfg, &fakeSource{}, nil)
	health := fetcher.HealthCheck(context.Background())
	if !health.Ready {
		t.Fatalf("expected healthy fetch stage, got %+v", health)
	}
}
