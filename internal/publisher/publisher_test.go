package publisher_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"verseline/internal/config"
	"verseline/internal/logging"
	"verseline/internal/notifications"
	"verseline/internal/poetry"
	"verseline/internal/publisher"
	"verseline/internal/queue"
	"verseline/internal/services"
	"verseline/internal/services/publish"
	"verseline/internal/testsupport"
)

type fakeUploader struct {
	enabled bool
	url     string
	err     error
	gotMeta publish.Metadata
	calls   int
}

func (u *fakeUploader) Enabled() bool { return u.enabled }

func (u *fakeUploader) Upload(ctx context.Context, videoPath string, meta publish.Metadata) (string, error) {
	u.calls++
	u.gotMeta = meta
	return u.url, u.err
}

func renderedItem(t *testing.T, cfg *config.Config, store *queue.Store) *queue.Item {
	t.Helper()
	encoded, err := poetry.Encode(poetry.Poem{Title: "Dawn", Lines: []string{"A", "B", "C"}})
	if err != nil {
		t.Fatalf("encode poem: %v", err)
	}
	item := testsupport.NewVideo(t, store, queue.Request{PoetryJSON: encoded})
	if err := os.MkdirAll(cfg.Paths.OutputDir, 0o755); err != nil {
		t.Fatalf("mkdir output: %v", err)
	}
	item.OutputFile = filepath.Join(cfg.Paths.OutputDir, item.VideoID+".mp4")
	if err := os.WriteFile(item.OutputFile, []byte("video"), 0o644); err != nil {
		t.Fatalf("write output: %v", err)
	}
	item.RealizedDuration = 18
	return item
}

func TestExecuteUploadsWhenEnabled(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Publish.Enabled = true
	store := testsupport.MustOpenStore(t, cfg)
	uploader := &fakeUploader{enabled: true, url: "https://reels.example/v/1"}
	stage := publisher.NewPublisherWithDependencies(cfg, store, logging.NewNop(), uploader, notifications.NewService(cfg))

	item := renderedItem(t, cfg, store)
	if err := stage.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if item.PublishedURL != "https://reels.example/v/1" {
		t.Fatalf("published url = %q", item.PublishedURL)
	}
	if uploader.gotMeta.VideoID != item.VideoID || uploader.gotMeta.Title != "Dawn" {
		t.Fatalf("metadata = %+v", uploader.gotMeta)
	}
}

func TestExecuteRecordsLocalURLWhenDisabled(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Publish.Enabled = false
	store := testsupport.MustOpenStore(t, cfg)
	uploader := &fakeUploader{enabled: true}
	stage := publisher.NewPublisherWithDependencies(cfg, store, logging.NewNop(), uploader, notifications.NewService(cfg))

	item := renderedItem(t, cfg, store)
	if err := stage.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.HasPrefix(item.PublishedURL, "file://") {
		t.Fatalf("published url = %q, want file:// form", item.PublishedURL)
	}
	if uploader.calls != 0 {
		t.Fatalf("uploader invoked while disabled: %d calls", uploader.calls)
	}
}

func TestExecuteRemovesStagingDirectory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Publish.Enabled = true
	store := testsupport.MustOpenStore(t, cfg)
	uploader := &fakeUploader{enabled: true, url: "https://reels.example/v/9"}
	stage := publisher.NewPublisherWithDependencies(cfg, store, logging.NewNop(), uploader, notifications.NewService(cfg))

	item := renderedItem(t, cfg, store)
	stagingDir := filepath.Join(cfg.Paths.StagingDir, item.VideoID)
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		t.Fatalf("mkdir staging: %v", err)
	}
	if err := os.WriteFile(filepath.Join(stagingDir, "narration.mp3"), []byte("audio"), 0o644); err != nil {
		t.Fatalf("write staged audio: %v", err)
	}

	if err := stage.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if _, err := os.Stat(stagingDir); !os.IsNotExist(err) {
		t.Fatalf("staging directory survived publish: %v", err)
	}
	if _, err := os.Stat(item.OutputFile); err != nil {
		t.Fatalf("output file must survive staging cleanup: %v", err)
	}
}

func TestExecuteLocalURLAlsoRemovesStagingDirectory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Publish.Enabled = false
	store := testsupport.MustOpenStore(t, cfg)
	stage := publisher.NewPublisherWithDependencies(cfg, store, logging.NewNop(), &fakeUploader{}, notifications.NewService(cfg))

	item := renderedItem(t, cfg, store)
	stagingDir := filepath.Join(cfg.Paths.StagingDir, item.VideoID)
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		t.Fatalf("mkdir staging: %v", err)
	}

	if err := stage.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if _, err := os.Stat(stagingDir); !os.IsNotExist(err) {
		t.Fatalf("staging directory survived local publish: %v", err)
	}
}

func TestExecuteUploadFailureIsRetryable(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Publish.Enabled = true
	store := testsupport.MustOpenStore(t, cfg)
	uploader := &fakeUploader{enabled: true, err: errors.New("endpoint down")}
	stage := publisher.NewPublisherWithDependencies(cfg, store, logging.NewNop(), uploader, notifications.NewService(cfg))

	item := renderedItem(t, cfg, store)
	err := stage.Execute(context.Background(), item)
	if err == nil {
		t.Fatal("expected upload error")
	}
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("upload failure should be transient, got %v", err)
	}
	if item.PublishedURL != "" {
		t.Fatalf("failed upload recorded a url: %q", item.PublishedURL)
	}
}

func TestExecuteRequiresRenderedFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	stage := publisher.NewPublisherWithDependencies(cfg, store, logging.NewNop(), &fakeUploader{}, notifications.NewService(cfg))

	item := testsupport.NewVideo(t, store, queue.Request{})
	if err := stage.Execute(context.Background(), item); err == nil {
		t.Fatal("expected error without rendered file")
	}

	item.OutputFile = filepath.Join(cfg.Paths.OutputDir, "gone.mp4")
	err := stage.Execute(context.Background(), item)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("missing file should be not-found, got %v", err)
	}
}

func TestHealthCheckFlagsMisconfiguredUpload(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Publish.Enabled = true
	store := testsupport.MustOpenStore(t, cfg)
	stage := publisher.NewPublisherWithDependencies(cfg, store, logging.NewNop(), &fakeUploader{enabled: false}, notifications.NewService(cfg))

	if health := stage.HealthCheck(context.Background()); health.Ready {
		t.Fatalf("expected unhealthy publish stage, got %+v", health)
	}
}
