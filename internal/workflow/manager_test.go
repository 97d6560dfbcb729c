package workflow_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"verseline/internal/logging"
	"verseline/internal/queue"
	"verseline/internal/services"
	"verseline/internal/stage"
	"verseline/internal/testsupport"
	"verseline/internal/workflow"
)

type stubStage struct {
	name        string
	prepareHook func(*queue.Item)
	executeHook func(*queue.Item)
	prepareErr  error
	executeErr  error
	health      stage.Health
}

func newStubStage(name string) *stubStage {
	return &stubStage{name: name, health: stage.Healthy(name)}
}

func (s *stubStage) Prepare(_ context.Context, item *queue.Item) error {
	if s.prepareHook != nil {
		s.prepareHook(item)
	}
	return s.prepareErr
}

func (s *stubStage) Execute(_ context.Context, item *queue.Item) error {
	if s.executeHook != nil {
		s.executeHook(item)
	}
	return s.executeErr
}

func (s *stubStage) HealthCheck(context.Context) stage.Health {
	return s.health
}

type managerNotifier struct {
	mu             sync.Mutex
	reviewReasons  []string
	errorContexts  []string
	queueCompletes int
}

func (n *managerNotifier) NotifyVideoQueued(context.Context, string, string) error   { return nil }
func (n *managerNotifier) NotifyRenderStarted(context.Context, string, string) error { return nil }
func (n *managerNotifier) NotifyRenderCompleted(context.Context, string, string, float64) error {
	return nil
}
func (n *managerNotifier) NotifyPublishCompleted(context.Context, string, string) error { return nil }
func (n *managerNotifier) NotifyReviewRequired(_ context.Context, _ string, reason string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reviewReasons = append(n.reviewReasons, reason)
	return nil
}
func (n *managerNotifier) NotifyQueueCompleted(context.Context, int, int, time.Duration) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.queueCompletes++
	return nil
}
func (n *managerNotifier) NotifyError(_ context.Context, _ error, contextLabel string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errorContexts = append(n.errorContexts, contextLabel)
	return nil
}
func (n *managerNotifier) TestNotification(context.Context) error { return nil }

func (n *managerNotifier) snapshot() (reviews, errs []string, completes int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.reviewReasons...), append([]string(nil), n.errorContexts...), n.queueCompletes
}

func newManager(t *testing.T, notifier *managerNotifier, set workflow.StageSet) (*workflow.Manager, *queue.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.QueuePollInterval = 0
	cfg.Workflow.ErrorRetryInterval = 0
	cfg.Workflow.RenderWorkers = 1
	store := testsupport.MustOpenStore(t, cfg)
	mgr := workflow.NewManagerWithNotifier(cfg, store, logging.NewNop(), notifier)
	mgr.ConfigureStages(set)
	return mgr, store
}

func waitForStatus(t *testing.T, store *queue.Store, id int64, want queue.Status) *queue.Item {
	t.Helper()
	ctx := context.Background()
	deadline := time.After(30 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for status %s", want)
		default:
		}
		updated, err := store.GetByID(ctx, id)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if updated.Status == want {
			return updated
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestManagerProcessesItemThroughAllStages(t *testing.T) {
	fetcher := newStubStage("fetch")
	fetcher.executeHook = func(item *queue.Item) {
		item.BackgroundFile = "/tmp/bg.mp4"
		item.SetProgressComplete("fetch", "assets ready")
	}
	renderer := newStubStage("render")
	renderer.executeHook = func(item *queue.Item) {
		item.OutputFile = "/tmp/out.mp4"
		item.RealizedDuration = 18
		item.SetProgressComplete("render", "rendered")
	}
	publisher := newStubStage("publish")
	publisher.executeHook = func(item *queue.Item) {
		item.PublishedURL = "file:///tmp/out.mp4"
		item.SetProgressComplete("publish", "published")
	}

	notifier := &managerNotifier{}
	mgr, store := newManager(t, notifier, workflow.StageSet{
		Fetcher:   fetcher,
		Renderer:  renderer,
		Publisher: publisher,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := mgr.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(mgr.Stop)

	item := testsupport.NewVideo(t, store, queue.Request{Theme: "nature"})
	final := waitForStatus(t, store, item.ID, queue.StatusCompleted)

	if final.OutputFile != "/tmp/out.mp4" {
		t.Fatalf("unexpected output file %q", final.OutputFile)
	}
	if final.PublishedURL != "file:///tmp/out.mp4" {
		t.Fatalf("unexpected published URL %q", final.PublishedURL)
	}
	if final.ProgressPercent != 100 {
		t.Fatalf("expected 100%% progress, got %v", final.ProgressPercent)
	}

	deadline := time.After(10 * time.Second)
	for {
		_, _, completes := notifier.snapshot()
		if completes > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for queue completion notification")
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
}

func TestManagerValidationFailureParksItemForReview(t *testing.T) {
	fetcher := newStubStage("fetch")
	fetcher.executeErr = services.Wrap(services.ErrValidation, "fetch", "parse poem", "poem payload is invalid", nil)

	notifier := &managerNotifier{}
	mgr, store := newManager(t, notifier, workflow.StageSet{Fetcher: fetcher})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := mgr.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(mgr.Stop)

	item := testsupport.NewVideo(t, store, queue.Request{Theme: "nature"})
	final := waitForStatus(t, store, item.ID, queue.StatusReview)

	if !final.NeedsReview {
		t.Fatal("expected item flagged for review")
	}
	if final.ReviewReason == "" {
		t.Fatal("expected review reason set")
	}

	deadline := time.After(10 * time.Second)
	for {
		reviews, _, _ := notifier.snapshot()
		if len(reviews) > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for review notification")
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
}

func TestManagerTransientFailureMarksItemFailed(t *testing.T) {
	fetcher := newStubStage("fetch")
	fetcher.executeErr = services.Wrap(services.ErrTransient, "fetch", "download background", "connection reset", nil)

	notifier := &managerNotifier{}
	mgr, store := newManager(t, notifier, workflow.StageSet{Fetcher: fetcher})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := mgr.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(mgr.Stop)

	item := testsupport.NewVideo(t, store, queue.Request{Theme: "nature"})
	final := waitForStatus(t, store, item.ID, queue.StatusFailed)

	if final.ErrorMessage == "" {
		t.Fatal("expected error message on failed item")
	}
	if final.NeedsReview {
		t.Fatal("transient failure should not require review")
	}

	deadline := time.After(10 * time.Second)
	for {
		_, errs, _ := notifier.snapshot()
		if len(errs) > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for error notification")
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
}

func TestManagerFailureRemovesStagingDirectory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.QueuePollInterval = 0
	cfg.Workflow.ErrorRetryInterval = 0
	cfg.Workflow.RenderWorkers = 1
	store := testsupport.MustOpenStore(t, cfg)

	fetcher := newStubStage("fetch")
	fetcher.executeHook = func(item *queue.Item) {
		dir := filepath.Join(cfg.Paths.StagingDir, item.VideoID)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Errorf("mkdir staging: %v", err)
			return
		}
		if err := os.WriteFile(filepath.Join(dir, "background.mp4"), []byte("clip"), 0o644); err != nil {
			t.Errorf("write staged clip: %v", err)
		}
	}
	fetcher.executeErr = services.Wrap(services.ErrTransient, "fetch", "download background", "connection reset", nil)

	mgr := workflow.NewManagerWithNotifier(cfg, store, logging.NewNop(), &managerNotifier{})
	mgr.ConfigureStages(workflow.StageSet{Fetcher: fetcher})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := mgr.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(mgr.Stop)

	item := testsupport.NewVideo(t, store, queue.Request{Theme: "nature"})
	waitForStatus(t, store, item.ID, queue.StatusFailed)

	stagingDir := filepath.Join(cfg.Paths.StagingDir, item.VideoID)
	deadline := time.After(10 * time.Second)
	for {
		if _, err := os.Stat(stagingDir); os.IsNotExist(err) {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("staging directory %s survived item failure", stagingDir)
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
}

func TestManagerStatusIncludesStageHealth(t *testing.T) {
	fetcher := newStubStage("fetch")
	renderer := newStubStage("render")
	renderer.health = stage.Unhealthy("render", "ffmpeg missing")

	mgr, _ := newManager(t, &managerNotifier{}, workflow.StageSet{
		Fetcher:  fetcher,
		Renderer: renderer,
	})

	summary := mgr.Status(context.Background())
	if summary.Running {
		t.Fatal("manager should not report running before Start")
	}
	if summary.Workers != 1 {
		t.Fatalf("expected 1 worker, got %d", summary.Workers)
	}
	health, ok := summary.StageHealth["render"]
	if !ok {
		t.Fatal("expected render stage health present")
	}
	if health.Ready {
		t.Fatal("expected render stage to report unhealthy")
	}

	ready, checks := mgr.Healthy(context.Background())
	if ready {
		t.Fatal("expected aggregate health to be not ready")
	}
	if len(checks) != 2 {
		t.Fatalf("expected 2 health checks, got %d", len(checks))
	}
}

func TestManagerStartWithoutStagesFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	mgr := workflow.NewManagerWithNotifier(cfg, store, logging.NewNop(), &managerNotifier{})

	if err := mgr.Start(context.Background()); err == nil {
		mgr.Stop()
		t.Fatal("expected error starting manager without stages")
	}
}
