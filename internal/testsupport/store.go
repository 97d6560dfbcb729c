package testsupport

import (
	"context"
	"testing"

	"verseline/internal/config"
	"verseline/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewVideo creates a new video request item for tests using the provided store.
func NewVideo(t testing.TB, store *queue.Store, req queue.Request) *queue.Item {
	t.Helper()

	if req.Theme == "" {
		req.Theme = "nature"
	}
	if req.AnimationMode == "" {
		req.AnimationMode = "plain-fade"
	}
	item, err := store.NewVideo(context.Background(), req)
	if err != nil {
		t.Fatalf("store.NewVideo: %v", err)
	}
	return item
}
