package pexels_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"verseline/internal/services/pexels"
)

func TestSearchPortraitQueriesAPI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "test-key" {
			t.Errorf("authorization = %q", got)
		}
		query := r.URL.Query()
		if query.Get("orientation") != "portrait" {
			t.Errorf("orientation = %q", query.Get("orientation"))
		}
		if query.Get("query") != "forest mist" {
			t.Errorf("query = %q", query.Get("query"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"videos":[{"id":42,"duration":21.5,"width":1080,"height":1920,
			"video_files":[{"link":"https://cdn.example/v.mp4","width":1080,"height":1920,"quality":"hd"}]}]}`))
	}))
	defer server.Close()

	client := pexels.NewClient("test-key", pexels.WithBaseURL(server.URL))
	videos, err := client.SearchPortrait(context.Background(), []string{"forest", "mist"})
	if err != nil {
		t.Fatalf("SearchPortrait: %v", err)
	}
	if len(videos) != 1 || videos[0].ID != 42 {
		t.Fatalf("unexpected videos: %+v", videos)
	}
	if videos[0].Duration != 21.5 {
		t.Fatalf("duration = %v, want 21.5", videos[0].Duration)
	}
}

func TestSearchPortraitRequiresKey(t *testing.T) {
	client := pexels.NewClient("   ")
	if client.Enabled() {
		t.Fatal("blank key should disable the client")
	}
	if _, err := client.SearchPortrait(context.Background(), []string{"forest"}); err == nil {
		t.Fatal("expected error without api key")
	}
}

func TestBestPortraitFilePrefersTallHD(t *testing.T) {
	video := pexels.Video{VideoFiles: []pexels.VideoFile{
		{Link: "a", Width: 1920, Height: 1080, Quality: "hd"},
		{Link: "b", Width: 720, Height: 1280, Quality: "sd"},
		{Link: "c", Width: 1080, Height: 1920, Quality: "sd"},
		{Link: "d", Width: 1080, Height: 1920, Quality: "hd"},
	}}
	best, ok := pexels.BestPortraitFile(video)
	if !ok {
		t.Fatal("expected a portrait rendition")
	}
	if best.Link != "d" {
		t.Fatalf("best rendition = %q, want d", best.Link)
	}
}

func TestBestPortraitFileRejectsLandscapeOnly(t *testing.T) {
	video := pexels.Video{VideoFiles: []pexels.VideoFile{
		{Link: "a", Width: 1920, Height: 1080},
	}}
	if _, ok := pexels.BestPortraitFile(video); ok {
		t.Fatal("landscape-only video should yield no rendition")
	}
}

func TestDownloadWritesFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("video-bytes"))
	}))
	defer server.Close()

	client := pexels.NewClient("test-key")
	dest := filepath.Join(t.TempDir(), "bg.mp4")
	err := client.Download(context.Background(), pexels.VideoFile{Link: server.URL + "/v.mp4"}, dest)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil || string(data) != "video-bytes" {
		t.Fatalf("downloaded %q, err %v", data, err)
	}
}

func TestDownloadSurfacesHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := pexels.NewClient("test-key")
	dest := filepath.Join(t.TempDir(), "bg.mp4")
	if err := client.Download(context.Background(), pexels.VideoFile{Link: server.URL}, dest); err == nil {
		t.Fatal("expected error for 404 download")
	}
}
