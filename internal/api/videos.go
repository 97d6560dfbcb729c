package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"verseline/internal/config"
	"verseline/internal/logging"
	"verseline/internal/poetry"
	"verseline/internal/queue"
	"verseline/internal/theme"
)

// Hard line bounds enforced at the API regardless of the configured window.
const (
	minCaptionLines = 3
	maxCaptionLines = 12
)

const (
	minSpeakingRate = 0.5
	maxSpeakingRate = 2.0
)

func (s *Server) handleVideos(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateVideo(w, r)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleCreateVideo(w http.ResponseWriter, r *http.Request) {
	var req CreateVideoRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	queueReq, err := BuildQueueRequest(s.cfg, s.catalog, req)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := s.store.NewVideo(r.Context(), queueReq)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if s.notifier != nil {
		if err := s.notifier.NotifyVideoQueued(r.Context(), item.VideoID, item.Theme); err != nil {
			s.log().Debug("queued notification failed", logging.Error(err))
		}
	}
	s.writeJSON(w, http.StatusCreated, FromItem(item))
}

// BuildQueueRequest validates a creation payload and resolves the poem the
// item will render, either from the supplied text or from the catalog. The
// CLI and the HTTP handler share this path so both enforce the same rules.
func BuildQueueRequest(cfg *config.Config, catalog *poetry.Catalog, req CreateVideoRequest) (queue.Request, error) {
	themeKey := strings.TrimSpace(strings.ToLower(req.Theme))
	if themeKey == "" {
		themeKey = theme.Default().Key
	}
	selected, ok := theme.Get(themeKey)
	if !ok {
		return queue.Request{}, fmt.Errorf("unknown theme: %s", themeKey)
	}

	animation := strings.TrimSpace(strings.ToLower(req.AnimationMode))
	if animation != "" {
		if _, ok := theme.ParseAnimationMode(animation); !ok {
			return queue.Request{}, fmt.Errorf("unknown animation mode: %s", animation)
		}
	}

	if req.DurationSeconds != 0 {
		min := cfg.Video.MinDurationSeconds
		max := cfg.Video.MaxDurationSeconds
		if req.DurationSeconds < min || req.DurationSeconds > max {
			return queue.Request{}, fmt.Errorf("duration_seconds must be between %.0f and %.0f", min, max)
		}
	}

	if req.SpeakingRate != 0 && (req.SpeakingRate < minSpeakingRate || req.SpeakingRate > maxSpeakingRate) {
		return queue.Request{}, fmt.Errorf("speaking_rate must be between %.1f and %.1f", minSpeakingRate, maxSpeakingRate)
	}

	poem, err := resolvePoem(cfg, catalog, req, selected)
	if err != nil {
		return queue.Request{}, err
	}
	encoded, err := poetry.Encode(poem)
	if err != nil {
		return queue.Request{}, err
	}

	return queue.Request{
		Theme:               selected.Key,
		PoetryJSON:          encoded,
		AnimationMode:       animation,
		DurationHint:        req.DurationSeconds,
		NarrationEnabled:    req.Narration,
		VoiceStyle:          strings.TrimSpace(req.VoiceStyle),
		SpeakingRate:        req.SpeakingRate,
		CustomBackgroundURL: strings.TrimSpace(req.CustomBackgroundURL),
	}, nil
}

func resolvePoem(cfg *config.Config, catalog *poetry.Catalog, req CreateVideoRequest, selected theme.Theme) (poetry.Poem, error) {
	var lines []string
	switch {
	case len(req.Lines) > 0:
		lines = poetry.NormalizeLines(req.Lines)
	case strings.TrimSpace(req.Text) != "":
		lines = poetry.SplitCustom(req.Text, maxCaptionLines)
	default:
		poem := catalog.ForThemes(selected.PoetryThemes, cfg.Poetry.MinLines, cfg.Poetry.MaxLines)
		return poem, nil
	}

	if len(lines) > maxCaptionLines {
		lines = lines[:maxCaptionLines]
	}
	if len(lines) < minCaptionLines {
		return poetry.Poem{}, fmt.Errorf("poem must have at least %d non-blank lines", minCaptionLines)
	}
	return poetry.Poem{
		Title:  strings.TrimSpace(req.Title),
		Author: strings.TrimSpace(req.Author),
		Lines:  lines,
	}, nil
}

func (s *Server) handleVideoByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	videoID := strings.TrimPrefix(r.URL.Path, "/api/videos/")
	if videoID == "" || strings.Contains(videoID, "/") {
		s.writeError(w, http.StatusNotFound, "video not found")
		return
	}
	item, err := s.store.GetByVideoID(r.Context(), videoID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if item == nil {
		s.writeError(w, http.StatusNotFound, "video not found")
		return
	}
	s.writeJSON(w, http.StatusOK, FromItem(item))
}

func (s *Server) handleQueue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var statuses []queue.Status
	for _, value := range r.URL.Query()["status"] {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		status, ok := queue.ParseStatus(trimmed)
		if !ok {
			s.writeError(w, http.StatusBadRequest, "unknown status: "+trimmed)
			return
		}
		statuses = append(statuses, status)
	}

	items, err := s.store.List(r.Context(), statuses...)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	views := make([]ItemView, 0, len(items))
	for _, item := range items {
		views = append(views, FromItem(item))
	}

	stats, err := s.store.Stats(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	statView := make(map[string]int, len(stats))
	for status, count := range stats {
		statView[string(status)] = count
	}

	s.writeJSON(w, http.StatusOK, QueueListResponse{Items: views, Stats: statView})
}
