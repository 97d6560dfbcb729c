package api

import (
	"time"

	"verseline/internal/queue"
	"verseline/internal/stage"
	"verseline/internal/theme"
)

// ItemView is the transport form of a queue item.
type ItemView struct {
	ID               int64      `json:"id"`
	VideoID          string     `json:"video_id"`
	Theme            string     `json:"theme"`
	AnimationMode    string     `json:"animation_mode,omitempty"`
	Status           string     `json:"status"`
	ProgressStage    string     `json:"progress_stage,omitempty"`
	ProgressPercent  float64    `json:"progress_percent"`
	ProgressMessage  string     `json:"progress_message,omitempty"`
	ErrorMessage     string     `json:"error_message,omitempty"`
	NeedsReview      bool       `json:"needs_review,omitempty"`
	ReviewReason     string     `json:"review_reason,omitempty"`
	OutputFile       string     `json:"output_file,omitempty"`
	PublishedURL     string     `json:"published_url,omitempty"`
	RealizedDuration float64    `json:"realized_duration,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	LastHeartbeat    *time.Time `json:"last_heartbeat,omitempty"`
}

// FromItem converts a queue item into its transport form.
func FromItem(item *queue.Item) ItemView {
	if item == nil {
		return ItemView{}
	}
	return ItemView{
		ID:               item.ID,
		VideoID:          item.VideoID,
		Theme:            item.Theme,
		AnimationMode:    item.AnimationMode,
		Status:           string(item.Status),
		ProgressStage:    item.ProgressStage,
		ProgressPercent:  item.ProgressPercent,
		ProgressMessage:  item.ProgressMessage,
		ErrorMessage:     item.ErrorMessage,
		NeedsReview:      item.NeedsReview,
		ReviewReason:     item.ReviewReason,
		OutputFile:       item.OutputFile,
		PublishedURL:     item.PublishedURL,
		RealizedDuration: item.RealizedDuration,
		CreatedAt:        item.CreatedAt,
		UpdatedAt:        item.UpdatedAt,
		LastHeartbeat:    item.LastHeartbeat,
	}
}

// ThemeView is the transport form of a visual preset.
type ThemeView struct {
	Key              string   `json:"key"`
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	DefaultAnimation string   `json:"default_animation"`
	FontFamily       string   `json:"font_family"`
	PoetryThemes     []string `json:"poetry_themes,omitempty"`
}

// FromTheme converts a theme into its transport form.
func FromTheme(t theme.Theme) ThemeView {
	return ThemeView{
		Key:              t.Key,
		Name:             t.Name,
		Description:      t.Description,
		DefaultAnimation: string(t.DefaultAnimation),
		FontFamily:       t.FontFamily,
		PoetryThemes:     t.PoetryThemes,
	}
}

// StageHealthView is the transport form of a stage health check.
type StageHealthView struct {
	Name   string `json:"name"`
	Ready  bool   `json:"ready"`
	Detail string `json:"detail,omitempty"`
}

func fromStageHealth(checks []stage.Health) []StageHealthView {
	out := make([]StageHealthView, 0, len(checks))
	for _, check := range checks {
		out = append(out, StageHealthView{Name: check.Name, Ready: check.Ready, Detail: check.Detail})
	}
	return out
}

// HealthResponse reports daemon readiness.
type HealthResponse struct {
	Status  string            `json:"status"`
	Running bool              `json:"running"`
	Workers int               `json:"workers"`
	Stages  []StageHealthView `json:"stages"`
}

// QueueListResponse wraps queue listing results.
type QueueListResponse struct {
	Items []ItemView     `json:"items"`
	Stats map[string]int `json:"stats,omitempty"`
}

// PoemResponse wraps a poem selection.
type PoemResponse struct {
	Title  string   `json:"title,omitempty"`
	Author string   `json:"author,omitempty"`
	Lines  []string `json:"lines"`
	Themes []string `json:"themes,omitempty"`
}

// CreateVideoRequest is the payload accepted by POST /api/videos.
type CreateVideoRequest struct {
	Theme               string   `json:"theme"`
	AnimationMode       string   `json:"animation_mode,omitempty"`
	DurationSeconds     float64  `json:"duration_seconds,omitempty"`
	Lines               []string `json:"lines,omitempty"`
	Text                string   `json:"text,omitempty"`
	Title               string   `json:"title,omitempty"`
	Author              string   `json:"author,omitempty"`
	Narration           bool     `json:"narration,omitempty"`
	VoiceStyle          string   `json:"voice_style,omitempty"`
	SpeakingRate        float64  `json:"speaking_rate,omitempty"`
	CustomBackgroundURL string   `json:"background_url,omitempty"`
}
