package compose

import (
	"fmt"
	"strconv"
	"strings"

	"verseline/internal/theme"
)

// Settings fixes the output geometry and encoder knobs for one render.
type Settings struct {
	Width           int
	Height          int
	FPS             int
	Preset          string
	CRF             int
	NarrationBuffer float64
}

// Request carries everything the engine needs for one render. Background,
// Music, and Narration are optional; a nil or unusable clip selects the
// documented fallback for that layer.
type Request struct {
	Lines        []string
	Theme        theme.Theme
	Animation    theme.AnimationMode
	DurationHint float64
	Background   *Clip
	Music        *Clip
	Narration    *Clip
}

// Plan is a fully resolved render: the timeline, the caption layout, and the
// ffmpeg inputs plus filter graph that realize it.
type Plan struct {
	Duration    float64
	Timeline    Timeline
	Layout      Layout
	Inputs      [][]string
	FilterGraph string

	settings Settings
}

// Compose resolves the output duration, plans every layer, and assembles the
// ffmpeg invocation. The z-order is fixed: background, readability overlay,
// text panel, then the caption lines on top, with the mixed audio bound as
// the single audio track.
func Compose(req Request, settings Settings) (*Plan, error) {
	if settings.Width <= 0 || settings.Height <= 0 || settings.FPS <= 0 {
		return nil, fmt.Errorf("output resolution and frame rate must be configured")
	}
	if settings.Preset == "" {
		settings.Preset = "medium"
	}
	if settings.CRF <= 0 {
		settings.CRF = 23
	}
	buffer := settings.NarrationBuffer
	if buffer <= 0 {
		buffer = NarrationBufferSeconds
	}

	layout, err := ComputeLayout(req.Lines, req.Theme, settings.Width, settings.Height)
	if err != nil {
		return nil, err
	}

	mode := req.Animation
	if _, ok := ParseMode(string(mode)); !ok {
		mode = req.Theme.DefaultAnimation
	}
	if _, ok := ParseMode(string(mode)); !ok {
		mode = theme.AnimationPlainFade
	}

	duration := ResolveDuration(req.DurationHint, req.Narration, buffer)

	background := planBackground(req.Background, req.Theme.Palette.Accent, duration, settings)
	audio := planAudio(req.Music, req.Narration, duration, 1)

	timeline := Timeline{Total: duration}
	timeline.Elements = append(timeline.Elements,
		Element{Kind: ElementBackground, Label: "background", Duration: duration},
		Element{Kind: ElementOverlay, Label: "overlay", Duration: duration},
		Element{Kind: ElementPanel, Label: "panel", Duration: duration},
	)

	video := make([]string, 0, len(layout.Lines)+2)
	video = append(video, fmt.Sprintf("drawbox=x=0:y=0:w=iw:h=ih:color=%s:t=fill", req.Theme.Palette.BackgroundOverlay.FFmpeg()))
	video = append(video, fmt.Sprintf("drawbox=x=%d:y=%d:w=%d:h=%d:color=black@%.2f:t=fill",
		layout.PanelX, layout.PanelY, layout.PanelWidth, layout.PanelHeight, panelOpacity))

	for _, line := range layout.Lines {
		sched := ScheduleLine(mode, line.Slot, duration)
		timeline.Elements = append(timeline.Elements, Element{
			Kind:     ElementCaption,
			Label:    fmt.Sprintf("line-%d", line.Slot),
			Start:    sched.Delay,
			Duration: sched.Visible,
		})
		if sched.Visible <= 0 {
			// Row staggered to the very end of the timeline; nothing to draw.
			continue
		}
		video = append(video, drawtextFilter(line, sched, req.Theme))
	}

	timeline.Elements = append(timeline.Elements, Element{Kind: ElementAudio, Label: "mix", Duration: duration})
	if err := timeline.Validate(); err != nil {
		return nil, fmt.Errorf("timeline inconsistent: %w", err)
	}

	inputs := [][]string{background.input}
	inputs = append(inputs, audio.inputs...)

	graph := background.filter + ";" +
		"[bg]" + strings.Join(video, ",") + "[vout];" +
		audio.filter

	return &Plan{
		Duration:    duration,
		Timeline:    timeline,
		Layout:      layout,
		Inputs:      inputs,
		FilterGraph: graph,
		settings:    settings,
	}, nil
}

// ParseMode reports whether value names a known animation mode.
func ParseMode(value string) (theme.AnimationMode, bool) {
	return theme.ParseAnimationMode(value)
}

// FFmpegArgs assembles the complete argument list for the render, output path
// included. The explicit -t pins the container duration to the resolved
// timeline length regardless of how the filter chains round.
func (p *Plan) FFmpegArgs(outputPath string) []string {
	args := []string{"-hide_banner", "-loglevel", "error", "-y"}
	for _, input := range p.Inputs {
		args = append(args, input...)
	}
	args = append(args,
		"-filter_complex", p.FilterGraph,
		"-map", "[vout]",
		"-map", "[aout]",
		"-c:v", "libx264",
		"-preset", p.settings.Preset,
		"-crf", strconv.Itoa(p.settings.CRF),
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "192k",
		"-ar", strconv.Itoa(audioSampleRate),
		"-r", strconv.Itoa(p.settings.FPS),
		"-t", formatSeconds(p.Duration),
		"-movflags", "+faststart",
		outputPath,
	)
	return args
}

// drawtextFilter renders one caption row with its scheduled reveal. Fade-in is
// an alpha ramp; modes without a fade appear instantaneously at their delay.
func drawtextFilter(line CaptionLine, sched LineSchedule, th theme.Theme) string {
	var b strings.Builder
	b.WriteString("drawtext=expansion=none")
	if th.FontFamily != "" {
		fmt.Fprintf(&b, ":font='%s'", th.FontFamily)
	}
	fmt.Fprintf(&b, ":fontsize=%d:fontcolor=%s", th.FontSize, th.Palette.Secondary.Hex())
	fmt.Fprintf(&b, ":x=(w-text_w)/2:y=%d", line.Y)
	fmt.Fprintf(&b, ":text='%s'", escapeDrawtext(line.Content))
	if sched.Delay > 0 {
		fmt.Fprintf(&b, ":enable='gte(t,%s)'", formatSeconds(sched.Delay))
	}
	if sched.FadeIn > 0 {
		fmt.Fprintf(&b, ":alpha='if(lt(t,%[1]s),0,if(lt(t,%[1]s+%[2]s),(t-%[1]s)/%[2]s,1))'",
			formatSeconds(sched.Delay), formatSeconds(sched.FadeIn))
	}
	return b.String()
}

// escapeDrawtext escapes the characters that terminate a quoted drawtext
// value. Quotes use the close-escape-reopen form the filter parser expects.
func escapeDrawtext(text string) string {
	text = strings.ReplaceAll(text, `\`, `\\`)
	return strings.ReplaceAll(text, `'`, `'\''`)
}

func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 3, 64)
}
