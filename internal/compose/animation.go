package compose

import "verseline/internal/theme"

// LineSchedule is the appearance plan for one caption row. Delay is the
// absolute start offset from t=0, FadeIn the reveal ramp length (zero means
// the line appears instantaneously), and Visible how long the line stays on
// screen. Every line disappears exactly at the end of the timeline.
type LineSchedule struct {
	Delay   float64
	FadeIn  float64
	Visible float64
}

// animationTiming maps each mode to its per-line stagger step and fade-in
// length. All schedules are fixed at composition time; nothing is re-evaluated
// during playback.
var animationTiming = map[theme.AnimationMode]struct {
	step float64
	fade float64
}{
	theme.AnimationPlainFade:  {step: 0.5, fade: 1.0},
	theme.AnimationTypewriter: {step: 0.8, fade: 0.1},
	theme.AnimationSlideUp:    {step: 0.3, fade: 0},
	theme.AnimationWordReveal: {step: 0.6, fade: 0.5},
	theme.AnimationGentleZoom: {step: 0.4, fade: 0.8},
}

// ScheduleLine computes when caption row index appears and for how long, given
// the resolved total duration. Unknown modes fall back to plain fade. A row
// whose stagger lands at or past the end of the timeline is clamped to
// Delay=total with zero visibility so it never extends past the final frame.
func ScheduleLine(mode theme.AnimationMode, index int, total float64) LineSchedule {
	timing, ok := animationTiming[mode]
	if !ok {
		timing = animationTiming[theme.AnimationPlainFade]
	}
	delay := float64(index) * timing.step
	if delay > total {
		delay = total
	}
	return LineSchedule{Delay: delay, FadeIn: timing.fade, Visible: total - delay}
}
