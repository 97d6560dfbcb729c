package compose

import (
	"fmt"
	"math"

	"verseline/internal/theme"
)

// backgroundPlan carries the ffmpeg input arguments and the filter chain that
// normalizes the background to the output geometry and duration. The chain
// reads [0:v] and writes [bg].
type backgroundPlan struct {
	input  []string
	filter string
	solid  bool
	loops  int
}

// planBackground normalizes the background layer to exactly the resolved
// duration at the output resolution.
//
// A missing clip synthesizes a solid fill in the theme accent color. A clip
// shorter than the target is looped whole and trimmed; a longer clip
// contributes only its leading prefix. Real footage is aspect-filled by
// scaling up and center-cropping, so the frame never shows bars or gaps.
func planBackground(clip *Clip, accent theme.Color, duration float64, s Settings) backgroundPlan {
	if !clip.Usable() {
		return backgroundPlan{
			solid: true,
			input: []string{
				"-f", "lavfi",
				"-t", formatSeconds(duration),
				"-i", fmt.Sprintf("color=c=%s:size=%dx%d:rate=%d", accent.Hex(), s.Width, s.Height, s.FPS),
			},
			filter: "[0:v]setsar=1[bg]",
		}
	}

	var input []string
	loops := 0
	if clip.Duration < duration {
		// -stream_loop counts extra plays beyond the first.
		loops = int(math.Ceil(duration/clip.Duration)) - 1
		input = append(input, "-stream_loop", fmt.Sprintf("%d", loops))
	}
	input = append(input, "-t", formatSeconds(duration), "-i", clip.Path)

	filter := fmt.Sprintf(
		"[0:v]scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d,fps=%d,trim=duration=%s,setpts=PTS-STARTPTS,setsar=1[bg]",
		s.Width, s.Height, s.Width, s.Height, s.FPS, formatSeconds(duration),
	)
	return backgroundPlan{input: input, filter: filter, loops: loops}
}
