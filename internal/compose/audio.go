package compose

import (
	"fmt"
	"math"
	"strings"
)

// Audio gain constants. Music ducks under narration so speech stays
// intelligible; narration itself always plays at half gain.
const (
	musicGainWithNarration = 0.15
	musicGainSolo          = 0.25
	narrationGain          = 0.5
	audioSampleRate        = 44100
)

// audioPlan carries the ffmpeg inputs and the filter chain producing [aout].
// Input labels are assigned from firstIndex onward, directly after the
// background input.
type audioPlan struct {
	inputs     [][]string
	filter     string
	musicLoops int
	hasMusic   bool
	hasVoice   bool
}

// planAudio produces one mixed stream of exactly the resolved duration for
// every combination of music and narration presence.
//
// Music is looped whole or trimmed to fit, like the background. Narration is
// never looped and never stretched: longer than the target it is trimmed,
// shorter it simply ends and silence carries the remainder. With neither
// input present the output is pure silence rather than a missing track.
func planAudio(music, narration *Clip, duration float64, firstIndex int) audioPlan {
	plan := audioPlan{hasMusic: music.Usable(), hasVoice: narration.Usable()}
	target := formatSeconds(duration)
	var chains []string
	index := firstIndex

	musicLabel := ""
	if plan.hasMusic {
		var input []string
		if music.Duration < duration {
			plan.musicLoops = int(math.Ceil(duration/music.Duration)) - 1
			input = append(input, "-stream_loop", fmt.Sprintf("%d", plan.musicLoops))
		}
		input = append(input, "-i", music.Path)
		plan.inputs = append(plan.inputs, input)

		gain := musicGainSolo
		if plan.hasVoice {
			gain = musicGainWithNarration
		}
		musicLabel = "[mus]"
		chains = append(chains, fmt.Sprintf(
			"[%d:a]volume=%s,atrim=duration=%s,asetpts=PTS-STARTPTS%s",
			index, formatGain(gain), target, musicLabel,
		))
		index++
	}

	voiceLabel := ""
	if plan.hasVoice {
		plan.inputs = append(plan.inputs, []string{"-i", narration.Path})
		voiceLabel = "[nar]"
		chains = append(chains, fmt.Sprintf(
			"[%d:a]volume=%s,atrim=duration=%s,asetpts=PTS-STARTPTS%s",
			index, formatGain(narrationGain), target, voiceLabel,
		))
		index++
	}

	switch {
	case plan.hasMusic && plan.hasVoice:
		chains = append(chains, fmt.Sprintf(
			"%s%samix=inputs=2:duration=longest:normalize=0,apad,atrim=duration=%s,asetpts=PTS-STARTPTS[aout]",
			musicLabel, voiceLabel, target,
		))
	case plan.hasMusic:
		chains[0] = strings.TrimSuffix(chains[0], musicLabel) + "[aout]"
	case plan.hasVoice:
		// apad fills the gap between a short narration and the target.
		chains[0] = strings.TrimSuffix(chains[0], voiceLabel) +
			",apad,atrim=duration=" + target + ",asetpts=PTS-STARTPTS[aout]"
	default:
		plan.inputs = append(plan.inputs, []string{
			"-f", "lavfi",
			"-t", target,
			"-i", fmt.Sprintf("anullsrc=channel_layout=stereo:sample_rate=%d", audioSampleRate),
		})
		chains = append(chains, fmt.Sprintf("[%d:a]atrim=duration=%s[aout]", index, target))
	}

	plan.filter = strings.Join(chains, ";")
	return plan
}

func formatGain(gain float64) string {
	return fmt.Sprintf("%.2f", gain)
}
