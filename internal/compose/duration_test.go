package compose_test

import (
	"math"
	"testing"

	"verseline/internal/compose"
)

func TestResolveDurationNarrationOverridesHint(t *testing.T) {
	cases := []struct {
		name      string
		hint      float64
		narration *compose.Clip
		buffer    float64
		want      float64
	}{
		{
			name:      "narration plus buffer ignores hint",
			hint:      18,
			narration: &compose.Clip{Path: "voice.mp3", Duration: 12.3},
			buffer:    2.0,
			want:      14.3,
		},
		{
			name:      "long narration exceeds requested duration",
			hint:      10,
			narration: &compose.Clip{Path: "voice.mp3", Duration: 25},
			buffer:    2.0,
			want:      27,
		},
		{
			name:   "no narration uses hint",
			hint:   21,
			buffer: 2.0,
			want:   21,
		},
		{
			name:   "unset hint falls back to default",
			hint:   0,
			buffer: 2.0,
			want:   compose.DefaultDurationSeconds,
		},
		{
			name:      "unusable narration treated as absent",
			hint:      18,
			narration: &compose.Clip{Path: "voice.mp3", Duration: 0},
			buffer:    2.0,
			want:      18,
		},
		{
			name:      "negative buffer clamps to zero",
			hint:      18,
			narration: &compose.Clip{Path: "voice.mp3", Duration: 9},
			buffer:    -1,
			want:      9,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := compose.ResolveDuration(tc.hint, tc.narration, tc.buffer)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("ResolveDuration(%v, %+v, %v) = %v, want %v", tc.hint, tc.narration, tc.buffer, got, tc.want)
			}
		})
	}
}
