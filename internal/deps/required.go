package deps

import "verseline/internal/config"

// Required builds the dependency checklist for the configured pipeline.
// ffmpeg and ffprobe are mandatory for every render. The narration CLIs are
// optional fallbacks: the TTS chain degrades through them and finally to no
// narration at all, so their absence never blocks startup.
func Required(cfg *config.Config) []Requirement {
	requirements := []Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Renders composed videos",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Probes media durations and streams",
		},
	}
	if cfg.TTS.Enabled {
		requirements = append(requirements,
			Requirement{
				Name:        "edge-tts",
				Command:     cfg.EdgeTTSBinary(),
				Description: "Narration synthesis fallback",
				Optional:    true,
			},
			Requirement{
				Name:        "espeak-ng",
				Command:     cfg.EspeakBinary(),
				Description: "Last-resort narration synthesis",
				Optional:    true,
			},
		)
	}
	return requirements
}
