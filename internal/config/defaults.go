package config

const (
	defaultStagingDir             = "~/.local/share/verseline/staging"
	defaultOutputDir              = "~/.local/share/verseline/output"
	defaultLogDir                 = "~/.local/share/verseline/logs"
	defaultBackgroundsDir         = "~/.local/share/verseline/assets/backgrounds"
	defaultMusicDir               = "~/.local/share/verseline/assets/music"
	defaultAPIBind                = "127.0.0.1:8970"
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
	defaultLogRetentionDays       = 60
	defaultVideoWidth             = 1080
	defaultVideoHeight            = 1920
	defaultVideoFPS               = 24
	defaultVideoDurationSeconds   = 18.0
	defaultMinDurationSeconds     = 10.0
	defaultMaxDurationSeconds     = 30.0
	defaultNarrationBufferSeconds = 2.0
	defaultVideoPreset            = "medium"
	defaultVideoCRF               = 23
	defaultPoetryMinLines         = 4
	defaultPoetryMaxLines         = 8
	defaultTTSModel               = "tts-1"
	defaultTTSVoice               = "en-US-AriaNeural"
	defaultTTSSpeakingRate        = 0.85
	defaultTTSLinePauseSeconds    = 0.8
	defaultTTSTimeoutSeconds      = 60
	defaultPexelsBaseURL          = "https://api.pexels.com/videos"
	defaultPexelsRequestTimeout   = 30
	defaultPublishTimeoutSeconds  = 120
	defaultHeartbeatInterval      = 15
	defaultHeartbeatTimeout       = 120
	defaultFetchTimeoutSeconds    = 120
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir:     defaultStagingDir,
			OutputDir:      defaultOutputDir,
			LogDir:         defaultLogDir,
			BackgroundsDir: defaultBackgroundsDir,
			MusicDir:       defaultMusicDir,
			APIBind:        defaultAPIBind,
		},
		Video: Video{
			Width:                  defaultVideoWidth,
			Height:                 defaultVideoHeight,
			FPS:                    defaultVideoFPS,
			DefaultDurationSeconds: defaultVideoDurationSeconds,
			MinDurationSeconds:     defaultMinDurationSeconds,
			MaxDurationSeconds:     defaultMaxDurationSeconds,
			NarrationBufferSeconds: defaultNarrationBufferSeconds,
			Preset:                 defaultVideoPreset,
			CRF:                    defaultVideoCRF,
		},
		Poetry: Poetry{
			MinLines: defaultPoetryMinLines,
			MaxLines: defaultPoetryMaxLines,
		},
		TTS: TTS{
			Enabled:          true,
			Model:            defaultTTSModel,
			DefaultVoice:     defaultTTSVoice,
			SpeakingRate:     defaultTTSSpeakingRate,
			LinePauseSeconds: defaultTTSLinePauseSeconds,
			TimeoutSeconds:   defaultTTSTimeoutSeconds,
		},
		Pexels: Pexels{
			BaseURL:        defaultPexelsBaseURL,
			RequestTimeout: defaultPexelsRequestTimeout,
		},
		Publish: Publish{
			TimeoutSeconds: defaultPublishTimeoutSeconds,
		},
		Notifications: Notifications{
			RequestTimeout: 10,
			Render:         true,
			Publish:        true,
			Queue:          true,
			Review:         true,
			Errors:         true,
		},
		Workflow: Workflow{
			QueuePollInterval:   5,
			ErrorRetryInterval:  10,
			HeartbeatInterval:   defaultHeartbeatInterval,
			HeartbeatTimeout:    defaultHeartbeatTimeout,
			FetchTimeoutSeconds: defaultFetchTimeoutSeconds,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
