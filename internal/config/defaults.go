package config

const (
	defaultConfigPath              = "~/.config/ytscribe/config.toml"
	defaultStateDir                = "~/.local/share/ytscribe"
	defaultTelegramPollTimeout     = 60
	defaultTelegramSendRate        = 20.0
	defaultTelegramSendBurst       = 5
	defaultTelegramChunkSize       = 4096
	defaultYTDLPBinary             = "yt-dlp"
	defaultAudioFormat             = "mp3"
	defaultAudioQuality            = "192"
	defaultTranscriptionBackend    = BackendWhisperX
	defaultWhisperModel            = "base"
	defaultOpenAIModel             = "whisper-1"
	defaultNotifyRequestTimeout    = 10
	defaultLogFormat               = "console"
	defaultLogLevel                = "info"
	defaultTelegramDropPendingFlag = true
)

// Transcription backends.
const (
	BackendWhisperX = "whisperx"
	BackendOpenAI   = "openai"
)

// ModelSizes lists the accepted whisper model sizes in ascending order.
var ModelSizes = []string{"tiny", "base", "small", "medium", "large", "turbo"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
		},
		Telegram: Telegram{
			PollTimeout:        defaultTelegramPollTimeout,
			DropPendingUpdates: defaultTelegramDropPendingFlag,
			SendRatePerSecond:  defaultTelegramSendRate,
			SendBurst:          defaultTelegramSendBurst,
			ChunkSize:          defaultTelegramChunkSize,
		},
		Download: Download{
			Binary:       defaultYTDLPBinary,
			AudioFormat:  defaultAudioFormat,
			AudioQuality: defaultAudioQuality,
		},
		Transcription: Transcription{
			Backend:     defaultTranscriptionBackend,
			Model:       defaultWhisperModel,
			Warmup:      true,
			OpenAIModel: defaultOpenAIModel,
		},
		History: History{
			Enabled: true,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Startup:        true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
