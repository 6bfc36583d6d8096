package config

import (
	"fmt"
	"os"
	"strings"

	"ytscribe/internal/language"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTelegram()
	c.normalizeDownload()
	c.normalizeTranscription()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.TempRoot, err = expandPath(strings.TrimSpace(c.Paths.TempRoot)); err != nil {
		return fmt.Errorf("paths.temp_root: %w", err)
	}
	return nil
}

func (c *Config) normalizeTelegram() {
	if value, ok := lookupEnv("TELEGRAM_TOKEN"); ok {
		c.Telegram.Token = value
	}
	c.Telegram.Token = strings.TrimSpace(c.Telegram.Token)
	c.Telegram.APIEndpoint = strings.TrimSpace(c.Telegram.APIEndpoint)
	if c.Telegram.PollTimeout <= 0 {
		c.Telegram.PollTimeout = defaultTelegramPollTimeout
	}
	if c.Telegram.ChunkSize <= 0 {
		c.Telegram.ChunkSize = defaultTelegramChunkSize
	}
	if c.Telegram.SendBurst <= 0 {
		c.Telegram.SendBurst = defaultTelegramSendBurst
	}
}

func (c *Config) normalizeDownload() {
	c.Download.Binary = strings.TrimSpace(c.Download.Binary)
	if c.Download.Binary == "" {
		c.Download.Binary = defaultYTDLPBinary
	}
	c.Download.AudioFormat = strings.ToLower(strings.TrimSpace(c.Download.AudioFormat))
	if c.Download.AudioFormat == "" {
		c.Download.AudioFormat = defaultAudioFormat
	}
	c.Download.AudioQuality = strings.TrimSuffix(strings.TrimSpace(c.Download.AudioQuality), "K")
	if c.Download.AudioQuality == "" {
		c.Download.AudioQuality = defaultAudioQuality
	}
	c.Download.FFmpegDir = strings.TrimSpace(c.Download.FFmpegDir)
}

func (c *Config) normalizeTranscription() {
	if value, ok := lookupEnv("YTSCRIBE_TRANSCRIBE_BACKEND"); ok {
		c.Transcription.Backend = value
	}
	c.Transcription.Backend = strings.ToLower(strings.TrimSpace(c.Transcription.Backend))
	if c.Transcription.Backend == "" {
		c.Transcription.Backend = defaultTranscriptionBackend
	}
	if value, ok := lookupEnv("WHISPER_MODEL"); ok {
		c.Transcription.Model = value
	}
	c.Transcription.Model = strings.ToLower(strings.TrimSpace(c.Transcription.Model))
	if c.Transcription.Model == "" {
		c.Transcription.Model = defaultWhisperModel
	}
	c.Transcription.Language = strings.TrimSpace(c.Transcription.Language)
	if code, err := language.Normalize(c.Transcription.Language); err == nil {
		c.Transcription.Language = code
	}
	if value, ok := lookupEnv("OPENAI_API_KEY"); ok {
		c.Transcription.OpenAIAPIKey = value
	}
	c.Transcription.OpenAIAPIKey = strings.TrimSpace(c.Transcription.OpenAIAPIKey)
	c.Transcription.OpenAIBaseURL = strings.TrimSpace(c.Transcription.OpenAIBaseURL)
	c.Transcription.OpenAIModel = strings.TrimSpace(c.Transcription.OpenAIModel)
	if c.Transcription.OpenAIModel == "" {
		c.Transcription.OpenAIModel = defaultOpenAIModel
	}
}

func (c *Config) normalizeNotifications() {
	if value, ok := lookupEnv("NTFY_TOPIC"); ok {
		c.Notifications.NtfyTopic = value
	}
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// lookupEnv treats a set-but-blank variable as unset.
func lookupEnv(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	return value, true
}
