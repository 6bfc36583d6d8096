package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"ytscribe/internal/language"
)

// ErrMissingToken is returned when no Telegram bot token is configured.
var ErrMissingToken = errors.New("telegram token is required")

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTelegram(); err != nil {
		return err
	}
	return c.ValidatePipeline()
}

// ValidatePipeline checks everything except the Telegram token, for commands
// that run the pipeline without connecting to Telegram.
func (c *Config) ValidatePipeline() error {
	if err := c.validateDownload(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := ensurePositiveMap(map[string]int{
		"telegram.poll_timeout":         c.Telegram.PollTimeout,
		"telegram.send_burst":           c.Telegram.SendBurst,
		"telegram.chunk_size":           c.Telegram.ChunkSize,
		"notifications.request_timeout": c.Notifications.RequestTimeout,
	}); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTelegram() error {
	if c.Telegram.Token == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("%w: set TELEGRAM_TOKEN or edit %s (create with 'ytscribe config init')", ErrMissingToken, defaultPath)
	}
	if c.Telegram.SendRatePerSecond < 0 {
		return errors.New("telegram.send_rate_per_second must be >= 0")
	}
	return nil
}

func (c *Config) validateDownload() error {
	switch c.Download.AudioFormat {
	case "mp3", "m4a", "opus", "wav", "flac", "aac", "vorbis":
	default:
		return fmt.Errorf("download.audio_format: unsupported value %q", c.Download.AudioFormat)
	}
	return nil
}

func (c *Config) validateTranscription() error {
	if _, err := language.Normalize(c.Transcription.Language); err != nil {
		return fmt.Errorf("transcription.language: %w", err)
	}
	switch c.Transcription.Backend {
	case BackendWhisperX:
		if !slices.Contains(ModelSizes, c.Transcription.Model) {
			return fmt.Errorf("transcription.model: unsupported value %q (expected one of %s)",
				c.Transcription.Model, strings.Join(ModelSizes, ", "))
		}
	case BackendOpenAI:
		if c.Transcription.OpenAIAPIKey == "" {
			return errors.New("transcription.openai_api_key must be set when transcription.backend is openai (or set OPENAI_API_KEY)")
		}
	default:
		return fmt.Errorf("transcription.backend: unsupported value %q (expected %s or %s)",
			c.Transcription.Backend, BackendWhisperX, BackendOpenAI)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
