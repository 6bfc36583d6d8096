// Package openai transcribes audio through the hosted OpenAI audio API.
package openai

import (
	"context"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"ytscribe/internal/services"
	"ytscribe/internal/stage"
)

// Config captures hosted transcription settings.
type Config struct {
	APIKey  string
	BaseURL string
	// Model is the hosted model name, e.g. whisper-1.
	Model    string
	Language string
}

// Service wraps a go-openai client for speech-to-text.
type Service struct {
	cfg    Config
	client *goopenai.Client
}

// NewService builds a client for the configured endpoint.
func NewService(cfg Config) *Service {
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = goopenai.Whisper1
	}
	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientCfg.BaseURL = strings.TrimRight(base, "/")
	}
	return &Service{cfg: cfg, client: goopenai.NewClientWithConfig(clientCfg)}
}

// Model returns the hosted model name.
func (s *Service) Model() string {
	return s.cfg.Model
}

// Transcribe uploads path and returns the recognized text.
func (s *Service) Transcribe(ctx context.Context, path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", services.Wrap(services.ErrValidation, "openai", "transcribe", "source path required", nil)
	}
	resp, err := s.client.CreateTranscription(ctx, goopenai.AudioRequest{
		Model:    s.cfg.Model,
		FilePath: path,
		Language: s.cfg.Language,
	})
	if err != nil {
		return "", services.Wrap(services.ErrTranscription, "openai", "transcribe", "transcription request failed", err)
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", services.Wrap(services.ErrTranscription, "openai", "transcribe", "empty transcript", nil)
	}
	return text, nil
}

// HealthCheck reports whether an API key is configured.
func (s *Service) HealthCheck(context.Context) stage.Health {
	if strings.TrimSpace(s.cfg.APIKey) == "" {
		return stage.Unhealthy("openai", "api key not configured")
	}
	return stage.Healthy("openai")
}
