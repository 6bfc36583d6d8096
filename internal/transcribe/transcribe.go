// Package transcribe selects the speech-to-text backend for the process.
//
// Exactly one Transcriber is built at startup and handed to the pipeline. The
// model size comes from configuration and cannot change per request.
package transcribe

import (
	"context"
	"fmt"

	"ytscribe/internal/config"
	"ytscribe/internal/services/openai"
	"ytscribe/internal/services/whisperx"
	"ytscribe/internal/stage"
)

// Transcriber converts an audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
	Model() string
	HealthCheck(ctx context.Context) stage.Health
}

// Warmer is implemented by backends that benefit from preparation at startup.
type Warmer interface {
	Warmup(ctx context.Context) error
}

// New builds the configured backend.
func New(cfg *config.Config) (Transcriber, error) {
	if cfg == nil {
		return nil, fmt.Errorf("transcribe: config required")
	}
	t := cfg.Transcription
	switch t.Backend {
	case config.BackendWhisperX:
		return whisperx.NewService(whisperx.Config{
			Model:       t.Model,
			Language:    t.Language,
			CUDAEnabled: t.CUDAEnabled,
			TempRoot:    cfg.Paths.TempRoot,
		}), nil
	case config.BackendOpenAI:
		return openai.NewService(openai.Config{
			APIKey:   t.OpenAIAPIKey,
			BaseURL:  t.OpenAIBaseURL,
			Model:    t.OpenAIModel,
			Language: t.Language,
		}), nil
	default:
		return nil, fmt.Errorf("transcribe: unsupported backend %q", t.Backend)
	}
}

// Warmup prepares tr when it supports it and warmup is enabled.
func Warmup(ctx context.Context, cfg *config.Config, tr Transcriber) error {
	if cfg == nil || !cfg.Transcription.Warmup {
		return nil
	}
	w, ok := tr.(Warmer)
	if !ok {
		return nil
	}
	return w.Warmup(ctx)
}
