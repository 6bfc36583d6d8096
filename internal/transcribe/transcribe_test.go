package transcribe_test

import (
	"context"
	"errors"
	"testing"

	"ytscribe/internal/config"
	"ytscribe/internal/services/openai"
	"ytscribe/internal/services/whisperx"
	"ytscribe/internal/stage"
	"ytscribe/internal/transcribe"
)

func TestNewSelectsBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Transcription.Model = "small"
	tr, err := transcribe.New(&cfg)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, ok := tr.(*whisperx.Service); !ok {
		t.Fatalf("expected whisperx service, got %T", tr)
	}
	if tr.Model() != "small" {
		t.Fatalf("unexpected model %q", tr.Model())
	}

	cfg.Transcription.Backend = config.BackendOpenAI
	cfg.Transcription.OpenAIAPIKey = "sk"
	tr, err = transcribe.New(&cfg)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, ok := tr.(*openai.Service); !ok {
		t.Fatalf("expected openai service, got %T", tr)
	}
	if tr.Model() != "whisper-1" {
		t.Fatalf("unexpected model %q", tr.Model())
	}

	cfg.Transcription.Backend = "nope"
	if _, err := transcribe.New(&cfg); err == nil {
		t.Fatal("expected error for unknown backend")
	}
	if _, err := transcribe.New(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}

type warmable struct {
	calls int
	err   error
}

func (w *warmable) Transcribe(context.Context, string) (string, error) { return "", nil }
func (w *warmable) Model() string                                      { return "base" }
func (w *warmable) HealthCheck(context.Context) stage.Health           { return stage.Healthy("fake") }
func (w *warmable) Warmup(context.Context) error {
	w.calls++
	return w.err
}

func TestWarmupHonoursConfig(t *testing.T) {
	cfg := config.Default()
	w := &warmable{err: errors.New("offline")}

	cfg.Transcription.Warmup = false
	if err := transcribe.Warmup(context.Background(), &cfg, w); err != nil || w.calls != 0 {
		t.Fatalf("expected no warmup, calls=%d err=%v", w.calls, err)
	}

	cfg.Transcription.Warmup = true
	if err := transcribe.Warmup(context.Background(), &cfg, w); err == nil || w.calls != 1 {
		t.Fatalf("expected warmup error, calls=%d err=%v", w.calls, err)
	}
}
