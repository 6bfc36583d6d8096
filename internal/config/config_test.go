package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"ytscribe/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"TELEGRAM_TOKEN", "WHISPER_MODEL", "OPENAI_API_KEY", "NTFY_TOPIC", "YTSCRIBE_TRANSCRIBE_BACKEND"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaultConfigUsesEnvTokenAndExpandsPaths(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "ytscribe")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.Telegram.Token != "123:abc" {
		t.Fatalf("expected token from env, got %q", cfg.Telegram.Token)
	}
	if cfg.Transcription.Backend != config.BackendWhisperX {
		t.Fatalf("expected whisperx backend by default, got %q", cfg.Transcription.Backend)
	}
	if cfg.Transcription.Model != "base" {
		t.Fatalf("expected base model by default, got %q", cfg.Transcription.Model)
	}
	if cfg.Download.AudioFormat != "mp3" || cfg.Download.AudioQuality != "192" {
		t.Fatalf("unexpected audio target: %s/%s", cfg.Download.AudioFormat, cfg.Download.AudioQuality)
	}
	if !cfg.Telegram.DropPendingUpdates {
		t.Fatal("expected pending updates to be dropped by default")
	}
	if cfg.TempDir() != os.TempDir() {
		t.Fatalf("expected os temp dir when temp_root unset, got %q", cfg.TempDir())
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	if info, err := os.Stat(cfg.Paths.StateDir); err != nil || !info.IsDir() {
		t.Fatalf("expected state dir to exist: %v", err)
	}
	if filepath.Dir(cfg.HistoryPath()) != cfg.Paths.StateDir {
		t.Fatalf("history db should live in state dir: %q", cfg.HistoryPath())
	}
}

func TestLoadMissingTokenIsFatal(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	_, _, _, err := config.Load("")
	if err == nil {
		t.Fatal("expected error without token")
	}
	if !errors.Is(err, config.ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}

func TestLoadCustomPath(t *testing.T) {
	clearEnv(t)
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "ytscribe.toml")

	type payload struct {
		Paths struct {
			StateDir string `toml:"state_dir"`
			TempRoot string `toml:"temp_root"`
		} `toml:"paths"`
		Telegram struct {
			Token string `toml:"token"`
		} `toml:"telegram"`
		Transcription struct {
			Model    string `toml:"model"`
			Language string `toml:"language"`
		} `toml:"transcription"`
	}
	custom := payload{}
	custom.Paths.StateDir = filepath.Join(tempDir, "state")
	custom.Paths.TempRoot = filepath.Join(tempDir, "tmp")
	custom.Telegram.Token = "file-token"
	custom.Transcription.Model = " Medium "
	custom.Transcription.Language = "de"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Telegram.Token != "file-token" {
		t.Fatalf("expected token from file, got %q", cfg.Telegram.Token)
	}
	if cfg.Transcription.Model != "medium" {
		t.Fatalf("expected normalized model medium, got %q", cfg.Transcription.Model)
	}
	if cfg.TempDir() != custom.Paths.TempRoot {
		t.Fatalf("expected temp root override, got %q", cfg.TempDir())
	}
}

func TestEnvVarOverridesConfigFile(t *testing.T) {
	clearEnv(t)
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "ytscribe.toml")
	contents := `
[telegram]
token = "file-token"

[transcription]
model = "small"
openai_api_key = "file-key"

[notifications]
ntfy_topic = "https://ntfy.example/file"
`
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("TELEGRAM_TOKEN", "env-token")
	t.Setenv("WHISPER_MODEL", "tiny")
	t.Setenv("OPENAI_API_KEY", "env-key")
	t.Setenv("NTFY_TOPIC", "https://ntfy.example/env")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Telegram.Token != "env-token" {
		t.Errorf("expected token from env, got %q", cfg.Telegram.Token)
	}
	if cfg.Transcription.Model != "tiny" {
		t.Errorf("expected model from env, got %q", cfg.Transcription.Model)
	}
	if cfg.Transcription.OpenAIAPIKey != "env-key" {
		t.Errorf("expected OpenAI key from env, got %q", cfg.Transcription.OpenAIAPIKey)
	}
	if cfg.Notifications.NtfyTopic != "https://ntfy.example/env" {
		t.Errorf("expected ntfy topic from env, got %q", cfg.Notifications.NtfyTopic)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "your_telegram_bot_token_here") {
		t.Fatalf("sample config missing placeholder token: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Transcription.Model != "base" {
		t.Fatalf("sample should default to base model, got %q", cfg.Transcription.Model)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	valid := func() config.Config {
		cfg := config.Default()
		cfg.Telegram.Token = "token"
		return cfg
	}

	cfg := valid()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults with token to validate: %v", err)
	}

	cfg = valid()
	cfg.Transcription.Model = "gigantic"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown model size")
	}

	cfg = valid()
	cfg.Transcription.Backend = "carrier-pigeon"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown backend")
	}

	cfg = valid()
	cfg.Transcription.Backend = config.BackendOpenAI
	cfg.Transcription.OpenAIAPIKey = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when openai backend lacks a key")
	}

	cfg = valid()
	cfg.Download.AudioFormat = "mkv"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unsupported audio format")
	}

	cfg = valid()
	cfg.Telegram.PollTimeout = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive poll timeout")
	}
}

func TestLanguageHintIsNormalized(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_TOKEN", "token")
	configPath := filepath.Join(t.TempDir(), "ytscribe.toml")
	if err := os.WriteFile(configPath, []byte("[transcription]\nlanguage = \"English\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Transcription.Language != "en" {
		t.Fatalf("expected language en, got %q", cfg.Transcription.Language)
	}

	bad := config.Default()
	bad.Telegram.Token = "token"
	bad.Transcription.Language = "klingon!!"
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for unrecognized language")
	}
}

func TestValidatePipelineIgnoresMissingToken(t *testing.T) {
	cfg := config.Default()
	if err := cfg.ValidatePipeline(); err != nil {
		t.Fatalf("expected defaults without token to pass pipeline validation: %v", err)
	}
	if err := cfg.Validate(); !errors.Is(err, config.ErrMissingToken) {
		t.Fatalf("expected full validation to require a token, got %v", err)
	}
}
