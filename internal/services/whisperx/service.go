package whisperx

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"ytscribe/internal/services"
	"ytscribe/internal/stage"
	"ytscribe/internal/textutil"
)

// Service provides WhisperX transcription capabilities.
type Service struct {
	cfg           Config
	commandRunner func(ctx context.Context, name string, args ...string) error
	lookPath      func(string) (string, error)
}

// NewService creates a WhisperX service with the given configuration.
func NewService(cfg Config) *Service {
	return &Service{cfg: cfg, lookPath: exec.LookPath}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// Model returns the configured model size.
func (s *Service) Model() string {
	if s.cfg.Model != "" {
		return s.cfg.Model
	}
	return DefaultModel
}

// run executes a command, using the custom runner if set.
func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec

	// Torch 2.6 changed torch.load default to weights_only=true, breaking WhisperX/pyannote.
	if os.Getenv("TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD") == "" {
		cmd.Env = append(os.Environ(), "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1")
	}

	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Transcribe runs WhisperX on source and returns the joined segment text.
// An empty transcript is reported as a failure.
func (s *Service) Transcribe(ctx context.Context, source string) (string, error) {
	if strings.TrimSpace(source) == "" {
		return "", services.Wrap(services.ErrValidation, "whisperx", "transcribe", "source path required", nil)
	}

	outputDir, err := os.MkdirTemp(s.cfg.TempRoot, "ytscribe-whisperx-")
	if err != nil {
		return "", services.Wrap(services.ErrTranscription, "whisperx", "prepare output", "create output dir", err)
	}
	defer os.RemoveAll(outputDir)

	if err := s.run(ctx, UVXCommand, s.buildArgs(source, outputDir)...); err != nil {
		return "", services.Wrap(services.ErrTranscription, "whisperx", "run", "whisperx exited with error", err)
	}

	baseName := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	segments, err := LoadSegments(filepath.Join(outputDir, baseName+".json"))
	if err != nil {
		return "", services.Wrap(services.ErrTranscription, "whisperx", "read output", "whisperx produced no readable transcript", err)
	}

	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		parts = append(parts, seg.Text)
	}
	text := textutil.JoinFields(parts)
	if text == "" {
		return "", services.Wrap(services.ErrTranscription, "whisperx", "read output", "empty transcript", nil)
	}
	return text, nil
}

// Warmup resolves the uvx tool environment so the first request does not pay
// the install cost.
func (s *Service) Warmup(ctx context.Context) error {
	args := append(s.indexArgs(), "whisperx", "--help")
	if err := s.run(ctx, UVXCommand, args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "whisperx", "warmup", "provision whisperx environment", err)
	}
	return nil
}

// HealthCheck reports whether the uvx launcher is available.
func (s *Service) HealthCheck(context.Context) stage.Health {
	const name = "whisperx"
	if _, err := s.lookPath(UVXCommand); err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("%s not found on PATH", UVXCommand))
	}
	return stage.Healthy(name)
}

func (s *Service) indexArgs() []string {
	if s.cfg.CUDAEnabled {
		return []string{"--index-url", CUDAIndexURL, "--extra-index-url", PypiIndexURL}
	}
	return []string{"--index-url", PypiIndexURL}
}

// buildArgs constructs the uvx command arguments for WhisperX.
func (s *Service) buildArgs(source, outputDir string) []string {
	args := make([]string, 0, 24)
	args = append(args, s.indexArgs()...)
	args = append(args,
		"whisperx",
		source,
		"--model", ModelName(s.cfg.Model),
		"--batch_size", BatchSize,
		"--output_dir", outputDir,
		"--output_format", OutputFormat,
		"--vad_method", VADMethod,
	)
	if s.cfg.Language != "" {
		args = append(args, "--language", s.cfg.Language)
	}
	if s.cfg.CUDAEnabled {
		args = append(args, "--device", CUDADevice)
	} else {
		args = append(args, "--device", CPUDevice, "--compute_type", CPUComputeType)
	}
	return args
}

// Segment represents a transcribed segment from WhisperX JSON output.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type whisperXPayload struct {
	Segments []Segment `json:"segments"`
}

// LoadSegments loads segments from a WhisperX JSON file.
func LoadSegments(jsonPath string) ([]Segment, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, err
	}
	var payload whisperXPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse whisperx json: %w", err)
	}
	return payload.Segments, nil
}
