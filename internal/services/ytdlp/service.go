package ytdlp

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"ytscribe/internal/fileutil"
	"ytscribe/internal/services"
	"ytscribe/internal/stage"
)

// UnknownTitle is reported when the source does not expose a title.
const UnknownTitle = "Unknown"

// Config captures yt-dlp invocation settings.
type Config struct {
	Binary       string
	AudioFormat  string
	AudioQuality string
	// FFmpegLocation is passed to --ffmpeg-location when set.
	FFmpegLocation string
	// TempRoot is the parent for per-call download directories. Empty uses os.TempDir.
	TempRoot string
}

// Audio is a downloaded audio file and the directory that holds it.
type Audio struct {
	Path  string
	Title string
	Dir   string
}

// Cleanup removes the audio file and its directory. Safe to call repeatedly.
func (a Audio) Cleanup() error {
	if a.Path == "" {
		return fileutil.RemoveDir(a.Dir)
	}
	if err := fileutil.RemoveFileAndDir(a.Path); err != nil {
		return err
	}
	if a.Dir != "" && a.Dir != filepath.Dir(a.Path) {
		return fileutil.RemoveDir(a.Dir)
	}
	return nil
}

// Service downloads audio tracks with yt-dlp.
type Service struct {
	cfg           Config
	commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)
	lookPath      func(string) (string, error)
}

// NewService creates a yt-dlp service, filling blank settings with mp3 at 192 kbps.
func NewService(cfg Config) *Service {
	if strings.TrimSpace(cfg.Binary) == "" {
		cfg.Binary = "yt-dlp"
	}
	if strings.TrimSpace(cfg.AudioFormat) == "" {
		cfg.AudioFormat = "mp3"
	}
	if strings.TrimSpace(cfg.AudioQuality) == "" {
		cfg.AudioQuality = "192"
	}
	return &Service{cfg: cfg, lookPath: exec.LookPath}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) ([]byte, error)) {
	s.commandRunner = runner
}

func (s *Service) run(ctx context.Context, args ...string) ([]byte, error) {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, s.cfg.Binary, args...)
	}
	cmd := exec.CommandContext(ctx, s.cfg.Binary, args...) //nolint:gosec
	var stderr strings.Builder
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return output, fmt.Errorf("%s: %w: %s", s.cfg.Binary, err, strings.TrimSpace(stderr.String()))
	}
	return output, nil
}

// FetchAudio downloads the best available audio for url and transcodes it to
// the configured format. Any failure is reported as services.ErrDownload and
// leaves nothing on disk.
func (s *Service) FetchAudio(ctx context.Context, url string) (Audio, error) {
	dir, err := os.MkdirTemp(s.cfg.TempRoot, "ytscribe-")
	if err != nil {
		return Audio{}, services.Wrap(services.ErrDownload, "ytdlp", "prepare", "create temp dir", err)
	}
	audio := Audio{Dir: dir}

	title, err := s.fetchTitle(ctx, url)
	if err != nil {
		_ = audio.Cleanup()
		return Audio{}, services.Wrap(services.ErrDownload, "ytdlp", "probe", "could not read video info", err)
	}
	audio.Title = title

	if _, err := s.run(ctx, s.downloadArgs(dir, url)...); err != nil {
		_ = audio.Cleanup()
		return Audio{}, services.Wrap(services.ErrDownload, "ytdlp", "download", "yt-dlp exited with error", err)
	}

	path, err := fileutil.FindByExtension(dir, s.cfg.AudioFormat)
	if err != nil {
		_ = audio.Cleanup()
		return Audio{}, services.Wrap(services.ErrDownload, "ytdlp", "locate output",
			fmt.Sprintf("no %s file produced", s.cfg.AudioFormat), err)
	}
	audio.Path = path
	return audio, nil
}

func (s *Service) fetchTitle(ctx context.Context, url string) (string, error) {
	output, err := s.run(ctx, "--skip-download", "--no-playlist", "--no-warnings", "--print", "title", url)
	if err != nil {
		return "", err
	}
	title, _, _ := strings.Cut(strings.TrimSpace(string(output)), "\n")
	if title = strings.TrimSpace(title); title == "" || title == "NA" {
		return UnknownTitle, nil
	}
	return title, nil
}

func (s *Service) downloadArgs(dir, url string) []string {
	args := []string{
		"--format", "bestaudio/best",
		"--extract-audio",
		"--audio-format", s.cfg.AudioFormat,
		"--audio-quality", s.cfg.AudioQuality + "K",
		"--no-playlist",
		"--quiet",
		"--no-warnings",
		"--output", filepath.Join(dir, "%(title)s.%(ext)s"),
	}
	if s.cfg.FFmpegLocation != "" {
		args = append(args, "--ffmpeg-location", s.cfg.FFmpegLocation)
	}
	return append(args, url)
}

// Version returns the installed yt-dlp version string.
func (s *Service) Version(ctx context.Context) (string, error) {
	output, err := s.run(ctx, "--version")
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "ytdlp", "version", "", err)
	}
	return strings.TrimSpace(string(output)), nil
}

// HealthCheck reports whether the yt-dlp binary is available.
func (s *Service) HealthCheck(context.Context) stage.Health {
	const name = "ytdlp"
	if _, err := s.lookPath(s.cfg.Binary); err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("%s not found on PATH", s.cfg.Binary))
	}
	return stage.Healthy(name)
}
