package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	// StateDir holds the history database, the instance lock, and the log file.
	StateDir string `toml:"state_dir"`
	// TempRoot is the parent for per-download temp directories. Empty uses os.TempDir.
	TempRoot string `toml:"temp_root"`
}

// Telegram contains chat transport settings.
type Telegram struct {
	Token              string `toml:"token"`
	APIEndpoint        string `toml:"api_endpoint"`
	PollTimeout        int    `toml:"poll_timeout"`
	DropPendingUpdates bool   `toml:"drop_pending_updates"`
	// SendRatePerSecond caps outbound send/edit calls across all chats.
	SendRatePerSecond float64 `toml:"send_rate_per_second"`
	SendBurst         int     `toml:"send_burst"`
	// ChunkSize is the maximum transcript characters per message part.
	ChunkSize int `toml:"chunk_size"`
}

// Download contains yt-dlp settings.
type Download struct {
	Binary       string `toml:"ytdlp_binary"`
	AudioFormat  string `toml:"audio_format"`
	AudioQuality string `toml:"audio_quality"`
	FFmpegDir    string `toml:"ffmpeg_location"`
}

// Transcription contains speech-to-text settings.
type Transcription struct {
	// Backend selects the speech recognizer: "whisperx" (local) or "openai" (hosted).
	Backend string `toml:"backend"`
	// Model is the whisper model size. Fixed for the lifetime of the process.
	Model       string `toml:"model"`
	Language    string `toml:"language"`
	CUDAEnabled bool   `toml:"cuda_enabled"`
	Warmup      bool   `toml:"warmup"`

	OpenAIAPIKey  string `toml:"openai_api_key"`
	OpenAIBaseURL string `toml:"openai_base_url"`
	OpenAIModel   string `toml:"openai_model"`
}

// History contains request history settings.
type History struct {
	Enabled bool `toml:"enabled"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Startup        bool   `toml:"startup"`
	Errors         bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	ToFile bool   `toml:"to_file"`
}

// Config encapsulates all configuration values for ytscribe.
//
// Configuration sections by subsystem:
//   - Paths: state and temp directories
//   - Telegram: bot token and polling behaviour
//   - Download: yt-dlp binary and audio extraction target
//   - Transcription: backend selection and model size
//   - History: SQLite request log
//   - Notifications: ntfy operator alerts
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Telegram      Telegram      `toml:"telegram"`
	Download      Download      `toml:"download"`
	Transcription Transcription `toml:"transcription"`
	History       History       `toml:"history"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and environment overrides applied.
func Load(path string) (*Config, string, bool, error) {
	cfg, resolvedPath, exists, err := load(path)
	if err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return cfg, resolvedPath, exists, nil
}

// LoadUnvalidated behaves like Load but skips validation. Diagnostic commands use it
// so they can report on a half-configured install.
func LoadUnvalidated(path string) (*Config, string, bool, error) {
	return load(path)
}

func load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("ytscribe.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for bot operation.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.StateDir}
	if c.Paths.TempRoot != "" {
		dirs = append(dirs, c.Paths.TempRoot)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// TempDir returns the root under which download directories are allocated.
func (c *Config) TempDir() string {
	if strings.TrimSpace(c.Paths.TempRoot) != "" {
		return c.Paths.TempRoot
	}
	return os.TempDir()
}

// HistoryPath returns the SQLite database path for request history.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// LockPath returns the single-instance lock file path.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "ytscribe.lock")
}

// LogPath returns the log file path used when logging.to_file is enabled.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.StateDir, "ytscribe.log")
}

// FFmpegBinary returns the ffmpeg executable yt-dlp will use for audio extraction.
func (c *Config) FFmpegBinary() string {
	if dir := strings.TrimSpace(c.Download.FFmpegDir); dir != "" {
		return filepath.Join(dir, "ffmpeg")
	}
	return "ffmpeg"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
