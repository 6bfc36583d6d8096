package whisperx

// Config captures runtime settings for WhisperX operations.
type Config struct {
	// Model is the whisper model size (tiny, base, small, medium, large, turbo).
	Model string
	// Language is an ISO 639-1 hint. Empty lets WhisperX detect the language.
	Language string
	// CUDAEnabled enables GPU acceleration.
	CUDAEnabled bool
	// TempRoot is the parent directory for per-request output directories.
	TempRoot string
}

// WhisperX configuration constants.
const (
	DefaultModel   = "base"
	CUDAIndexURL   = "https://download.pytorch.org/whl/cu128"
	PypiIndexURL   = "https://pypi.org/simple"
	BatchSize      = "4"
	OutputFormat   = "json"
	CPUDevice      = "cpu"
	CUDADevice     = "cuda"
	CPUComputeType = "float32"
	VADMethod      = "silero"
)

// UVXCommand is the launcher used to run WhisperX in an isolated environment.
const UVXCommand = "uvx"

// modelNames maps configured sizes onto the checkpoint names WhisperX accepts.
var modelNames = map[string]string{
	"large": "large-v3",
	"turbo": "large-v3-turbo",
}

// ModelName returns the WhisperX checkpoint for a configured model size.
func ModelName(size string) string {
	if size == "" {
		size = DefaultModel
	}
	if name, ok := modelNames[size]; ok {
		return name
	}
	return size
}
