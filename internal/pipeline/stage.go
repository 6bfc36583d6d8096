package pipeline

// Stage is a step in the per-message pipeline. Stages only move forward.
type Stage int

const (
	StageReceived Stage = iota
	StageRecognized
	StageDownloading
	StageDownloaded
	StageTranscribing
	StageTranscribed
	StageCleanedUp
	StageDelivered
	StageFailed
)

var stageNames = [...]string{
	StageReceived:     "received",
	StageRecognized:   "recognized",
	StageDownloading:  "downloading",
	StageDownloaded:   "downloaded",
	StageTranscribing: "transcribing",
	StageTranscribed:  "transcribed",
	StageCleanedUp:    "cleaned_up",
	StageDelivered:    "delivered",
	StageFailed:       "failed",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}

// Terminal reports whether no further transitions are possible.
func (s Stage) Terminal() bool {
	return s == StageDelivered || s == StageFailed
}

// ErrorKind classifies a failed run by the stage that failed.
type ErrorKind string

const (
	KindNone                ErrorKind = ""
	KindInputRejected       ErrorKind = "input_rejected"
	KindDownloadFailed      ErrorKind = "download_failed"
	KindTranscriptionFailed ErrorKind = "transcription_failed"
	KindCleanupFailed       ErrorKind = "cleanup_failed"
	KindUnexpected          ErrorKind = "unexpected"
)

// StageError carries the kind of a pipeline failure alongside its cause.
type StageError struct {
	Kind  ErrorKind
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	if e.Err == nil {
		return string(e.Kind) + " at " + e.Stage.String()
	}
	return string(e.Kind) + " at " + e.Stage.String() + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error { return e.Err }
