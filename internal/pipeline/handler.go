// Package pipeline turns one chat message into a delivered transcript.
//
// Handler drives an explicit stage machine (see Stage). Each transition is one
// call to step, and the downloaded audio is released on every exit path,
// including panics. Callers receive an Outcome describing where the run ended
// and why.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ytscribe/internal/logging"
	"ytscribe/internal/services"
	"ytscribe/internal/youtube"
)

// DefaultChunkSize is the maximum number of characters per transcript chunk.
const DefaultChunkSize = 4096

// MessageID identifies a message previously sent on a Conversation.
type MessageID int

// Conversation is the reply channel for one incoming message.
type Conversation interface {
	Reply(ctx context.Context, text string) (MessageID, error)
	Edit(ctx context.Context, id MessageID, text string) error
}

// Download is a fetched audio file. Release removes it from disk.
type Download struct {
	Path    string
	Title   string
	Release func() error
}

// Fetcher retrieves audio for a recognized URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (Download, error)
}

// Transcriber converts an audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

// Outcome summarizes a finished run.
type Outcome struct {
	Stage Stage
	// FailedAt is the stage whose transition failed. Only meaningful when Stage is StageFailed.
	FailedAt        Stage
	Kind            ErrorKind
	URL             string
	VideoID         string
	Title           string
	TranscriptChars int
	Chunks          int
	Err             error
	// CleanupErr records a failed release. It never changes Stage or Kind.
	CleanupErr error
	StartedAt  time.Time
	FinishedAt time.Time
}

// Failed reports whether the run ended in StageFailed.
func (o Outcome) Failed() bool { return o.Stage == StageFailed }

// Handler runs the pipeline. It is safe for concurrent use; all per-message
// state lives in the run.
type Handler struct {
	fetcher     Fetcher
	transcriber Transcriber
	logger      *slog.Logger
	chunkSize   int
	now         func() time.Time
}

// Option customizes a Handler.
type Option func(*Handler)

// WithLogger sets the logger used for stage diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithChunkSize overrides DefaultChunkSize. Non-positive values are ignored.
func WithChunkSize(size int) Option {
	return func(h *Handler) {
		if size > 0 {
			h.chunkSize = size
		}
	}
}

// NewHandler wires a Handler around a fetcher and a transcriber.
func NewHandler(fetcher Fetcher, transcriber Transcriber, opts ...Option) *Handler {
	h := &Handler{
		fetcher:     fetcher,
		transcriber: transcriber,
		logger:      logging.NewNop(),
		chunkSize:   DefaultChunkSize,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = logging.NewComponentLogger(h.logger, "pipeline")
	return h
}

type run struct {
	conv       Conversation
	text       string
	status     MessageID
	hasStatus  bool
	download   Download
	transcript string
	outcome    Outcome
}

// Handle processes one incoming text message to completion.
func (h *Handler) Handle(ctx context.Context, conv Conversation, text string) (out Outcome) {
	r := &run{
		conv:    conv,
		text:    strings.TrimSpace(text),
		outcome: Outcome{Stage: StageReceived, StartedAt: h.now()},
	}
	defer func() {
		if p := recover(); p != nil {
			h.fail(ctx, r, &StageError{Kind: KindUnexpected, Stage: r.outcome.Stage, Err: fmt.Errorf("panic: %v", p)})
		}
		h.release(ctx, r)
		r.outcome.FinishedAt = h.now()
		out = r.outcome
	}()

	for !r.outcome.Stage.Terminal() {
		next, err := h.step(ctx, r)
		if err != nil {
			h.fail(ctx, r, err)
			break
		}
		h.logFor(ctx, r).Debug("stage transition",
			logging.String("from", r.outcome.Stage.String()),
			logging.String("to", next.String()))
		r.outcome.Stage = next
	}
	return r.outcome
}

// step performs the single transition out of the run's current stage.
func (h *Handler) step(ctx context.Context, r *run) (Stage, error) {
	ctx = services.WithStage(ctx, r.outcome.Stage.String())
	switch r.outcome.Stage {
	case StageReceived:
		return h.recognize(r)
	case StageRecognized:
		return h.acknowledge(ctx, r)
	case StageDownloading:
		return h.fetch(ctx, r)
	case StageDownloaded:
		return h.announceTranscription(ctx, r)
	case StageTranscribing:
		return h.transcribe(ctx, r)
	case StageTranscribed:
		h.release(ctx, r)
		return StageCleanedUp, nil
	case StageCleanedUp:
		return h.deliver(ctx, r)
	default:
		return r.outcome.Stage, &StageError{Kind: KindUnexpected, Stage: r.outcome.Stage,
			Err: fmt.Errorf("no transition from %s", r.outcome.Stage)}
	}
}

func (h *Handler) recognize(r *run) (Stage, error) {
	url, ok := youtube.ExtractURL(r.text)
	if !ok {
		return StageReceived, &StageError{Kind: KindInputRejected, Stage: StageReceived,
			Err: services.Wrap(services.ErrValidation, "pipeline", "recognize", "no YouTube URL in message", nil)}
	}
	r.outcome.URL = url
	r.outcome.VideoID = youtube.VideoID(url)
	return StageRecognized, nil
}

func (h *Handler) acknowledge(ctx context.Context, r *run) (Stage, error) {
	id, err := r.conv.Reply(ctx, DownloadingText)
	if err != nil {
		return StageRecognized, unexpected(StageRecognized, "send status", err)
	}
	r.status, r.hasStatus = id, true
	return StageDownloading, nil
}

func (h *Handler) fetch(ctx context.Context, r *run) (Stage, error) {
	h.logFor(ctx, r).Info("downloading audio", logging.String("url", r.outcome.URL))
	download, err := h.fetcher.Fetch(ctx, r.outcome.URL)
	if err == nil && strings.TrimSpace(download.Path) == "" {
		err = services.Wrap(services.ErrDownload, "pipeline", "fetch", "no audio file produced", nil)
	}
	if err != nil {
		if download.Release != nil {
			_ = download.Release()
		}
		return StageDownloading, &StageError{Kind: KindDownloadFailed, Stage: StageDownloading, Err: err}
	}
	r.download = download
	r.outcome.Title = download.Title
	h.logFor(ctx, r).Info("audio downloaded", logging.String("title", download.Title))
	return StageDownloaded, nil
}

func (h *Handler) announceTranscription(ctx context.Context, r *run) (Stage, error) {
	if err := r.conv.Edit(ctx, r.status, TranscribingText(r.outcome.Title)); err != nil {
		return StageDownloaded, unexpected(StageDownloaded, "edit status", err)
	}
	return StageTranscribing, nil
}

func (h *Handler) transcribe(ctx context.Context, r *run) (Stage, error) {
	started := h.now()
	text, err := h.transcriber.Transcribe(ctx, r.download.Path)
	if err == nil && strings.TrimSpace(text) == "" {
		err = services.Wrap(services.ErrTranscription, "pipeline", "transcribe", "empty transcript", nil)
	}
	if err != nil {
		return StageTranscribing, &StageError{Kind: KindTranscriptionFailed, Stage: StageTranscribing, Err: err}
	}
	r.transcript = text
	r.outcome.TranscriptChars = len([]rune(text))
	h.logFor(ctx, r).Info("transcription complete",
		logging.Int("chars", r.outcome.TranscriptChars),
		slog.Duration("elapsed", h.now().Sub(started)))
	return StageTranscribed, nil
}

func (h *Handler) deliver(ctx context.Context, r *run) (Stage, error) {
	chunks := Chunk(r.transcript, h.chunkSize)
	for i, chunk := range chunks {
		body := TranscriptText(i+1, len(chunks), chunk)
		var err error
		if i == 0 {
			err = r.conv.Edit(ctx, r.status, body)
		} else {
			_, err = r.conv.Reply(ctx, body)
		}
		if err != nil {
			return StageCleanedUp, unexpected(StageCleanedUp, fmt.Sprintf("deliver part %d/%d", i+1, len(chunks)), err)
		}
		r.outcome.Chunks = i + 1
	}
	return StageDelivered, nil
}

// release frees the downloaded audio at most once. Failures are logged only.
func (h *Handler) release(ctx context.Context, r *run) {
	release := r.download.Release
	if release == nil {
		return
	}
	r.download.Release = nil
	if err := release(); err != nil {
		r.outcome.CleanupErr = err
		logging.WarnWithContext(h.logFor(ctx, r), "temporary audio cleanup failed", string(KindCleanupFailed),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "remove the leftover temp directory manually"),
			logging.String(logging.FieldImpact, "disk space held until removed"))
	}
}

// fail moves the run to StageFailed and tells the user what happened.
func (h *Handler) fail(ctx context.Context, r *run, err error) {
	var stageErr *StageError
	if !errors.As(err, &stageErr) {
		stageErr = &StageError{Kind: KindUnexpected, Stage: r.outcome.Stage, Err: err}
	}
	r.outcome.FailedAt = stageErr.Stage
	r.outcome.Stage = StageFailed
	r.outcome.Kind = stageErr.Kind
	r.outcome.Err = stageErr

	logger := h.logFor(ctx, r)
	attrs := []slog.Attr{logging.Error(stageErr.Err), logging.String("failed_at", stageErr.Stage.String())}
	switch stageErr.Kind {
	case KindInputRejected:
		logger.Info("message rejected", logging.String("reason", "no YouTube URL"))
		h.notifyUser(ctx, r, RejectText)
	case KindDownloadFailed:
		logging.WarnWithContext(logger, "download failed", string(stageErr.Kind),
			append(attrs, logging.String(logging.FieldImpact, "user told to check the URL"))...)
		h.notifyUser(ctx, r, DownloadFailedText)
	case KindTranscriptionFailed:
		logging.WarnWithContext(logger, "transcription failed", string(stageErr.Kind),
			append(attrs, logging.String(logging.FieldImpact, "no transcript delivered"))...)
		h.notifyUser(ctx, r, TranscriptionFailedText)
	default:
		logging.ErrorWithContext(logger, "pipeline failed", string(KindUnexpected), attrs...)
		h.notifyUser(ctx, r, GenericFailureText)
	}
}

// notifyUser edits the status message when one exists, otherwise replies.
func (h *Handler) notifyUser(ctx context.Context, r *run, text string) {
	var err error
	if r.hasStatus {
		err = r.conv.Edit(ctx, r.status, text)
	} else {
		_, err = r.conv.Reply(ctx, text)
	}
	if err != nil {
		h.logFor(ctx, r).Warn("could not deliver failure notice",
			logging.Error(err),
			logging.String(logging.FieldEventType, "notice_undelivered"),
			logging.String(logging.FieldImpact, "user sees stale status"))
	}
}

func (h *Handler) logFor(ctx context.Context, r *run) *slog.Logger {
	logger := logging.WithContext(ctx, h.logger)
	if r.outcome.VideoID != "" {
		logger = logger.With(logging.String(logging.FieldVideoID, r.outcome.VideoID))
	}
	return logger
}

func unexpected(at Stage, op string, err error) *StageError {
	return &StageError{Kind: KindUnexpected, Stage: at,
		Err: services.Wrap(services.ErrTransport, "pipeline", op, "", err)}
}
