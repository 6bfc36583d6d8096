package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"ytscribe/internal/history"
	"ytscribe/internal/logging"
	"ytscribe/internal/notifications"
	"ytscribe/internal/pipeline"
	"ytscribe/internal/services"
)

// MessageHandler runs the pipeline for one message.
type MessageHandler interface {
	Handle(ctx context.Context, conv pipeline.Conversation, text string) pipeline.Outcome
}

// Recorder persists finished requests.
type Recorder interface {
	Record(ctx context.Context, e history.Entry) (int64, error)
}

// Bot dispatches Telegram updates.
type Bot struct {
	api          BotAPI
	handler      MessageHandler
	logger       *slog.Logger
	limiter      *rate.Limiter
	recorder     Recorder
	notifier     notifications.Service
	pollTimeout  int
	dropPending  bool
	newRequestID func() string

	inflight sync.WaitGroup
}

// Option customizes a Bot.
type Option func(*Bot)

// WithLogger sets the bot logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bot) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithRateLimit paces outbound sends. A non-positive rate disables pacing.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(b *Bot) {
		if perSecond <= 0 {
			b.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		if burst <= 0 {
			burst = 1
		}
		b.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithRecorder stores one history entry per handled message.
func WithRecorder(r Recorder) Option {
	return func(b *Bot) { b.recorder = r }
}

// WithNotifier reports unexpected pipeline failures to the operator.
func WithNotifier(n notifications.Service) Option {
	return func(b *Bot) {
		if n != nil {
			b.notifier = n
		}
	}
}

// WithPolling sets the long-poll timeout in seconds and whether updates queued
// while the bot was offline are discarded at startup.
func WithPolling(timeoutSeconds int, dropPending bool) Option {
	return func(b *Bot) {
		if timeoutSeconds > 0 {
			b.pollTimeout = timeoutSeconds
		}
		b.dropPending = dropPending
	}
}

// WithRequestIDs overrides the correlation id generator.
func WithRequestIDs(gen func() string) Option {
	return func(b *Bot) {
		if gen != nil {
			b.newRequestID = gen
		}
	}
}

// New builds a Bot around an API client and a pipeline handler.
func New(api BotAPI, handler MessageHandler, opts ...Option) *Bot {
	b := &Bot{
		api:          api,
		handler:      handler,
		logger:       logging.NewNop(),
		limiter:      rate.NewLimiter(rate.Inf, 1),
		notifier:     notifications.NewService(nil),
		pollTimeout:  60,
		dropPending:  true,
		newRequestID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = logging.NewComponentLogger(b.logger, "telegram")
	return b
}

// Run polls for updates until ctx is cancelled, then waits for in-flight
// messages to finish.
func (b *Bot) Run(ctx context.Context) error {
	if b.dropPending {
		if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: true}); err != nil {
			return services.Wrap(services.ErrTransport, "telegram", "drop pending updates", "", err)
		}
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.pollTimeout
	updates := b.api.GetUpdatesChan(u)
	b.logger.Info("polling for updates", logging.Int("poll_timeout", b.pollTimeout))

	defer b.inflight.Wait()
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info("stopping; waiting for in-flight messages")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.dispatch(ctx, update)
		}
	}
}

// Wait blocks until every dispatched message has finished.
func (b *Bot) Wait() {
	b.inflight.Wait()
}

func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil || msg.Text == "" {
		return
	}
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}
	b.inflight.Add(1)
	go func() {
		defer b.inflight.Done()
		b.handleText(ctx, msg)
	}()
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	var text string
	switch msg.Command() {
	case "start":
		text = StartText
	case "help":
		text = HelpText
	default:
		return
	}
	if _, err := b.send(ctx, tgbotapi.NewMessage(msg.Chat.ID, text)); err != nil {
		b.logger.Warn("command reply failed",
			logging.String("command", msg.Command()),
			logging.Int64(logging.FieldChatID, msg.Chat.ID),
			logging.Error(err),
			logging.String(logging.FieldEventType, "command_reply_failed"))
	}
}

func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message) {
	requestID := b.newRequestID()
	ctx = services.WithRequestID(services.WithChatID(ctx, msg.Chat.ID), requestID)
	logger := logging.WithContext(ctx, b.logger)
	logger.Info("message received", logging.Int("message_id", msg.MessageID))

	conv := &chatConversation{bot: b, chatID: msg.Chat.ID, replyTo: msg.MessageID}
	outcome := b.handler.Handle(ctx, conv, msg.Text)

	logger.Info("message handled",
		logging.String("stage", outcome.Stage.String()),
		logging.String("kind", string(outcome.Kind)),
		logging.Int("chunks", outcome.Chunks),
		slog.Duration("elapsed", outcome.FinishedAt.Sub(outcome.StartedAt)))

	b.record(ctx, requestID, msg.Chat.ID, outcome)
	if outcome.Kind == pipeline.KindUnexpected {
		label := fmt.Sprintf("chat %d (%s)", msg.Chat.ID, outcome.FailedAt)
		if err := b.notifier.NotifyError(context.WithoutCancel(ctx), outcome.Err, label); err != nil {
			logger.Warn("operator notification failed", logging.Error(err))
		}
	}
}

func (b *Bot) record(ctx context.Context, requestID string, chatID int64, o pipeline.Outcome) {
	if b.recorder == nil {
		return
	}
	entry := history.Entry{
		RequestID:       requestID,
		ChatID:          chatID,
		URL:             o.URL,
		VideoID:         o.VideoID,
		Title:           o.Title,
		Stage:           o.Stage.String(),
		ErrorKind:       string(o.Kind),
		TranscriptChars: o.TranscriptChars,
		Chunks:          o.Chunks,
		StartedAt:       o.StartedAt,
		FinishedAt:      o.FinishedAt,
	}
	if o.Err != nil {
		entry.ErrorMessage = o.Err.Error()
	}
	if _, err := b.recorder.Record(context.WithoutCancel(ctx), entry); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, b.logger), "history write failed", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "request missing from history"))
	}
}

// send paces and performs one Bot API call. Pacing ignores cancellation so
// failure notices still reach the user during shutdown.
func (b *Bot) send(ctx context.Context, c tgbotapi.Chattable) (tgbotapi.Message, error) {
	waitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Minute)
	defer cancel()
	if err := b.limiter.Wait(waitCtx); err != nil {
		return tgbotapi.Message{}, services.Wrap(services.ErrTransport, "telegram", "rate limit", "", err)
	}
	msg, err := b.api.Send(c)
	if err != nil {
		return tgbotapi.Message{}, services.Wrap(services.ErrTransport, "telegram", "send", "", err)
	}
	return msg, nil
}
