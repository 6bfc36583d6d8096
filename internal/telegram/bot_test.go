package telegram

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ytscribe/internal/history"
	"ytscribe/internal/pipeline"
	"ytscribe/internal/services"
)

type fakeAPI struct {
	mu        sync.Mutex
	nextID    int
	sent      []tgbotapi.Chattable
	requests  []tgbotapi.Chattable
	updates   chan tgbotapi.Update
	stopped   bool
	sendErr   error
	pollTotal int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{nextID: 500, updates: make(chan tgbotapi.Update, 8)}
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return tgbotapi.Message{}, f.sendErr
	}
	f.sent = append(f.sent, c)
	f.nextID++
	return tgbotapi.Message{MessageID: f.nextID}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	f.pollTotal = config.Timeout
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *fakeAPI) sentCopy() []tgbotapi.Chattable {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tgbotapi.Chattable(nil), f.sent...)
}

type scriptedHandler struct {
	mu      sync.Mutex
	texts   []string
	ctxs    []context.Context
	outcome pipeline.Outcome
}

func (h *scriptedHandler) Handle(ctx context.Context, conv pipeline.Conversation, text string) pipeline.Outcome {
	h.mu.Lock()
	h.texts = append(h.texts, text)
	h.ctxs = append(h.ctxs, ctx)
	h.mu.Unlock()
	id, err := conv.Reply(ctx, pipeline.DownloadingText)
	if err == nil {
		_ = conv.Edit(ctx, id, "done")
	}
	return h.outcome
}

type memoryRecorder struct {
	mu      sync.Mutex
	entries []history.Entry
}

func (m *memoryRecorder) Record(_ context.Context, e history.Entry) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return int64(len(m.entries)), nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	errors []string
}

func (n *recordingNotifier) NotifyStartup(context.Context, string, string) error { return nil }
func (n *recordingNotifier) TestNotification(context.Context) error             { return nil }
func (n *recordingNotifier) NotifyError(_ context.Context, err error, label string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, label+": "+err.Error())
	return nil
}

func textMessage(chatID int64, messageID int, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: messageID,
		Chat:      &tgbotapi.Chat{ID: chatID},
		Text:      text,
	}}
}

func commandMessage(chatID int64, command string) tgbotapi.Update {
	update := textMessage(chatID, 1, command)
	update.Message.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(command)}}
	return update
}

func TestCommandsReplyWithUsageText(t *testing.T) {
	api := newFakeAPI()
	handler := &scriptedHandler{}
	bot := New(api, handler)

	bot.dispatch(context.Background(), commandMessage(7, "/start"))
	bot.dispatch(context.Background(), commandMessage(7, "/help"))
	bot.dispatch(context.Background(), commandMessage(7, "/unknown"))
	bot.Wait()

	sent := api.sentCopy()
	if len(sent) != 2 {
		t.Fatalf("expected 2 replies, got %d", len(sent))
	}
	start, ok := sent[0].(tgbotapi.MessageConfig)
	if !ok || start.Text != StartText || start.ChatID != 7 {
		t.Fatalf("unexpected /start reply %#v", sent[0])
	}
	help, ok := sent[1].(tgbotapi.MessageConfig)
	if !ok || help.Text != HelpText {
		t.Fatalf("unexpected /help reply %#v", sent[1])
	}
	if len(handler.texts) != 0 {
		t.Fatal("commands must not reach the pipeline")
	}
}

func TestTextMessagesRunPipelineWithContext(t *testing.T) {
	api := newFakeAPI()
	handler := &scriptedHandler{outcome: pipeline.Outcome{Stage: pipeline.StageDelivered, URL: "https://youtu.be/x", Chunks: 1}}
	recorder := &memoryRecorder{}
	bot := New(api, handler, WithRecorder(recorder), WithRequestIDs(func() string { return "req-1" }))

	bot.dispatch(context.Background(), textMessage(42, 9, "https://youtu.be/x"))
	bot.Wait()

	if len(handler.texts) != 1 || handler.texts[0] != "https://youtu.be/x" {
		t.Fatalf("unexpected pipeline input %v", handler.texts)
	}
	ctx := handler.ctxs[0]
	if id, ok := services.ChatIDFromContext(ctx); !ok || id != 42 {
		t.Fatalf("chat id missing from context: %v %v", id, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-1" {
		t.Fatalf("request id missing from context: %v %v", rid, ok)
	}

	sent := api.sentCopy()
	if len(sent) != 2 {
		t.Fatalf("expected reply and edit, got %d", len(sent))
	}
	reply, ok := sent[0].(tgbotapi.MessageConfig)
	if !ok || reply.ReplyToMessageID != 9 || reply.ChatID != 42 {
		t.Fatalf("unexpected status reply %#v", sent[0])
	}
	edit, ok := sent[1].(tgbotapi.EditMessageTextConfig)
	if !ok || edit.MessageID != 501 || edit.ChatID != 42 || edit.Text != "done" {
		t.Fatalf("unexpected edit %#v", sent[1])
	}

	if len(recorder.entries) != 1 {
		t.Fatalf("expected one history entry, got %d", len(recorder.entries))
	}
	entry := recorder.entries[0]
	if entry.RequestID != "req-1" || entry.ChatID != 42 || entry.Stage != "delivered" || entry.Chunks != 1 {
		t.Fatalf("unexpected history entry %+v", entry)
	}
}

func TestUnexpectedOutcomeNotifiesOperator(t *testing.T) {
	api := newFakeAPI()
	handler := &scriptedHandler{outcome: pipeline.Outcome{
		Stage:    pipeline.StageFailed,
		FailedAt: pipeline.StageCleanedUp,
		Kind:     pipeline.KindUnexpected,
		Err:      errors.New("send failed"),
	}}
	notifier := &recordingNotifier{}
	bot := New(api, handler, WithNotifier(notifier))

	bot.dispatch(context.Background(), textMessage(3, 1, "youtu.be/abc"))
	bot.Wait()

	if len(notifier.errors) != 1 || notifier.errors[0] != "chat 3 (cleaned_up): send failed" {
		t.Fatalf("unexpected notifications %v", notifier.errors)
	}
}

func TestSendFailuresAreTransportErrors(t *testing.T) {
	api := newFakeAPI()
	api.sendErr = errors.New("Bad Request: message is too long")
	bot := New(api, &scriptedHandler{})
	conv := &chatConversation{bot: bot, chatID: 1, replyTo: 2}

	if _, err := conv.Reply(context.Background(), "hi"); !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if err := conv.Edit(context.Background(), 3, "hi"); !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestRunDropsPendingAndStopsOnCancel(t *testing.T) {
	api := newFakeAPI()
	handler := &scriptedHandler{outcome: pipeline.Outcome{Stage: pipeline.StageDelivered}}
	bot := New(api, handler, WithPolling(30, true), WithRateLimit(1000, 10))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- bot.Run(ctx) }()

	api.updates <- textMessage(1, 1, "youtu.be/a")
	api.updates <- tgbotapi.Update{}
	deadline := time.Now().Add(2 * time.Second)
	for {
		handler.mu.Lock()
		n := len(handler.texts)
		handler.mu.Unlock()
		if n == 1 || time.Now().After(deadline) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	if !api.stopped {
		t.Fatal("expected polling to stop")
	}
	if api.pollTotal != 30 {
		t.Fatalf("unexpected poll timeout %d", api.pollTotal)
	}
	if len(api.requests) != 1 {
		t.Fatalf("expected deleteWebhook request, got %d", len(api.requests))
	}
	if cfg, ok := api.requests[0].(tgbotapi.DeleteWebhookConfig); !ok || !cfg.DropPendingUpdates {
		t.Fatalf("unexpected startup request %#v", api.requests[0])
	}
	if len(handler.texts) != 1 {
		t.Fatalf("expected one pipeline run, got %d", len(handler.texts))
	}
}
