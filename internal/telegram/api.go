package telegram

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ytscribe/internal/config"
	"ytscribe/internal/services"
)

// BotAPI is the subset of *tgbotapi.BotAPI the bot uses.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// NewAPI authenticates against the Bot API with the configured token. It calls
// getMe, so an invalid token fails here.
func NewAPI(cfg *config.Config, logger *slog.Logger) (*tgbotapi.BotAPI, error) {
	if cfg == nil || strings.TrimSpace(cfg.Telegram.Token) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "telegram", "connect", "telegram token is required", config.ErrMissingToken)
	}
	endpoint := cfg.Telegram.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	if logger != nil {
		_ = tgbotapi.SetLogger(slogBotLogger{logger: logger.With(slog.String("component", "tgbotapi"))})
	}
	api, err := tgbotapi.NewBotAPIWithClient(cfg.Telegram.Token, endpoint, &http.Client{})
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "telegram", "connect", "authenticate bot token", err)
	}
	return api, nil
}

// slogBotLogger routes the library's printf-style logging into slog at debug level.
type slogBotLogger struct {
	logger *slog.Logger
}

func (l slogBotLogger) Println(v ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintln(v...)))
}

func (l slogBotLogger) Printf(format string, v ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
