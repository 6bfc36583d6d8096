package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ytscribe/internal/pipeline"
)

// chatConversation answers one incoming message. Replies quote the original
// message; edits target messages this conversation sent.
type chatConversation struct {
	bot     *Bot
	chatID  int64
	replyTo int
}

func (c *chatConversation) Reply(ctx context.Context, text string) (pipeline.MessageID, error) {
	msg := tgbotapi.NewMessage(c.chatID, text)
	msg.ReplyToMessageID = c.replyTo
	sent, err := c.bot.send(ctx, msg)
	if err != nil {
		return 0, err
	}
	return pipeline.MessageID(sent.MessageID), nil
}

func (c *chatConversation) Edit(ctx context.Context, id pipeline.MessageID, text string) error {
	_, err := c.bot.send(ctx, tgbotapi.NewEditMessageText(c.chatID, int(id), text))
	return err
}
