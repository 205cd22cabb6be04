package service

import (
	"context"
	"fmt"
	"strings"
	"trade_assistant/internal/conversation"
	"trade_assistant/internal/modules/config"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func NewBot(cfg *config.Config) (*tgbot.BotAPI, error) {
	b, err := tgbot.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return b, nil
}

type botAPI interface {
	Send(c tgbot.Chattable) (tgbot.Message, error)
}

// Sender — исходящие сообщения: HTML-разметка и клавиатуры.
type Sender struct {
	bot botAPI
}

func NewSender(bot *tgbot.BotAPI) *Sender {
	return &Sender{bot: bot}
}

func (s *Sender) Send(ctx context.Context, chatID int64, msg string) (tgbot.Message, error) {
	return s.Reply(ctx, chatID, msg, conversation.KeyboardNone)
}

func (s *Sender) SendF(ctx context.Context, chatID int64, format string, args ...any) (tgbot.Message, error) {
	return s.Send(ctx, chatID, fmt.Sprintf(format, args...))
}

// Reply отправляет текст с клавиатурой. Если телеграм не разобрал HTML
// (например, "<" в ответе биржи), сообщение уходит ещё раз без разметки.
func (s *Sender) Reply(_ context.Context, chatID int64, msg string, kb conversation.Keyboard) (tgbot.Message, error) {
	m := tgbot.NewMessage(chatID, msg)
	m.ParseMode = tgbot.ModeHTML
	if markup := keyboardMarkup(kb); markup != nil {
		m.ReplyMarkup = markup
	}

	sent, err := s.bot.Send(m)
	if err != nil && strings.Contains(err.Error(), "can't parse entities") {
		m.ParseMode = ""
		return s.bot.Send(m)
	}
	return sent, err
}
