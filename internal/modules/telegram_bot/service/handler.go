package service

import (
	"context"
	"sync"
	"trade_assistant/internal/conversation"
	"trade_assistant/pkg/logger"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Router — получатель входящих сообщений.
type Router interface {
	HandleCommand(ctx context.Context, chatID int64, command, text string)
	HandleText(ctx context.Context, chatID int64, text string)
}

// Telegram — long-poll цикл апдейтов.
type Telegram struct {
	bot    *tgbot.BotAPI
	router Router

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewTelegram(bot *tgbot.BotAPI, machine *conversation.Machine) *Telegram {
	return &Telegram{bot: bot, router: machine}
}

// Start запускает цикл в фоне; апдейты обрабатываются последовательно.
func (t *Telegram) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel

	u := tgbot.NewUpdate(0)
	u.Timeout = 30
	updates := t.bot.GetUpdatesChan(u)

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		for update := range updates {
			t.handleUpdate(ctx, update)
		}
	}()
	logger.Info("telegram: polling as @%s", t.bot.Self.UserName)
}

func (t *Telegram) Stop() {
	if t.cancel == nil {
		return
	}
	t.bot.StopReceivingUpdates()
	t.cancel()
	t.wg.Wait()
}

func (t *Telegram) handleUpdate(ctx context.Context, update tgbot.Update) {
	msg := update.Message
	// callback-и и inline mode не используются
	if msg == nil || msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		logger.Debug("chat %d: /%s", chatID, msg.Command())
		t.router.HandleCommand(ctx, chatID, msg.Command(), msg.Text)
		return
	}
	if msg.Text == "" {
		return
	}
	t.router.HandleText(ctx, chatID, msg.Text)
}
