package telegram

import (
	"context"
	"trade_assistant/internal/conversation"
	health "trade_assistant/internal/modules/health/service"
	"trade_assistant/internal/modules/telegram_bot/service"
	"trade_assistant/internal/strategy"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("telegram",
		// 1. Бот и исходящие сообщения
		fx.Provide(
			service.NewBot,    // func(*config.Config) (*tgbot.BotAPI, error)
			service.NewSender, // *service.Sender
		),

		// 2. Адаптеры: *service.Sender -> нотифаеры стратегий и диалога
		fx.Provide(
			func(s *service.Sender) strategy.Notifier { return s },
			func(s *service.Sender) conversation.Notifier { return s },
		),

		// 3. Цикл апдейтов
		fx.Provide(
			service.NewTelegram, // func(*tgbot.BotAPI, *conversation.Machine) *service.Telegram
		),

		fx.Invoke(
			func(lc fx.Lifecycle, t *service.Telegram, state *health.State) {
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						t.Start()
						state.SetReady(true)
						return nil
					},
					OnStop: func(ctx context.Context) error {
						state.SetReady(false)
						t.Stop()
						return nil
					},
				})
			},
		),
	)
}
