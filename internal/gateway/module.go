package gateway

import (
	binance "trade_assistant/internal/modules/binance/service"
	health "trade_assistant/internal/modules/health/service"
	journal "trade_assistant/internal/modules/journal/service"
	tradingview "trade_assistant/internal/modules/tradingview/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("gateway",
		// адаптеры конкретных клиентов к интерфейсам шлюза
		fx.Provide(
			func(c *binance.Client) Exchange { return c },
			func(c *tradingview.Client) Analyzer { return c },
			func(j journal.Journal) Recorder { return j },
			func(s *health.State) PollTracker { return s },
		),
		fx.Provide(
			NewGateway, // *Gateway
		),
	)
}
