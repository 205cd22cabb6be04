package tradingview

import (
	"trade_assistant/internal/modules/tradingview/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("tradingview",
		fx.Provide(
			service.NewClient, // *service.Client
		),
	)
}
