package strategy

import (
	"trade_assistant/internal/gateway"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("strategy",
		// шлюз закрывает и рынок, и ордера
		fx.Provide(
			func(g *gateway.Gateway) MarketData { return g },
			func(g *gateway.Gateway) OrderPlacer { return g },
		),
		fx.Provide(
			NewMomentum,
			NewSignalFollower,
			NewFactory,
		),
	)
}
