package conversation

import (
	"context"
	"trade_assistant/internal/gateway"
	health "trade_assistant/internal/modules/health/service"
	"trade_assistant/internal/strategy"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("conversation",
		fx.Provide(
			func(g *gateway.Gateway) Market { return g },
			func(f *strategy.Factory) RunnerFactory { return f },
			func(s *health.State) RunTracker { return s },
		),
		fx.Provide(
			NewMachine, // *Machine
		),
		// на остановке гасим раннеры
		fx.Invoke(func(lc fx.Lifecycle, m *Machine) {
			lc.Append(fx.Hook{
				OnStop: func(ctx context.Context) error {
					return m.Shutdown(ctx)
				},
			})
		}),
	)
}
