package main

import (
	"context"
	"trade_assistant/internal/conversation"
	"trade_assistant/internal/gateway"
	"trade_assistant/internal/modules/binance"
	"trade_assistant/internal/modules/config"
	"trade_assistant/internal/modules/health"
	"trade_assistant/internal/modules/journal"
	"trade_assistant/internal/modules/tradingview"
	"trade_assistant/internal/strategy"
	"trade_assistant/pkg/logger"
	"trade_assistant/pkg/tracing"

	telegram "trade_assistant/internal/modules/telegram_bot"

	"go.uber.org/fx"
)

const serviceName = "trade_assistant"

func main() {
	logger.SetServiceName(serviceName)
	tracing.SetServiceName(serviceName)

	app := fx.New(
		config.Module(),
		fx.Invoke(initLogger),
		fx.Invoke(initTracing),

		health.Module(),
		journal.Module(),
		binance.Module(),
		tradingview.Module(),
		gateway.Module(),
		strategy.Module(),
		conversation.Module(),
		telegram.Module(),
	)
	app.Run()
	logger.Sync()
}

func initLogger(cfg *config.Config) error {
	return logger.Init(cfg.Log.Level, cfg.Log.Development)
}

func initTracing(lc fx.Lifecycle, cfg *config.Config) error {
	if !cfg.Tracing.Enabled {
		return nil
	}
	_, closeFn, err := tracing.InitTracer(tracing.Config{
		Host: cfg.Tracing.Host,
		Port: cfg.Tracing.Port,
	})
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			closeFn()
			return nil
		},
	})
	logger.Info("tracing: jaeger agent %s:%d", cfg.Tracing.Host, cfg.Tracing.Port)
	return nil
}
