package strategy

import (
	"context"
	"trade_assistant/internal/gateway"
	"trade_assistant/internal/models"
	"trade_assistant/internal/modules/config"
	"trade_assistant/pkg/logger"
)

// SignalFollower торгует по переходам сводной рекомендации: STRONG_BUY — покупка,
// STRONG_SELL — продажа. Без стопа и лимита итераций, до отмены.
type SignalFollower struct {
	market   MarketData
	orders   OrderPlacer
	notifier Notifier
	cfg      config.StrategyConfig

	sleep sleepFunc
}

func NewSignalFollower(cfg *config.Config, market MarketData, orders OrderPlacer, notifier Notifier) *SignalFollower {
	return &SignalFollower{
		market:   market,
		orders:   orders,
		notifier: notifier,
		cfg:      cfg.Strategy,
		sleep:    sleepCtx,
	}
}

func (s *SignalFollower) Run(ctx context.Context, p Params) error {
	ctx = gateway.WithOrderMeta(ctx, p.ChatID, models.StrategySignal)
	logger.Info("signal: start chat=%d %s %s qty=%v", p.ChatID, p.Symbol, p.Interval, p.Quantity)

	var long, sold bool
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		rec, err := s.market.Recommendation(ctx, p.Symbol, p.Interval)
		if err != nil {
			return err
		}
		s.notifyf(ctx, p.ChatID, "<b>Recommendation: %s</b>\nBuy: %d\nSell %d", rec.Label, rec.Buy, rec.Sell)

		// отмена во время запроса: результат уже не используем
		if err := ctx.Err(); err != nil {
			return err
		}

		switch {
		case rec.Label == models.RecStrongBuy && !long:
			if err := s.place(ctx, p, models.SideBuy); err != nil {
				return err
			}
			long, sold = true, false
		case rec.Label == models.RecStrongSell && !sold:
			if err := s.place(ctx, p, models.SideSell); err != nil {
				return err
			}
			sold, long = true, false
		}

		if err := s.sleep(ctx, s.cfg.SignalInterval); err != nil {
			return err
		}
	}
}

func (s *SignalFollower) place(ctx context.Context, p Params, side models.Side) error {
	s.notifyf(ctx, p.ChatID, "PLACING  !!!___%s___!!!  ORDER", side)
	res, err := s.orders.PlaceOrder(ctx, side, p.Symbol, p.Quantity)
	if err != nil {
		s.notify(ctx, p.ChatID, err.Error())
		return err
	}
	s.notifyf(ctx, p.ChatID, "%s order confirmed! Avg price: %v", side, res.AvgPrice)
	return nil
}

func (s *SignalFollower) notify(ctx context.Context, chatID int64, msg string) {
	if _, err := s.notifier.Send(ctx, chatID, msg); err != nil {
		logger.Warn("signal: notify chat=%d: %v", chatID, err)
	}
}

func (s *SignalFollower) notifyf(ctx context.Context, chatID int64, format string, args ...any) {
	if _, err := s.notifier.SendF(ctx, chatID, format, args...); err != nil {
		logger.Warn("signal: notify chat=%d: %v", chatID, err)
	}
}
