package strategy

import (
	"context"
	"errors"
	"time"
	"trade_assistant/internal/gateway"
	"trade_assistant/internal/models"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ErrZeroQuantity — сумма слишком мала для шага количества 0.1.
var ErrZeroQuantity = errors.New("trade quantity rounds to zero")

// Notifier — куда раннер пишет прогресс.
type Notifier interface {
	Send(ctx context.Context, chatID int64, msg string) (tgbot.Message, error)
	SendF(ctx context.Context, chatID int64, format string, args ...any) (tgbot.Message, error)
}

// MarketData — чтение рынка через шлюз.
type MarketData interface {
	TopActiveSymbol(ctx context.Context) (string, error)
	RecentCandles(ctx context.Context, symbol, interval string, lookback time.Duration) (models.CandleSeries, error)
	Recommendation(ctx context.Context, symbol, interval string) (models.Recommendation, error)
}

type OrderPlacer interface {
	PlaceOrder(ctx context.Context, side models.Side, symbol string, qty float64) (models.OrderResult, error)
}

// Params — снимок полей сессии на момент подтверждения.
type Params struct {
	ChatID int64

	// momentum
	Amount float64

	// signal following
	Symbol   string
	Interval string
	Quantity float64
}

// Runner — один запуск стратегии до выхода по условию, ошибке или отмене ctx.
type Runner interface {
	Run(ctx context.Context, p Params) error
}

// AlreadyReported: раннер сам показал пользователю эту ошибку.
func AlreadyReported(err error) bool {
	var orderErr *gateway.OrderError
	return errors.As(err, &orderErr) || errors.Is(err, ErrZeroQuantity)
}

type sleepFunc func(ctx context.Context, d time.Duration) error

// sleepCtx — пауза, которая прерывается отменой ctx.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
