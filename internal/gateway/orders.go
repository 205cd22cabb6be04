package gateway

import (
	"context"
	"errors"
	"fmt"
	"trade_assistant/internal/models"
	binance "trade_assistant/internal/modules/binance/service"
	"trade_assistant/pkg/logger"

	"github.com/google/uuid"
)

// OrderError — отказ биржи или транспорта при создании ордера. Текст показывается пользователю как есть.
type OrderError struct {
	Side   models.Side
	Symbol string
	Msg    string
	Err    error
}

func (e *OrderError) Error() string {
	return "An error occurred while creating the order: " + e.Msg
}

func (e *OrderError) Unwrap() error { return e.Err }

type metaKey struct{}

type orderMeta struct {
	chatID   int64
	strategy models.StrategyType
}

// WithOrderMeta привязывает к контексту чат и стратегию для записи в журнал.
func WithOrderMeta(ctx context.Context, chatID int64, strategy models.StrategyType) context.Context {
	return context.WithValue(ctx, metaKey{}, orderMeta{chatID: chatID, strategy: strategy})
}

// PlaceOrder — рыночный ордер. Любая ошибка возвращается как *OrderError.
func (g *Gateway) PlaceOrder(ctx context.Context, side models.Side, symbol string, qty float64) (models.OrderResult, error) {
	span, ctx := startSpan(ctx, "PlaceOrder")
	defer span.Finish()
	span.SetTag("symbol", symbol)
	span.SetTag("side", string(side))

	res, err := g.ex.PlaceMarket(ctx, side, symbol, qty)

	var orderErr *OrderError
	if err != nil {
		span.SetTag("error", true)
		orderErr = &OrderError{Side: side, Symbol: symbol, Msg: exchangeMessage(err), Err: err}
		logger.Warn("order %s %s qty=%v failed: %v", side, symbol, qty, err)
	} else {
		logger.Info("order %s %s qty=%v filled avg=%v", side, symbol, qty, res.AvgPrice)
	}

	g.record(ctx, side, symbol, qty, res, orderErr)

	if orderErr != nil {
		return models.OrderResult{}, orderErr
	}
	return res, nil
}

func (g *Gateway) record(ctx context.Context, side models.Side, symbol string, qty float64, res models.OrderResult, orderErr *OrderError) {
	if g.journal == nil {
		return
	}
	meta, _ := ctx.Value(metaKey{}).(orderMeta)
	rec := models.OrderRecord{
		ID:            uuid.NewString(),
		ChatID:        meta.chatID,
		Strategy:      meta.strategy,
		Symbol:        symbol,
		Side:          side,
		Quantity:      qty,
		AvgPrice:      res.AvgPrice,
		ClientOrderID: res.ClientOrderID,
		CreatedAt:     g.now(),
	}
	if orderErr != nil {
		rec.Error = orderErr.Msg
	}
	// журнал не влияет на исход ордера
	if err := g.journal.Record(context.WithoutCancel(ctx), rec); err != nil {
		logger.Error("journal record %s %s: %v", side, symbol, err)
	}
}

func exchangeMessage(err error) string {
	var apiErr *binance.APIError
	if errors.As(err, &apiErr) && apiErr.Msg != "" {
		return apiErr.Msg
	}
	return fmt.Sprint(err)
}
