package strategy

import (
	"context"
	"fmt"
	"time"
	"trade_assistant/internal/gateway"
	"trade_assistant/internal/models"
	"trade_assistant/internal/modules/config"
	"trade_assistant/pkg/logger"
)

// Momentum — пробой по самой активной монете: вход при экстремальном росте за окно,
// выход по стопу или цели.
type Momentum struct {
	market   MarketData
	orders   OrderPlacer
	notifier Notifier
	cfg      config.StrategyConfig

	sleep sleepFunc
}

func NewMomentum(cfg *config.Config, market MarketData, orders OrderPlacer, notifier Notifier) *Momentum {
	return &Momentum{
		market:   market,
		orders:   orders,
		notifier: notifier,
		cfg:      cfg.Strategy,
		sleep:    sleepCtx,
	}
}

func (m *Momentum) Run(ctx context.Context, p Params) error {
	ctx = gateway.WithOrderMeta(ctx, p.ChatID, models.StrategyMomentum)
	logger.Info("momentum: start chat=%d amount=%v", p.ChatID, p.Amount)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		symbol, candles, err := m.scan(ctx, p.ChatID)
		if err != nil {
			return err
		}
		last, ok := candles.LastClose()
		if !ok {
			return fmt.Errorf("momentum: no candles for %s", symbol)
		}
		qty := TradeQuantity(p.Amount, last)

		if CumulativeReturn(candles.Closes()) > m.cfg.BreakoutThreshold {
			if qty <= 0 {
				m.notifyf(ctx, p.ChatID, "Amount %v is too small to buy %s at %v", p.Amount, symbol, last)
				return ErrZeroQuantity
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			return m.trade(ctx, p.ChatID, symbol, qty, last)
		}

		m.notify(ctx, p.ChatID, "No suitable asset found.\nNext try in 20 sec... ")
		if err := m.sleep(ctx, m.cfg.RescanDelay); err != nil {
			return err
		}
	}
}

// scan: самая активная монета и её минутки; при сбое одна повторная попытка после паузы.
func (m *Momentum) scan(ctx context.Context, chatID int64) (string, models.CandleSeries, error) {
	symbol, candles, err := m.fetchTop(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return "", nil, ctx.Err()
		}
		logger.Warn("momentum: fetch failed, retry after cooldown: %v", err)
		m.notify(ctx, chatID, "Failed to get data. Will try again in 1 minute")
		if err := m.sleep(ctx, m.cfg.FetchCooldown); err != nil {
			return "", nil, err
		}
		if symbol, candles, err = m.fetchTop(ctx); err != nil {
			return "", nil, err
		}
	}
	m.notify(ctx, chatID, "Most active coin: "+symbol)
	return symbol, candles, nil
}

func (m *Momentum) fetchTop(ctx context.Context) (string, models.CandleSeries, error) {
	symbol, err := m.market.TopActiveSymbol(ctx)
	if err != nil {
		return "", nil, err
	}
	window := time.Duration(m.cfg.BreakoutWindow) * time.Minute
	candles, err := m.market.RecentCandles(ctx, symbol, "1m", window)
	if err != nil {
		return "", nil, err
	}
	return symbol, candles, nil
}

func (m *Momentum) trade(ctx context.Context, chatID int64, symbol string, qty, last float64) error {
	m.notifyf(ctx, chatID, "Creating \"BUY\" order. Ammount: %v\nLast kline close price %v", qty, last)

	res, err := m.orders.PlaceOrder(ctx, models.SideBuy, symbol, qty)
	if err != nil {
		m.notify(ctx, chatID, err.Error())
		return err
	}
	m.notify(ctx, chatID, "Order confirmed!")

	pos := models.Position{Symbol: symbol, Quantity: qty, Entry: res.AvgPrice}
	if pos.Entry <= 0 {
		pos.Entry = last
	}
	return m.hold(ctx, chatID, pos)
}

// hold опрашивает цену до стопа или цели и закрывает позицию целиком.
func (m *Momentum) hold(ctx context.Context, chatID int64, pos models.Position) error {
	stop := pos.Entry * m.cfg.StopLossFactor
	target := pos.Entry * m.cfg.TargetFactor

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.notify(ctx, chatID, "Checking prices...")
		if err := m.sleep(ctx, m.cfg.PollInterval); err != nil {
			return err
		}

		price, err := m.lastPrice(ctx, chatID, pos.Symbol)
		if err != nil {
			return err
		}
		m.notifyf(ctx, chatID, "Price %v\nTarget price %v\nStop loss price %v", price, target, stop)

		if price > stop && price < target {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		m.notifyf(ctx, chatID, "Creating \"SELL\" order. Ammount: %v\nBuy price: %v", pos.Quantity, pos.Entry)
		if _, err := m.orders.PlaceOrder(ctx, models.SideSell, pos.Symbol, pos.Quantity); err != nil {
			m.notify(ctx, chatID, err.Error())
			return err
		}
		m.notify(ctx, chatID, "SELL order confirmed!")
		return nil
	}
}

func (m *Momentum) lastPrice(ctx context.Context, chatID int64, symbol string) (float64, error) {
	candles, err := m.market.RecentCandles(ctx, symbol, "1m", 2*time.Minute)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		logger.Warn("momentum: price poll %s failed: %v", symbol, err)
		m.notify(ctx, chatID, "Failed to get data. Will continue selling in 1 minute")
		if err := m.sleep(ctx, m.cfg.FetchCooldown); err != nil {
			return 0, err
		}
		if candles, err = m.market.RecentCandles(ctx, symbol, "1m", 2*time.Minute); err != nil {
			return 0, err
		}
	}
	price, ok := candles.LastClose()
	if !ok {
		return 0, fmt.Errorf("momentum: no candles for %s", symbol)
	}
	return price, nil
}

func (m *Momentum) notify(ctx context.Context, chatID int64, msg string) {
	if _, err := m.notifier.Send(ctx, chatID, msg); err != nil {
		logger.Warn("momentum: notify chat=%d: %v", chatID, err)
	}
}

func (m *Momentum) notifyf(ctx context.Context, chatID int64, format string, args ...any) {
	if _, err := m.notifier.SendF(ctx, chatID, format, args...); err != nil {
		logger.Warn("momentum: notify chat=%d: %v", chatID, err)
	}
}
