package gateway

import (
	"context"
	"errors"
	"time"
	"trade_assistant/internal/models"
	"trade_assistant/internal/modules/config"

	"github.com/opentracing/opentracing-go"
)

var ErrNoCandidates = errors.New("no candidate symbols")

// Exchange — то, что нужно от биржевого REST-клиента.
type Exchange interface {
	ExchangeInfo(ctx context.Context) ([]models.SymbolInfo, error)
	Balances(ctx context.Context) ([]models.Balance, error)
	Tickers24h(ctx context.Context) ([]models.Ticker, error)
	Klines(ctx context.Context, symbol, interval string, start, end time.Time) (models.CandleSeries, error)
	PlaceMarket(ctx context.Context, side models.Side, symbol string, qty float64) (models.OrderResult, error)
}

// Analyzer — провайдер сводки теханализа.
type Analyzer interface {
	Analysis(ctx context.Context, symbol, interval string) (models.Recommendation, error)
}

// Recorder пишет попытки ордеров в журнал.
type Recorder interface {
	Record(ctx context.Context, rec models.OrderRecord) error
}

// PollTracker отмечает успешные опросы рынка (для /healthz).
type PollTracker interface {
	TouchPoll(t time.Time)
}

// Gateway — единая точка доступа стратегий и чата к бирже и TA-провайдеру.
type Gateway struct {
	ex       Exchange
	analyzer Analyzer
	journal  Recorder
	polls    PollTracker

	quoteAsset string
	markers    []string

	now func() time.Time
}

func NewGateway(cfg *config.Config, ex Exchange, analyzer Analyzer, journal Recorder, polls PollTracker) *Gateway {
	quote := cfg.Strategy.QuoteAsset
	if quote == "" {
		quote = "USDT"
	}
	return &Gateway{
		ex:         ex,
		analyzer:   analyzer,
		journal:    journal,
		polls:      polls,
		quoteAsset: quote,
		markers:    cfg.Strategy.LeveragedMarkers,
		now:        time.Now,
	}
}

func (g *Gateway) touch() {
	if g.polls != nil {
		g.polls.TouchPoll(g.now())
	}
}

func startSpan(ctx context.Context, name string) (opentracing.Span, context.Context) {
	return opentracing.StartSpanFromContext(ctx, "gateway."+name)
}
