package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"
	"trade_assistant/internal/models"
)

// ListTradableSymbols — символы со SPOT-разрешением в статусе TRADING.
func (g *Gateway) ListTradableSymbols(ctx context.Context) (map[string]struct{}, error) {
	span, ctx := startSpan(ctx, "ListTradableSymbols")
	defer span.Finish()

	infos, err := g.ex.ExchangeInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("list symbols: %w", err)
	}
	out := make(map[string]struct{}, len(infos))
	for _, s := range infos {
		if s.Status == "TRADING" && s.HasPermission("SPOT") {
			out[s.Symbol] = struct{}{}
		}
	}
	return out, nil
}

// Balances — только активы с ненулевым балансом, порядок биржи сохраняется.
func (g *Gateway) Balances(ctx context.Context) ([]models.Balance, error) {
	span, ctx := startSpan(ctx, "Balances")
	defer span.Finish()

	all, err := g.ex.Balances(ctx)
	if err != nil {
		return nil, fmt.Errorf("balances: %w", err)
	}
	out := make([]models.Balance, 0, len(all))
	for _, b := range all {
		if b.Total > 0 {
			out = append(out, b)
		}
	}
	return out, nil
}

// TopActiveSymbol — пара к котируемому активу с максимальным изменением за 24ч.
// Левериджные токены (UP/DOWN) отбрасываются.
func (g *Gateway) TopActiveSymbol(ctx context.Context) (string, error) {
	span, ctx := startSpan(ctx, "TopActiveSymbol")
	defer span.Finish()

	tickers, err := g.ex.Tickers24h(ctx)
	if err != nil {
		return "", fmt.Errorf("tickers: %w", err)
	}

	var (
		best  string
		bestP float64
	)
	for _, t := range tickers {
		if !g.candidate(t.Symbol) {
			continue
		}
		if best == "" || t.PriceChangePercent > bestP {
			best, bestP = t.Symbol, t.PriceChangePercent
		}
	}
	if best == "" {
		return "", ErrNoCandidates
	}
	g.touch()
	return best, nil
}

func (g *Gateway) candidate(symbol string) bool {
	if !strings.HasSuffix(symbol, g.quoteAsset) || symbol == g.quoteAsset {
		return false
	}
	base := strings.TrimSuffix(symbol, g.quoteAsset)
	for _, m := range g.markers {
		if m != "" && strings.Contains(base, m) {
			return false
		}
	}
	return true
}

// RecentCandles — свечи за [now-lookback, now] по возрастанию времени.
func (g *Gateway) RecentCandles(ctx context.Context, symbol, interval string, lookback time.Duration) (models.CandleSeries, error) {
	span, ctx := startSpan(ctx, "RecentCandles")
	defer span.Finish()
	span.SetTag("symbol", symbol)

	end := g.now()
	series, err := g.ex.Klines(ctx, symbol, interval, end.Add(-lookback), end)
	if err != nil {
		return nil, fmt.Errorf("candles %s %s: %w", symbol, interval, err)
	}
	g.touch()
	return series, nil
}

// Recommendation — сводка теханализа; ErrUnsupportedInterval пробрасывается как есть.
func (g *Gateway) Recommendation(ctx context.Context, symbol, interval string) (models.Recommendation, error) {
	span, ctx := startSpan(ctx, "Recommendation")
	defer span.Finish()
	span.SetTag("symbol", symbol)

	rec, err := g.analyzer.Analysis(ctx, symbol, interval)
	if err != nil {
		return models.Recommendation{}, fmt.Errorf("recommendation %s %s: %w", symbol, interval, err)
	}
	g.touch()
	return rec, nil
}
