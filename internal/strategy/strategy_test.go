package strategy

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"
	"trade_assistant/internal/gateway"
	"trade_assistant/internal/models"
	"trade_assistant/internal/modules/config"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type recNotifier struct {
	msgs []string
}

func (n *recNotifier) Send(_ context.Context, _ int64, msg string) (tgbot.Message, error) {
	n.msgs = append(n.msgs, msg)
	return tgbot.Message{}, nil
}

func (n *recNotifier) SendF(ctx context.Context, chatID int64, format string, args ...any) (tgbot.Message, error) {
	return n.Send(ctx, chatID, fmt.Sprintf(format, args...))
}

func (n *recNotifier) has(sub string) bool {
	for _, m := range n.msgs {
		if strings.Contains(m, sub) {
			return true
		}
	}
	return false
}

type placed struct {
	side models.Side
	qty  float64
}

type fakeOrders struct {
	placed  []placed
	price   float64
	err     error
	sideErr map[models.Side]error // отказ только для одной стороны
}

func (f *fakeOrders) PlaceOrder(_ context.Context, side models.Side, symbol string, qty float64) (models.OrderResult, error) {
	f.placed = append(f.placed, placed{side: side, qty: qty})
	err := f.err
	if e, ok := f.sideErr[side]; ok {
		err = e
	}
	if err != nil {
		return models.OrderResult{}, &gateway.OrderError{Side: side, Symbol: symbol, Msg: err.Error(), Err: err}
	}
	return models.OrderResult{Symbol: symbol, Side: side, Quantity: qty, AvgPrice: f.price}, nil
}

// fakeMarket отдаёт заранее заданные ответы по очереди.
type fakeMarket struct {
	topErrs []error
	symbol  string
	window  []models.CandleSeries
	prices  []float64
	recs    []string

	onEmpty func() // вызывается, когда очередь ответов кончилась
}

func (f *fakeMarket) TopActiveSymbol(context.Context) (string, error) {
	if len(f.topErrs) > 0 {
		err := f.topErrs[0]
		f.topErrs = f.topErrs[1:]
		if err != nil {
			return "", err
		}
	}
	return f.symbol, nil
}

func (f *fakeMarket) RecentCandles(ctx context.Context, _, _ string, lookback time.Duration) (models.CandleSeries, error) {
	if lookback > 2*time.Minute {
		if len(f.window) == 0 {
			return nil, f.empty(ctx)
		}
		s := f.window[0]
		if len(f.window) > 1 {
			f.window = f.window[1:]
		}
		return s, nil
	}
	if len(f.prices) == 0 {
		return nil, f.empty(ctx)
	}
	p := f.prices[0]
	f.prices = f.prices[1:]
	return models.CandleSeries{{Close: p - 0.01}, {Close: p}}, nil
}

func (f *fakeMarket) Recommendation(ctx context.Context, _, _ string) (models.Recommendation, error) {
	if len(f.recs) == 0 {
		return models.Recommendation{}, f.empty(ctx)
	}
	label := f.recs[0]
	f.recs = f.recs[1:]
	return models.Recommendation{Label: label, Buy: 10, Sell: 2}, nil
}

func (f *fakeMarket) empty(ctx context.Context) error {
	if f.onEmpty != nil {
		f.onEmpty()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return errors.New("no more data")
}

type sleepRecorder struct {
	calls []time.Duration
	hook  func(n int) // номер вызова с 1
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.calls = append(s.calls, d)
	if s.hook != nil {
		s.hook(len(s.calls))
	}
	return ctx.Err()
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Strategy = config.StrategyConfig{
		QuoteAsset:        "USDT",
		StopLossFactor:    0.985,
		TargetFactor:      1.02,
		BreakoutThreshold: 100000,
		BreakoutWindow:    120,
		FetchCooldown:     61 * time.Second,
		RescanDelay:       20 * time.Second,
		PollInterval:      3 * time.Second,
		SignalInterval:    time.Second,
	}
	return cfg
}

func TestTradeQuantity(t *testing.T) {
	tests := []struct {
		amount, price, want float64
	}{
		{100, 50, 2.0},
		{100, 33.33, 3.0},
		{100, 0, 0},
		{1, 200, 0},
		{25, 4, 6.3},
		{math.Inf(1), 50, 0},
		{100, math.Inf(1), 0},
		{math.NaN(), 50, 0},
	}
	for _, tt := range tests {
		if got := TradeQuantity(tt.amount, tt.price); got != tt.want {
			t.Errorf("TradeQuantity(%v, %v) = %v, want %v", tt.amount, tt.price, got, tt.want)
		}
	}
}

func TestCumulativeReturn(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
		want   float64
	}{
		{"flat", []float64{5, 5, 5, 5}, 1},
		{"doubling", []float64{1, 2, 4}, 4},
		{"zero previous skipped", []float64{0, 3, 6}, 2},
		{"single", []float64{7}, 1},
		{"empty", nil, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CumulativeReturn(tt.closes); got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func newMomentum(market *fakeMarket, orders *fakeOrders) (*Momentum, *recNotifier, *sleepRecorder) {
	n := &recNotifier{}
	s := &sleepRecorder{}
	m := NewMomentum(testConfig(), market, orders, n)
	m.sleep = s.sleep
	return m, n, s
}

func breakoutSeries() models.CandleSeries {
	return models.CandleSeries{{Close: 0.0001}, {Close: 20}}
}

func TestMomentumFlatPricesNoBuy(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	market := &fakeMarket{
		symbol: "SOLUSDT",
		window: []models.CandleSeries{{{Close: 10}, {Close: 10}, {Close: 10}}},
	}
	orders := &fakeOrders{}
	m, n, s := newMomentum(market, orders)
	s.hook = func(int) { cancel() }

	err := m.Run(ctx, Params{ChatID: 1, Amount: 100})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(orders.placed) != 0 {
		t.Fatalf("flat prices must not trade: %+v", orders.placed)
	}
	if !n.has("No suitable asset found") {
		t.Fatalf("rescan not reported: %v", n.msgs)
	}
	if len(s.calls) != 1 || s.calls[0] != 20*time.Second {
		t.Fatalf("unexpected sleeps %v", s.calls)
	}
}

func TestMomentumRescansUntilBreakout(t *testing.T) {
	market := &fakeMarket{
		symbol: "SOLUSDT",
		window: []models.CandleSeries{
			{{Close: 10}, {Close: 11}},
			breakoutSeries(),
		},
		prices: []float64{20.5},
	}
	orders := &fakeOrders{price: 20}
	m, _, _ := newMomentum(market, orders)

	if err := m.Run(context.Background(), Params{ChatID: 1, Amount: 100}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(orders.placed) != 2 || orders.placed[0].side != models.SideBuy {
		t.Fatalf("expected one BUY then SELL, got %+v", orders.placed)
	}
}

func TestMomentumExits(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
		polls  int
	}{
		{"target", []float64{20.1, 20.5}, 2},
		{"stop loss", []float64{20.2, 19.9, 19.0}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			market := &fakeMarket{
				symbol: "PUMPUSDT",
				window: []models.CandleSeries{breakoutSeries()},
				prices: tt.prices,
			}
			orders := &fakeOrders{price: 20}
			m, n, s := newMomentum(market, orders)

			if err := m.Run(context.Background(), Params{ChatID: 1, Amount: 100}); err != nil {
				t.Fatalf("Run: %v", err)
			}
			want := []placed{{models.SideBuy, 5}, {models.SideSell, 5}}
			if len(orders.placed) != 2 || orders.placed[0] != want[0] || orders.placed[1] != want[1] {
				t.Fatalf("orders = %+v, want %+v", orders.placed, want)
			}
			if len(s.calls) != tt.polls {
				t.Fatalf("polls = %d, want %d", len(s.calls), tt.polls)
			}
			if !n.has("Most active coin: PUMPUSDT") || !n.has("SELL order confirmed!") {
				t.Fatalf("missing messages: %v", n.msgs)
			}
		})
	}
}

func TestMomentumRetriesFetchOnce(t *testing.T) {
	market := &fakeMarket{
		topErrs: []error{errors.New("timeout")},
		symbol:  "PUMPUSDT",
		window:  []models.CandleSeries{breakoutSeries()},
		prices:  []float64{21},
	}
	orders := &fakeOrders{price: 20}
	m, n, s := newMomentum(market, orders)

	if err := m.Run(context.Background(), Params{ChatID: 1, Amount: 100}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if s.calls[0] != 61*time.Second {
		t.Fatalf("first sleep must be the cooldown, got %v", s.calls)
	}
	if !n.has("Failed to get data. Will try again in 1 minute") {
		t.Fatalf("retry not reported: %v", n.msgs)
	}
	if len(orders.placed) != 2 {
		t.Fatalf("expected BUY and SELL, got %+v", orders.placed)
	}
}

func TestMomentumSecondFetchFailurePropagates(t *testing.T) {
	market := &fakeMarket{
		topErrs: []error{errors.New("timeout"), errors.New("timeout again")},
		symbol:  "PUMPUSDT",
	}
	orders := &fakeOrders{}
	m, _, _ := newMomentum(market, orders)

	err := m.Run(context.Background(), Params{ChatID: 1, Amount: 100})
	if err == nil || !strings.Contains(err.Error(), "timeout again") {
		t.Fatalf("expected second failure, got %v", err)
	}
	if len(orders.placed) != 0 {
		t.Fatalf("no orders expected: %+v", orders.placed)
	}
}

func TestMomentumBuyErrorAborts(t *testing.T) {
	market := &fakeMarket{symbol: "PUMPUSDT", window: []models.CandleSeries{breakoutSeries()}}
	orders := &fakeOrders{err: errors.New("Account has insufficient balance for requested action.")}
	m, n, _ := newMomentum(market, orders)

	err := m.Run(context.Background(), Params{ChatID: 1, Amount: 100})
	if !AlreadyReported(err) {
		t.Fatalf("expected reported order error, got %v", err)
	}
	if len(orders.placed) != 1 {
		t.Fatalf("only the BUY attempt expected: %+v", orders.placed)
	}
	if !n.has("An error occurred while creating the order: Account has insufficient balance") {
		t.Fatalf("error not shown verbatim: %v", n.msgs)
	}
}

func TestMomentumSellErrorAborts(t *testing.T) {
	market := &fakeMarket{
		symbol: "PUMPUSDT",
		window: []models.CandleSeries{breakoutSeries()},
		prices: []float64{20.5},
	}
	orders := &fakeOrders{
		price:   20,
		sideErr: map[models.Side]error{models.SideSell: errors.New("Market is closed.")},
	}
	m, n, _ := newMomentum(market, orders)

	err := m.Run(context.Background(), Params{ChatID: 1, Amount: 100})
	if !AlreadyReported(err) {
		t.Fatalf("expected reported order error, got %v", err)
	}
	want := []placed{{models.SideBuy, 5}, {models.SideSell, 5}}
	if len(orders.placed) != 2 || orders.placed[0] != want[0] || orders.placed[1] != want[1] {
		t.Fatalf("orders = %+v, want %+v", orders.placed, want)
	}
	if !n.has("An error occurred while creating the order: Market is closed.") {
		t.Fatalf("error not shown verbatim: %v", n.msgs)
	}
	if n.has("SELL order confirmed!") {
		t.Fatalf("failed SELL reported as confirmed: %v", n.msgs)
	}
}

func TestMomentumZeroQuantity(t *testing.T) {
	market := &fakeMarket{
		symbol: "PUMPUSDT",
		window: []models.CandleSeries{{{Close: 0.001}, {Close: 200}}},
	}
	orders := &fakeOrders{}
	m, _, _ := newMomentum(market, orders)

	err := m.Run(context.Background(), Params{ChatID: 1, Amount: 1})
	if !errors.Is(err, ErrZeroQuantity) {
		t.Fatalf("expected ErrZeroQuantity, got %v", err)
	}
	if len(orders.placed) != 0 {
		t.Fatalf("no orders expected: %+v", orders.placed)
	}
}

func TestMomentumCancelWhileHolding(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	market := &fakeMarket{
		symbol: "PUMPUSDT",
		window: []models.CandleSeries{breakoutSeries()},
		prices: []float64{25, 25},
	}
	orders := &fakeOrders{price: 20}
	m, _, s := newMomentum(market, orders)
	s.hook = func(int) { cancel() }

	err := m.Run(ctx, Params{ChatID: 1, Amount: 100})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(orders.placed) != 1 || orders.placed[0].side != models.SideBuy {
		t.Fatalf("no SELL after cancel: %+v", orders.placed)
	}
}

func newSignal(market *fakeMarket, orders *fakeOrders) (*SignalFollower, *recNotifier) {
	n := &recNotifier{}
	s := NewSignalFollower(testConfig(), market, orders, n)
	s.sleep = (&sleepRecorder{}).sleep
	return s, n
}

func TestSignalFollowerTransitions(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	market := &fakeMarket{
		recs:    []string{models.RecNeutral, models.RecStrongBuy, models.RecStrongBuy, models.RecStrongSell},
		onEmpty: cancel,
	}
	orders := &fakeOrders{price: 100}
	s, n := newSignal(market, orders)

	err := s.Run(ctx, Params{ChatID: 7, Symbol: "BTCUSDT", Interval: "1h", Quantity: 2})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	want := []placed{{models.SideBuy, 2}, {models.SideSell, 2}}
	if len(orders.placed) != 2 || orders.placed[0] != want[0] || orders.placed[1] != want[1] {
		t.Fatalf("orders = %+v, want %+v", orders.placed, want)
	}
	if !n.has("<b>Recommendation: STRONG_BUY</b>\nBuy: 10\nSell 2") {
		t.Fatalf("recommendation not reported: %v", n.msgs)
	}
	if !n.has("PLACING  !!!___BUY___!!!  ORDER") || !n.has("PLACING  !!!___SELL___!!!  ORDER") {
		t.Fatalf("placing messages missing: %v", n.msgs)
	}
}

func TestSignalFollowerCancelDiscardsInFlightResult(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	market := &cancellingMarket{fakeMarket: &fakeMarket{recs: []string{models.RecStrongBuy}}, cancel: cancel}
	orders := &fakeOrders{}
	n := &recNotifier{}
	s := NewSignalFollower(testConfig(), market, orders, n)
	s.sleep = (&sleepRecorder{}).sleep

	err := s.Run(ctx, Params{ChatID: 7, Symbol: "BTCUSDT", Interval: "1h", Quantity: 2})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(orders.placed) != 0 {
		t.Fatalf("no order after cancel: %+v", orders.placed)
	}
}

// cancellingMarket отменяет сессию прямо во время запроса рекомендации.
type cancellingMarket struct {
	*fakeMarket
	cancel context.CancelFunc
}

func (c *cancellingMarket) Recommendation(ctx context.Context, symbol, interval string) (models.Recommendation, error) {
	rec, err := c.fakeMarket.Recommendation(ctx, symbol, interval)
	c.cancel()
	return rec, err
}

func TestSignalFollowerOrderErrorAborts(t *testing.T) {
	market := &fakeMarket{recs: []string{models.RecStrongBuy, models.RecStrongSell}}
	orders := &fakeOrders{err: errors.New("Invalid symbol.")}
	s, n := newSignal(market, orders)

	err := s.Run(context.Background(), Params{ChatID: 7, Symbol: "BTCUSDT", Interval: "1h", Quantity: 2})
	var orderErr *gateway.OrderError
	if !errors.As(err, &orderErr) {
		t.Fatalf("expected *OrderError, got %v", err)
	}
	if len(orders.placed) != 1 {
		t.Fatalf("runner must stop after the failed order: %+v", orders.placed)
	}
	if !n.has("An error occurred while creating the order: Invalid symbol.") {
		t.Fatalf("error not shown: %v", n.msgs)
	}
}

func TestSignalFollowerSellErrorAborts(t *testing.T) {
	market := &fakeMarket{recs: []string{models.RecStrongSell, models.RecStrongBuy}}
	orders := &fakeOrders{sideErr: map[models.Side]error{models.SideSell: errors.New("Account has insufficient balance for requested action.")}}
	s, n := newSignal(market, orders)

	err := s.Run(context.Background(), Params{ChatID: 7, Symbol: "BTCUSDT", Interval: "1h", Quantity: 2})
	if !AlreadyReported(err) {
		t.Fatalf("expected reported order error, got %v", err)
	}
	if len(orders.placed) != 1 || orders.placed[0].side != models.SideSell {
		t.Fatalf("runner must stop after the failed SELL: %+v", orders.placed)
	}
	if !n.has("An error occurred while creating the order: Account has insufficient balance") {
		t.Fatalf("error not shown verbatim: %v", n.msgs)
	}
}

func TestFactory(t *testing.T) {
	f := NewFactory(&Momentum{}, &SignalFollower{})
	for _, kind := range []models.StrategyType{models.StrategyMomentum, models.StrategySignal} {
		if r, err := f.Runner(kind); err != nil || r == nil {
			t.Fatalf("Runner(%s) = %v, %v", kind, r, err)
		}
	}
	if _, err := f.Runner("grid"); err == nil {
		t.Fatal("unknown strategy must fail")
	}
}
