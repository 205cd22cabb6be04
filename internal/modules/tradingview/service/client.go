package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"trade_assistant/internal/models"
	"trade_assistant/internal/modules/config"

	"github.com/bytedance/sonic"
)

// Client — сканер TradingView: одна сводка теханализа на запрос.
type Client struct {
	http     *http.Client
	baseURL  string
	screener string
	exchange string
}

func NewClient(cfg *config.Config) *Client {
	screener := cfg.TradingView.Screener
	if screener == "" {
		screener = "crypto"
	}
	exchange := cfg.TradingView.Exchange
	if exchange == "" {
		exchange = "BINANCE"
	}
	return &Client{
		http:     &http.Client{Timeout: 10 * time.Second},
		baseURL:  strings.TrimRight(cfg.TradingView.BaseURL, "/"),
		screener: strings.ToLower(screener),
		exchange: strings.ToUpper(exchange),
	}
}

type scanRequest struct {
	Symbols struct {
		Tickers []string `json:"tickers"`
		Query   struct {
			Types []string `json:"types"`
		} `json:"query"`
	} `json:"symbols"`
	Columns []string `json:"columns"`
}

type scanResponse struct {
	Data []struct {
		S string `json:"s"`
		D []any  `json:"d"`
	} `json:"data"`
}

// Analysis запрашивает сводку по symbol на интервале interval (1m ... 1mon).
func (c *Client) Analysis(ctx context.Context, symbol, interval string) (models.Recommendation, error) {
	suffix, err := Suffix(interval)
	if err != nil {
		return models.Recommendation{}, fmt.Errorf("%w: %q", err, interval)
	}

	var req scanRequest
	req.Symbols.Tickers = []string{c.exchange + ":" + strings.ToUpper(symbol)}
	req.Symbols.Query.Types = []string{}
	cols := columns()
	req.Columns = make([]string, len(cols))
	for i, col := range cols {
		req.Columns[i] = col + suffix
	}

	body, err := sonic.Marshal(req)
	if err != nil {
		return models.Recommendation{}, fmt.Errorf("encode scan request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/%s/scan", c.baseURL, c.screener)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return models.Recommendation{}, fmt.Errorf("build scan request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return models.Recommendation{}, fmt.Errorf("scan %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Recommendation{}, fmt.Errorf("read scan response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return models.Recommendation{}, fmt.Errorf("tradingview: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out scanResponse
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return models.Recommendation{}, fmt.Errorf("decode scan response: %w", err)
	}
	if len(out.Data) == 0 {
		return models.Recommendation{}, fmt.Errorf("tradingview: no data for %s", req.Symbols.Tickers[0])
	}

	in := make(indicators, len(cols))
	for i, v := range out.Data[0].D {
		if i >= len(cols) {
			break
		}
		// null приходит для индикаторов, которые не успели посчитаться
		if f, ok := v.(float64); ok {
			in[cols[i]] = f
		}
	}

	rec, ok := in.summarize()
	if !ok {
		return models.Recommendation{}, fmt.Errorf("tradingview: empty summary for %s", symbol)
	}
	return rec, nil
}
