package service

import (
	"context"
	"trade_assistant/internal/models"
)

// Tickers24h — суточная статистика по всем символам.
func (c *Client) Tickers24h(ctx context.Context) ([]models.Ticker, error) {
	var resp []ticker24h
	if err := c.get(ctx, "/api/v3/ticker/24hr", nil, &resp); err != nil {
		return nil, err
	}

	out := make([]models.Ticker, 0, len(resp))
	for _, t := range resp {
		out = append(out, models.Ticker{
			Symbol:             t.Symbol,
			LastPrice:          parseFloat(t.LastPrice),
			PriceChangePercent: parseFloat(t.PriceChangePercent),
		})
	}
	return out, nil
}
