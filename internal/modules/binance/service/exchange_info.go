package service

import (
	"context"
	"trade_assistant/internal/models"
)

// ExchangeInfo — все символы биржи. Права собираются и из permissions, и из permissionSets
// (новые ответы Binance отдают только второе поле).
func (c *Client) ExchangeInfo(ctx context.Context) ([]models.SymbolInfo, error) {
	var resp exchangeInfoResponse
	if err := c.get(ctx, "/api/v3/exchangeInfo", nil, &resp); err != nil {
		return nil, err
	}

	out := make([]models.SymbolInfo, 0, len(resp.Symbols))
	for _, s := range resp.Symbols {
		perms := append([]string(nil), s.Permissions...)
		for _, set := range s.PermissionSets {
			perms = append(perms, set...)
		}
		out = append(out, models.SymbolInfo{
			Symbol:      s.Symbol,
			Status:      s.Status,
			QuoteAsset:  s.QuoteAsset,
			Permissions: perms,
		})
	}
	return out, nil
}
