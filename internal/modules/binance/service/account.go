package service

import (
	"context"
	"net/http"
	"trade_assistant/internal/models"
)

// Balances — все активы аккаунта как есть, без фильтрации.
func (c *Client) Balances(ctx context.Context) ([]models.Balance, error) {
	var resp accountResponse
	if err := c.signed(ctx, http.MethodGet, "/api/v3/account", nil, &resp); err != nil {
		return nil, err
	}

	out := make([]models.Balance, 0, len(resp.Balances))
	for _, b := range resp.Balances {
		free := parseFloat(b.Free)
		locked := parseFloat(b.Locked)
		out = append(out, models.Balance{
			Asset:  b.Asset,
			Total:  free + locked,
			Locked: locked,
		})
	}
	return out, nil
}
