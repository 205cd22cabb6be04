package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"trade_assistant/internal/models"

	"github.com/google/uuid"
)

// PlaceMarket — рыночный ордер по количеству базового актива. Ответ FULL, чтобы сразу
// получить fills и посчитать среднюю цену исполнения.
func (c *Client) PlaceMarket(ctx context.Context, side models.Side, symbol string, qty float64) (models.OrderResult, error) {
	if qty <= 0 {
		return models.OrderResult{}, fmt.Errorf("PlaceMarket: quantity must be positive, got %v", qty)
	}

	clientID := uuid.NewString()
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("side", string(side))
	params.Set("type", "MARKET")
	params.Set("quantity", formatQty(qty))
	params.Set("newClientOrderId", clientID)
	params.Set("newOrderRespType", "FULL")

	var resp orderResponse
	if err := c.signed(ctx, http.MethodPost, "/api/v3/order", params, &resp); err != nil {
		return models.OrderResult{ClientOrderID: clientID, Symbol: symbol, Side: side, Quantity: qty}, err
	}

	return models.OrderResult{
		OrderID:       resp.OrderID,
		ClientOrderID: resp.ClientOrderID,
		Symbol:        resp.Symbol,
		Side:          side,
		Quantity:      qty,
		AvgPrice:      avgFillPrice(resp),
		Status:        resp.Status,
	}, nil
}

func avgFillPrice(resp orderResponse) float64 {
	var notional, filled float64
	for _, f := range resp.Fills {
		p, q := parseFloat(f.Price), parseFloat(f.Qty)
		notional += p * q
		filled += q
	}
	if filled > 0 {
		return notional / filled
	}
	// без fills — по сводным полям
	executed := parseFloat(resp.ExecutedQty)
	if executed > 0 {
		return parseFloat(resp.CummulativeQuoteQty) / executed
	}
	return 0
}
