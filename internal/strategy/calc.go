package strategy

import (
	"math"

	"github.com/shopspring/decimal"
)

// CumulativeReturn — произведение (1 + pct_change) по ряду закрытий.
// Первая точка и нулевые предыдущие цены не участвуют.
func CumulativeReturn(closes []float64) float64 {
	prod := 1.0
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1]
		if prev == 0 {
			continue
		}
		prod *= closes[i] / prev
	}
	return prod
}

// TradeQuantity = amount / price с округлением до одного знака.
func TradeQuantity(amount, price float64) float64 {
	if price <= 0 || amount <= 0 || !finite(amount) || !finite(price) {
		return 0
	}
	q, _ := decimal.NewFromFloat(amount).
		Div(decimal.NewFromFloat(price)).
		Round(1).
		Float64()
	return q
}

func finite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}
