package models

const (
	RecStrongBuy  = "STRONG_BUY"
	RecBuy        = "BUY"
	RecNeutral    = "NEUTRAL"
	RecSell       = "SELL"
	RecStrongSell = "STRONG_SELL"
)

// Recommendation — сводка TA-провайдера по символу/интервалу.
type Recommendation struct {
	Label   string
	Buy     int
	Sell    int
	Neutral int
}
