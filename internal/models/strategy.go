package models

type StrategyType string

const (
	StrategyMomentum StrategyType = "momentum_breakout"
	StrategySignal   StrategyType = "signal_following"
)

// Side — сторона рыночного ордера.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Intervals — фиксированный словарь интервалов, который видит пользователь.
var Intervals = []string{"1m", "5m", "15m", "30m", "1h", "2h", "4h", "1d", "1w", "1mon"}

func IsInterval(s string) bool {
	for _, i := range Intervals {
		if i == s {
			return true
		}
	}
	return false
}
