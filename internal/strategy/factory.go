package strategy

import (
	"fmt"
	"trade_assistant/internal/models"
)

type Factory struct {
	momentum *Momentum
	signal   *SignalFollower
}

func NewFactory(momentum *Momentum, signal *SignalFollower) *Factory {
	return &Factory{momentum: momentum, signal: signal}
}

// Runner возвращает раннер под тип стратегии.
func (f *Factory) Runner(kind models.StrategyType) (Runner, error) {
	switch kind {
	case models.StrategyMomentum:
		return f.momentum, nil
	case models.StrategySignal:
		return f.signal, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", kind)
	}
}
