package conversation

import (
	"context"
	"trade_assistant/internal/models"
)

// State — позиция сессии в одной из двух цепочек.
type State string

const (
	StateIdle State = ""

	// /my_strategy
	StateAmountInput  State = "amount_input"
	StateConfirmInput State = "confirm_input"

	// /strong_buy
	StateSymbolInput   State = "symbol_input"
	StateIntervalInput State = "interval_input"
	StateQntyInput     State = "qnty_input"
	StateConfInput     State = "conf_input"

	StateRunning State = "running"
)

// Fields — собранные за диалог значения.
type Fields struct {
	Amount   float64
	Symbol   string
	Interval string
	Quantity float64
}

// Session — прогресс одного чата. В map хранится копия, наружу тоже отдаётся копия.
type Session struct {
	ChatID int64
	State  State
	Flow   models.StrategyType
	Fields Fields

	symbols map[string]struct{}
	cancel  context.CancelFunc
	runID   uint64
}
