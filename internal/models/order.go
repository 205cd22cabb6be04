package models

import "time"

type OrderResult struct {
	OrderID       int64
	ClientOrderID string
	Symbol        string
	Side          Side
	Quantity      float64
	AvgPrice      float64
	Status        string
}

// OrderRecord — строка журнала ордеров, пишется на каждую попытку.
type OrderRecord struct {
	ID            string       `json:"id"`
	ChatID        int64        `json:"chat_id"`
	Strategy      StrategyType `json:"strategy"`
	Symbol        string       `json:"symbol"`
	Side          Side         `json:"side"`
	Quantity      float64      `json:"quantity"`
	AvgPrice      float64      `json:"avg_price"`
	ClientOrderID string       `json:"client_order_id"`
	Error         string       `json:"error,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}
