package models

// Position живёт только внутри одного запуска стратегии.
type Position struct {
	Symbol   string
	Quantity float64
	Entry    float64
}
