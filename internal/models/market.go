package models

import "time"

type Candle struct {
	OpenTime time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
}

// CandleSeries отсортирован по времени по возрастанию.
type CandleSeries []Candle

func (s CandleSeries) Closes() []float64 {
	out := make([]float64, len(s))
	for i, c := range s {
		out[i] = c.Close
	}
	return out
}

// LastClose возвращает false на пустой серии.
func (s CandleSeries) LastClose() (float64, bool) {
	if len(s) == 0 {
		return 0, false
	}
	return s[len(s)-1].Close, true
}

type Balance struct {
	Asset  string
	Total  float64
	Locked float64
}

type Ticker struct {
	Symbol             string
	LastPrice          float64
	PriceChangePercent float64
}

type SymbolInfo struct {
	Symbol      string
	Status      string
	QuoteAsset  string
	Permissions []string
}

func (s SymbolInfo) HasPermission(p string) bool {
	for _, x := range s.Permissions {
		if x == p {
			return true
		}
	}
	return false
}
