package service

import "errors"

var ErrUnsupportedInterval = errors.New("unsupported interval")

// суффиксы колонок сканера; у дневного интервала суффикса нет
var intervalSuffix = map[string]string{
	"1m":   "|1",
	"5m":   "|5",
	"15m":  "|15",
	"30m":  "|30",
	"1h":   "|60",
	"2h":   "|120",
	"4h":   "|240",
	"1d":   "",
	"1w":   "|1W",
	"1mon": "|1M",
}

// Suffix переводит интервал бота в кодировку TradingView.
func Suffix(interval string) (string, error) {
	s, ok := intervalSuffix[interval]
	if !ok {
		return "", ErrUnsupportedInterval
	}
	return s, nil
}
