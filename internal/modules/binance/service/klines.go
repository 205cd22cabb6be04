package service

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"
	"trade_assistant/internal/models"
)

const klinesLimit = 1000

// binance принимает "1M" для месяца, в боте месяц это "1mon".
func klineInterval(interval string) string {
	if interval == "1mon" {
		return "1M"
	}
	return interval
}

// Klines — свечи [start, end] по возрастанию времени, все поля float64.
func (c *Client) Klines(ctx context.Context, symbol, interval string, start, end time.Time) (models.CandleSeries, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("interval", klineInterval(interval))
	params.Set("startTime", strconv.FormatInt(start.UnixMilli(), 10))
	params.Set("endTime", strconv.FormatInt(end.UnixMilli(), 10))
	params.Set("limit", strconv.Itoa(klinesLimit))

	var rows [][]any
	if err := c.get(ctx, "/api/v3/klines", params, &rows); err != nil {
		return nil, err
	}

	out := make(models.CandleSeries, 0, len(rows))
	for i, row := range rows {
		candle, err := parseKline(row)
		if err != nil {
			return nil, fmt.Errorf("kline %d of %s: %w", i, symbol, err)
		}
		out = append(out, candle)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OpenTime.Before(out[j].OpenTime) })
	return out, nil
}

// формат строки: [openTime, open, high, low, close, volume, closeTime, ...]
func parseKline(row []any) (models.Candle, error) {
	if len(row) < 6 {
		return models.Candle{}, fmt.Errorf("short row: %d fields", len(row))
	}
	ts, err := toFloat(row[0])
	if err != nil {
		return models.Candle{}, fmt.Errorf("open time: %w", err)
	}
	var f [5]float64
	for i := range f {
		if f[i], err = toFloat(row[i+1]); err != nil {
			return models.Candle{}, fmt.Errorf("field %d: %w", i+1, err)
		}
	}
	return models.Candle{
		OpenTime: time.UnixMilli(int64(ts)).UTC(),
		Open:     f[0],
		High:     f[1],
		Low:      f[2],
		Close:    f[3],
		Volume:   f[4],
	}, nil
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case int64:
		return float64(x), nil
	case string:
		return strconv.ParseFloat(x, 64)
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}
