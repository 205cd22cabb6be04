package service

import (
	"context"
	"time"
	"trade_assistant/internal/models"
)

// Journal — журнал попыток ордеров.
type Journal interface {
	Record(ctx context.Context, rec models.OrderRecord) error
	// Prune удаляет записи старше before, возвращает число удалённых.
	Prune(ctx context.Context, before time.Time) (int64, error)
	Close() error
}

// Noop — журнал выключен (driver: none).
type Noop struct{}

func (Noop) Record(context.Context, models.OrderRecord) error { return nil }
func (Noop) Prune(context.Context, time.Time) (int64, error)  { return 0, nil }
func (Noop) Close() error                                     { return nil }
