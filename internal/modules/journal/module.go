package journal

import (
	"context"
	"fmt"
	"time"
	"trade_assistant/internal/modules/config"
	"trade_assistant/internal/modules/journal/service"

	"go.uber.org/fx"
)

// NewJournal выбирает бэкенд по journal.driver.
func NewJournal(lc fx.Lifecycle, cfg *config.Config) (service.Journal, error) {
	var (
		j   service.Journal
		err error
	)
	switch cfg.Journal.Driver {
	case "", "none":
		return service.Noop{}, nil
	case "sqlite":
		j, err = service.NewSQLite(cfg.Journal.DSN)
	case "postgres":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		j, err = service.NewPostgres(ctx, cfg.Journal.DSN)
	default:
		return nil, fmt.Errorf("unknown journal driver %q", cfg.Journal.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("journal %s: %w", cfg.Journal.Driver, err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return j.Close()
		},
	})
	return j, nil
}

func Module() fx.Option {
	return fx.Module("journal",
		fx.Provide(
			NewJournal, // service.Journal
		),
		// очистка старых записей по расписанию
		fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config, j service.Journal) error {
			if _, off := j.(service.Noop); off || cfg.Journal.PruneSchedule == "" {
				return nil
			}
			retention := time.Duration(cfg.Journal.RetentionDays) * 24 * time.Hour
			if retention <= 0 {
				return nil
			}
			p := service.NewPruner(j, retention)
			if err := p.Register(cfg.Journal.PruneSchedule); err != nil {
				return err
			}
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					p.Start()
					return nil
				},
				OnStop: func(context.Context) error {
					p.Stop()
					return nil
				},
			})
			return nil
		}),
	)
}
