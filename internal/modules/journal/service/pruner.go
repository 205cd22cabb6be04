package service

import (
	"context"
	"fmt"
	"time"
	"trade_assistant/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Pruner по расписанию удаляет записи старше retention.
type Pruner struct {
	cron      *cron.Cron
	journal   Journal
	retention time.Duration

	now func() time.Time
}

func NewPruner(journal Journal, retention time.Duration) *Pruner {
	return &Pruner{
		cron:      cron.New(cron.WithSeconds()),
		journal:   journal,
		retention: retention,
		now:       time.Now,
	}
}

// Register добавляет задачу; spec — cron-выражение с секундами.
func (p *Pruner) Register(spec string) error {
	if _, err := p.cron.AddFunc(spec, p.prune); err != nil {
		return fmt.Errorf("register prune task: %w", err)
	}
	return nil
}

func (p *Pruner) Start() {
	p.cron.Start()
	logger.Info("journal: pruner started, retention %s", p.retention)
}

func (p *Pruner) Stop() {
	<-p.cron.Stop().Done()
}

func (p *Pruner) prune() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := p.journal.Prune(ctx, p.now().Add(-p.retention))
	if err != nil {
		logger.Error("journal: prune: %v", err)
		return
	}
	logger.Info("journal: pruned %d records", n)
}
