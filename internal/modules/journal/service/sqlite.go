package service

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"
	"trade_assistant/internal/models"
	"trade_assistant/pkg/logger"

	_ "modernc.org/sqlite"
)

// SQLite хранит журнал в локальном файле.
type SQLite struct {
	db *sql.DB
	mu sync.Mutex
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	j := &SQLite{db: db}
	if err := j.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	logger.Info("journal: sqlite opened %s", path)
	return j, nil
}

func (j *SQLite) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS orders (
			id              TEXT PRIMARY KEY,
			chat_id         INTEGER NOT NULL,
			strategy        TEXT,
			symbol          TEXT NOT NULL,
			side            TEXT NOT NULL,
			quantity        REAL,
			avg_price       REAL,
			client_order_id TEXT,
			error           TEXT,
			created_at      INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_created ON orders(created_at)`,
	}
	for _, s := range stmts {
		if _, err := j.db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (j *SQLite) Record(ctx context.Context, rec models.OrderRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO orders (id, chat_id, strategy, symbol, side, quantity, avg_price, client_order_id, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.ChatID, string(rec.Strategy), rec.Symbol, string(rec.Side),
		rec.Quantity, rec.AvgPrice, rec.ClientOrderID, rec.Error, rec.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert order %s: %w", rec.ID, err)
	}
	return nil
}

func (j *SQLite) Prune(ctx context.Context, before time.Time) (int64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	res, err := j.db.ExecContext(ctx, `DELETE FROM orders WHERE created_at < ?`, before.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("prune orders: %w", err)
	}
	return res.RowsAffected()
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
