package service

import (
	"context"
	"fmt"
	"time"
	"trade_assistant/internal/models"
	"trade_assistant/pkg/db"

	"github.com/bytedance/sonic"
	"github.com/jackc/pgx/v5"
)

const createOrdersTable = `CREATE TABLE IF NOT EXISTS orders (
	id              TEXT PRIMARY KEY,
	chat_id         BIGINT NOT NULL,
	strategy        TEXT,
	symbol          TEXT NOT NULL,
	side            TEXT NOT NULL,
	quantity        DOUBLE PRECISION,
	avg_price       DOUBLE PRECISION,
	client_order_id TEXT,
	error           TEXT,
	payload         JSONB,
	created_at      TIMESTAMPTZ NOT NULL
)`

// Postgres пишет журнал через общий менеджер транзакций.
type Postgres struct {
	tx    db.TxManager
	close func()
}

func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := db.NewPool(ctx, db.PoolConfig{DSN: dsn})
	if err != nil {
		return nil, err
	}
	mgr := db.NewPgTxManager(pool)

	if _, err := mgr.Conn().Exec(ctx, createOrdersTable); err != nil {
		mgr.Close()
		return nil, fmt.Errorf("create orders table: %w", err)
	}
	return &Postgres{tx: mgr, close: mgr.Close}, nil
}

func (j *Postgres) Record(ctx context.Context, rec models.OrderRecord) error {
	// полная запись дублируется в payload, чтобы не мигрировать схему при новых полях
	payload, err := sonic.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode order %s: %w", rec.ID, err)
	}

	return j.tx.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx,
			`INSERT INTO orders (id, chat_id, strategy, symbol, side, quantity, avg_price, client_order_id, error, payload, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			rec.ID, rec.ChatID, string(rec.Strategy), rec.Symbol, string(rec.Side),
			rec.Quantity, rec.AvgPrice, rec.ClientOrderID, rec.Error, string(payload), rec.CreatedAt,
		)
		return err
	})
}

func (j *Postgres) Prune(ctx context.Context, before time.Time) (int64, error) {
	tag, err := j.tx.Conn().Exec(ctx, `DELETE FROM orders WHERE created_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("prune orders: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (j *Postgres) Close() error {
	if j.close != nil {
		j.close()
	}
	return nil
}
