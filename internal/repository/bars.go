package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HengWoo/TA-flagger/internal/models"
)

// BarRepo stores OHLCV bars for one symbol.
type BarRepo struct {
	pool   *pgxpool.Pool
	symbol string
}

func NewBarRepo(pool *pgxpool.Pool, symbol string) *BarRepo {
	return &BarRepo{pool: pool, symbol: symbol}
}

// GetAll returns every bar for the symbol, oldest first.
func (r *BarRepo) GetAll(ctx context.Context) ([]models.Bar, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT ts, open, high, low, close, volume
		 FROM price_bars WHERE symbol = $1 ORDER BY ts ASC`,
		r.symbol,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBars(rows)
}

// LoadBars lets the repo act as an analysis bar source.
func (r *BarRepo) LoadBars(ctx context.Context) ([]models.Bar, error) {
	bars, err := r.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load bars for %s: %w", r.symbol, err)
	}
	return bars, nil
}

// Import bulk-loads bars through a staging table, overwriting existing
// bars with the same timestamp. Returns the number of rows written.
func (r *BarRepo) Import(ctx context.Context, bars []models.Bar) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`CREATE TEMP TABLE price_bars_stage (LIKE price_bars INCLUDING DEFAULTS) ON COMMIT DROP`,
	); err != nil {
		return 0, fmt.Errorf("create stage: %w", err)
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"price_bars_stage"},
		[]string{"symbol", "ts", "open", "high", "low", "close", "volume"},
		pgx.CopyFromSlice(len(bars), func(i int) ([]any, error) {
			b := bars[i]
			return []any{r.symbol, b.Time, b.Open, b.High, b.Low, b.Close, b.Volume}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("copy bars: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`INSERT INTO price_bars (symbol, ts, open, high, low, close, volume)
		 SELECT DISTINCT ON (symbol, ts) symbol, ts, open, high, low, close, volume
		 FROM price_bars_stage ORDER BY symbol, ts
		 ON CONFLICT (symbol, ts) DO UPDATE SET
		   open = EXCLUDED.open, high = EXCLUDED.high, low = EXCLUDED.low,
		   close = EXCLUDED.close, volume = EXCLUDED.volume`,
	)
	if err != nil {
		return 0, fmt.Errorf("merge bars: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *BarRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM price_bars WHERE symbol = $1`, r.symbol,
	).Scan(&n)
	return n, err
}

// --- scan helpers ---

type scannable interface {
	Scan(dest ...any) error
}

type rowsIter interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func collectBars(rows rowsIter) ([]models.Bar, error) {
	var out []models.Bar
	for rows.Next() {
		var b models.Bar
		var ts time.Time
		if err := rows.Scan(&ts, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, err
		}
		b.Time = ts.UTC()
		out = append(out, b)
	}
	return out, rows.Err()
}
