package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HengWoo/TA-flagger/internal/models"
)

// TradeRepo persists matched trades for one symbol.
type TradeRepo struct {
	pool   *pgxpool.Pool
	symbol string
}

func NewTradeRepo(pool *pgxpool.Pool, symbol string) *TradeRepo {
	return &TradeRepo{pool: pool, symbol: symbol}
}

// RecordSnapshot inserts the trades of one analysis run in a single
// transaction. Trades already stored are skipped; the count of new rows
// is returned.
func (r *TradeRepo) RecordSnapshot(ctx context.Context, trades []models.Trade) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var inserted int64
	slots := make(map[[2]string]int)
	for _, t := range trades {
		buy, err := time.Parse(models.DateLayout, t.BuyDate)
		if err != nil {
			return 0, fmt.Errorf("buy date %q: %w", t.BuyDate, err)
		}
		sell, err := time.Parse(models.DateLayout, t.SellDate)
		if err != nil {
			return 0, fmt.Errorf("sell date %q: %w", t.SellDate, err)
		}

		key := [2]string{t.BuyDate, t.SellDate}
		slot := slots[key]
		slots[key] = slot + 1

		tag, err := tx.Exec(ctx,
			`INSERT INTO signal_trades
			 (symbol, buy_date, sell_date, slot, buy_price, sell_price, profit, indicators)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			 ON CONFLICT (symbol, buy_date, sell_date, slot) DO NOTHING`,
			r.symbol, buy, sell, slot, t.BuyPrice, t.SellPrice, t.Profit, t.Indicators,
		)
		if err != nil {
			return 0, fmt.Errorf("insert trade: %w", err)
		}
		inserted += tag.RowsAffected()
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return inserted, nil
}

// GetRecent returns the most recently closed trades, newest first.
func (r *TradeRepo) GetRecent(ctx context.Context, limit int) ([]models.Trade, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT buy_date, sell_date, buy_price, sell_price, profit, indicators
		 FROM signal_trades WHERE symbol = $1
		 ORDER BY sell_date DESC, slot DESC LIMIT $2`,
		r.symbol, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTrades(rows)
}

// GetStats returns aggregate statistics over every stored trade.
func (r *TradeRepo) GetStats(ctx context.Context) (*models.TradeStats, error) {
	var s models.TradeStats
	err := r.pool.QueryRow(ctx,
		`SELECT
			COUNT(*),
			COUNT(CASE WHEN profit > 0 THEN 1 END),
			COUNT(CASE WHEN profit <= 0 THEN 1 END),
			COALESCE(SUM(profit), 0),
			AVG(profit),
			(100.0 * COUNT(CASE WHEN profit > 0 THEN 1 END) / NULLIF(COUNT(*), 0))::float8,
			MIN(buy_date),
			MAX(sell_date)
		 FROM signal_trades WHERE symbol = $1`,
		r.symbol,
	).Scan(
		&s.TotalTrades, &s.Wins, &s.Losses, &s.TotalProfit,
		&s.AvgProfit, &s.WinRate, &s.FirstTrade, &s.LastTrade,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Latest returns the most recently closed trade, or nil when none exist.
func (r *TradeRepo) Latest(ctx context.Context) (*models.Trade, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT buy_date, sell_date, buy_price, sell_price, profit, indicators
		 FROM signal_trades WHERE symbol = $1
		 ORDER BY sell_date DESC, slot DESC LIMIT 1`,
		r.symbol,
	)
	t, err := scanTrade(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return t, err
}

// --- scan helpers ---

func scanTrade(row scannable) (*models.Trade, error) {
	var t models.Trade
	var buy, sell time.Time
	if err := row.Scan(&buy, &sell, &t.BuyPrice, &t.SellPrice, &t.Profit, &t.Indicators); err != nil {
		return nil, err
	}
	t.BuyDate = buy.UTC().Format(models.DateLayout)
	t.SellDate = sell.UTC().Format(models.DateLayout)
	return &t, nil
}

func collectTrades(rows rowsIter) ([]models.Trade, error) {
	out := []models.Trade{}
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}
