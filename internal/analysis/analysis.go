// Package analysis turns OHLCV bars into the dashboard payload: indicator
// rows, per-indicator signals, and trades matched from those signals.
package analysis

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/HengWoo/TA-flagger/internal/models"
)

// Run computes indicators, signals and trades over bars, which must be
// sorted by time.
func Run(bars []models.Bar) (*models.Payload, error) {
	if len(bars) == 0 {
		return nil, ErrNoBars
	}

	frame := Compute(bars)
	sig := Evaluate(frame)
	trades := MatchTrades(frame, sig.Active)

	entries := sig.Entries
	if entries == nil {
		entries = []models.SignalEntry{}
	}

	slog.Info("analysis complete",
		"component", "analysis",
		"bars", len(bars),
		"signal_entries", len(entries),
		"trades", len(trades),
	)

	return &models.Payload{
		Data:          frame.Rows(),
		IndicatorData: entries,
		Signals:       sig.Points,
		Trades:        trades,
	}, nil
}

// Summarize aggregates trades into win/loss statistics.
func Summarize(trades []models.Trade) (models.TradeStats, error) {
	var s models.TradeStats
	for _, t := range trades {
		s.TotalTrades++
		s.TotalProfit += t.Profit
		if t.Profit > 0 {
			s.Wins++
		} else {
			s.Losses++
		}

		buy, err := time.Parse(models.DateLayout, t.BuyDate)
		if err != nil {
			return models.TradeStats{}, fmt.Errorf("trade buy date: %w", err)
		}
		sell, err := time.Parse(models.DateLayout, t.SellDate)
		if err != nil {
			return models.TradeStats{}, fmt.Errorf("trade sell date: %w", err)
		}
		if s.FirstTrade == nil || buy.Before(*s.FirstTrade) {
			s.FirstTrade = &buy
		}
		if s.LastTrade == nil || sell.After(*s.LastTrade) {
			s.LastTrade = &sell
		}
	}

	if s.TotalTrades > 0 {
		avg := s.TotalProfit / float64(s.TotalTrades)
		rate := float64(s.Wins) / float64(s.TotalTrades) * 100
		s.AvgProfit, s.WinRate = &avg, &rate
	}
	return s, nil
}
