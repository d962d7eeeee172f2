package display

import (
	"errors"
	"fmt"
	"time"

	"github.com/HengWoo/TA-flagger/internal/models"
)

// ErrInvalidTradeDate is returned when a trade timestamp cannot be parsed.
var ErrInvalidTradeDate = errors.New("invalid trade date")

var tradeDateLayouts = []string{
	models.DateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// MarkerDate reduces a payload timestamp to its UTC calendar date.
func MarkerDate(s string) (string, error) {
	for _, layout := range tradeDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTradeDate, s)
}

// Markers synthesizes an entry and an exit point for every trade, in
// trade order, colored by the trade's indicator set.
func Markers(trades []models.Trade) ([]models.Marker, error) {
	out := make([]models.Marker, 0, 2*len(trades))
	for i, t := range trades {
		buy, err := MarkerDate(t.BuyDate)
		if err != nil {
			return nil, fmt.Errorf("trade %d buy: %w", i, err)
		}
		sell, err := MarkerDate(t.SellDate)
		if err != nil {
			return nil, fmt.Errorf("trade %d sell: %w", i, err)
		}

		color := TradeColor(t.Indicators)
		out = append(out,
			models.Marker{Date: buy, Close: t.BuyPrice, Color: color, Action: models.ActionBuy},
			models.Marker{Date: sell, Close: t.SellPrice, Color: color, Action: models.ActionSell},
		)
	}
	return out, nil
}
