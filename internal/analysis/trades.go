package analysis

import "github.com/HengWoo/TA-flagger/internal/models"

// MinActiveBuys is the number of simultaneous buy signals a bar must
// exceed before positions open.
const MinActiveBuys = 5

// exitRules close an open position for the indicator that opened it.
var exitRules = map[string]func(f *Frame, i int) bool{
	models.IndicatorSMA: func(f *Frame, i int) bool {
		return below(f, i, ColSMA20, ColSMA50)
	},
	models.IndicatorEMA: func(f *Frame, i int) bool {
		return below(f, i, ColClose, ColEMA20)
	},
	models.IndicatorRSI: func(f *Frame, i int) bool {
		v, ok := f.Get(ColRSI, i)
		return ok && v > 70
	},
	models.IndicatorMACD: func(f *Frame, i int) bool {
		return below(f, i, ColMACD, ColMACDSignal)
	},
	models.IndicatorBB: func(f *Frame, i int) bool {
		return below(f, i, ColBBUpper, ColClose)
	},
	models.IndicatorStoch: func(f *Frame, i int) bool {
		v, ok := f.Get(ColStochK, i)
		return ok && v > 80
	},
	models.IndicatorIchimoku: func(f *Frame, i int) bool {
		return below(f, i, ColClose, ColSpanA)
	},
	models.IndicatorCCI: func(f *Frame, i int) bool {
		v, ok := f.Get(ColCCI, i)
		return ok && v > 100
	},
	models.IndicatorADX: func(f *Frame, i int) bool {
		return below(f, i, ColDMP, ColDMN)
	},
	models.IndicatorWILLR: func(f *Frame, i int) bool {
		v, ok := f.Get(ColWILLR, i)
		return ok && v > -20
	},
}

// below reports a < b when both columns are defined at bar i.
func below(f *Frame, i int, a, b string) bool {
	x, ok1 := f.Get(a, i)
	y, ok2 := f.Get(b, i)
	return ok1 && ok2 && x < y
}

type position struct {
	indicator  string
	buyDate    string
	buyPrice   float64
	indicators []string
}

// book tracks at most one open position per indicator, in opening order.
type book struct {
	open []position
}

func (b *book) has(indicator string) bool {
	for _, p := range b.open {
		if p.indicator == indicator {
			return true
		}
	}
	return false
}

// MatchTrades opens positions on bars with more than MinActiveBuys active
// buy signals and closes each one when its indicator's exit rule fires.
// Trades come back in closing order; positions still open at the last bar
// are not reported.
func MatchTrades(f *Frame, active [][]string) []models.Trade {
	trades := []models.Trade{}
	var b book

	for i := 0; i < f.Len(); i++ {
		bar := f.Bars[i]
		date := bar.DateString()

		if i < len(active) && len(active[i]) > MinActiveBuys {
			set := append([]string(nil), active[i]...)
			for _, name := range set {
				if b.has(name) {
					continue
				}
				b.open = append(b.open, position{
					indicator: name, buyDate: date, buyPrice: bar.Close, indicators: set,
				})
			}
		}

		kept := b.open[:0]
		for _, p := range b.open {
			if exit, ok := exitRules[p.indicator]; ok && exit(f, i) {
				trades = append(trades, models.Trade{
					BuyDate:    p.buyDate,
					SellDate:   date,
					BuyPrice:   p.buyPrice,
					SellPrice:  bar.Close,
					Profit:     bar.Close - p.buyPrice,
					Indicators: p.indicators,
				})
				continue
			}
			kept = append(kept, p)
		}
		b.open = kept
	}
	return trades
}
