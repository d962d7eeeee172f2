package analysis

import "github.com/HengWoo/TA-flagger/internal/models"

// hit is one indicator firing on one bar.
type hit struct {
	action models.Action
	value  float64
}

type rule func(f *Frame, i int) (hit, bool)

// entryRules maps each indicator to its signal rule.
var entryRules = map[string]rule{
	models.IndicatorSMA:      smaRule,
	models.IndicatorEMA:      emaRule,
	models.IndicatorRSI:      rsiRule,
	models.IndicatorMACD:     macdRule,
	models.IndicatorBB:       bollingerRule,
	models.IndicatorStoch:    stochRule,
	models.IndicatorIchimoku: ichimokuRule,
	models.IndicatorCCI:      cciRule,
	models.IndicatorADX:      adxRule,
	models.IndicatorWILLR:    willrRule,
}

func buy(v float64) (hit, bool)  { return hit{action: models.ActionBuy, value: v}, true }
func sell(v float64) (hit, bool) { return hit{action: models.ActionSell, value: v}, true }

func smaRule(f *Frame, i int) (hit, bool) {
	fast, ok1 := f.Get(ColSMA20, i)
	slow, ok2 := f.Get(ColSMA50, i)
	switch {
	case !ok1 || !ok2:
	case fast > slow:
		return buy(fast)
	case fast < slow:
		return sell(fast)
	}
	return hit{}, false
}

func emaRule(f *Frame, i int) (hit, bool) {
	ema, ok1 := f.Get(ColEMA20, i)
	c, ok2 := f.Get(ColClose, i)
	switch {
	case !ok1 || !ok2:
	case c > ema:
		return buy(ema)
	case c < ema:
		return sell(ema)
	}
	return hit{}, false
}

func rsiRule(f *Frame, i int) (hit, bool) {
	rsi, ok := f.Get(ColRSI, i)
	switch {
	case !ok:
	case rsi < 30:
		return buy(rsi)
	case rsi > 70:
		return sell(rsi)
	}
	return hit{}, false
}

// macdRule fires only on the bar where the line crosses its signal.
func macdRule(f *Frame, i int) (hit, bool) {
	line, ok1 := f.Get(ColMACD, i)
	sig, ok2 := f.Get(ColMACDSignal, i)
	prevLine, ok3 := f.Get(ColMACD, i-1)
	prevSig, ok4 := f.Get(ColMACDSignal, i-1)
	switch {
	case !ok1 || !ok2 || !ok3 || !ok4:
	case line > sig && prevLine <= prevSig:
		return buy(line)
	case line < sig && prevLine >= prevSig:
		return sell(line)
	}
	return hit{}, false
}

func bollingerRule(f *Frame, i int) (hit, bool) {
	c, ok1 := f.Get(ColClose, i)
	lower, ok2 := f.Get(ColBBLower, i)
	upper, ok3 := f.Get(ColBBUpper, i)
	switch {
	case !ok1 || !ok2 || !ok3:
	case c < lower:
		return buy(lower)
	case c > upper:
		return sell(upper)
	}
	return hit{}, false
}

func stochRule(f *Frame, i int) (hit, bool) {
	k, ok1 := f.Get(ColStochK, i)
	d, ok2 := f.Get(ColStochD, i)
	switch {
	case !ok1 || !ok2:
	case k < 20 && k > d:
		return buy(k)
	case k > 80 && k < d:
		return sell(k)
	}
	return hit{}, false
}

func ichimokuRule(f *Frame, i int) (hit, bool) {
	c, ok1 := f.Get(ColClose, i)
	a, ok2 := f.Get(ColSpanA, i)
	b, ok3 := f.Get(ColSpanB, i)
	tenkan, ok4 := f.Get(ColTenkan, i)
	kijun, ok5 := f.Get(ColKijun, i)
	switch {
	case !ok1 || !ok2 || !ok3 || !ok4 || !ok5:
	case c > a && c > b && tenkan > kijun:
		return buy(a)
	case c < a && c < b && tenkan < kijun:
		return sell(a)
	}
	return hit{}, false
}

func cciRule(f *Frame, i int) (hit, bool) {
	cci, ok := f.Get(ColCCI, i)
	switch {
	case !ok:
	case cci < -100:
		return buy(cci)
	case cci > 100:
		return sell(cci)
	}
	return hit{}, false
}

func adxRule(f *Frame, i int) (hit, bool) {
	adx, ok1 := f.Get(ColADX, i)
	dmp, ok2 := f.Get(ColDMP, i)
	dmn, ok3 := f.Get(ColDMN, i)
	switch {
	case !ok1 || !ok2 || !ok3 || adx <= 25:
	case dmp > dmn:
		return buy(adx)
	case dmp < dmn:
		return sell(adx)
	}
	return hit{}, false
}

func willrRule(f *Frame, i int) (hit, bool) {
	w, ok := f.Get(ColWILLR, i)
	switch {
	case !ok:
	case w < -80:
		return buy(w)
	case w > -20:
		return sell(w)
	}
	return hit{}, false
}

// Signals is the per-indicator output of a signal pass.
type Signals struct {
	Entries []models.SignalEntry
	Points  map[string][]models.SignalPoint
	// Active lists, per bar, the indicators that fired a buy.
	Active [][]string
}

// Evaluate runs every indicator rule over every bar in indicator order.
func Evaluate(f *Frame) Signals {
	out := Signals{
		Points: make(map[string][]models.SignalPoint, len(models.Indicators)),
		Active: make([][]string, f.Len()),
	}
	for _, name := range models.Indicators {
		out.Points[name] = []models.SignalPoint{}
	}

	for i := 0; i < f.Len(); i++ {
		date := f.Bars[i].DateString()
		c := f.Bars[i].Close
		for _, name := range models.Indicators {
			h, ok := entryRules[name](f, i)
			if !ok {
				continue
			}
			out.Points[name] = append(out.Points[name], models.SignalPoint{Date: date, Close: c, Action: h.action})
			out.Entries = append(out.Entries, models.SignalEntry{Date: date, Indicator: name, Value: h.value, Action: h.action})
			if h.action == models.ActionBuy {
				out.Active[i] = append(out.Active[i], name)
			}
		}
	}
	return out
}
