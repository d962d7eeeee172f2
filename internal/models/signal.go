package models

// Action tags a signal or marker as an entry or an exit.
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
)

// Valid reports whether a is one of the two known actions.
func (a Action) Valid() bool {
	return a == ActionBuy || a == ActionSell
}

// SignalEntry is one row of the indicator signal table.
type SignalEntry struct {
	Date      string  `json:"date"`
	Indicator string  `json:"indicator"`
	Value     float64 `json:"value"`
	Action    Action  `json:"action"`
}

// SignalPoint marks where an indicator crossed a decision threshold,
// plotted at the bar close.
type SignalPoint struct {
	Date   string  `json:"date"`
	Close  float64 `json:"close"`
	Action Action  `json:"action"`
}

// Indicator short names used as signal keys.
const (
	IndicatorSMA      = "SMA"
	IndicatorEMA      = "EMA"
	IndicatorRSI      = "RSI"
	IndicatorMACD     = "MACD"
	IndicatorBB       = "BB"
	IndicatorStoch    = "Stoch"
	IndicatorIchimoku = "Ichimoku"
	IndicatorCCI      = "CCI"
	IndicatorADX      = "ADX"
	IndicatorWILLR    = "WILLR"
)

// Indicators lists every signal key in evaluation order.
var Indicators = []string{
	IndicatorSMA, IndicatorEMA, IndicatorRSI, IndicatorMACD, IndicatorBB,
	IndicatorStoch, IndicatorIchimoku, IndicatorCCI, IndicatorADX, IndicatorWILLR,
}
