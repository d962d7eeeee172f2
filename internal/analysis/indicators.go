package analysis

import (
	"math"

	talib "github.com/markcheno/go-talib"

	"github.com/HengWoo/TA-flagger/internal/models"
)

// Column names carried by every computed row.
const (
	ColOpen   = "open"
	ColHigh   = "high"
	ColLow    = "low"
	ColClose  = "close"
	ColVolume = "volume"

	ColSMA20 = "SMA_20"
	ColSMA50 = "SMA_50"
	ColEMA20 = "EMA_20"
	ColRSI   = "RSI"

	ColMACD       = "MACD_12_26_9"
	ColMACDHist   = "MACDh_12_26_9"
	ColMACDSignal = "MACDs_12_26_9"

	ColBBLower     = "BBL_20_2.0"
	ColBBMiddle    = "BBM_20_2.0"
	ColBBUpper     = "BBU_20_2.0"
	ColBBBandwidth = "BBB_20_2.0"
	ColBBPercent   = "BBP_20_2.0"

	ColStochK = "STOCHk_14_3_3"
	ColStochD = "STOCHd_14_3_3"

	ColSpanA  = "ICH_0_ISA_9"
	ColSpanB  = "ICH_0_ISB_26"
	ColTenkan = "ICH_0_ITS_9"
	ColKijun  = "ICH_0_IKS_26"
	ColChikou = "ICH_0_ICS_26"

	ColCCI   = "CCI"
	ColADX   = "ADX_14"
	ColDMP   = "DMP_14"
	ColDMN   = "DMN_14"
	ColWILLR = "WILLR"
)

// Frame holds the bars and one NaN-padded series per column.
type Frame struct {
	Bars   []models.Bar
	series map[string][]float64
}

// Len returns the number of bars.
func (f *Frame) Len() int { return len(f.Bars) }

// Get returns column col at bar i and whether it holds a finite value.
func (f *Frame) Get(col string, i int) (float64, bool) {
	s, ok := f.series[col]
	if !ok || i < 0 || i >= len(s) {
		return 0, false
	}
	v := s[i]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Rows converts the frame into payload rows.
func (f *Frame) Rows() []models.Row {
	rows := make([]models.Row, len(f.Bars))
	for i, b := range f.Bars {
		r := models.NewRow(b.DateString())
		for col, s := range f.series {
			r.Set(col, s[i])
		}
		rows[i] = r
	}
	return rows
}

// Compute derives every indicator column from bars. Values inside an
// indicator's warm-up window are NaN.
func Compute(bars []models.Bar) *Frame {
	n := len(bars)
	open := make([]float64, n)
	high := make([]float64, n)
	low := make([]float64, n)
	closes := make([]float64, n)
	volume := make([]float64, n)
	for i, b := range bars {
		open[i], high[i], low[i], closes[i], volume[i] = b.Open, b.High, b.Low, b.Close, b.Volume
	}

	f := &Frame{Bars: bars, series: map[string][]float64{
		ColOpen: open, ColHigh: high, ColLow: low, ColClose: closes, ColVolume: volume,
	}}

	f.series[ColSMA20] = guarded(n, 19, func() []float64 { return talib.Sma(closes, 20) })
	f.series[ColSMA50] = guarded(n, 49, func() []float64 { return talib.Sma(closes, 50) })
	f.series[ColEMA20] = guarded(n, 19, func() []float64 { return talib.Ema(closes, 20) })
	f.series[ColRSI] = guarded(n, 14, func() []float64 { return talib.Rsi(closes, 14) })

	f.series[ColMACD], f.series[ColMACDSignal], f.series[ColMACDHist] = macd(closes, 12, 26, 9)

	upper, middle, lower := nanSeries(n), nanSeries(n), nanSeries(n)
	if n > 19 {
		upper, middle, lower = talib.BBands(closes, 20, 2, 2, talib.SMA)
		mask(upper, 19)
		mask(middle, 19)
		mask(lower, 19)
	}
	f.series[ColBBUpper], f.series[ColBBMiddle], f.series[ColBBLower] = upper, middle, lower
	bandwidth, percent := nanSeries(n), nanSeries(n)
	for i := range closes {
		width := upper[i] - lower[i]
		if middle[i] != 0 {
			bandwidth[i] = width / middle[i] * 100
		}
		if width != 0 {
			percent[i] = (closes[i] - lower[i]) / width
		}
	}
	f.series[ColBBBandwidth], f.series[ColBBPercent] = bandwidth, percent

	k, d := nanSeries(n), nanSeries(n)
	if n > 17 {
		k, d = talib.Stoch(high, low, closes, 14, 3, talib.SMA, 3, talib.SMA)
		mask(k, 17)
		mask(d, 17)
	}
	f.series[ColStochK], f.series[ColStochD] = k, d

	ich := ichimoku(high, low, closes, 9, 26, 52)
	f.series[ColTenkan] = ich.tenkan
	f.series[ColKijun] = ich.kijun
	f.series[ColSpanA] = ich.spanA
	f.series[ColSpanB] = ich.spanB
	f.series[ColChikou] = ich.chikou

	f.series[ColCCI] = guarded(n, 13, func() []float64 { return talib.Cci(high, low, closes, 14) })
	f.series[ColADX] = guarded(n, 27, func() []float64 { return talib.Adx(high, low, closes, 14) })
	f.series[ColDMP] = guarded(n, 14, func() []float64 { return talib.PlusDI(high, low, closes, 14) })
	f.series[ColDMN] = guarded(n, 14, func() []float64 { return talib.MinusDI(high, low, closes, 14) })
	f.series[ColWILLR] = guarded(n, 13, func() []float64 { return talib.WillR(high, low, closes, 14) })

	return f
}

// guarded runs fn only when there are more than lookback bars and masks the
// first lookback outputs.
func guarded(n, lookback int, fn func() []float64) []float64 {
	if n <= lookback {
		return nanSeries(n)
	}
	return mask(fn(), lookback)
}

// macd builds the line from two EMAs and smooths the signal over the valid
// part of the line only.
func macd(closes []float64, fast, slow, signal int) (line, sig, hist []float64) {
	n := len(closes)
	line, sig, hist = nanSeries(n), nanSeries(n), nanSeries(n)
	lineStart := slow - 1
	if n <= lineStart {
		return line, sig, hist
	}

	fastEMA := talib.Ema(closes, fast)
	slowEMA := talib.Ema(closes, slow)
	for i := lineStart; i < n; i++ {
		line[i] = fastEMA[i] - slowEMA[i]
	}

	if n-lineStart < signal {
		return line, sig, hist
	}
	smoothed := talib.Ema(line[lineStart:], signal)
	for i := signal - 1; i < len(smoothed); i++ {
		sig[lineStart+i] = smoothed[i]
		hist[lineStart+i] = line[lineStart+i] - smoothed[i]
	}
	return line, sig, hist
}

func mask(s []float64, lookback int) []float64 {
	for i := range s {
		if i < lookback || math.IsInf(s[i], 0) {
			s[i] = math.NaN()
		}
	}
	return s
}

func nanSeries(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}
