package analysis

import "math"

type ichimokuLines struct {
	tenkan, kijun, spanA, spanB, chikou []float64
}

// ichimoku computes the five cloud lines. Spans are shifted forward by the
// kijun period and chikou is the close shifted back by it, so the series
// stays aligned with the input bars.
func ichimoku(high, low, closes []float64, tenkanLen, kijunLen, senkouLen int) ichimokuLines {
	n := len(closes)
	out := ichimokuLines{
		tenkan: midpoint(high, low, tenkanLen),
		kijun:  midpoint(high, low, kijunLen),
		spanA:  nanSeries(n),
		spanB:  nanSeries(n),
		chikou: nanSeries(n),
	}

	rawB := midpoint(high, low, senkouLen)
	for i := kijunLen; i < n; i++ {
		src := i - kijunLen
		out.spanA[i] = (out.tenkan[src] + out.kijun[src]) / 2
		out.spanB[i] = rawB[src]
	}
	for i := 0; i+kijunLen < n; i++ {
		out.chikou[i] = closes[i+kijunLen]
	}
	return out
}

// midpoint is (highest high + lowest low) / 2 over a trailing window.
func midpoint(high, low []float64, period int) []float64 {
	out := nanSeries(len(high))
	for i := period - 1; i < len(high); i++ {
		hi, lo := math.Inf(-1), math.Inf(1)
		for j := i - period + 1; j <= i; j++ {
			hi = math.Max(hi, high[j])
			lo = math.Min(lo, low[j])
		}
		out[i] = (hi + lo) / 2
	}
	return out
}
