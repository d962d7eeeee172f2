// Package display shapes the analysis payload for presentation: chart
// ranges, trade markers and colors. Everything here is pure.
package display

import (
	"errors"
	"math"

	"github.com/HengWoo/TA-flagger/internal/models"
)

// PaddingRatio is the share of the value spread added above and below.
const PaddingRatio = 0.1

// ErrEmptySeries is returned when a series has no finite value to range over.
var ErrEmptySeries = errors.New("empty series: no finite values")

// Range is a [Low, High] axis bound rounded outward to integers.
type Range struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Contains reports whether v lies strictly inside the range.
func (r Range) Contains(v float64) bool {
	return v > r.Low && v < r.High
}

// Domain computes the padded range of field key across rows.
func Domain(rows []models.Row, key string) (Range, error) {
	return DomainOf(Finite(rows, key))
}

// Finite extracts the finite values of field key, skipping null and NaN.
func Finite(rows []models.Row, key string) []float64 {
	out := make([]float64, 0, len(rows))
	for _, r := range rows {
		if v, ok := r.Value(key); ok {
			out = append(out, v)
		}
	}
	return out
}

// DomainOf computes the padded range of values. Non-finite values are ignored.
func DomainOf(values []float64) (Range, error) {
	lo := math.Inf(1)
	hi := math.Inf(-1)
	n := 0
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
		n++
	}
	if n == 0 {
		return Range{}, ErrEmptySeries
	}

	pad := (hi - lo) * PaddingRatio
	r := Range{Low: math.Floor(lo - pad), High: math.Ceil(hi + pad)}

	// a flat integer series gets no padding
	if r.Low >= lo {
		r.Low = math.Floor(lo) - 1
	}
	if r.High <= hi {
		r.High = math.Ceil(hi) + 1
	}
	// past 2^53 a unit step no longer changes the float
	if r.Low >= lo {
		r.Low = math.Nextafter(lo, math.Inf(-1))
	}
	if r.High <= hi {
		r.High = math.Nextafter(hi, math.Inf(1))
	}
	return r, nil
}
