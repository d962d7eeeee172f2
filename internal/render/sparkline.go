package render

import (
	"strings"

	"github.com/HengWoo/TA-flagger/internal/display"
)

var ticks = []rune("▁▂▃▄▅▆▇█")

// Sparkline draws values scaled to r in at most width cells. Each cell
// averages the defined values of its bucket; a bucket without any is blank.
func Sparkline(values []*float64, r display.Range, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}
	cells := min(width, len(values))
	span := r.High - r.Low

	var b strings.Builder
	for c := 0; c < cells; c++ {
		lo := c * len(values) / cells
		hi := (c + 1) * len(values) / cells

		sum, n := 0.0, 0
		for _, v := range values[lo:hi] {
			if v != nil {
				sum += *v
				n++
			}
		}
		if n == 0 || span <= 0 {
			b.WriteRune(' ')
			continue
		}

		pos := (sum/float64(n) - r.Low) / span
		idx := int(pos * float64(len(ticks)))
		idx = max(0, min(idx, len(ticks)-1))
		b.WriteRune(ticks[idx])
	}
	return b.String()
}
