package display

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/HengWoo/TA-flagger/internal/models"
)

// DefaultColor is used for indicators without an assigned color.
const DefaultColor = "#000000"

var indicatorColors = map[string]string{
	models.IndicatorSMA:      "#FF6384",
	models.IndicatorEMA:      "#36A2EB",
	models.IndicatorRSI:      "#FFCE56",
	models.IndicatorMACD:     "#4BC0C0",
	models.IndicatorBB:       "#9966FF",
	models.IndicatorStoch:    "#FF9F40",
	models.IndicatorIchimoku: "#FF6384",
	models.IndicatorCCI:      "#36A2EB",
	models.IndicatorADX:      "#FFCE56",
	models.IndicatorWILLR:    "#4BC0C0",
}

// IndicatorColor returns the fixed chart color for an indicator short name.
func IndicatorColor(name string) string {
	if c, ok := indicatorColors[name]; ok {
		return c
	}
	return DefaultColor
}

// IndicatorKey is the canonical key of an indicator set: names sorted
// and joined with commas. The input slice is left untouched.
func IndicatorKey(indicators []string) string {
	sorted := make([]string, len(indicators))
	copy(sorted, indicators)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}

// TradeColor derives a hex color from an indicator set. Equal sets map
// to equal colors whatever their order; different sets may collide.
func TradeColor(indicators []string) string {
	h := xxhash.Sum64String(IndicatorKey(indicators))
	return fmt.Sprintf("#%06x", h&0xffffff)
}
