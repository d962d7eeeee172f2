package display

import (
	"fmt"
	"sort"

	"github.com/HengWoo/TA-flagger/internal/models"
)

// ChartSpec names one indicator chart and its line color.
type ChartSpec struct {
	Key   string `yaml:"key"`
	Color string `yaml:"color"`
}

// Layout lists what the dashboard plots.
type Layout struct {
	PriceColor  string      `yaml:"price_color"`
	MarkerColor string      `yaml:"marker_color"`
	Charts      []ChartSpec `yaml:"charts"`
}

// DefaultLayout is the built-in set of indicator charts.
func DefaultLayout() Layout {
	return Layout{
		PriceColor:  "#8884d8",
		MarkerColor: "red",
		Charts: []ChartSpec{
			{Key: "SMA_20", Color: "#FF6384"},
			{Key: "SMA_50", Color: "#36A2EB"},
			{Key: "EMA_20", Color: "#FFCE56"},
			{Key: "RSI", Color: "#4BC0C0"},
			{Key: "MACD_12_26_9", Color: "#9966FF"},
			{Key: "BBM_20_2.0", Color: "#FF9F40"},
			{Key: "STOCHk_14_3_3", Color: "#FF6384"},
			{Key: "ICH_0_ISA_9", Color: "#36A2EB"},
			{Key: "CCI", Color: "#FFCE56"},
			{Key: "ADX_14", Color: "#4BC0C0"},
			{Key: "WILLR", Color: "#9966FF"},
		},
	}
}

// SignalLayer is one indicator's signal points drawn over the price line.
type SignalLayer struct {
	Indicator string               `json:"indicator"`
	Name      string               `json:"name"`
	Color     string               `json:"color"`
	Points    []models.SignalPoint `json:"points"`
}

// PriceChart is the close line with trade markers and signal layers.
type PriceChart struct {
	Color   string          `json:"color"`
	Domain  *Range          `json:"domain"`
	Dates   []string        `json:"dates"`
	Close   []*float64      `json:"close"`
	Markers []models.Marker `json:"markers"`
	Layers  []SignalLayer   `json:"layers"`
}

// IndicatorChart is one indicator line. Domain is nil for an empty series.
type IndicatorChart struct {
	Key    string     `json:"key"`
	Color  string     `json:"color"`
	Domain *Range     `json:"domain"`
	Values []*float64 `json:"values"`
}

// Empty reports whether the chart has nothing to plot.
func (c IndicatorChart) Empty() bool {
	return c.Domain == nil
}

// View is everything the dashboard renders for one payload.
type View struct {
	HasData    bool                 `json:"hasData"`
	Price      PriceChart           `json:"price"`
	Indicators []IndicatorChart     `json:"indicators"`
	Trades     []models.Trade       `json:"trades"`
	Signals    []models.SignalEntry `json:"signals"`
}

// Build derives the dashboard view from a payload.
func Build(p *models.Payload, layout Layout) (View, error) {
	v := View{
		HasData: len(p.Data) > 0,
		Trades:  p.Trades,
		Signals: p.IndicatorData,
	}
	if !v.HasData {
		return v, nil
	}

	markers, err := Markers(p.Trades)
	if err != nil {
		return View{}, fmt.Errorf("build markers: %w", err)
	}

	v.Price = PriceChart{
		Color:   layout.PriceColor,
		Domain:  domainPtr(p.Data, "close"),
		Dates:   dates(p.Data),
		Close:   column(p.Data, "close"),
		Markers: markers,
		Layers:  signalLayers(p.Signals),
	}

	v.Indicators = make([]IndicatorChart, 0, len(layout.Charts))
	for _, spec := range layout.Charts {
		v.Indicators = append(v.Indicators, IndicatorChart{
			Key:    spec.Key,
			Color:  spec.Color,
			Domain: domainPtr(p.Data, spec.Key),
			Values: column(p.Data, spec.Key),
		})
	}
	return v, nil
}

func domainPtr(rows []models.Row, key string) *Range {
	r, err := Domain(rows, key)
	if err != nil {
		return nil
	}
	return &r
}

func dates(rows []models.Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Date
	}
	return out
}

func column(rows []models.Row, key string) []*float64 {
	out := make([]*float64, len(rows))
	for i, r := range rows {
		if v, ok := r.Value(key); ok {
			out[i] = &v
		}
	}
	return out
}

func signalLayers(signals map[string][]models.SignalPoint) []SignalLayer {
	names := make([]string, 0, len(signals))
	for name := range signals {
		names = append(names, name)
	}
	sort.Strings(names)

	layers := make([]SignalLayer, 0, len(names))
	for _, name := range names {
		layers = append(layers, SignalLayer{
			Indicator: name,
			Name:      name + " signals",
			Color:     IndicatorColor(name),
			Points:    signals[name],
		})
	}
	return layers
}
