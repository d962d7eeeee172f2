// Package render draws the dashboard view as plain text tables and
// sparklines.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/HengWoo/TA-flagger/internal/client"
	"github.com/HengWoo/TA-flagger/internal/display"
	"github.com/HengWoo/TA-flagger/internal/models"
)

const (
	LoadingText = "Loading..."
	NoDataText  = "No data available"

	defaultWidth = 60
)

type Renderer struct {
	out    io.Writer
	layout display.Layout
	width  int
}

func New(out io.Writer, layout display.Layout) *Renderer {
	return &Renderer{out: out, layout: layout, width: defaultWidth}
}

// WithWidth sets the sparkline width in cells.
func (r *Renderer) WithWidth(width int) *Renderer {
	if width > 0 {
		r.width = width
	}
	return r
}

// State renders one lifecycle state. A loaded payload that cannot be
// built prints as an error line and its build error is returned.
func (r *Renderer) State(st client.State) error {
	switch s := st.(type) {
	case client.Loaded:
		v, err := display.Build(s.Payload, r.layout)
		if err != nil {
			if werr := r.line("Error: " + err.Error()); werr != nil {
				return werr
			}
			return err
		}
		return r.View(v)
	case client.Failed:
		return r.line("Error: " + s.Message)
	default:
		return r.line(LoadingText)
	}
}

// View renders a built dashboard view.
func (r *Renderer) View(v display.View) error {
	if !v.HasData {
		return r.line(NoDataText)
	}
	steps := []func(display.View) error{
		r.price,
		r.indicators,
		r.trades,
		r.signals,
	}
	for _, step := range steps {
		if err := step(v); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) line(s string) error {
	_, err := fmt.Fprintln(r.out, s)
	return err
}

func (r *Renderer) price(v display.View) error {
	p := v.Price
	fmt.Fprintf(r.out, "\n== Price (%s) ==\n", p.Color)
	if p.Domain == nil {
		fmt.Fprintln(r.out, "  no data")
	} else {
		fmt.Fprintf(r.out, "  domain %s  %s -> %s\n", formatRange(*p.Domain), first(p.Dates), last(p.Dates))
		fmt.Fprintf(r.out, "  %s\n", Sparkline(p.Close, *p.Domain, r.width))
	}

	if len(p.Markers) > 0 {
		fmt.Fprintf(r.out, "\nTrade markers (%s)\n", r.layout.MarkerColor)
		table := tablewriter.NewWriter(r.out)
		table.Header("Date", "Action", "Price", "Color")
		for _, m := range p.Markers {
			if err := table.Append(m.Date, actionLabel(m.Action), money(m.Close), m.Color); err != nil {
				return err
			}
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	fmt.Fprintln(r.out, "\nSignal layers")
	table := tablewriter.NewWriter(r.out)
	table.Header("Layer", "Color", "Points")
	for _, l := range p.Layers {
		if err := table.Append(l.Name, l.Color, fmt.Sprintf("%d", len(l.Points))); err != nil {
			return err
		}
	}
	return table.Render()
}

func (r *Renderer) indicators(v display.View) error {
	fmt.Fprintln(r.out, "\n== Indicators ==")
	width := 0
	for _, c := range v.Indicators {
		width = max(width, len(c.Key))
	}
	for _, c := range v.Indicators {
		if c.Empty() {
			fmt.Fprintf(r.out, "  %-*s  %-7s  no data\n", width, c.Key, c.Color)
			continue
		}
		fmt.Fprintf(r.out, "  %-*s  %-7s  %-22s  %s\n",
			width, c.Key, c.Color, formatRange(*c.Domain), Sparkline(c.Values, *c.Domain, r.width))
	}
	return nil
}

func (r *Renderer) trades(v display.View) error {
	fmt.Fprintln(r.out, "\n== Trades ==")
	table := tablewriter.NewWriter(r.out)
	table.Header("Buy Date", "Sell Date", "Buy Price", "Sell Price", "Profit", "Indicators")
	for _, t := range v.Trades {
		err := table.Append(
			t.BuyDate,
			t.SellDate,
			money(t.BuyPrice),
			money(t.SellPrice),
			money(t.Profit),
			strings.Join(t.Indicators, ", "),
		)
		if err != nil {
			return err
		}
	}
	return table.Render()
}

func (r *Renderer) signals(v display.View) error {
	fmt.Fprintln(r.out, "\n== Indicator Signals ==")
	table := tablewriter.NewWriter(r.out)
	table.Header("Date", "Indicator", "Value", "Action")
	for _, s := range v.Signals {
		if err := table.Append(s.Date, s.Indicator, money(s.Value), actionLabel(s.Action)); err != nil {
			return err
		}
	}
	return table.Render()
}

func actionLabel(a models.Action) string {
	if a == models.ActionBuy {
		return "Buy"
	}
	return "Sell"
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func formatRange(r display.Range) string {
	return fmt.Sprintf("[%g, %g]", r.Low, r.High)
}

func first(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

func last(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[len(s)-1]
}
