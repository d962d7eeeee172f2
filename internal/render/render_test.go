package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HengWoo/TA-flagger/internal/client"
	"github.com/HengWoo/TA-flagger/internal/display"
	"github.com/HengWoo/TA-flagger/internal/models"
)

func f(v float64) *float64 { return &v }

func payload() *models.Payload {
	rows := make([]models.Row, 3)
	for i, c := range []float64{20.1, 20.8, 20.4} {
		rows[i] = models.NewRow([]string{"2024-01-01 09:00:00", "2024-01-01 10:00:00", "2024-01-01 11:00:00"}[i])
		rows[i].Set("close", c)
	}
	rows[2].Set("RSI", 28.5)
	return &models.Payload{
		Data: rows,
		IndicatorData: []models.SignalEntry{
			{Date: "2024-01-01 11:00:00", Indicator: "RSI", Value: 28.5, Action: models.ActionBuy},
		},
		Signals: map[string][]models.SignalPoint{
			"RSI": {{Date: "2024-01-01 11:00:00", Close: 20.4, Action: models.ActionBuy}},
		},
		Trades: []models.Trade{{
			BuyDate: "2024-01-01 09:00:00", SellDate: "2024-01-01 11:00:00",
			BuyPrice: 20.1, SellPrice: 20.4, Profit: 0.3, Indicators: []string{"RSI", "SMA"},
		}},
	}
}

func render(t *testing.T, st client.State) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, New(&buf, display.DefaultLayout()).State(st))
	return buf.String()
}

func TestState_Loading(t *testing.T) {
	assert.Equal(t, "Loading...\n", render(t, client.Loading{}))
}

func TestState_Failed(t *testing.T) {
	out := render(t, client.Failed{Message: "HTTP error! status: 500", Err: errors.New("x")})
	assert.Equal(t, "Error: HTTP error! status: 500\n", out)
}

func TestState_NoData(t *testing.T) {
	p := payload()
	p.Data = nil
	assert.Equal(t, NoDataText+"\n", render(t, client.Loaded{Payload: p}))
}

func TestState_Loaded(t *testing.T) {
	out := render(t, client.Loaded{Payload: payload()})

	for _, want := range []string{
		"== Price (#8884d8) ==",
		"2024-01-01 09:00:00 -> 2024-01-01 11:00:00",
		"RSI signals",
		"#FFCE56",
		"20.10",
		"0.30",
		"RSI, SMA",
		"28.50",
		"Buy",
		"Sell",
		display.TradeColor([]string{"RSI", "SMA"}),
	} {
		assert.Contains(t, out, want)
	}

	// SMA_20 has no values in this payload
	var smaLine string
	for _, l := range strings.Split(out, "\n") {
		if strings.Contains(l, "SMA_20") {
			smaLine = l
		}
	}
	assert.Contains(t, smaLine, "no data")
}

func TestState_BuildErrorIsReturned(t *testing.T) {
	p := payload()
	p.Trades[0].BuyDate = "garbage"

	var buf bytes.Buffer
	err := New(&buf, display.DefaultLayout()).State(client.Loaded{Payload: p})
	assert.ErrorIs(t, err, display.ErrInvalidTradeDate)
	assert.True(t, strings.HasPrefix(buf.String(), "Error: "), buf.String())
}

func TestSparkline(t *testing.T) {
	r := display.Range{Low: 0, High: 10}

	s := Sparkline([]*float64{f(0.5), f(9.5), nil, f(5)}, r, 10)
	assert.Equal(t, "▁█ ▅", s)

	long := make([]*float64, 100)
	for i := range long {
		long[i] = f(float64(i) / 10)
	}
	s = Sparkline(long, r, 20)
	assert.Equal(t, 20, utf8.RuneCountInString(s))

	assert.Empty(t, Sparkline(nil, r, 10))
}
