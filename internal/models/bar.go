package models

import "time"

// Bar is one OHLCV period.
type Bar struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// DateLayout is the timestamp format used for every date string in the payload.
const DateLayout = "2006-01-02 15:04:05"

// DateString formats the bar time the way the payload carries it.
func (b Bar) DateString() string {
	return b.Time.UTC().Format(DateLayout)
}
