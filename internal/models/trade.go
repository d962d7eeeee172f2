package models

import "time"

// Trade is a matched buy/sell pair attributed to the indicators that
// were active when it was opened.
type Trade struct {
	BuyDate    string   `json:"buy_date"`
	SellDate   string   `json:"sell_date"`
	BuyPrice   float64  `json:"buy_price"`
	SellPrice  float64  `json:"sell_price"`
	Profit     float64  `json:"profit"`
	Indicators []string `json:"indicators"`
}

// Marker is a derived chart point for one side of a trade.
type Marker struct {
	Date   string  `json:"date"`
	Close  float64 `json:"close"`
	Color  string  `json:"tradeColor"`
	Action Action  `json:"action"`
}

type TradeStats struct {
	TotalTrades int64      `json:"totalTrades"`
	Wins        int64      `json:"wins"`
	Losses      int64      `json:"losses"`
	TotalProfit float64    `json:"totalProfit"`
	AvgProfit   *float64   `json:"avgProfit"`
	WinRate     *float64   `json:"winRate"`
	FirstTrade  *time.Time `json:"firstTrade"`
	LastTrade   *time.Time `json:"lastTrade"`
}
