package models

// Payload is the combined analysis output served to the dashboard.
type Payload struct {
	Data          []Row                    `json:"data"`
	IndicatorData []SignalEntry            `json:"indicatorData"`
	Signals       map[string][]SignalPoint `json:"signals"`
	Trades        []Trade                  `json:"trades"`
}
