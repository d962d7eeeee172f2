package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/HengWoo/TA-flagger/internal/display"
	"github.com/HengWoo/TA-flagger/internal/models"
)

// ErrMalformedPayload marks a payload that parsed as JSON but does not
// have the expected shape.
var ErrMalformedPayload = errors.New("malformed payload")

// PayloadError names the offending field of a malformed payload.
type PayloadError struct {
	Field  string
	Reason string
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("malformed payload: %s: %s", e.Field, e.Reason)
}

func (e *PayloadError) Unwrap() error { return ErrMalformedPayload }

var payloadFields = []string{"data", "indicatorData", "signals", "trades"}

var tradeFields = []string{"buy_date", "sell_date", "buy_price", "sell_price", "profit", "indicators"}

// DecodePayload parses and validates a payload. Every one of the four
// top-level fields must be present and non-null, and so must every field
// of every trade. The body must hold exactly one JSON value.
func DecodePayload(r io.Reader) (*models.Payload, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse JSON: %w", err)
	}
	if raw == nil {
		return nil, &PayloadError{Field: "payload", Reason: "not an object"}
	}
	for _, f := range payloadFields {
		v, ok := raw[f]
		if !ok {
			return nil, &PayloadError{Field: f, Reason: "missing"}
		}
		if isNull(v) {
			return nil, &PayloadError{Field: f, Reason: "null"}
		}
	}
	if err := checkTradeFields(raw["trades"]); err != nil {
		return nil, err
	}

	var p models.Payload
	if err := json.Unmarshal(raw["data"], &p.Data); err != nil {
		return nil, &PayloadError{Field: "data", Reason: err.Error()}
	}
	if err := json.Unmarshal(raw["indicatorData"], &p.IndicatorData); err != nil {
		return nil, &PayloadError{Field: "indicatorData", Reason: err.Error()}
	}
	if err := json.Unmarshal(raw["signals"], &p.Signals); err != nil {
		return nil, &PayloadError{Field: "signals", Reason: err.Error()}
	}
	if err := json.Unmarshal(raw["trades"], &p.Trades); err != nil {
		return nil, &PayloadError{Field: "trades", Reason: err.Error()}
	}

	if err := validate(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

func validate(p *models.Payload) error {
	for i, e := range p.IndicatorData {
		if e.Date == "" || e.Indicator == "" {
			return &PayloadError{Field: fmt.Sprintf("indicatorData[%d]", i), Reason: "missing date or indicator"}
		}
		if !e.Action.Valid() {
			return &PayloadError{Field: fmt.Sprintf("indicatorData[%d]", i), Reason: fmt.Sprintf("unknown action %q", e.Action)}
		}
	}
	for name, points := range p.Signals {
		for i, pt := range points {
			if !pt.Action.Valid() {
				return &PayloadError{Field: fmt.Sprintf("signals.%s[%d]", name, i), Reason: fmt.Sprintf("unknown action %q", pt.Action)}
			}
		}
	}
	for i, t := range p.Trades {
		for _, d := range []string{t.BuyDate, t.SellDate} {
			if _, err := display.MarkerDate(d); err != nil {
				return &PayloadError{Field: fmt.Sprintf("trades[%d]", i), Reason: err.Error()}
			}
		}
	}
	return nil
}

// checkTradeFields rejects trades with a missing or null field. Typed
// decoding alone would turn a null price or profit into zero.
func checkTradeFields(data json.RawMessage) error {
	var trades []map[string]json.RawMessage
	if err := json.Unmarshal(data, &trades); err != nil {
		return &PayloadError{Field: "trades", Reason: err.Error()}
	}
	for i, t := range trades {
		if t == nil {
			return &PayloadError{Field: fmt.Sprintf("trades[%d]", i), Reason: "null"}
		}
		for _, f := range tradeFields {
			v, ok := t[f]
			if !ok {
				return &PayloadError{Field: fmt.Sprintf("trades[%d]", i), Reason: "missing " + f}
			}
			if isNull(v) {
				return &PayloadError{Field: fmt.Sprintf("trades[%d]", i), Reason: f + " is null"}
			}
		}
	}
	return nil
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}
