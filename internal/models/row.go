package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// Row is one point of the time series: a date plus a variable set of
// nullable numeric fields (close, open, each indicator value).
type Row struct {
	Date   string
	Values map[string]*float64
}

// NewRow returns an empty row for date.
func NewRow(date string) Row {
	return Row{Date: date, Values: make(map[string]*float64)}
}

// Set stores v under key. NaN and Inf are stored as null.
func (r Row) Set(key string, v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		r.Values[key] = nil
		return
	}
	r.Values[key] = &v
}

// Value returns the field and whether it holds a finite number.
func (r Row) Value(key string) (float64, bool) {
	p, ok := r.Values[key]
	if !ok || p == nil || math.IsNaN(*p) || math.IsInf(*p, 0) {
		return 0, false
	}
	return *p, true
}

// Keys returns the field names in sorted order, without "date".
func (r Row) Keys() []string {
	keys := make([]string, 0, len(r.Values))
	for k := range r.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MarshalJSON writes a flat object with "date" first and the remaining
// fields sorted by name.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"date":`)
	date, err := json.Marshal(r.Date)
	if err != nil {
		return nil, err
	}
	buf.Write(date)

	for _, k := range r.Keys() {
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')

		v, ok := r.Value(k)
		if !ok {
			buf.WriteString("null")
			continue
		}
		num, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		buf.Write(num)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts a flat object whose "date" is a string and whose
// other fields are numbers or null.
func (r *Row) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	dateRaw, ok := raw["date"]
	if !ok {
		return fmt.Errorf("row: missing date")
	}
	var date string
	if err := json.Unmarshal(dateRaw, &date); err != nil {
		return fmt.Errorf("row: date: %w", err)
	}

	out := NewRow(date)
	for k, v := range raw {
		if k == "date" {
			continue
		}
		var num *float64
		if err := json.Unmarshal(v, &num); err != nil {
			return fmt.Errorf("row %s: field %q: %w", date, k, err)
		}
		out.Values[k] = num
	}
	*r = out
	return nil
}
