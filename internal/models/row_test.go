package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRow_SetNonFiniteIsNull(t *testing.T) {
	r := NewRow("2024-01-01 00:00:00")
	r.Set("close", 20.5)
	r.Set("RSI", math.NaN())
	r.Set("CCI", math.Inf(1))

	v, ok := r.Value("close")
	assert.True(t, ok)
	assert.Equal(t, 20.5, v)

	_, ok = r.Value("RSI")
	assert.False(t, ok)
	_, ok = r.Value("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"CCI", "RSI", "close"}, r.Keys())
}

func TestRow_MarshalJSON(t *testing.T) {
	r := NewRow("2024-01-01 00:00:00")
	r.Set("close", 20.5)
	r.Set("SMA_20", math.NaN())

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"date":"2024-01-01 00:00:00","SMA_20":null,"close":20.5}`, string(data))
}

func TestRow_UnmarshalJSON(t *testing.T) {
	var r Row
	require.NoError(t, json.Unmarshal([]byte(`{"close":1.5,"date":"2024-01-01 00:00:00","RSI":null}`), &r))

	assert.Equal(t, "2024-01-01 00:00:00", r.Date)
	v, ok := r.Value("close")
	assert.True(t, ok)
	assert.Equal(t, 1.5, v)

	p, present := r.Values["RSI"]
	assert.True(t, present)
	assert.Nil(t, p)
}

func TestRow_UnmarshalJSONRejects(t *testing.T) {
	for _, in := range []string{
		`{"close":1}`,
		`{"date":5}`,
		`{"date":"2024-01-01","close":"high"}`,
		`[1,2]`,
	} {
		var r Row
		assert.Error(t, json.Unmarshal([]byte(in), &r), in)
	}
}
