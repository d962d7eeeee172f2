package display

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/HengWoo/TA-flagger/internal/models"
)

func TestIndicatorColor(t *testing.T) {
	assert.Equal(t, "#FF6384", IndicatorColor(models.IndicatorSMA))
	assert.Equal(t, "#FF9F40", IndicatorColor(models.IndicatorStoch))
	assert.Equal(t, "#4BC0C0", IndicatorColor(models.IndicatorWILLR))
	assert.Equal(t, DefaultColor, IndicatorColor("OBV"))
	assert.Equal(t, DefaultColor, IndicatorColor(""))

	for _, name := range models.Indicators {
		assert.NotEqual(t, DefaultColor, IndicatorColor(name), name)
	}
}
