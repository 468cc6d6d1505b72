package simulator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTraceAggregates(t *testing.T) {
	tr := Trace{
		Exterior: []float64{30, 31, 32},
		Interior: []float64{24, 23.5, 24},
		Energy:   []float64{3.6e6, 0, 1.8e6},
	}

	assert.Equal(t, 3, tr.Hours())
	assert.InDelta(t, 5.4e6, tr.TotalEnergy(), 1e-6)
	assert.InDelta(t, 1.5, tr.TotalKWh(), 1e-9)
	assert.Equal(t, []float64{1, 0, 0.5}, tr.EnergyKWh())
	assert.Equal(t, 23.5, tr.MinInterior())
	assert.Equal(t, 24.0, tr.MaxInterior())
}

func TestTraceEmpty(t *testing.T) {
	var tr Trace
	assert.Equal(t, 0.0, tr.TotalEnergy())
	assert.Equal(t, 0.0, tr.MinInterior())
	assert.Equal(t, 0.0, tr.MaxInterior())
}
