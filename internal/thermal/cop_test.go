package thermal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCOP(t *testing.T) {
	tests := []struct {
		name string
		unit UnitType
		tExt float64
		want float64
	}{
		{"standard at rating point", UnitStandard, 35, 3.0},
		{"older at rating point", UnitOlder, 35, 2.5},
		{"high efficiency at rating point", UnitHighEfficiency, 35, 4.0},
		{"unknown falls back to standard", UnitUnknown, 35, 3.0},
		{"cooler air improves ratio", UnitStandard, 25, 4.0},
		{"hotter air degrades ratio", UnitStandard, 45, 2.0},
		{"floored at one", UnitOlder, 60, 1.0},
		{"exactly at floor", UnitStandard, 55, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, COP(tt.unit, tt.tExt), 1e-9)
		})
	}
}

func TestCOPNeverBelowOne(t *testing.T) {
	for _, u := range []UnitType{UnitStandard, UnitOlder, UnitHighEfficiency} {
		for tExt := -10.0; tExt <= 120; tExt += 2.5 {
			assert.GreaterOrEqual(t, COP(u, tExt), 1.0, "unit=%v tExt=%v", u, tExt)
		}
	}
}
