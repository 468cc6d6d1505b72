package thermal

const (
	copReferenceTemperature = 35.0
	copSlope                = 0.1
	copFloor                = 1.0
)

// NominalCOP is the coefficient of performance at the 35°C rating point.
func (u UnitType) NominalCOP() float64 {
	switch u {
	case UnitOlder:
		return 2.5
	case UnitHighEfficiency:
		return 4.0
	default:
		return 3.0
	}
}

// COP returns the cooling efficiency ratio of the unit for the given exterior
// temperature. It improves by 0.1 per degree below 35°C and never drops under 1.
func COP(u UnitType, tExt float64) float64 {
	cop := u.NominalCOP() + copSlope*(copReferenceTemperature-tExt)
	if cop < copFloor {
		return copFloor
	}
	return cop
}
