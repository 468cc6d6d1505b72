package thermal

import "math"

const HoursPerDay = 24

const (
	DefaultMinTemperature = 20.0
	DefaultMaxTemperature = 35.0

	minHour = 6
	maxHour = 14
	endHour = 23
	// the midnight anchor sits this far up the daily range
	midnightShare = 0.2
)

// ExteriorProfile builds a piecewise-linear hourly day: the midnight anchor
// falls to tMin at 06:00, climbs to tMax at 14:00 and falls back to the anchor
// at 23:00. The day is repeated, never regenerated.
func ExteriorProfile(days int, tMin, tMax float64) []float64 {
	if days <= 0 {
		return []float64{}
	}
	midnight := tMin + midnightShare*(tMax-tMin)

	day := make([]float64, HoursPerDay)
	for h := range HoursPerDay {
		var t float64
		switch {
		case h < minHour:
			t = midnight + (tMin-midnight)*(float64(h)/minHour)
		case h <= maxHour:
			t = tMin + (tMax-tMin)*(float64(h-minHour)/(maxHour-minHour))
		default:
			t = tMax + (midnight-tMax)*(float64(h-maxHour)/(endHour-maxHour))
		}
		day[h] = Round1(t)
	}

	out := make([]float64, 0, days*HoursPerDay)
	for range days {
		out = append(out, day...)
	}
	return out
}

func DefaultExteriorProfile() []float64 {
	return ExteriorProfile(1, DefaultMinTemperature, DefaultMaxTemperature)
}

// Round1 rounds to one decimal, halves to even (31.25 -> 31.2).
func Round1(v float64) float64 {
	return math.RoundToEven(v*10) / 10
}
