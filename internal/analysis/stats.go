package analysis

import (
	"math"

	"github.com/user/dpn_scorer_go/internal/normative"
)

// Sentinel percentiles recorded for not-recordable responses.
const (
	NRPercentileLowerTail = 0.001
	NRPercentileUpperTail = 0.999
)

// NormCDF approximates the standard normal cumulative distribution with the
// Zelen-Severo polynomial (Abramowitz & Stegun 26.2.17). Absolute error is below 1e-7.
func NormCDF(x float64) float64 {
	t := 1 / (1 + 0.2316419*math.Abs(x))
	d := 0.3989423 * math.Exp(-x*x/2)
	p := d * t * (0.3193815 + t*(-0.3565638+t*(1.7814779+t*(-1.821256+t*1.3302744))))
	if x >= 0 {
		return 1 - p
	}
	return p
}

// ZScore standardizes value against a reference.
func ZScore(value float64, ref normative.Stat) float64 {
	return (value - ref.Mean) / ref.SD
}

// LowerTailPoints scores metrics where low values are abnormal (amplitude, velocity).
func LowerTailPoints(percentile float64) int {
	switch {
	case percentile < 0.01:
		return 2
	case percentile < 0.05:
		return 1
	default:
		return 0
	}
}

// UpperTailPoints scores metrics where high values are abnormal (peak latency).
func UpperTailPoints(percentile float64) int {
	switch {
	case percentile > 0.99:
		return 2
	case percentile > 0.95:
		return 1
	default:
		return 0
	}
}
