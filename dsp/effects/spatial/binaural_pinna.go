package spatial

import (
	"math"

	"github.com/cwbudde/algo-binaural/dsp/delay"
)

// PinnaDelays returns the delay in samples of every pinna reflection for
// incidence angle thetaRad and elevation elevationRad.
func PinnaDelays(taps *[PinnaTapCount]PinnaTap, thetaRad, elevationRad float64) [PinnaTapCount]float64 {
	var out [PinnaTapCount]float64
	c := math.Cos(thetaRad / 2)
	for k, tap := range taps {
		out[k] = tap.A*c*math.Sin(tap.D*(math.Pi/2-elevationRad)) + tap.B
	}
	return out
}

// pinnaSum reads every reflection from line and returns the weighted sum.
func pinnaSum(line *delay.Line, taps *[PinnaTapCount]PinnaTap, lags *[PinnaTapCount]float64) float64 {
	sum := 0.0
	for k := range taps {
		sum += taps[k].Gain * line.ReadInterpolated(lags[k])
	}
	return sum
}
