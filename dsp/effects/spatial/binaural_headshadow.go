package spatial

import (
	"math"

	"github.com/cwbudde/algo-binaural/dsp/core"
)

// HeadShadowAlpha returns the zero position of the head-shadow filter for
// incidence angle thetaRad. It is 2 facing the source and reaches alphaMin at
// thetaMinRad.
func HeadShadowAlpha(thetaRad, alphaMin, thetaMinRad float64) float64 {
	return (1 + alphaMin/2) + (1-alphaMin/2)*math.Cos(thetaRad/thetaMinRad*math.Pi)
}

// HeadShadowFilter is the one-pole, one-zero filter of the spherical head
// model, discretized with the bilinear transform:
//
//	y[n] = b0*x[n] + b1*x[n-1] - a1*y[n-1]
//
// Coefficients may change between samples; the history carries over.
type HeadShadowFilter struct {
	b0, b1, a1 float64
	x1, y1     float64
}

// SetCoefficients derives the filter coefficients for zero position alpha,
// sampling period t and pole frequency beta.
func (f *HeadShadowFilter) SetCoefficients(alpha, t, beta float64) {
	tb := t * beta
	norm := 1 / (2 + tb)
	f.b0 = (2*alpha + tb) * norm
	f.b1 = (-2*alpha + tb) * norm
	f.a1 = (-2 + tb) * norm
}

// Coefficients returns b0, b1 and a1.
func (f *HeadShadowFilter) Coefficients() (b0, b1, a1 float64) {
	return f.b0, f.b1, f.a1
}

// ProcessSample filters one sample.
func (f *HeadShadowFilter) ProcessSample(x float64) float64 {
	y := f.b0*x + f.b1*f.x1 - f.a1*f.y1
	f.x1 = x
	f.y1 = core.FlushDenormals(y)
	return y
}

// Reset clears the filter history.
func (f *HeadShadowFilter) Reset() {
	f.x1 = 0
	f.y1 = 0
}
