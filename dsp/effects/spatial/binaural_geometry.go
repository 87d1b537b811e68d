package spatial

import (
	"math"

	"github.com/cwbudde/algo-binaural/dsp/core"
)

// Ear identifies one output channel of the binaural processor.
type Ear int

const (
	Left Ear = iota
	Right
)

// String returns the ear name.
func (e Ear) String() string {
	if e == Right {
		return "right"
	}
	return "left"
}

// EarAngles returns the incidence angle in degrees at each ear for a source
// at azimuthDeg. Positive azimuth moves the source towards the right ear.
func EarAngles(azimuthDeg float64) (left, right float64) {
	return 90 + azimuthDeg, 90 - azimuthDeg
}

// WoodworthDelay returns the propagation time to an ear, relative to the
// head centre, for incidence angle thetaRad on a sphere of radius headRadius.
// The ear facing the source gets a negative delay.
func WoodworthDelay(thetaRad, headRadius, speedOfSound float64) float64 {
	scale := headRadius / speedOfSound
	abs := math.Abs(thetaRad)
	if abs < math.Pi/2 {
		return -scale * math.Cos(thetaRad)
	}
	return scale * (abs - math.Pi/2)
}

// earGeometry holds everything derived from the control parameters for one
// ear. It is recomputed once per processed block.
type earGeometry struct {
	theta   float64
	itdLag  float64
	alpha   float64
	tapLags [PinnaTapCount]float64
}

func (b *Binaural) computeGeometry(thetaDeg, elevationRad float64) earGeometry {
	theta := core.DegToRad(thetaDeg)
	g := earGeometry{
		theta:  theta,
		itdLag: WoodworthDelay(theta, b.model.HeadRadius, b.model.SpeedOfSound) * b.sampleRate,
		alpha:  HeadShadowAlpha(theta, b.model.AlphaMin, b.thetaMinRad),
	}
	g.tapLags = PinnaDelays(&b.model.PinnaTaps, theta, elevationRad)
	return g
}
