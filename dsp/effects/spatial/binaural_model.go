package spatial

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-binaural/dsp/core"
	"github.com/cwbudde/algo-binaural/dsp/interp"
)

// PinnaTapCount is the number of reflections in the pinna model.
const PinnaTapCount = 5

// PinnaTap describes one pinna reflection. Its delay in samples is
//
//	A*cos(theta/2)*sin(D*(pi/2 - elevation)) + B
//
// and it contributes Gain times the interpolated read at that delay.
type PinnaTap struct {
	Gain float64
	A    float64
	B    float64
	D    float64
}

// Model groups the constants of the Duda & Brown structural HRTF. Swapping a
// Model changes the parameterization without touching the processing code.
type Model struct {
	// HeadRadius is the spherical head radius in meters.
	HeadRadius float64
	// SpeedOfSound in m/s.
	SpeedOfSound float64

	// AlphaMin and ThetaMinDeg shape the head-shadow zero: alpha reaches
	// AlphaMin at ThetaMinDeg degrees of incidence.
	AlphaMin    float64
	ThetaMinDeg float64

	// SmoothingWeight is the weight k of the previous value in the
	// azimuth/elevation smoother.
	SmoothingWeight float64

	// RoomDelaySeconds, RoomReflection and RoomFalloffDB define the single
	// early-reflection tap: gain 20*log10(RoomReflection) - RoomFalloffDB dB.
	RoomDelaySeconds float64
	RoomReflection   float64
	RoomFalloffDB    float64

	PinnaTaps [PinnaTapCount]PinnaTap

	// MinWriteAhead is the smallest write-ahead offset used for the delay
	// lines. Prepare raises it when the head delay needs more room.
	MinWriteAhead int
}

// DefaultModel returns the parameterization from Duda & Brown, "A Structural
// Model for Binaural Sound Synthesis".
func DefaultModel() Model {
	return Model{
		HeadRadius:       0.0875,
		SpeedOfSound:     343,
		AlphaMin:         0.1,
		ThetaMinDeg:      150,
		SmoothingWeight:  0.8,
		RoomDelaySeconds: 0.015,
		RoomReflection:   1,
		RoomFalloffDB:    15,
		PinnaTaps:        DefaultPinnaTaps(),
		MinWriteAhead:    16,
	}
}

// DefaultPinnaTaps returns the pinna reflection table with the first set of
// elevation scaling factors D.
func DefaultPinnaTaps() [PinnaTapCount]PinnaTap {
	return [PinnaTapCount]PinnaTap{
		{Gain: 0.5, A: 1, B: 2, D: 1},
		{Gain: -1, A: 5, B: 4, D: 0.5},
		{Gain: 0.5, A: 5, B: 7, D: 0.5},
		{Gain: -0.25, A: 5, B: 11, D: 0.5},
		{Gain: 0.25, A: 5, B: 13, D: 0.5},
	}
}

// AlternatePinnaTaps returns the same table with the second published set of
// elevation scaling factors.
func AlternatePinnaTaps() [PinnaTapCount]PinnaTap {
	taps := DefaultPinnaTaps()
	d := [PinnaTapCount]float64{0.85, 0.35, 0.35, 0.35, 0.35}
	for i := range taps {
		taps[i].D = d[i]
	}
	return taps
}

// Validate reports whether the model can be used for processing.
func (m Model) Validate() error {
	checks := []struct {
		name string
		v    float64
	}{
		{"head radius", m.HeadRadius},
		{"speed of sound", m.SpeedOfSound},
		{"theta min", m.ThetaMinDeg},
		{"room reflection", m.RoomReflection},
	}
	for _, c := range checks {
		if c.v <= 0 || !core.IsFinite(c.v) {
			return fmt.Errorf("binaural model %s must be > 0 and finite: %f", c.name, c.v)
		}
	}

	if m.AlphaMin <= 0 || m.AlphaMin > 2 || math.IsNaN(m.AlphaMin) {
		return fmt.Errorf("binaural model alpha min must be in (0, 2]: %f", m.AlphaMin)
	}
	if m.SmoothingWeight < 0 || m.SmoothingWeight >= 1 || math.IsNaN(m.SmoothingWeight) {
		return fmt.Errorf("binaural model smoothing weight must be in [0, 1): %f", m.SmoothingWeight)
	}
	if m.RoomDelaySeconds < 0 || !core.IsFinite(m.RoomDelaySeconds) {
		return fmt.Errorf("binaural model room delay must be >= 0 and finite: %f", m.RoomDelaySeconds)
	}
	if !core.IsFinite(m.RoomFalloffDB) {
		return fmt.Errorf("binaural model room falloff must be finite: %f", m.RoomFalloffDB)
	}
	if m.MinWriteAhead < 0 {
		return fmt.Errorf("binaural model min write-ahead must be >= 0: %d", m.MinWriteAhead)
	}

	for i, tap := range m.PinnaTaps {
		if !core.IsFinite(tap.Gain) || !core.IsFinite(tap.A) || !core.IsFinite(tap.B) || !core.IsFinite(tap.D) {
			return fmt.Errorf("binaural model pinna tap %d must be finite: %+v", i, tap)
		}
	}

	return nil
}

// HeadDelay returns a/c, the head radius expressed as propagation time in
// seconds.
func (m Model) HeadDelay() float64 {
	return m.HeadRadius / m.SpeedOfSound
}

// Beta returns the head-shadow pole frequency 2c/a in rad/s.
func (m Model) Beta() float64 {
	return 2 * m.SpeedOfSound / m.HeadRadius
}

// RoomGain returns the linear amplitude of the early-reflection tap.
func (m Model) RoomGain() float64 {
	return core.DBToLinear(core.LinearToDB(m.RoomReflection) - m.RoomFalloffDB)
}

// pinnaLagRange returns the smallest and largest delay any pinna tap can
// produce for incidence angles in [0, pi] and elevations in the control range.
func (m Model) pinnaLagRange() (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	elLo, elHi := core.DegToRad(MinElevation), core.DegToRad(MaxElevation)
	for _, tap := range m.PinnaTaps {
		// cos(theta/2) covers [0, 1]; the sine argument is monotonic in elevation.
		u0, u1 := tap.D*(math.Pi/2-elHi), tap.D*(math.Pi/2-elLo)
		sLo, sHi := sinRange(math.Min(u0, u1), math.Max(u0, u1))
		a, b := tap.A*sLo, tap.A*sHi
		lo = math.Min(lo, tap.B+math.Min(0, math.Min(a, b)))
		hi = math.Max(hi, tap.B+math.Max(0, math.Max(a, b)))
	}
	return lo, hi
}

// sinRange returns the extrema of sin over [u0, u1].
func sinRange(u0, u1 float64) (lo, hi float64) {
	lo = math.Min(math.Sin(u0), math.Sin(u1))
	hi = math.Max(math.Sin(u0), math.Sin(u1))
	if math.Ceil((u0-math.Pi/2)/(2*math.Pi)) <= math.Floor((u1-math.Pi/2)/(2*math.Pi)) {
		hi = 1
	}
	if math.Ceil((u0+math.Pi/2)/(2*math.Pi)) <= math.Floor((u1+math.Pi/2)/(2*math.Pi)) {
		lo = -1
	}
	return lo, hi
}

// lineLayout is the delay-line geometry derived from a model and a stream.
type lineLayout struct {
	writeAhead int
	capacity   int
}

// layout derives write-ahead and capacity from the largest lags the model can
// request at sampleRate. The ITD spans [-(a/c), (a/c)*pi/2] seconds for
// incidence angles in [0, pi].
func (m Model) layout(sampleRate float64, mode interp.Mode) (lineLayout, error) {
	older, newer := mode.Taps()
	headSamples := m.HeadDelay() * sampleRate
	pinnaLo, pinnaHi := m.pinnaLagRange()

	earliest := math.Min(-headSamples, pinnaLo)
	writeAhead := max(m.MinWriteAhead, int(math.Ceil(-earliest))+newer+1)

	latest := math.Max(headSamples*math.Pi/2, math.Max(m.RoomDelaySeconds*sampleRate, pinnaHi))
	maxLag := int(math.Ceil(latest)) + 1

	l := lineLayout{
		writeAhead: writeAhead,
		capacity:   core.NextPowerOf2(writeAhead + maxLag + older + 2),
	}

	// Window check mirrors delay.Line.
	lo := float64(-l.writeAhead + newer)
	hi := float64(l.capacity - l.writeAhead - 1 - older)
	if earliest < lo || latest > hi {
		return lineLayout{}, fmt.Errorf("binaural delay layout cannot hold lags [%f, %f] in window [%f, %f]",
			earliest, latest, lo, hi)
	}
	return l, nil
}
