package spectrum

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/cwbudde/algo-vecmath"
)

// splitBuf holds pooled real/imaginary scratch for the vecmath kernels.
type splitBuf struct {
	data []float64
}

var splitPool = sync.Pool{
	New: func() any { return &splitBuf{} },
}

// split copies in into pooled re/im slices. The caller returns buf to the
// pool once the kernel has run.
func split(in []complex128) (re, im []float64, buf *splitBuf) {
	buf = splitPool.Get().(*splitBuf)
	n := len(in)
	if cap(buf.data) < 2*n {
		buf.data = make([]float64, 2*n)
	}
	re, im = buf.data[:n], buf.data[n:2*n]
	for i, c := range in {
		re[i] = real(c)
		im[i] = imag(c)
	}
	return re, im, buf
}

// Magnitude returns |X[k]| for each bin.
func Magnitude(in []complex128) []float64 {
	if len(in) == 0 {
		return nil
	}

	out := make([]float64, len(in))
	re, im, buf := split(in)
	vecmath.Magnitude(out, re, im)
	splitPool.Put(buf)
	return out
}

// Power returns |X[k]|^2 for each bin.
func Power(in []complex128) []float64 {
	if len(in) == 0 {
		return nil
	}

	out := make([]float64, len(in))
	re, im, buf := split(in)
	vecmath.Power(out, re, im)
	splitPool.Put(buf)
	return out
}

// MagnitudeDB converts linear magnitudes to dB in place. Values at or below
// floorDB are clamped to floorDB.
func MagnitudeDB(mag []float64, floorDB float64) {
	floor := math.Pow(10, floorDB/20)
	for i, m := range mag {
		if m <= floor {
			mag[i] = floorDB
			continue
		}
		mag[i] = 20 * math.Log10(m)
	}
}

// BinFrequencies returns the centre frequency in Hz of the first n bins of
// an fftSize-point transform.
func BinFrequencies(n, fftSize int, sampleRate float64) []float64 {
	if n <= 0 || fftSize <= 0 {
		return nil
	}
	out := make([]float64, n)
	step := sampleRate / float64(fftSize)
	for k := range out {
		out[k] = float64(k) * step
	}
	return out
}

// BandPower sums power over the bins whose frequency lies in [loHz, hiHz).
func BandPower(power, freqHz []float64, loHz, hiHz float64) (float64, error) {
	if len(power) != len(freqHz) {
		return 0, fmt.Errorf("band power length mismatch: %d != %d", len(power), len(freqHz))
	}
	if !(hiHz > loHz) {
		return 0, fmt.Errorf("band power range must be increasing: [%f, %f)", loHz, hiHz)
	}

	i0 := sort.SearchFloat64s(freqHz, loHz)
	i1 := sort.SearchFloat64s(freqHz, hiHz)
	sum := 0.0
	for _, p := range power[i0:i1] {
		sum += p
	}
	return sum, nil
}

// SmoothFractionalOctave averages linear-domain values over a 1/fraction
// octave band centred on each frequency. freqHz must be positive and
// strictly increasing.
func SmoothFractionalOctave(freqHz, values []float64, fraction int) ([]float64, error) {
	if len(freqHz) == 0 || len(freqHz) != len(values) {
		return nil, fmt.Errorf("fractional-octave input lengths invalid: %d, %d", len(freqHz), len(values))
	}
	if fraction <= 0 {
		return nil, fmt.Errorf("fractional-octave fraction must be > 0: %d", fraction)
	}
	for i, f := range freqHz {
		if f <= 0 || (i > 0 && !(f > freqHz[i-1])) {
			return nil, fmt.Errorf("fractional-octave frequencies must be positive and increasing at index %d", i)
		}
	}

	half := math.Pow(2, 1/(2*float64(fraction)))
	out := make([]float64, len(values))

	for i, f := range freqHz {
		lo := sort.SearchFloat64s(freqHz, f/half)
		hi := sort.Search(len(freqHz), func(k int) bool { return freqHz[k] > f*half })

		sum := 0.0
		for _, v := range values[lo:hi] {
			sum += v
		}
		out[i] = sum / float64(hi-lo)
	}

	return out, nil
}
