package hrir

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-binaural/dsp/core"
	"github.com/cwbudde/algo-binaural/dsp/spectrum"
)

// Reflection is one early extremum of an ear response.
type Reflection struct {
	Index     int     // sample index in the response
	Delay     int     // samples after the ear's arrival
	Amplitude float64 // signed sample value
}

// Ear holds the per-ear analysis results.
type Ear struct {
	Arrival     int
	PeakIndex   int
	Peak        float64 // absolute maximum
	Energy      float64 // sum of squares
	Reflections []Reflection
	// MagnitudeDB covers bins 0..FFTSize/2.
	MagnitudeDB []float64
}

// Metrics holds the binaural analysis of one response.
type Metrics struct {
	Left  Ear
	Right Ear

	ITD float64 // seconds, positive when the right ear leads
	ILD float64 // dB, right ear energy over left ear energy

	FFTSize     int
	FrequencyHz []float64
}

// ITDSamples returns the interaural time difference in samples at rate.
func (m Metrics) ITDSamples(sampleRate float64) float64 {
	return m.ITD * sampleRate
}

// Analyzer extracts binaural cues from captured responses.
type Analyzer struct {
	// OnsetRatio is the arrival threshold relative to the ear's peak.
	OnsetRatio float64
	// ReflectionRatio is the smallest extremum, relative to the peak, that
	// counts as a reflection.
	ReflectionRatio float64
	// EarlyWindow is how many samples after the arrival are searched for
	// reflections.
	EarlyWindow int
	// MinFFTSize bounds the transform size from below.
	MinFFTSize int
	// SmoothingFraction applies 1/N-octave smoothing to the magnitude
	// response. Zero disables smoothing.
	SmoothingFraction int
	// FloorDB clamps the magnitude response.
	FloorDB float64
}

// NewAnalyzer returns an analyzer with the default thresholds.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		OnsetRatio:      0.1,
		ReflectionRatio: 0.05,
		EarlyWindow:     32,
		MinFFTSize:      256,
		FloorDB:         -120,
	}
}

// Analyze computes arrival, ITD, ILD, early reflections and magnitude
// responses for both ears.
func (a *Analyzer) Analyze(r Response) (Metrics, error) {
	if err := r.validate(); err != nil {
		return Metrics{}, err
	}

	left, err := a.analyzeEar(r.Left)
	if err != nil {
		return Metrics{}, fmt.Errorf("left ear: %w", err)
	}

	right, err := a.analyzeEar(r.Right)
	if err != nil {
		return Metrics{}, fmt.Errorf("right ear: %w", err)
	}

	fftSize := a.fftSize(len(r.Left))

	return Metrics{
		Left:        left,
		Right:       right,
		ITD:         float64(left.Arrival-right.Arrival) / r.SampleRate,
		ILD:         10 * math.Log10(right.Energy/left.Energy),
		FFTSize:     fftSize,
		FrequencyHz: spectrum.BinFrequencies(fftSize/2+1, fftSize, r.SampleRate),
	}, nil
}

func (a *Analyzer) analyzeEar(x []float64) (Ear, error) {
	peakIdx, peak := findPeak(x)
	if peak == 0 {
		return Ear{}, ErrSilentResponse
	}

	e := Ear{
		Arrival:   findOnset(x, peak*a.OnsetRatio),
		PeakIndex: peakIdx,
		Peak:      peak,
	}
	for _, v := range x {
		e.Energy += v * v
	}
	e.Reflections = a.reflections(x, e.Arrival, peak*a.ReflectionRatio)

	mag, err := a.MagnitudeResponse(x)
	if err != nil {
		return Ear{}, err
	}
	e.MagnitudeDB = mag

	return e, nil
}

// reflections returns the local magnitude maxima in the early window.
func (a *Analyzer) reflections(x []float64, arrival int, threshold float64) []Reflection {
	end := min(arrival+a.EarlyWindow, len(x))

	var out []Reflection
	for i := arrival; i < end; i++ {
		v := math.Abs(x[i])
		if v < threshold {
			continue
		}
		if i > 0 && math.Abs(x[i-1]) > v {
			continue
		}
		if i+1 < len(x) && math.Abs(x[i+1]) >= v {
			continue
		}
		out = append(out, Reflection{Index: i, Delay: i - arrival, Amplitude: x[i]})
	}
	return out
}

func (a *Analyzer) fftSize(n int) int {
	return core.NextPowerOf2(max(n, a.MinFFTSize))
}

// MagnitudeResponse returns the magnitude of x in dB for bins
// 0..FFTSize/2, zero-padding x to a power of two.
func (a *Analyzer) MagnitudeResponse(x []float64) ([]float64, error) {
	if len(x) == 0 {
		return nil, ErrEmptyResponse
	}

	bins, err := a.transform(x)
	if err != nil {
		return nil, err
	}

	mag := spectrum.Magnitude(bins)

	if a.SmoothingFraction > 0 && len(mag) > 2 {
		n := len(bins)
		freq := spectrum.BinFrequencies(n, 2*(n-1), 1)
		smoothed, err := spectrum.SmoothFractionalOctave(freq[1:], mag[1:], a.SmoothingFraction)
		if err != nil {
			return nil, fmt.Errorf("hrir smoothing: %w", err)
		}
		copy(mag[1:], smoothed)
	}

	spectrum.MagnitudeDB(mag, a.FloorDB)
	return mag, nil
}

// Band is a frequency range [LoHz, HiHz).
type Band struct {
	LoHz float64
	HiHz float64
}

// OctaveBands returns octave bands centred on 125 Hz to 16 kHz that lie
// below the Nyquist frequency.
func OctaveBands(sampleRate float64) []Band {
	var out []Band
	for fc := 125.0; fc <= 16000; fc *= 2 {
		hi := fc * math.Sqrt2
		if hi > sampleRate/2 {
			break
		}
		out = append(out, Band{LoHz: fc / math.Sqrt2, HiHz: hi})
	}
	return out
}

// BandLevels returns the energy of x in each band in dB, scaled so that a
// unit impulse has the level 10*log10(band width / (sampleRate/2)).
func (a *Analyzer) BandLevels(x []float64, sampleRate float64, bands []Band) ([]float64, error) {
	if len(x) == 0 {
		return nil, ErrEmptyResponse
	}
	if sampleRate <= 0 {
		return nil, ErrInvalidSampleRate
	}

	bins, err := a.transform(x)
	if err != nil {
		return nil, err
	}

	fftSize := 2 * (len(bins) - 1)
	power := spectrum.Power(bins)
	freq := spectrum.BinFrequencies(len(bins), fftSize, sampleRate)

	out := make([]float64, len(bands))
	for i, b := range bands {
		p, err := spectrum.BandPower(power, freq, b.LoHz, b.HiHz)
		if err != nil {
			return nil, err
		}
		out[i] = core.LinearToDB(math.Sqrt(2 * p / float64(fftSize)))
	}
	return out, nil
}

// transform returns the non-negative frequency bins of x.
func (a *Analyzer) transform(x []float64) ([]complex128, error) {
	fftSize := a.fftSize(len(x))

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("hrir: failed to create FFT plan: %w", err)
	}

	in := make([]complex128, fftSize)
	for i, v := range x {
		in[i] = complex(v, 0)
	}

	out := make([]complex128, fftSize)
	if err := plan.Forward(out, in); err != nil {
		return nil, fmt.Errorf("hrir: forward FFT failed: %w", err)
	}

	return out[:fftSize/2+1], nil
}

// findOnset returns the first index whose magnitude reaches threshold.
func findOnset(x []float64, threshold float64) int {
	for i, v := range x {
		if math.Abs(v) >= threshold {
			return i
		}
	}
	return 0
}

// findPeak returns the index and magnitude of the absolute maximum.
func findPeak(x []float64) (int, float64) {
	idx, peak := 0, 0.0
	for i, v := range x {
		if av := math.Abs(v); av > peak {
			idx, peak = i, av
		}
	}
	return idx, peak
}
