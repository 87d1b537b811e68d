// Package delay provides the circular delay line used by the binaural model.
//
// A Line keeps two cursors. Write stores a sample at the write cursor and
// advances it; Advance moves the read cursor. Both move one slot per
// processed sample, so the write cursor stays a fixed write-ahead offset in
// front of the read cursor for the lifetime of the line. Lags are measured
// backwards from the read cursor, which means a negative lag down to
// -writeAhead still lands on a sample that has already been written.
package delay

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-binaural/dsp/core"
	"github.com/cwbudde/algo-binaural/dsp/interp"
)

// Option configures a Line at construction time.
type Option func(*lineConfig) error

type lineConfig struct {
	mode interp.Mode
}

// WithMode selects the fractional read kernel. The default is interp.Linear.
func WithMode(mode interp.Mode) Option {
	return func(cfg *lineConfig) error {
		if !mode.Valid() {
			return fmt.Errorf("delay line interpolation mode is invalid: %d", mode)
		}
		cfg.mode = mode
		return nil
	}
}

// Line is a fixed-capacity circular delay line with a write-ahead offset.
type Line struct {
	buffer     []float64
	mask       int
	writePos   int
	readPos    int
	writeAhead int
	mode       interp.Mode

	minLag float64
	maxLag float64
}

// New returns a delay line holding size samples whose write cursor leads the
// read cursor by writeAhead samples. size must be a power of two large enough
// to leave a usable lag window behind the offset.
func New(size, writeAhead int, opts ...Option) (*Line, error) {
	cfg := lineConfig{mode: interp.Linear}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if !core.IsPowerOf2(size) {
		return nil, fmt.Errorf("delay size must be a power of two: %d", size)
	}
	if writeAhead < 0 {
		return nil, fmt.Errorf("delay write-ahead must be >= 0: %d", writeAhead)
	}

	older, newer := cfg.mode.Taps()
	minLag := -writeAhead + newer
	maxLag := size - writeAhead - 1 - older
	if writeAhead >= size || maxLag < 0 {
		return nil, fmt.Errorf("delay size %d leaves no lag window for write-ahead %d", size, writeAhead)
	}

	d := &Line{
		buffer:     make([]float64, size),
		mask:       size - 1,
		writeAhead: writeAhead,
		mode:       cfg.mode,
		minLag:     float64(minLag),
		maxLag:     float64(maxLag),
	}
	d.Reset()
	return d, nil
}

// Len returns internal buffer size.
func (d *Line) Len() int {
	return len(d.buffer)
}

// WriteAhead returns the fixed distance between write and read cursor.
func (d *Line) WriteAhead() int {
	return d.writeAhead
}

// Mode returns the fractional read kernel.
func (d *Line) Mode() interp.Mode {
	return d.mode
}

// Window returns the inclusive range of lags that only observe samples
// written during the current stream.
func (d *Line) Window() (minLag, maxLag float64) {
	return d.minLag, d.maxLag
}

// InWindow reports whether lag can be read without wrapping.
func (d *Line) InWindow(lag float64) bool {
	return lag >= d.minLag && lag <= d.maxLag
}

// Write stores one sample at the write cursor and advances it.
func (d *Line) Write(sample float64) {
	d.buffer[d.writePos] = sample
	d.writePos = (d.writePos + 1) & d.mask
}

// Advance moves the read cursor forward by one sample.
func (d *Line) Advance() {
	d.readPos = (d.readPos + 1) & d.mask
}

// Read returns the sample lag positions behind the read cursor.
func (d *Line) Read(lag int) float64 {
	lag = int(d.guard(float64(lag)))
	return d.buffer[(d.readPos-lag)&d.mask]
}

// ReadInterpolated returns the value lag samples behind the read cursor.
// Linear mode weights the two straddling cells by the fractional part of lag:
//
//	(1-f)*buf[r-floor(lag)] + f*buf[r-floor(lag)-1]
func (d *Line) ReadInterpolated(lag float64) float64 {
	lag = d.guard(lag)

	whole := math.Floor(lag)
	frac := lag - whole
	pos := d.readPos - int(whole)

	x0 := d.buffer[pos&d.mask]
	x1 := d.buffer[(pos-1)&d.mask]
	if d.mode == interp.Hermite {
		xm1 := d.buffer[(pos+1)&d.mask]
		x2 := d.buffer[(pos-2)&d.mask]
		return interp.Hermite4(frac, xm1, x0, x1, x2)
	}
	return interp.Linear2(frac, x0, x1)
}

// Reset clears line state and restores the write-ahead offset.
func (d *Line) Reset() {
	core.Zero(d.buffer)
	d.readPos = 0
	d.writePos = d.writeAhead & d.mask
}

// guard keeps lag inside the window. Builds tagged binauraldebug panic
// instead of clamping.
func (d *Line) guard(lag float64) float64 {
	if lag >= d.minLag && lag <= d.maxLag {
		return lag
	}
	if lagAssertions {
		panic(fmt.Sprintf("delay: lag %g outside window [%g, %g]", lag, d.minLag, d.maxLag))
	}
	if math.IsNaN(lag) {
		lag = 0
	}
	return core.Clamp(lag, d.minLag, d.maxLag)
}
