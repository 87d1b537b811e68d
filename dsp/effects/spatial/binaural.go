package spatial

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-binaural/dsp/core"
	"github.com/cwbudde/algo-binaural/dsp/delay"
	"github.com/cwbudde/algo-binaural/dsp/interp"
)

// Control ranges accepted by the Binaural setters.
const (
	MinAzimuth   = -89.0
	MaxAzimuth   = 89.0
	MinElevation = -180.0
	MaxElevation = 180.0
	MinVolumeDB  = -20.0
	MaxVolumeDB  = 20.0
)

// Monitor selects which stage of the model reaches the outputs.
type Monitor int

const (
	// MonitorFull outputs pinna reflections plus the room tap.
	MonitorFull Monitor = iota
	// MonitorPinna outputs the pinna stage without the room tap.
	MonitorPinna
	// MonitorHeadShadow outputs the head-shadow filter directly.
	MonitorHeadShadow
)

// String returns the monitor name.
func (m Monitor) String() string {
	switch m {
	case MonitorFull:
		return "full"
	case MonitorPinna:
		return "pinna"
	case MonitorHeadShadow:
		return "shadow"
	default:
		return fmt.Sprintf("Monitor(%d)", int(m))
	}
}

// ParseMonitor maps a monitor name to a Monitor.
func ParseMonitor(name string) (Monitor, error) {
	for _, m := range []Monitor{MonitorFull, MonitorPinna, MonitorHeadShadow} {
		if m.String() == name {
			return m, nil
		}
	}
	return MonitorFull, fmt.Errorf("unknown binaural monitor: %q", name)
}

func validMonitor(m Monitor) bool {
	switch m {
	case MonitorFull, MonitorPinna, MonitorHeadShadow:
		return true
	default:
		return false
	}
}

// BinauralOption mutates construction-time parameters.
type BinauralOption func(*binauralConfig) error

type binauralConfig struct {
	model     Model
	mode      interp.Mode
	monitor   Monitor
	azimuth   float64
	elevation float64
	volume    float64
}

func defaultBinauralConfig() binauralConfig {
	return binauralConfig{
		model:   DefaultModel(),
		mode:    interp.Linear,
		monitor: MonitorFull,
	}
}

// WithModel replaces the structural model constants.
func WithModel(model Model) BinauralOption {
	return func(cfg *binauralConfig) error {
		if err := model.Validate(); err != nil {
			return err
		}
		cfg.model = model
		return nil
	}
}

// WithInterpolation selects the fractional delay kernel.
func WithInterpolation(mode interp.Mode) BinauralOption {
	return func(cfg *binauralConfig) error {
		if !mode.Valid() {
			return fmt.Errorf("binaural interpolation mode is invalid: %d", mode)
		}
		cfg.mode = mode
		return nil
	}
}

// WithMonitor selects the output stage.
func WithMonitor(monitor Monitor) BinauralOption {
	return func(cfg *binauralConfig) error {
		if !validMonitor(monitor) {
			return fmt.Errorf("binaural monitor is invalid: %d", monitor)
		}
		cfg.monitor = monitor
		return nil
	}
}

// WithAzimuth sets the initial azimuth in degrees, bypassing the smoother.
func WithAzimuth(deg float64) BinauralOption {
	return func(cfg *binauralConfig) error {
		if err := checkRange("azimuth", deg, MinAzimuth, MaxAzimuth); err != nil {
			return err
		}
		cfg.azimuth = deg
		return nil
	}
}

// WithElevation sets the initial elevation in degrees, bypassing the smoother.
func WithElevation(deg float64) BinauralOption {
	return func(cfg *binauralConfig) error {
		if err := checkRange("elevation", deg, MinElevation, MaxElevation); err != nil {
			return err
		}
		cfg.elevation = deg
		return nil
	}
}

// WithVolume sets the initial output level in dB.
func WithVolume(db float64) BinauralOption {
	return func(cfg *binauralConfig) error {
		if err := checkRange("volume", db, MinVolumeDB, MaxVolumeDB); err != nil {
			return err
		}
		cfg.volume = db
		return nil
	}
}

func checkRange(name string, v, lo, hi float64) error {
	if v < lo || v > hi || math.IsNaN(v) {
		return fmt.Errorf("binaural %s must be in [%g, %g]: %f", name, lo, hi, v)
	}
	return nil
}

// Diagnostics is a snapshot of the processor's observability counters.
type Diagnostics struct {
	// Blocks counts processed blocks, after splitting at the max block size.
	Blocks uint64
	// ClippedBlocks counts blocks where the pinna stage exceeded full scale.
	ClippedBlocks uint64
	// ClippedSamples counts pinna-stage samples with magnitude above 1,
	// summed over both ears.
	ClippedSamples uint64
	// LastPeak is the largest pinna-stage magnitude of the last block.
	LastPeak float64
}

type diagnostics struct {
	blocks         atomic.Uint64
	clippedBlocks  atomic.Uint64
	clippedSamples atomic.Uint64
	lastPeak       atomic.Uint64
}

// earState is everything one ear owns while streaming.
type earState struct {
	direct *delay.Line
	shaded *delay.Line
	shadow HeadShadowFilter
	geom   earGeometry

	pinna []float64
	room  []float64
}

// Binaural renders a mono source as binaural stereo with the Duda & Brown
// structural HRTF: interaural delay, head shadow, pinna reflections and one
// early reflection.
//
// The processor is Uninitialized until Prepare and returns to that state on
// Release. Control setters and Diagnostics may be called from any goroutine;
// Prepare, Release, Reset and the Process methods belong to the audio
// goroutine.
type Binaural struct {
	model   Model
	mode    interp.Mode
	monitor Monitor

	azimuth   param
	elevation param
	volume    param

	prepared    bool
	sampleRate  float64
	period      float64
	maxBlock    int
	layout      lineLayout
	beta        float64
	thetaMinRad float64
	roomLag     float64
	roomGain    float64

	ears [2]earState
	diag diagnostics
}

// NewBinaural creates an unprepared binaural processor.
func NewBinaural(opts ...BinauralOption) (*Binaural, error) {
	cfg := defaultBinauralConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	b := &Binaural{
		model:   cfg.model,
		mode:    cfg.mode,
		monitor: cfg.monitor,
	}
	b.azimuth.store(cfg.azimuth)
	b.elevation.store(cfg.elevation)
	b.volume.store(cfg.volume)
	return b, nil
}

// Prepare starts a stream: it sizes the delay lines for sampleRate, allocates
// block scratch for maxBlockSize samples and clears all filter state. Control
// values survive.
func (b *Binaural) Prepare(sampleRate float64, maxBlockSize int) error {
	stream := core.StreamConfig{SampleRate: sampleRate, MaxBlockSize: maxBlockSize}
	if err := stream.Validate(); err != nil {
		return fmt.Errorf("binaural prepare: %w", err)
	}

	layout, err := b.model.layout(sampleRate, b.mode)
	if err != nil {
		return err
	}

	for i := range b.ears {
		e := &b.ears[i]
		if e.direct, err = delay.New(layout.capacity, layout.writeAhead, delay.WithMode(b.mode)); err != nil {
			return fmt.Errorf("binaural prepare: %w", err)
		}
		if e.shaded, err = delay.New(layout.capacity, layout.writeAhead, delay.WithMode(b.mode)); err != nil {
			return fmt.Errorf("binaural prepare: %w", err)
		}
		e.shadow.Reset()
		e.pinna = make([]float64, maxBlockSize)
		e.room = make([]float64, maxBlockSize)
	}

	b.sampleRate = sampleRate
	b.period = 1 / sampleRate
	b.maxBlock = maxBlockSize
	b.layout = layout
	b.beta = b.model.Beta()
	b.thetaMinRad = core.DegToRad(b.model.ThetaMinDeg)
	b.roomLag = b.model.RoomDelaySeconds * sampleRate
	b.roomGain = b.model.RoomGain()
	b.prepared = true
	return nil
}

// PrepareStream prepares for the stream described by opts on top of
// core.DefaultStreamConfig.
func (b *Binaural) PrepareStream(opts ...core.StreamOption) error {
	cfg := core.ApplyStreamOptions(opts...)
	return b.Prepare(cfg.SampleRate, cfg.MaxBlockSize)
}

// Release ends the stream. The processor must be prepared again before the
// next Process call.
func (b *Binaural) Release() {
	b.prepared = false
	for i := range b.ears {
		b.ears[i] = earState{}
	}
}

// Prepared reports whether the processor is streaming.
func (b *Binaural) Prepared() bool { return b.prepared }

// Reset clears delay lines and filter histories without leaving the stream.
func (b *Binaural) Reset() {
	if !b.prepared {
		return
	}
	for i := range b.ears {
		b.ears[i].direct.Reset()
		b.ears[i].shaded.Reset()
		b.ears[i].shadow.Reset()
	}
}

// SetAzimuth feeds a new azimuth in degrees through the smoother.
func (b *Binaural) SetAzimuth(deg float64) error {
	if err := checkRange("azimuth", deg, MinAzimuth, MaxAzimuth); err != nil {
		return err
	}
	b.azimuth.smooth(deg, b.model.SmoothingWeight)
	return nil
}

// SetElevation feeds a new elevation in degrees through the smoother.
func (b *Binaural) SetElevation(deg float64) error {
	if err := checkRange("elevation", deg, MinElevation, MaxElevation); err != nil {
		return err
	}
	b.elevation.smooth(deg, b.model.SmoothingWeight)
	return nil
}

// SetVolume sets the output level in dB. It takes effect with the next block.
func (b *Binaural) SetVolume(db float64) error {
	if err := checkRange("volume", db, MinVolumeDB, MaxVolumeDB); err != nil {
		return err
	}
	b.volume.store(db)
	return nil
}

// Azimuth returns the smoothed azimuth in degrees.
func (b *Binaural) Azimuth() float64 { return b.azimuth.load() }

// Elevation returns the smoothed elevation in degrees.
func (b *Binaural) Elevation() float64 { return b.elevation.load() }

// Volume returns the output level in dB.
func (b *Binaural) Volume() float64 { return b.volume.load() }

// Model returns the structural model constants.
func (b *Binaural) Model() Model { return b.model }

// SampleRate returns the prepared sample rate, or 0 before Prepare.
func (b *Binaural) SampleRate() float64 {
	if !b.prepared {
		return 0
	}
	return b.sampleRate
}

// Latency returns the write-ahead offset of the delay lines in samples. The
// head-shadow and room paths are delayed by it once, the pinna path twice.
func (b *Binaural) Latency() int {
	if !b.prepared {
		return 0
	}
	return b.layout.writeAhead
}

// DelayCapacity returns the size of each delay line in samples.
func (b *Binaural) DelayCapacity() int {
	if !b.prepared {
		return 0
	}
	return b.layout.capacity
}

// Diagnostics returns the current observability counters.
func (b *Binaural) Diagnostics() Diagnostics {
	return Diagnostics{
		Blocks:         b.diag.blocks.Load(),
		ClippedBlocks:  b.diag.clippedBlocks.Load(),
		ClippedSamples: b.diag.clippedSamples.Load(),
		LastPeak:       math.Float64frombits(b.diag.lastPeak.Load()),
	}
}

// Process renders the mono signal in into left and right. All three slices
// must have the same length. Process panics if the processor is not prepared.
func (b *Binaural) Process(left, right, in []float64) error {
	if !b.prepared {
		panic("binaural: Process called before Prepare")
	}
	if len(left) != len(in) || len(right) != len(in) {
		return fmt.Errorf("binaural: buffer lengths must match: in=%d left=%d right=%d",
			len(in), len(left), len(right))
	}

	for off := 0; off < len(in); off += b.maxBlock {
		end := min(off+b.maxBlock, len(in))
		b.processBlock(left[off:end], right[off:end], in[off:end])
	}
	return nil
}

// ProcessInPlace renders the mono signal held in left into left and right.
// The previous contents of right are ignored.
func (b *Binaural) ProcessInPlace(left, right []float64) error {
	return b.Process(left, right, left)
}

func (b *Binaural) processBlock(left, right, in []float64) {
	n := len(in)
	elevation := core.DegToRad(b.elevation.load())
	thetaL, thetaR := EarAngles(b.azimuth.load())
	b.ears[Left].geom = b.computeGeometry(thetaL, elevation)
	b.ears[Right].geom = b.computeGeometry(thetaR, elevation)

	// Both ears consume the whole input before any output is written, so
	// in may alias left.
	for i := range b.ears {
		b.runEar(&b.ears[i], in)
	}

	peak := 0.0
	var clipped uint64
	for i := range b.ears {
		p, c := clipStats(b.ears[i].pinna[:n])
		peak = math.Max(peak, p)
		clipped += c
	}

	gain := core.DBToLinear(b.volume.load())
	mixEar(left, &b.ears[Left], gain)
	mixEar(right, &b.ears[Right], gain)

	b.diag.blocks.Add(1)
	b.diag.lastPeak.Store(math.Float64bits(peak))
	if clipped > 0 {
		b.diag.clippedBlocks.Add(1)
		b.diag.clippedSamples.Add(clipped)
	}
}

func (b *Binaural) runEar(e *earState, in []float64) {
	e.shadow.SetCoefficients(e.geom.alpha, b.period, b.beta)
	pinna := e.pinna[:len(in)]
	room := e.room[:len(in)]

	for i, x := range in {
		e.direct.Write(x)
		direct := e.direct.ReadInterpolated(e.geom.itdLag)
		reflection := b.roomGain * e.direct.ReadInterpolated(b.roomLag)

		shadowed := e.shadow.ProcessSample(direct)
		e.shaded.Write(shadowed)
		reflections := pinnaSum(e.shaded, &b.model.PinnaTaps, &e.geom.tapLags)

		e.direct.Advance()
		e.shaded.Advance()

		switch b.monitor {
		case MonitorHeadShadow:
			pinna[i], room[i] = shadowed, 0
		case MonitorPinna:
			pinna[i], room[i] = reflections, 0
		default:
			pinna[i], room[i] = reflections, reflection
		}
	}
}

// mixEar writes (pinna + room) * gain into dst.
func mixEar(dst []float64, e *earState, gain float64) {
	n := len(dst)
	copy(dst, e.pinna[:n])
	vecmath.AddBlockInPlace(dst, e.room[:n])
	vecmath.ScaleBlock(dst, dst, gain)
}

// clipStats returns the peak magnitude of x and how many samples exceed 1.
func clipStats(x []float64) (peak float64, clipped uint64) {
	for _, v := range x {
		a := math.Abs(v)
		if a > peak {
			peak = a
		}
		if a > 1 {
			clipped++
		}
	}
	return peak, clipped
}
