package audiofile

import (
	"fmt"
	"io"
	"math"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-binaural/dsp/core"
)

// wavPCM is the WAVE_FORMAT_PCM tag.
const wavPCM = 1

// StereoWriter streams two-channel integer PCM to a WAV file. Samples
// outside [-1, 1] are clipped and counted.
type StereoWriter struct {
	enc   *wav.Encoder
	buf   *goaudio.IntBuffer
	mix   []float64
	scale float64

	clipped uint64
}

// NewStereoWriter starts a WAV stream on w. bitDepth must be 16 or 24.
func NewStereoWriter(w io.WriteSeeker, sampleRate, bitDepth int) (*StereoWriter, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("audiofile: sample rate must be > 0: %d", sampleRate)
	}
	if bitDepth != 16 && bitDepth != 24 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedDepth, bitDepth)
	}

	scale, _ := fullScale(bitDepth)

	return &StereoWriter{
		enc: wav.NewEncoder(w, sampleRate, bitDepth, 2, wavPCM),
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: 2, SampleRate: sampleRate},
			SourceBitDepth: bitDepth,
		},
		scale: scale,
	}, nil
}

// Write appends one block. left and right must have the same length.
func (w *StereoWriter) Write(left, right []float64) error {
	if len(left) != len(right) {
		return fmt.Errorf("audiofile: channel lengths differ: %d != %d", len(left), len(right))
	}

	w.mix = core.EnsureLen(w.mix, 2*len(left))
	core.Interleave(w.mix, left, right)

	if cap(w.buf.Data) < len(w.mix) {
		w.buf.Data = make([]int, len(w.mix))
	}
	w.buf.Data = w.buf.Data[:len(w.mix)]

	for i, v := range w.mix {
		w.buf.Data[i] = w.quantize(v)
	}

	if err := w.enc.Write(w.buf); err != nil {
		return fmt.Errorf("audiofile: writing WAV: %w", err)
	}
	return nil
}

func (w *StereoWriter) quantize(v float64) int {
	if v > 1 || v < -1 || math.IsNaN(v) {
		w.clipped++
		if math.IsNaN(v) {
			v = 0
		}
	}
	q := math.Round(v * w.scale)
	return int(core.Clamp(q, -w.scale, w.scale-1))
}

// Clipped returns how many samples were clipped so far.
func (w *StereoWriter) Clipped() uint64 { return w.clipped }

// Close finalizes the WAV header. It does not close the underlying writer.
func (w *StereoWriter) Close() error {
	if err := w.enc.Close(); err != nil {
		return fmt.Errorf("audiofile: finalizing WAV: %w", err)
	}
	return nil
}

// WriteFile writes a complete stereo render to path.
func WriteFile(path string, sampleRate, bitDepth int, left, right []float64) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("audiofile: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("audiofile: %w", cerr)
		}
	}()

	w, err := NewStereoWriter(f, sampleRate, bitDepth)
	if err != nil {
		return err
	}
	if err := w.Write(left, right); err != nil {
		return err
	}
	return w.Close()
}
