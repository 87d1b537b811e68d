// Package playback streams a rendered binaural signal to the sound card.
package playback

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync/atomic"
)

// Processor renders a mono block to stereo.
type Processor interface {
	Process(left, right, in []float64) error
}

// bytesPerFrame is two float32 channels.
const bytesPerFrame = 8

// Stream is an io.Reader of interleaved float32 little-endian stereo. Each
// Read pulls the next part of source through the processor. Read belongs to
// the audio goroutine; Position and Stop may be called from anywhere.
type Stream struct {
	proc   Processor
	source []float64
	loop   bool

	in, left, right []float64

	pos     atomic.Int64
	stopped atomic.Bool
	err     atomic.Pointer[error]
}

// NewStream renders source through proc in blocks of at most blockSize
// frames. With loop set the source repeats until Stop.
func NewStream(proc Processor, source []float64, blockSize int, loop bool) (*Stream, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("playback block size must be > 0: %d", blockSize)
	}
	if len(source) == 0 {
		return nil, fmt.Errorf("playback source is empty")
	}
	return &Stream{
		proc:   proc,
		source: source,
		loop:   loop,
		in:     make([]float64, blockSize),
		left:   make([]float64, blockSize),
		right:  make([]float64, blockSize),
	}, nil
}

// Read fills p with whole frames. It returns io.EOF once the source is
// exhausted or the stream was stopped.
func (s *Stream) Read(p []byte) (int, error) {
	if s.stopped.Load() {
		return 0, io.EOF
	}

	frames := len(p) / bytesPerFrame
	written := 0

	for written < frames {
		n := s.fill(min(frames-written, len(s.in)))
		if n == 0 {
			break
		}

		if err := s.proc.Process(s.left[:n], s.right[:n], s.in[:n]); err != nil {
			s.err.Store(&err)
			s.stopped.Store(true)
			break
		}

		out := p[written*bytesPerFrame:]
		for i := range n {
			binary.LittleEndian.PutUint32(out[8*i:], math.Float32bits(float32(s.left[i])))
			binary.LittleEndian.PutUint32(out[8*i+4:], math.Float32bits(float32(s.right[i])))
		}
		written += n
	}

	if written == 0 {
		return 0, io.EOF
	}
	return written * bytesPerFrame, nil
}

// fill copies up to n source frames into the input scratch and returns how
// many it copied.
func (s *Stream) fill(n int) int {
	pos := int(s.pos.Load())
	if pos >= len(s.source) {
		if !s.loop {
			return 0
		}
		pos = 0
	}

	n = copy(s.in[:n], s.source[pos:])
	s.pos.Store(int64(pos + n))
	return n
}

// Position returns the index of the next source frame.
func (s *Stream) Position() int { return int(s.pos.Load()) }

// Stop makes the next Read report io.EOF.
func (s *Stream) Stop() { s.stopped.Store(true) }

// Err returns the processing error that stopped the stream, if any.
func (s *Stream) Err() error {
	if e := s.err.Load(); e != nil {
		return *e
	}
	return nil
}
