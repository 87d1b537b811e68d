package audiofile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"

	"github.com/cwbudde/algo-binaural/dsp/core"
)

// Format identifies a source container.
type Format int

const (
	FormatWAV Format = iota
	FormatAIFF
	FormatMP3
	FormatVorbis
)

// String returns the conventional file extension without the dot.
func (f Format) String() string {
	switch f {
	case FormatWAV:
		return "wav"
	case FormatAIFF:
		return "aiff"
	case FormatMP3:
		return "mp3"
	case FormatVorbis:
		return "ogg"
	default:
		return "unknown"
	}
}

// FormatFromPath picks the decoder from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		return FormatWAV, nil
	case ".aif", ".aiff":
		return FormatAIFF, nil
	case ".mp3":
		return FormatMP3, nil
	case ".ogg", ".oga":
		return FormatVorbis, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Mono is a decoded single-channel source.
type Mono struct {
	SampleRate int
	Samples    []float64
	// Channels is the channel count of the file; only channel 0 is kept.
	Channels int
}

// Duration returns the source length in seconds.
func (m Mono) Duration() float64 {
	if m.SampleRate <= 0 {
		return 0
	}
	return float64(len(m.Samples)) / float64(m.SampleRate)
}

// ReadFile decodes the file at path, choosing the format by extension.
func ReadFile(path string) (Mono, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Mono{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return Mono{}, fmt.Errorf("audiofile: %w", err)
	}
	defer f.Close()

	return Decode(f, format)
}

// Decode reads a whole source of the given format and keeps channel 0.
func Decode(r io.ReadSeeker, format Format) (Mono, error) {
	switch format {
	case FormatWAV:
		return decodeWAV(r)
	case FormatAIFF:
		return decodeAIFF(r)
	case FormatMP3:
		return decodeMP3(r)
	case FormatVorbis:
		return decodeVorbis(r)
	default:
		return Mono{}, fmt.Errorf("%w: %d", ErrUnsupportedFormat, format)
	}
}

func decodeWAV(r io.ReadSeeker) (Mono, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return Mono{}, ErrNotWavFile
	}
	if dec.WavAudioFormat != 1 {
		return Mono{}, fmt.Errorf("%w: WAV audio format %d", ErrUnsupportedFormat, dec.WavAudioFormat)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Mono{}, fmt.Errorf("audiofile: decoding WAV: %w", err)
	}

	return monoFromInts(buf.Data, buf.Format, int(dec.BitDepth))
}

func decodeAIFF(r io.ReadSeeker) (Mono, error) {
	dec := aiff.NewDecoder(r)
	if !dec.IsValidFile() {
		return Mono{}, ErrNotAiffFile
	}
	dec.ReadInfo()

	format := dec.Format()
	if format == nil {
		return Mono{}, ErrNotAiffFile
	}

	chunk := &goaudio.IntBuffer{Data: make([]int, 4096), Format: format}

	var data []int
	for {
		n, err := dec.PCMBuffer(chunk)
		data = append(data, chunk.Data[:n]...)
		if err != nil && !errors.Is(err, io.EOF) {
			return Mono{}, fmt.Errorf("audiofile: decoding AIFF: %w", err)
		}
		if err != nil || n == 0 {
			break
		}
	}

	return monoFromInts(data, format, int(dec.BitDepth))
}

func monoFromInts(data []int, format *goaudio.Format, bitDepth int) (Mono, error) {
	if format == nil || format.NumChannels <= 0 {
		return Mono{}, ErrNoChannels
	}

	scale, err := fullScale(bitDepth)
	if err != nil {
		return Mono{}, err
	}

	interleaved := make([]float64, len(data))
	for i, v := range data {
		interleaved[i] = float64(v) / scale
	}

	return monoFromInterleaved(interleaved, format.SampleRate, format.NumChannels), nil
}

func fullScale(bitDepth int) (float64, error) {
	switch bitDepth {
	case 8, 16, 24, 32:
		return float64(int64(1) << (bitDepth - 1)), nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedDepth, bitDepth)
	}
}

// go-mp3 always produces 16-bit little-endian stereo.
func decodeMP3(r io.Reader) (Mono, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return Mono{}, fmt.Errorf("audiofile: decoding MP3: %w", err)
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return Mono{}, fmt.Errorf("audiofile: decoding MP3: %w", err)
	}

	pcm := make([]int16, len(raw)/2)
	if err := binary.Read(bytes.NewReader(raw[:2*len(pcm)]), binary.LittleEndian, pcm); err != nil {
		return Mono{}, fmt.Errorf("audiofile: decoding MP3: %w", err)
	}

	interleaved := make([]float64, len(pcm))
	for i, v := range pcm {
		interleaved[i] = float64(v) / 32768
	}

	return monoFromInterleaved(interleaved, dec.SampleRate(), 2), nil
}

func decodeVorbis(r io.Reader) (Mono, error) {
	samples, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return Mono{}, fmt.Errorf("audiofile: decoding Vorbis: %w", err)
	}
	if format.Channels <= 0 {
		return Mono{}, ErrNoChannels
	}

	interleaved := make([]float64, len(samples))
	for i, v := range samples {
		interleaved[i] = float64(v)
	}

	return monoFromInterleaved(interleaved, format.SampleRate, format.Channels), nil
}

func monoFromInterleaved(interleaved []float64, sampleRate, channels int) Mono {
	out := make([]float64, len(interleaved)/channels)
	n := core.ExtractChannel(out, interleaved, channels, 0)
	return Mono{
		SampleRate: sampleRate,
		Samples:    out[:n],
		Channels:   channels,
	}
}
