package audiofile

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"voice.wav", FormatWAV},
		{"VOICE.WAV", FormatWAV},
		{"a/b/take.aiff", FormatAIFF},
		{"take.aif", FormatAIFF},
		{"song.mp3", FormatMP3},
		{"song.ogg", FormatVorbis},
	}

	for _, tt := range tests {
		got, err := FormatFromPath(tt.path)
		if err != nil {
			t.Fatalf("FormatFromPath(%q) error = %v", tt.path, err)
		}

		if got != tt.want {
			t.Fatalf("FormatFromPath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}

	if _, err := FormatFromPath("notes.flac"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("FormatFromPath(flac) error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestStereoWAVRoundTrip(t *testing.T) {
	for _, depth := range []int{16, 24} {
		path := filepath.Join(t.TempDir(), "render.wav")

		left := make([]float64, 480)
		right := make([]float64, 480)

		for i := range left {
			left[i] = 0.5 * math.Sin(2*math.Pi*float64(i)/48)
			right[i] = -left[i]
		}

		if err := WriteFile(path, 48000, depth, left, right); err != nil {
			t.Fatalf("WriteFile(%d bit) error = %v", depth, err)
		}

		got, err := ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile() error = %v", err)
		}

		if got.SampleRate != 48000 || got.Channels != 2 || len(got.Samples) != len(left) {
			t.Fatalf("decoded = rate %d, channels %d, len %d", got.SampleRate, got.Channels, len(got.Samples))
		}

		tol := 1.0 / float64(int(1)<<(depth-1))
		for i := range left {
			if math.Abs(got.Samples[i]-left[i]) > tol {
				t.Fatalf("%d bit sample %d = %v, want %v", depth, i, got.Samples[i], left[i])
			}
		}

		if math.Abs(got.Duration()-0.01) > 1e-12 {
			t.Fatalf("Duration() = %v, want 0.01", got.Duration())
		}
	}
}

func TestStereoWriterCountsClipping(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "clip.wav"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	w, err := NewStereoWriter(f, 44100, 16)
	if err != nil {
		t.Fatalf("NewStereoWriter() error = %v", err)
	}

	if err := w.Write([]float64{0.5, 1.5, -2}, []float64{0, 0, math.NaN()}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if got := w.Clipped(); got != 3 {
		t.Fatalf("Clipped() = %d, want 3", got)
	}

	if err := w.Write([]float64{0}, []float64{0, 0}); err == nil {
		t.Fatal("expected error for channel length mismatch")
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}

func TestNewStereoWriterValidation(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "bad.wav"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if _, err := NewStereoWriter(f, 48000, 8); !errors.Is(err, ErrUnsupportedDepth) {
		t.Fatalf("8-bit error = %v, want ErrUnsupportedDepth", err)
	}

	if _, err := NewStereoWriter(f, 0, 16); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
}

func TestDecodeKeepsFirstChannel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "three.wav")

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}

	enc := wav.NewEncoder(f, 22050, 16, 3, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 3, SampleRate: 22050},
		Data:           []int{100, -1, -2, 200, -3, -4, -16384, -5, -6},
		SourceBitDepth: 16,
	}

	if err := enc.Write(buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if err := enc.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	f.Close()

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	want := []float64{100.0 / 32768, 200.0 / 32768, -0.5}
	if got.Channels != 3 || len(got.Samples) != len(want) {
		t.Fatalf("decoded %d channels, %d frames", got.Channels, len(got.Samples))
	}

	for i := range want {
		if got.Samples[i] != want[i] {
			t.Fatalf("sample %d = %v, want %v", i, got.Samples[i], want[i])
		}
	}
}

func TestDecodeAIFF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "take.aiff")

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}

	enc := aiff.NewEncoder(f, 44100, 16, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: 44100},
		Data:           []int{0, 8192, 16384, -8192},
		SourceBitDepth: 16,
	}

	if err := enc.Write(buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if err := enc.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	f.Close()

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	want := []float64{0, 0.25, 0.5, -0.25}
	if got.SampleRate != 44100 || len(got.Samples) != len(want) {
		t.Fatalf("decoded rate %d, %d frames", got.SampleRate, len(got.Samples))
	}

	for i := range want {
		if got.Samples[i] != want[i] {
			t.Fatalf("sample %d = %v, want %v", i, got.Samples[i], want[i])
		}
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	garbage := bytes.Repeat([]byte("not audio "), 16)

	if _, err := Decode(bytes.NewReader(garbage), FormatWAV); !errors.Is(err, ErrNotWavFile) {
		t.Fatalf("WAV error = %v, want ErrNotWavFile", err)
	}

	if _, err := Decode(bytes.NewReader(garbage), FormatAIFF); !errors.Is(err, ErrNotAiffFile) {
		t.Fatalf("AIFF error = %v, want ErrNotAiffFile", err)
	}

	if _, err := Decode(bytes.NewReader(garbage), FormatVorbis); err == nil {
		t.Fatal("expected Vorbis decode error")
	}

	if _, err := Decode(bytes.NewReader(nil), FormatMP3); err == nil {
		t.Fatal("expected MP3 decode error")
	}

	if _, err := Decode(bytes.NewReader(garbage), Format(42)); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("unknown format error = %v", err)
	}
}

func TestReadFileMissing(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
