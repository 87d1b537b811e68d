package core

import "testing"

func TestEnsureLenReuse(t *testing.T) {
	buf := make([]float64, 4, 8)

	out := EnsureLen(buf, 6)
	if len(out) != 6 {
		t.Fatalf("len = %d, want 6", len(out))
	}

	if cap(out) != cap(buf) {
		t.Fatalf("cap = %d, want %d", cap(out), cap(buf))
	}

	if grown := EnsureLen(buf, 16); len(grown) != 16 {
		t.Fatalf("len = %d, want 16", len(grown))
	}
}

func TestZero(t *testing.T) {
	buf := []float64{1, 2, 3}
	Zero(buf)

	for i, v := range buf {
		if v != 0 {
			t.Fatalf("buf[%d] = %v, want 0", i, v)
		}
	}
}

func TestInterleave(t *testing.T) {
	dst := make([]float64, 6)
	n := Interleave(dst, []float64{1, 2, 3}, []float64{-1, -2, -3, -4})
	if n != 3 {
		t.Fatalf("frames = %d, want 3", n)
	}
	want := []float64{1, -1, 2, -2, 3, -3}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("dst[%d] = %v, want %v", i, dst[i], want[i])
		}
	}
}

func TestExtractChannel(t *testing.T) {
	interleaved := []float64{1, 10, 2, 20, 3, 30}
	dst := make([]float64, 4)

	if n := ExtractChannel(dst, interleaved, 2, 1); n != 3 {
		t.Fatalf("frames = %d, want 3", n)
	}
	if dst[0] != 10 || dst[1] != 20 || dst[2] != 30 {
		t.Fatalf("unexpected right channel: %v", dst)
	}

	if n := ExtractChannel(dst, interleaved, 2, 2); n != 0 {
		t.Fatalf("out-of-range channel copied %d frames", n)
	}
}
