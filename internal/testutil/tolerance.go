package testutil

import (
	"fmt"
	"math"
	"testing"
)

// Mismatch is the largest deviation between two signals.
type Mismatch struct {
	Index     int
	Got, Want float64
	Diff      float64
}

// WorstMismatch compares got against want sample by sample and returns the
// position of the largest absolute difference. Index is -1 for empty input.
func WorstMismatch(got, want []float64) (Mismatch, error) {
	if len(got) != len(want) {
		return Mismatch{}, fmt.Errorf("length mismatch: got %d, want %d", len(got), len(want))
	}

	m := Mismatch{Index: -1}
	for i := range got {
		d := math.Abs(got[i] - want[i])
		if m.Index < 0 || d > m.Diff || math.IsNaN(d) {
			m = Mismatch{Index: i, Got: got[i], Want: want[i], Diff: d}
			if math.IsNaN(d) {
				break
			}
		}
	}
	return m, nil
}

// RequireSliceNearlyEqual fails t unless every sample of got is within eps
// of want. The report names the worst sample, not the first.
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()
	m, err := WorstMismatch(got, want)
	if err != nil {
		t.Fatal(err)
	}
	if m.Index >= 0 && !(m.Diff <= eps) {
		t.Fatalf("sample %d: got %v, want %v (diff %v > %v)", m.Index, m.Got, m.Want, m.Diff, eps)
	}
}

// RequireFinite fails t on the first NaN or infinity.
func RequireFinite(t *testing.T, data []float64) {
	t.Helper()
	if i := indexWhere(data, func(v float64) bool { return math.IsNaN(v) || math.IsInf(v, 0) }); i >= 0 {
		t.Fatalf("sample %d is not finite: %v", i, data[i])
	}
}

// RequireSilent fails t on the first sample that is not exactly zero.
func RequireSilent(t *testing.T, data []float64) {
	t.Helper()
	if i := indexWhere(data, func(v float64) bool { return v != 0 }); i >= 0 {
		t.Fatalf("sample %d: got %v, want silence", i, data[i])
	}
}

func indexWhere(data []float64, bad func(float64) bool) int {
	for i, v := range data {
		if bad(v) {
			return i
		}
	}
	return -1
}
