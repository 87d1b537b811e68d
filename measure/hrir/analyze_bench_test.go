package hrir

import "testing"

func BenchmarkAnalyze(b *testing.B) {
	resp := Response{
		SampleRate: 48000,
		Left:       makeResponse(1024, map[int]float64{40: 1, 43: -0.6, 47: 0.3}),
		Right:      makeResponse(1024, map[int]float64{22: 1, 25: -0.5}),
	}
	a := NewAnalyzer()

	b.ReportAllocs()
	b.ResetTimer()

	for b.Loop() {
		if _, err := a.Analyze(resp); err != nil {
			b.Fatal(err)
		}
	}
}
