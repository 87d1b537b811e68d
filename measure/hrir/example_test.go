package hrir_test

import (
	"fmt"

	"github.com/cwbudde/algo-binaural/measure/hrir"
)

func ExampleAnalyzer_Analyze() {
	left := make([]float64, 64)
	right := make([]float64, 64)
	left[24] = 0.5
	right[6] = 1

	m, err := hrir.NewAnalyzer().Analyze(hrir.Response{SampleRate: 48000, Left: left, Right: right})
	if err != nil {
		panic(err)
	}

	fmt.Printf("ITD = %.0f samples, ILD = %.2f dB\n", m.ITDSamples(48000), m.ILD)
	// Output: ITD = 18 samples, ILD = 6.02 dB
}

func ExampleOctaveBands() {
	for _, b := range hrir.OctaveBands(8000) {
		fmt.Printf("%.0f-%.0f Hz\n", b.LoHz, b.HiHz)
	}
	// Output:
	// 88-177 Hz
	// 177-354 Hz
	// 354-707 Hz
	// 707-1414 Hz
	// 1414-2828 Hz
}
