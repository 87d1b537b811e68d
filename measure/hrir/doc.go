// Package hrir captures and analyzes the binaural impulse response of a
// rendering processor.
//
// A capture feeds a unit impulse through a prepared processor and keeps both
// ear signals. The analysis extracts the cues a structural head model is
// built from:
//
//   - Arrival: first sample per ear above a fraction of the ear's peak
//   - ITD: interaural time difference from the two arrivals
//   - ILD: interaural level difference from the ear energies
//   - Reflections: early local extrema after the arrival (pinna taps)
//   - Magnitude response and band levels via FFT
//
// # Usage
//
//	resp, err := hrir.Capture(processor, 512)
//	metrics, err := hrir.NewAnalyzer().Analyze(resp)
//	fmt.Printf("ITD = %.1f us, ILD = %.1f dB\n", metrics.ITD*1e6, metrics.ILD)
package hrir
