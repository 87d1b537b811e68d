// Package spectrum turns complex FFT bins into the real-valued views used by
// the HRIR analysis: magnitude, power, decibels and fractional-octave
// smoothing.
//
// The package does not compute transforms itself; callers hand it bins from
// any FFT backend.
package spectrum
