// Package spatial provides binaural rendering of a mono source with the
// Duda & Brown structural head-related transfer function.
//
// [Binaural] chains, per ear and per sample:
//   - an interaural delay from Woodworth's formula, read from a delay line
//     with a write-ahead offset so the ear facing the source can lead,
//   - an early-reflection tap from the same line,
//   - a time-varying one-pole head-shadow filter,
//   - five pinna reflections read from a second delay line,
//   - the output gain.
//
// Azimuth and elevation pass through an exponential smoother and reach the
// audio goroutine through atomics, so controls can be moved while a block is
// being rendered. The hot path does not allocate.
package spatial
