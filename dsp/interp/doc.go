// Package interp provides the fractional-sample interpolation kernels used by
// the delay lines.
//
//   - [Linear2]:  2-point linear interpolation (the structural model's choice)
//   - [Hermite4]: 4-point cubic Hermite, smoother at a one-sample cost in
//     usable delay range
//
// [Mode] selects a kernel at delay-line construction time.
package interp
