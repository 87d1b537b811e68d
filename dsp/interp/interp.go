package interp

import "fmt"

// Mode selects the interpolation kernel for fractional delay reads.
type Mode int

const (
	// Linear interpolates between the two samples straddling the read point.
	Linear Mode = iota
	// Hermite uses a 4-point cubic through the two straddling samples and
	// their outer neighbours.
	Hermite
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Linear:
		return "linear"
	case Hermite:
		return "hermite"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Valid reports whether m names a known kernel.
func (m Mode) Valid() bool {
	return m == Linear || m == Hermite
}

// Taps returns how many samples on each side of the read point the kernel
// touches: before (older) and after (newer).
func (m Mode) Taps() (older, newer int) {
	if m == Hermite {
		return 2, 1
	}
	return 1, 0
}

// ParseMode maps a mode name to a Mode.
func ParseMode(name string) (Mode, error) {
	switch name {
	case "linear":
		return Linear, nil
	case "hermite":
		return Hermite, nil
	default:
		return Linear, fmt.Errorf("unknown interpolation mode: %q", name)
	}
}

// Linear2 interpolates from x0 (t=0) to x1 (t=1).
func Linear2(t, x0, x1 float64) float64 {
	return x0 + t*(x1-x0)
}

// Hermite4 computes cubic 4-point interpolation.
// It interpolates from x0 to x1 using neighbor points xm1 and x2.
func Hermite4(t, xm1, x0, x1, x2 float64) float64 {
	c0 := x0
	c1 := 0.5 * (x1 - xm1)
	c2 := xm1 - 2.5*x0 + 2*x1 - 0.5*x2
	c3 := 0.5*(x2-xm1) + 1.5*(x0-x1)
	return ((c3*t+c2)*t+c1)*t + c0
}
