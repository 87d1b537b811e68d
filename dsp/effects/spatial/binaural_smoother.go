package spatial

import (
	"math"
	"sync/atomic"
)

// Smooth applies one step of the exponential control smoother:
// (1-k)*raw + k*prev.
func Smooth(raw, prev, k float64) float64 {
	return (1-k)*raw + k*prev
}

// param is a float64 control value shared between a control goroutine and the
// audio goroutine. The audio side only loads; writers may race each other.
type param struct {
	bits atomic.Uint64
}

func (p *param) load() float64 {
	return math.Float64frombits(p.bits.Load())
}

func (p *param) store(v float64) {
	p.bits.Store(math.Float64bits(v))
}

// smooth folds raw into the stored value with weight k on the old value and
// returns the new value. The stored value doubles as the previous smoothed
// value for the next update.
func (p *param) smooth(raw, k float64) float64 {
	for {
		old := p.bits.Load()
		next := Smooth(raw, math.Float64frombits(old), k)
		if p.bits.CompareAndSwap(old, math.Float64bits(next)) {
			return next
		}
	}
}
