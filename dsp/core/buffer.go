package core

// EnsureLen returns a slice with the requested length, reusing buf capacity if possible.
func EnsureLen(buf []float64, n int) []float64 {
	if n <= 0 {
		return buf[:0]
	}
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]float64, n)
}

// Zero sets all values in buf to 0.
func Zero(buf []float64) {
	for i := range buf {
		buf[i] = 0
	}
}

// Interleave writes left/right pairs into dst as L0 R0 L1 R1 ... and
// returns the number of frames written. The frame count is bounded by the
// shorter of left and right and by len(dst)/2.
func Interleave(dst, left, right []float64) int {
	n := min(len(left), len(right), len(dst)/2)
	for i := 0; i < n; i++ {
		dst[2*i] = left[i]
		dst[2*i+1] = right[i]
	}
	return n
}

// ExtractChannel copies channel ch of an interleaved buffer with the given
// channel count into dst and returns the number of frames copied.
func ExtractChannel(dst, interleaved []float64, channels, ch int) int {
	if channels <= 0 || ch < 0 || ch >= channels {
		return 0
	}
	n := min(len(dst), len(interleaved)/channels)
	for i := 0; i < n; i++ {
		dst[i] = interleaved[i*channels+ch]
	}
	return n
}
