package core

// EnsureLen returns buf resliced to n samples, allocating only when its
// capacity is too small. Contents are not cleared.
func EnsureLen(buf []float64, n int) []float64 {
	switch {
	case n <= 0:
		return buf[:0]
	case cap(buf) < n:
		return make([]float64, n)
	default:
		return buf[:n]
	}
}

// Zero clears buf.
func Zero(buf []float64) {
	clear(buf)
}
