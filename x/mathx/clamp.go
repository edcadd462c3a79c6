package mathx

import "golang.org/x/exp/constraints"

// Clamp pins v into the band between lo and hi, accepting the bounds in
// either order.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	lo, hi = min(lo, hi), max(lo, hi)
	return min(max(v, lo), hi)
}

// Between reports whether v already lies in the band; NaN never does.
func Between[T constraints.Ordered](v, lo, hi T) bool {
	return Clamp(v, lo, hi) == v
}
