package slicex

import (
	"slices"

	"github.com/berquerant/splititer/pkg/splititer"
)

// Split splits a given slice into two parts based on the first occurrence of a specified value,
// returning the sub-slices that precede and follow the value.
func Split[S ~[]E, E comparable](s S, v E) (S, S) {
	i := slices.Index(s, v)
	if i < 0 {
		return s, nil
	}
	left := make(S, i)
	right := make(S, len(s)-i-1)
	copy(left, s[:i])
	copy(right, s[i+1:])
	return left, right
}

// Partition splits s into the elements for which predicate returns false
// and the elements for which it returns true, preserving order.
func Partition[S ~[]E, E any](s S, predicate func(E) bool) (S, S) {
	falses, trues := splititer.FromSlice(s).Split(predicate)
	// Draining trues first buffers falses.
	right := slices.AppendSeq(make(S, 0, len(s)), trues.All())
	left := slices.AppendSeq(make(S, 0, len(s)-len(right)), falses.All())
	return left, right
}
