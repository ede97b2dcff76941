package splititer

import "iter"

// IteratorFunc adapts a function to an Iterator.
type IteratorFunc[T any] func() (T, bool)

func (f IteratorFunc[T]) Next() (T, bool) { return f() }

// Slice is an Iterator over a slice.
type Slice[T any] struct {
	s []T
	i int
}

// FromSlice returns an Iterator over s.
func FromSlice[S ~[]E, E any](s S) *Slice[E] {
	return &Slice[E]{s: s}
}

func (s *Slice[T]) Next() (T, bool) {
	if s.i >= len(s.s) {
		var zero T
		return zero, false
	}
	v := s.s[s.i]
	s.i++
	return v, true
}

// Split splits the remaining elements of s.
func (s *Slice[T]) Split(predicate func(T) bool) (*Branch[T], *Branch[T]) {
	return Split[T](s, predicate)
}

// SeqIterator pulls from an iter.Seq.
// Stop must be called if the sequence is abandoned before exhaustion.
type SeqIterator[T any] struct {
	next func() (T, bool)
	stop func()
	done bool
}

// FromSeq returns an Iterator that pulls from seq.
func FromSeq[T any](seq iter.Seq[T]) *SeqIterator[T] {
	next, stop := iter.Pull(seq)
	return &SeqIterator[T]{
		next: next,
		stop: stop,
	}
}

func (s *SeqIterator[T]) Next() (T, bool) {
	if !s.done {
		if v, ok := s.next(); ok {
			return v, true
		}
		s.Stop()
	}
	var zero T
	return zero, false
}

// Stop releases the underlying sequence. Next reports exhaustion afterwards.
func (s *SeqIterator[T]) Stop() {
	s.done = true
	s.stop()
}

// Split splits the remaining elements of s.
func (s *SeqIterator[T]) Split(predicate func(T) bool) (*Branch[T], *Branch[T]) {
	return Split[T](s, predicate)
}

// Seq returns the remaining elements of it as an iter.Seq.
func Seq[T any](it Iterator[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			v, ok := it.Next()
			if !ok || !yield(v) {
				return
			}
		}
	}
}

// Collect drains it into a slice.
func Collect[T any](it Iterator[T]) []T {
	var r []T
	for {
		v, ok := it.Next()
		if !ok {
			return r
		}
		r = append(r, v)
	}
}

// SplitSeq is Split for an iter.Seq.
// stop releases seq; call it when the branches are abandoned before exhaustion.
func SplitSeq[T any](seq iter.Seq[T], predicate func(T) bool) (falses, trues iter.Seq[T], stop func()) {
	src := FromSeq(seq)
	f, t := src.Split(predicate)
	return f.All(), t.All(), src.Stop
}
