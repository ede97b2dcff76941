// Package splititer splits one lazy sequence into two according to a predicate.
//
//	falses, trues := splititer.Split(splititer.FromSlice([]int{1, 2, 3, 4}), func(v int) bool {
//		return v%2 == 0
//	})
//
// Neither branch pulls from the source until it is asked for an element.
// Elements skipped by one branch are kept until the other branch asks for them,
// so the branches can be drained in any order.
// Branches are not safe for concurrent use.
package splititer

import (
	"fmt"
	"iter"
)

// Side identifies a branch by the predicate outcome it receives.
type Side bool

const (
	False Side = false
	True  Side = true
)

func (s Side) String() string {
	if s {
		return "true"
	}
	return "false"
}

// Iterator is a pull-based sequence.
// Next returns false once the sequence is exhausted.
type Iterator[T any] interface {
	Next() (T, bool)
}

// Splittable is implemented by sequences that can split themselves.
type Splittable[T any] interface {
	Split(predicate func(T) bool) (*Branch[T], *Branch[T])
}

// Split splits src into the elements for which predicate returns false
// and the elements for which predicate returns true, in that order.
//
// src must not be used by the caller after Split.
// predicate is called exactly once per element, in source order.
func Split[T any](src Iterator[T], predicate func(T) bool) (*Branch[T], *Branch[T]) {
	s := &state[T]{
		src:       src,
		predicate: predicate,
	}
	return &Branch[T]{state: s, side: False}, &Branch[T]{state: s, side: True}
}

// state is shared by the two branches of a split.
// Every element in pending belongs to pendingSide.
type state[T any] struct {
	src         Iterator[T]
	predicate   func(T) bool
	pending     []T
	pendingSide Side
	done        bool
}

func (s *state[T]) next(side Side) (T, bool) {
	if len(s.pending) > 0 && s.pendingSide == side {
		v := s.pending[0]
		var zero T
		s.pending[0] = zero
		s.pending = s.pending[1:]
		return v, true
	}

	for !s.done {
		v, ok := s.src.Next()
		if !ok {
			s.done = true
			break
		}
		if Side(s.predicate(v)) == side {
			return v, true
		}
		s.pendingSide = !side
		s.pending = append(s.pending, v)
	}

	var zero T
	return zero, false
}

func (s *state[T]) pendingFor(side Side) int {
	if s.pendingSide != side {
		return 0
	}
	return len(s.pending)
}

// Branch is one of the two sequences returned by Split.
type Branch[T any] struct {
	state *state[T]
	side  Side
}

// Next returns the next element of the branch.
func (b *Branch[T]) Next() (T, bool) {
	return b.state.next(b.side)
}

// All returns the remaining elements of the branch as an iter.Seq.
func (b *Branch[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			v, ok := b.Next()
			if !ok || !yield(v) {
				return
			}
		}
	}
}

// Side returns the predicate outcome this branch receives.
func (b *Branch[T]) Side() Side { return b.side }

// Pending returns the number of elements already pulled from the source
// and waiting for this branch.
func (b *Branch[T]) Pending() int {
	return b.state.pendingFor(b.side)
}

func (b *Branch[T]) String() string {
	return fmt.Sprintf("Branch(%s, pending=%d, done=%t)", b.side, b.Pending(), b.state.done)
}
