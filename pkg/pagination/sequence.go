package pagination

import (
	"context"
	"errors"
	"iter"
)

// Sequence is a lazy, single-consumer stream of elements.
//
// Elements are produced on demand by Next, All or Collect. Once production
// fails or the stream ends, the sequence is terminal and every further call
// returns the same error (Done at the end) without touching the source.
type Sequence[T any] struct {
	produce func(ctx context.Context) (T, error)
	err     error
	yielded int
}

// newSequence wraps a producer. The producer returns Done at the end.
func newSequence[T any](produce func(ctx context.Context) (T, error)) *Sequence[T] {
	return &Sequence[T]{produce: produce}
}

// Next returns the next element, or Done when the sequence is exhausted.
// Any other error is terminal.
func (s *Sequence[T]) Next(ctx context.Context) (T, error) {
	var zero T
	if s.err != nil {
		return zero, s.err
	}
	if err := ctx.Err(); err != nil {
		s.err = err
		return zero, err
	}

	v, err := s.produce(ctx)
	if err != nil {
		s.err = err
		return zero, err
	}
	s.yielded++
	return v, nil
}

// All returns a range-over-func iterator. Breaking out of the loop stops
// production; no request is issued for elements that were not asked for.
// A failure is yielded once, together with the zero value, and ends the loop.
func (s *Sequence[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			v, err := s.Next(ctx)
			if errors.Is(err, Done) {
				return
			}
			if err != nil {
				yield(v, err)
				return
			}
			if !yield(v, nil) {
				return
			}
		}
	}
}

// Collect drains the sequence into a slice. On failure the elements
// produced before the error are returned alongside it.
func (s *Sequence[T]) Collect(ctx context.Context) ([]T, error) {
	var out []T
	for v, err := range s.All(ctx) {
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
	return out, nil
}

// First returns the first remaining element, or Done if there is none.
func (s *Sequence[T]) First(ctx context.Context) (T, error) {
	return s.Next(ctx)
}

// Yielded returns how many elements this sequence has handed out.
func (s *Sequence[T]) Yielded() int {
	return s.yielded
}

// Err returns the terminal error, if any. It is nil while the sequence
// can still produce and Done after normal exhaustion.
func (s *Sequence[T]) Err() error {
	return s.err
}

// Map returns a view of s that applies f to every element as it flows
// through. The view shares the source cursor: it fetches nothing on its own
// and never evaluates f ahead of the consumer. An error from f terminates
// the view.
func Map[T, U any](s *Sequence[T], f func(T) (U, error)) *Sequence[U] {
	return newSequence(func(ctx context.Context) (U, error) {
		var zero U
		v, err := s.Next(ctx)
		if err != nil {
			return zero, err
		}
		return f(v)
	})
}

// Concat chains sequences end to end, draining each before starting the next.
func Concat[T any](seqs ...*Sequence[T]) *Sequence[T] {
	i := 0
	return newSequence(func(ctx context.Context) (T, error) {
		var zero T
		for i < len(seqs) {
			v, err := seqs[i].Next(ctx)
			if errors.Is(err, Done) {
				i++
				continue
			}
			return v, err
		}
		return zero, Done
	})
}

// FromSlice returns a sequence over a fixed slice.
func FromSlice[T any](items []T) *Sequence[T] {
	i := 0
	return newSequence(func(context.Context) (T, error) {
		var zero T
		if i >= len(items) {
			return zero, Done
		}
		v := items[i]
		i++
		return v, nil
	})
}

// Empty returns a sequence with no elements.
func Empty[T any]() *Sequence[T] {
	return FromSlice[T](nil)
}
