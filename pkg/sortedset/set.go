// Package sortedset provides an append-then-commit sorted set backed by a
// slice.
//
// Elements are inserted in any order and may repeat. Commit sorts and
// deduplicates the backing slice; only a committed set may be queried.
package sortedset

import (
	"cmp"
	"iter"
	"slices"
)

// Set is a sorted, duplicate-free sequence once committed.
type Set[T any] struct {
	items   []T
	compare func(a, b T) int
}

// New returns an empty set ordered by the natural ordering of T.
func New[T cmp.Ordered](items ...T) *Set[T] {
	s := &Set[T]{compare: cmp.Compare[T]}
	s.Insert(items...)

	return s
}

// NewFunc returns an empty set ordered by compare. Elements comparing equal
// are treated as duplicates.
func NewFunc[T any](compare func(a, b T) int) *Set[T] {
	return &Set[T]{compare: compare}
}

// Insert appends elements without sorting.
func (s *Set[T]) Insert(items ...T) {
	s.items = append(s.items, items...)
}

// Clear drops all elements.
func (s *Set[T]) Clear() {
	s.items = s.items[:0]
}

// Commit sorts and deduplicates the set.
func (s *Set[T]) Commit() {
	slices.SortFunc(s.items, s.compare)
	s.items = slices.CompactFunc(s.items, func(a, b T) bool {
		return s.compare(a, b) == 0
	})
}

// HasElement reports whether elem is in the set. The set must be committed.
func (s *Set[T]) HasElement(elem T) bool {
	_, found := slices.BinarySearchFunc(s.items, elem, s.compare)
	return found
}

// MakeIntersection returns the elements present in both s and other. Both
// operands must be committed.
func (s *Set[T]) MakeIntersection(other *Set[T]) *Set[T] {
	out := &Set[T]{compare: s.compare}

	i, j := 0, 0
	for i < len(s.items) && j < len(other.items) {
		switch c := s.compare(s.items[i], other.items[j]); {
		case c < 0:
			i++
		case c > 0:
			j++
		default:
			out.items = append(out.items, s.items[i])
			i++
			j++
		}
	}

	return out
}

// MakeUnion returns the elements present in either s or other. Both
// operands must be committed.
func (s *Set[T]) MakeUnion(other *Set[T]) *Set[T] {
	out := &Set[T]{
		items:   make([]T, 0, len(s.items)+len(other.items)),
		compare: s.compare,
	}

	i, j := 0, 0
	for i < len(s.items) && j < len(other.items) {
		switch c := s.compare(s.items[i], other.items[j]); {
		case c < 0:
			out.items = append(out.items, s.items[i])
			i++
		case c > 0:
			out.items = append(out.items, other.items[j])
			j++
		default:
			out.items = append(out.items, s.items[i])
			i++
			j++
		}
	}

	out.items = append(out.items, s.items[i:]...)
	out.items = append(out.items, other.items[j:]...)

	return out
}

// Elements returns a copy of the backing slice.
func (s *Set[T]) Elements() []T {
	return slices.Clone(s.items)
}

// All iterates over the elements in order.
func (s *Set[T]) All() iter.Seq[T] {
	return slices.Values(s.items)
}

// Len returns the number of stored elements.
func (s *Set[T]) Len() int {
	return len(s.items)
}

// Empty reports whether the set holds no elements.
func (s *Set[T]) Empty() bool {
	return len(s.items) == 0
}

// Equal reports whether both sets hold the same elements in the same order.
func (s *Set[T]) Equal(other *Set[T]) bool {
	return slices.EqualFunc(s.items, other.items, func(a, b T) bool {
		return s.compare(a, b) == 0
	})
}

// Clone returns an independent copy of the set.
func (s *Set[T]) Clone() *Set[T] {
	return &Set[T]{items: slices.Clone(s.items), compare: s.compare}
}

// IntersectWithEmptyHandling combines two optional sets, where nil means the
// operand places no constraint on the entities:
//
//   - other is nil: curr is returned unchanged.
//   - curr is nil: a copy of other is returned.
//   - otherwise: the intersection of curr and other.
func IntersectWithEmptyHandling[T any](other, curr *Set[T]) *Set[T] {
	switch {
	case other == nil:
		return curr
	case curr == nil:
		return other.Clone()
	default:
		return curr.MakeIntersection(other)
	}
}
