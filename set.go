// Copyright 2025 The Dense Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dense

import "github.com/cockroachdb/errors"

// Set is an unordered collection of unique elements backed by the same
// chained hash table engine as Map; an element is a map entry with a
// zero-size value, so set slots carry only the element, its cached hash, and
// its chain link. All of Map's contracts carry over: amortized O(1)
// operations, swap-to-last compaction on removal, iteration order unspecified
// after any removal.
//
// A Set is NOT goroutine-safe.
type Set[E comparable] struct {
	m *Map[E, struct{}]
}

// NewSet constructs a Set with capacity for initialCapacity elements. Options
// are those of the underlying Map[E, struct{}]; see also WithSetHash and
// WithSetEqual.
func NewSet[E comparable](initialCapacity int, options ...Option[E, struct{}]) *Set[E] {
	return &Set[E]{m: New[E, struct{}](initialCapacity, options...)}
}

// FromSlice constructs a Set holding the distinct elements of elems.
// Duplicates in the input are deduplicated, not rejected.
func FromSlice[E comparable](elems []E, options ...Option[E, struct{}]) *Set[E] {
	s := NewSet[E](len(elems), options...)
	for _, e := range elems {
		s.TryAdd(e)
	}
	return s
}

// WithSetHash is WithHash for the set shape, sparing callers the struct{}
// type argument.
func WithSetHash[E comparable](hash func(e *E, seed uintptr) uintptr) Option[E, struct{}] {
	return WithHash[E, struct{}](hash)
}

// WithSetEqual is WithEqual for the set shape.
func WithSetEqual[E comparable](equal func(a, b E) bool) Option[E, struct{}] {
	return WithEqual[E, struct{}](equal)
}

// TryAdd inserts e if absent and reports whether it did. When it returns
// false the set is unchanged.
func (s *Set[E]) TryAdd(e E) bool {
	return s.m.TryAdd(e, struct{}{})
}

// Add inserts e, which must be absent. It fails with ErrDuplicateKey if an
// equal element is present, leaving the set unchanged.
func (s *Set[E]) Add(e E) error {
	if !s.TryAdd(e) {
		return errors.Wrapf(ErrDuplicateKey, "element %v", e)
	}
	return nil
}

// Contains reports whether an equal element is present.
func (s *Set[E]) Contains(e E) bool {
	return s.m.Contains(e)
}

// Remove deletes the element equal to e and reports whether an element was
// deleted.
func (s *Set[E]) Remove(e E) bool {
	return s.m.Remove(e)
}

// Clear removes all elements, retaining the backing capacity.
func (s *Set[E]) Clear() {
	s.m.Clear()
}

// All calls yield for each element, stopping early if yield returns false.
// The iteration contract matches Map.All.
func (s *Set[E]) All(yield func(e E) bool) {
	s.m.All(func(e E, _ struct{}) bool {
		return yield(e)
	})
}

// CopyTo copies all elements into dst in iteration order. It fails with
// ErrInvalidArgument if dst cannot hold Len() elements.
func (s *Set[E]) CopyTo(dst []E) error {
	if len(dst) < s.m.count {
		return errors.Wrapf(ErrInvalidArgument, "destination holds %d elements, need %d", len(dst), s.m.count)
	}
	for i := 0; i < s.m.count; i++ {
		dst[i] = s.m.slots[i].key
	}
	return nil
}

// Len returns the number of elements in the set.
func (s *Set[E]) Len() int {
	return s.m.Len()
}

// Empty reports whether the set holds no elements.
func (s *Set[E]) Empty() bool {
	return s.m.Empty()
}

// Close releases the backing arrays to the underlying map's allocator.
func (s *Set[E]) Close() {
	s.m.Close()
}
