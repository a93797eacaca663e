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

import (
	"unsafe"

	"github.com/cockroachdb/errors"
)

// Option provides an interface to do work on a Map while it is being created.
type Option[K comparable, V any] interface {
	apply(m *Map[K, V])
}

type hashOption[K comparable, V any] struct {
	hash func(key *K, seed uintptr) uintptr
}

func (op hashOption[K, V]) apply(m *Map[K, V]) {
	m.hash = *(*hashFn)(noescape(unsafe.Pointer(&op.hash)))
}

// WithHash is an option to specify the hash function to use for a Map[K,V],
// replacing the hash function of Go's builtin map[K]V. The supplied function
// must be consistent with the map's key equality for the lifetime of the map:
// equal keys must produce equal hashes. Swapping the hash function on a live
// map is unsupported.
func WithHash[K comparable, V any](hash func(key *K, seed uintptr) uintptr) Option[K, V] {
	if hash == nil {
		panic(errors.AssertionFailedf("dense: nil hash function"))
	}
	return hashOption[K, V]{hash}
}

type equalOption[K comparable, V any] struct {
	equal func(a, b K) bool
}

func (op equalOption[K, V]) apply(m *Map[K, V]) {
	m.equal = op.equal
}

// WithEqual is an option to replace == as the key equality for a Map[K,V].
// It is almost always paired with WithHash, since the default hash is only
// consistent with ==.
func WithEqual[K comparable, V any](equal func(a, b K) bool) Option[K, V] {
	if equal == nil {
		panic(errors.AssertionFailedf("dense: nil equality function"))
	}
	return equalOption[K, V]{equal}
}

// Allocator specifies an interface for allocating and releasing the memory
// used by a Map. The default allocator utilizes Go's builtin make() and
// allows the GC to reclaim memory.
//
// If the allocator is manually managing memory and requires that slots and
// buckets be freed then Map.Close must be called in order to ensure FreeSlots
// and FreeBuckets are called.
type Allocator[K comparable, V any] interface {
	// AllocSlots should return a slice equivalent to make([]Slot[K,V], n).
	AllocSlots(n int) []Slot[K, V]

	// AllocBuckets should return a slice equivalent to make([]int, n). The
	// map overwrites every element before use, so the contents need not be
	// zeroed.
	AllocBuckets(n int) []int

	// FreeSlots can optionally release the memory associated with the
	// supplied slice that is guaranteed to have been allocated by
	// AllocSlots.
	FreeSlots(v []Slot[K, V])

	// FreeBuckets can optionally release the memory associated with the
	// supplied slice that is guaranteed to have been allocated by
	// AllocBuckets.
	FreeBuckets(v []int)
}

type defaultAllocator[K comparable, V any] struct{}

func (defaultAllocator[K, V]) AllocSlots(n int) []Slot[K, V] {
	return make([]Slot[K, V], n)
}

func (defaultAllocator[K, V]) AllocBuckets(n int) []int {
	return make([]int, n)
}

func (defaultAllocator[K, V]) FreeSlots(v []Slot[K, V]) {
}

func (defaultAllocator[K, V]) FreeBuckets(v []int) {
}

type allocatorOption[K comparable, V any] struct {
	allocator Allocator[K, V]
}

func (op allocatorOption[K, V]) apply(m *Map[K, V]) {
	m.allocator = op.allocator
}

// WithAllocator is an option for specifying the Allocator to use for a
// Map[K,V].
func WithAllocator[K comparable, V any](allocator Allocator[K, V]) Option[K, V] {
	if allocator == nil {
		panic(errors.AssertionFailedf("dense: nil allocator"))
	}
	return allocatorOption[K, V]{allocator}
}
