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

// Package dense provides hash containers (Map and Set) built on a chained
// hash table over a dense entry array, the layout popularized by .NET's
// Dictionary and CPython's compact dict.
//
// # Layout
//
// A Map[K,V] is two flat arrays. The slots array is the dense store: every
// live entry occupies one of the first count slots, with no holes and no
// tombstones. Each slot caches the (non-negative) hash of its key and carries
// a next field, an integer index into the same slots array, or -1. The
// buckets array has prime length; buckets[hash%len(buckets)] holds the index
// of the head of a singly linked collision chain threaded through the slots
// via the next fields, or -1 if the bucket is empty.
//
// Using array indices rather than pointers as chain links avoids a per-entry
// allocation and keeps entries contiguous in memory; -1 plays the role of the
// nil pointer. Entries are appended at slots[count] on insert and new entries
// are pushed at the head of their chain, so insertion is O(1) outside of
// growth.
//
// # Growth
//
// The two arrays grow independently. The slots array grows by copy-doubling
// when count reaches its capacity. The buckets array is resized before an
// insert would push the load factor count/len(buckets) to 3/4 or beyond: a
// fresh bucket array of length nextPrime(2*len(buckets)) is allocated and the
// chains are rebuilt by walking the dense store in ascending order. Rebuilding
// touches only the next fields and the bucket heads; keys, values, cached
// hashes, and the positions of entries in the dense store are untouched, so a
// resize never invalidates an entry index. Prime bucket counts keep
// hash%len(buckets) well distributed even for mediocre hash functions.
//
// # Removal
//
// Remove unlinks the target entry from its chain and then fills the vacated
// slot with the current last live entry (swap-to-last compaction), repairing
// the single chain link that referred to the moved entry's old position. The
// dense store therefore stays hole-free, but the position of the moved entry
// changes: iteration order is unspecified after any removal. This is a
// deliberate trade; callers that need stable iteration order after deletions
// need a different container.
//
// # Hashing and equality
//
// By default a Map[K,V] hashes keys with the same hash function as Go's
// builtin map[K]struct{} and compares them with ==. Both can be replaced via
// the WithHash and WithEqual options. When overriding, the usual contract is
// the caller's responsibility:
//
//   - equal(a, b) implies hash(a) == hash(b)
//   - equal(a, a) must hold for every a (beware NaN keys)
//   - if a key contains references, mutating the referenced data in a way
//     that changes its hash or equality results in undefined behavior
//
// A Map is NOT goroutine-safe. Concurrent readers are fine only while no
// writer is active; the container performs no synchronization and does not
// detect concurrent mutation.
package dense

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"unsafe"

	"github.com/cockroachdb/errors"
)

const (
	debug = false

	// Resize the bucket array before an insert once
	// count >= len(buckets)*maxLoadNum/maxLoadDen.
	maxLoadNum = 3
	maxLoadDen = 4

	// nilIdx is the chain terminator and the empty-bucket marker.
	nilIdx = -1

	// minSlotCapacity is the smallest non-zero dense store allocation.
	minSlotCapacity = 4
)

// Slot holds one live entry of the dense store: a key, a value, the cached
// non-negative hash of the key, and the index of the next entry in the same
// collision chain (or -1).
type Slot[K comparable, V any] struct {
	key   K
	value V
	hash  int
	next  int
}

// Pair is a key/value pair, used for bulk construction and copy-out.
type Pair[K comparable, V any] struct {
	Key   K
	Value V
}

// Map is an unordered map from keys to values backed by a chained hash table
// over a dense entry array. The zero value is not usable; construct one with
// New or FromPairs.
//
// A Map is NOT goroutine-safe.
type Map[K comparable, V any] struct {
	// The hash function applied to keys of type K. By default it is
	// extracted from the Go runtime's implementation of map[K]struct{}.
	hash hashFn
	// Optional equality override. When nil, keys are compared with ==.
	equal func(a, b K) bool
	seed  uintptr
	// The allocator for the slots and buckets arrays.
	allocator Allocator[K, V]
	// The dense store. Entries [0,count) are exactly the live entries.
	slots []Slot[K, V]
	// The bucket table. Prime length; each element is the dense store
	// index of a chain head, or -1.
	buckets []int
	count   int
}

// New constructs a Map with capacity for initialCapacity entries. If
// initialCapacity is 0 the map starts with no backing arrays and allocates on
// the first insert.
func New[K comparable, V any](initialCapacity int, options ...Option[K, V]) *Map[K, V] {
	m := &Map[K, V]{
		hash:      getRuntimeHasher[K](),
		seed:      uintptr(rand.Uint64()),
		allocator: defaultAllocator[K, V]{},
	}
	for _, op := range options {
		op.apply(m)
	}

	if initialCapacity > 0 {
		m.buckets = m.allocator.AllocBuckets(nextPrime(initialCapacity))
		for i := range m.buckets {
			m.buckets[i] = nilIdx
		}
		m.slots = m.allocator.AllocSlots(initialCapacity)
	}

	m.checkInvariants()
	return m
}

// FromPairs constructs a Map holding the given pairs. It fails with
// ErrDuplicateKey if two pairs carry equal keys.
func FromPairs[K comparable, V any](pairs []Pair[K, V], options ...Option[K, V]) (*Map[K, V], error) {
	m := New[K, V](len(pairs), options...)
	for i := range pairs {
		if err := m.Add(pairs[i].Key, pairs[i].Value); err != nil {
			m.Close()
			return nil, err
		}
	}
	return m, nil
}

// Close releases the backing arrays to the configured allocator. It is
// unnecessary to close a map using the default allocator. Using a Map after
// Close is invalid, though Close itself is idempotent.
func (m *Map[K, V]) Close() {
	if m.allocator == nil {
		return
	}
	if m.slots != nil {
		m.allocator.FreeSlots(m.slots)
		m.slots = nil
	}
	if m.buckets != nil {
		m.allocator.FreeBuckets(m.buckets)
		m.buckets = nil
	}
	m.count = 0
	m.allocator = nil
}

// maskedHash hashes key and masks the result non-negative so that
// hash%len(buckets) is a valid bucket for any bucket count.
func (m *Map[K, V]) maskedHash(key *K) int {
	return int(m.hash(noescape(unsafe.Pointer(key)), m.seed) & uintptr(math.MaxInt))
}

func (m *Map[K, V]) keyEqual(a, b K) bool {
	if m.equal != nil {
		return m.equal(a, b)
	}
	return a == b
}

// find returns the dense store index of key (whose masked hash is h), or -1.
// Comparison is cheap-first: the cached hash is checked before equal is
// consulted.
func (m *Map[K, V]) find(key K, h int) int {
	if len(m.buckets) == 0 {
		return nilIdx
	}
	for idx := m.buckets[h%len(m.buckets)]; idx >= 0; idx = m.slots[idx].next {
		if s := &m.slots[idx]; s.hash == h && m.keyEqual(key, s.key) {
			return idx
		}
	}
	return nilIdx
}

// ensureSpace readies the map for one more entry: it resizes the bucket table
// if the insert would reach the load factor, and grows the dense store if it
// is full. Called before the new entry's bucket is computed, since resizing
// changes the bucket mapping.
func (m *Map[K, V]) ensureSpace() {
	if len(m.buckets) == 0 {
		m.rebuildBuckets(nextPrime(minSlotCapacity))
	} else if m.count >= len(m.buckets)*maxLoadNum/maxLoadDen {
		m.rebuildBuckets(nextPrime(2 * len(m.buckets)))
	}
	if m.count == len(m.slots) {
		m.growSlots()
	}
}

// rebuildBuckets replaces the bucket table with a fresh one of length
// newBucketCount and rethreads every chain. Only the next fields and the
// bucket heads are written; keys, values, cached hashes, and entry positions
// are untouched, so entry indices remain valid across a resize.
func (m *Map[K, V]) rebuildBuckets(newBucketCount int) {
	if debug {
		fmt.Printf("rebuildBuckets: %d -> %d (count=%d)\n", len(m.buckets), newBucketCount, m.count)
	}

	old := m.buckets
	m.buckets = m.allocator.AllocBuckets(newBucketCount)
	for i := range m.buckets {
		m.buckets[i] = nilIdx
	}
	for i := 0; i < m.count; i++ {
		b := m.slots[i].hash % newBucketCount
		m.slots[i].next = m.buckets[b]
		m.buckets[b] = i
	}
	if old != nil {
		m.allocator.FreeBuckets(old)
	}
}

// growSlots doubles the dense store's backing array, copying the live
// entries. Cached hashes and chain links move with the entries unchanged.
func (m *Map[K, V]) growSlots() {
	newCapacity := 2 * len(m.slots)
	if newCapacity < minSlotCapacity {
		newCapacity = minSlotCapacity
	}

	if debug {
		fmt.Printf("growSlots: %d -> %d\n", len(m.slots), newCapacity)
	}

	fresh := m.allocator.AllocSlots(newCapacity)
	copy(fresh, m.slots[:m.count])
	if m.slots != nil {
		m.allocator.FreeSlots(m.slots)
	}
	m.slots = fresh
}

// uncheckedAdd appends an entry known not to be in the table and pushes it at
// the head of its chain. Returns the entry's dense store index.
func (m *Map[K, V]) uncheckedAdd(key K, value V, h int) int {
	m.ensureSpace()
	b := h % len(m.buckets)
	i := m.count
	s := &m.slots[i]
	s.key = key
	s.value = value
	s.hash = h
	s.next = m.buckets[b]
	m.buckets[b] = i
	m.count++

	if debug {
		fmt.Printf("add(%v): index=%d bucket=%d count=%d\n", key, i, b, m.count)
	}
	return i
}

// Put inserts an entry into the map, overwriting the existing value if an
// entry with an equal key is already present.
func (m *Map[K, V]) Put(key K, value V) {
	h := m.maskedHash(&key)
	if idx := m.find(key, h); idx >= 0 {
		m.slots[idx].value = value
		return
	}
	m.uncheckedAdd(key, value, h)
	m.checkInvariants()
}

// TryAdd inserts an entry if no entry with an equal key is present and
// reports whether it did. When it returns false the map is unchanged.
func (m *Map[K, V]) TryAdd(key K, value V) bool {
	h := m.maskedHash(&key)
	if m.find(key, h) >= 0 {
		return false
	}
	m.uncheckedAdd(key, value, h)
	m.checkInvariants()
	return true
}

// Add inserts an entry whose key must be absent. It fails with
// ErrDuplicateKey if an entry with an equal key is present, leaving the map
// unchanged.
func (m *Map[K, V]) Add(key K, value V) error {
	if !m.TryAdd(key, value) {
		return errors.Wrapf(ErrDuplicateKey, "key %v", key)
	}
	return nil
}

// Get retrieves the value for key, returning ok=false if key is not present.
func (m *Map[K, V]) Get(key K) (value V, ok bool) {
	idx := m.find(key, m.maskedHash(&key))
	if idx < 0 {
		return value, false
	}
	return m.slots[idx].value, true
}

// Lookup retrieves the value for key, failing with ErrKeyNotFound if key is
// not present. Prefer Get when absence is an expected outcome.
func (m *Map[K, V]) Lookup(key K) (V, error) {
	idx := m.find(key, m.maskedHash(&key))
	if idx < 0 {
		var zero V
		return zero, errors.Wrapf(ErrKeyNotFound, "key %v", key)
	}
	return m.slots[idx].value, nil
}

// Contains reports whether an entry with an equal key is present.
func (m *Map[K, V]) Contains(key K) bool {
	return m.find(key, m.maskedHash(&key)) >= 0
}

// GetOrInsert returns a pointer to the value for key, inserting a zero value
// first if key is absent, and reports whether the key already existed. It
// performs a single hash lookup, making read-modify-write patterns cheap:
//
//	v, _ := m.GetOrInsert(key)
//	*v++
//
// The returned pointer aliases the dense store and is invalidated by any
// subsequent mutation of the map (an insert may reallocate the store, a
// removal may move the entry). Do not retain it across mutating calls.
func (m *Map[K, V]) GetOrInsert(key K) (v *V, existed bool) {
	h := m.maskedHash(&key)
	if idx := m.find(key, h); idx >= 0 {
		return &m.slots[idx].value, true
	}
	var zero V
	idx := m.uncheckedAdd(key, zero, h)
	m.checkInvariants()
	return &m.slots[idx].value, false
}

// Remove deletes the entry with an equal key and reports whether an entry
// was deleted. It is a noop returning false for an absent key.
//
// Remove keeps the dense store hole-free by moving the last live entry into
// the vacated slot. Consequently the positional index of one surviving entry
// changes and iteration order is unspecified after any removal.
func (m *Map[K, V]) Remove(key K) bool {
	if m.count == 0 {
		return false
	}

	h := m.maskedHash(&key)
	b := h % len(m.buckets)

	// Walk the chain tracking the previous link so the target can be
	// unlinked.
	prev := nilIdx
	idx := m.buckets[b]
	for idx >= 0 {
		s := &m.slots[idx]
		if s.hash == h && m.keyEqual(key, s.key) {
			break
		}
		prev, idx = idx, s.next
	}
	if idx < 0 {
		return false
	}

	// Unlink the target from its chain.
	if prev < 0 {
		m.buckets[b] = m.slots[idx].next
	} else {
		m.slots[prev].next = m.slots[idx].next
	}

	// Swap-to-last compaction: fill the vacated slot with the last live
	// entry, then repair the single link that referred to the moved entry's
	// old position. The moved entry's bucket is derived from its cached
	// hash; its hash did not change, only its position. This is correct
	// even when the moved entry shares the removed entry's bucket, because
	// the unlink above already completed.
	last := m.count - 1
	if idx != last {
		m.slots[idx] = m.slots[last]
		rb := m.slots[idx].hash % len(m.buckets)
		if m.buckets[rb] == last {
			m.buckets[rb] = idx
		} else {
			k := m.buckets[rb]
			for m.slots[k].next != last {
				k = m.slots[k].next
			}
			m.slots[k].next = idx
		}
	}

	// Zero the vacated slot so the dense store drops its references for
	// the garbage collector.
	m.slots[last] = Slot[K, V]{}
	m.count--

	if debug {
		fmt.Printf("remove(%v): index=%d bucket=%d count=%d\n", key, idx, b, m.count)
	}

	m.checkInvariants()
	return true
}

// Clear removes all entries. The bucket table keeps its size and the dense
// store keeps its capacity, so a cleared map can be refilled without
// reallocating.
func (m *Map[K, V]) Clear() {
	for i := range m.buckets {
		m.buckets[i] = nilIdx
	}
	live := m.slots[:m.count]
	for i := range live {
		live[i] = Slot[K, V]{}
	}
	m.count = 0
	m.checkInvariants()
}

// All calls yield for each entry in the map, in dense store order, stopping
// early if yield returns false. Use it with range:
//
//	for k, v := range m.All {
//	  fmt.Printf("%v: %v\n", k, v)
//	}
//
// The order is the order of insertion only until the first removal;
// afterwards it is unspecified. Mutating the map during iteration is
// undefined behavior: growth during iteration is invisible to an in-progress
// All (the dense store is snapshotted), but a removal may cause entries to be
// skipped or visited twice.
func (m *Map[K, V]) All(yield func(key K, value V) bool) {
	slots, count := m.slots, m.count
	for i := 0; i < count; i++ {
		s := &slots[i]
		if !yield(s.key, s.value) {
			return
		}
	}
}

// CopyTo copies all entries into dst in iteration order. It fails with
// ErrInvalidArgument if dst cannot hold Len() pairs.
func (m *Map[K, V]) CopyTo(dst []Pair[K, V]) error {
	if len(dst) < m.count {
		return errors.Wrapf(ErrInvalidArgument, "destination holds %d pairs, need %d", len(dst), m.count)
	}
	for i := 0; i < m.count; i++ {
		s := &m.slots[i]
		dst[i] = Pair[K, V]{Key: s.key, Value: s.value}
	}
	return nil
}

// Len returns the number of entries in the map.
func (m *Map[K, V]) Len() int {
	return m.count
}

// Empty reports whether the map holds no entries.
func (m *Map[K, V]) Empty() bool {
	return m.count == 0
}

// bucketCount returns the current size of the bucket table.
func (m *Map[K, V]) bucketCount() int {
	return len(m.buckets)
}

func (m *Map[K, V]) checkInvariants() {
	if invariantsEnabled {
		if len(m.buckets) == 0 {
			if m.count != 0 {
				panic(fmt.Sprintf("invariant failed: %d entries but no bucket table", m.count))
			}
			return
		}
		if m.count > len(m.slots) {
			panic(fmt.Sprintf("invariant failed: count=%d exceeds store capacity %d\n%s",
				m.count, len(m.slots), m.debugString()))
		}

		// Every live index must appear in exactly one chain, in the bucket
		// matching its cached hash.
		seen := make([]bool, m.count)
		for b, idx := range m.buckets {
			for ; idx >= 0; idx = m.slots[idx].next {
				if idx >= m.count {
					panic(fmt.Sprintf("invariant failed: bucket %d links dead index %d\n%s",
						b, idx, m.debugString()))
				}
				if seen[idx] {
					panic(fmt.Sprintf("invariant failed: index %d linked twice\n%s",
						idx, m.debugString()))
				}
				seen[idx] = true
				if h := m.slots[idx].hash; h < 0 || h%len(m.buckets) != b {
					panic(fmt.Sprintf("invariant failed: slot(%d) hash=%d in bucket %d, expected %d\n%s",
						idx, h, b, h%len(m.buckets), m.debugString()))
				}
			}
		}
		for i := 0; i < m.count; i++ {
			if !seen[i] {
				panic(fmt.Sprintf("invariant failed: slot(%d) not reachable from any bucket\n%s",
					i, m.debugString()))
			}
		}

		// Every live key must be retrievable through the public path.
		for i := 0; i < m.count; i++ {
			if !m.Contains(m.slots[i].key) {
				panic(fmt.Sprintf("invariant failed: slot(%d): %v not found [hash=%d]\n%s",
					i, m.slots[i].key, m.slots[i].hash, m.debugString()))
			}
		}
	}
}

func (m *Map[K, V]) debugString() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "count=%d  store-capacity=%d  buckets=%d\n", m.count, len(m.slots), len(m.buckets))
	for b, idx := range m.buckets {
		if idx < 0 {
			continue
		}
		fmt.Fprintf(&buf, "  bucket %4d:", b)
		for ; idx >= 0; idx = m.slots[idx].next {
			if idx >= len(m.slots) {
				fmt.Fprintf(&buf, " -> %d (out of range)", idx)
				break
			}
			fmt.Fprintf(&buf, " -> %d (%v, hash=%d)", idx, m.slots[idx].key, m.slots[idx].hash)
		}
		fmt.Fprintf(&buf, "\n")
	}
	return buf.String()
}
