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

import "unsafe"

// hashFn is the signature of the hash functions the Go runtime generates for
// map key types: (pointer to key, seed) -> hash.
type hashFn func(unsafe.Pointer, uintptr) uintptr

// getRuntimeHasher extracts the hash function that the builtin map[K]struct{}
// would use for keys of type K, by reaching into the runtime's representation
// of the map type. This might break in a future version of Go, but is likely
// fixable unless the runtime does something drastic.
func getRuntimeHasher[K comparable]() hashFn {
	a := any((map[K]struct{})(nil))
	return (*rtEface)(unsafe.Pointer(&a)).typ.Hasher
}

// rtEface mirrors runtime/runtime2.go:eface.
type rtEface struct {
	typ  *rtMapType
	data unsafe.Pointer
}

// rtMapType mirrors internal/abi.MapType.
type rtMapType struct {
	rtType
	Key    *rtType
	Elem   *rtType
	Bucket *rtType // internal type representing a hash bucket
	// Hasher is the function for hashing keys (ptr to key, seed) -> hash.
	Hasher     func(unsafe.Pointer, uintptr) uintptr
	KeySize    uint8  // size of key slot
	ValueSize  uint8  // size of elem slot
	BucketSize uint16 // size of bucket
	Flags      uint32
}

// rtType mirrors internal/abi.Type.
type rtType struct {
	Size_       uintptr
	PtrBytes    uintptr
	Hash        uint32
	TFlag       uint8
	Align_      uint8
	FieldAlign_ uint8
	Kind_       uint8
	Equal       func(unsafe.Pointer, unsafe.Pointer) bool
	GCData      *byte
	Str         int32
	PtrToThis   int32
}

// noescape hides a pointer from escape analysis. noescape is the identity
// function but escape analysis doesn't think the output depends on the input.
// noescape is inlined and currently compiles down to zero instructions.
// USE CAREFULLY!
//
//go:nosplit
//go:nocheckptr
func noescape(p unsafe.Pointer) unsafe.Pointer {
	x := uintptr(p)
	return unsafe.Pointer(x ^ 0)
}
