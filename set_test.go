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
	"math/rand"
	"testing"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func (s *Set[E]) toBuiltinSet() map[E]struct{} {
	r := make(map[E]struct{})
	s.All(func(e E) bool {
		r[e] = struct{}{}
		return true
	})
	return r
}

func TestSetBasic(t *testing.T) {
	s := NewSet[string](0)
	require.True(t, s.Empty())

	require.True(t, s.TryAdd("a"))
	require.True(t, s.TryAdd("b"))
	require.False(t, s.TryAdd("a"))
	require.EqualValues(t, 2, s.Len())
	require.True(t, s.Contains("a"))
	require.True(t, s.Contains("b"))
	require.False(t, s.Contains("c"))

	require.True(t, s.Remove("a"))
	require.False(t, s.Remove("a"))
	require.False(t, s.Contains("a"))
	require.True(t, s.Contains("b"))
	require.EqualValues(t, 1, s.Len())

	s.Clear()
	require.True(t, s.Empty())
	require.True(t, s.TryAdd("a"))
}

func TestSetRandom(t *testing.T) {
	s := NewSet[int](0)
	e := make(map[int]struct{})
	for i := 0; i < 10000; i++ {
		k := rand.Intn(1000)
		if rand.Float64() < 0.6 {
			_, dup := e[k]
			require.Equal(t, !dup, s.TryAdd(k))
			e[k] = struct{}{}
		} else {
			_, present := e[k]
			require.Equal(t, present, s.Remove(k))
			delete(e, k)
		}
		require.EqualValues(t, len(e), s.Len())
	}
	require.Equal(t, e, s.toBuiltinSet())
}

func TestSetAddDuplicate(t *testing.T) {
	s := NewSet[int](0)
	require.NoError(t, s.Add(1))
	err := s.Add(1)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrDuplicateKey))
	require.EqualValues(t, 1, s.Len())
}

func TestSetFromSlice(t *testing.T) {
	s := FromSlice([]int{3, 1, 4, 1, 5, 9, 2, 6, 5, 3, 5})
	require.EqualValues(t, 7, s.Len())
	for _, e := range []int{1, 2, 3, 4, 5, 6, 9} {
		require.True(t, s.Contains(e))
	}
	require.False(t, s.Contains(7))
}

func TestSetCopyTo(t *testing.T) {
	s := FromSlice([]string{"x", "y", "z"})

	err := s.CopyTo(make([]string, 2))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidArgument))

	dst := make([]string, 3)
	require.NoError(t, s.CopyTo(dst))
	got := make(map[string]struct{})
	for _, e := range dst {
		got[e] = struct{}{}
	}
	require.Equal(t, map[string]struct{}{"x": {}, "y": {}, "z": {}}, got)
}

func TestSetForcedCollisions(t *testing.T) {
	s := NewSet[int](0, WithSetHash[int](func(e *int, seed uintptr) uintptr {
		return 1234
	}))
	for i := 0; i < 20; i++ {
		require.True(t, s.TryAdd(i))
	}
	require.EqualValues(t, 20, s.Len())
	require.True(t, s.Remove(10))
	for i := 0; i < 20; i++ {
		require.Equal(t, i != 10, s.Contains(i))
	}
}

func TestSetCaseInsensitive(t *testing.T) {
	fold := func(s string) string {
		b := []byte(s)
		for i, c := range b {
			if c >= 'A' && c <= 'Z' {
				b[i] = c - 'A' + 'a'
			}
		}
		return string(b)
	}
	base := getRuntimeHasher[string]()
	s := NewSet[string](0,
		WithSetHash[string](func(e *string, seed uintptr) uintptr {
			folded := fold(*e)
			return base(noescape(unsafe.Pointer(&folded)), seed)
		}),
		WithSetEqual[string](func(a, b string) bool {
			return fold(a) == fold(b)
		}),
	)
	require.True(t, s.TryAdd("Go"))
	require.False(t, s.TryAdd("GO"))
	require.True(t, s.Contains("go"))
	require.EqualValues(t, 1, s.Len())
}
