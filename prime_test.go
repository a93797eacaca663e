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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrimeTable(t *testing.T) {
	for i, p := range bucketPrimes {
		require.True(t, isPrime(p), "table entry %d is not prime", p)
		if i > 0 {
			require.Greater(t, p, bucketPrimes[i-1])
		}
	}
}

func TestNextPrime(t *testing.T) {
	prev := 0
	for n := 0; n <= 5000; n++ {
		p := nextPrime(n)
		require.GreaterOrEqual(t, p, n)
		require.True(t, isPrime(p), "nextPrime(%d) = %d is not prime", n, p)
		// Deterministic.
		require.Equal(t, p, nextPrime(n))
		// Monotonic in n.
		require.GreaterOrEqual(t, p, prev)
		prev = p
	}
}

func TestNextPrimeBeyondTable(t *testing.T) {
	last := bucketPrimes[len(bucketPrimes)-1]
	for _, n := range []int{last + 1, 2 * last, 10_000_019} {
		p := nextPrime(n)
		require.GreaterOrEqual(t, p, n)
		require.True(t, isPrime(p))
	}
}

func TestIsPrime(t *testing.T) {
	primes := map[int]bool{2: true, 3: true, 5: true, 7: true, 11: true, 13: true}
	for n := -3; n <= 13; n++ {
		require.Equal(t, primes[n], isPrime(n), "isPrime(%d)", n)
	}
	require.False(t, isPrime(1_000_001)) // 101 * 9901
	require.True(t, isPrime(1_000_003))
}
