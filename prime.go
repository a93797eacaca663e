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

// Bucket counts are kept prime so that hash%len(buckets) spreads entries even
// when the hash function clusters in low bits. The table below covers the
// common doubling sequence; each entry is the smallest prime at least ~20%
// larger than its predecessor, so repeated nextPrime(2*n) growth stays close
// to doubling without long trial-division scans.
var bucketPrimes = [...]int{
	3, 7, 11, 17, 23, 29, 37, 47, 59, 71, 89, 107, 131, 163, 197, 239, 293,
	353, 431, 521, 631, 761, 919, 1103, 1327, 1597, 1931, 2333, 2801, 3371,
	4049, 4861, 5839, 7013, 8419, 10103, 12143, 14591, 17519, 21023, 25229,
	30293, 36353, 43627, 52361, 62851, 75431, 90523, 108631, 130363, 156437,
	187751, 225307, 270371, 324449, 389357, 467237, 560689, 672827, 807403,
	968897, 1162687, 1395263, 1674319, 2009191, 2411033, 2893249, 3471899,
	4166287, 4999559, 5999471, 7199369,
}

// nextPrime returns the smallest entry of the prime table that is >= n,
// falling back to a trial-division search beyond the table. It is
// deterministic and monotonic in n.
func nextPrime(n int) int {
	for _, p := range bucketPrimes {
		if p >= n {
			return p
		}
	}
	// Beyond the table. Odd candidates only; n|1 rounds an even n up.
	for candidate := n | 1; ; candidate += 2 {
		if isPrime(candidate) {
			return candidate
		}
	}
}

func isPrime(n int) bool {
	if n < 2 {
		return false
	}
	if n%2 == 0 {
		return n == 2
	}
	for d := 3; d*d <= n; d += 2 {
		if n%d == 0 {
			return false
		}
	}
	return true
}
