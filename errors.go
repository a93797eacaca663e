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

// All failures are detected synchronously and reported before any state is
// mutated, so a failed operation leaves the container unchanged. Callers
// should test with errors.Is; the returned errors wrap these sentinels with
// the offending key or sizes.
var (
	// ErrDuplicateKey is returned by Add (and FromPairs) when an entry with
	// an equal key is already present. TryAdd reports the same condition as
	// a false return instead.
	ErrDuplicateKey = errors.New("dense: duplicate key")

	// ErrKeyNotFound is returned by Lookup for an absent key. Get reports
	// the same condition as ok=false instead.
	ErrKeyNotFound = errors.New("dense: key not found")

	// ErrInvalidArgument is returned by CopyTo when the destination cannot
	// hold the container's entries.
	ErrInvalidArgument = errors.New("dense: invalid argument")
)
