//
// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

// Package rand provides the sources of randomness consumed by the noise
// mechanism and the query workload generator.
//
// Two kinds of Source exist: New returns a seeded pseudo-random source whose
// draws are reproducible, which is what tests and experiments use; Secure
// returns a source backed by crypto/rand for runs where reproducibility is
// not wanted.
package rand

import (
	"bufio"
	cryptorand "crypto/rand"
	"encoding/binary"
	"io"
	"math"
	mathrand "math/rand"
	"sync"

	log "github.com/golang/glog"
)

// Source is a stream of uniform random numbers.
type Source interface {
	// Float64 returns a uniformly random float64 in [0, 1).
	Float64() float64
	// Intn returns a uniformly random int in [0, n). n must be positive.
	Intn(n int) int
}

// New returns a Source seeded with seed. Two sources created with the same
// seed produce the same sequence of draws.
//
// Not thread-safe.
func New(seed int64) Source {
	return mathrand.New(mathrand.NewSource(seed))
}

// Secure returns a Source backed by crypto/rand. It is safe for concurrent
// use.
func Secure() Source {
	return secureSource{}
}

var (
	randBufLock sync.Mutex
	randBuf     io.Reader = bufio.NewReaderSize(cryptorand.Reader, 65536)
)

func readRandBuf(b []byte) (int, error) {
	randBufLock.Lock()
	defer randBufLock.Unlock()
	return io.ReadFull(randBuf, b)
}

// U64 returns a uniformly random uint64.
func U64() uint64 {
	var r [8]uint8
	if _, err := readRandBuf(r[:]); err != nil {
		log.Fatalf("out of randomness, should never happen: %v", err)
	}
	return binary.LittleEndian.Uint64(r[:])
}

// I63n returns an integer from the set {0,...,n-1} uniformly at random.
// The value of n must be positive.
func I63n(n int64) int64 {
	if n <= 0 {
		log.Fatalf("I63n: n is %d, must be positive", n)
	}
	largestMultipleOfN := (math.MaxInt64 / n) * n
	var positiveRandomInteger int64
	for {
		// Draw random 64 bit sequence and set sign bit to 0.
		positiveRandomInteger = int64(U64()) & 0x7fffffffffffffff
		if positiveRandomInteger < largestMultipleOfN {
			break
		}
	}
	return positiveRandomInteger % n
}

type secureSource struct{}

// Float64 keeps the top 53 bits of a random uint64 so every returned value is
// exactly representable.
func (secureSource) Float64() float64 {
	return float64(U64()>>11) / (1 << 53)
}

func (secureSource) Intn(n int) int {
	return int(I63n(int64(n)))
}
