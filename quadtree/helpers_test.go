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

package quadtree

import (
	"math"
	mathrand "math/rand"
	"testing"
)

// constSource returns the same uniform on every draw. With f = 0.5 the Laplace
// sampler returns its location exactly.
type constSource struct {
	f float64
}

func (s constSource) Float64() float64 { return s.f }
func (s constSource) Intn(n int) int  { return 0 }

// fixedNoise returns value on every draw and records its arguments.
type fixedNoise struct {
	value     float64
	locations []float64
	scales    []float64
}

func (f *fixedNoise) Draw(location, scale float64) float64 {
	f.locations = append(f.locations, location)
	f.scales = append(f.scales, scale)
	return f.value
}

// fivePoints all lie in [0, 8) × [0, 8), the NW quadrant of [0, 16)².
var fivePoints = []Coord{{1, 1}, {2, 3}, {4, 4}, {7.5, 0.5}, {6, 7}}

var square16 = Rect{X: 0, Y: 0, W: 16, H: 16}

func clusteredData(seed int64, n int) []Coord {
	r := mathrand.New(mathrand.NewSource(seed))
	data := make([]Coord, 0, n)
	for i := 0; i < n; i++ {
		if i%3 == 0 {
			// Uniform background.
			data = append(data, Coord{r.Float64() * 100, r.Float64() * 100})
			continue
		}
		// Dense cluster around (20, 70).
		data = append(data, Coord{
			X: math.Min(math.Max(20+r.NormFloat64()*4, 0), 99.9),
			Y: math.Min(math.Max(70+r.NormFloat64()*4, 0), 99.9),
		})
	}
	return data
}

func mustBuild(t *testing.T, opt *Options, data []Coord) *Tree {
	t.Helper()
	tree, err := Build(opt, data)
	if err != nil {
		t.Fatalf("Build(%+v): got err %v", opt, err)
	}
	return tree
}

func nearEqual(a, b, maxError float64) bool {
	return math.Abs(a-b) < maxError
}
