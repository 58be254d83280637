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

import "fmt"

// Rect is an axis-aligned rectangle with origin (X, Y), width W and height H.
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether (x, y) lies in r using half-open bounds:
// r.X ≤ x < r.X+r.W and r.Y ≤ y < r.Y+r.H.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Overlaps reports whether the projections of r and o intersect on both axes.
// Bounds are closed, so rectangles sharing only an edge or a corner overlap.
// Overlaps is symmetric.
func (r Rect) Overlaps(o Rect) bool {
	return r.X <= o.X+o.W && o.X <= r.X+r.W &&
		r.Y <= o.Y+o.H && o.Y <= r.Y+r.H
}

// Mid returns the center of r.
func (r Rect) Mid() (x, y float64) {
	return r.X + r.W/2, r.Y + r.H/2
}

// Quadrants splits r into four equal quadrants, indexed by Quadrant.
func (r Rect) Quadrants() [4]Rect {
	hw, hh := r.W/2, r.H/2
	var q [4]Rect
	q[NW] = Rect{r.X, r.Y, hw, hh}
	q[NE] = Rect{r.X + hw, r.Y, hw, hh}
	q[SW] = Rect{r.X, r.Y + hh, hw, hh}
	q[SE] = Rect{r.X + hw, r.Y + hh, hw, hh}
	return q
}

// Area returns W·H.
func (r Rect) Area() float64 {
	return r.W * r.H
}

func (r Rect) String() string {
	return fmt.Sprintf("[%g, %g; %g x %g]", r.X, r.Y, r.W, r.H)
}

// Quadrant names one of the four children of a split node.
type Quadrant int

// Quadrants in child-slot order. NW holds the low x and low y corner.
const (
	NW Quadrant = iota
	NE
	SW
	SE
)

var quadrantNames = [...]string{"NW", "NE", "SW", "SE"}

func (q Quadrant) String() string {
	if q < NW || q > SE {
		return fmt.Sprintf("Quadrant(%d)", int(q))
	}
	return quadrantNames[q]
}

// quadrantOf returns the quadrant of r that (x, y) routes to, by comparing
// against the midpoint of r.
func quadrantOf(r Rect, x, y float64) Quadrant {
	mx, my := r.Mid()
	if x < mx {
		if y < my {
			return NW
		}
		return SW
	}
	if y < my {
		return NE
	}
	return SE
}
