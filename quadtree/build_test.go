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
	"testing"

	"github.com/JJJJane/QTSC/rand"
	"github.com/google/go-cmp/cmp"
)

func TestBuildNeverSplitsWithInfiniteTheta(t *testing.T) {
	tree := mustBuild(t, &Options{
		Bounds:      square16,
		Epsilon:     1,
		TreeHeight:  3,
		Lambda:      1,
		Theta:       math.Inf(1),
		Sensitivity: 1,
		Source:      rand.New(1),
	}, fivePoints)
	root := tree.Node(tree.Root())
	if root.Type() != Empty {
		t.Fatalf("root type: got %v, want Empty", root.Type())
	}
	if got := root.PointCount(); got != 5 {
		t.Errorf("root PointCount: got %d, want 5", got)
	}
	if got := tree.AnswerRange(Rect{X: 0, Y: 0, W: 8, H: 8}).Count; got != 5 {
		t.Errorf("AnswerRange([0, 0; 8 x 8]).Count: got %f, want 5", got)
	}
}

// With every point in one quadrant, fp/total = (|5-avg| + 3|avg|)/5 ≥ 1 for
// any noisy avg, so θ = 1 can never judge the root uniform.
func TestBuildThetaOneSplitsSingleQuadrantData(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		tree := mustBuild(t, &Options{
			Bounds:     square16,
			Epsilon:    1,
			TreeHeight: 3,
			Lambda:     1,
			Theta:      1,
			Source:     rand.New(seed),
		}, fivePoints)
		if got := tree.Node(tree.Root()).Type(); got != Pointer {
			t.Errorf("seed %d: root type got %v, want Pointer", seed, got)
		}
	}
}

func TestBuildThetaZeroSplitsOnce(t *testing.T) {
	tree := mustBuild(t, &Options{
		Bounds:     square16,
		Epsilon:    1,
		TreeHeight: 1,
		Lambda:     1,
		Theta:      0,
		Source:     rand.New(1),
	}, fivePoints)
	root := tree.Node(tree.Root())
	if root.Type() != Pointer {
		t.Fatalf("root type: got %v, want Pointer", root.Type())
	}
	if root.PointCount() != 0 {
		t.Errorf("Pointer root holds %d points, want 0", root.PointCount())
	}
	var sum int
	for _, c := range root.Children() {
		child := tree.Node(c)
		if child.Type() != Empty {
			t.Errorf("child %d type: got %v, want Empty", c, child.Type())
		}
		if child.Children() != [4]NodeID{NoNode, NoNode, NoNode, NoNode} {
			t.Errorf("child %d was split at height 0", c)
		}
		sum += child.PointCount()
	}
	if sum != 5 {
		t.Errorf("children hold %d points in total, want 5", sum)
	}
	if got := tree.Node(root.Child(NW)).PointCount(); got != 5 {
		t.Errorf("NW child PointCount: got %d, want 5", got)
	}
	if s := tree.Stats(); s.Nodes != 5 || s.Terminals != 4 || s.Depth != 1 {
		t.Errorf("Stats: got %+v, want 5 nodes, 4 terminals, depth 1", s)
	}
}

func TestBuildHeightZeroIsRootOnly(t *testing.T) {
	tree := mustBuild(t, &Options{Bounds: square16, Epsilon: 1, Source: rand.New(1)}, fivePoints)
	if s := tree.Stats(); s.Nodes != 1 || s.Points != 5 {
		t.Errorf("Stats: got %+v, want a single node holding 5 points", s)
	}
}

func TestBuildRespectsTreeHeight(t *testing.T) {
	data := clusteredData(3, 600)
	for _, height := range []int{0, 1, 2, 4, 6} {
		tree := mustBuild(t, &Options{
			Bounds:     Rect{X: 0, Y: 0, W: 100, H: 100},
			Epsilon:    1,
			TreeHeight: height,
			Lambda:     0.8,
			Theta:      0,
			Source:     rand.New(int64(height)),
		}, data)
		// θ = 0 splits every non-empty node until the height runs out.
		if got := tree.Stats().Depth; got != height {
			t.Errorf("height %d: got depth %d, want %d", height, got, height)
		}
	}
}

func TestBuildStructuralInvariants(t *testing.T) {
	const lambda = 0.7
	data := clusteredData(5, 800)
	for _, theta := range []float64{0, 0.3, 0.8, 2} {
		tree := mustBuild(t, &Options{
			Bounds:      Rect{X: 0, Y: 0, W: 100, H: 100},
			Epsilon:     2,
			TreeHeight:  5,
			Lambda:      lambda,
			Theta:       theta,
			Sensitivity: 1,
			Source:      rand.New(9),
		}, data)
		tree.walk(tree.Root(), 0, func(id NodeID, n *Node, depth int) {
			if depth > 5 {
				t.Errorf("theta %f: node %d at depth %d exceeds the tree height 5", theta, id, depth)
			}
			if want := 2 * math.Pow(lambda, float64(depth)); !nearEqual(n.Epsilon(), want, 1e-12) {
				t.Errorf("theta %f: node %d at depth %d has epsilon %f, want %f", theta, id, depth, n.Epsilon(), want)
			}
			switch n.Type() {
			case Pointer:
				if n.PointCount() != 0 {
					t.Errorf("theta %f: Pointer node %d holds %d points", theta, id, n.PointCount())
				}
				var got [4]Rect
				for q, c := range n.Children() {
					if c == NoNode {
						t.Fatalf("theta %f: Pointer node %d is missing child %v", theta, id, Quadrant(q))
					}
					got[q] = tree.Node(c).Region()
					if p := tree.Node(c).Parent(); p != id {
						t.Errorf("theta %f: child %d of %d has parent %d", theta, c, id, p)
					}
				}
				if diff := cmp.Diff(n.Region().Quadrants(), got); diff != "" {
					t.Errorf("theta %f: children of %d do not tile its region (-want +got):\n%s", theta, id, diff)
				}
			case Empty:
				if n.Children() != [4]NodeID{NoNode, NoNode, NoNode, NoNode} {
					t.Errorf("theta %f: terminal node %d has children %v", theta, id, n.Children())
				}
			default:
				t.Errorf("theta %f: node %d has type %v, Build only produces Empty and Pointer", theta, id, n.Type())
			}
		})
	}
}

func TestBuildTerminalsTileRoot(t *testing.T) {
	bounds := Rect{X: 0, Y: 0, W: 100, H: 100}
	data := clusteredData(7, 1000)
	for _, tc := range []struct {
		theta, lambda float64
	}{
		{0, 1},
		{0.2, 0.5},
		{0.5, 0.9},
		{1.5, 2},
		{math.Inf(1), 1},
	} {
		tree := mustBuild(t, &Options{
			Bounds:     bounds,
			Epsilon:    1,
			TreeHeight: 6,
			Lambda:     tc.lambda,
			Theta:      tc.theta,
			Source:     rand.New(13),
		}, data)
		terminals := tree.Terminals()
		var area float64
		var points int
		for i, a := range terminals {
			ra := tree.Node(a).Region()
			area += ra.Area()
			points += tree.Node(a).PointCount()
			for _, b := range terminals[i+1:] {
				rb := tree.Node(b).Region()
				if ra.X < rb.X+rb.W && rb.X < ra.X+ra.W && ra.Y < rb.Y+rb.H && rb.Y < ra.Y+ra.H {
					t.Errorf("%+v: terminals %v and %v have overlapping interiors", tc, ra, rb)
				}
			}
		}
		if !nearEqual(area, bounds.Area(), 1e-6) {
			t.Errorf("%+v: terminal areas sum to %f, want %f", tc, area, bounds.Area())
		}
		if points != len(data) {
			t.Errorf("%+v: terminals hold %d points, want every one of the %d coordinates", tc, points, len(data))
		}
	}
}

func TestBuildDropsOutOfRegionCoordinates(t *testing.T) {
	data := append([]Coord{{-1, 2}, {16, 3}, {3, 16}, {100, 100}}, fivePoints...)
	tree := mustBuild(t, &Options{Bounds: square16, Epsilon: 1, TreeHeight: 2, Source: rand.New(1)}, data)
	if got := tree.Stats().Points; got != 5 {
		t.Errorf("Stats().Points: got %d, want 5", got)
	}
}

func TestBuildIsReproducible(t *testing.T) {
	data := clusteredData(11, 500)
	opt := func() *Options {
		return &Options{
			Bounds:     Rect{X: 0, Y: 0, W: 100, H: 100},
			Epsilon:    1,
			TreeHeight: 5,
			Lambda:     0.9,
			Theta:      0.6,
			Source:     rand.New(21),
		}
	}
	a, b := mustBuild(t, opt(), data), mustBuild(t, opt(), data)
	regions := func(tree *Tree) []Rect {
		var rs []Rect
		for _, id := range tree.Terminals() {
			rs = append(rs, tree.Node(id).Region())
		}
		return rs
	}
	if diff := cmp.Diff(regions(a), regions(b)); diff != "" {
		t.Errorf("equally seeded builds differ (-first +second):\n%s", diff)
	}
}

func TestBuildDeterministicNoiseLocation(t *testing.T) {
	// A constant uniform of 0.5 makes every draw return its location,
	// sensitivity/ε, so the split decisions are fully determined.
	// Root: candidates get ε = 1, avg = 5/4 + 1 = 2.25,
	// fp = 2.75 + 3·2.25 = 9.5, fp/total = 1.9.
	for _, tc := range []struct {
		theta     float64
		wantSplit bool
	}{
		{1.9, true},
		{1.91, false},
	} {
		tree := mustBuild(t, &Options{
			Bounds:     square16,
			Epsilon:    1,
			TreeHeight: 1,
			Lambda:     1,
			Theta:      tc.theta,
			Source:     constSource{f: 0.5},
		}, fivePoints)
		if got := tree.Node(tree.Root()).Type() == Pointer; got != tc.wantSplit {
			t.Errorf("theta %f: root split got %t, want %t", tc.theta, got, tc.wantSplit)
		}
	}
}

func TestBuildRejectsInvalidOptions(t *testing.T) {
	for _, tc := range []struct {
		desc string
		opt  *Options
	}{
		{"nil options", nil},
		{"zero epsilon", &Options{Bounds: square16}},
		{"negative lambda", &Options{Bounds: square16, Epsilon: 1, Lambda: -1}},
		{"negative sensitivity", &Options{Bounds: square16, Epsilon: 1, Sensitivity: -1}},
		{"negative theta", &Options{Bounds: square16, Epsilon: 1, Theta: -0.1}},
		{"NaN theta", &Options{Bounds: square16, Epsilon: 1, Theta: math.NaN()}},
		{"negative tree height", &Options{Bounds: square16, Epsilon: 1, TreeHeight: -1}},
	} {
		if _, err := Build(tc.opt, fivePoints); err == nil {
			t.Errorf("Build when %s: got nil error, want error", tc.desc)
		}
		if _, err := New(tc.opt); err == nil {
			t.Errorf("New when %s: got nil error, want error", tc.desc)
		}
	}
}

func TestBuildAppliesDefaults(t *testing.T) {
	tree := mustBuild(t, &Options{Bounds: square16, Epsilon: 1, TreeHeight: 1}, fivePoints)
	if tree.Sensitivity() != 1 {
		t.Errorf("Sensitivity: got %f, want default 1", tree.Sensitivity())
	}
	if tree.Node(tree.Root()).Type() != Pointer {
		t.Fatalf("root type: got %v, want Pointer with the default theta 0", tree.Node(tree.Root()).Type())
	}
	for _, c := range tree.Node(tree.Root()).Children() {
		if got := tree.Node(c).Epsilon(); got != 1 {
			t.Errorf("child epsilon with default lambda: got %f, want 1", got)
		}
	}
}
