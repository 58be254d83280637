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

// Package quadtree implements a differentially private adaptive quadtree over
// a fixed 2-D dataset and a noisy range-count query engine on top of it.
//
// Build partitions space adaptively: a node is split only when a noise-aware
// uniformity test finds that its four quadrants differ noticeably in density,
// and each child receives the budget of its parent multiplied by a decay
// factor λ. AnswerRange then sums the true counts of the terminal nodes that
// overlap a query and adds one independent noise draw per such node.
//
// A generic point-quadtree API (Set, Get, Remove, Traverse, ...) shares the
// same nodes. It is independent of Build and AnswerRange.
package quadtree

import (
	"fmt"
	"slices"

	"github.com/JJJJane/QTSC/checks"
	"github.com/JJJJane/QTSC/noise"
	"github.com/JJJJane/QTSC/rand"
	log "github.com/golang/glog"
)

// Tree owns an arena of nodes rooted at a single region.
//
// Not thread-safe for writes. Once built, a tree may be queried from several
// goroutines provided each uses its own noise source (see WithNoise).
type Tree struct {
	nodes []*Node
	free  []NodeID
	root  NodeID
	count int

	lambda      float64
	sensitivity float64
	noise       noise.Noise
}

// Options contains the options necessary to initialize a Tree.
type Options struct {
	Bounds      Rect        // Region covered by the root. Required; not validated.
	Epsilon     float64     // Privacy budget ε of the root. Required.
	TreeHeight  int         // Maximum depth reached by Build. Defaults to 0, the root only.
	Lambda      float64     // Budget decay factor λ applied at each split. Defaults to 1.
	Theta       float64     // Uniformity threshold θ used by Build. Defaults to 0: split every non-empty node.
	Sensitivity float64     // Sensitivity of a count, the scale of each noise draw. Defaults to 1.
	Source      rand.Source // Randomness for noise draws. Defaults to rand.Secure().
}

func (opt *Options) withDefaults() Options {
	o := *opt
	if o.Lambda == 0 {
		o.Lambda = 1
	}
	if o.Sensitivity == 0 {
		o.Sensitivity = 1
	}
	if o.Source == nil {
		o.Source = rand.Secure()
	}
	return o
}

func checkOptions(label string, o Options) error {
	if err := checks.CheckEpsilonStrict(label, o.Epsilon); err != nil {
		return err
	}
	if err := checks.CheckLambda(label, o.Lambda); err != nil {
		return err
	}
	if err := checks.CheckSensitivity(label, o.Sensitivity); err != nil {
		return err
	}
	if err := checks.CheckTheta(label, o.Theta); err != nil {
		return err
	}
	return checks.CheckTreeHeight(label, o.TreeHeight)
}

// New returns a tree consisting of an Empty root spanning opt.Bounds with
// budget opt.Epsilon. Use Build to construct an adaptive tree over a dataset;
// New alone is the entry point of the generic point-quadtree API.
func New(opt *Options) (*Tree, error) {
	if opt == nil {
		opt = &Options{}
	}
	o := opt.withDefaults()
	if err := checkOptions("quadtree.New", o); err != nil {
		return nil, err
	}
	return newTree(o.Bounds, o.Epsilon, o.Lambda, o.Sensitivity, noise.Laplace(o.Source)), nil
}

func newTree(bounds Rect, epsilon, lambda, sensitivity float64, nz noise.Noise) *Tree {
	return &Tree{
		nodes:       []*Node{newNode(bounds, epsilon, NoNode)},
		root:        0,
		lambda:      lambda,
		sensitivity: sensitivity,
		noise:       nz,
	}
}

// Root returns the NodeID of the root node.
func (t *Tree) Root() NodeID { return t.root }

// Node returns the node addressed by id. Callers must not modify it.
func (t *Tree) Node(id NodeID) *Node { return t.nodes[id] }

// Bounds returns the region covered by the root.
func (t *Tree) Bounds() Rect { return t.nodes[t.root].region }

// Sensitivity returns the sensitivity used to scale noise draws.
func (t *Tree) Sensitivity() float64 { return t.sensitivity }

func (t *Tree) alloc(region Rect, epsilon float64, parent NodeID) NodeID {
	n := newNode(region, epsilon, parent)
	if k := len(t.free); k > 0 {
		id := t.free[k-1]
		t.free = t.free[:k-1]
		t.nodes[id] = n
		return id
	}
	t.nodes = append(t.nodes, n)
	return NodeID(len(t.nodes) - 1)
}

// release returns id and its whole subtree to the free list.
func (t *Tree) release(id NodeID) {
	n := t.nodes[id]
	for _, c := range n.children {
		if c != NoNode {
			t.release(c)
		}
	}
	t.nodes[id] = nil
	t.free = append(t.free, id)
}

// subdivide turns id into a Pointer node with four Empty children, each with
// the budget of id multiplied by lambda. Points held by id are dropped.
func (t *Tree) subdivide(id NodeID, lambda float64) {
	n := t.nodes[id]
	n.points = nil
	n.typ = Pointer
	childEpsilon := n.epsilon * lambda
	for q, r := range n.region.Quadrants() {
		n.children[q] = t.alloc(r, childEpsilon, id)
	}
}

// collapse drops the children of a Pointer node.
func (t *Tree) collapse(id NodeID) {
	n := t.nodes[id]
	for q, c := range n.children {
		if c != NoNode {
			t.release(c)
		}
		n.children[q] = NoNode
	}
}

func (t *Tree) quadrantFor(id NodeID, x, y float64) NodeID {
	n := t.nodes[id]
	c := n.children[quadrantOf(n.region, x, y)]
	if c == NoNode {
		log.Fatalf("Pointer node %d at %v has no child for (%v, %v), should never happen", id, n.region, x, y)
	}
	return c
}

// OutOfBoundsError is returned by Set when a point lies outside the root.
type OutOfBoundsError struct {
	X, Y   float64
	Bounds Rect
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("quadtree: out of bounds: (%v, %v) is outside %v", e.X, e.Y, e.Bounds)
}

// Set stores value at (x, y). The root bounds are closed for this check, so a
// point on the far edge is accepted.
func (t *Tree) Set(x, y, value float64) error {
	b := t.Bounds()
	// Negated so that NaN coordinates are rejected.
	if !(x >= b.X && x <= b.X+b.W && y >= b.Y && y <= b.Y+b.H) {
		return &OutOfBoundsError{X: x, Y: y, Bounds: b}
	}
	if t.insert(t.root, Point{X: x, Y: y, Value: value}) {
		t.count++
	}
	return nil
}

// insert reports whether p added a new point rather than replacing the value
// of an existing one.
func (t *Tree) insert(id NodeID, p Point) bool {
	n := t.nodes[id]
	switch n.typ {
	case Empty:
		n.points = append(n.points, p)
		n.typ = Leaf
		return true
	case Leaf:
		for i, q := range n.points {
			if q.X == p.X && q.Y == p.Y {
				n.points[i] = p
				return false
			}
		}
		t.split(id)
		return t.insert(id, p)
	case Pointer:
		return t.insert(t.quadrantFor(id, p.X, p.Y), p)
	default:
		log.Fatalf("Invalid nodeType %v in node %d", n.typ, id)
	}
	return false
}

// split converts a Leaf into a Pointer and reinserts its points.
func (t *Tree) split(id NodeID) {
	old := t.nodes[id].points
	t.subdivide(id, t.lambda)
	for _, p := range old {
		t.insert(id, p)
	}
}

// Find returns the Leaf holding a point at exactly (x, y).
func (t *Tree) Find(x, y float64) (NodeID, bool) {
	return t.find(t.root, x, y)
}

func (t *Tree) find(id NodeID, x, y float64) (NodeID, bool) {
	n := t.nodes[id]
	switch n.typ {
	case Empty:
		return NoNode, false
	case Leaf:
		for _, p := range n.points {
			if p.X == x && p.Y == y {
				return id, true
			}
		}
		return NoNode, false
	case Pointer:
		return t.find(t.quadrantFor(id, x, y), x, y)
	default:
		log.Fatalf("Invalid nodeType %v in node %d", n.typ, id)
	}
	return NoNode, false
}

// Get returns the value stored at (x, y), or def if there is none.
func (t *Tree) Get(x, y, def float64) float64 {
	id, ok := t.find(t.root, x, y)
	if !ok {
		return def
	}
	for _, p := range t.nodes[id].points {
		if p.X == x && p.Y == y {
			return p.Value
		}
	}
	return def
}

// Contains reports whether a point is stored at (x, y).
func (t *Tree) Contains(x, y float64) bool {
	_, ok := t.find(t.root, x, y)
	return ok
}

// Remove deletes the point at (x, y) and returns its value. Nodes left with at
// most one non-empty child are collapsed afterwards.
func (t *Tree) Remove(x, y float64) (float64, bool) {
	id, ok := t.find(t.root, x, y)
	if !ok {
		return 0, false
	}
	n := t.nodes[id]
	i := slices.IndexFunc(n.points, func(p Point) bool { return p.X == x && p.Y == y })
	value := n.points[i].Value
	n.points = slices.Delete(n.points, i, i+1)
	if len(n.points) == 0 {
		n.points = nil
		n.typ = Empty
	}
	t.balance(id)
	t.count--
	return value, true
}

// balance collapses id if all its children are empty, or if exactly one is
// non-empty and that one is a Leaf, then continues with the parent.
func (t *Tree) balance(id NodeID) {
	n := t.nodes[id]
	switch n.typ {
	case Empty, Leaf:
		// Nothing to collapse here.
	case Pointer:
		first := NoNode
		for _, c := range n.children {
			if t.nodes[c].typ == Empty {
				continue
			}
			if first != NoNode {
				// More than one non-empty child: cannot be balanced.
				return
			}
			first = c
		}
		switch {
		case first == NoNode:
			t.collapse(id)
			n.typ = Empty
		case t.nodes[first].typ == Pointer:
			return
		default:
			pts := t.nodes[first].points
			t.collapse(id)
			n.typ = Leaf
			n.points = pts
		}
	default:
		log.Fatalf("Invalid nodeType %v in node %d", n.typ, id)
	}
	if n.parent != NoNode {
		t.balance(n.parent)
	}
}

// IsEmpty reports whether the root is Empty.
func (t *Tree) IsEmpty() bool {
	return t.nodes[t.root].typ == Empty
}

// Count returns the number of points added through Set and not removed.
func (t *Tree) Count() int {
	return t.count
}

// Clear removes every node except an Empty root.
func (t *Tree) Clear() {
	r := t.nodes[t.root]
	t.nodes = []*Node{newNode(r.region, r.epsilon, NoNode)}
	t.free = nil
	t.root = 0
	t.count = 0
}

// traversalOrder visits quadrants clockwise.
var traversalOrder = [4]Quadrant{NE, SE, SW, NW}

// Traverse calls fn for every Leaf, depth first with quadrants visited
// clockwise (NE, SE, SW, NW).
func (t *Tree) Traverse(fn func(id NodeID, n *Node)) {
	t.traverse(t.root, fn)
}

func (t *Tree) traverse(id NodeID, fn func(NodeID, *Node)) {
	n := t.nodes[id]
	switch n.typ {
	case Empty:
	case Leaf:
		fn(id, n)
	case Pointer:
		for _, q := range traversalOrder {
			t.traverse(n.children[q], fn)
		}
	default:
		log.Fatalf("Invalid nodeType %v in node %d", n.typ, id)
	}
}

// Keys returns every point reachable through Traverse, ordered by
// Point.Compare.
func (t *Tree) Keys() []Point {
	var pts []Point
	t.Traverse(func(_ NodeID, n *Node) {
		pts = append(pts, n.points...)
	})
	slices.SortFunc(pts, Point.Compare)
	return pts
}

// Values returns the values of Keys, in the same order.
func (t *Tree) Values() []float64 {
	keys := t.Keys()
	values := make([]float64, len(keys))
	for i, p := range keys {
		values[i] = p.Value
	}
	return values
}

// navigate is Traverse restricted to the Pointer children whose region
// intersects [xmin, xmax] × [ymin, ymax].
func (t *Tree) navigate(id NodeID, fn func(*Node), query Rect) {
	n := t.nodes[id]
	switch n.typ {
	case Empty:
	case Leaf:
		fn(n)
	case Pointer:
		for _, q := range traversalOrder {
			c := n.children[q]
			if t.nodes[c].region.Overlaps(query) {
				t.navigate(c, fn, query)
			}
		}
	default:
		log.Fatalf("Invalid nodeType %v in node %d", n.typ, id)
	}
}

// SearchIntersect returns the points p with xmin ≤ p.X ≤ xmax and
// ymin ≤ p.Y ≤ ymax.
func (t *Tree) SearchIntersect(xmin, ymin, xmax, ymax float64) []Point {
	var pts []Point
	t.navigate(t.root, func(n *Node) {
		for _, p := range n.points {
			if p.X >= xmin && p.X <= xmax && p.Y >= ymin && p.Y <= ymax {
				pts = append(pts, p)
			}
		}
	}, Rect{X: xmin, Y: ymin, W: xmax - xmin, H: ymax - ymin})
	return pts
}

// SearchWithin returns the points strictly inside (xmin, xmax) × (ymin, ymax).
func (t *Tree) SearchWithin(xmin, ymin, xmax, ymax float64) []Point {
	var pts []Point
	t.navigate(t.root, func(n *Node) {
		for _, p := range n.points {
			if p.X > xmin && p.X < xmax && p.Y > ymin && p.Y < ymax {
				pts = append(pts, p)
			}
		}
	}, Rect{X: xmin, Y: ymin, W: xmax - xmin, H: ymax - ymin})
	return pts
}

// Clone returns a new tree with the same bounds and parameters holding the
// points reachable through Traverse. The structure is rebuilt by reinsertion.
//
// The clone shares the noise source of t. To query t and the clone from
// different goroutines, give the clone its own source with WithNoise.
func (t *Tree) Clone() *Tree {
	r := t.nodes[t.root]
	c := newTree(r.region, r.epsilon, t.lambda, t.sensitivity, t.noise)
	t.Traverse(func(_ NodeID, n *Node) {
		for _, p := range n.points {
			if err := c.Set(p.X, p.Y, p.Value); err != nil {
				log.Fatalf("Clone: point %v of the source tree is out of its bounds, should never happen: %v", p, err)
			}
		}
	})
	return c
}
