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
	"fmt"
	"math"

	"github.com/JJJJane/QTSC/noise"
)

// NodeType is an enum type tagging what a Node holds.
//
// Empty carries two meanings. On the generic point-quadtree surface (Set,
// Remove, Traverse, ...) it means the node holds no point. Terminal nodes
// produced by Build are also Empty, but there they hold the real, unperturbed
// points of their region; Build never produces Leaf. Consequently the generic
// surface treats an adaptively built terminal as empty: Traverse and Keys skip
// it and IsEmpty reports true for an unsplit adaptive root.
type NodeType int

// Node types.
const (
	Empty NodeType = iota
	Leaf
	Pointer
)

func (t NodeType) String() string {
	switch t {
	case Empty:
		return "Empty"
	case Leaf:
		return "Leaf"
	case Pointer:
		return "Pointer"
	}
	return fmt.Sprintf("NodeType(%d)", int(t))
}

// NodeID addresses a node in the arena of its Tree.
type NodeID int

// NoNode is the NodeID of a missing parent or child.
const NoNode NodeID = -1

// Node is a rectangular region holding either points or four children.
//
// Children are owned through their NodeIDs; parent is a lookup-only back
// reference used when removing points. Region and epsilon never change after
// creation.
type Node struct {
	region   Rect
	epsilon  float64
	parent   NodeID
	children [4]NodeID
	points   []Point
	typ      NodeType
}

func newNode(region Rect, epsilon float64, parent NodeID) *Node {
	return &Node{
		region:   region,
		epsilon:  epsilon,
		parent:   parent,
		children: [4]NodeID{NoNode, NoNode, NoNode, NoNode},
		typ:      Empty,
	}
}

// Region returns the rectangle covered by n.
func (n *Node) Region() Rect { return n.region }

// Epsilon returns the privacy budget of n.
func (n *Node) Epsilon() float64 { return n.epsilon }

// Type returns the type tag of n.
func (n *Node) Type() NodeType { return n.typ }

// Parent returns the NodeID of the parent of n, or NoNode for the root.
func (n *Node) Parent() NodeID { return n.parent }

// Child returns the child of n in quadrant q, or NoNode if n is not split.
func (n *Node) Child(q Quadrant) NodeID { return n.children[q] }

// Children returns the four children of n, NoNode in each slot if n is not
// split.
func (n *Node) Children() [4]NodeID { return n.children }

// Points returns the points stored in n. Callers must not modify the result.
func (n *Node) Points() []Point { return n.points }

// PointCount returns the number of points stored in n.
func (n *Node) PointCount() int { return len(n.points) }

// isTerminal reports whether a traversal stops at n.
func (n *Node) isTerminal() bool {
	return n.typ == Empty || n.typ == Leaf
}

// insertRaw appends every coordinate of data that falls inside the region of
// n. The whole dataset is scanned on every call, so building costs
// O(|data| × nodes visited).
func (n *Node) insertRaw(data []Coord) {
	for _, c := range data {
		if n.region.Contains(c.X, c.Y) {
			n.points = append(n.points, Point{X: c.X, Y: c.Y, Value: n.epsilon})
		}
	}
}

// evaluateUniformity reports whether n is uniform enough that splitting it
// would not be worth its cost.
//
// Four detached candidate quadrants with budget ε·λ are filled from data. With
// avg the noisy mean candidate count and fp the sum of the candidates'
// absolute deviations from avg, n is uniform iff fp/PointCount() < θ. A node
// without points is always uniform. The noise is drawn before that check so
// that a seeded source is consumed identically for empty and non-empty nodes.
func (n *Node) evaluateUniformity(nz noise.Noise, lambda, theta, sensitivity float64, data []Coord) bool {
	childEpsilon := n.epsilon * lambda
	var candidates [4]*Node
	var total4 float64
	for q, r := range n.region.Quadrants() {
		candidates[q] = newNode(r, childEpsilon, NoNode)
		candidates[q].insertRaw(data)
		total4 += float64(candidates[q].PointCount())
	}
	avg := total4/4 + nz.Draw(noise.Scale(sensitivity, childEpsilon), sensitivity)
	var fp float64
	for _, c := range candidates {
		fp += math.Abs(float64(c.PointCount()) - avg)
	}
	total := float64(n.PointCount())
	if total == 0 {
		return true
	}
	return fp/total < theta
}
