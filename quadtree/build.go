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
	"github.com/JJJJane/QTSC/noise"
	log "github.com/golang/glog"
)

// Build constructs an adaptive tree over data.
//
// Starting at a root spanning opt.Bounds with budget opt.Epsilon, every visited
// node first collects the coordinates of data inside its region. It stays
// terminal if opt.TreeHeight levels have been used up or if the uniformity
// test with θ = opt.Theta accepts it; otherwise it becomes a Pointer whose
// four children, each with budget ε·opt.Lambda, are built the same way.
// Terminal nodes are Empty, never Leaf, and hold the true points of their
// region. Coordinates outside opt.Bounds are silently dropped.
//
// Build draws from opt.Source sequentially, so a seeded source always yields
// the same tree.
func Build(opt *Options, data []Coord) (*Tree, error) {
	if opt == nil {
		opt = &Options{}
	}
	o := opt.withDefaults()
	if err := checkOptions("quadtree.Build", o); err != nil {
		return nil, err
	}
	t := newTree(o.Bounds, o.Epsilon, o.Lambda, o.Sensitivity, noise.Laplace(o.Source))
	t.build(t.root, o.TreeHeight, o.Lambda, o.Theta, o.Sensitivity, data)
	s := t.Stats()
	log.Infof("Built adaptive tree over %d coordinates: %d nodes, %d terminal, depth %d, %d points stored",
		len(data), s.Nodes, s.Terminals, s.Depth, s.Points)
	return t, nil
}

func (t *Tree) build(id NodeID, height int, lambda, theta, sensitivity float64, data []Coord) {
	n := t.nodes[id]
	n.insertRaw(data)
	if height == 0 {
		return
	}
	if n.evaluateUniformity(t.noise, lambda, theta, sensitivity, data) {
		return
	}
	t.subdivide(id, lambda)
	for _, c := range n.children {
		t.build(c, height-1, lambda, theta, sensitivity, data)
	}
}

// Stats summarizes the shape of a tree.
type Stats struct {
	Nodes     int // Nodes reachable from the root.
	Terminals int // Reachable Empty and Leaf nodes.
	Depth     int // Depth of the deepest node; the root has depth 0.
	Points    int // Points held by terminal nodes.
}

// Stats walks the tree and returns its shape.
func (t *Tree) Stats() Stats {
	var s Stats
	t.walk(t.root, 0, func(_ NodeID, n *Node, depth int) {
		s.Nodes++
		if depth > s.Depth {
			s.Depth = depth
		}
		if n.isTerminal() {
			s.Terminals++
			s.Points += n.PointCount()
		}
	})
	return s
}

// Terminals returns the Empty and Leaf nodes reachable from the root, in
// depth-first child-slot order. Together their regions tile the root.
func (t *Tree) Terminals() []NodeID {
	var ids []NodeID
	t.walk(t.root, 0, func(id NodeID, n *Node, _ int) {
		if n.isTerminal() {
			ids = append(ids, id)
		}
	})
	return ids
}

// walk visits every reachable node, parents before children.
func (t *Tree) walk(id NodeID, depth int, fn func(NodeID, *Node, int)) {
	n := t.nodes[id]
	fn(id, n, depth)
	switch n.typ {
	case Empty, Leaf:
	case Pointer:
		for _, c := range n.children {
			t.walk(c, depth+1, fn)
		}
	default:
		log.Fatalf("Invalid nodeType %v in node %d", n.typ, id)
	}
}
