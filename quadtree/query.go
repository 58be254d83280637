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

// Answer is the result of a range query: the true count of the points held by
// the overlapping terminal nodes, and the accumulated noise drawn for them.
// The noisy count is Count + Noise.
type Answer struct {
	Count float64
	Noise float64
}

// AnswerRange answers a range-count query over rect.
//
// Every terminal node whose region overlaps rect (closed bounds, so touching
// counts) contributes its point count and one independent noise draw with
// location sensitivity/ε and scale sensitivity, ε being the node's budget. A
// rect outside the tree yields the zero Answer.
func (t *Tree) AnswerRange(rect Rect) Answer {
	var a Answer
	t.answer(t.root, rect, &a)
	return a
}

// AnswerRanges answers each rect in order.
func (t *Tree) AnswerRanges(rects []Rect) []Answer {
	answers := make([]Answer, len(rects))
	for i, r := range rects {
		answers[i] = t.AnswerRange(r)
	}
	return answers
}

// answer does not prune children against rect: the overlap test at the
// terminals decides alone.
func (t *Tree) answer(id NodeID, rect Rect, a *Answer) {
	n := t.nodes[id]
	switch n.typ {
	case Pointer:
		for _, c := range n.children {
			t.answer(c, rect, a)
		}
	case Empty, Leaf:
		if !n.region.Overlaps(rect) {
			return
		}
		a.Count += float64(n.PointCount())
		a.Noise += t.noise.Draw(noise.Scale(t.sensitivity, n.epsilon), t.sensitivity)
		if log.V(2) {
			log.Infof("query %v overlaps node %d at %v: overlap fraction %f", rect, id, n.region, overlapFraction(n.region, rect))
		}
	default:
		log.Fatalf("Invalid nodeType %v in node %d", n.typ, id)
	}
}

// overlapFraction is a diagnostic estimate of how much of node is covered by
// rect. It subtracts the node height where the node's y origin would be
// expected; the value is only logged and never feeds an Answer.
func overlapFraction(node, rect Rect) float64 {
	return (rect.X + rect.W - node.X) * (rect.Y + rect.H - node.H) / (node.W * node.H)
}

// WithNoise returns a view of t that draws query noise from n instead of the
// tree's own source. The view shares the nodes of t and must only be queried.
func (t *Tree) WithNoise(n noise.Noise) *Tree {
	v := *t
	v.noise = n
	return &v
}
