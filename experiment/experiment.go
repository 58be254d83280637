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

// Package experiment measures how far the noisy range counts of an adaptive
// quadtree are from the true counts, for query rectangles of growing size.
package experiment

import (
	"fmt"
	"math"

	"github.com/JJJJane/QTSC/config"
	"github.com/JJJJane/QTSC/noise"
	"github.com/JJJJane/QTSC/quadtree"
	"github.com/JJJJane/QTSC/rand"
	log "github.com/golang/glog"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// alpha is the significance level of the noise interval logged by Run.
const alpha = 0.05

// RelativeError returns the error drawn into a noisy count, relative to the true count
// trueCount, in a dataset of total points. Counts at or below threshold·total
// are measured against total/threshold instead, so that small counts do not
// blow the error up.
func RelativeError(drawn, threshold, trueCount, total float64) float64 {
	if trueCount > threshold*total {
		return math.Abs(drawn) / trueCount
	}
	return math.Abs(drawn) / total * threshold
}

// SizeResult holds the errors measured for one query size.
type SizeResult struct {
	Multiplier int     // Query size in query cells.
	Width      float64 // Width of each query rectangle.
	Height     float64 // Height of each query rectangle.

	Answers             []quadtree.Answer
	RelativeErrors      []float64
	MeanRelativeError   float64
	StdDevRelativeError float64
}

// Report is the result of Run.
type Report struct {
	Params config.Params
	Points int            // Size of the dataset.
	Tree   quadtree.Stats // Shape of the tree the queries were answered by.

	// RootNoise contains a single noise draw at the root budget with
	// probability 1-alpha.
	RootNoise noise.ConfidenceInterval

	Sizes []SizeResult // One entry per query size, smallest first.
}

// Run builds a tree over data with the parameters p and answers
// p.QueriesPerSize random query rectangles for each query size k·cell,
// k = 1..p.QuerySizes, cell being the size of the deepest tree cells.
//
// Randomness is derived from seed: the tree is built from a source seeded with
// seed and query size k draws its rectangles and noise from a source seeded
// with seed+k, so a run is reproducible. Query sizes are answered concurrently.
func Run(p *config.Params, data []quadtree.Coord, seed int64) (*Report, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("experiment.Run: the dataset is empty, relative errors are undefined")
	}
	tree, err := quadtree.Build(p.BuildOptions(rand.New(seed)), data)
	if err != nil {
		return nil, fmt.Errorf("couldn't build the tree, err = %w", err)
	}
	ci, err := noise.ComputeConfidenceIntervalLaplace(noise.Scale(p.Sensitivity, p.Epsilon), p.Sensitivity, alpha)
	if err != nil {
		return nil, err
	}
	log.Infof("A noise draw at the root budget lies in [%f, %f] with probability %.2f", ci.LowerBound, ci.UpperBound, 1-alpha)

	r := &Report{
		Params:    *p,
		Points:    len(data),
		Tree:      tree.Stats(),
		RootNoise: ci,
		Sizes:     make([]SizeResult, p.QuerySizes),
	}
	var g errgroup.Group
	for i := range r.Sizes {
		i := i
		g.Go(func() error {
			res, err := runSize(p, tree, len(data), i+1, seed+int64(i+1))
			if err != nil {
				return err
			}
			r.Sizes[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return r, nil
}

func runSize(p *config.Params, tree *quadtree.Tree, total, k int, seed int64) (SizeResult, error) {
	src := rand.New(seed)
	w := float64(k) * p.QueryCellWidth()
	h := float64(k) * p.QueryCellHeight()
	rects, err := quadtree.GenerateQueryRegions(src, p.QueriesPerSize, p.XMin, p.YMin, w, h, p.Width, p.Height)
	if err != nil {
		return SizeResult{}, fmt.Errorf("couldn't generate queries of size %d, err = %w", k, err)
	}
	answers := tree.WithNoise(noise.Laplace(src)).AnswerRanges(rects)
	res := SizeResult{
		Multiplier:     k,
		Width:          w,
		Height:         h,
		Answers:        answers,
		RelativeErrors: make([]float64, len(answers)),
	}
	for j, a := range answers {
		res.RelativeErrors[j] = RelativeError(a.Noise, p.ErrorThreshold, a.Count, float64(total))
	}
	switch len(res.RelativeErrors) {
	case 0:
	case 1:
		res.MeanRelativeError = res.RelativeErrors[0]
	default:
		res.MeanRelativeError, res.StdDevRelativeError = stat.MeanStdDev(res.RelativeErrors, nil)
	}
	log.Infof("Query size %d (%f x %f): mean relative error %f over %d queries",
		k, w, h, res.MeanRelativeError, len(rects))
	return res, nil
}

// MeanErrors returns the mean relative error of every query size, smallest
// size first.
func (r *Report) MeanErrors() []float64 {
	errs := make([]float64, len(r.Sizes))
	for i, s := range r.Sizes {
		errs[i] = s.MeanRelativeError
	}
	return errs
}
