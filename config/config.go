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

// Package config holds the parameters of a privacy-preserving range-count
// experiment and converts them into tree options.
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/JJJJane/QTSC/checks"
	"github.com/JJJJane/QTSC/quadtree"
	"github.com/JJJJane/QTSC/rand"
)

// Params describes the region, the privacy parameters and the query workload
// of an experiment.
type Params struct {
	XMin       float64 `json:"x_min"`       // Left edge of the root region.
	YMin       float64 `json:"y_min"`       // Top edge of the root region.
	Width      float64 `json:"width"`       // Width of the root region.
	Height     float64 `json:"height"`      // Height of the root region.
	TreeHeight int     `json:"tree_height"` // Maximum depth of the tree.

	Epsilon     float64 `json:"epsilon"`     // Budget of the root.
	Sensitivity float64 `json:"sensitivity"` // Sensitivity of a count.
	Theta       float64 `json:"theta"`       // Uniformity threshold.
	Lambda      float64 `json:"lambda"`      // Budget decay per split.

	QueriesPerSize int     `json:"queries_per_size"` // Rectangles drawn for each query size.
	QuerySizes     int     `json:"query_sizes"`      // Query sizes, multiples 1..QuerySizes of a cell.
	ErrorThreshold float64 `json:"error_threshold"`  // Threshold of RelativeError.
}

// Default returns the parameters of the reference experiment.
func Default() *Params {
	return &Params{
		XMin:           520000,
		YMin:           170000,
		Width:          20480,
		Height:         20480,
		TreeHeight:     2,
		Epsilon:        1,
		Sensitivity:    1,
		Theta:          0.5,
		Lambda:         2,
		QueriesPerSize: 10,
		QuerySizes:     5,
		ErrorThreshold: 100,
	}
}

// Load decodes the JSON file at path over Default, so fields missing from the
// file keep their default value. The result is not validated.
func Load(path string) (*Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("couldn't read the config file = %q, err = %v", path, err)
	}
	p := Default()
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("couldn't parse the config file = %q, err = %w", path, err)
	}
	return p, nil
}

// Validate returns an error if p cannot drive an experiment.
func (p *Params) Validate() error {
	const label = "config.Validate"
	if err := checks.CheckCoordinate(label, "XMin", p.XMin); err != nil {
		return err
	}
	if err := checks.CheckCoordinate(label, "YMin", p.YMin); err != nil {
		return err
	}
	if err := checks.CheckDimension(label, "Width", p.Width); err != nil {
		return err
	}
	if err := checks.CheckDimension(label, "Height", p.Height); err != nil {
		return err
	}
	if err := checks.CheckTreeHeight(label, p.TreeHeight); err != nil {
		return err
	}
	if err := checks.CheckEpsilonStrict(label, p.Epsilon); err != nil {
		return err
	}
	if err := checks.CheckSensitivity(label, p.Sensitivity); err != nil {
		return err
	}
	if err := checks.CheckTheta(label, p.Theta); err != nil {
		return err
	}
	if err := checks.CheckLambda(label, p.Lambda); err != nil {
		return err
	}
	if err := checks.CheckCount(label, "QueriesPerSize", p.QueriesPerSize); err != nil {
		return err
	}
	if err := checks.CheckCount(label, "QuerySizes", p.QuerySizes); err != nil {
		return err
	}
	if p.ErrorThreshold < 0 || math.IsInf(p.ErrorThreshold, 0) || math.IsNaN(p.ErrorThreshold) {
		return fmt.Errorf("%s: ErrorThreshold is %f, must be non-negative and finite", label, p.ErrorThreshold)
	}
	return nil
}

// Bounds returns the root region.
func (p *Params) Bounds() quadtree.Rect {
	return quadtree.Rect{X: p.XMin, Y: p.YMin, W: p.Width, H: p.Height}
}

// QueryCellWidth returns the width of a cell at the deepest level of the
// tree, Width/2^TreeHeight. It is the unit of the query sizes.
func (p *Params) QueryCellWidth() float64 {
	return p.Width / math.Pow(2, float64(p.TreeHeight))
}

// QueryCellHeight returns Height/2^TreeHeight.
func (p *Params) QueryCellHeight() float64 {
	return p.Height / math.Pow(2, float64(p.TreeHeight))
}

// BuildOptions returns the options building a tree over the region of p with
// noise drawn from src.
func (p *Params) BuildOptions(src rand.Source) *quadtree.Options {
	return &quadtree.Options{
		Bounds:      p.Bounds(),
		Epsilon:     p.Epsilon,
		TreeHeight:  p.TreeHeight,
		Lambda:      p.Lambda,
		Theta:       p.Theta,
		Sensitivity: p.Sensitivity,
		Source:      src,
	}
}

func (p *Params) String() string {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Sprintf("%+v", *p)
	}
	return string(data)
}
