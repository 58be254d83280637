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
	"errors"
	"fmt"
	"math"

	"github.com/JJJJane/QTSC/checks"
	"github.com/JJJJane/QTSC/rand"
	log "github.com/golang/glog"
)

// ErrDegenerateCell is returned by GenerateQueryRegions when a cell width or
// height is not strictly positive and finite, or when the span does not hold a
// finite number of cells.
var ErrDegenerateCell = errors.New("quadtree: query cell size must be strictly positive and finite")

// GenerateQueryRegions returns count rectangles of size cellW × cellH snapped
// to a grid anchored at (minX, minY).
//
// The grid has n = ⌊spanW/cellW⌋ - 1 columns and m = ⌊spanH/cellH⌋ - 1 rows;
// each rectangle picks a column in [0, n) and a row in [0, m) uniformly from
// src, so duplicates are possible. If the span leaves no column (n < 1) or no
// row (m < 1), every rectangle uses index 0 on that axis. A NaN or infinite
// span, or one holding more than math.MaxInt32 cells, is rejected with
// ErrDegenerateCell. A nil src defaults to rand.Secure().
func GenerateQueryRegions(src rand.Source, count int, minX, minY, cellW, cellH, spanW, spanH float64) ([]Rect, error) {
	if err := checks.CheckCount("GenerateQueryRegions", "count", count); err != nil {
		return nil, err
	}
	if !positiveFinite(cellW) || !positiveFinite(cellH) {
		return nil, fmt.Errorf("%w: got %f x %f", ErrDegenerateCell, cellW, cellH)
	}
	if src == nil {
		src = rand.Secure()
	}
	n, err := gridSize(spanW, cellW)
	if err != nil {
		return nil, err
	}
	m, err := gridSize(spanH, cellH)
	if err != nil {
		return nil, err
	}
	if n < 1 || m < 1 {
		log.Warningf("GenerateQueryRegions: a %f x %f cell leaves a %d x %d grid in a %f x %f span, collapsing to the origin",
			cellW, cellH, n, m, spanW, spanH)
	}
	rects := make([]Rect, count)
	for k := range rects {
		i := gridIndex(src, n)
		j := gridIndex(src, m)
		rects[k] = Rect{
			X: minX + float64(i)*cellW,
			Y: minY + float64(j)*cellH,
			W: cellW,
			H: cellH,
		}
	}
	return rects, nil
}

// gridSize returns ⌊span/cell⌋ - 1, or an error if the ratio does not fit
// an int32.
func gridSize(span, cell float64) (int, error) {
	ratio := span / cell
	if math.IsNaN(ratio) || math.Abs(ratio) > math.MaxInt32 {
		return 0, fmt.Errorf("%w: span %f holds %g cells of %f", ErrDegenerateCell, span, ratio, cell)
	}
	return int(math.Floor(ratio)) - 1, nil
}

func gridIndex(src rand.Source, n int) int {
	if n < 1 {
		return 0
	}
	return src.Intn(n)
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
