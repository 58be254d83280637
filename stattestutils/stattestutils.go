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

// Package stattestutils provides the sample statistics used by the
// statistical tests of the noise and quadtree packages.
//
// This package is not optimized for performance or speed and is only intended
// to be used in tests.
package stattestutils

import (
	"math"
	"slices"
)

// SampleMean returns the average of values, 0 for an empty slice.
func SampleMean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / math.Max(1, float64(len(values)))
}

// SampleMeanAbsoluteDeviation returns the mean of the absolute distances of
// the values in the slice to center. For Laplace samples centered at center,
// it estimates the scale parameter.
func SampleMeanAbsoluteDeviation(values []float64, center float64) float64 {
	var sum float64
	for _, v := range values {
		sum += math.Abs(v - center)
	}
	return sum / math.Max(1, float64(len(values)))
}

// KolmogorovSmirnovDistance returns the largest distance between the
// empirical CDF of samples and cdf. samples is not modified.
func KolmogorovSmirnovDistance(samples []float64, cdf func(float64) float64) float64 {
	sorted := slices.Clone(samples)
	slices.Sort(sorted)
	n := float64(len(sorted))
	var d float64
	for i, x := range sorted {
		c := cdf(x)
		d = math.Max(d, math.Max(float64(i+1)/n-c, c-float64(i)/n))
	}
	return d
}
