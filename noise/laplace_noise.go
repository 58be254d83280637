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

package noise

import (
	"math"

	"github.com/JJJJane/QTSC/checks"
	"github.com/JJJJane/QTSC/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

type laplace struct {
	src rand.Source
}

// Laplace returns a Noise instance drawing Laplace distributed samples from
// src by inverse-CDF sampling. A nil src defaults to rand.Secure().
//
// The returned Noise is as thread-safe as src.
func Laplace(src rand.Source) Noise {
	if src == nil {
		src = rand.Secure()
	}
	return laplace{src: src}
}

// Draw draws u uniformly from the open interval (-0.5, 0.5) and returns
// location - scale·sign(u)·ln(1-2|u|).
func (l laplace) Draw(location, scale float64) float64 {
	u := l.src.Float64() - 0.5
	// Float64 is in [0, 1), so -0.5 is reachable and would give ln(0).
	for u == -0.5 {
		u = l.src.Float64() - 0.5
	}
	return location - scale*sign(u)*math.Log(1-2*math.Abs(u))
}

func (laplace) String() string {
	return "Laplace Noise"
}

func sign(u float64) float64 {
	switch {
	case u > 0:
		return 1
	case u < 0:
		return -1
	}
	return 0
}

// ComputeConfidenceIntervalLaplace computes the interval that contains a
// single Draw(location, scale) with probability 1 - alpha.
func ComputeConfidenceIntervalLaplace(location, scale, alpha float64) (ConfidenceInterval, error) {
	if err := checks.CheckAlpha("ComputeConfidenceIntervalLaplace", alpha); err != nil {
		return ConfidenceInterval{}, err
	}
	if err := checks.CheckSensitivity("ComputeConfidenceIntervalLaplace", scale); err != nil {
		return ConfidenceInterval{}, err
	}
	dist := distuv.Laplace{Mu: location, Scale: scale}
	return ConfidenceInterval{
		LowerBound: dist.Quantile(alpha / 2),
		UpperBound: dist.Quantile(1 - alpha/2),
	}, nil
}
