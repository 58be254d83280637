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

// Package checks contains parameter checks for building and querying
// differentially private spatial trees.
//
// Every check takes a label as its first argument; the label prefixes the
// returned error so that callers validating several parameters at once can
// tell which one failed.
package checks

import (
	"fmt"
	"math"

	log "github.com/golang/glog"
)

// CheckEpsilonStrict returns an error if ε is nonpositive or +∞.
func CheckEpsilonStrict(label string, epsilon float64) error {
	if epsilon <= 0 || math.IsInf(epsilon, 0) || math.IsNaN(epsilon) {
		return fmt.Errorf("%s: Epsilon is %f, must be strictly positive and finite", label, epsilon)
	}
	return nil
}

// CheckSensitivity returns an error if sensitivity is nonpositive or +∞.
func CheckSensitivity(label string, sensitivity float64) error {
	if sensitivity <= 0 || math.IsInf(sensitivity, 0) || math.IsNaN(sensitivity) {
		return fmt.Errorf("%s: Sensitivity is %f, must be strictly positive and finite", label, sensitivity)
	}
	return nil
}

// CheckLambda returns an error if the budget decay factor λ is nonpositive or
// +∞. A λ above 1 grows the budget with depth; this is legal but logged.
func CheckLambda(label string, lambda float64) error {
	if lambda <= 0 || math.IsInf(lambda, 0) || math.IsNaN(lambda) {
		return fmt.Errorf("%s: Lambda is %f, must be strictly positive and finite", label, lambda)
	}
	if lambda > 1 {
		log.Warningf("%s: Lambda is %f, child nodes will receive a larger budget than their parent", label, lambda)
	}
	return nil
}

// CheckTheta returns an error if the uniformity threshold θ is negative or NaN.
// θ = +∞ is accepted: every non-empty region is then judged uniform.
func CheckTheta(label string, theta float64) error {
	if math.IsNaN(theta) {
		return fmt.Errorf("%s: Theta cannot be NaN", label)
	}
	if theta < 0 {
		return fmt.Errorf("%s: Theta is %f, must be nonnegative", label, theta)
	}
	return nil
}

// CheckTreeHeight returns an error if treeHeight is negative. A height of 0
// yields a tree consisting of the root only.
func CheckTreeHeight(label string, treeHeight int) error {
	if treeHeight < 0 {
		return fmt.Errorf("%s: Tree Height is %d, must be at least 0", label, treeHeight)
	}
	return nil
}

// CheckDimension returns an error if a width or height is nonpositive or +∞.
func CheckDimension(label, name string, v float64) error {
	if v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return fmt.Errorf("%s: %s is %f, must be strictly positive and finite", label, name, v)
	}
	return nil
}

// CheckCoordinate returns an error if an origin coordinate is NaN or ±∞.
func CheckCoordinate(label, name string, v float64) error {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return fmt.Errorf("%s: %s is %f, must be finite", label, name, v)
	}
	return nil
}

// CheckCount returns an error if count is negative.
func CheckCount(label, name string, count int) error {
	if count < 0 {
		return fmt.Errorf("%s: %s is %d, must be at least 0", label, name, count)
	}
	return nil
}

// CheckAlpha returns an error if the supplied alpha is not between 0 and 1.
func CheckAlpha(label string, alpha float64) error {
	if alpha <= 0 || alpha >= 1 || math.IsNaN(alpha) || math.IsInf(alpha, 0) {
		return fmt.Errorf("%s: Alpha is %f, must be within (0, 1) and finite", label, alpha)
	}
	return nil
}
