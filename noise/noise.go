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

// Package noise contains the noise mechanism used to perturb node counts in
// the adaptive quadtree, both when deciding whether to split a node and when
// answering range queries.
package noise

// Noise is an interface for samplers that produce the random perturbation
// added to a count.
type Noise interface {
	// Draw returns one sample from a distribution centered at location with
	// spread scale. Successive calls are statistically independent.
	Draw(location, scale float64) float64
}

// ConfidenceInterval holds lower and upper bounds as float64 for the confidence interval.
type ConfidenceInterval struct {
	LowerBound, UpperBound float64
}

// Scale computes the scale parameter sensitivity/ε of the Laplace mechanism
// for a node holding privacy budget ε.
//
// Every call site in this module passes Scale(sensitivity, ε) as the location
// of Draw and sensitivity as its scale, so drawn noise is centered at
// sensitivity/ε rather than at 0.
func Scale(sensitivity, epsilon float64) float64 {
	return sensitivity / epsilon
}
