// Copyright 2025 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2025 Department of Linguistics,
// Faculty of Arts, Charles University
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package clf defines the contract shared by all the artifact-backed
// classifiers.
package clf

import "github.com/czcorpus/kddclf/feats"

const DefaultClassThreshold = 0.5

// Prediction is a result of classifying a single connection record
type Prediction struct {

	// Votes contains score for each class (0 = genuine, 1 = malicious)
	Votes          []float64
	PredictedClass int
}

// Estimator is a loaded, inference-only classifier.
type Estimator interface {

	// PredictRow classifies a single encoded feature vector
	PredictRow(x []float64) Prediction

	// Features returns the training-time feature specification
	// (column order and categories of one-hot encoded columns)
	Features() []feats.FeatureSpec

	SetClassThreshold(v float64)
	GetClassThreshold() float64
	Info() string
}

// Decide converts the malicious class score into a label
func Decide(score, threshold float64) int {
	if score > threshold {
		return 1
	}
	return 0
}
