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

// Package eval compares predictions with the ground truth.
package eval

import (
	"errors"
	"fmt"
)

var ErrEvaluation = errors.New("evaluation failed")

// ConfusionMatrix of a binary classifier where 1 (malicious)
// is the positive class
type ConfusionMatrix struct {
	TN int `json:"tn"`
	FP int `json:"fp"`
	FN int `json:"fn"`
	TP int `json:"tp"`
}

// NewConfusionMatrix counts all combinations of actual and predicted
// labels. Both vectors must have the same length and contain only 0 and 1.
func NewConfusionMatrix(truth, predicted []int) (ConfusionMatrix, error) {
	var ans ConfusionMatrix
	if len(truth) != len(predicted) {
		return ans, fmt.Errorf(
			"%w: ground truth has %d labels, predictions %d", ErrEvaluation, len(truth), len(predicted))
	}
	for i := range truth {
		switch {
		case truth[i] == 0 && predicted[i] == 0:
			ans.TN++
		case truth[i] == 0 && predicted[i] == 1:
			ans.FP++
		case truth[i] == 1 && predicted[i] == 0:
			ans.FN++
		case truth[i] == 1 && predicted[i] == 1:
			ans.TP++
		default:
			return ConfusionMatrix{}, fmt.Errorf(
				"%w: non-binary label at row %d (truth: %d, predicted: %d)",
				ErrEvaluation, i, truth[i], predicted[i],
			)
		}
	}
	return ans, nil
}

func (cm ConfusionMatrix) Total() int {
	return cm.TN + cm.FP + cm.FN + cm.TP
}

// Accuracy is a ratio of correctly labeled rows. Zero for empty data.
func (cm ConfusionMatrix) Accuracy() float64 {
	if cm.Total() == 0 {
		return 0
	}
	return float64(cm.TP+cm.TN) / float64(cm.Total())
}

// Precision is zero when nothing was labeled as malicious
func (cm ConfusionMatrix) Precision() float64 {
	if cm.TP+cm.FP == 0 {
		return 0
	}
	return float64(cm.TP) / float64(cm.TP+cm.FP)
}

// Recall is zero when there are no malicious rows
func (cm ConfusionMatrix) Recall() float64 {
	if cm.TP+cm.FN == 0 {
		return 0
	}
	return float64(cm.TP) / float64(cm.TP+cm.FN)
}

func (cm ConfusionMatrix) F1() float64 {
	p, r := cm.Precision(), cm.Recall()
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

// Matrix returns the counts as rows of actual and columns
// of predicted classes
func (cm ConfusionMatrix) Matrix() [][]float64 {
	return [][]float64{
		{float64(cm.TN), float64(cm.FP)},
		{float64(cm.FN), float64(cm.TP)},
	}
}
