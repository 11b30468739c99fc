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

package eval

import (
	"fmt"
	"io"
)

// Report summarizes an evaluation of a single model run
type Report struct {
	Model          string               `json:"model"`
	Matrix         ConfusionMatrix      `json:"confusionMatrix"`
	Classification ClassificationReport `json:"classification"`
}

// NewReport evaluates predictions of a model
func NewReport(modelName string, truth, predicted []int) (Report, error) {
	cm, err := NewConfusionMatrix(truth, predicted)
	if err != nil {
		return Report{}, err
	}
	return Report{Model: modelName, Matrix: cm, Classification: cm.Classification()}, nil
}

// WriteText writes a plain text summary followed by
// the per-class classification report
func (r Report) WriteText(w io.Writer) error {
	_, err := fmt.Fprintf(
		w,
		"Confusion matrix for %s:\nTN: %d, FP: %d, FN: %d, TP: %d\n"+
			"Accuracy: %.4f, Precision: %.4f, Recall: %.4f\n\n",
		r.Model,
		r.Matrix.TN, r.Matrix.FP, r.Matrix.FN, r.Matrix.TP,
		r.Matrix.Accuracy(), r.Matrix.Precision(), r.Matrix.Recall(),
	)
	if err != nil {
		return err
	}
	return r.Classification.WriteText(w)
}
