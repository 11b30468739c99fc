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

package stats

import (
	"time"

	"github.com/czcorpus/kddclf/eval"
)

// EvalRecord is a stored result of evaluating a model
// against a ground truth
type EvalRecord struct {

	// ID is a random UUID
	ID string

	// Datetime specifies when the evaluation was performed
	Datetime time.Time

	// Model is the registry name of the evaluated model
	Model string

	// Input is the path of the evaluated record file
	Input   string
	NumRows int
	Matrix  eval.ConfusionMatrix
}

type ListFilter struct {
	Model *string
	Limit int
}

func (filter ListFilter) SetModel(v string) ListFilter {
	filter.Model = &v
	return filter
}

func (filter ListFilter) SetLimit(v int) ListFilter {
	filter.Limit = v
	return filter
}
