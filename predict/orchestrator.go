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

// Package predict runs a chosen model over a record table
package predict

import (
	"errors"
	"fmt"

	"github.com/czcorpus/kddclf/feats"
	"github.com/czcorpus/kddclf/records"
	"github.com/czcorpus/kddclf/registry"
	"github.com/rs/zerolog/log"
)

var ErrMisaligned = errors.New("number of predictions does not match number of records")

// Vector contains one label per input row, in the row order
type Vector []int

func (v Vector) NumPositive() int {
	var ans int
	for _, x := range v {
		ans += x
	}
	return ans
}

// Orchestrator dispatches prediction either to a baseline rule
// (working with the raw table) or to a model artifact (working with
// composed and projected features).
type Orchestrator struct {
	rules feats.Rules
}

// Predict labels all the table rows. For artifact-backed models,
// the table is modified by the feature composition.
func (o *Orchestrator) Predict(h registry.Handle, t *records.Table) (Vector, error) {
	var ans Vector
	switch th := h.(type) {
	case registry.BaselineRule:
		labels, err := th.Rule.Predict(t)
		if err != nil {
			return nil, fmt.Errorf("failed to predict: %w", err)
		}
		ans = labels

	case registry.ArtifactRef:
		artifact, err := th.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to predict: %w", err)
		}
		res, err := feats.Compose(t, o.rules, feats.ModeInference)
		if err != nil {
			return nil, fmt.Errorf("failed to predict: %w", err)
		}
		for col, num := range feats.UnknownColumns(t, res.Categorical) {
			log.Warn().
				Str("column", col).
				Int("numRows", num).
				Msg("feature contains values outside of known categories, predictions may be unreliable")
		}
		projected, err := t.Project(feats.Projection(o.rules, res.Categorical))
		if err != nil {
			return nil, fmt.Errorf("failed to predict: %w", err)
		}
		labels, err := artifact.Predict(projected)
		if err != nil {
			return nil, fmt.Errorf("failed to predict: %w", err)
		}
		ans = labels

	default:
		return nil, fmt.Errorf("failed to predict: unsupported model handle %T", h)
	}
	if len(ans) != t.NumRows() {
		return nil, fmt.Errorf("%w: %d records, %d predictions", ErrMisaligned, t.NumRows(), len(ans))
	}
	return ans, nil
}

func NewOrchestrator(rules feats.Rules) *Orchestrator {
	return &Orchestrator{rules: rules}
}
