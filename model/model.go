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

// Package model connects trained classifiers stored as files
// to the record table world.
package model

import (
	"errors"
	"fmt"

	"github.com/czcorpus/kddclf/feats"
	"github.com/czcorpus/kddclf/model/clf"
	"github.com/czcorpus/kddclf/model/nn"
	"github.com/czcorpus/kddclf/model/rf"
	"github.com/czcorpus/kddclf/model/xg"
	"github.com/czcorpus/kddclf/records"
	"github.com/rs/zerolog/log"
)

var ErrNoSuchModel = errors.New("no such model")

const (
	TypeRandomForest  = "rf"
	TypeNeuralNetwork = "nn"
	TypeXGBoost       = "xg"
)

// SupportedTypes lists all the recognized values of artifact type
func SupportedTypes() []string {
	return []string{TypeRandomForest, TypeNeuralNetwork, TypeXGBoost}
}

// Artifact is a loaded classifier able to label projected
// record tables.
type Artifact struct {
	Type      string
	Path      string
	estimator clf.Estimator
}

// NewArtifact wraps an already loaded estimator
func NewArtifact(tp, path string, est clf.Estimator) *Artifact {
	return &Artifact{Type: tp, Path: path, estimator: est}
}

func (a *Artifact) Estimator() clf.Estimator {
	return a.estimator
}

func (a *Artifact) Info() string {
	return a.estimator.Info()
}

// Predict labels every row of a projected table. The table columns must
// be exactly the ones (and in the order) the model was trained with.
// Either all rows are labeled or an error is returned.
func (a *Artifact) Predict(t *records.Table) ([]int, error) {
	specs := a.estimator.Features()
	if err := feats.CheckNames(specs, t.Names()); err != nil {
		return nil, fmt.Errorf("failed to apply model %s: %w", a.Path, err)
	}
	x, stats, err := feats.Encode(t, specs)
	if err != nil {
		return nil, fmt.Errorf("failed to apply model %s: %w", a.Path, err)
	}
	for name, num := range stats.UnseenCategories {
		log.Warn().
			Str("column", name).
			Int("numRows", num).
			Msg("values not known to the model, encoding as no category")
	}
	ans := make([]int, len(x))
	for i, row := range x {
		ans[i] = a.estimator.PredictRow(row).PredictedClass
	}
	return ans, nil
}

// Load loads a classifier of the specified type from a file
func Load(modelType, modelPath string) (*Artifact, error) {
	var est clf.Estimator
	var err error

	switch modelType {
	case TypeRandomForest:
		est, err = rf.LoadFromFile(modelPath)
	case TypeNeuralNetwork:
		est, err = nn.LoadFromFile(modelPath)
	case TypeXGBoost:
		est, err = xg.LoadFromFile(modelPath)
	default:
		err = fmt.Errorf("%w: %s", ErrNoSuchModel, modelType)
	}
	if err != nil {
		return nil, err
	}
	return NewArtifact(modelType, modelPath, est), nil
}
