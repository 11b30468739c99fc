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

package main

import (
	"fmt"
	"os"

	"github.com/czcorpus/kddclf/cnf"
	"github.com/czcorpus/kddclf/feats"
	"github.com/czcorpus/kddclf/recode"
	"github.com/czcorpus/kddclf/records"
	"github.com/rs/zerolog/log"
	"github.com/vmihailenco/msgpack/v5"
)

const targetColumn = "target"

// featureFile is a training set for an external trainer. The features
// must be stored with the trained model so kddclf is able to encode
// records the same way.
type featureFile struct {
	Features []feats.FeatureSpec `msgpack:"features"`
	X        [][]float64         `msgpack:"x"`
	Label    []int               `msgpack:"label"`

	// Dominant maps binary feature names to their dominant values
	// found in the training set
	Dominant map[string]string `msgpack:"dominant"`
}

func buildFeatureFile(t *records.Table, rules feats.Rules) (featureFile, error) {
	if _, err := recode.BinaryTarget(t, records.ColAttack, targetColumn); err != nil {
		return featureFile{}, fmt.Errorf("failed to build features: %w", err)
	}
	res, err := feats.Compose(t, rules, feats.ModeAnalysis)
	if err != nil {
		return featureFile{}, fmt.Errorf("failed to build features: %w", err)
	}
	for _, out := range res.Skipped() {
		log.Info().Str("feature", out.Column).Str("reason", out.Reason).Msg("feature left out")
	}
	specs, err := feats.Vocabulary(t, feats.Projection(rules, res.Categorical))
	if err != nil {
		return featureFile{}, fmt.Errorf("failed to build features: %w", err)
	}
	x, _, err := feats.Encode(t, specs)
	if err != nil {
		return featureFile{}, fmt.Errorf("failed to build features: %w", err)
	}
	target, _ := t.Column(targetColumn)
	ans := featureFile{
		Features: specs,
		X:        x,
		Label:    make([]int, target.Len()),
		Dominant: make(map[string]string),
	}
	for i, v := range target.Num {
		ans.Label[i] = int(v)
	}
	for _, out := range res.Outcomes {
		if !out.Skipped && out.DominantValue != "" {
			ans.Dominant[out.Column] = out.DominantValue
		}
	}
	return ans, nil
}

func runActionFeaturize(conf *cnf.Conf, srcPath, dstPath string) error {
	t, err := records.LoadFile(srcPath)
	if err != nil {
		return err
	}
	ff, err := buildFeatureFile(t, *conf.Features)
	if err != nil {
		return err
	}
	srz, err := msgpack.Marshal(ff)
	if err != nil {
		return fmt.Errorf("failed to serialize features: %w", err)
	}
	if err := os.WriteFile(dstPath, srz, 0644); err != nil {
		return fmt.Errorf("failed to save features to a file: %w", err)
	}
	log.Info().
		Str("file", dstPath).
		Int("numRows", len(ff.X)).
		Int("numFeatures", len(ff.Features)).
		Int("numEncoded", feats.NumEncodedFeatures(ff.Features)).
		Msg("features exported")
	return nil
}
