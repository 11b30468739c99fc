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

package model

import (
	"path/filepath"
	"testing"

	"github.com/czcorpus/kddclf/feats"
	"github.com/czcorpus/kddclf/model/clf"
	"github.com/czcorpus/kddclf/records"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// protocolEstimator scores 1 for rows with the first category set
type protocolEstimator struct {
	specs     []feats.FeatureSpec
	threshold float64
	seen      [][]float64
}

func (pe *protocolEstimator) PredictRow(x []float64) clf.Prediction {
	pe.seen = append(pe.seen, x)
	return clf.Prediction{
		Votes:          []float64{1 - x[1], x[1]},
		PredictedClass: clf.Decide(x[1], pe.threshold),
	}
}

func (pe *protocolEstimator) Features() []feats.FeatureSpec {
	return pe.specs
}

func (pe *protocolEstimator) SetClassThreshold(v float64) {
	pe.threshold = v
}

func (pe *protocolEstimator) GetClassThreshold() float64 {
	return pe.threshold
}

func (pe *protocolEstimator) Info() string {
	return "test"
}

func projected(t *testing.T, names ...string) *records.Table {
	cols := map[string]*records.Column{
		"duration":      records.NewNumericColumn("duration", []float64{1, 2, 3}),
		"protocol_type": records.NewTextColumn("protocol_type", []string{"icmp", "tcp", "gre"}),
	}
	tab, err := records.NewTable()
	require.NoError(t, err)
	for _, n := range names {
		cols[n].Categorical = n == "protocol_type"
		require.NoError(t, tab.SetColumn(cols[n]))
	}
	return tab
}

func testEstimator() *protocolEstimator {
	return &protocolEstimator{
		specs: []feats.FeatureSpec{
			{Name: "duration", Kind: feats.FeatureNumeric},
			{Name: "protocol_type", Kind: feats.FeatureCategorical, Categories: []string{"icmp", "tcp"}},
		},
		threshold: 0.5,
	}
}

func TestArtifactPredict(t *testing.T) {
	est := testEstimator()
	a := NewArtifact("test", "test.json", est)
	ans, err := a.Predict(projected(t, "duration", "protocol_type"))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 0}, ans)
	assert.Equal(t, [][]float64{{1, 1, 0}, {2, 0, 1}, {3, 0, 0}}, est.seen)
}

func TestArtifactRejectsReorderedColumns(t *testing.T) {
	est := testEstimator()
	a := NewArtifact("test", "test.json", est)
	_, err := a.Predict(projected(t, "protocol_type", "duration"))
	assert.ErrorIs(t, err, feats.ErrFeatureMismatch)
	assert.Empty(t, est.seen)
}

func TestArtifactRejectsMissingColumn(t *testing.T) {
	a := NewArtifact("test", "test.json", testEstimator())
	_, err := a.Predict(projected(t, "duration"))
	assert.ErrorIs(t, err, feats.ErrFeatureMismatch)
}

func TestLoadUnknownType(t *testing.T) {
	_, err := Load("svm", filepath.Join(t.TempDir(), "model.bin"))
	assert.ErrorIs(t, err, ErrNoSuchModel)
}

func TestLoadMissingFile(t *testing.T) {
	for _, tp := range SupportedTypes() {
		_, err := Load(tp, filepath.Join(t.TempDir(), "model.bin"))
		assert.Error(t, err, tp)
	}
}
