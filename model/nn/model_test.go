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

package nn

import (
	"path/filepath"
	"testing"

	"github.com/czcorpus/kddclf/feats"
	deep "github.com/patrikeh/go-deep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataStats(t *testing.T) {
	stats := DataStats([][]float64{{1, 10}, {-2, 10}, {3, 10}})
	assert.Equal(t, []FeatureStats{{Min: -2, Max: 3}, {Min: 10, Max: 10}}, stats)
	assert.Empty(t, DataStats(nil))
}

func TestNormalize(t *testing.T) {
	m := &Model{DataRanges: []FeatureStats{{Min: 0, Max: 10}, {Min: 5, Max: 5}}}
	assert.Equal(t, []float64{0.5, 0}, m.normalize([]float64{5, 7}))
}

func TestSaveLoadKeepsPredictions(t *testing.T) {
	specs := []feats.FeatureSpec{
		{Name: "duration", Kind: feats.FeatureNumeric},
		{Name: "protocol_type", Kind: feats.FeatureCategorical, Categories: []string{"icmp", "tcp"}},
	}
	net := deep.NewNeural(&deep.Config{
		Inputs:     3,
		Layout:     []int{4, 1},
		Activation: deep.ActivationReLU,
		Mode:       deep.ModeBinary,
		Weight:     deep.NewUniform(1.0, 0.0),
		Bias:       true,
	})
	m := NewModel(net, specs, []FeatureStats{{Min: 0, Max: 100}, {Min: 0, Max: 1}, {Min: 0, Max: 1}})
	path := filepath.Join(t.TempDir(), "model.nn.json")
	require.NoError(t, m.SaveToFile(path))

	m2, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, specs, m2.Features())
	assert.Equal(t, m.DataRanges, m2.DataRanges)
	for _, x := range [][]float64{{0, 1, 0}, {50, 0, 1}, {100, 0, 0}} {
		p1 := m.PredictRow(x)
		p2 := m2.PredictRow(x)
		assert.InDelta(t, p1.Votes[1], p2.Votes[1], 1e-9)
		assert.Equal(t, p1.PredictedClass, p2.PredictedClass)
		assert.GreaterOrEqual(t, p1.Votes[1], 0.0)
		assert.LessOrEqual(t, p1.Votes[1], 1.0)
	}
}
