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
	"fmt"
	"io"
	"os"

	"github.com/czcorpus/kddclf/feats"
	"github.com/czcorpus/kddclf/model/clf"
	"github.com/goccy/go-json"
	deep "github.com/patrikeh/go-deep"
)

// FeatureStats is a value range of a single encoded feature
// used for min-max normalization
type FeatureStats struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type jsonizedModel struct {
	NeuralNet      *deep.Dump          `json:"neuralNet"`
	DataRanges     []FeatureStats      `json:"dataRanges"`
	Features       []feats.FeatureSpec `json:"features"`
	ClassThreshold float64             `json:"classThreshold"`
}

type Model struct {
	NeuralNet      *deep.Neural
	DataRanges     []FeatureStats
	FeatureSpecs   []feats.FeatureSpec
	ClassThreshold float64
}

func (m *Model) GetClassThreshold() float64 {
	return m.ClassThreshold
}

func (m *Model) SetClassThreshold(v float64) {
	m.ClassThreshold = v
}

func (m *Model) Features() []feats.FeatureSpec {
	return m.FeatureSpecs
}

func (m *Model) Info() string {
	return fmt.Sprintf(
		"NN model, layout: #%v, num. features: %d, class threshold: %.2f",
		m.NeuralNet.Config.Layout, len(m.FeatureSpecs), m.ClassThreshold,
	)
}

// DataStats computes value ranges of encoded vectors
func DataStats(data [][]float64) []FeatureStats {
	if len(data) == 0 {
		return []FeatureStats{}
	}
	stats := make([]FeatureStats, len(data[0]))
	for i := range stats {
		stats[i].Min = data[0][i]
		stats[i].Max = data[0][i]
	}
	for _, item := range data {
		for i := 0; i < len(item) && i < len(stats); i++ {
			if item[i] > stats[i].Max {
				stats[i].Max = item[i]
			}
			if item[i] < stats[i].Min {
				stats[i].Min = item[i]
			}
		}
	}
	return stats
}

func (m *Model) normalize(data []float64) []float64 {
	ans := make([]float64, len(data))
	for i := range data {
		if i >= len(m.DataRanges) {
			ans[i] = data[i]
			continue
		}
		min := m.DataRanges[i].Min
		max := m.DataRanges[i].Max
		if max == min {
			ans[i] = 0.0 // constant feature

		} else {
			ans[i] = (data[i] - min) / (max - min)
		}
	}
	return ans
}

func (m *Model) PredictRow(x []float64) clf.Prediction {
	out := m.NeuralNet.Predict(m.normalize(x))
	return clf.Prediction{
		Votes:          []float64{1 - out[0], out[0]},
		PredictedClass: clf.Decide(out[0], m.ClassThreshold),
	}
}

func (m *Model) SaveToFile(filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to save NN model to a file: %w", err)
	}
	defer file.Close()
	tmpModel := jsonizedModel{
		NeuralNet:      m.NeuralNet.Dump(),
		DataRanges:     m.DataRanges,
		Features:       m.FeatureSpecs,
		ClassThreshold: m.ClassThreshold,
	}
	bytes, err := json.Marshal(tmpModel)
	if err != nil {
		return fmt.Errorf("failed to save NN to file: %w", err)
	}
	if _, err = file.Write(bytes); err != nil {
		return fmt.Errorf("failed to save NN model to a file: %w", err)
	}
	return nil
}

func LoadFromFile(filePath string) (*Model, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var model jsonizedModel
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to load Neural Network model from file %s: %w", filePath, err)
	}
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("failed to load Neural Network model from file %s: %w", filePath, err)
	}
	if model.NeuralNet == nil || len(model.Features) == 0 {
		return nil, fmt.Errorf("failed to load Neural Network model from file %s: incomplete model", filePath)
	}
	threshold := model.ClassThreshold
	if threshold == 0 {
		threshold = clf.DefaultClassThreshold
	}
	return &Model{
		NeuralNet:      deep.FromDump(model.NeuralNet),
		DataRanges:     model.DataRanges,
		FeatureSpecs:   model.Features,
		ClassThreshold: threshold,
	}, nil
}

// NewModel wraps an existing network
func NewModel(net *deep.Neural, specs []feats.FeatureSpec, ranges []FeatureStats) *Model {
	return &Model{
		NeuralNet:      net,
		DataRanges:     ranges,
		FeatureSpecs:   specs,
		ClassThreshold: clf.DefaultClassThreshold,
	}
}
