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

package rf

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/czcorpus/kddclf/feats"
	"github.com/czcorpus/kddclf/model/clf"
	"github.com/goccy/go-json"
	randomforest "github.com/malaschitz/randomForest"
	"github.com/rs/zerolog/log"
)

type jsonizedRFModel struct {
	Forest          json.RawMessage     `json:"forest"`
	Features        []feats.FeatureSpec `json:"features"`
	VotingThreshold float64             `json:"votingThreshold"`
	Comment         string              `json:"comment"`
}

// Model wraps a Random Forest classifier
type Model struct {
	Forest          *randomforest.Forest
	FeatureSpecs    []feats.FeatureSpec
	NumTrees        int
	VotingThreshold float64
	Comment         string
}

// NewModel creates an untrained Random Forest model
func NewModel(specs []feats.FeatureSpec, numTrees int, votingThreshold float64) *Model {
	return &Model{
		Forest:          &randomforest.Forest{},
		FeatureSpecs:    specs,
		NumTrees:        numTrees,
		VotingThreshold: votingThreshold,
	}
}

func (m *Model) GetClassThreshold() float64 {
	return m.VotingThreshold
}

func (m *Model) SetClassThreshold(v float64) {
	m.VotingThreshold = v
}

func (m *Model) Features() []feats.FeatureSpec {
	return m.FeatureSpecs
}

func (m *Model) Info() string {
	return fmt.Sprintf(
		"RF model, num. trees: %d, num. features: %d, voting threshold: %.2f",
		m.NumTrees, len(m.FeatureSpecs), m.VotingThreshold,
	)
}

// Train builds the forest from already encoded vectors. It is meant
// for preparing fixtures and small experiments - production models
// are trained outside of kddclf.
func (m *Model) Train(x [][]float64, y []int, comment string) error {
	if len(x) == 0 {
		return fmt.Errorf("no training data provided")
	}
	if len(x) != len(y) {
		return fmt.Errorf("failed to train RF model - %d vectors but %d labels", len(x), len(y))
	}
	if m.NumTrees <= 0 {
		return fmt.Errorf("failed to train RF model - invalid value of NumTrees")
	}
	if w := feats.NumEncodedFeatures(m.FeatureSpecs); w != len(x[0]) {
		return fmt.Errorf("failed to train RF model - vectors have %d items, features define %d", len(x[0]), w)
	}
	m.Forest.Data = randomforest.ForestData{
		X:     x,
		Class: y,
	}
	m.Forest.Train(m.NumTrees)
	m.Comment = comment
	log.Debug().
		Int("dataSize", len(x)).
		Int("numTrees", m.NumTrees).
		Msg("trained RF model")
	return nil
}

func (m *Model) PredictRow(x []float64) clf.Prediction {
	votes := m.Forest.Vote(x)
	var score float64
	if len(votes) > 1 {
		score = votes[1]
	}
	return clf.Prediction{
		Votes:          votes,
		PredictedClass: clf.Decide(score, m.VotingThreshold),
	}
}

// SaveToFile saves the RF model to a file. Files with the .gz suffix
// are compressed.
func (m *Model) SaveToFile(filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to save RF model to a file: %w", err)
	}
	defer file.Close()

	var writer io.Writer = file
	if strings.HasSuffix(filePath, ".gz") || strings.HasSuffix(filePath, ".gzip") {
		gzWriter := gzip.NewWriter(file)
		defer gzWriter.Close()
		writer = gzWriter
	}

	tmpModel := jsonizedRFModel{
		Features:        m.FeatureSpecs,
		VotingThreshold: m.VotingThreshold,
		Comment:         m.Comment,
	}
	bytes, err := json.Marshal(&m.Forest)
	if err != nil {
		return fmt.Errorf("failed to save RF model to a file: %w", err)
	}
	tmpModel.Forest = bytes

	bytes, err = json.Marshal(tmpModel)
	if err != nil {
		return fmt.Errorf("failed to save RF model to a file: %w", err)
	}
	if _, err = writer.Write(bytes); err != nil {
		return fmt.Errorf("failed to save RF model to a file: %w", err)
	}
	return nil
}

// LoadFromFile loads a serialized forest together with
// its feature specification
func LoadFromFile(filePath string) (*Model, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var reader io.Reader = file
	if strings.HasSuffix(filePath, ".gz") || strings.HasSuffix(filePath, ".gzip") {
		gzReader, err := gzip.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gzReader.Close()
		reader = gzReader
	}

	var tmpModel jsonizedRFModel
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to load Random Forest model from file: %w", err)
	}
	if err := json.Unmarshal(data, &tmpModel); err != nil {
		return nil, fmt.Errorf("failed to load Random Forest model from file: %w", err)
	}
	if len(tmpModel.Features) == 0 {
		return nil, fmt.Errorf("failed to load Random Forest model from file: missing feature specification")
	}

	var forest randomforest.Forest
	if err := json.Unmarshal(tmpModel.Forest, &forest); err != nil {
		return nil, fmt.Errorf("failed to load Random Forest model from file: %w", err)
	}
	threshold := tmpModel.VotingThreshold
	if threshold == 0 {
		threshold = clf.DefaultClassThreshold
	}
	return &Model{
		Forest:          &forest,
		FeatureSpecs:    tmpModel.Features,
		NumTrees:        forest.NTrees,
		VotingThreshold: threshold,
		Comment:         tmpModel.Comment,
	}, nil
}
