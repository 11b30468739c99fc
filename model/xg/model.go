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

package xg

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/czcorpus/cnc-gokit/fs"
	"github.com/czcorpus/kddclf/feats"
	"github.com/czcorpus/kddclf/model/clf"
	"github.com/dmitryikh/leaves"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

// Metadata is stored next to a LightGBM text model by the training
// script. Besides the training params, it contains the feature
// specification the model was trained with.
type Metadata struct {
	Features        []feats.FeatureSpec `json:"features"`
	ClassThreshold  float64             `json:"classThreshold"`
	Objective       string              `json:"objective"`
	Metric          [2]string           `json:"metric"`
	ScalePosWeight  float64             `json:"scale_pos_weight"`
	MaxDepth        int                 `json:"max_depth"`
	LearningRate    float64             `json:"learning_rate"`
	NumLeaves       int                 `json:"num_leaves"`
	MinChildSamples int                 `json:"min_child_samples"`
	Subsample       float64             `json:"subsample"`
	ColsampleBytree float64             `json:"colsample_bytree"`
	RandomState     int                 `json:"random_state"`
}

type Model struct {
	ClassThreshold float64
	xgboost        *leaves.Ensemble
	metadata       Metadata
}

func (m *Model) PredictRow(x []float64) clf.Prediction {
	pred := m.xgboost.PredictSingle(x, 0)
	return clf.Prediction{
		Votes:          []float64{1 - pred, pred},
		PredictedClass: clf.Decide(pred, m.ClassThreshold),
	}
}

func (m *Model) Features() []feats.FeatureSpec {
	return m.metadata.Features
}

func (m *Model) SetClassThreshold(v float64) {
	m.ClassThreshold = v
}

func (m *Model) GetClassThreshold() float64 {
	return m.ClassThreshold
}

func (m *Model) Info() string {
	return fmt.Sprintf(
		"XGBoost model, metric: %s / %s, NL: %d, SPV: %.2f, LR: %.2f",
		m.metadata.Metric[0],
		m.metadata.Metric[1],
		m.metadata.NumLeaves,
		m.metadata.ScalePosWeight,
		m.metadata.LearningRate,
	)
}

// MetadataPath returns path of the metadata file belonging
// to a model file (model.txt.gz -> model.metadata.json)
func MetadataPath(modelPath string) string {
	ext := filepath.Ext(modelPath)
	if ext == ".gz" || ext == ".gzip" {
		modelPath = modelPath[:len(modelPath)-len(ext)]
		ext = filepath.Ext(modelPath)
	}
	return modelPath[:len(modelPath)-len(ext)] + ".metadata.json"
}

func loadMetadata(modelPath string) (Metadata, error) {
	var mt Metadata
	metadataFilePath := MetadataPath(modelPath)
	isFile, err := fs.IsFile(metadataFilePath)
	if err != nil {
		return mt, fmt.Errorf("failed to load XG model metadata: %w", err)
	}
	if !isFile {
		return mt, fmt.Errorf("failed to load XG model metadata: file %s not found", metadataFilePath)
	}
	data, err := os.ReadFile(metadataFilePath)
	if err != nil {
		return mt, fmt.Errorf("failed to load XG model metadata: %w", err)
	}
	if err := json.Unmarshal(data, &mt); err != nil {
		return mt, fmt.Errorf("failed to load XG model metadata: %w", err)
	}
	if len(mt.Features) == 0 {
		return mt, fmt.Errorf("failed to load XG model metadata: missing feature specification")
	}
	return mt, nil
}

func LoadFromFile(filePath string) (*Model, error) {
	metadata, err := loadMetadata(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load XG model: %w", err)
	}
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

	model, err := leaves.LGEnsembleFromReader(bufio.NewReader(reader), true)
	if err != nil {
		return nil, fmt.Errorf("failed to load XG model: %w", err)
	}
	if w := feats.NumEncodedFeatures(metadata.Features); w != model.NFeatures() {
		return nil, fmt.Errorf(
			"failed to load XG model: metadata define %d encoded features, model expects %d", w, model.NFeatures())
	}
	threshold := metadata.ClassThreshold
	if threshold == 0 {
		threshold = clf.DefaultClassThreshold
	}
	log.Debug().
		Str("path", filePath).
		Int("numFeatures", model.NFeatures()).
		Msg("loaded XG model")
	return &Model{xgboost: model, metadata: metadata, ClassThreshold: threshold}, nil
}
