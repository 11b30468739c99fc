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

package feats

import (
	"errors"
	"fmt"
	"slices"

	"github.com/czcorpus/kddclf/records"
)

var ErrFeatureMismatch = errors.New("feature set mismatch")

type FeatureKind string

const (
	FeatureNumeric     FeatureKind = "numeric"
	FeatureCategorical FeatureKind = "categorical"
)

// FeatureSpec describes a single model input column as it was
// used during training. For categorical features, Categories
// define the one-hot encoding (one vector item per category).
type FeatureSpec struct {
	Name       string      `json:"name" msgpack:"name"`
	Kind       FeatureKind `json:"kind" msgpack:"kind"`
	Categories []string    `json:"categories,omitempty" msgpack:"categories,omitempty"`
}

// Width returns number of vector items the feature is encoded into
func (fs FeatureSpec) Width() int {
	if fs.Kind == FeatureCategorical {
		return len(fs.Categories)
	}
	return 1
}

// NumEncodedFeatures returns the length of an encoded row
func NumEncodedFeatures(specs []FeatureSpec) int {
	var ans int
	for _, s := range specs {
		ans += s.Width()
	}
	return ans
}

// SpecNames returns names of features in their order
func SpecNames(specs []FeatureSpec) []string {
	ans := make([]string, len(specs))
	for i, s := range specs {
		ans[i] = s.Name
	}
	return ans
}

// CheckNames compares actual model input columns with the ones
// the model was trained with. Both the names and their order
// must be the same.
func CheckNames(specs []FeatureSpec, names []string) error {
	expected := SpecNames(specs)
	if slices.Equal(expected, names) {
		return nil
	}
	missing := make([]string, 0, 5)
	for _, e := range expected {
		if !slices.Contains(names, e) {
			missing = append(missing, e)
		}
	}
	extra := make([]string, 0, 5)
	for _, n := range names {
		if !slices.Contains(expected, n) {
			extra = append(extra, n)
		}
	}
	if len(missing) == 0 && len(extra) == 0 {
		return fmt.Errorf("%w: features are in a different order than during training", ErrFeatureMismatch)
	}
	return fmt.Errorf("%w: missing %v, unexpected %v", ErrFeatureMismatch, missing, extra)
}

// EncodeStats contains information about values the encoder
// could not represent.
type EncodeStats struct {

	// UnseenCategories maps feature name to the number of rows
	// with a category not known during training
	UnseenCategories map[string]int
}

func (es EncodeStats) NumUnseen() int {
	var ans int
	for _, v := range es.UnseenCategories {
		ans += v
	}
	return ans
}

// Encode converts the table into a row-major matrix according
// to the specs. Categorical features are one-hot encoded, categories
// not known during training are encoded as all zeros.
func Encode(t *records.Table, specs []FeatureSpec) ([][]float64, EncodeStats, error) {
	stats := EncodeStats{UnseenCategories: make(map[string]int)}
	width := NumEncodedFeatures(specs)
	ans := make([][]float64, t.NumRows())
	for i := range ans {
		ans[i] = make([]float64, width)
	}
	offset := 0
	for _, spec := range specs {
		col, ok := t.Column(spec.Name)
		if !ok {
			return nil, stats, fmt.Errorf("%w: missing column %s", ErrFeatureMismatch, spec.Name)
		}
		switch spec.Kind {
		case FeatureNumeric:
			for i := range ans {
				v, ok := col.Float(i)
				if !ok {
					return nil, stats, fmt.Errorf(
						"%w: column %s has non-numeric value '%s'", ErrFeatureMismatch, spec.Name, col.Key(i))
				}
				ans[i][offset] = v
			}
		case FeatureCategorical:
			catIdx := make(map[string]int, len(spec.Categories))
			for j, c := range spec.Categories {
				catIdx[c] = j
			}
			for i := range ans {
				j, ok := catIdx[col.Key(i)]
				if !ok {
					stats.UnseenCategories[spec.Name]++
					continue
				}
				ans[i][offset+j] = 1
			}
		default:
			return nil, stats, fmt.Errorf("%w: unknown kind of feature %s", ErrFeatureMismatch, spec.Name)
		}
		offset += spec.Width()
	}
	return ans, stats, nil
}

// Vocabulary derives feature specs from a (training) table. Categories
// are sorted so the result does not depend on row order.
func Vocabulary(t *records.Table, names []string) ([]FeatureSpec, error) {
	ans := make([]FeatureSpec, len(names))
	for i, name := range names {
		col, err := t.MustColumn(name)
		if err != nil {
			return nil, fmt.Errorf("failed to create vocabulary: %w", err)
		}
		if !col.Categorical {
			ans[i] = FeatureSpec{Name: name, Kind: FeatureNumeric}
			continue
		}
		seen := make(map[string]bool)
		cats := make([]string, 0, 8)
		for j := 0; j < col.Len(); j++ {
			k := col.Key(j)
			if !seen[k] {
				seen[k] = true
				cats = append(cats, k)
			}
		}
		slices.Sort(cats)
		ans[i] = FeatureSpec{Name: name, Kind: FeatureCategorical, Categories: cats}
	}
	return ans, nil
}
