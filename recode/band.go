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

package recode

import (
	"fmt"

	"github.com/czcorpus/kddclf/records"
	"github.com/rs/zerolog/log"
)

const (
	BandZero = iota
	BandLow
	BandHigh
)

// DefaultBandLabels are used when a BandRule does not specify its own labels
var DefaultBandLabels = [3]string{"none", "low", "high"}

// BandRule splits a numeric column into three bands:
//
//	value == 0               -> Labels[0]
//	0 < value <= Boundary    -> Labels[1]
//	value > Boundary         -> Labels[2]
type BandRule struct {
	Source   string    `json:"source"`
	Output   string    `json:"output"`
	Boundary float64   `json:"boundary"`
	Labels   [3]string `json:"labels"`
}

func (rule BandRule) labels() [3]string {
	if rule.Labels == [3]string{} {
		return DefaultBandLabels
	}
	return rule.Labels
}

// Band returns the index of a band the value belongs to.
// The ok is false for values matching no band (negative ones).
func (rule BandRule) Band(v float64) (band int, ok bool) {
	switch {
	case v == 0:
		return BandZero, true
	case v > 0 && v <= rule.Boundary:
		return BandLow, true
	case v > rule.Boundary:
		return BandHigh, true
	}
	return -1, false
}

// BandRecode applies a BandRule to a table. Rows which cannot be
// assigned to any band are tagged with Unknown and reported via
// Outcome.NumUnknown and a warning - a batch is never stopped because
// of them.
func BandRecode(t *records.Table, rule BandRule) (Outcome, error) {
	if rule.Output == "" {
		return Outcome{}, fmt.Errorf("%w: missing output column for %s", ErrInvalidRule, rule.Source)
	}
	if rule.Boundary <= 0 {
		return Outcome{}, fmt.Errorf(
			"%w: boundary of %s must be positive, got %v", ErrInvalidRule, rule.Source, rule.Boundary)
	}
	col, err := t.MustColumn(rule.Source)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to recode to categories: %w", err)
	}
	labels := rule.labels()
	ans := Outcome{Column: rule.Output}
	values := make([]string, col.Len())
	for i := range values {
		v, ok := col.Float(i)
		if !ok {
			values[i] = Unknown
			ans.NumUnknown++
			continue
		}
		band, ok := rule.Band(v)
		if !ok {
			values[i] = Unknown
			ans.NumUnknown++
			continue
		}
		values[i] = labels[band]
	}
	out := records.NewTextColumn(rule.Output, values)
	out.Categorical = true
	if err := t.SetColumn(out); err != nil {
		return Outcome{}, fmt.Errorf("failed to recode to categories: %w", err)
	}
	if ans.NumUnknown > 0 {
		log.Warn().
			Str("column", rule.Source).
			Str("output", rule.Output).
			Int("numUnknown", ans.NumUnknown).
			Msgf("some values could not be assigned to the new categories, using '%s'", Unknown)

	} else {
		log.Debug().
			Str("output", rule.Output).
			Strs("categories", labels[:]).
			Msg("successfully recoded")
	}
	return ans, nil
}

// BinaryTarget derives a 0/1 target column from an attack label
// column ("normal" = 0, anything else = 1).
func BinaryTarget(t *records.Table, source, output string) (Outcome, error) {
	col, err := t.MustColumn(source)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to recode binary target: %w", err)
	}
	values := make([]float64, col.Len())
	for i := range values {
		if col.Key(i) != "normal" {
			values[i] = 1
		}
	}
	out := records.NewNumericColumn(output, values)
	out.Categorical = true
	if err := t.SetColumn(out); err != nil {
		return Outcome{}, fmt.Errorf("failed to recode binary target: %w", err)
	}
	return Outcome{Column: output}, nil
}
