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

// Package recode contains transformations turning raw columns
// of a records.Table into categorical features.
package recode

import (
	"errors"
	"fmt"

	"github.com/czcorpus/kddclf/records"
	"github.com/rs/zerolog/log"
)

const (
	// Unknown is assigned to values which cannot be put into any band
	Unknown = "unknown"

	DefaultMinorityLabel = "other"

	// DefaultBinaryThreshold is the minimum relative frequency
	// the dominant value must exceed (during analysis) so the column
	// can be collapsed into "dominant vs. other"
	DefaultBinaryThreshold = 0.99
)

var (
	ErrMissingDominant = errors.New("dominant value not specified")
	ErrInvalidRule     = errors.New("invalid recoding rule")
)

// Outcome describes what a recoding operation did to a table.
type Outcome struct {

	// Column is the name of the produced (or coerced) column
	Column string

	// Skipped is true if the operation deliberately did nothing
	// (e.g. a dominant value is not frequent enough)
	Skipped bool

	// Reason explains a skipped operation
	Reason string

	// DominantValue is the value binary recoding kept
	DominantValue string

	// DominantFreq is the relative frequency of DominantValue
	// (analysis mode only)
	DominantFreq float64

	// NumDistinct is the number of distinct source values (analysis mode only)
	NumDistinct int

	// NumUnknown is the number of rows tagged as Unknown
	NumUnknown int
}

// ------------------------

// CoerceCategorical marks an existing column as categorical.
// Values are not changed.
func CoerceCategorical(t *records.Table, column string) (Outcome, error) {
	col, err := t.MustColumn(column)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to coerce column to categorical: %w", err)
	}
	col.Categorical = true
	return Outcome{Column: column}, nil
}

// ------------------------

// BinaryRule collapses a column into two categories - its dominant value
// and a MinorityLabel for everything else.
//
// With Threshold > 0 (analysis of a training set), the dominant value
// is the column mode and the recoding is performed only if the mode's
// relative frequency is strictly greater than the threshold.
// With Threshold == 0 (inference), the mode is never recomputed and
// Dominant must contain the value established during training.
type BinaryRule struct {
	Source        string  `json:"source"`
	Output        string  `json:"output"`
	Threshold     float64 `json:"threshold,omitempty"`
	Dominant      string  `json:"dominant,omitempty"`
	MinorityLabel string  `json:"minorityLabel,omitempty"`
}

func (rule BinaryRule) minorityLabel() string {
	if rule.MinorityLabel == "" {
		return DefaultMinorityLabel
	}
	return rule.MinorityLabel
}

// WithoutThreshold returns a copy of the rule suitable for inference
func (rule BinaryRule) WithoutThreshold() BinaryRule {
	rule.Threshold = 0
	return rule
}

type valueFreq struct {
	key   string
	count int
}

// frequencies returns distinct values of a column with their counts,
// in order of their first occurrence
func frequencies(col *records.Column) []valueFreq {
	idx := make(map[string]int)
	ans := make([]valueFreq, 0, 10)
	for i := 0; i < col.Len(); i++ {
		k := col.Key(i)
		pos, ok := idx[k]
		if !ok {
			idx[k] = len(ans)
			ans = append(ans, valueFreq{key: k, count: 1})
			continue
		}
		ans[pos].count++
	}
	return ans
}

// mode returns the most frequent value. Ties are resolved in favor
// of the value which occurs first.
func mode(freqs []valueFreq) valueFreq {
	var best valueFreq
	for _, v := range freqs {
		if v.count > best.count {
			best = v
		}
	}
	return best
}

// canonicalDominant converts a configured dominant value to the form
// produced by records.Column.Key so e.g. "0.0" matches numeric zero.
func canonicalDominant(col *records.Column, v string) string {
	if col.Kind != records.KindNumeric {
		return v
	}
	tmp := records.NewTextColumn("", []string{v})
	if fv, ok := tmp.Float(0); ok {
		return records.FormatNumber(fv)
	}
	return v
}

// BinaryRecode applies a BinaryRule to a table. A skipped recoding
// is not an error - check Outcome.Skipped.
func BinaryRecode(t *records.Table, rule BinaryRule) (Outcome, error) {
	if rule.Output == "" {
		return Outcome{}, fmt.Errorf("%w: missing output column for %s", ErrInvalidRule, rule.Source)
	}
	col, err := t.MustColumn(rule.Source)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to recode to binary feature: %w", err)
	}
	ans := Outcome{Column: rule.Output}
	var dominant string

	if rule.Threshold > 0 {
		freqs := frequencies(col)
		ans.NumDistinct = len(freqs)
		if col.Len() == 0 {
			ans.Skipped = true
			ans.Reason = "no data to determine the most frequent value"
			log.Warn().
				Str("column", rule.Source).
				Msg("no recoding done - empty column")
			return ans, nil
		}
		best := mode(freqs)
		ans.DominantValue = best.key
		ans.DominantFreq = float64(best.count) / float64(col.Len())
		if ans.DominantFreq <= rule.Threshold {
			ans.Skipped = true
			ans.Reason = fmt.Sprintf(
				"the value %s occurs in %.2f%% of rows, threshold is %.2f%%",
				best.key, ans.DominantFreq*100, rule.Threshold*100,
			)
			log.Warn().
				Str("column", rule.Source).
				Str("value", best.key).
				Float64("freq", ans.DominantFreq).
				Float64("threshold", rule.Threshold).
				Msg("no recoding done, the most frequent value is not dominant enough")
			return ans, nil
		}
		dominant = best.key
		log.Debug().
			Str("column", rule.Source).
			Str("value", best.key).
			Float64("freq", ans.DominantFreq).
			Int("numDistinct", ans.NumDistinct).
			Msg("found dominant value")

	} else {
		if rule.Dominant == "" {
			return Outcome{}, fmt.Errorf("failed to recode %s: %w", rule.Source, ErrMissingDominant)
		}
		dominant = canonicalDominant(col, rule.Dominant)
		ans.DominantValue = dominant
	}

	minority := rule.minorityLabel()
	values := make([]string, col.Len())
	for i := range values {
		if k := col.Key(i); k == dominant {
			values[i] = k

		} else {
			values[i] = minority
		}
	}
	out := records.NewTextColumn(rule.Output, values)
	out.Categorical = true
	if err := t.SetColumn(out); err != nil {
		return Outcome{}, fmt.Errorf("failed to recode to binary feature: %w", err)
	}
	log.Debug().
		Str("column", rule.Source).
		Str("output", rule.Output).
		Str("dominant", dominant).
		Str("minority", minority).
		Msg("recoded to binary feature")
	return ans, nil
}
