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
	"fmt"
	"slices"

	"github.com/czcorpus/kddclf/recode"
	"github.com/czcorpus/kddclf/records"
	"github.com/rs/zerolog/log"
)

// Mode specifies whether binary recoding rules determine the dominant
// value from data (analysis of a training set) or use the one stored
// in the configuration (inference).
type Mode int

const (
	ModeInference Mode = iota
	ModeAnalysis
)

func (m Mode) String() string {
	if m == ModeAnalysis {
		return "analysis"
	}
	return "inference"
}

// Rules is a static assignment of column roles. It must be the same
// configuration the artifact models were trained with.
type Rules struct {

	// Numeric are raw numeric columns passed to models as they are
	Numeric []string `json:"numeric"`

	// Categorical are native categorical columns (protocol_type etc.)
	Categorical []string `json:"categorical"`

	Binary []recode.BinaryRule `json:"binary"`

	Band []recode.BandRule `json:"band"`
}

// Validate checks that the rules refer only to known source columns
// and that each output column is produced by a single rule.
func (r Rules) Validate() error {
	outputs := make(map[string]bool)
	checkSrc := func(name string) error {
		if records.SchemaIndex(name) < 0 && !outputs[name] {
			return fmt.Errorf("unknown source column %s", name)
		}
		return nil
	}
	checkOut := func(name string) error {
		if name == "" {
			return fmt.Errorf("empty output column name")
		}
		if outputs[name] {
			return fmt.Errorf("duplicate output column %s", name)
		}
		outputs[name] = true
		return nil
	}
	for _, c := range r.Numeric {
		if err := checkSrc(c); err != nil {
			return fmt.Errorf("invalid numeric feature: %w", err)
		}
	}
	for _, c := range r.Categorical {
		if err := checkSrc(c); err != nil {
			return fmt.Errorf("invalid categorical feature: %w", err)
		}
	}
	for _, b := range r.Binary {
		if err := checkSrc(b.Source); err != nil {
			return fmt.Errorf("invalid binary rule: %w", err)
		}
		if err := checkOut(b.Output); err != nil {
			return fmt.Errorf("invalid binary rule: %w", err)
		}
	}
	for _, b := range r.Band {
		if err := checkSrc(b.Source); err != nil {
			return fmt.Errorf("invalid band rule: %w", err)
		}
		if err := checkOut(b.Output); err != nil {
			return fmt.Errorf("invalid band rule: %w", err)
		}
		if b.Boundary <= 0 {
			return fmt.Errorf("invalid band rule for %s: boundary must be positive", b.Source)
		}
	}
	return nil
}

// Result is the output of Compose
type Result struct {

	// Categorical contains names of realized categorical columns.
	// Each name is present once; the order follows rule application.
	Categorical []string

	Outcomes []recode.Outcome
}

// Skipped returns outcomes of operations which did not produce
// their output column
func (res Result) Skipped() []recode.Outcome {
	ans := make([]recode.Outcome, 0, len(res.Outcomes))
	for _, o := range res.Outcomes {
		if o.Skipped {
			ans = append(ans, o)
		}
	}
	return ans
}

// NumUnknown returns total number of band-recoded values tagged
// as unknown
func (res Result) NumUnknown() int {
	var ans int
	for _, o := range res.Outcomes {
		ans += o.NumUnknown
	}
	return ans
}

// Compose applies the rules to the table in a fixed order: coercion
// of native categorical columns, binary recoding, band recoding.
// The table is modified in place; rows are never reordered.
func Compose(t *records.Table, rules Rules, mode Mode) (Result, error) {
	ans := Result{
		Categorical: make([]string, 0, len(rules.Categorical)+len(rules.Binary)+len(rules.Band)),
		Outcomes:    make([]recode.Outcome, 0, len(rules.Categorical)+len(rules.Binary)+len(rules.Band)),
	}
	add := func(out recode.Outcome) {
		ans.Outcomes = append(ans.Outcomes, out)
		if !out.Skipped && !slices.Contains(ans.Categorical, out.Column) {
			ans.Categorical = append(ans.Categorical, out.Column)
		}
	}

	for _, c := range rules.Categorical {
		out, err := recode.CoerceCategorical(t, c)
		if err != nil {
			return ans, fmt.Errorf("failed to compose features: %w", err)
		}
		add(out)
	}
	for _, rule := range rules.Binary {
		if mode == ModeInference {
			rule = rule.WithoutThreshold()
		}
		out, err := recode.BinaryRecode(t, rule)
		if err != nil {
			return ans, fmt.Errorf("failed to compose features: %w", err)
		}
		add(out)
	}
	for _, rule := range rules.Band {
		out, err := recode.BandRecode(t, rule)
		if err != nil {
			return ans, fmt.Errorf("failed to compose features: %w", err)
		}
		add(out)
	}
	log.Debug().
		Str("mode", mode.String()).
		Strs("categorical", ans.Categorical).
		Int("numSkipped", len(ans.Skipped())).
		Msg("composed feature set")
	return ans, nil
}

// Projection returns the list of columns a model is fed with: the static
// numeric features followed by the realized categorical ones. The order
// must match the one used during training - it is not fixed here
// in any way.
func Projection(rules Rules, categorical []string) []string {
	ans := make([]string, 0, len(rules.Numeric)+len(categorical))
	ans = append(ans, rules.Numeric...)
	ans = append(ans, categorical...)
	return ans
}

// UnknownColumns returns those of the specified categorical columns
// containing the recode.Unknown sentinel together with the number
// of affected rows.
func UnknownColumns(t *records.Table, names []string) map[string]int {
	ans := make(map[string]int)
	for _, name := range names {
		col, ok := t.Column(name)
		if !ok || !col.Categorical || col.Kind != records.KindText {
			continue
		}
		for _, v := range col.Str {
			if v == recode.Unknown {
				ans[name]++
			}
		}
	}
	return ans
}
