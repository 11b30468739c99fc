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

// Package baseline contains rule-based classifiers which need
// no trained artifact. They serve as a reference for evaluating
// the real models.
package baseline

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/czcorpus/kddclf/records"
)

var ErrMissingColumn = errors.New("missing column required by baseline rule")

const (
	NameAlwaysGenuine   = "always-genuine"
	NameAlwaysMalicious = "always-malicious"
	NameRandom          = "random"
	NameRiskyProtocol   = "risky-protocol"
)

// Rule is a deterministic (or seeded) function from a raw table
// to a vector of labels (0 = genuine, 1 = malicious).
type Rule interface {
	Name() string
	Info() string

	// RequiredColumns lists raw table columns the rule reads
	RequiredColumns() []string

	Predict(t *records.Table) ([]int, error)
}

func checkColumns(rule Rule, t *records.Table) error {
	for _, c := range rule.RequiredColumns() {
		if _, ok := t.Column(c); !ok {
			return fmt.Errorf("%w: rule %s needs %s", ErrMissingColumn, rule.Name(), c)
		}
	}
	return nil
}

// -------------------------

// Constant labels every connection the same way.
type Constant struct {
	Label int
}

func (c Constant) Name() string {
	if c.Label == 1 {
		return NameAlwaysMalicious
	}
	return NameAlwaysGenuine
}

func (c Constant) Info() string {
	return fmt.Sprintf("Constant classifier (always %d)", c.Label)
}

func (c Constant) RequiredColumns() []string {
	return []string{}
}

func (c Constant) Predict(t *records.Table) ([]int, error) {
	ans := make([]int, t.NumRows())
	for i := range ans {
		ans[i] = c.Label
	}
	return ans, nil
}

// -------------------------

// Random labels connections uniformly at random. With Seed == 0,
// the global generator is used.
type Random struct {
	Seed uint64
}

func (r Random) Name() string {
	return NameRandom
}

func (r Random) Info() string {
	return "Uniform random classifier"
}

func (r Random) RequiredColumns() []string {
	return []string{}
}

func (r Random) Predict(t *records.Table) ([]int, error) {
	intN := rand.IntN
	if r.Seed != 0 {
		intN = rand.New(rand.NewPCG(r.Seed, r.Seed)).IntN
	}
	ans := make([]int, t.NumRows())
	for i := range ans {
		ans[i] = intN(2)
	}
	return ans, nil
}

// -------------------------

// RiskyProtocol marks all connections using a protocol considered
// risky as malicious.
type RiskyProtocol struct {
	Protocol string
}

func (rp RiskyProtocol) protocol() string {
	if rp.Protocol == "" {
		return "icmp"
	}
	return rp.Protocol
}

func (rp RiskyProtocol) Name() string {
	return NameRiskyProtocol
}

func (rp RiskyProtocol) Info() string {
	return fmt.Sprintf("Risky protocol classifier (%s = malicious)", rp.protocol())
}

func (rp RiskyProtocol) RequiredColumns() []string {
	return []string{records.ColProtocolType}
}

func (rp RiskyProtocol) Predict(t *records.Table) ([]int, error) {
	if err := checkColumns(rp, t); err != nil {
		return nil, err
	}
	col, _ := t.Column(records.ColProtocolType)
	risky := rp.protocol()
	ans := make([]int, t.NumRows())
	for i := range ans {
		if col.Key(i) == risky {
			ans[i] = 1
		}
	}
	return ans, nil
}

// Defaults returns all the built-in rules in their canonical order
func Defaults() []Rule {
	return []Rule{
		Constant{Label: 0},
		Constant{Label: 1},
		Random{},
		RiskyProtocol{},
	}
}
