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
	"testing"

	"github.com/czcorpus/kddclf/recode"
	"github.com/czcorpus/kddclf/records"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTable(t *testing.T) *records.Table {
	tab, err := records.NewTable(
		records.NewNumericColumn("duration", []float64{0, 12, 3, 0}),
		records.NewTextColumn(records.ColProtocolType, []string{"tcp", "udp", "icmp", "tcp"}),
		records.NewNumericColumn("land", []float64{0, 0, 1, 0}),
		records.NewNumericColumn("hot", []float64{0, 2, 30, -1}),
	)
	require.NoError(t, err)
	return tab
}

func testRules() Rules {
	return Rules{
		Numeric:     []string{"duration"},
		Categorical: []string{records.ColProtocolType},
		Binary: []recode.BinaryRule{
			{Source: "land", Output: "land_bin", Threshold: 0.5, Dominant: "0"},
		},
		Band: []recode.BandRule{
			{Source: "hot", Output: "hot_cat", Boundary: 5},
		},
	}
}

func TestComposeInference(t *testing.T) {
	tab := testTable(t)
	res, err := Compose(tab, testRules(), ModeInference)
	require.NoError(t, err)
	assert.Equal(t, []string{records.ColProtocolType, "land_bin", "hot_cat"}, res.Categorical)
	assert.Len(t, res.Outcomes, 3)
	assert.Empty(t, res.Skipped())
	assert.Equal(t, 1, res.NumUnknown())

	land, ok := tab.Column("land_bin")
	require.True(t, ok)
	assert.Equal(t, []string{"0", "0", "other", "0"}, land.Str)
	hot, ok := tab.Column("hot_cat")
	require.True(t, ok)
	assert.Equal(t, []string{"none", "low", "high", recode.Unknown}, hot.Str)
	assert.Equal(t, map[string]int{"hot_cat": 1}, UnknownColumns(tab, res.Categorical))
}

func TestComposeAnalysisSkipsNonDominant(t *testing.T) {
	tab := testTable(t)
	rules := testRules()
	rules.Binary[0].Threshold = 0.9
	res, err := Compose(tab, rules, ModeAnalysis)
	require.NoError(t, err)
	assert.Equal(t, []string{records.ColProtocolType, "hot_cat"}, res.Categorical)
	require.Len(t, res.Skipped(), 1)
	assert.Equal(t, "land_bin", res.Skipped()[0].Column)
	_, ok := tab.Column("land_bin")
	assert.False(t, ok)
}

func TestComposeDeduplicatesCategorical(t *testing.T) {
	tab := testTable(t)
	rules := testRules()
	rules.Categorical = []string{records.ColProtocolType, records.ColProtocolType}
	res, err := Compose(tab, rules, ModeInference)
	require.NoError(t, err)
	assert.Equal(t, []string{records.ColProtocolType, "land_bin", "hot_cat"}, res.Categorical)
}

func TestComposeMissingColumn(t *testing.T) {
	tab := testTable(t)
	rules := testRules()
	rules.Categorical = []string{records.ColService}
	_, err := Compose(tab, rules, ModeInference)
	assert.ErrorIs(t, err, records.ErrSchema)
}

func TestComposeKeepsRowOrder(t *testing.T) {
	tab := testTable(t)
	_, err := Compose(tab, testRules(), ModeInference)
	require.NoError(t, err)
	proto, _ := tab.Column(records.ColProtocolType)
	assert.Equal(t, []string{"tcp", "udp", "icmp", "tcp"}, proto.Str)
	assert.True(t, proto.Categorical)
}

func TestProjection(t *testing.T) {
	rules := testRules()
	assert.Equal(
		t,
		[]string{"duration", "protocol_type", "hot_cat"},
		Projection(rules, []string{"protocol_type", "hot_cat"}),
	)
}

func TestRulesValidate(t *testing.T) {
	assert.NoError(t, testRules().Validate())
	assert.NoError(t, DefaultRules().Validate())

	rules := testRules()
	rules.Numeric = append(rules.Numeric, "foo")
	assert.Error(t, rules.Validate())

	rules = testRules()
	rules.Band = append(rules.Band, recode.BandRule{Source: "hot", Output: "land_bin", Boundary: 3})
	assert.Error(t, rules.Validate())

	rules = testRules()
	rules.Band[0].Boundary = 0
	assert.Error(t, rules.Validate())
}
