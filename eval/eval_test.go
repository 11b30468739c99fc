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

package eval

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfusionMatrix(t *testing.T) {
	cm, err := NewConfusionMatrix([]int{0, 0, 1, 1, 1}, []int{0, 1, 0, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, ConfusionMatrix{TN: 1, FP: 1, FN: 1, TP: 2}, cm)
	assert.Equal(t, 5, cm.Total())
	assert.InDelta(t, 0.6, cm.Accuracy(), 1e-9)
	assert.InDelta(t, 2.0/3.0, cm.Precision(), 1e-9)
	assert.InDelta(t, 2.0/3.0, cm.Recall(), 1e-9)
	assert.InDelta(t, 2.0/3.0, cm.F1(), 1e-9)
	assert.Equal(t, [][]float64{{1, 1}, {1, 2}}, cm.Matrix())
}

func TestZeroDivision(t *testing.T) {
	cm, err := NewConfusionMatrix([]int{0, 0, 0}, []int{0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, 0.0, cm.Precision())
	assert.Equal(t, 0.0, cm.Recall())
	assert.Equal(t, 0.0, cm.F1())
	assert.Equal(t, 1.0, cm.Accuracy())

	cm, err = NewConfusionMatrix([]int{}, []int{})
	require.NoError(t, err)
	assert.Equal(t, 0.0, cm.Accuracy())
}

func TestConfusionMatrixErrors(t *testing.T) {
	_, err := NewConfusionMatrix([]int{0, 1}, []int{0})
	assert.ErrorIs(t, err, ErrEvaluation)
	_, err = NewConfusionMatrix([]int{0, 2}, []int{0, 1})
	assert.ErrorIs(t, err, ErrEvaluation)
}

func TestReportWriteText(t *testing.T) {
	r, err := NewReport("risky-protocol", []int{1, 0, 1, 0}, []int{1, 0, 0, 0})
	require.NoError(t, err)
	var buff strings.Builder
	require.NoError(t, r.WriteText(&buff))
	lines := strings.Split(buff.String(), "\n")
	require.Greater(t, len(lines), 11)
	assert.Equal(t, "Confusion matrix for risky-protocol:", lines[0])
	assert.Equal(t, "TN: 2, FP: 0, FN: 1, TP: 1", lines[1])
	assert.Equal(t, "Accuracy: 0.7500, Precision: 1.0000, Recall: 0.5000", lines[2])
	assert.Equal(t, "", lines[3])
	assert.Equal(t, 2, r.Classification.Classes[0].Support)
	assert.Equal(t, "              precision    recall  f1-score   support", lines[4])
	assert.Equal(t, "     genuine     0.6667    1.0000    0.8000         2", lines[6])
	assert.Equal(t, "   malicious     1.0000    0.5000    0.6667         2", lines[7])
	assert.Equal(t, "    accuracy                         0.7500         4", lines[9])
	assert.Equal(t, "   macro avg     0.8333    0.7500    0.7333         4", lines[10])
	assert.Equal(t, "weighted avg     0.8333    0.7500    0.7333         4", lines[11])
}

func TestClassification(t *testing.T) {
	cm := ConfusionMatrix{TN: 2, FP: 1, FN: 1, TP: 6}
	cr := cm.Classification()
	genuine, malicious := cr.Classes[0], cr.Classes[1]
	assert.Equal(t, LabelGenuine, genuine.Label)
	assert.InDelta(t, 2.0/3.0, genuine.Precision, 1e-9)
	assert.InDelta(t, 2.0/3.0, genuine.Recall, 1e-9)
	assert.Equal(t, 3, genuine.Support)
	assert.InDelta(t, cm.Precision(), malicious.Precision, 1e-9)
	assert.InDelta(t, cm.Recall(), malicious.Recall, 1e-9)
	assert.InDelta(t, cm.F1(), malicious.F1, 1e-9)
	assert.Equal(t, 7, malicious.Support)
	assert.InDelta(t, (genuine.F1+malicious.F1)/2, cr.MacroAvg.F1, 1e-9)
	assert.InDelta(t, (3*genuine.F1+7*malicious.F1)/10, cr.WeightedAvg.F1, 1e-9)
	assert.Equal(t, 10, cr.WeightedAvg.Support)
	assert.InDelta(t, 0.8, cr.Accuracy, 1e-9)
}

func TestClassificationZeroDivisionGenuine(t *testing.T) {
	cm, err := NewConfusionMatrix([]int{1, 1, 1}, []int{1, 1, 1})
	require.NoError(t, err)
	cr := cm.Classification()
	assert.Equal(t, ClassMetrics{Label: LabelGenuine}, cr.Classes[0])
	assert.Equal(t, ClassMetrics{Label: LabelMalicious, Precision: 1, Recall: 1, F1: 1, Support: 3}, cr.Classes[1])
	assert.InDelta(t, 0.5, cr.MacroAvg.Precision, 1e-9)
	assert.InDelta(t, 1.0, cr.WeightedAvg.Precision, 1e-9)
	assert.InDelta(t, 1.0, cr.WeightedAvg.F1, 1e-9)
}

func TestClassificationEmpty(t *testing.T) {
	cr := ConfusionMatrix{}.Classification()
	assert.Equal(t, 0.0, cr.WeightedAvg.F1)
	assert.Equal(t, 0.0, cr.MacroAvg.Recall)
	assert.Equal(t, 0, cr.MacroAvg.Support)
}
