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
	"fmt"
	"io"
)

const (
	LabelGenuine   = "genuine"
	LabelMalicious = "malicious"
)

// ClassMetrics describes how well a single class (or an average
// over classes) is predicted. All the ratios are zero in case
// of zero division.
type ClassMetrics struct {
	Label     string  `json:"label"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}

func newClassMetrics(label string, correct, predicted, support int) ClassMetrics {
	ans := ClassMetrics{
		Label:     label,
		Precision: ratio(correct, predicted),
		Recall:    ratio(correct, support),
		Support:   support,
	}
	if ans.Precision+ans.Recall > 0 {
		ans.F1 = 2 * ans.Precision * ans.Recall / (ans.Precision + ans.Recall)
	}
	return ans
}

// ClassificationReport contains per-class metrics (genuine first)
// along with their macro and support-weighted averages
type ClassificationReport struct {
	Classes     [2]ClassMetrics `json:"classes"`
	MacroAvg    ClassMetrics    `json:"macroAvg"`
	WeightedAvg ClassMetrics    `json:"weightedAvg"`
	Accuracy    float64         `json:"accuracy"`
}

// Classification derives per-class metrics from the matrix
func (cm ConfusionMatrix) Classification() ClassificationReport {
	ans := ClassificationReport{
		Classes: [2]ClassMetrics{
			newClassMetrics(LabelGenuine, cm.TN, cm.TN+cm.FN, cm.TN+cm.FP),
			newClassMetrics(LabelMalicious, cm.TP, cm.TP+cm.FP, cm.TP+cm.FN),
		},
		MacroAvg:    ClassMetrics{Label: "macro avg", Support: cm.Total()},
		WeightedAvg: ClassMetrics{Label: "weighted avg", Support: cm.Total()},
		Accuracy:    cm.Accuracy(),
	}
	for _, c := range ans.Classes {
		ans.MacroAvg.Precision += c.Precision / 2
		ans.MacroAvg.Recall += c.Recall / 2
		ans.MacroAvg.F1 += c.F1 / 2
		if total := cm.Total(); total > 0 {
			w := float64(c.Support) / float64(total)
			ans.WeightedAvg.Precision += c.Precision * w
			ans.WeightedAvg.Recall += c.Recall * w
			ans.WeightedAvg.F1 += c.F1 * w
		}
	}
	return ans
}

// WriteText writes the report as a table with one row per class
// and per average
func (cr ClassificationReport) WriteText(w io.Writer) error {
	row := func(m ClassMetrics) error {
		_, err := fmt.Fprintf(
			w, "%12s  %9.4f %9.4f %9.4f %9d\n", m.Label, m.Precision, m.Recall, m.F1, m.Support)
		return err
	}
	if _, err := fmt.Fprintf(w, "%12s  %9s %9s %9s %9s\n\n", "", "precision", "recall", "f1-score", "support"); err != nil {
		return err
	}
	for _, c := range cr.Classes {
		if err := row(c); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(
		w, "\n%12s  %9s %9s %9.4f %9d\n", "accuracy", "", "", cr.Accuracy, cr.MacroAvg.Support); err != nil {
		return err
	}
	if err := row(cr.MacroAvg); err != nil {
		return err
	}
	return row(cr.WeightedAvg)
}
