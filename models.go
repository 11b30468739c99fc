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

package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/czcorpus/kddclf/cnf"
	"github.com/czcorpus/kddclf/registry"
	"github.com/czcorpus/kddclf/stats"
	"github.com/fatih/color"
)

var errHistoryNotConfigured = errors.New("evaluation history is not configured (evalDbPath)")

func runActionModels(conf *cnf.Conf) {
	titleColor := color.New(color.FgHiMagenta).SprintFunc()
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\n", titleColor("name"), titleColor("kind"), titleColor("info"))
	for _, e := range registry.New(conf).Entries() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Name, e.Handle.Kind(), e.Handle.Info())
	}
	w.Flush()
}

func runActionHistory(conf *cnf.Conf, modelName string, limit int) error {
	if conf.EvalDBPath == "" {
		return errHistoryNotConfigured
	}
	db, err := openEvalDB(conf)
	if err != nil {
		return err
	}
	defer db.Close()
	filter := stats.ListFilter{}.SetLimit(limit)
	if modelName != "" {
		filter = filter.SetModel(modelName)
	}
	recs, err := db.GetLatestEvaluations(filter)
	if err != nil {
		return err
	}
	titleColor := color.New(color.FgHiMagenta).SprintFunc()
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(
		w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
		titleColor("datetime"), titleColor("model"), titleColor("input"), titleColor("rows"),
		titleColor("accuracy"), titleColor("precision"), titleColor("recall"),
	)
	loc := conf.Location()
	for _, rec := range recs {
		fmt.Fprintf(
			w, "%s\t%s\t%s\t%d\t%.4f\t%.4f\t%.4f\n",
			rec.Datetime.In(loc).Format(time.DateTime), rec.Model, rec.Input, rec.NumRows,
			rec.Matrix.Accuracy(), rec.Matrix.Precision(), rec.Matrix.Recall(),
		)
	}
	return w.Flush()
}
