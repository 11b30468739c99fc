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
	"fmt"
	"os"

	"github.com/czcorpus/kddclf/cnf"
	"github.com/czcorpus/kddclf/predict"
	"github.com/czcorpus/kddclf/registry"
	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
)

type predictArgs struct {
	model           string
	inputPath       string
	truthPath       string
	outputPath      string
	chartPath       string
	truthFromLabels bool
}

func (args predictArgs) job() predict.Job {
	return predict.Job{
		Model:           args.model,
		InputPath:       args.inputPath,
		OutputPath:      args.outputPath,
		TruthPath:       args.truthPath,
		TruthFromLabels: args.truthFromLabels && args.truthPath == "",
		ChartPath:       args.chartPath,
	}
}

// parsePredictArgs accepts MODEL INPUT [TRUTH]
func parsePredictArgs(args []string) (predictArgs, error) {
	if len(args) < 2 || len(args) > 3 {
		return predictArgs{}, fmt.Errorf(
			"%w: expected MODEL INPUT [TRUTH], got %d argument(s)", errUsage, len(args))
	}
	ans := predictArgs{
		model:     args[0],
		inputPath: args[1],
	}
	if len(args) == 3 {
		ans.truthPath = args[2]
	}
	return ans, nil
}

// --------------------

type progressReporter struct {
	bar *progressbar.ProgressBar
}

func (pr *progressReporter) StageStarted(s predict.Stage) {
	pr.bar.Describe(string(s))
	pr.bar.Add(1)
}

func (pr *progressReporter) Finish() {
	pr.bar.Finish()
}

func newProgressReporter(numStages int) *progressReporter {
	return &progressReporter{
		bar: progressbar.NewOptions(
			numStages,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("starting"),
			progressbar.OptionClearOnFinish(),
		),
	}
}

// --------------------

func runActionPredict(conf *cnf.Conf, args predictArgs) error {
	job := args.job()
	numStages := 4
	if job.Evaluates() {
		numStages++
	}
	progress := newProgressReporter(numStages)
	pipeline := &predict.Pipeline{
		Registry:     registry.New(conf),
		Orchestrator: predict.NewOrchestrator(*conf.Features),
		Reporter:     progress,
	}
	if job.Evaluates() {
		db, err := openEvalDB(conf)
		if err != nil {
			log.Error().Err(err).Msg("failed to open evaluation database, results will not be stored")

		} else if db != nil {
			defer db.Close()
			pipeline.Store = db
		}
	}

	report, err := pipeline.Run(job)
	progress.Finish()
	if err != nil {
		return err
	}
	fmt.Fprintf(
		os.Stderr,
		"%d predictions (%d malicious) written to %s in %s\n",
		len(report.Predictions), report.Predictions.NumPositive(), report.OutputPath, report.Duration,
	)
	if report.EvalError != nil {
		color.New(warnColor).Fprintf(os.Stderr, "predictions were written but the evaluation failed: %s\n", report.EvalError)
		return nil
	}
	if report.Evaluation != nil {
		return report.Evaluation.WriteText(os.Stdout)
	}
	return nil
}
