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

package predict

import (
	"fmt"
	"time"

	"github.com/czcorpus/kddclf/eval"
	"github.com/czcorpus/kddclf/eval/heatmap"
	"github.com/czcorpus/kddclf/output"
	"github.com/czcorpus/kddclf/recode"
	"github.com/czcorpus/kddclf/records"
	"github.com/czcorpus/kddclf/registry"
	"github.com/czcorpus/kddclf/stats"
	"github.com/rs/zerolog/log"
)

const (
	truthColumn       = "target"
	dfltChartCellSize = 100
)

type Stage string

const (
	StageResolve  Stage = "resolve"
	StageLoad     Stage = "load"
	StagePredict  Stage = "predict"
	StageWrite    Stage = "write"
	StageEvaluate Stage = "evaluate"
)

// StageReporter is notified each time the pipeline enters a new stage
type StageReporter interface {
	StageStarted(stage Stage)
}

// EvaluationStore persists evaluation results
type EvaluationStore interface {
	AddEvaluation(rec stats.EvalRecord) (stats.EvalRecord, error)
}

// Job describes a single prediction run
type Job struct {
	Model      string
	InputPath  string
	OutputPath string

	// TruthPath is a file with one ground truth label per line
	TruthPath string

	// TruthFromLabels uses the attack column of the input
	// as the ground truth
	TruthFromLabels bool

	// ChartPath is an optional PNG file for the confusion matrix
	ChartPath string
}

func (job Job) Evaluates() bool {
	return job.TruthPath != "" || job.TruthFromLabels
}

// Report summarizes a finished job
type Report struct {
	// Model is the registered name of the resolved model
	Model       string
	NumRows     int
	OutputPath  string
	Predictions Vector
	Duration    time.Duration

	// Evaluation is nil in the predict-only mode or in case
	// the evaluation failed
	Evaluation *eval.Report

	// EvalError is a non-fatal problem of the evaluation stage.
	// Predictions are written even if it is set.
	EvalError error
}

// Pipeline connects all the stages from loading an input file
// to storing evaluation results.
type Pipeline struct {
	Registry     *registry.Registry
	Orchestrator *Orchestrator

	// Store is optional
	Store EvaluationStore

	// Reporter is optional
	Reporter StageReporter
}

func (p *Pipeline) stage(s Stage) {
	log.Info().Str("stage", string(s)).Msg("entering stage")
	if p.Reporter != nil {
		p.Reporter.StageStarted(s)
	}
}

// Run performs a job. Configuration, data and model errors are
// returned before the output file is created. Evaluation problems
// are reported via Report.EvalError.
func (p *Pipeline) Run(job Job) (Report, error) {
	t0 := time.Now()
	report := Report{Model: job.Model, OutputPath: job.OutputPath}

	p.stage(StageResolve)
	entry, err := p.Registry.ResolveEntry(job.Model)
	if err != nil {
		return report, err
	}
	handle := entry.Handle
	report.Model = entry.Name
	log.Info().
		Str("model", entry.Name).
		Str("kind", handle.Kind()).
		Str("info", handle.Info()).
		Msg("resolved model")

	p.stage(StageLoad)
	table, err := records.LoadFile(job.InputPath)
	if err != nil {
		return report, err
	}
	report.NumRows = table.NumRows()

	p.stage(StagePredict)
	predictions, err := p.Orchestrator.Predict(handle, table)
	if err != nil {
		return report, err
	}
	report.Predictions = predictions
	log.Info().
		Int("numRows", len(predictions)).
		Int("numMalicious", predictions.NumPositive()).
		Msg("predicted")

	p.stage(StageWrite)
	if err := output.WriteLabels(job.OutputPath, predictions); err != nil {
		return report, err
	}

	if job.Evaluates() {
		p.stage(StageEvaluate)
		ev, err := p.evaluate(job, entry.Name, table, predictions)
		if err != nil {
			report.EvalError = err
			log.Error().Err(err).Msg("evaluation failed, predictions are written")

		} else {
			report.Evaluation = &ev
		}
	}
	report.Duration = time.Since(t0)
	return report, nil
}

func (p *Pipeline) truth(job Job, table *records.Table) ([]int, error) {
	if job.TruthPath != "" {
		return output.ReadLabels(job.TruthPath)
	}
	if _, err := recode.BinaryTarget(table, records.ColAttack, truthColumn); err != nil {
		return nil, err
	}
	col, _ := table.Column(truthColumn)
	ans := make([]int, col.Len())
	for i, v := range col.Num {
		ans[i] = int(v)
	}
	return ans, nil
}

func (p *Pipeline) evaluate(job Job, modelName string, table *records.Table, predictions Vector) (eval.Report, error) {
	truth, err := p.truth(job, table)
	if err != nil {
		return eval.Report{}, fmt.Errorf("%w: %w", eval.ErrEvaluation, err)
	}
	ev, err := eval.NewReport(modelName, truth, predictions)
	if err != nil {
		return eval.Report{}, err
	}
	if job.ChartPath != "" {
		if err := heatmap.RenderConfusionMatrix(ev.Matrix.Matrix(), job.ChartPath, dfltChartCellSize); err != nil {
			log.Error().Err(err).Msg("failed to render confusion matrix")

		} else {
			log.Info().Str("path", job.ChartPath).Msg("confusion matrix chart saved")
		}
	}
	if p.Store != nil {
		rec, err := p.Store.AddEvaluation(stats.EvalRecord{
			Model:   modelName,
			Input:   job.InputPath,
			NumRows: len(predictions),
			Matrix:  ev.Matrix,
		})
		if err != nil {
			log.Error().Err(err).Msg("failed to store evaluation")

		} else {
			log.Debug().Str("id", rec.ID).Msg("evaluation stored")
		}
	}
	return ev, nil
}
