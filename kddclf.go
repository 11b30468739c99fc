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
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/czcorpus/cnc-gokit/logging"
	"github.com/czcorpus/kddclf/apiserver"
	"github.com/czcorpus/kddclf/baseline"
	"github.com/czcorpus/kddclf/cnf"
	"github.com/czcorpus/kddclf/feats"
	"github.com/czcorpus/kddclf/model"
	"github.com/czcorpus/kddclf/recode"
	"github.com/czcorpus/kddclf/records"
	"github.com/czcorpus/kddclf/registry"
	"github.com/czcorpus/kddclf/stats"
	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
)

const (
	actionPredict   = "predict"
	actionFeaturize = "featurize"
	actionModels    = "models"
	actionHistory   = "history"
	actionREPL      = "repl"
	actionServe     = "serve"
	actionVersion   = "version"
	actionHelp      = "help"

	errColor  = color.FgHiRed
	warnColor = color.FgHiYellow
)

const (
	exitErrorGeneralFailure = iota + 1
	exitErrorUsage
	exitErrorConfig
	exitErrorData
	exitErrorModel
)

var errUsage = errors.New("invalid arguments")

var (
	version   string
	buildDate string
	gitCommit string
)

// VersionInfo provides a detailed information about the actual build
type VersionInfo struct {
	Version   string `json:"version"`
	BuildDate string `json:"buildDate"`
	GitCommit string `json:"gitCommit"`
}

func topLevelUsage() {
	fmt.Fprintf(os.Stderr, "KDDCLF - a malicious network connection classifier\n")
	fmt.Fprintf(os.Stderr, "-----------------------------\n\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "\t%s\t\tlabel connection records using a model\n", actionPredict)
	fmt.Fprintf(os.Stderr, "\t%s\texport encoded features for an external trainer\n", actionFeaturize)
	fmt.Fprintf(os.Stderr, "\t%s\t\tlist available models\n", actionModels)
	fmt.Fprintf(os.Stderr, "\t%s\t\tshow stored evaluations\n", actionHistory)
	fmt.Fprintf(os.Stderr, "\t%s\t\t\tclassify records entered interactively\n", actionREPL)
	fmt.Fprintf(os.Stderr, "\t%s\t\t\trun HTTP API server\n", actionServe)
	fmt.Fprintf(os.Stderr, "\t%s\t\tshow version info\n", actionVersion)
	fmt.Fprintf(os.Stderr, "\nUse `kddclf help ACTION` for information about a specific action\n\n")
}

func setup(confPath string) *cnf.Conf {
	if confPath == "" {
		logging.SetupLogging(logging.LoggingConf{Level: "info"})
		log.Info().Msg("no configuration file specified, using defaults")
		return cnf.DefaultConf()
	}
	conf := cnf.LoadConfig(confPath)
	if conf.Logging.Level == "" {
		conf.Logging.Level = "info"
	}
	logging.SetupLogging(conf.Logging)
	cnf.ValidateAndDefaults(conf)
	log.Info().Str("path", conf.GetSourcePath()).Msg("configuration loaded")
	return conf
}

func cleanVersionInfo(v string) string {
	return strings.TrimLeft(strings.Trim(v, "'"), "v")
}

// exitCode maps an error to the process exit status
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		return exitErrorUsage
	case errors.Is(err, registry.ErrModelNotFound),
		errors.Is(err, baseline.ErrMissingColumn),
		errors.Is(err, feats.ErrFeatureMismatch),
		errors.Is(err, model.ErrNoSuchModel),
		errors.Is(err, errHistoryNotConfigured),
		errors.Is(err, recode.ErrMissingDominant),
		errors.Is(err, recode.ErrInvalidRule):
		return exitErrorConfig
	case errors.Is(err, records.ErrInputNotFound),
		errors.Is(err, records.ErrSchema):
		return exitErrorData
	}
	return exitErrorModel
}

func exitWithError(err error) {
	color.New(errColor).Fprintln(os.Stderr, err)
	os.Exit(exitCode(err))
}

func openEvalDB(conf *cnf.Conf) (*stats.Database, error) {
	if conf.EvalDBPath == "" {
		return nil, nil
	}
	db, err := stats.NewDatabase(conf.EvalDBPath)
	if err != nil {
		return nil, err
	}
	if err := db.Init(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func runActionVersion(ver VersionInfo) {
	fmt.Fprintln(os.Stderr, "KDDCLF version: ", ver)
}

func runActionServe(conf *cnf.Conf, ver VersionInfo) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	db, err := openEvalDB(conf)
	if err != nil {
		exitWithError(err)
	}
	if db != nil {
		defer db.Close()
	}
	apiserver.Run(ctx, conf, registry.New(conf), db, ver)
}

func main() {
	version := VersionInfo{
		Version:   cleanVersionInfo(version),
		BuildDate: cleanVersionInfo(buildDate),
		GitCommit: cleanVersionInfo(gitCommit),
	}

	cmdPredict := flag.NewFlagSet(actionPredict, flag.ExitOnError)
	predictConf := cmdPredict.String("conf", "", "path to a JSON configuration file")
	predictOut := cmdPredict.String("out", "", "output file (overrides configured outputPath)")
	predictChart := cmdPredict.String("chart", "", "save confusion matrix as a PNG image (evaluation only)")
	predictLabels := cmdPredict.Bool("truth-from-labels", false, "use the attack column of INPUT as the ground truth")
	cmdPredict.Usage = func() {
		fmt.Fprintf(
			os.Stderr,
			"Usage:\t%s %s [options] MODEL INPUT [TRUTH]\n\t",
			filepath.Base(os.Args[0]), actionPredict)
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		cmdPredict.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nLabel records from INPUT (0 = genuine, 1 = malicious) and optionally evaluate\n")
		fmt.Fprintf(os.Stderr, "the predictions against TRUTH (one label per line)\n")
	}

	cmdFeaturize := flag.NewFlagSet(actionFeaturize, flag.ExitOnError)
	featurizeConf := cmdFeaturize.String("conf", "", "path to a JSON configuration file")
	cmdFeaturize.Usage = func() {
		fmt.Fprintf(
			os.Stderr,
			"Usage:\t%s %s [options] INPUT OUTPUT.msgpack\n\t",
			filepath.Base(os.Args[0]), actionFeaturize)
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		cmdFeaturize.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nAnalyze a labeled training set and export encoded features\n")
	}

	cmdModels := flag.NewFlagSet(actionModels, flag.ExitOnError)
	modelsConf := cmdModels.String("conf", "", "path to a JSON configuration file")
	cmdModels.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\t%s %s [options]\n", filepath.Base(os.Args[0]), actionModels)
		cmdModels.PrintDefaults()
	}

	cmdHistory := flag.NewFlagSet(actionHistory, flag.ExitOnError)
	historyConf := cmdHistory.String("conf", "", "path to a JSON configuration file")
	historyLimit := cmdHistory.Int("limit", 20, "max. number of evaluations to show")
	historyModel := cmdHistory.String("model", "", "show only evaluations of a specified model")
	cmdHistory.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\t%s %s [options]\n", filepath.Base(os.Args[0]), actionHistory)
		cmdHistory.PrintDefaults()
	}

	cmdREPL := flag.NewFlagSet(actionREPL, flag.ExitOnError)
	replConf := cmdREPL.String("conf", "", "path to a JSON configuration file")
	cmdREPL.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\t%s %s [options] MODEL\n", filepath.Base(os.Args[0]), actionREPL)
		cmdREPL.PrintDefaults()
	}

	cmdServe := flag.NewFlagSet(actionServe, flag.ExitOnError)
	serveConf := cmdServe.String("conf", "", "path to a JSON configuration file")
	cmdServe.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\t%s %s [options]\n", filepath.Base(os.Args[0]), actionServe)
		cmdServe.PrintDefaults()
	}

	cmdVersion := flag.NewFlagSet(actionVersion, flag.ExitOnError)
	cmdHelp := flag.NewFlagSet(actionHelp, flag.ExitOnError)

	action := actionHelp
	if len(os.Args) > 1 {
		action = os.Args[1]
	}

	switch action {
	case actionHelp:
		var subj string
		if len(os.Args) > 2 {
			cmdHelp.Parse(os.Args[2:])
			subj = cmdHelp.Arg(0)
		}
		switch subj {
		case actionPredict:
			cmdPredict.Usage()
		case actionFeaturize:
			cmdFeaturize.Usage()
		case actionModels:
			cmdModels.Usage()
		case actionHistory:
			cmdHistory.Usage()
		case actionREPL:
			cmdREPL.Usage()
		case actionServe:
			cmdServe.Usage()
		default:
			topLevelUsage()
		}
	case actionVersion:
		cmdVersion.Parse(os.Args[2:])
		runActionVersion(version)
	case actionPredict:
		cmdPredict.Parse(os.Args[2:])
		args, err := parsePredictArgs(cmdPredict.Args())
		if err != nil {
			color.New(errColor).Fprintln(os.Stderr, err)
			cmdPredict.Usage()
			os.Exit(exitErrorUsage)
		}
		conf := setup(*predictConf)
		args.outputPath = conf.OutputPath
		if *predictOut != "" {
			args.outputPath = *predictOut
		}
		args.chartPath = conf.ConfusionMatrixChart
		if *predictChart != "" {
			args.chartPath = *predictChart
		}
		args.truthFromLabels = conf.TruthFromLabelColumn || *predictLabels
		if err := runActionPredict(conf, args); err != nil {
			exitWithError(err)
		}
	case actionFeaturize:
		cmdFeaturize.Parse(os.Args[2:])
		if cmdFeaturize.NArg() != 2 {
			cmdFeaturize.Usage()
			os.Exit(exitErrorUsage)
		}
		conf := setup(*featurizeConf)
		if err := runActionFeaturize(conf, cmdFeaturize.Arg(0), cmdFeaturize.Arg(1)); err != nil {
			exitWithError(err)
		}
	case actionModels:
		cmdModels.Parse(os.Args[2:])
		conf := setup(*modelsConf)
		runActionModels(conf)
	case actionHistory:
		cmdHistory.Parse(os.Args[2:])
		conf := setup(*historyConf)
		if err := runActionHistory(conf, *historyModel, *historyLimit); err != nil {
			exitWithError(err)
		}
	case actionREPL:
		cmdREPL.Parse(os.Args[2:])
		if cmdREPL.NArg() != 1 {
			cmdREPL.Usage()
			os.Exit(exitErrorUsage)
		}
		conf := setup(*replConf)
		if err := runActionREPL(conf, cmdREPL.Arg(0)); err != nil {
			exitWithError(err)
		}
	case actionServe:
		cmdServe.Parse(os.Args[2:])
		conf := setup(*serveConf)
		runActionServe(conf, version)
	default:
		fmt.Fprintf(os.Stderr, "Unknown action, please use 'help' to get more information\n")
		os.Exit(exitErrorUsage)
	}
}
