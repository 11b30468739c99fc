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
	"path/filepath"
	"strings"
	"testing"

	"github.com/czcorpus/kddclf/cnf"
	"github.com/czcorpus/kddclf/feats"
	"github.com/czcorpus/kddclf/model"
	"github.com/czcorpus/kddclf/recode"
	"github.com/czcorpus/kddclf/records"
	"github.com/czcorpus/kddclf/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func recordLine(protocol string, urgent int, attack string) string {
	fields := make([]string, records.NumColumns)
	for i, name := range records.Schema {
		switch name {
		case records.ColProtocolType:
			fields[i] = protocol
		case records.ColService:
			fields[i] = "http"
		case records.ColFlag:
			fields[i] = "SF"
		case records.ColAttack:
			fields[i] = attack
		case "src_bytes":
			fields[i] = "100"
		case "urgent":
			fields[i] = fmt.Sprint(urgent)
		default:
			fields[i] = "0"
		}
	}
	return strings.Join(fields, ",")
}

func trainingInput() string {
	lines := []string{
		recordLine("icmp", 0, "smurf"),
		recordLine("tcp", 1, "normal"),
		recordLine("tcp", 0, "normal"),
		recordLine("udp", 1, "normal"),
		recordLine("icmp", 0, "ipsweep"),
	}
	return strings.Join(lines, "\n") + "\n"
}

func featurizeRules() feats.Rules {
	return feats.Rules{
		Numeric:     []string{"src_bytes"},
		Categorical: []string{records.ColProtocolType},
		Binary: []recode.BinaryRule{
			{Source: "land", Output: "land_bin", Threshold: 0.99},
			{Source: "urgent", Output: "urgent_bin", Threshold: 0.99},
		},
	}
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, exitErrorUsage, exitCode(errUsage))
	assert.Equal(t, exitErrorConfig, exitCode(&registry.NotFoundError{Query: "foo"}))
	assert.Equal(t, exitErrorConfig, exitCode(fmt.Errorf("failed: %w", feats.ErrFeatureMismatch)))
	assert.Equal(t, exitErrorConfig, exitCode(model.ErrNoSuchModel))
	assert.Equal(t, exitErrorConfig, exitCode(errHistoryNotConfigured))
	assert.Equal(t, exitErrorConfig, exitCode(fmt.Errorf("failed to recode land: %w", recode.ErrMissingDominant)))
	assert.Equal(t, exitErrorConfig, exitCode(fmt.Errorf("%w: missing output column", recode.ErrInvalidRule)))
	assert.Equal(t, exitErrorData, exitCode(fmt.Errorf("failed: %w", records.ErrInputNotFound)))
	assert.Equal(t, exitErrorData, exitCode(fmt.Errorf("failed: %w", records.ErrSchema)))
	assert.Equal(t, exitErrorModel, exitCode(fmt.Errorf("something else")))
}

func TestSetupWithoutConfigFile(t *testing.T) {
	conf := setup("")
	assert.Equal(t, "predictions.txt", conf.OutputPath)
	require.NotNil(t, conf.Features)
	assert.Equal(t, feats.DefaultRules(), *conf.Features)
}

func TestSetupWithConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"outputPath": "labels.txt"}`), 0644))
	conf := setup(path)
	assert.Equal(t, path, conf.GetSourcePath())
	assert.Equal(t, "labels.txt", conf.OutputPath)
	assert.Equal(t, "info", string(conf.Logging.Level))
}

func TestParsePredictArgs(t *testing.T) {
	args, err := parsePredictArgs([]string{"rf", "input.csv"})
	require.NoError(t, err)
	assert.Equal(t, "rf", args.model)
	assert.Equal(t, "input.csv", args.inputPath)
	assert.Empty(t, args.truthPath)

	args, err = parsePredictArgs([]string{"rf", "input.csv", "truth.txt"})
	require.NoError(t, err)
	assert.Equal(t, "truth.txt", args.truthPath)

	_, err = parsePredictArgs([]string{"rf"})
	assert.ErrorIs(t, err, errUsage)
	_, err = parsePredictArgs([]string{"a", "b", "c", "d"})
	assert.ErrorIs(t, err, errUsage)
}

func TestPredictArgsTruthFileWins(t *testing.T) {
	args := predictArgs{model: "rf", inputPath: "in.csv", truthPath: "truth.txt", truthFromLabels: true}
	job := args.job()
	assert.False(t, job.TruthFromLabels)
	assert.True(t, job.Evaluates())
}

func TestBuildFeatureFile(t *testing.T) {
	tab, err := records.Read(strings.NewReader(trainingInput()))
	require.NoError(t, err)
	ff, err := buildFeatureFile(tab, featurizeRules())
	require.NoError(t, err)

	assert.Equal(t, []string{"src_bytes", records.ColProtocolType, "land_bin"}, feats.SpecNames(ff.Features))
	assert.Equal(t, []string{"icmp", "tcp", "udp"}, ff.Features[1].Categories)
	assert.Equal(t, []int{1, 0, 0, 0, 1}, ff.Label)
	assert.Equal(t, map[string]string{"land_bin": "0"}, ff.Dominant)
	require.Len(t, ff.X, 5)
	for _, row := range ff.X {
		assert.Len(t, row, feats.NumEncodedFeatures(ff.Features))
	}
}

func TestRunActionFeaturize(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "train.csv")
	dst := filepath.Join(dir, "train.msgpack")
	require.NoError(t, os.WriteFile(src, []byte(trainingInput()), 0644))
	rules := featurizeRules()
	conf := &cnf.Conf{Features: &rules}

	require.NoError(t, runActionFeaturize(conf, src, dst))
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	var ff featureFile
	require.NoError(t, msgpack.Unmarshal(data, &ff))
	assert.Equal(t, []int{1, 0, 0, 0, 1}, ff.Label)
	assert.Len(t, ff.X, 5)
}

func TestRunActionFeaturizeMissingInput(t *testing.T) {
	rules := featurizeRules()
	conf := &cnf.Conf{Features: &rules}
	err := runActionFeaturize(conf, filepath.Join(t.TempDir(), "nope.csv"), "out.msgpack")
	assert.ErrorIs(t, err, records.ErrInputNotFound)
}

func TestReplSessionThreshold(t *testing.T) {
	s := &replSession{modelName: "rf", handle: registry.ArtifactRef{Type: "rf", Path: "rf.json"}}
	assert.Equal(t, "model default", s.threshold())
	require.NoError(t, s.setThreshold(0.7))
	assert.Equal(t, "0.70", s.threshold())
	assert.Error(t, s.setThreshold(1.5))
}

func TestReplSessionClassify(t *testing.T) {
	rules := featurizeRules()
	conf := &cnf.Conf{Features: &rules}
	s, err := newReplSession(conf, " Risky-Protocol")
	require.NoError(t, err)
	assert.Equal(t, "risky-protocol", s.modelName)
	assert.Error(t, s.setThreshold(0.5))
	pred, known, err := s.classify(recordLine("icmp", 0, "smurf"))
	require.NoError(t, err)
	assert.Equal(t, []int{1}, []int(pred))
	assert.Equal(t, []string{"smurf"}, known)
}
