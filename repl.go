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
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/czcorpus/kddclf/cnf"
	"github.com/czcorpus/kddclf/predict"
	"github.com/czcorpus/kddclf/records"
	"github.com/czcorpus/kddclf/registry"
	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
)

func ensureConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	configDir := filepath.Join(homeDir, ".config", "kddclf")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}
	return configDir, nil
}

// replSession holds the state of an interactive classification session
type replSession struct {
	modelName    string
	handle       registry.Handle
	orchestrator *predict.Orchestrator
}

// setThreshold overrides the class threshold of an artifact-backed model
func (s *replSession) setThreshold(v float64) error {
	ref, ok := s.handle.(registry.ArtifactRef)
	if !ok {
		return fmt.Errorf("model %s does not use a class threshold", s.modelName)
	}
	if v <= 0 || v >= 1 {
		return fmt.Errorf("threshold must be in the (0, 1) interval")
	}
	ref.ClassThreshold = v
	s.handle = ref
	return nil
}

func (s *replSession) threshold() string {
	if ref, ok := s.handle.(registry.ArtifactRef); ok && ref.ClassThreshold > 0 {
		return fmt.Sprintf("%.2f", ref.ClassThreshold)
	}
	return "model default"
}

// classify labels records provided as CSV lines and returns
// the predictions along with the original attack labels
func (s *replSession) classify(input string) (predict.Vector, []string, error) {
	t, err := records.Read(strings.NewReader(input))
	if err != nil {
		return nil, nil, err
	}
	attack, err := t.MustColumn(records.ColAttack)
	if err != nil {
		return nil, nil, err
	}
	known := make([]string, attack.Len())
	for i := range known {
		known[i] = attack.Key(i)
	}
	pred, err := s.orchestrator.Predict(s.handle, t)
	if err != nil {
		return nil, nil, err
	}
	return pred, known, nil
}

func newReplSession(conf *cnf.Conf, modelName string) (*replSession, error) {
	entry, err := registry.New(conf).ResolveEntry(modelName)
	if err != nil {
		return nil, err
	}
	return &replSession{
		modelName:    entry.Name,
		handle:       entry.Handle,
		orchestrator: predict.NewOrchestrator(*conf.Features),
	}, nil
}

func printREPLHelp() {
	fmt.Println("Commands:")
	fmt.Println("  <connection record>    - classify a comma separated record (43 fields)")
	fmt.Println("  set threshold <0..1>   - set model class threshold")
	fmt.Println("  setup                  - view current settings")
	fmt.Println("  help                   - show this help")
	fmt.Println("  exit                   - exit REPL")
}

func runActionREPL(conf *cnf.Conf, modelName string) error {
	session, err := newReplSession(conf, modelName)
	if err != nil {
		return err
	}

	titleColor := color.New(color.FgHiMagenta).SprintFunc()
	greenColor := color.New(color.FgGreen).SprintFunc()
	redColor := color.New(color.FgRed).SprintFunc()

	fmt.Println("KDD connection classifier")
	printREPLHelp()
	fmt.Println()

	var historyFile string
	historyDir, err := ensureConfigDir()
	if err != nil {
		log.Error().Err(err).Msg("failed to determine user config directory - falling back to session-local history")

	} else {
		historyFile = filepath.Join(historyDir, "record-history.txt")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:      color.New(color.FgHiGreen).Sprintf("/%s> ", session.modelName),
		HistoryFile: historyFile,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize readline: %w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				fmt.Println("\nBye!")
				break
			}
			fmt.Printf("Error reading input: %v\n", err)
			continue
		}
		input := strings.TrimSpace(line)

		switch {
		case input == "":
			continue
		case input == "exit":
			fmt.Println("Bye!")
			return nil
		case input == "help":
			printREPLHelp()
			continue
		case input == "setup":
			fmt.Printf("%s:\t\t%s (%s)\n", titleColor("Model"), session.modelName, session.handle.Info())
			fmt.Printf("%s:\t%s\n", titleColor("Class threshold"), session.threshold())
			continue
		case strings.HasPrefix(input, "set "):
			parsedInput := strings.Fields(input)[1:]
			if len(parsedInput) != 2 || parsedInput[0] != "threshold" {
				fmt.Println("Usage: set threshold <value 0..1>")
				continue
			}
			v, err := strconv.ParseFloat(parsedInput[1], 64)
			if err != nil {
				fmt.Println("failed to parse number")
				continue
			}
			if err := session.setThreshold(v); err != nil {
				fmt.Println(color.New(warnColor).Sprint(err))
			}
			continue
		}

		pred, known, err := session.classify(input)
		if err != nil {
			fmt.Println(color.New(errColor).Sprintf("Error: %s", err))
			continue
		}
		for i, v := range pred {
			var predResult string
			if v == 1 {
				predResult = redColor("malicious")

			} else {
				predResult = greenColor("genuine")
			}
			fmt.Printf("%s: %s (recorded label: %s)\n", titleColor("prediction"), predResult, known[i])
		}
	}
	return nil
}
