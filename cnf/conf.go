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

package cnf

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/czcorpus/cnc-gokit/logging"
	"github.com/czcorpus/kddclf/feats"
	"github.com/czcorpus/kddclf/model"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

const (
	dfltOutputPath             = "predictions.txt"
	dfltListenAddress          = "localhost"
	dfltListenPort             = 8080
	dfltServerReadTimeoutSecs  = 10
	dfltServerWriteTimeoutSecs = 30
	dfltTimeZone               = "Europe/Prague"
	dfltMaxRequestBodyBytes    = 32 * 1024 * 1024
)

// ModelConf registers a trained classifier stored in a file
type ModelConf struct {
	Name string `json:"name"`

	// Type is one of rf, nn, xg
	Type string `json:"type"`
	Path string `json:"path"`

	// ClassThreshold overrides the threshold stored within the model
	ClassThreshold float64 `json:"classThreshold"`
	Disabled       bool    `json:"disabled"`
}

type Conf struct {
	srcPath                string
	Logging                logging.LoggingConf `json:"logging"`
	OutputPath             string              `json:"outputPath"`
	ListenAddress          string              `json:"listenAddress"`
	ListenPort             int                 `json:"listenPort"`
	ServerReadTimeoutSecs  int                 `json:"serverReadTimeoutSecs"`
	ServerWriteTimeoutSecs int                 `json:"serverWriteTimeoutSecs"`
	CorsAllowedOrigins     []string            `json:"corsAllowedOrigins"`

	// MaxRequestBodyBytes limits the size of records posted
	// to the HTTP API
	MaxRequestBodyBytes int64 `json:"maxRequestBodyBytes"`

	TimeZone               string              `json:"timeZone"`
	Models                 []ModelConf         `json:"models"`

	// Features must match the configuration the models
	// were trained with
	Features *feats.Rules `json:"features"`

	// EvalDBPath is an sqlite database for storing evaluation
	// results. Empty value disables the history.
	EvalDBPath string `json:"evalDbPath"`

	// ConfusionMatrixChart is a path of PNG file to render
	// the confusion matrix to (evaluation mode only)
	ConfusionMatrixChart string `json:"confusionMatrixChart"`

	// TruthFromLabelColumn makes predict use the input's own
	// attack column as the ground truth
	TruthFromLabelColumn bool `json:"truthFromLabelColumn"`
}

func (conf *Conf) GetSourcePath() string {
	return conf.srcPath
}

// Location returns configured time zone (or the default one
// in case the value is invalid)
func (conf *Conf) Location() *time.Location {
	loc, err := time.LoadLocation(conf.TimeZone)
	if err != nil {
		loc, _ = time.LoadLocation(dfltTimeZone)
	}
	if loc == nil {
		return time.Local
	}
	return loc
}

// Validate checks values which cannot be replaced by defaults
func (conf *Conf) Validate() error {
	names := make(map[string]bool)
	for i, m := range conf.Models {
		name := strings.ToLower(strings.TrimSpace(m.Name))
		if name == "" {
			return fmt.Errorf("models[%d]: missing name", i)
		}
		if names[name] {
			return fmt.Errorf("models[%d]: duplicate name %s", i, m.Name)
		}
		names[name] = true
		switch m.Type {
		case model.TypeRandomForest, model.TypeNeuralNetwork, model.TypeXGBoost:
		default:
			return fmt.Errorf("models[%d]: unsupported type '%s' (supported: %v)", i, m.Type, model.SupportedTypes())
		}
		if m.Path == "" {
			return fmt.Errorf("models[%d]: missing path", i)
		}
		if m.ClassThreshold < 0 || m.ClassThreshold >= 1 {
			return fmt.Errorf("models[%d]: classThreshold must be in [0, 1)", i)
		}
	}
	if conf.MaxRequestBodyBytes < 0 {
		return fmt.Errorf("maxRequestBodyBytes must not be negative")
	}
	if conf.Features != nil {
		if err := conf.Features.Validate(); err != nil {
			return fmt.Errorf("invalid features: %w", err)
		}
	}
	if _, err := time.LoadLocation(conf.TimeZone); err != nil {
		return fmt.Errorf("invalid time zone: %w", err)
	}
	return nil
}

// DefaultConf is used when no configuration file is provided
func DefaultConf() *Conf {
	conf := &Conf{
		Models: []ModelConf{},
	}
	ValidateAndDefaults(conf)
	return conf
}

func LoadConfig(path string) *Conf {
	if path == "" {
		log.Fatal().Msg("Cannot load config - path not specified")
	}
	rawData, err := os.ReadFile(path)
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot load config")
	}
	var conf Conf
	conf.srcPath = path
	err = json.Unmarshal(rawData, &conf)
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot load config")
	}
	return &conf
}

func ValidateAndDefaults(conf *Conf) {
	if conf.OutputPath == "" {
		conf.OutputPath = dfltOutputPath
		log.Debug().Str("path", dfltOutputPath).Msg("outputPath not specified, using default")
	}
	if conf.ListenAddress == "" {
		conf.ListenAddress = dfltListenAddress
	}
	if conf.ListenPort == 0 {
		conf.ListenPort = dfltListenPort
	}
	if conf.ServerReadTimeoutSecs == 0 {
		conf.ServerReadTimeoutSecs = dfltServerReadTimeoutSecs
	}
	if conf.ServerWriteTimeoutSecs == 0 {
		conf.ServerWriteTimeoutSecs = dfltServerWriteTimeoutSecs
		log.Debug().Msgf(
			"serverWriteTimeoutSecs not specified, using default: %d",
			dfltServerWriteTimeoutSecs,
		)
	}
	if conf.MaxRequestBodyBytes == 0 {
		conf.MaxRequestBodyBytes = dfltMaxRequestBodyBytes
	}
	if conf.TimeZone == "" {
		conf.TimeZone = dfltTimeZone
		log.Debug().
			Str("timeZone", dfltTimeZone).
			Msg("time zone not specified, using default")
	}
	if conf.Features == nil {
		rules := feats.DefaultRules()
		conf.Features = &rules
		log.Debug().Msg("features not specified, using the default KDD configuration")
	}
	if err := conf.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
}
