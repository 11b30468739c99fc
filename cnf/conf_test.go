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
	"os"
	"path/filepath"
	"testing"

	"github.com/czcorpus/kddclf/feats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConf(t *testing.T) {
	conf := DefaultConf()
	assert.Equal(t, "predictions.txt", conf.OutputPath)
	assert.Equal(t, 8080, conf.ListenPort)
	assert.Equal(t, int64(dfltMaxRequestBodyBytes), conf.MaxRequestBodyBytes)
	require.NotNil(t, conf.Features)
	assert.Equal(t, feats.DefaultRules(), *conf.Features)
	assert.NoError(t, conf.Validate())
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	data := `{
		"outputPath": "out.txt",
		"models": [{"name": "RF", "type": "rf", "path": "/tmp/rf.json", "classThreshold": 0.6}],
		"features": {"numeric": ["duration"], "categorical": ["protocol_type"]},
		"evalDbPath": "/tmp/eval.db"
	}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	conf := LoadConfig(path)
	ValidateAndDefaults(conf)
	assert.Equal(t, path, conf.GetSourcePath())
	assert.Equal(t, "out.txt", conf.OutputPath)
	require.Len(t, conf.Models, 1)
	assert.Equal(t, 0.6, conf.Models[0].ClassThreshold)
	assert.Equal(t, []string{"duration"}, conf.Features.Numeric)
	assert.Empty(t, conf.Features.Binary)
	assert.Equal(t, "/tmp/eval.db", conf.EvalDBPath)
	assert.NotNil(t, conf.Location())
}

func TestValidate(t *testing.T) {
	conf := DefaultConf()
	conf.Models = []ModelConf{{Name: "a", Type: "rf", Path: "a.json"}}
	assert.NoError(t, conf.Validate())

	conf.Models = []ModelConf{{Name: "a", Type: "svm", Path: "a.json"}}
	assert.Error(t, conf.Validate())

	conf.Models = []ModelConf{{Name: "a", Type: "rf", Path: "a.json"}, {Name: " A ", Type: "nn", Path: "b.json"}}
	assert.Error(t, conf.Validate())

	conf.Models = []ModelConf{{Name: "a", Type: "rf"}}
	assert.Error(t, conf.Validate())

	conf.Models = []ModelConf{{Name: "a", Type: "rf", Path: "a.json", ClassThreshold: 1.2}}
	assert.Error(t, conf.Validate())

	conf.Models = nil
	conf.MaxRequestBodyBytes = -1
	assert.Error(t, conf.Validate())
}
