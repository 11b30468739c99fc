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

package registry

import (
	"errors"
	"testing"

	"github.com/czcorpus/kddclf/baseline"
	"github.com/czcorpus/kddclf/cnf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConf() *cnf.Conf {
	conf := cnf.DefaultConf()
	conf.Models = []cnf.ModelConf{
		{Name: "rf", Type: "rf", Path: "/tmp/rf.json"},
		{Name: "nn", Type: "nn", Path: "/tmp/nn.json", Disabled: true},
		{Name: "xg", Type: "xg", Path: "/tmp/xg.txt", ClassThreshold: 0.3},
	}
	return conf
}

func TestResolveNormalizesName(t *testing.T) {
	reg := New(testConf())
	for _, q := range []string{"RF", " rf ", "Rf", "rf"} {
		h, err := reg.Resolve(q)
		require.NoError(t, err, q)
		ref, ok := h.(ArtifactRef)
		require.True(t, ok)
		assert.Equal(t, "/tmp/rf.json", ref.Path)
		assert.Equal(t, KindArtifact, h.Kind())
	}
}

func TestResolveBaseline(t *testing.T) {
	reg := New(testConf())
	h, err := reg.Resolve("Risky-Protocol")
	require.NoError(t, err)
	br, ok := h.(BaselineRule)
	require.True(t, ok)
	assert.Equal(t, baseline.NameRiskyProtocol, br.Rule.Name())
}

func TestResolveEntryCanonicalName(t *testing.T) {
	reg := New(testConf())
	e, err := reg.ResolveEntry("  RISKY-Protocol ")
	require.NoError(t, err)
	assert.Equal(t, baseline.NameRiskyProtocol, e.Name)
	e, err = reg.ResolveEntry(" Rf")
	require.NoError(t, err)
	assert.Equal(t, "rf", e.Name)
	_, err = reg.ResolveEntry("foo")
	assert.ErrorIs(t, err, ErrModelNotFound)
}

func TestResolveUnknown(t *testing.T) {
	reg := New(testConf())
	_, err := reg.Resolve("xyz")
	assert.ErrorIs(t, err, ErrModelNotFound)
	var nfErr *NotFoundError
	require.True(t, errors.As(err, &nfErr))
	assert.Equal(
		t,
		[]string{"always-genuine", "always-malicious", "random", "risky-protocol", "rf", "xg"},
		nfErr.Valid,
	)
	assert.Contains(t, err.Error(), "xyz")
}

func TestResolveSuggestion(t *testing.T) {
	reg := New(testConf())
	_, err := reg.Resolve("randon")
	var nfErr *NotFoundError
	require.True(t, errors.As(err, &nfErr))
	assert.Equal(t, "random", nfErr.Suggestion)
}

func TestDisabledModelIsNotRegistered(t *testing.T) {
	reg := New(testConf())
	_, err := reg.Resolve("nn")
	assert.ErrorIs(t, err, ErrModelNotFound)
}

func TestFirstMatchWins(t *testing.T) {
	reg := NewRegistry(
		Entry{Name: "m", Handle: BaselineRule{Rule: baseline.Constant{Label: 1}}},
		Entry{Name: "M", Handle: BaselineRule{Rule: baseline.Constant{Label: 0}}},
	)
	h, err := reg.Resolve("m")
	require.NoError(t, err)
	assert.Equal(t, baseline.NameAlwaysMalicious, h.(BaselineRule).Rule.Name())
}

func TestArtifactRefLoadMissingFile(t *testing.T) {
	_, err := ArtifactRef{Type: "rf", Path: "/nonexistent/rf.json"}.Load()
	assert.Error(t, err)
}
