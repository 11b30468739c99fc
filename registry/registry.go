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

// Package registry maps user-facing model names to model handles.
package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/czcorpus/kddclf/baseline"
	"github.com/czcorpus/kddclf/cnf"
	"github.com/czcorpus/kddclf/model"
	"github.com/rs/zerolog/log"
)

var ErrModelNotFound = errors.New("model not found")

const (
	KindArtifact = "artifact"
	KindBaseline = "baseline"
)

// Handle is either an ArtifactRef or a BaselineRule
type Handle interface {
	Kind() string
	Info() string
	isHandle()
}

// ArtifactRef points to a trained model stored in a file. The model
// is loaded each time Load is called.
type ArtifactRef struct {
	Type string
	Path string

	// ClassThreshold overrides the model's own threshold if > 0
	ClassThreshold float64
}

func (ref ArtifactRef) Kind() string {
	return KindArtifact
}

func (ref ArtifactRef) Info() string {
	return fmt.Sprintf("%s model at %s", ref.Type, ref.Path)
}

func (ref ArtifactRef) isHandle() {}

// Load loads the artifact from the disk
func (ref ArtifactRef) Load() (*model.Artifact, error) {
	a, err := model.Load(ref.Type, ref.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load model artifact: %w", err)
	}
	if ref.ClassThreshold > 0 {
		a.Estimator().SetClassThreshold(ref.ClassThreshold)
	}
	return a, nil
}

// BaselineRule wraps a rule-based classifier
type BaselineRule struct {
	Rule baseline.Rule
}

func (br BaselineRule) Kind() string {
	return KindBaseline
}

func (br BaselineRule) Info() string {
	return br.Rule.Info()
}

func (br BaselineRule) isHandle() {}

// ---------------------------------

type Entry struct {
	Name   string
	Handle Handle
}

// NotFoundError is returned by Resolve for unknown names
type NotFoundError struct {
	Query string
	Valid []string

	// Suggestion is the most similar valid name
	Suggestion string
}

func (err *NotFoundError) Error() string {
	msg := fmt.Sprintf("unknown model '%s' (valid: %s)", err.Query, strings.Join(err.Valid, ", "))
	if err.Suggestion != "" {
		msg += fmt.Sprintf(", did you mean '%s'?", err.Suggestion)
	}
	return msg
}

func (err *NotFoundError) Unwrap() error {
	return ErrModelNotFound
}

// ---------------------------------

// Registry is an ordered list of named handles. It is read-only
// once created.
type Registry struct {
	entries []Entry
}

func normalizeName(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// Resolve finds a handle by name. Both the query and the registered
// names are compared trimmed and case-folded, the first match wins.
func (reg *Registry) Resolve(query string) (Handle, error) {
	e, err := reg.ResolveEntry(query)
	if err != nil {
		return nil, err
	}
	return e.Handle, nil
}

// ResolveEntry works like Resolve but it returns the whole entry
// so callers can refer to the model by its registered name.
func (reg *Registry) ResolveEntry(query string) (Entry, error) {
	q := normalizeName(query)
	for _, e := range reg.entries {
		if normalizeName(e.Name) == q {
			return e, nil
		}
	}
	ans := &NotFoundError{Query: query, Valid: reg.Names()}
	bestDist := -1
	for _, name := range ans.Valid {
		dist := levenshtein.ComputeDistance(q, normalizeName(name))
		if bestDist < 0 || dist < bestDist {
			bestDist = dist
			ans.Suggestion = name
		}
	}
	if bestDist > len(q)/2+1 {
		ans.Suggestion = ""
	}
	return Entry{}, ans
}

func (reg *Registry) Names() []string {
	ans := make([]string, len(reg.entries))
	for i, e := range reg.entries {
		ans[i] = e.Name
	}
	return ans
}

func (reg *Registry) Entries() []Entry {
	ans := make([]Entry, len(reg.entries))
	copy(ans, reg.entries)
	return ans
}

// NewRegistry creates a registry with provided entries
func NewRegistry(entries ...Entry) *Registry {
	return &Registry{entries: entries}
}

// New registers the built-in baselines followed by the enabled
// models from the configuration.
func New(conf *cnf.Conf) *Registry {
	entries := make([]Entry, 0, len(conf.Models)+4)
	for _, rule := range baseline.Defaults() {
		entries = append(entries, Entry{Name: rule.Name(), Handle: BaselineRule{Rule: rule}})
	}
	for _, m := range conf.Models {
		if m.Disabled {
			log.Debug().Str("name", m.Name).Msg("model disabled, skipping")
			continue
		}
		entries = append(
			entries,
			Entry{
				Name: m.Name,
				Handle: ArtifactRef{
					Type:           m.Type,
					Path:           m.Path,
					ClassThreshold: m.ClassThreshold,
				},
			},
		)
	}
	return NewRegistry(entries...)
}
