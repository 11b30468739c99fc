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

package output

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteLabelsFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "predictions.txt")
	require.NoError(t, WriteLabels(path, []int{0, 1, 1, 0}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "0\n1\n1\n0\n", string(data))

	labels, err := ReadLabels(path)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 1, 0}, labels)
}

func TestWriteLabelsTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "predictions.txt")
	require.NoError(t, WriteLabels(path, []int{1, 1, 1, 1, 1}))
	require.NoError(t, WriteLabels(path, []int{0}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "0\n", string(data))
}

func TestWriteLabelsFailureLeavesNoFiles(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "predictions.txt")
	require.NoError(t, os.Mkdir(target, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(target, "keep"), []byte("x"), 0644))

	assert.Error(t, WriteLabels(target, []int{0, 1}))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "predictions.txt", entries[0].Name())
	assert.True(t, entries[0].IsDir())
}

func TestWriteLabelsMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "predictions.txt")
	assert.Error(t, WriteLabels(path, []int{0}))
	assert.NoFileExists(t, path)
}

func TestWriteLabelsPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "predictions.txt")
	require.NoError(t, WriteLabels(path, []int{1}))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
}

func TestWriteEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "predictions.txt")
	require.NoError(t, WriteLabels(path, []int{}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestReadLabelsVariants(t *testing.T) {
	labels, err := Read(strings.NewReader("attack\nnormal\nneptune\n\nsmurf\nnormal\n"))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 1, 0}, labels)

	labels, err = Read(strings.NewReader("\nlabel\n1\n0.0\n1.0\n"))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 1}, labels)
}

func TestReadLabelsInvalid(t *testing.T) {
	_, err := Read(strings.NewReader("0\n2\n"))
	assert.ErrorIs(t, err, ErrInvalidLabel)
}

func TestReadLabelsMissingFile(t *testing.T) {
	_, err := ReadLabels(filepath.Join(t.TempDir(), "nothing.txt"))
	assert.Error(t, err)
}
